package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/exso/CryptoBank/config"
	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/util"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя и выдаёт ему роль User.
// Вставка пользователя и назначение роли выполняются в одной транзакции
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось начать транзакцию", err)
	}
	defer tx.Rollback()

	insertQuery := `
	INSERT INTO users (uuid, email, password_hash, date_of_birth)
	VALUES ($1, $2, $3, $4)
	RETURNING uuid, email, date_of_birth, created_at
	`

	createdUser := &model.User{}
	err = tx.QueryRowxContext(ctx, insertQuery, user.UUID, user.Email, user.PasswordHash, user.DateOfBirth).
		Scan(&createdUser.UUID, &createdUser.Email, &createdUser.DateOfBirth, &createdUser.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("[UserRepo] пользователь с таким email уже существует")
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	roleQuery := `
	INSERT INTO user_roles (user_uuid, role_id)
	SELECT $1, id FROM roles WHERE name = $2
	`
	if _, err := tx.ExecContext(ctx, roleQuery, createdUser.UUID, model.RoleUser); err != nil {
		return nil, util.LogError("[UserRepo] не удалось назначить роль по умолчанию", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, util.LogError("[UserRepo] не удалось зафиксировать создание пользователя", err)
	}

	createdUser.Roles = []string{model.RoleUser}
	return createdUser, nil
}

// FindByEmail : ищет пользователя по email, роли подгружаются тем же вызовом
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, date_of_birth, created_at FROM users WHERE email = $1`

	var user model.User
	if err := r.DB.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("[UserRepo] пользователь не найден")
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по email", err)
	}

	roles, err := r.FindRoles(ctx, user.UUID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	return &user, nil
}

// FindByUUID : ищет пользователя по UUID, роли подгружаются тем же вызовом
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, date_of_birth, created_at FROM users WHERE uuid = $1`

	var user model.User
	if err := r.DB.GetContext(ctx, &user, query, uuid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("[UserRepo] пользователь не найден")
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}

	roles, err := r.FindRoles(ctx, user.UUID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	return &user, nil
}

// FindRoles : возвращает имена ролей пользователя
func (r *UserRepository) FindRoles(ctx context.Context, userUUID string) ([]string, error) {
	query := `
	SELECT r.name
	FROM roles r
	JOIN user_roles ur ON ur.role_id = r.id
	WHERE ur.user_uuid = $1
	ORDER BY r.name
	`

	var roles []string
	if err := r.DB.SelectContext(ctx, &roles, query, userUUID); err != nil {
		return nil, util.LogError("[UserRepo] не удалось получить роли пользователя", err)
	}

	return roles, nil
}
