package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/exso/CryptoBank/config"
	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/ports"
	"github.com/exso/CryptoBank/internal/util"

	"github.com/lib/pq"
)

// pqUniqueViolation — код ошибки Postgres для нарушения уникального индекса
const pqUniqueViolation = "23505"

type TokenRepository struct {
	*config.Database
}

func NewTokenRepository(database *config.Database) *TokenRepository {
	return &TokenRepository{database}
}

const refreshTokenColumns = `id, user_uuid, token, created_at, expires_at, revoked_at, revoked_reason, replaced_by_id`

// Insert сохраняет новую строку refresh-токена и возвращает её id.
// Коллизия секрета отображается в ports.ErrTokenConflict
func (r *TokenRepository) Insert(ctx context.Context, token *model.RefreshToken) (int64, error) {
	query := `INSERT INTO refresh_tokens (user_uuid, token, created_at, expires_at)
				VALUES ($1, $2, $3, $4)
				RETURNING id`

	var id int64
	err := r.DB.QueryRowContext(ctx, query,
		token.UserUUID,
		token.Token,
		token.CreatedAt,
		token.ExpiresAt,
	).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return 0, ports.ErrTokenConflict
		}
		return 0, util.LogError("[TokenRepo] ошибка вставки refresh-токена", err)
	}

	token.ID = id
	return id, nil
}

// FindByToken ищет строку по непрозрачному секрету.
// Возвращает строку в любом состоянии: отозванные строки нужны
// сервису сессий для детекции повторного использования
func (r *TokenRepository) FindByToken(ctx context.Context, secret string) (*model.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token = $1`

	refreshToken := &model.RefreshToken{}
	err := r.DB.GetContext(ctx, refreshToken, query, secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrTokenNotFound
		}
		return nil, util.LogError("[TokenRepo] ошибка поиска refresh-токена", err)
	}

	return refreshToken, nil
}

func (r *TokenRepository) FindByID(ctx context.Context, id int64) (*model.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE id = $1`

	refreshToken := &model.RefreshToken{}
	err := r.DB.GetContext(ctx, refreshToken, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrTokenNotFound
		}
		return nil, util.LogError("[TokenRepo] ошибка поиска refresh-токена по id", err)
	}

	return refreshToken, nil
}

// TryRotate выполняет ротацию в одной транзакции: вставляет преемника и
// отзывает старую строку с причиной "replaced" и ссылкой на новую.
// Условие `revoked_at IS NULL AND expires_at > now` в UPDATE — это
// compare-and-swap на активности строки: из двух конкурентных ротаций
// одного токена ровно одна обновит строку, вторая получит ноль задетых
// строк, откат вставки и ports.ErrAlreadyRotated
func (r *TokenRepository) TryRotate(ctx context.Context, oldID int64, newRow *model.RefreshToken) (*model.RefreshToken, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, util.LogError("[TokenRepo] не удалось начать транзакцию", err)
	}
	defer tx.Rollback()

	insertQuery := `INSERT INTO refresh_tokens (user_uuid, token, created_at, expires_at)
					VALUES ($1, $2, $3, $4)
					RETURNING id`

	var newID int64
	err = tx.QueryRowContext(ctx, insertQuery,
		newRow.UserUUID,
		newRow.Token,
		newRow.CreatedAt,
		newRow.ExpiresAt,
	).Scan(&newID)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ports.ErrTokenConflict
		}
		return nil, util.LogError("[TokenRepo] ошибка вставки нового refresh-токена", err)
	}

	now := time.Now().UTC()
	updateQuery := `UPDATE refresh_tokens
					SET revoked_at = $2, revoked_reason = $3, replaced_by_id = $4
					WHERE id = $1 AND revoked_at IS NULL AND expires_at > $2`

	result, err := tx.ExecContext(ctx, updateQuery, oldID, now, model.RevokedReasonReplaced, newID)
	if err != nil {
		return nil, util.LogError("[TokenRepo] ошибка отзыва старого refresh-токена", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, util.LogError("[TokenRepo] не удалось проверить результат отзыва", err)
	}
	if rowsAffected == 0 {
		return nil, ports.ErrAlreadyRotated
	}

	if err := tx.Commit(); err != nil {
		return nil, util.LogError("[TokenRepo] не удалось зафиксировать ротацию", err)
	}

	newRow.ID = newID
	return newRow, nil
}

// Revoke отзывает одну активную строку. Условие в WHERE то же, что и при
// ротации: конкурентный отзыв или ротация той же строки оставит ноль
// задетых строк и вернёт ports.ErrAlreadyRotated
func (r *TokenRepository) Revoke(ctx context.Context, id int64, reason string) error {
	now := time.Now().UTC()
	query := `UPDATE refresh_tokens
				SET revoked_at = $2, revoked_reason = $3
				WHERE id = $1 AND revoked_at IS NULL AND expires_at > $2`

	result, err := r.DB.ExecContext(ctx, query, id, now, reason)
	if err != nil {
		return util.LogError("[TokenRepo] ошибка отзыва refresh-токена", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[TokenRepo] не удалось проверить результат отзыва", err)
	}
	if rowsAffected == 0 {
		return ports.ErrAlreadyRotated
	}

	return nil
}

// RevokeAllActive отзывает все активные токены пользователя одним запросом
func (r *TokenRepository) RevokeAllActive(ctx context.Context, userUUID string, reason string) (int64, error) {
	now := time.Now().UTC()
	query := `UPDATE refresh_tokens
				SET revoked_at = $2, revoked_reason = $3
				WHERE user_uuid = $1 AND revoked_at IS NULL AND expires_at > $2`

	result, err := r.DB.ExecContext(ctx, query, userUUID, now, reason)
	if err != nil {
		return 0, util.LogError("[TokenRepo] ошибка массового отзыва токенов", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("[TokenRepo] не удалось получить число отозванных токенов", err)
	}

	return count, nil
}

// DeleteRetired удаляет отозванные строки, созданные не позже before.
// Просроченные, но так и не отозванные строки не трогаем: их видно
// при детекции повторного использования, и места они почти не занимают
func (r *TokenRepository) DeleteRetired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE revoked_at IS NOT NULL AND created_at <= $1`

	result, err := r.DB.ExecContext(ctx, query, before)
	if err != nil {
		return 0, util.LogError("[TokenRepo] ошибка удаления архивных токенов", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("[TokenRepo] не удалось получить число удалённых токенов", err)
	}

	return count, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
