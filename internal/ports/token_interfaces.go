package ports

import (
	"context"
	"errors"
	"time"

	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/security"
)

// Ошибки контракта TokenStore. Сервис сессий различает их через errors.Is
var (
	// ErrTokenNotFound — строка с таким секретом или id отсутствует
	ErrTokenNotFound = errors.New("refresh-токен не найден")

	// ErrTokenConflict — коллизия уникального секрета при вставке.
	// Повторяется со свежесгенерированным секретом, наружу не отдаётся
	ErrTokenConflict = errors.New("коллизия секрета refresh-токена")

	// ErrAlreadyRotated — строка уже была ротирована или отозвана
	// конкурентным вызовом, вставка преемника откачена
	ErrAlreadyRotated = errors.New("refresh-токен уже был ротирован")
)

// TokenStore — персистентное хранилище refresh-токенов.
// Все операции ходят в БД; TryRotate обязан выполняться в одной транзакции.
type TokenStore interface {
	Insert(ctx context.Context, token *model.RefreshToken) (int64, error)
	FindByToken(ctx context.Context, secret string) (*model.RefreshToken, error)
	FindByID(ctx context.Context, id int64) (*model.RefreshToken, error)

	// TryRotate атомарно отзывает строку oldID с причиной "replaced",
	// проставляет ей ссылку на преемника и вставляет newRow.
	// Если строка oldID уже не активна, возвращает ErrAlreadyRotated,
	// а вставка newRow откатывается.
	TryRotate(ctx context.Context, oldID int64, newRow *model.RefreshToken) (*model.RefreshToken, error)

	// Revoke отзывает одну активную строку с указанной причиной.
	// Если строка уже не активна, возвращает ErrAlreadyRotated
	Revoke(ctx context.Context, id int64, reason string) error

	// RevokeAllActive отзывает все активные токены пользователя, возвращает их число
	RevokeAllActive(ctx context.Context, userUUID string, reason string) (int64, error)

	// DeleteRetired удаляет отозванные строки, созданные не позже before.
	// Просроченные, но не отозванные строки намеренно не трогает
	DeleteRetired(ctx context.Context, before time.Time) (int64, error)
}

// AccessTokenIssuer — stateless-подписчик короткоживущих access-токенов
type AccessTokenIssuer interface {
	IssueAccessToken(user *model.User) (string, error)
	ValidateJWT(tokenStr string) (*security.Claims, error)
}
