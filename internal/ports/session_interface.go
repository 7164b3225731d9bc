package ports

import (
	"context"

	"github.com/exso/CryptoBank/internal/model"
)

// SessionService — жизненный цикл сессии: выдача, ротация и отзыв токенов
type SessionService interface {
	StartSession(ctx context.Context, user *model.User) (*model.TokensPair, error)
	Rotate(ctx context.Context, refreshSecret string) (*model.TokensPair, error)
	Revoke(ctx context.Context, refreshSecret string) error
}

// AuthenticationService — вход по логину и паролю поверх SessionService
type AuthenticationService interface {
	Login(ctx context.Context, email, password string) (*model.TokensPair, error)
}
