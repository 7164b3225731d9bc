package ports

import (
	"context"

	"github.com/exso/CryptoBank/internal/model"
)

// CacheRepository — Redis-кэш: снапшоты пользователей с ролями и лента новостей
type CacheRepository interface {
	GetUserSnapshot(ctx context.Context, userUUID string) (*model.User, error)
	SetUserSnapshot(ctx context.Context, user *model.User) error
	DeleteUserSnapshot(ctx context.Context, userUUID string) error

	GetNews(ctx context.Context) ([]model.News, error)
	SetNews(ctx context.Context, news []model.News) error
}
