package ports

import (
	"context"

	"github.com/exso/CryptoBank/internal/model"
)

type NewsRepository interface {
	ListLatest(ctx context.Context, limit int) ([]model.News, error)
}

type NewsService interface {
	Latest(ctx context.Context, limit int) ([]model.News, error)
}
