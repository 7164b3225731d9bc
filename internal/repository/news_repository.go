package repository

import (
	"context"

	"github.com/exso/CryptoBank/config"
	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/util"
)

type NewsRepository struct {
	*config.Database
}

func NewNewsRepository(database *config.Database) *NewsRepository {
	return &NewsRepository{database}
}

func (r *NewsRepository) ListLatest(ctx context.Context, limit int) ([]model.News, error) {
	query := `
	SELECT id, title, date, author, description
	FROM news
	ORDER BY date DESC
	LIMIT $1
	`

	var news []model.News
	if err := r.DB.SelectContext(ctx, &news, query, limit); err != nil {
		return nil, util.LogError("[NewsRepo] не удалось получить новости", err)
	}

	return news, nil
}
