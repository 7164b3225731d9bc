package service

import (
	"context"
	"log"

	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/ports"
)

type NewsService struct {
	newsRepository ports.NewsRepository
	cache          ports.CacheRepository
}

func NewNewsService(newsRepository ports.NewsRepository, cache ports.CacheRepository) *NewsService {
	return &NewsService{
		newsRepository: newsRepository,
		cache:          cache,
	}
}

// Latest возвращает последние новости: сначала из Redis, при промахе —
// из БД с прогревом кэша. Недоступный кэш не ломает выдачу
func (s *NewsService) Latest(ctx context.Context, limit int) ([]model.News, error) {
	if s.cache != nil {
		cached, err := s.cache.GetNews(ctx)
		if err != nil {
			log.Printf("[NewsService] кэш новостей недоступен: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	news, err := s.newsRepository.ListLatest(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetNews(ctx, news); err != nil {
			log.Printf("[NewsService] не удалось прогреть кэш новостей: %v", err)
		}
	}

	return news, nil
}
