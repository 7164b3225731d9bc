package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/exso/CryptoBank/config"
	"github.com/exso/CryptoBank/internal/ports"
)

// ArchivalSweeper — фоновая зачистка отозванных refresh-токенов,
// переживших окно хранения. Обслуживающая задача: её сбой не должен
// влиять на аутентификацию, поэтому ошибки итерации только логируются,
// цикл продолжается до отмены контекста
type ArchivalSweeper struct {
	tokenStore ports.TokenStore
	retention  time.Duration
	interval   time.Duration
}

func NewArchivalSweeper(tokenStore ports.TokenStore, cfg *config.RefreshTokenConfig) (*ArchivalSweeper, error) {
	retention, err := time.ParseDuration(cfg.ArchiveRetention)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга archive_retention: %w", err)
	}

	interval, err := time.ParseDuration(cfg.SweepInterval)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга sweep_interval: %w", err)
	}

	return &ArchivalSweeper{
		tokenStore: tokenStore,
		retention:  retention,
		interval:   interval,
	}, nil
}

// Run блокирует до отмены контекста; запускается в отдельной горутине
func (s *ArchivalSweeper) Run(ctx context.Context) {
	log.Printf("зачистка архивных refresh-токенов запущена, интервал %s, окно хранения %s", s.interval, s.retention)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("зачистка архивных refresh-токенов остановлена")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ArchivalSweeper) sweep(ctx context.Context) {
	before := time.Now().UTC().Add(-s.retention)

	count, err := s.tokenStore.DeleteRetired(ctx, before)
	if err != nil {
		// временная ошибка БД — дождёмся следующего тика
		log.Printf("ошибка зачистки архивных refresh-токенов: %v", err)
		return
	}

	if count > 0 {
		log.Printf("удалено %d архивных refresh-токенов", count)
	}
}
