package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/exso/CryptoBank/config"
	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/ports"
	"github.com/exso/CryptoBank/internal/security"
	"github.com/exso/CryptoBank/internal/util"
)

// ErrInvalidToken — единый ответ на любой невалидный refresh-секрет:
// не найден, просрочен, уже ротирован или отозван. Снаружи причины
// не различаются, чтобы не подсказывать атакующему состояние цепочки
var ErrInvalidToken = errors.New("невалидный токен")

// secretRetryLimit — сколько раз перегенерировать секрет при коллизии
// уникального индекса. Коллизия 64 случайных байт — событие из разряда
// невозможных, лимит нужен только чтобы не зациклиться на сломанной БД
const secretRetryLimit = 3

// SessionService управляет жизненным циклом сессии: выдаёт пару токенов
// при логине, ротирует одноразовые refresh-токены и отзывает их.
// Состояние между запросами не держит — вся координация конкурентных
// ротаций лежит на транзакционном TryRotate хранилища.
type SessionService struct {
	tokenStore ports.TokenStore
	issuer     ports.AccessTokenIssuer
	userRepo   ports.UserRepository
	cache      ports.CacheRepository
	refreshTTL time.Duration
}

func NewSessionService(
	tokenStore ports.TokenStore,
	issuer ports.AccessTokenIssuer,
	userRepo ports.UserRepository,
	cache ports.CacheRepository,
	cfg *config.JWTConfig,
) (*SessionService, error) {
	refreshTTL, err := time.ParseDuration(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга refresh_token_ttl: %w", err)
	}

	return &SessionService{
		tokenStore: tokenStore,
		issuer:     issuer,
		userRepo:   userRepo,
		cache:      cache,
		refreshTTL: refreshTTL,
	}, nil
}

// StartSession выдаёт access-токен и корневой refresh-токен новой цепочки.
// Прошлые сессии пользователя не трогаются: несколько независимых цепочек
// (несколько устройств) — нормальное состояние
func (s *SessionService) StartSession(ctx context.Context, user *model.User) (*model.TokensPair, error) {
	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, util.LogError("ошибка генерации access-токена", err)
	}

	for attempt := 0; attempt < secretRetryLimit; attempt++ {
		secret, err := security.GenerateRefreshSecret()
		if err != nil {
			return nil, err
		}

		row := s.newRefreshRow(user.UUID, secret)
		if _, err := s.tokenStore.Insert(ctx, row); err != nil {
			if errors.Is(err, ports.ErrTokenConflict) {
				continue
			}
			return nil, util.LogError("ошибка сохранения refresh-токена", err)
		}

		return &model.TokensPair{
			AccessToken:  accessToken,
			RefreshToken: secret,
		}, nil
	}

	return nil, fmt.Errorf("не удалось сгенерировать уникальный refresh-токен")
}

// Rotate обменивает одноразовый refresh-секрет на новую пару токенов.
//
// Порядок проверок важен:
//  1. секрет не найден — отказ без последствий;
//  2. строка уже отозвана (ротирована ранее, отозвана вручную или каскадом) —
//     это повторное использование списанного секрета, то есть признак кражи:
//     отзываются все активные токены пользователя, затем отказ;
//  3. строка просрочена, но никогда не ротировалась — обычное истечение
//     сессии, не инцидент, каскада нет;
//  4. строка активна — ротация через TryRotate. Проигрыш гонки конкурентной
//     ротации того же секрета — то же повторное использование, что и в п.2,
//     просто замеченное на несколько миллисекунд позже: каскад и отказ.
func (s *SessionService) Rotate(ctx context.Context, refreshSecret string) (*model.TokensPair, error) {
	row, err := s.tokenStore.FindByToken(ctx, refreshSecret)
	if err != nil {
		if errors.Is(err, ports.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, util.LogError("не удалось найти refresh-токен", err)
	}

	now := time.Now().UTC()

	if row.IsRevoked() {
		log.Printf("refresh-токен %d предъявлен повторно после отзыва, отзываем все токены пользователя %s", row.ID, row.UserUUID)
		s.containReuse(ctx, row.UserUUID)
		return nil, ErrInvalidToken
	}

	if row.IsExpired(now) {
		log.Printf("refresh-токен %d просрочен", row.ID)
		return nil, ErrInvalidToken
	}

	user, err := s.userSnapshot(ctx, row.UserUUID)
	if err != nil {
		return nil, util.LogError("не удалось получить снапшот пользователя", err)
	}

	for attempt := 0; attempt < secretRetryLimit; attempt++ {
		secret, err := security.GenerateRefreshSecret()
		if err != nil {
			return nil, err
		}

		newRow := s.newRefreshRow(row.UserUUID, secret)
		if _, err := s.tokenStore.TryRotate(ctx, row.ID, newRow); err != nil {
			if errors.Is(err, ports.ErrTokenConflict) {
				continue
			}
			if errors.Is(err, ports.ErrAlreadyRotated) {
				log.Printf("refresh-токен %d проиграл гонку ротации, отзываем все токены пользователя %s", row.ID, row.UserUUID)
				s.containReuse(ctx, row.UserUUID)
				return nil, ErrInvalidToken
			}
			return nil, util.LogError("ошибка ротации refresh-токена", err)
		}

		accessToken, err := s.issuer.IssueAccessToken(user)
		if err != nil {
			return nil, util.LogError("ошибка генерации access-токена", err)
		}

		return &model.TokensPair{
			AccessToken:  accessToken,
			RefreshToken: secret,
		}, nil
	}

	return nil, fmt.Errorf("не удалось сгенерировать уникальный refresh-токен")
}

// Revoke завершает цепочку по инициативе пользователя (logout).
// Преемник не выпускается, неактивный секрет — единый отказ
func (s *SessionService) Revoke(ctx context.Context, refreshSecret string) error {
	row, err := s.tokenStore.FindByToken(ctx, refreshSecret)
	if err != nil {
		if errors.Is(err, ports.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return util.LogError("не удалось найти refresh-токен", err)
	}

	if !row.IsActive(time.Now().UTC()) {
		return ErrInvalidToken
	}

	if err := s.tokenStore.Revoke(ctx, row.ID, model.RevokedReasonUserRevoked); err != nil {
		if errors.Is(err, ports.ErrAlreadyRotated) {
			return ErrInvalidToken
		}
		return util.LogError("не удалось отозвать refresh-токен", err)
	}

	return nil
}

// containReuse отзывает все активные токены пользователя после детекции
// повторного использования. Ошибка каскада не спасает вызов Rotate:
// он всё равно завершится ErrInvalidToken
func (s *SessionService) containReuse(ctx context.Context, userUUID string) {
	count, err := s.tokenStore.RevokeAllActive(ctx, userUUID, model.RevokedReasonReuseDetected)
	if err != nil {
		log.Printf("не удалось отозвать токены пользователя %s: %v", userUUID, err)
		return
	}
	log.Printf("отозвано %d активных токенов пользователя %s", count, userUUID)
}

// userSnapshot возвращает пользователя с ролями для выпуска access-токена:
// сначала из Redis, при промахе — из БД с прогревом кэша
func (s *SessionService) userSnapshot(ctx context.Context, userUUID string) (*model.User, error) {
	if s.cache != nil {
		cached, err := s.cache.GetUserSnapshot(ctx, userUUID)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			log.Printf("кэш снапшотов недоступен: %v", err)
		}
	}

	user, err := s.userRepo.FindByUUID(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetUserSnapshot(ctx, user); err != nil {
			log.Printf("не удалось прогреть кэш снапшотов: %v", err)
		}
	}

	return user, nil
}

func (s *SessionService) newRefreshRow(userUUID, secret string) *model.RefreshToken {
	now := time.Now().UTC()
	return &model.RefreshToken{
		UserUUID:  userUUID,
		Token:     secret,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
}
