package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/exso/CryptoBank/config"
	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/util"

	"github.com/redis/go-redis/v9"
)

const newsCacheKey = "news:latest"

// CacheRepository кэширует в Redis снапшоты пользователей с ролями
// (их читает ротация при выпуске access-токена) и ленту новостей
type CacheRepository struct {
	client      *config.RedisClient
	snapshotTTL time.Duration
	newsTTL     time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, snapshotTTL, newsTTL time.Duration) *CacheRepository {
	return &CacheRepository{rdb, snapshotTTL, newsTTL}
}

func (r *CacheRepository) GetUserSnapshot(ctx context.Context, userUUID string) (*model.User, error) {
	val, err := r.client.Client.Get(ctx, r.userKey(userUUID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // нет в кэше
	} else if err != nil {
		return nil, util.LogError("ошибка получения снапшота пользователя из Redis", err)
	}

	var user model.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return nil, util.LogError("ошибка десериализации снапшота пользователя", err)
	}
	return &user, nil
}

func (r *CacheRepository) SetUserSnapshot(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return util.LogError("ошибка сериализации снапшота пользователя", err)
	}

	if err := r.client.Client.Set(ctx, r.userKey(user.UUID), data, r.snapshotTTL).Err(); err != nil {
		return util.LogError("ошибка сохранения снапшота пользователя в Redis", err)
	}

	return nil
}

func (r *CacheRepository) DeleteUserSnapshot(ctx context.Context, userUUID string) error {
	if err := r.client.Client.Del(ctx, r.userKey(userUUID)).Err(); err != nil {
		return util.LogError("ошибка удаления снапшота пользователя из Redis", err)
	}
	return nil
}

func (r *CacheRepository) GetNews(ctx context.Context) ([]model.News, error) {
	val, err := r.client.Client.Get(ctx, newsCacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, util.LogError("ошибка получения новостей из Redis", err)
	}

	var news []model.News
	if err := json.Unmarshal([]byte(val), &news); err != nil {
		return nil, util.LogError("ошибка десериализации новостей из кэша", err)
	}
	return news, nil
}

func (r *CacheRepository) SetNews(ctx context.Context, news []model.News) error {
	data, err := json.Marshal(news)
	if err != nil {
		return util.LogError("ошибка сериализации новостей", err)
	}

	if err := r.client.Client.Set(ctx, newsCacheKey, data, r.newsTTL).Err(); err != nil {
		return util.LogError("ошибка сохранения новостей в Redis", err)
	}

	return nil
}

func (r *CacheRepository) userKey(uuid string) string {
	return fmt.Sprintf("user-snapshot:%s", uuid)
}
