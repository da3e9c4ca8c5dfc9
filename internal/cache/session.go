package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/gridnode/internal/models"
)

const (
	tokenPrefix = "gridnode:token:"
	userPrefix  = "gridnode:user:"
)

func tokenKey(jti string) string { return tokenPrefix + jti }
func userKey(id string) string   { return userPrefix + id }

// SaveSession атомарно сохраняет запись пользователя и привязку jti к нему.
// Обе записи живут ttl.
func (c *Cache) SaveSession(ctx context.Context, jti string, u *models.User, ttl time.Duration) error {
	const op = "cache.SaveSession"
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = c.Db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKey(u.ID), data, ttl)
		pipe.Set(ctx, tokenKey(jti), u.ID, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// TokenUser возвращает идентификатор пользователя сессии jti.
func (c *Cache) TokenUser(ctx context.Context, jti string) (string, error) {
	const op = "cache.TokenUser"
	id, err := c.Db.Get(ctx, tokenKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%s: %w", op, models.ErrSessionNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetUser читает запись пользователя.
func (c *Cache) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "cache.GetUser"
	var u models.User
	found, err := c.Get(ctx, userKey(id), &u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, models.ErrSessionNotFound)
	}
	return &u, nil
}

// UpdateUser выполняет версионное чтение-изменение-запись записи пользователя.
//
// fn получает свежую копию записи; ошибка fn прерывает запись и возвращается как есть.
// При одновременной записи операция повторяется, после исчерпания попыток
// возвращается models.ErrConflict. Время жизни записи сохраняется.
func (c *Cache) UpdateUser(ctx context.Context, id string, fn func(u *models.User) error) (*models.User, error) {
	const op = "cache.UpdateUser"
	key := userKey(id)
	retries := c.Retries
	if retries < 1 {
		retries = DefaultUpdateRetries
	}

	var updated models.User
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return models.ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return err
		}
		if err := fn(&u); err != nil {
			return err
		}
		u.Version++
		data, err := json.Marshal(&u)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, data, redis.SetArgs{KeepTTL: true})
			return nil
		})
		if err == nil {
			updated = u
		}
		return err
	}

	for range retries {
		err := c.Db.Watch(ctx, txf, key)
		if err == nil {
			return &updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
}

// DeleteSession удаляет привязку jti и запись пользователя.
func (c *Cache) DeleteSession(ctx context.Context, jti, userID string) error {
	const op = "cache.DeleteSession"
	if err := c.Invalidate(ctx, tokenKey(jti), userKey(userID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
