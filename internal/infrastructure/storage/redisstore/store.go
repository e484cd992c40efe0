// Package redisstore keeps rendered pages in redis under page:<itemID>.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"pagesync/internal/domain"
)

const keyPrefix = "page:"

type Config struct {
	Addr     string
	Password string
	DB       int
}

type Store struct {
	client *redis.Client
}

func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// New returns a store whose pages never expire: a page only disappears on Delete.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(itemID int64) string {
	return keyPrefix + strconv.FormatInt(itemID, 10)
}

func (s *Store) Put(ctx context.Context, itemID int64, content []byte) error {
	return s.client.Set(ctx, key(itemID), content, 0).Err()
}

func (s *Store) Delete(ctx context.Context, itemID int64) error {
	return s.client.Del(ctx, key(itemID)).Err()
}

func (s *Store) Get(ctx context.Context, itemID int64) ([]byte, error) {
	b, err := s.client.Get(ctx, key(itemID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.NotFound("page not found")
	}
	return b, err
}
