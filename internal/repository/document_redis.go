package repository

import (
	"context"
	"errors"

	"github.com/Eursukkul/eventosu/pkg/redisdb"
	"github.com/go-redis/redis/v8"
)

type redisDocumentRepository struct {
	client *redisdb.Client
}

// NewRedisDocumentRepository keeps each document as a plain string at eventosu:{key}.
func NewRedisDocumentRepository(client *redisdb.Client) DocumentRepository {
	return &redisDocumentRepository{client: client}
}

func (r *redisDocumentRepository) Get(ctx context.Context, key string) (string, error) {
	body, err := r.client.Get(ctx, redisdb.Key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrDocumentNotFound
		}
		return "", err
	}
	return body, nil
}

func (r *redisDocumentRepository) Put(ctx context.Context, key, body string) error {
	return r.client.Set(ctx, redisdb.Key(key), body, 0).Err()
}
