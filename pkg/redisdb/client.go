package redisdb

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "eventosu:"

// Client wraps redis.Client so callers depend on this package only.
type Client struct {
	*redis.Client
}

func NewClient(addr, password string, db int) (*Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{Client: c}, nil
}

// Key namespaces a document key.
func Key(name string) string {
	return keyPrefix + name
}
