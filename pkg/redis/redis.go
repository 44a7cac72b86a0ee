// Package redis wraps client construction for the optional caches.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes a Redis connection.
type Config struct {
	URL          string
	ReadTimeout  int
	WriteTimeout int
	DialTimeout  int
}

// New parses the URL, applies timeouts, and verifies connectivity.
func (c *Config) New(ctx context.Context) (*redis.Client, error) {
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, err
	}

	if c.ReadTimeout > 0 {
		opts.ReadTimeout = time.Duration(c.ReadTimeout) * time.Second
	}
	if c.WriteTimeout > 0 {
		opts.WriteTimeout = time.Duration(c.WriteTimeout) * time.Second
	}
	if c.DialTimeout > 0 {
		opts.DialTimeout = time.Duration(c.DialTimeout) * time.Second
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
