package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 5 * time.Second
	opTimeout   = 2 * time.Second
)

// Config describes the Redis instance that holds the device keys and the
// purchase guard.
type Config struct {
	Addr     string
	Password string
	DB       int
	// OpTimeout bounds each read and write. Zero means opTimeout.
	OpTimeout time.Duration
}

// Connect opens a client and refuses to return it until the server answers.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	op := cfg.OpTimeout
	if op <= 0 {
		op = opTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  op,
		WriteTimeout: op,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}
