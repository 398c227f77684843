package relay

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// MemoryCursor keeps the position in process.
type MemoryCursor struct {
	mu  sync.Mutex
	seq uint64
}

func (c *MemoryCursor) Load(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq, nil
}

func (c *MemoryCursor) Save(_ context.Context, sequence uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = sequence
	return nil
}

// RedisCursor keeps the position under a single key so it survives restarts.
type RedisCursor struct {
	client redis.UniversalClient
	key    string
}

func NewRedisCursor(client redis.UniversalClient, key string) *RedisCursor {
	return &RedisCursor{client: client, key: key}
}

func (c *RedisCursor) Load(ctx context.Context) (uint64, error) {
	raw, err := c.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(raw, 10, 64)
}

func (c *RedisCursor) Save(ctx context.Context, sequence uint64) error {
	return c.client.Set(ctx, c.key, strconv.FormatUint(sequence, 10), 0).Err()
}
