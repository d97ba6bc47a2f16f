package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// invalidationChannel is the Redis pub/sub channel used to fan cache
// eviction events out to every process sharing a Redis instance.
const invalidationChannel = "antdns:invalidation"

// RedisBus implements InvalidationBus over a shared Redis instance.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus connects to a Redis instance at addr.
func NewRedisBus(addr, password string, db int) *RedisBus {
	return &RedisBus{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Publish announces that name's resolution should be evicted everywhere.
func (b *RedisBus) Publish(ctx context.Context, name string) error {
	if err := b.client.Publish(ctx, invalidationChannel, name).Err(); err != nil {
		return fmt.Errorf("cache: publish invalidation for %q: %w", name, err)
	}
	return nil
}

// Subscribe returns a channel of names to evict, for the lifetime of ctx.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan string, error) {
	pubsub := b.client.Subscribe(ctx, invalidationChannel)
	raw := pubsub.Channel()

	out := make(chan string)
	go func() {
		defer close(out)
		defer pubsub.Close()
		for {
			select {
			case msg, ok := <-raw:
				if !ok {
					return
				}
				out <- msg.Payload
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Ping checks connectivity to the backing Redis instance.
func (b *RedisBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
