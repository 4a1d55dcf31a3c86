package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	OperationCreate = "CREATE"
	OperationDelete = "DELETE"
)

// Event is the message published for every mutation. TodoID is an int for
// creates and the raw path string for deletes, matching what the log
// processor on the other end of the channel expects.
type Event struct {
	ZipkinSpan string `json:"zipkinSpan"`
	OpName     string `json:"opName"`
	Username   string `json:"username"`
	TodoID     any    `json:"todoId"`
}

// Publisher sends audit events somewhere. Best-effort: callers treat a
// returned error as log-and-continue.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// RedisPublisher publishes events as JSON on a Redis channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher returns a publisher for the given channel.
func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return nil
}
