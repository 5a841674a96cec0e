package notifier

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// streamEvent is the payload published to the Redis stream for downstream
// consumers. The preview image is carried as base64 to keep the stream entry
// a flat string map.
type streamEvent struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// RedisStream implements Notifier by appending notifications to a capped
// Redis stream.
type RedisStream struct {
	client    *redis.Client
	ctx       context.Context
	stream    string
	maxLength int
}

// NewRedisStream creates a Redis stream notifier.
func NewRedisStream(ctx context.Context, addr string, db int, stream string, maxLength int) *RedisStream {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisStream{
		client:    client,
		ctx:       ctx,
		stream:    stream,
		maxLength: maxLength,
	}
}

// SendText appends a text-only event to the stream.
func (r *RedisStream) SendText(text string) error {
	return r.publish(streamEvent{Text: text})
}

// SendPhoto appends an event carrying the preview image to the stream.
func (r *RedisStream) SendPhoto(image []byte, caption string) error {
	return r.publish(streamEvent{
		Text:  caption,
		Image: base64.StdEncoding.EncodeToString(image),
	})
}

func (r *RedisStream) publish(event streamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.XAdd(r.ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: int64(r.maxLength),
		Approx: true,
		Values: map[string]interface{}{
			"listing": string(payload),
		},
	}).Err()
}

// Close closes the Redis connection.
func (r *RedisStream) Close() error {
	return r.client.Close()
}
