package histcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"NutriGuide/models"
)

// Cache keeps recently read conversation histories in redis so the chat
// orchestrator does not re-query sqlite on every turn. It is optional:
// a nil *Cache is a no-op on every method.
type Cache struct {
	client *redisv9.Client
	ttl    time.Duration
}

// New connects to redis and verifies the connection with a short ping.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	client := redisv9.NewClient(&redisv9.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}
	return &Cache{client: client, ttl: ttl}, nil
}

func (c *Cache) GetHistory(ctx context.Context, conversationID uint) ([]models.Message, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, historyKey(conversationID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}
	var messages []models.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return messages, true, nil
}

func (c *Cache) SetHistory(ctx context.Context, conversationID uint, messages []models.Message) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, historyKey(conversationID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, conversationID uint) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, historyKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("redis delete history failed: %w", err)
	}
	return nil
}

func historyKey(conversationID uint) string {
	return fmt.Sprintf("chat:history:%d", conversationID)
}
