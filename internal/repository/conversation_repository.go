// Package repository 提供了会话日志的数据访问层实现。
package repository

//go:generate mockgen -source=conversation_repository.go -destination=mocks/conversation_repository_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"portfolio-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound 表示会话不存在、已过期或已被删除。
var ErrSessionNotFound = errors.New("conversation not found")

// ConversationRepository 定义了会话消息日志的操作接口。
// 日志只追加，每次写入都会刷新会话的过期时间。Append 只写入已存在的会话，
// 已结束的会话不会被迟到的消息重新创建。
type ConversationRepository interface {
	Create(ctx context.Context, sessionID string, messages ...model.ChatMessage) error
	Append(ctx context.Context, sessionID string, messages ...model.ChatMessage) error
	History(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

type redisConversationRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewConversationRepository 创建一个基于 Redis 的 ConversationRepository 实例。
func NewConversationRepository(redisClient *redis.Client, ttl time.Duration) ConversationRepository {
	return &redisConversationRepository{redisClient: redisClient, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("chat:session:%s", sessionID)
}

func encodeMessages(messages []model.ChatMessage) ([]interface{}, error) {
	values := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		b, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal chat message: %w", err)
		}
		values = append(values, b)
	}
	return values, nil
}

// Create 创建会话列表并写入初始消息，同一事务中设置过期时间。
func (r *redisConversationRepository) Create(ctx context.Context, sessionID string, messages ...model.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	values, err := encodeMessages(messages)
	if err != nil {
		return err
	}

	key := sessionKey(sessionID)
	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

// Append 使用 RPUSHX 追加消息，键不存在时不会创建，并返回 ErrSessionNotFound。
func (r *redisConversationRepository) Append(ctx context.Context, sessionID string, messages ...model.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	values, err := encodeMessages(messages)
	if err != nil {
		return err
	}

	key := sessionKey(sessionID)
	var pushed *redis.IntCmd
	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pushed = pipe.RPushX(ctx, key, values...)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append chat messages: %w", err)
	}
	if pushed.Val() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// History 按写入顺序返回会话的全部消息。
func (r *redisConversationRepository) History(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	raw, err := r.redisClient.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	messages := make([]model.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var m model.ChatMessage
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (r *redisConversationRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.redisClient.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check chat session: %w", err)
	}
	return n > 0, nil
}

func (r *redisConversationRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.redisClient.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	return nil
}
