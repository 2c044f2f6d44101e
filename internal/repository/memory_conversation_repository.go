package repository

import (
	"context"
	"sync"
	"time"

	"portfolio-go/internal/model"
)

// 后台清理过期会话的最短与最长间隔。
const (
	minSweepInterval = time.Second
	maxSweepInterval = time.Minute
)

type memorySession struct {
	messages  []model.ChatMessage
	expiresAt time.Time
}

// memoryConversationRepository 是单进程部署使用的内存实现。
// 过期的会话在访问时惰性清除，同时由后台 goroutine 定期清理。
type memoryConversationRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memorySession
}

// NewMemoryConversationRepository 创建一个内存中的 ConversationRepository 实例，
// 并启动清理过期会话的后台 goroutine，ctx 结束时停止。
func NewMemoryConversationRepository(ctx context.Context, ttl time.Duration) ConversationRepository {
	r := newMemoryConversationRepository(ttl, time.Now)
	go r.runSweeper(ctx, sweepInterval(ttl))
	return r
}

func newMemoryConversationRepository(ttl time.Duration, now func() time.Time) *memoryConversationRepository {
	return &memoryConversationRepository{
		ttl:      ttl,
		now:      now,
		sessions: make(map[string]*memorySession),
	}
}

func sweepInterval(ttl time.Duration) time.Duration {
	switch {
	case ttl < minSweepInterval:
		return minSweepInterval
	case ttl > maxSweepInterval:
		return maxSweepInterval
	default:
		return ttl
	}
}

func (r *memoryConversationRepository) runSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep 删除所有已过期的会话，返回删除的数量。
func (r *memoryConversationRepository) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, s := range r.sessions {
		if !now.Before(s.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// lookup 返回未过期的会话，调用方必须持有锁。
func (r *memoryConversationRepository) lookup(sessionID string) (*memorySession, bool) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, false
	}
	if !r.now().Before(s.expiresAt) {
		delete(r.sessions, sessionID)
		return nil, false
	}
	return s, true
}

func (r *memoryConversationRepository) Create(_ context.Context, sessionID string, messages ...model.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(sessionID)
	if !ok {
		s = &memorySession{}
		r.sessions[sessionID] = s
	}
	s.messages = append(s.messages, messages...)
	s.expiresAt = r.now().Add(r.ttl)
	return nil
}

// Append 只写入已存在的会话，未命中时不会插入新条目。
func (r *memoryConversationRepository) Append(_ context.Context, sessionID string, messages ...model.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	s.messages = append(s.messages, messages...)
	s.expiresAt = r.now().Add(r.ttl)
	return nil
}

func (r *memoryConversationRepository) History(_ context.Context, sessionID string) ([]model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(sessionID)
	if !ok {
		return []model.ChatMessage{}, nil
	}
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

func (r *memoryConversationRepository) Exists(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.lookup(sessionID)
	return ok, nil
}

func (r *memoryConversationRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// size 返回当前持有的会话条目数，包括尚未清理的过期条目。
func (r *memoryConversationRepository) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
