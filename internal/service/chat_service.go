package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"portfolio-go/internal/config"
	"portfolio-go/internal/model"
	"portfolio-go/internal/repository"
	"portfolio-go/pkg/delay"
	"portfolio-go/pkg/log"

	"github.com/google/uuid"
)

// Replier 将一句用户输入映射为一条预设回复。
type Replier interface {
	Respond(utterance string) string
	Welcome() string
}

// ReplySink 接收聊天界面需要渲染的事件。Typing 在回复被调度前同步调用，
// Deliver 在延迟结束后于计时器 goroutine 中调用。
type ReplySink interface {
	Typing()
	Deliver(message model.ChatMessage)
}

// ReplyFunc 将普通函数适配为只关心最终回复的 ReplySink。
type ReplyFunc func(message model.ChatMessage)

func (f ReplyFunc) Typing() {}

func (f ReplyFunc) Deliver(message model.ChatMessage) { f(message) }

// ChatService 定义了助手聊天的操作接口。
type ChatService interface {
	StartSession(ctx context.Context) (*model.ChatSession, error)
	Send(ctx context.Context, sessionID, content string, sink ReplySink) (*delay.Deferred, error)
	Ask(ctx context.Context, sessionID, content string) (*model.ChatMessage, error)
	History(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	CancelPending(sessionID string) bool
	EndSession(ctx context.Context, sessionID string) error
}

// pendingReply 占住会话的回复槽位；deferred 为 nil 表示用户消息仍在写入。
type pendingReply struct {
	deferred *delay.Deferred
}

func (p *pendingReply) active() bool {
	return p.deferred == nil || p.deferred.Pending()
}

type chatService struct {
	replier          Replier
	conversationRepo repository.ConversationRepository
	typingDelay      time.Duration
	sessionTTL       time.Duration
	now              func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingReply
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(replier Replier, conversationRepo repository.ConversationRepository, cfg config.ChatConfig) ChatService {
	return &chatService{
		replier:          replier,
		conversationRepo: conversationRepo,
		typingDelay:      cfg.TypingDelay,
		sessionTTL:       cfg.SessionTTL,
		now:              time.Now,
		pending:          make(map[string]*pendingReply),
	}
}

// StartSession 创建新会话，并把欢迎语作为第一条助手消息写入日志。
func (s *chatService) StartSession(ctx context.Context) (*model.ChatSession, error) {
	sessionID := uuid.NewString()
	now := s.now()
	welcome := model.ChatMessage{
		Role:      model.RoleAssistant,
		Content:   s.replier.Welcome(),
		Timestamp: now,
	}
	if err := s.conversationRepo.Create(ctx, sessionID, welcome); err != nil {
		return nil, fmt.Errorf("failed to start chat session: %w", err)
	}

	log.Infow("chat session started", "sessionId", sessionID)
	return &model.ChatSession{
		ID:        sessionID,
		Messages:  []model.ChatMessage{welcome},
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}, nil
}

// Send 记录用户消息并调度一条延迟回复。
func (s *chatService) Send(ctx context.Context, sessionID, content string, sink ReplySink) (*delay.Deferred, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return nil, err
	}

	// 1. 占住回复槽位，同一会话同时只允许一条回复在"输入中"
	s.mu.Lock()
	if p, ok := s.pending[sessionID]; ok && p.active() {
		s.mu.Unlock()
		return nil, ErrReplyPending
	}
	slot := &pendingReply{}
	s.pending[sessionID] = slot
	s.mu.Unlock()

	// 2. 写入用户消息，内容保持原样
	userMsg := model.ChatMessage{Role: model.RoleUser, Content: content, Timestamp: s.now()}
	if err := s.conversationRepo.Append(ctx, sessionID, userMsg); err != nil {
		s.release(sessionID, slot)
		if errors.Is(err, repository.ErrSessionNotFound) {
			// 会话在检查之后被结束
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to append user message: %w", err)
	}

	// 3. 通知界面进入"输入中"，再调度回复
	sink.Typing()
	s.mu.Lock()
	defer s.mu.Unlock()
	slot.deferred = delay.Schedule(s.typingDelay, func() {
		s.deliver(sessionID, slot, content, sink)
	})
	return slot.deferred, nil
}

func (s *chatService) deliver(sessionID string, slot *pendingReply, utterance string, sink ReplySink) {
	reply := model.ChatMessage{
		Role:      model.RoleAssistant,
		Content:   s.replier.Respond(utterance),
		Timestamp: s.now(),
	}

	// 使用后台上下文，原始请求结束后仍需保存已生成的回复
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.conversationRepo.Append(ctx, sessionID, reply)
	s.release(sessionID, slot)
	if errors.Is(err, repository.ErrSessionNotFound) {
		// 会话已结束，回复既不落库也不渲染
		log.Infof("Chat: dropped reply for ended session %s", sessionID)
		return
	}
	if err != nil {
		log.Errorf("Failed to save assistant reply for session %s: %v", sessionID, err)
	}
	sink.Deliver(reply)
}

func (s *chatService) release(sessionID string, slot *pendingReply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[sessionID] == slot {
		delete(s.pending, sessionID)
	}
}

// Ask 是 Send 的阻塞版本，等待回复或在 ctx 结束时取消它。
func (s *chatService) Ask(ctx context.Context, sessionID, content string) (*model.ChatMessage, error) {
	replies := make(chan model.ChatMessage, 1)
	d, err := s.Send(ctx, sessionID, content, ReplyFunc(func(m model.ChatMessage) {
		replies <- m
	}))
	if err != nil {
		return nil, err
	}

	select {
	case m := <-replies:
		return &m, nil
	case <-d.Done():
		// Deliver 先于 Done 关闭，已执行的回调一定已经写入 replies
		select {
		case m := <-replies:
			return &m, nil
		default:
			return nil, ErrReplyCanceled
		}
	case <-ctx.Done():
		s.cancelReply(sessionID, d)
		return nil, ctx.Err()
	}
}

// cancelReply 只取消 d 本身，并且只在槽位仍属于 d 时释放它。
func (s *chatService) cancelReply(sessionID string, d *delay.Deferred) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !d.Cancel() {
		return false
	}
	if p, ok := s.pending[sessionID]; ok && p.deferred == d {
		delete(s.pending, sessionID)
	}
	return true
}

// History 返回会话的完整消息日志。
func (s *chatService) History(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.conversationRepo.History(ctx, sessionID)
}

// CancelPending 取消尚未执行的回复，避免向已关闭的界面渲染。
func (s *chatService) CancelPending(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.pending[sessionID]
	if !ok || slot.deferred == nil {
		return false
	}
	if !slot.deferred.Cancel() {
		return false
	}
	delete(s.pending, sessionID)
	return true
}

// EndSession 取消等待中的回复并丢弃会话日志。
func (s *chatService) EndSession(ctx context.Context, sessionID string) error {
	s.CancelPending(sessionID)
	if err := s.conversationRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to end chat session: %w", err)
	}
	log.Infow("chat session ended", "sessionId", sessionID)
	return nil
}

func (s *chatService) ensureSession(ctx context.Context, sessionID string) error {
	ok, err := s.conversationRepo.Exists(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load chat session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}
