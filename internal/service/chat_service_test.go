package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"portfolio-go/internal/config"
	"portfolio-go/internal/model"
	"portfolio-go/internal/repository"
	"portfolio-go/internal/repository/mocks"
	"portfolio-go/internal/responder"
	"portfolio-go/pkg/delay"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestResponder() *responder.Responder {
	return responder.New(model.Profile{Name: "Ada Example", Email: "ada@example.com"})
}

func newTestRepository(t *testing.T) repository.ConversationRepository {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return repository.NewMemoryConversationRepository(ctx, time.Minute)
}

func newTestChatService(t *testing.T, typingDelay time.Duration) *chatService {
	cfg := config.ChatConfig{TypingDelay: typingDelay, SessionTTL: time.Minute}
	return NewChatService(newTestResponder(), newTestRepository(t), cfg).(*chatService)
}

type recordingSink struct {
	mu     sync.Mutex
	events []string
	msgs   []model.ChatMessage
	got    chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{got: make(chan struct{}, 1)}
}

func (r *recordingSink) Typing() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "typing")
}

func (r *recordingSink) Deliver(m model.ChatMessage) {
	r.mu.Lock()
	r.events = append(r.events, "message")
	r.msgs = append(r.msgs, m)
	r.mu.Unlock()
	r.got <- struct{}{}
}

func (r *recordingSink) snapshot() ([]string, []model.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...), append([]model.ChatMessage(nil), r.msgs...)
}

func TestChatService_StartSession(t *testing.T) {
	req := require.New(t)
	svc := newTestChatService(t, 0)
	ctx := context.Background()

	session, err := svc.StartSession(ctx)
	req.NoError(err)
	req.NotEmpty(session.ID)
	req.Len(session.Messages, 1)
	req.Equal(model.RoleAssistant, session.Messages[0].Role)
	req.Equal(newTestResponder().Welcome(), session.Messages[0].Content)
	req.Equal(session.CreatedAt.Add(time.Minute), session.ExpiresAt)

	history, err := svc.History(ctx, session.ID)
	req.NoError(err)
	req.Equal(session.Messages, history)
}

func TestChatService_Ask(t *testing.T) {
	req := require.New(t)
	svc := newTestChatService(t, 10 * time.Millisecond)
	ctx := context.Background()
	r := newTestResponder()

	session, err := svc.StartSession(ctx)
	req.NoError(err)

	started := time.Now()
	reply, err := svc.Ask(ctx, session.ID, "What are your skills and projects?")
	req.NoError(err)
	req.GreaterOrEqual(time.Since(started), 10*time.Millisecond)
	req.Equal(model.RoleAssistant, reply.Role)
	req.Equal(r.Respond("skills"), reply.Content)

	reply, err = svc.Ask(ctx, session.ID, "Thanks a lot")
	req.NoError(err)
	req.Equal(r.Respond("thank you"), reply.Content)

	history, err := svc.History(ctx, session.ID)
	req.NoError(err)
	req.Len(history, 5)
	roles := []string{}
	for _, m := range history {
		roles = append(roles, m.Role)
	}
	req.Equal([]string{"assistant", "user", "assistant", "user", "assistant"}, roles)
	req.Equal("What are your skills and projects?", history[1].Content)
}

func TestChatService_SendValidation(t *testing.T) {
	svc := newTestChatService(t, 0)
	ctx := context.Background()
	session, err := svc.StartSession(ctx)
	require.NoError(t, err)

	tests := []struct {
		name      string
		sessionID string
		content   string
		wantErr   error
	}{
		{"empty message", session.ID, "", ErrEmptyMessage},
		{"whitespace message", session.ID, "   \n\t", ErrEmptyMessage},
		{"unknown session", "missing", "hello", ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tt.sessionID, tt.content, newRecordingSink())
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	history, err := svc.History(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, history, 1, "rejected messages must not be logged")
}

func TestChatService_TypingBeforeDelivery(t *testing.T) {
	req := require.New(t)
	svc := newTestChatService(t, 0)
	ctx := context.Background()
	session, err := svc.StartSession(ctx)
	req.NoError(err)

	sink := newRecordingSink()
	d, err := svc.Send(ctx, session.ID, "Hello there", sink)
	req.NoError(err)

	select {
	case <-sink.got:
	case <-time.After(time.Second):
		t.Fatal("reply was not delivered")
	}
	req.NoError(d.Wait(ctx))
	req.True(d.Fired())

	events, msgs := sink.snapshot()
	req.Equal([]string{"typing", "message"}, events)
	req.Equal(newTestResponder().Respond("Hello there"), msgs[0].Content)
}

func TestChatService_RejectsWhileTyping(t *testing.T) {
	req := require.New(t)
	svc := newTestChatService(t, time.Hour)
	ctx := context.Background()
	session, err := svc.StartSession(ctx)
	req.NoError(err)

	sink := newRecordingSink()
	d, err := svc.Send(ctx, session.ID, "skills", sink)
	req.NoError(err)

	_, err = svc.Send(ctx, session.ID, "projects", newRecordingSink())
	req.ErrorIs(err, ErrReplyPending)

	req.True(svc.CancelPending(session.ID))
	req.False(svc.CancelPending(session.ID))
	req.True(d.Canceled())

	// 取消后可以继续发送
	next, err := svc.Send(ctx, session.ID, "projects", newRecordingSink())
	req.NoError(err)
	req.True(svc.CancelPending(session.ID))
	req.True(next.Canceled())

	_, msgs := sink.snapshot()
	req.Empty(msgs, "canceled reply must never be delivered")

	history, err := svc.History(ctx, session.ID)
	req.NoError(err)
	req.Len(history, 3)
}

func TestChatService_AskContextCanceled(t *testing.T) {
	req := require.New(t)
	svc := newTestChatService(t, time.Hour)
	session, err := svc.StartSession(context.Background())
	req.NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.Ask(ctx, session.ID, "skills")
	req.ErrorIs(err, context.DeadlineExceeded)
	req.False(svc.CancelPending(session.ID), "ask must cancel its own pending reply")

	history, err := svc.History(context.Background(), session.ID)
	req.NoError(err)
	req.Len(history, 2)
}

func TestChatService_EndSessionCancelsAsk(t *testing.T) {
	req := require.New(t)
	svc := newTestChatService(t, time.Hour)
	ctx := context.Background()
	session, err := svc.StartSession(ctx)
	req.NoError(err)

	errs := make(chan error, 1)
	go func() {
		_, err := svc.Ask(ctx, session.ID, "skills")
		errs <- err
	}()

	req.Eventually(func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		p, ok := svc.pending[session.ID]
		return ok && p.deferred != nil
	}, time.Second, 5*time.Millisecond)

	req.NoError(svc.EndSession(ctx, session.ID))

	select {
	case err := <-errs:
		req.ErrorIs(err, ErrReplyCanceled)
	case <-time.After(time.Second):
		t.Fatal("ask did not return after the session ended")
	}

	_, err = svc.History(ctx, session.ID)
	req.ErrorIs(err, ErrSessionNotFound)
}

func TestChatService_RepositoryFailures(t *testing.T) {
	ctx := context.Background()
	cfg := config.ChatConfig{TypingDelay: time.Hour, SessionTTL: time.Minute}
	down := errors.New("redis down")

	t.Run("start session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockConversationRepository(ctrl)
		svc := NewChatService(newTestResponder(), repo, cfg)

		repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(down)

		_, err := svc.StartSession(ctx)
		require.ErrorIs(t, err, down)
	})

	t.Run("session lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockConversationRepository(ctrl)
		svc := NewChatService(newTestResponder(), repo, cfg)

		repo.EXPECT().Exists(gomock.Any(), "s").Return(false, down)
		repo.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Send(ctx, "s", "skills", newRecordingSink())
		require.ErrorIs(t, err, down)
		require.NotErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("user message append releases the slot", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockConversationRepository(ctrl)
		svc := NewChatService(newTestResponder(), repo, cfg)

		repo.EXPECT().Exists(gomock.Any(), "s").Return(true, nil).Times(2)
		gomock.InOrder(
			repo.EXPECT().Append(gomock.Any(), "s", gomock.Any()).Return(down),
			repo.EXPECT().Append(gomock.Any(), "s", gomock.Any()).Return(nil),
		)

		_, err := svc.Send(ctx, "s", "skills", newRecordingSink())
		req.ErrorIs(err, down)

		d, err := svc.Send(ctx, "s", "skills", newRecordingSink())
		req.NoError(err)
		req.True(svc.CancelPending("s"))
		req.True(d.Canceled())
	})

	t.Run("session ended between lookup and append", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockConversationRepository(ctrl)
		svc := NewChatService(newTestResponder(), repo, cfg)

		repo.EXPECT().Exists(gomock.Any(), "s").Return(true, nil)
		repo.EXPECT().Append(gomock.Any(), "s", gomock.Any()).Return(repository.ErrSessionNotFound)

		_, err := svc.Send(ctx, "s", "skills", newRecordingSink())
		req.ErrorIs(err, ErrSessionNotFound)
		req.False(svc.CancelPending("s"))
	})
}

// blockingReplier 在 Respond 中停住，直到测试放行。
type blockingReplier struct {
	*responder.Responder
	entered chan struct{}
	release chan struct{}
}

func (b *blockingReplier) Respond(utterance string) string {
	close(b.entered)
	<-b.release
	return b.Responder.Respond(utterance)
}

func TestChatService_EndSessionDuringRunningReply(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := newTestRepository(t)
	replier := &blockingReplier{
		Responder: newTestResponder(),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	svc := NewChatService(replier, repo, config.ChatConfig{SessionTTL: time.Minute})

	session, err := svc.StartSession(ctx)
	req.NoError(err)

	sink := newRecordingSink()
	d, err := svc.Send(ctx, session.ID, "skills", sink)
	req.NoError(err)

	select {
	case <-replier.entered:
	case <-time.After(time.Second):
		t.Fatal("reply did not start")
	}

	// 回复已在执行，无法取消，但会话结束后它不能再写回
	req.NoError(svc.EndSession(ctx, session.ID))
	close(replier.release)
	req.NoError(d.Wait(ctx))

	ok, err := repo.Exists(ctx, session.ID)
	req.NoError(err)
	req.False(ok, "a late reply must not recreate an ended session")

	_, err = svc.History(ctx, session.ID)
	req.ErrorIs(err, ErrSessionNotFound)

	events, msgs := sink.snapshot()
	req.Equal([]string{"typing"}, events)
	req.Empty(msgs)
}

func TestChatService_CancelReplyOnlyTouchesItsOwnSlot(t *testing.T) {
	req := require.New(t)
	svc := newTestChatService(t, time.Hour)
	ctx := context.Background()
	session, err := svc.StartSession(ctx)
	req.NoError(err)

	// 一条已经完成的旧回复
	old := delay.Schedule(0, func() {})
	req.NoError(old.Wait(ctx))

	current, err := svc.Send(ctx, session.ID, "skills", newRecordingSink())
	req.NoError(err)

	req.False(svc.cancelReply(session.ID, old))
	req.True(current.Pending(), "another request's reply must stay scheduled")

	req.True(svc.cancelReply(session.ID, current))
	req.True(current.Canceled())
	req.False(svc.CancelPending(session.ID), "the slot is released with its own reply")

	_, err = svc.Send(ctx, session.ID, "projects", newRecordingSink())
	req.NoError(err)
	req.True(svc.CancelPending(session.ID))
}
