package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"portfolio-go/internal/model"
	"portfolio-go/internal/service"
	"portfolio-go/pkg/log"
	"portfolio-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// Suggestions 是聊天界面展示的快捷提问。
var Suggestions = []string{
	"What skills do you have?",
	"Tell me about your projects",
	"How can I contact you?",
	"What's your experience?",
}

// ChatHandler 负责聊天会话的 REST 接口和 WebSocket 连接。
type ChatHandler struct {
	chatService service.ChatService
	jwtManager  *token.JWTManager
	upgrader    websocket.Upgrader
}

// NewChatHandler 创建一个新的 ChatHandler。allowedOrigins 包含 "*" 时允许所有来源。
func NewChatHandler(chatService service.ChatService, jwtManager *token.JWTManager, allowedOrigins []string) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		jwtManager:  jwtManager,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || lo.Contains(allowedOrigins, "*") {
					return true
				}
				return lo.Contains(allowedOrigins, origin)
			},
		},
	}
}

// StartSession 创建会话并签发会话令牌。
func (h *ChatHandler) StartSession(c *gin.Context) {
	session, err := h.chatService.StartSession(c.Request.Context())
	if err != nil {
		log.Error("Chat: failed to start session", err)
		fail(c, http.StatusInternalServerError, msgServerError)
		return
	}

	tokenString, expiresAt, err := h.jwtManager.GenerateToken(session.ID)
	if err != nil {
		log.Error("Chat: failed to sign session token", err)
		fail(c, http.StatusInternalServerError, msgServerError)
		return
	}

	success(c, "success", gin.H{
		"sessionId":   session.ID,
		"token":       tokenString,
		"expiresAt":   expiresAt,
		"messages":    session.Messages,
		"suggestions": Suggestions,
	})
}

// GetHistory 返回当前会话的消息日志。
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID, ok := sessionIDFrom(c)
	if !ok {
		return
	}

	messages, err := h.chatService.History(c.Request.Context(), sessionID)
	if err != nil {
		h.writeChatError(c, err)
		return
	}
	success(c, "success", messages)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage 阻塞到助手回复生成后返回该回复。
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID, ok := sessionIDFrom(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Chat: invalid message payload, error: %v", err)
		fail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	reply, err := h.chatService.Ask(c.Request.Context(), sessionID, req.Content)
	if err != nil {
		h.writeChatError(c, err)
		return
	}
	success(c, "success", reply)
}

// EndSession 取消等待中的回复并丢弃会话。
func (h *ChatHandler) EndSession(c *gin.Context) {
	sessionID, ok := sessionIDFrom(c)
	if !ok {
		return
	}

	if err := h.chatService.EndSession(c.Request.Context(), sessionID); err != nil {
		h.writeChatError(c, err)
		return
	}
	success(c, "Chat session ended", nil)
}

func (h *ChatHandler) writeChatError(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		log.Infof("Chat: client went away before the reply was ready")
		return
	}
	status, message := chatErrorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error("Chat: request failed", err)
	}
	fail(c, status, message)
}

// chatErrorStatus 将业务错误映射为状态码与对外消息。
func chatErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest, "Message must not be empty"
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, "Chat session not found or expired"
	case errors.Is(err, service.ErrReplyPending):
		return http.StatusConflict, "Assistant is still typing"
	case errors.Is(err, service.ErrReplyCanceled):
		return http.StatusConflict, "Assistant reply canceled"
	default:
		return http.StatusInternalServerError, msgServerError
	}
}

func sessionIDFrom(c *gin.Context) (string, bool) {
	v, exists := c.Get("claims")
	claims, ok := v.(*token.SessionClaims)
	if !exists || !ok {
		fail(c, http.StatusUnauthorized, "Invalid or expired session token")
		return "", false
	}
	return claims.SessionID, true
}

// Handle 处理一个传入的 WebSocket 连接。
func (h *ChatHandler) Handle(c *gin.Context) {
	claims, err := h.jwtManager.VerifyToken(c.Param("token"))
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid or expired session token")
		return
	}
	sessionID := claims.SessionID

	// 升级前确认会话仍然存在
	if _, err := h.chatService.History(c.Request.Context(), sessionID); err != nil {
		h.writeChatError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err)
		return
	}
	defer conn.Close()
	// 界面关闭后不再渲染尚未送达的回复
	defer h.chatService.CancelPending(sessionID)

	log.Infof("WebSocket connection established, session: %s", sessionID)
	sink := &wsSink{conn: conn}

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("Failed to read from WebSocket: %v", err)
			}
			break
		}

		content, ok := parseClientFrame(frame)
		if !ok {
			sink.writeError("Unsupported frame type")
			continue
		}

		if _, err := h.chatService.Send(c.Request.Context(), sessionID, content, sink); err != nil {
			_, message := chatErrorStatus(err)
			if !errors.Is(err, service.ErrEmptyMessage) && !errors.Is(err, service.ErrReplyPending) {
				log.Errorf("Failed to handle chat message for session %s: %v", sessionID, err)
			}
			sink.writeError(message)
			if errors.Is(err, service.ErrSessionNotFound) {
				break
			}
		}
	}
	log.Infof("WebSocket connection closed, session: %s", sessionID)
}

type clientFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// parseClientFrame 接受原始文本或 {"type":"message","content":...}。
func parseClientFrame(frame []byte) (string, bool) {
	text := string(frame)
	if !strings.HasPrefix(strings.TrimSpace(text), "{") {
		return text, true
	}

	var f clientFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		// 不是合法 JSON，按普通文本处理
		return text, true
	}
	if f.Type != "message" {
		return "", false
	}
	return f.Content, true
}

// wsSink 将聊天事件写入 WebSocket。写操作会被计时器 goroutine 并发调用，需要加锁。
type wsSink struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSink) Typing() {
	s.writeJSON(gin.H{"type": "typing"})
}

func (s *wsSink) Deliver(message model.ChatMessage) {
	s.writeJSON(gin.H{"type": "message", "data": message})
	s.writeJSON(gin.H{
		"type":      "completion",
		"status":    "finished",
		"message":   "Reply completed",
		"timestamp": time.Now().UnixMilli(),
	})
}

func (s *wsSink) writeError(message string) {
	s.writeJSON(gin.H{"type": "error", "message": message})
}

func (s *wsSink) writeJSON(v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(v); err != nil {
		log.Warnf("Failed to write to WebSocket: %v", err)
	}
}
