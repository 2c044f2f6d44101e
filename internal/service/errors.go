// Package service 包含了应用的业务逻辑层。
package service

import "errors"

var (
	// ErrMissingRequiredField 表示联系表单缺少必填字段。
	ErrMissingRequiredField = errors.New("name, email and message are required")
	// ErrEmptyMessage 表示聊天消息去除空白后为空。
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrSessionNotFound 表示聊天会话不存在或已过期。
	ErrSessionNotFound = errors.New("chat session not found or expired")
	// ErrReplyPending 表示上一条回复仍在"输入中"。
	ErrReplyPending = errors.New("assistant is still typing")
	// ErrReplyCanceled 表示等待中的回复已被取消。
	ErrReplyCanceled = errors.New("assistant reply canceled")
)
