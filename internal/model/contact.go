package model

import "time"

// ContactRequest 是联系表单提交的请求体。
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

// ContactReceipt 是联系表单被接收后的回执，不会被持久化。
type ContactReceipt struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"receivedAt"`
}
