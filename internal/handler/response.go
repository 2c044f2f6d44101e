// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 对外错误消息。
const (
	msgInvalidBody    = "Invalid request body"
	msgServerError    = "Server error processing your request"
	msgMissingFields  = "Name, email and message are required"
	msgContactSuccess = "Message received successfully"
)

func success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": message, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": nil})
}
