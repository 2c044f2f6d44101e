package middleware

import (
	"net/http"
	"runtime/debug"

	"portfolio-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// Recovery 捕获处理链中的 panic，记录堆栈并返回统一的 500 响应。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("panic recovered",
					"error", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    http.StatusInternalServerError,
					"message": "Server error processing your request",
					"data":    nil,
				})
			}
		}()
		c.Next()
	}
}
