package handler

import (
	"errors"
	"io"
	"net/http"

	"portfolio-go/internal/model"
	"portfolio-go/internal/service"
	"portfolio-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ContactHandler 负责处理联系表单的提交。
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler 创建一个新的 ContactHandler。
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Submit 处理 POST /api/contact。
func (h *ContactHandler) Submit(c *gin.Context) {
	var req model.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 空请求体等同于所有字段缺失
		if errors.Is(err, io.EOF) {
			fail(c, http.StatusBadRequest, msgMissingFields)
			return
		}
		log.Warnf("Contact: invalid request payload, error: %v", err)
		fail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	receipt, err := h.contactService.Submit(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrMissingRequiredField) {
			fail(c, http.StatusBadRequest, msgMissingFields)
			return
		}
		log.Error("Contact: failed to process submission", err)
		fail(c, http.StatusInternalServerError, msgServerError)
		return
	}

	success(c, msgContactSuccess, receipt)
}
