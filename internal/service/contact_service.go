package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-go/internal/model"
	"portfolio-go/pkg/log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// ContactService 定义了联系表单的业务接口。
type ContactService interface {
	Submit(ctx context.Context, req model.ContactRequest) (*model.ContactReceipt, error)
}

type contactService struct {
	now func() time.Time
}

// NewContactService 创建一个新的 ContactService。提交只做校验与确认，不存储也不发送邮件。
func NewContactService() ContactService {
	return &contactService{now: time.Now}
}

// Submit 校验必填字段并返回一张回执。
func (s *contactService) Submit(_ context.Context, req model.ContactRequest) (*model.ContactReceipt, error) {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, verrs[0].Field())
		}
		return nil, fmt.Errorf("failed to validate contact request: %w", err)
	}

	receipt := &model.ContactReceipt{
		ID:         uuid.NewString(),
		ReceivedAt: s.now(),
	}
	log.Infow("contact message received",
		"receiptId", receipt.ID,
		"name", req.Name,
		"email", req.Email,
		"subject", req.Subject,
		"messageLength", len(req.Message),
	)
	return receipt, nil
}
