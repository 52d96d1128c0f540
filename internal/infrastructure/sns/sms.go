package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-push-inbox/internal/domain"
)

type publishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSSink mirrors displayed notifications to a phone number as SMS.
type SMSSink struct {
	client publishAPI
	to     string
}

func NewSMSSink(client publishAPI, to string) *SMSSink {
	return &SMSSink{client: client, to: to}
}

func (s *SMSSink) Name() string { return "sms" }

func (s *SMSSink) Show(ctx context.Context, _ domain.Channel, req domain.DisplayRequest) error {
	msg := req.Title
	if req.Body != "" {
		msg += ": " + req.Body
	}
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &s.to,
		Message:     &msg,
	})
	if err != nil {
		return fmt.Errorf("sns publish sms: %w", err)
	}
	return nil
}
