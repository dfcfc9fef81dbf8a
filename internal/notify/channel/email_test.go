// internal/notify/channel/email_test.go
package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/notify/template"
)

type mockSES struct {
	sendFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls    int
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls++
	return m.sendFunc(ctx, params, optFns...)
}

func TestEmailSend_Success(t *testing.T) {
	var captured *ses.SendEmailInput
	mock := &mockSES{
		sendFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{MessageId: aws.String("msg-123")}, nil
		},
	}

	s := NewEmailSender(mock, "noreply@edleadimpact.org", logger.NewTestLogger(t))
	out := s.Send(context.Background(), Message{
		Destination: "thandi@example.com",
		Subject:     "Hello",
		Body:        "<p>Hi</p>",
	})

	assert.True(t, out.Success)
	assert.Equal(t, template.ChannelEmail, out.Channel)
	assert.Equal(t, "msg-123", out.ProviderID)
	require.NotNil(t, captured)
	assert.Equal(t, "noreply@edleadimpact.org", *captured.Source)
	assert.Equal(t, []string{"thandi@example.com"}, captured.Destination.ToAddresses)
}

func TestEmailSend_ProviderFailureBecomesOutcome(t *testing.T) {
	mock := &mockSES{
		sendFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("MessageRejected: address suppressed")
		},
	}

	s := NewEmailSender(mock, "noreply@edleadimpact.org", logger.NewTestLogger(t))
	out := s.Send(context.Background(), Message{Destination: "x@example.com", Subject: "Hi", Body: "b"})

	assert.False(t, out.Success)
	assert.Contains(t, out.ErrorMessage, "MessageRejected")
}

func TestEmailSend_InvalidAddressRejectedLocally(t *testing.T) {
	mock := &mockSES{
		sendFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			t.Fatal("provider must not be called")
			return nil, nil
		},
	}

	s := NewEmailSender(mock, "noreply@edleadimpact.org", logger.NewTestLogger(t))
	out := s.Send(context.Background(), Message{Destination: "not-an-email", Subject: "Hi", Body: "b"})

	assert.False(t, out.Success)
	assert.Contains(t, out.ErrorMessage, "invalid email address")
	assert.Zero(t, mock.calls)
}

func TestEmailSend_NotConfigured(t *testing.T) {
	s := NewEmailSender(nil, "", logger.NewTestLogger(t))
	out := s.Send(context.Background(), Message{Destination: "x@example.com", Subject: "Hi", Body: "b"})

	assert.False(t, out.Success)
	assert.Contains(t, out.ErrorMessage, "not configured")
}
