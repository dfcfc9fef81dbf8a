// internal/notify/channel/sms_test.go
package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/notify/phone"
)

type mockSNS struct {
	publishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       int
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls++
	return m.publishFunc(ctx, params, optFns...)
}

func TestSMSSend_NormalizesDestination(t *testing.T) {
	var captured *sns.PublishInput
	mock := &mockSNS{
		publishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
		},
	}

	s := NewSMSSender(mock, "EdLead", phone.NewNormalizer("27"), logger.NewTestLogger(t))
	out := s.Send(context.Background(), Message{Destination: "082 555 1234", Body: "hello"})

	assert.True(t, out.Success)
	require.NotNil(t, captured)
	assert.Equal(t, "+27825551234", *captured.PhoneNumber)
	assert.Equal(t, "hello", *captured.Message)
	assert.Equal(t, "EdLead", *captured.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue)
}

func TestSMSSend_ShortNumberRejectedLocally(t *testing.T) {
	mock := &mockSNS{
		publishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			t.Fatal("provider must not be called")
			return nil, nil
		},
	}

	s := NewSMSSender(mock, "", phone.NewNormalizer("27"), logger.NewTestLogger(t))
	out := s.Send(context.Background(), Message{Destination: "12345", Body: "hello"})

	assert.False(t, out.Success)
	assert.Contains(t, out.ErrorMessage, "invalid phone number")
	assert.Zero(t, mock.calls)
}

func TestSMSSend_ProviderFailureBecomesOutcome(t *testing.T) {
	mock := &mockSNS{
		publishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	s := NewSMSSender(mock, "", phone.NewNormalizer("27"), logger.NewTestLogger(t))
	out := s.Send(context.Background(), Message{Destination: "0825551234", Body: "hello"})

	assert.False(t, out.Success)
	assert.Equal(t, "throttled", out.ErrorMessage)
}

func TestSMSSend_NotConfigured(t *testing.T) {
	s := NewSMSSender(nil, "", phone.NewNormalizer("27"), logger.NewTestLogger(t))
	out := s.Send(context.Background(), Message{Destination: "0825551234", Body: "hello"})
	assert.False(t, out.Success)
	assert.Contains(t, out.ErrorMessage, "not configured")
}
