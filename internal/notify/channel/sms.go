// internal/notify/channel/sms.go
package channel

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	commonerrors "github.com/myster33/edlead-impact-sub001/internal/common/errors"
	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/notify/phone"
	"github.com/myster33/edlead-impact-sub001/internal/notify/template"
)

// SNSAPI is the slice of the SNS client the SMS sender uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSSender delivers SMS through AWS SNS. Destinations are normalized to
// E.164 before publishing; a number too short to be dialable is rejected
// locally without hitting the provider.
type SMSSender struct {
	client     SNSAPI
	senderID   string
	normalizer *phone.Normalizer
	logger     logger.Logger
}

func NewSMSSender(client SNSAPI, senderID string, normalizer *phone.Normalizer, log logger.Logger) *SMSSender {
	return &SMSSender{
		client:     client,
		senderID:   senderID,
		normalizer: normalizer,
		logger:     log.WithFields(map[string]interface{}{"channel": "sms"}),
	}
}

func (s *SMSSender) Channel() template.Channel {
	return template.ChannelSMS
}

func (s *SMSSender) Send(ctx context.Context, msg Message) Outcome {
	if s.client == nil {
		return rejection(template.ChannelSMS, commonerrors.NewTransportNotConfiguredError("sms"))
	}

	number := s.normalizer.Normalize(msg.Destination)
	if len(number) < 10 {
		return rejection(template.ChannelSMS, commonerrors.NewInvalidDestinationError("sms", "invalid phone number: "+msg.Destination))
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(number),
		Message:     aws.String(msg.Body),
	}
	if s.senderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.senderID),
			},
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		}
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		s.logger.Error("SNS publish failed", map[string]interface{}{
			"destination": number,
			"error":       err.Error(),
		})
		return failure(template.ChannelSMS, err.Error())
	}

	messageID := ""
	if out.MessageId != nil {
		messageID = *out.MessageId
	}
	s.logger.Info("sms sent", map[string]interface{}{
		"destination": number,
		"messageId":   messageID,
	})
	return success(template.ChannelSMS, messageID)
}
