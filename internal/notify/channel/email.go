// internal/notify/channel/email.go
package channel

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	commonerrors "github.com/myster33/edlead-impact-sub001/internal/common/errors"
	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/notify/template"
)

// SESAPI is the slice of the SES client the email sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailSender delivers HTML email through AWS SES.
type EmailSender struct {
	client SESAPI
	from   string
	logger logger.Logger
}

func NewEmailSender(client SESAPI, fromEmail string, log logger.Logger) *EmailSender {
	return &EmailSender{
		client: client,
		from:   fromEmail,
		logger: log.WithFields(map[string]interface{}{"channel": "email"}),
	}
}

func (s *EmailSender) Channel() template.Channel {
	return template.ChannelEmail
}

func (s *EmailSender) Send(ctx context.Context, msg Message) Outcome {
	if s.client == nil || s.from == "" {
		return rejection(template.ChannelEmail, commonerrors.NewTransportNotConfiguredError("email"))
	}
	if !strings.Contains(msg.Destination, "@") {
		return rejection(template.ChannelEmail, commonerrors.NewInvalidDestinationError("email", "invalid email address: "+msg.Destination))
	}
	if msg.Subject == "" {
		return failure(template.ChannelEmail, "email requires a subject")
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.Destination},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		s.logger.Error("SES send failed", map[string]interface{}{
			"destination": msg.Destination,
			"error":       err.Error(),
		})
		return failure(template.ChannelEmail, err.Error())
	}

	messageID := ""
	if out.MessageId != nil {
		messageID = *out.MessageId
	}
	s.logger.Info("email sent", map[string]interface{}{
		"destination": msg.Destination,
		"messageId":   messageID,
	})
	return success(template.ChannelEmail, messageID)
}
