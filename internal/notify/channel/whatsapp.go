// internal/notify/channel/whatsapp.go
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	commonerrors "github.com/myster33/edlead-impact-sub001/internal/common/errors"
	httpclient "github.com/myster33/edlead-impact-sub001/internal/common/http"
	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/notify/phone"
	"github.com/myster33/edlead-impact-sub001/internal/notify/template"
)

// WhatsAppConfig carries the Twilio credentials and routing numbers.
type WhatsAppConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
}

// WhatsAppSender delivers messages through the Twilio Messages API using the
// whatsapp: address scheme.
type WhatsAppSender struct {
	cfg        WhatsAppConfig
	client     *httpclient.Client
	normalizer *phone.Normalizer
	logger     logger.Logger
}

func NewWhatsAppSender(cfg WhatsAppConfig, client *httpclient.Client, normalizer *phone.Normalizer, log logger.Logger) *WhatsAppSender {
	return &WhatsAppSender{
		cfg:        cfg,
		client:     client,
		normalizer: normalizer,
		logger:     log.WithFields(map[string]interface{}{"channel": "whatsapp"}),
	}
}

func (s *WhatsAppSender) Channel() template.Channel {
	return template.ChannelWhatsApp
}

// twilioMessageResponse is the subset of the Twilio response we read.
type twilioMessageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"` // error payload field
	Code    int    `json:"code"`
}

func (s *WhatsAppSender) Send(ctx context.Context, msg Message) Outcome {
	if s.cfg.AccountSID == "" || s.cfg.AuthToken == "" || s.cfg.FromNumber == "" {
		return rejection(template.ChannelWhatsApp, commonerrors.NewTransportNotConfiguredError("whatsapp"))
	}

	number := s.normalizer.Normalize(msg.Destination)
	if len(number) < 10 {
		return rejection(template.ChannelWhatsApp, commonerrors.NewInvalidDestinationError("whatsapp", "invalid phone number: "+msg.Destination))
	}

	form := url.Values{}
	form.Set("To", "whatsapp:"+number)
	form.Set("From", "whatsapp:"+s.cfg.FromNumber)
	form.Set("Body", msg.Body)
	// Twilio rejects non-absolute media URLs, so a data-URL banner rides along
	// in the text only when it is fetchable.
	if strings.HasPrefix(msg.MediaURL, "http://") || strings.HasPrefix(msg.MediaURL, "https://") {
		form.Set("MediaUrl", msg.MediaURL)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.AccountSID)
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return failure(template.ChannelWhatsApp, err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

	resp, err := s.client.DoWithContext(ctx, req)
	if err != nil {
		s.logger.Error("twilio request failed", map[string]interface{}{
			"destination": number,
			"error":       err.Error(),
		})
		return failure(template.ChannelWhatsApp, err.Error())
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var parsed twilioMessageResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := parsed.Message
		if reason == "" {
			reason = fmt.Sprintf("twilio returned status %d", resp.StatusCode)
		}
		s.logger.Error("twilio rejected message", map[string]interface{}{
			"destination": number,
			"status":      resp.StatusCode,
			"error":       reason,
		})
		return failure(template.ChannelWhatsApp, reason)
	}

	s.logger.Info("whatsapp sent", map[string]interface{}{
		"destination": number,
		"sid":         parsed.SID,
	})
	return success(template.ChannelWhatsApp, parsed.SID)
}
