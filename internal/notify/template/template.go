// internal/notify/template/template.go

// Package template resolves message content for a (template key, channel,
// audience) triple. Resolution never fails: an active stored template wins,
// otherwise the compiled-in default for that exact triple is used.
package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/myster33/edlead-impact-sub001/internal/models"
)

// Channel is the transport a message is written for.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Channels lists every channel the orchestrator can address.
var Channels = []Channel{ChannelEmail, ChannelSMS, ChannelWhatsApp}

// Audience is the recipient role a message is written for.
type Audience string

const (
	AudienceLearner Audience = "learner"
	AudienceParent  Audience = "parent"
)

// Audiences lists every audience the orchestrator can address.
var Audiences = []Audience{AudienceLearner, AudienceParent}

// Template is one renderable message. Subject is only meaningful for email.
type Template struct {
	Key      string   `json:"templateKey"`
	Channel  Channel  `json:"channel"`
	Audience Audience `json:"audience"`
	Subject  string   `json:"subject,omitempty"`
	Body     string   `json:"body"`
	Active   bool     `json:"isActive"`
}

// ErrNotFound is returned by a Store when no active template matches.
var ErrNotFound = errors.New("template not found")

// Store reads admin-managed templates. The admin editor that writes them is
// a separate system; from here the store is read-only.
type Store interface {
	GetTemplate(ctx context.Context, key string, channel Channel, audience Audience) (*Template, error)
}

// KeyForEvent derives the stable template key for an event kind. Keys name a
// logical message independent of channel or audience.
func KeyForEvent(kind models.EventKind) string {
	switch kind {
	case models.StatusApproved:
		return "applicant-status-approved"
	case models.StatusRejected:
		return "applicant-status-rejected"
	case models.StatusPending:
		return "applicant-status-pending"
	case models.StatusCancelled:
		return "applicant-status-cancelled"
	case models.StoryApproved:
		return "story-approved"
	}
	return fmt.Sprintf("unknown-%s", kind)
}
