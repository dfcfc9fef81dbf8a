// internal/notify/channel/channel.go

// Package channel holds the transport senders. Every sender implements the
// same contract: Send never returns an error, it absorbs transport failures
// into the Outcome so one broken channel cannot sink the fan-out.
package channel

import (
	"context"

	commonerrors "github.com/myster33/edlead-impact-sub001/internal/common/errors"
	"github.com/myster33/edlead-impact-sub001/internal/notify/template"
)

// Message is the rendered content handed to a sender. Subject is only used
// by email; MediaURL only by WhatsApp.
type Message struct {
	Destination string
	Subject     string
	Body        string
	MediaURL    string
}

// Outcome records one send attempt. Audience is stamped by the orchestrator;
// senders only know about destinations.
type Outcome struct {
	Channel      template.Channel
	Audience     template.Audience
	Success      bool
	ProviderID   string
	ErrorMessage string
}

// Sender is the uniform transport contract.
type Sender interface {
	Channel() template.Channel
	Send(ctx context.Context, msg Message) Outcome
}

func failure(ch template.Channel, reason string) Outcome {
	return Outcome{Channel: ch, Success: false, ErrorMessage: reason}
}

// rejection folds a pre-provider error into a failed outcome so the delivery
// log records why no network call was made.
func rejection(ch template.Channel, err *commonerrors.StandardError) Outcome {
	return Outcome{Channel: ch, Success: false, ErrorMessage: err.Message + " (" + err.Details + ")"}
}

func success(ch template.Channel, providerID string) Outcome {
	return Outcome{Channel: ch, Success: true, ProviderID: providerID}
}
