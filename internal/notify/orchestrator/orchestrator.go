// internal/notify/orchestrator/orchestrator.go

// Package orchestrator fans one notification event out across the
// (channel, audience) grid: read the feature toggles, run the banner
// sub-pipeline for approvals, dispatch every reachable cell concurrently and
// aggregate the outcomes. Send failures land in the result and the delivery
// log; only a malformed event is an error.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	commonerrors "github.com/myster33/edlead-impact-sub001/internal/common/errors"
	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/common/observability"
	"github.com/myster33/edlead-impact-sub001/internal/models"
	"github.com/myster33/edlead-impact-sub001/internal/notify/channel"
	"github.com/myster33/edlead-impact-sub001/internal/notify/deliverylog"
	"github.com/myster33/edlead-impact-sub001/internal/notify/phone"
	"github.com/myster33/edlead-impact-sub001/internal/notify/render"
	"github.com/myster33/edlead-impact-sub001/internal/notify/settings"
	"github.com/myster33/edlead-impact-sub001/internal/notify/template"
)

// TemplateResolver resolves content for one grid cell. *template.Resolver
// satisfies this.
type TemplateResolver interface {
	Resolve(ctx context.Context, kind models.EventKind, ch template.Channel, aud template.Audience) template.Template
}

// BannerGenerator runs the approval banner sub-pipeline. *banner.Pipeline
// satisfies this; "" means no banner.
type BannerGenerator interface {
	Generate(ctx context.Context, name, photoURL string) string
}

// DeliveryLogger appends one audit entry per attempted send.
type DeliveryLogger interface {
	Append(ctx context.Context, e deliverylog.Entry)
}

// Orchestrator wires the stages together. All collaborators are injected so
// the fan-out logic can be tested with stubs.
type Orchestrator struct {
	settings          settings.Loader
	resolver          TemplateResolver
	senders           map[template.Channel]channel.Sender
	banner            BannerGenerator
	deliveryLog       DeliveryLogger
	normalizer        *phone.Normalizer
	defaultParentName string
	obs               *observability.Observability
	logger            logger.Logger
}

type Options struct {
	Settings          settings.Loader
	Resolver          TemplateResolver
	Senders           []channel.Sender
	Banner            BannerGenerator
	DeliveryLog       DeliveryLogger
	Normalizer        *phone.Normalizer
	DefaultParentName string
	Observability     *observability.Observability
	Logger            logger.Logger
}

func New(opts Options) *Orchestrator {
	senders := make(map[template.Channel]channel.Sender, len(opts.Senders))
	for _, s := range opts.Senders {
		senders[s.Channel()] = s
	}
	parentName := opts.DefaultParentName
	if parentName == "" {
		parentName = "Parent/Guardian"
	}
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = phone.NewNormalizer("")
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Orchestrator{
		settings:          opts.Settings,
		resolver:          opts.Resolver,
		senders:           senders,
		banner:            opts.Banner,
		deliveryLog:       opts.DeliveryLog,
		normalizer:        normalizer,
		defaultParentName: parentName,
		obs:               opts.Observability,
		logger:            log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

// cell is one (channel, audience, destination) dispatch unit.
type cell struct {
	channel     template.Channel
	audience    template.Audience
	destination string
}

// Notify processes one event end to end. The returned error covers only a
// malformed event; everything downstream is absorbed into the result and
// the delivery log.
func (o *Orchestrator) Notify(ctx context.Context, event models.NotificationEvent) (models.NotifyResult, error) {
	if err := validateEvent(event); err != nil {
		return models.NotifyResult{}, err
	}

	log := o.logger.WithFields(map[string]interface{}{
		"eventKind":   string(event.Kind),
		"referenceId": event.ReferenceID,
	})

	// Toggles are read fresh per event so dashboard changes apply
	// immediately.
	var toggles settings.Settings
	if o.settings != nil {
		toggles = o.settings.Load(ctx)
	}

	bannerURL := ""
	if event.Kind.IsApproval() && o.banner != nil {
		bannerURL = o.banner.Generate(ctx, event.SubjectName, event.PhotoURL)
	}

	vars := o.buildVariables(event, bannerURL)
	cells := o.planCells(event, toggles)

	log.Info("dispatching notification", map[string]interface{}{
		"cells":           len(cells),
		"bannerGenerated": bannerURL != "",
	})

	outcomes := make([]channel.Outcome, len(cells))
	var wg sync.WaitGroup
	for i, c := range cells {
		wg.Add(1)
		go func(i int, c cell) {
			defer wg.Done()
			outcomes[i] = o.dispatch(ctx, event, c, vars, bannerURL)
		}(i, c)
	}
	wg.Wait()

	result := aggregate(outcomes)
	result.BannerGenerated = bannerURL != ""

	log.Info("notification dispatched", map[string]interface{}{
		"learner": result.Learner,
		"parent":  result.Parent,
	})
	return result, nil
}

func validateEvent(e models.NotificationEvent) error {
	if !e.Kind.Valid() {
		return commonerrors.NewUnknownEventKindError(string(e.Kind))
	}
	var missing []string
	if e.SubjectName == "" {
		missing = append(missing, "subjectName")
	}
	if e.ReferenceID == "" {
		missing = append(missing, "referenceId")
	}
	if len(missing) > 0 {
		return commonerrors.NewEventValidationFailedError("missing fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// buildVariables assembles the interpolation map shared by every cell.
// bannerSection expands to a ready-made HTML block so templates without a
// banner render with no leftover markup.
func (o *Orchestrator) buildVariables(e models.NotificationEvent, bannerURL string) map[string]string {
	parentName := o.defaultParentName
	if e.ParentContact != nil && e.ParentContact.Name != "" {
		parentName = e.ParentContact.Name
	}

	bannerSection := ""
	if bannerURL != "" {
		bannerSection = fmt.Sprintf(
			`<p><img src=%q alt="Congratulations banner" style="max-width:100%%;border-radius:8px;"/></p>`,
			bannerURL,
		)
	}

	return map[string]string{
		"name":          e.SubjectName,
		"reference":     e.ReferenceID,
		"status":        e.Kind.StatusLabel(),
		"oldStatus":     e.OldStatus,
		"parentName":    parentName,
		"bannerUrl":     bannerURL,
		"bannerSection": bannerSection,
	}
}

// planCells applies the toggle, reachability and dedup rules. A cell absent
// from the plan is a skip: no send, no delivery-log entry.
func (o *Orchestrator) planCells(e models.NotificationEvent, s settings.Settings) []cell {
	var cells []cell
	applicant := e.ApplicantContact
	parent := e.ParentContact

	// Email. The learner email has no toggle; the parent copy is gated by
	// parentEmailsEnabled and deduplicated against the learner address.
	if applicant.Email != "" {
		cells = append(cells, cell{template.ChannelEmail, template.AudienceLearner, applicant.Email})
	}
	if s.ParentEmailsEnabled && parent != nil && parent.Email != "" {
		if applicant.Email == "" || !sameEmail(parent.Email, applicant.Email) {
			cells = append(cells, cell{template.ChannelEmail, template.AudienceParent, parent.Email})
		}
	}

	// SMS and WhatsApp share shape: one toggle gates both audiences, dedup
	// compares normalized numbers.
	for _, pc := range []struct {
		ch      template.Channel
		enabled bool
	}{
		{template.ChannelSMS, s.SMSEnabled},
		{template.ChannelWhatsApp, s.WhatsAppEnabled},
	} {
		if !pc.enabled {
			continue
		}
		if applicant.Phone != "" {
			cells = append(cells, cell{pc.ch, template.AudienceLearner, applicant.Phone})
		}
		if parent != nil && parent.Phone != "" {
			if applicant.Phone == "" || !o.samePhone(parent.Phone, applicant.Phone) {
				cells = append(cells, cell{pc.ch, template.AudienceParent, parent.Phone})
			}
		}
	}

	return cells
}

func (o *Orchestrator) dispatch(ctx context.Context, e models.NotificationEvent, c cell, vars map[string]string, bannerURL string) channel.Outcome {
	tmpl := template.Template{Key: template.KeyForEvent(e.Kind)}
	if o.resolver != nil {
		tmpl = o.resolver.Resolve(ctx, e.Kind, c.channel, c.audience)
	}

	msg := channel.Message{
		Destination: c.destination,
		Subject:     render.Interpolate(tmpl.Subject, vars),
		Body:        render.Interpolate(tmpl.Body, vars),
	}
	if c.channel == template.ChannelWhatsApp {
		msg.MediaURL = bannerURL
	}

	// A planned cell is an attempt even when no sender is wired for its
	// channel: it still gets an outcome and a delivery-log entry.
	var outcome channel.Outcome
	if sender, ok := o.senders[c.channel]; ok {
		outcome = sender.Send(ctx, msg)
	} else {
		outcome = channel.Outcome{
			Success:      false,
			ErrorMessage: "no sender registered for channel " + string(c.channel),
		}
	}
	outcome.Channel = c.channel
	outcome.Audience = c.audience

	if o.obs != nil {
		status := "failed"
		if outcome.Success {
			status = "sent"
		}
		o.obs.RecordSend(ctx, string(c.channel), string(c.audience), status)
	}

	if o.deliveryLog != nil {
		o.deliveryLog.Append(ctx, deliverylog.Entry{
			EventKind:       string(e.Kind),
			TemplateKey:     tmpl.Key,
			Channel:         c.channel,
			Audience:        c.audience,
			Destination:     c.destination,
			ReferenceID:     e.ReferenceID,
			Subject:         msg.Subject,
			RenderedContent: msg.Body,
			Success:         outcome.Success,
			ProviderID:      outcome.ProviderID,
			ErrorMessage:    outcome.ErrorMessage,
		})
	}

	return outcome
}

func aggregate(outcomes []channel.Outcome) models.NotifyResult {
	var result models.NotifyResult
	for _, out := range outcomes {
		target := &result.Learner
		if out.Audience == template.AudienceParent {
			target = &result.Parent
		}
		switch out.Channel {
		case template.ChannelEmail:
			target.Email = out.Success
		case template.ChannelSMS:
			target.SMS = out.Success
		case template.ChannelWhatsApp:
			target.WhatsApp = out.Success
		}
	}
	return result
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (o *Orchestrator) samePhone(a, b string) bool {
	return o.normalizer.Normalize(a) == o.normalizer.Normalize(b)
}
