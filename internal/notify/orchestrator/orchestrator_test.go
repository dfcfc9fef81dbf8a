// internal/notify/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/models"
	"github.com/myster33/edlead-impact-sub001/internal/notify/channel"
	"github.com/myster33/edlead-impact-sub001/internal/notify/deliverylog"
	"github.com/myster33/edlead-impact-sub001/internal/notify/phone"
	"github.com/myster33/edlead-impact-sub001/internal/notify/settings"
	"github.com/myster33/edlead-impact-sub001/internal/notify/template"
)

type stubSender struct {
	ch   template.Channel
	fail bool

	mu   sync.Mutex
	sent []channel.Message
}

func (s *stubSender) Channel() template.Channel { return s.ch }

func (s *stubSender) Send(_ context.Context, msg channel.Message) channel.Outcome {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	if s.fail {
		return channel.Outcome{Channel: s.ch, Success: false, ErrorMessage: "provider down"}
	}
	return channel.Outcome{Channel: s.ch, Success: true, ProviderID: "prov-1"}
}

func (s *stubSender) messages() []channel.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]channel.Message, len(s.sent))
	copy(out, s.sent)
	return out
}

type stubBanner struct {
	url   string
	calls int
}

func (s *stubBanner) Generate(context.Context, string, string) string {
	s.calls++
	return s.url
}

type memoryLog struct {
	mu      sync.Mutex
	entries []deliverylog.Entry
}

func (m *memoryLog) Append(_ context.Context, e deliverylog.Entry) {
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
}

func (m *memoryLog) byChannel(ch template.Channel) []deliverylog.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []deliverylog.Entry
	for _, e := range m.entries {
		if e.Channel == ch {
			out = append(out, e)
		}
	}
	return out
}

func (m *memoryLog) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type harness struct {
	email    *stubSender
	sms      *stubSender
	whatsapp *stubSender
	banner   *stubBanner
	log      *memoryLog
	orch     *Orchestrator
}

func newHarness(t *testing.T, toggles settings.Settings, bannerURL string) *harness {
	h := &harness{
		email:    &stubSender{ch: template.ChannelEmail},
		sms:      &stubSender{ch: template.ChannelSMS},
		whatsapp: &stubSender{ch: template.ChannelWhatsApp},
		banner:   &stubBanner{url: bannerURL},
		log:      &memoryLog{},
	}
	h.orch = New(Options{
		Settings:          settings.Static{Settings: toggles},
		Resolver:          template.NewResolver(nil, logger.NewTestLogger(t)),
		Senders:           []channel.Sender{h.email, h.sms, h.whatsapp},
		Banner:            h.banner,
		DeliveryLog:       h.log,
		Normalizer:        phone.NewNormalizer("27"),
		DefaultParentName: "Parent/Guardian",
		Logger:            logger.NewTestLogger(t),
	})
	return h
}

func allOn() settings.Settings {
	return settings.Settings{ParentEmailsEnabled: true, SMSEnabled: true, WhatsAppEnabled: true}
}

func approvalEvent() models.NotificationEvent {
	return models.NotificationEvent{
		Kind:        models.StatusApproved,
		SubjectName: "Thandi Nkosi",
		ReferenceID: "CAP-0042",
		OldStatus:   "Pending",
		ApplicantContact: models.Contact{
			Name:  "Thandi Nkosi",
			Email: "thandi@example.com",
			Phone: "0821234567",
		},
		ParentContact: &models.Contact{
			Name:  "Mrs Nkosi",
			Email: "parent@example.com",
			Phone: "0837654321",
		},
		PhotoURL: "https://cdn.example.com/photos/thandi.jpg",
	}
}

func TestNotify_ApprovalFansOutToAllSixCells(t *testing.T) {
	h := newHarness(t, allOn(), "https://cdn.example.com/banners/thandi.png")

	result, err := h.orch.Notify(context.Background(), approvalEvent())
	require.NoError(t, err)

	assert.Equal(t, models.NotifyResult{
		Learner:         models.ChannelResults{Email: true, SMS: true, WhatsApp: true},
		Parent:          models.ChannelResults{Email: true, SMS: true, WhatsApp: true},
		BannerGenerated: true,
	}, result)

	assert.Len(t, h.email.messages(), 2)
	assert.Len(t, h.sms.messages(), 2)
	assert.Len(t, h.whatsapp.messages(), 2)
	assert.Equal(t, 6, h.log.count())
	assert.Equal(t, 1, h.banner.calls)
}

func TestNotify_BannerSectionRendersIntoEmail(t *testing.T) {
	h := newHarness(t, allOn(), "https://cdn.example.com/banners/thandi.png")

	_, err := h.orch.Notify(context.Background(), approvalEvent())
	require.NoError(t, err)

	for _, msg := range h.email.messages() {
		assert.Contains(t, msg.Body, `src="https://cdn.example.com/banners/thandi.png"`)
		assert.NotContains(t, msg.Body, "bannerSection")
	}
	for _, msg := range h.whatsapp.messages() {
		assert.Equal(t, "https://cdn.example.com/banners/thandi.png", msg.MediaURL)
	}
}

func TestNotify_NoBannerLeavesNoMarkupBehind(t *testing.T) {
	h := newHarness(t, allOn(), "")

	result, err := h.orch.Notify(context.Background(), approvalEvent())
	require.NoError(t, err)

	assert.False(t, result.BannerGenerated)
	for _, msg := range h.email.messages() {
		assert.NotContains(t, msg.Body, "<img")
		assert.NotContains(t, msg.Body, "bannerSection")
	}
	for _, msg := range h.whatsapp.messages() {
		assert.Empty(t, msg.MediaURL)
	}
}

func TestNotify_SMSToggleOffMeansZeroAttemptsAndZeroLogEntries(t *testing.T) {
	toggles := allOn()
	toggles.SMSEnabled = false
	h := newHarness(t, toggles, "")

	result, err := h.orch.Notify(context.Background(), approvalEvent())
	require.NoError(t, err)

	assert.Empty(t, h.sms.messages())
	assert.Empty(t, h.log.byChannel(template.ChannelSMS))
	assert.False(t, result.Learner.SMS)
	assert.False(t, result.Parent.SMS)
	assert.True(t, result.Learner.Email)
	assert.True(t, result.Parent.WhatsApp)
}

func TestNotify_ParentEmailToggleOnlyGatesParentEmail(t *testing.T) {
	toggles := allOn()
	toggles.ParentEmailsEnabled = false
	h := newHarness(t, toggles, "")

	result, err := h.orch.Notify(context.Background(), approvalEvent())
	require.NoError(t, err)

	assert.Len(t, h.email.messages(), 1, "learner email has no toggle")
	assert.True(t, result.Learner.Email)
	assert.False(t, result.Parent.Email)
	assert.True(t, result.Parent.SMS)
	assert.True(t, result.Parent.WhatsApp)
}

func TestNotify_IdenticalParentContactSendsOncePerChannel(t *testing.T) {
	h := newHarness(t, allOn(), "")

	event := approvalEvent()
	event.ParentContact = &models.Contact{
		Name:  "Thandi Nkosi",
		Email: "THANDI@example.com  ",
		Phone: "+27821234567", // same number as 0821234567 once normalized
	}

	_, err := h.orch.Notify(context.Background(), event)
	require.NoError(t, err)

	assert.Len(t, h.email.messages(), 1)
	assert.Len(t, h.sms.messages(), 1)
	assert.Len(t, h.whatsapp.messages(), 1)
	assert.Equal(t, 3, h.log.count())
}

func TestNotify_NoParentContactDispatchesLearnerOnly(t *testing.T) {
	h := newHarness(t, allOn(), "")

	event := approvalEvent()
	event.ParentContact = nil

	result, err := h.orch.Notify(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, models.ChannelResults{Email: true, SMS: true, WhatsApp: true}, result.Learner)
	assert.Equal(t, models.ChannelResults{}, result.Parent)
	assert.Equal(t, 3, h.log.count())
}

func TestNotify_ParentReachableWhenLearnerIsNot(t *testing.T) {
	h := newHarness(t, allOn(), "")

	event := approvalEvent()
	event.ApplicantContact.Email = ""
	event.ApplicantContact.Phone = ""

	result, err := h.orch.Notify(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, models.ChannelResults{}, result.Learner)
	assert.Equal(t, models.ChannelResults{Email: true, SMS: true, WhatsApp: true}, result.Parent)
}

func TestNotify_FailedSendIsTerminalAndIsolated(t *testing.T) {
	h := newHarness(t, allOn(), "")
	h.sms.fail = true

	result, err := h.orch.Notify(context.Background(), approvalEvent())
	require.NoError(t, err, "send failures never fail the event")

	assert.False(t, result.Learner.SMS)
	assert.False(t, result.Parent.SMS)
	assert.True(t, result.Learner.Email)
	assert.True(t, result.Parent.WhatsApp)

	smsEntries := h.log.byChannel(template.ChannelSMS)
	require.Len(t, smsEntries, 2, "failed attempts are still logged")
	for _, e := range smsEntries {
		assert.False(t, e.Success)
		assert.Equal(t, "provider down", e.ErrorMessage)
	}
	assert.Len(t, h.sms.messages(), 2, "no retries")
}

func TestNotify_DeliveryLogCarriesRenderedContent(t *testing.T) {
	h := newHarness(t, allOn(), "")

	_, err := h.orch.Notify(context.Background(), approvalEvent())
	require.NoError(t, err)

	for _, e := range h.log.byChannel(template.ChannelEmail) {
		assert.NotEmpty(t, e.Subject)
		assert.Contains(t, e.RenderedContent, "Thandi Nkosi")
		assert.Contains(t, e.RenderedContent, "CAP-0042")
		assert.NotContains(t, e.RenderedContent, "{{", "logged content is the interpolated body, not the template")
	}
	for _, e := range h.log.byChannel(template.ChannelSMS) {
		assert.Empty(t, e.Subject)
		assert.Contains(t, e.RenderedContent, "CAP-0042")
	}
}

func TestNotify_MissingSenderStillLogsTheAttempt(t *testing.T) {
	h := newHarness(t, allOn(), "")
	delete(h.orch.senders, template.ChannelWhatsApp)

	result, err := h.orch.Notify(context.Background(), approvalEvent())
	require.NoError(t, err)

	assert.False(t, result.Learner.WhatsApp)
	assert.False(t, result.Parent.WhatsApp)

	entries := h.log.byChannel(template.ChannelWhatsApp)
	require.Len(t, entries, 2, "a planned cell without a sender is an attempt, not a skip")
	for _, e := range entries {
		assert.False(t, e.Success)
		assert.Contains(t, e.ErrorMessage, "no sender registered")
		assert.NotEmpty(t, e.RenderedContent)
	}
}

func TestNotify_BannerSkippedForNonApproval(t *testing.T) {
	h := newHarness(t, allOn(), "https://cdn.example.com/banner.png")

	event := approvalEvent()
	event.Kind = models.StatusRejected

	result, err := h.orch.Notify(context.Background(), event)
	require.NoError(t, err)

	assert.Zero(t, h.banner.calls)
	assert.False(t, result.BannerGenerated)
}

func TestNotify_StoryApprovedRunsBanner(t *testing.T) {
	h := newHarness(t, allOn(), "https://cdn.example.com/banner.png")

	event := approvalEvent()
	event.Kind = models.StoryApproved

	result, err := h.orch.Notify(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 1, h.banner.calls)
	assert.True(t, result.BannerGenerated)
}

func TestNotify_MalformedEventIsTheOnlyError(t *testing.T) {
	h := newHarness(t, allOn(), "")

	_, err := h.orch.Notify(context.Background(), models.NotificationEvent{Kind: "status-exploded"})
	require.Error(t, err)

	_, err = h.orch.Notify(context.Background(), models.NotificationEvent{Kind: models.StatusApproved})
	require.Error(t, err, "missing subjectName and referenceId")

	assert.Empty(t, h.email.messages())
	assert.Zero(t, h.log.count())
}

func TestNotify_ParentCopyUsesParentName(t *testing.T) {
	h := newHarness(t, allOn(), "")

	_, err := h.orch.Notify(context.Background(), approvalEvent())
	require.NoError(t, err)

	var parentBody string
	for _, e := range h.log.byChannel(template.ChannelEmail) {
		if e.Audience == template.AudienceParent {
			assert.Equal(t, "parent@example.com", e.Destination)
		}
	}
	for _, msg := range h.email.messages() {
		if msg.Destination == "parent@example.com" {
			parentBody = msg.Body
		}
	}
	require.NotEmpty(t, parentBody)
	assert.Contains(t, parentBody, "Mrs Nkosi")
	assert.NotContains(t, parentBody, "{{parentName}}")
}

func TestNotify_MissingParentNameFallsBack(t *testing.T) {
	h := newHarness(t, allOn(), "")

	event := approvalEvent()
	event.ParentContact.Name = ""

	_, err := h.orch.Notify(context.Background(), event)
	require.NoError(t, err)

	for _, msg := range h.email.messages() {
		if msg.Destination == "parent@example.com" {
			assert.Contains(t, msg.Body, "Parent/Guardian")
		}
	}
}

// The template store erroring on every query must not stop a single cell:
// all six render from the compiled-in defaults.
func TestNotify_TemplateStoreDownStillDispatchesAllCells(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 6; i++ {
		mock.ExpectQuery("SELECT subject, body FROM notification_templates").
			WillReturnError(errors.New("store down"))
	}

	h := newHarness(t, allOn(), "")
	h.orch.resolver = template.NewResolver(template.NewPostgresStore(db), logger.NewTestLogger(t))

	result, err := h.orch.Notify(context.Background(), approvalEvent())
	require.NoError(t, err)

	assert.Equal(t, models.ChannelResults{Email: true, SMS: true, WhatsApp: true}, result.Learner)
	assert.Equal(t, models.ChannelResults{Email: true, SMS: true, WhatsApp: true}, result.Parent)
	assert.Equal(t, 6, h.log.count())

	for _, msg := range h.email.messages() {
		assert.False(t, strings.Contains(msg.Body, "{{"), "default templates must fully interpolate: %q", msg.Body)
	}
}

func TestPlanCells_LogsOnlyAttemptedCells(t *testing.T) {
	toggles := allOn()
	toggles.WhatsAppEnabled = false
	h := newHarness(t, toggles, "")

	event := approvalEvent()
	event.ParentContact.Phone = ""

	_, err := h.orch.Notify(context.Background(), event)
	require.NoError(t, err)

	// learner email, parent email, learner sms
	assert.Equal(t, 3, h.log.count())
	assert.Empty(t, h.log.byChannel(template.ChannelWhatsApp))
}
