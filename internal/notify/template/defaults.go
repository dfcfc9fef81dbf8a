// internal/notify/template/defaults.go
package template

import (
	"fmt"

	"github.com/myster33/edlead-impact-sub001/internal/models"
)

// Compiled-in default templates. Every (event kind, channel, audience)
// triple the orchestrator can reach has an entry here, so resolution can
// never come up empty even when the template store is down.
// VerifyDefaults enforces that invariant at startup and in tests.

func tripleKey(key string, ch Channel, aud Audience) string {
	return key + "/" + string(ch) + "/" + string(aud)
}

var defaults = buildDefaults()

func buildDefaults() map[string]Template {
	d := make(map[string]Template)

	add := func(kind models.EventKind, ch Channel, aud Audience, subject, body string) {
		key := KeyForEvent(kind)
		d[tripleKey(key, ch, aud)] = Template{
			Key:      key,
			Channel:  ch,
			Audience: aud,
			Subject:  subject,
			Body:     body,
			Active:   true,
		}
	}

	// --- Application approved ---
	add(models.StatusApproved, ChannelEmail, AudienceLearner,
		"Congratulations - your EdLead application is approved",
		`<p>Hi {{name}},</p>
<p>Great news! Your application <strong>{{reference}}</strong> to the EdLead Impact Programme has been <strong>approved</strong>.</p>
{{bannerSection}}
<p>Our team will be in touch with your onboarding details shortly.</p>
<p>The EdLead Impact Team</p>`)
	add(models.StatusApproved, ChannelEmail, AudienceParent,
		"{{name}}'s EdLead application is approved",
		`<p>Dear {{parentName}},</p>
<p>We are delighted to let you know that {{name}}'s application <strong>{{reference}}</strong> to the EdLead Impact Programme has been <strong>approved</strong>.</p>
{{bannerSection}}
<p>We will share onboarding details with {{name}} shortly.</p>
<p>The EdLead Impact Team</p>`)
	add(models.StatusApproved, ChannelSMS, AudienceLearner, "",
		`Hi {{name}}, your EdLead application {{reference}} has been APPROVED. Well done! We'll be in touch with next steps.`)
	add(models.StatusApproved, ChannelSMS, AudienceParent, "",
		`Dear {{parentName}}, {{name}}'s EdLead application {{reference}} has been APPROVED. We'll share next steps soon.`)
	add(models.StatusApproved, ChannelWhatsApp, AudienceLearner, "",
		`Hi {{name}} 🎉 Your EdLead application {{reference}} has been *approved*! We'll send your onboarding details soon.`)
	add(models.StatusApproved, ChannelWhatsApp, AudienceParent, "",
		`Dear {{parentName}}, {{name}}'s EdLead application {{reference}} has been *approved*. We'll share onboarding details with them soon.`)

	// --- Application rejected ---
	add(models.StatusRejected, ChannelEmail, AudienceLearner,
		"Update on your EdLead application",
		`<p>Hi {{name}},</p>
<p>Thank you for applying to the EdLead Impact Programme. After careful review, your application <strong>{{reference}}</strong> was not successful this round.</p>
<p>We encourage you to apply again in the next intake.</p>
<p>The EdLead Impact Team</p>`)
	add(models.StatusRejected, ChannelEmail, AudienceParent,
		"Update on {{name}}'s EdLead application",
		`<p>Dear {{parentName}},</p>
<p>After careful review, {{name}}'s application <strong>{{reference}}</strong> to the EdLead Impact Programme was not successful this round.</p>
<p>We encourage {{name}} to apply again in the next intake.</p>
<p>The EdLead Impact Team</p>`)
	add(models.StatusRejected, ChannelSMS, AudienceLearner, "",
		`Hi {{name}}, your EdLead application {{reference}} was not successful this round. You're welcome to apply again next intake.`)
	add(models.StatusRejected, ChannelSMS, AudienceParent, "",
		`Dear {{parentName}}, {{name}}'s EdLead application {{reference}} was not successful this round. They may apply again next intake.`)
	add(models.StatusRejected, ChannelWhatsApp, AudienceLearner, "",
		`Hi {{name}}, your EdLead application {{reference}} was not successful this round. You're welcome to apply again in the next intake.`)
	add(models.StatusRejected, ChannelWhatsApp, AudienceParent, "",
		`Dear {{parentName}}, {{name}}'s EdLead application {{reference}} was not successful this round. They may apply again in the next intake.`)

	// --- Application pending ---
	add(models.StatusPending, ChannelEmail, AudienceLearner,
		"Your EdLead application is under review",
		`<p>Hi {{name}},</p>
<p>Your application <strong>{{reference}}</strong> is now <strong>under review</strong>. We'll notify you as soon as a decision is made.</p>
<p>The EdLead Impact Team</p>`)
	add(models.StatusPending, ChannelEmail, AudienceParent,
		"{{name}}'s EdLead application is under review",
		`<p>Dear {{parentName}},</p>
<p>{{name}}'s application <strong>{{reference}}</strong> is now <strong>under review</strong>. We'll notify you as soon as a decision is made.</p>
<p>The EdLead Impact Team</p>`)
	add(models.StatusPending, ChannelSMS, AudienceLearner, "",
		`Hi {{name}}, your EdLead application {{reference}} is under review. We'll let you know the outcome soon.`)
	add(models.StatusPending, ChannelSMS, AudienceParent, "",
		`Dear {{parentName}}, {{name}}'s EdLead application {{reference}} is under review. We'll let you know the outcome soon.`)
	add(models.StatusPending, ChannelWhatsApp, AudienceLearner, "",
		`Hi {{name}}, your EdLead application {{reference}} is under review. We'll let you know the outcome soon.`)
	add(models.StatusPending, ChannelWhatsApp, AudienceParent, "",
		`Dear {{parentName}}, {{name}}'s EdLead application {{reference}} is under review. We'll let you know the outcome soon.`)

	// --- Application cancelled ---
	add(models.StatusCancelled, ChannelEmail, AudienceLearner,
		"Your EdLead application has been cancelled",
		`<p>Hi {{name}},</p>
<p>Your application <strong>{{reference}}</strong> has been <strong>cancelled</strong>. If you believe this is a mistake, please contact our support team.</p>
<p>The EdLead Impact Team</p>`)
	add(models.StatusCancelled, ChannelEmail, AudienceParent,
		"{{name}}'s EdLead application has been cancelled",
		`<p>Dear {{parentName}},</p>
<p>{{name}}'s application <strong>{{reference}}</strong> has been <strong>cancelled</strong>. If you believe this is a mistake, please contact our support team.</p>
<p>The EdLead Impact Team</p>`)
	add(models.StatusCancelled, ChannelSMS, AudienceLearner, "",
		`Hi {{name}}, your EdLead application {{reference}} has been cancelled. Contact support if this is unexpected.`)
	add(models.StatusCancelled, ChannelSMS, AudienceParent, "",
		`Dear {{parentName}}, {{name}}'s EdLead application {{reference}} has been cancelled. Contact support if this is unexpected.`)
	add(models.StatusCancelled, ChannelWhatsApp, AudienceLearner, "",
		`Hi {{name}}, your EdLead application {{reference}} has been cancelled. Contact support if this is unexpected.`)
	add(models.StatusCancelled, ChannelWhatsApp, AudienceParent, "",
		`Dear {{parentName}}, {{name}}'s EdLead application {{reference}} has been cancelled. Contact support if this is unexpected.`)

	// --- Story approved ---
	add(models.StoryApproved, ChannelEmail, AudienceLearner,
		"Your impact story has been published",
		`<p>Hi {{name}},</p>
<p>Your impact story <strong>{{reference}}</strong> has been approved and is now live on the EdLead Impact site.</p>
{{bannerSection}}
<p>Thank you for sharing your journey!</p>
<p>The EdLead Impact Team</p>`)
	add(models.StoryApproved, ChannelEmail, AudienceParent,
		"{{name}}'s impact story has been published",
		`<p>Dear {{parentName}},</p>
<p>{{name}}'s impact story <strong>{{reference}}</strong> has been approved and is now live on the EdLead Impact site.</p>
{{bannerSection}}
<p>The EdLead Impact Team</p>`)
	add(models.StoryApproved, ChannelSMS, AudienceLearner, "",
		`Hi {{name}}, your impact story {{reference}} has been approved and published. Thank you for sharing your journey!`)
	add(models.StoryApproved, ChannelSMS, AudienceParent, "",
		`Dear {{parentName}}, {{name}}'s impact story {{reference}} has been approved and published on the EdLead Impact site.`)
	add(models.StoryApproved, ChannelWhatsApp, AudienceLearner, "",
		`Hi {{name}} 🎉 Your impact story {{reference}} has been approved and published. Thank you for sharing your journey!`)
	add(models.StoryApproved, ChannelWhatsApp, AudienceParent, "",
		`Dear {{parentName}}, {{name}}'s impact story {{reference}} has been approved and published on the EdLead Impact site.`)

	return d
}

// DefaultFor returns the compiled-in default for the triple.
func DefaultFor(kind models.EventKind, ch Channel, aud Audience) (Template, bool) {
	t, ok := defaults[tripleKey(KeyForEvent(kind), ch, aud)]
	return t, ok
}

// VerifyDefaults checks that a default exists with non-empty content for
// every triple the orchestrator can reach. Called once at startup so a
// missing default is a deploy-time failure, not a runtime surprise.
func VerifyDefaults() error {
	kinds := []models.EventKind{
		models.StatusApproved,
		models.StatusRejected,
		models.StatusPending,
		models.StatusCancelled,
		models.StoryApproved,
	}

	for _, kind := range kinds {
		for _, ch := range Channels {
			for _, aud := range Audiences {
				t, ok := DefaultFor(kind, ch, aud)
				if !ok {
					return fmt.Errorf("missing default template for %s/%s/%s", KeyForEvent(kind), ch, aud)
				}
				if t.Body == "" {
					return fmt.Errorf("empty default body for %s/%s/%s", KeyForEvent(kind), ch, aud)
				}
				if ch == ChannelEmail && t.Subject == "" {
					return fmt.Errorf("empty default subject for %s/%s/%s", KeyForEvent(kind), ch, aud)
				}
			}
		}
	}

	return nil
}
