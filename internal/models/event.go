// internal/models/event.go
package models

// EventKind identifies what happened upstream: an application review status
// transition, or a story approval.
type EventKind string

const (
	StatusApproved  EventKind = "status-approved"
	StatusRejected  EventKind = "status-rejected"
	StatusPending   EventKind = "status-pending"
	StatusCancelled EventKind = "status-cancelled"
	StoryApproved   EventKind = "story-approved"
)

// Valid reports whether the kind is one the orchestrator knows how to handle.
func (k EventKind) Valid() bool {
	switch k {
	case StatusApproved, StatusRejected, StatusPending, StatusCancelled, StoryApproved:
		return true
	}
	return false
}

// IsApproval reports whether the kind triggers the banner sub-pipeline.
func (k EventKind) IsApproval() bool {
	return k == StatusApproved || k == StoryApproved
}

// StatusLabel is the human-readable status used in message templates.
func (k EventKind) StatusLabel() string {
	switch k {
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusPending:
		return "Pending"
	case StatusCancelled:
		return "Cancelled"
	case StoryApproved:
		return "Approved"
	}
	return string(k)
}

// Contact is the reachable identity of one recipient. Empty fields mean the
// recipient cannot be reached on that channel.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// NotificationEvent is the immutable input to one orchestrator invocation,
// constructed by the upstream handler at the moment of a state transition.
type NotificationEvent struct {
	Kind             EventKind `json:"eventKind"`
	SubjectName      string    `json:"subjectName"`
	ReferenceID      string    `json:"referenceId"`
	OldStatus        string    `json:"oldStatus,omitempty"`
	ApplicantContact Contact   `json:"applicantContact"`
	ParentContact    *Contact  `json:"parentContact,omitempty"`
	PhotoURL         string    `json:"photoUrl,omitempty"`
}

// ChannelResults carries the per-channel success flags for one audience.
type ChannelResults struct {
	Email    bool `json:"email"`
	SMS      bool `json:"sms"`
	WhatsApp bool `json:"whatsapp"`
}

// NotifyResult is the aggregate returned to the caller. A false flag covers
// both "skipped" and "attempted but failed"; the delivery log holds the
// distinction.
type NotifyResult struct {
	Learner         ChannelResults `json:"learner"`
	Parent          ChannelResults `json:"parent"`
	BannerGenerated bool           `json:"bannerGenerated"`
}
