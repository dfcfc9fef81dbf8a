// internal/workers/notifications/status-changed/models.go
package statuschanged

import (
	"strings"

	commonerrors "github.com/myster33/edlead-impact-sub001/internal/common/errors"
	"github.com/myster33/edlead-impact-sub001/internal/models"
)

// Input mirrors the process variables set by the application-review process
// when a reviewer moves an application to a new status.
type Input struct {
	ApplicantName  string `json:"applicantName"`
	ReferenceID    string `json:"referenceId"`
	NewStatus      string `json:"newStatus"`
	OldStatus      string `json:"oldStatus,omitempty"`
	ApplicantEmail string `json:"applicantEmail,omitempty"`
	ApplicantPhone string `json:"applicantPhone,omitempty"`
	ParentName     string `json:"parentName,omitempty"`
	ParentEmail    string `json:"parentEmail,omitempty"`
	ParentPhone    string `json:"parentPhone,omitempty"`
	PhotoURL       string `json:"photoUrl,omitempty"`
}

// Output is written back to the process as job variables.
type Output struct {
	Success         bool                  `json:"success"`
	Message         string                `json:"message"`
	Learner         models.ChannelResults `json:"learner"`
	Parent          models.ChannelResults `json:"parent"`
	BannerGenerated bool                  `json:"bannerGenerated"`
}

// kindForStatus maps the review statuses the application process uses onto
// event kinds. Review UIs have written a few spelling variants over time.
func kindForStatus(status string) (models.EventKind, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved":
		return models.StatusApproved, true
	case "rejected", "declined":
		return models.StatusRejected, true
	case "pending", "under review", "under-review":
		return models.StatusPending, true
	case "cancelled", "canceled":
		return models.StatusCancelled, true
	}
	return "", false
}

// ToEvent converts the job input into the orchestrator's event shape.
func (i *Input) ToEvent() (models.NotificationEvent, error) {
	kind, ok := kindForStatus(i.NewStatus)
	if !ok {
		return models.NotificationEvent{}, commonerrors.NewUnknownEventKindError(i.NewStatus)
	}

	event := models.NotificationEvent{
		Kind:        kind,
		SubjectName: i.ApplicantName,
		ReferenceID: i.ReferenceID,
		OldStatus:   i.OldStatus,
		ApplicantContact: models.Contact{
			Name:  i.ApplicantName,
			Email: i.ApplicantEmail,
			Phone: i.ApplicantPhone,
		},
		PhotoURL: i.PhotoURL,
	}

	if i.ParentName != "" || i.ParentEmail != "" || i.ParentPhone != "" {
		event.ParentContact = &models.Contact{
			Name:  i.ParentName,
			Email: i.ParentEmail,
			Phone: i.ParentPhone,
		}
	}

	return event, nil
}
