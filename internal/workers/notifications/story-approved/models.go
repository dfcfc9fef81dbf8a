// internal/workers/notifications/story-approved/models.go
package storyapproved

import (
	"github.com/myster33/edlead-impact-sub001/internal/models"
)

// Input mirrors the process variables set when a moderator approves an
// impact story for publication.
type Input struct {
	AuthorName  string `json:"authorName"`
	StoryRef    string `json:"storyRef"`
	AuthorEmail string `json:"authorEmail,omitempty"`
	AuthorPhone string `json:"authorPhone,omitempty"`
	ParentName  string `json:"parentName,omitempty"`
	ParentEmail string `json:"parentEmail,omitempty"`
	ParentPhone string `json:"parentPhone,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// Output is written back to the process as job variables.
type Output struct {
	Success         bool                  `json:"success"`
	Message         string                `json:"message"`
	Learner         models.ChannelResults `json:"learner"`
	Parent          models.ChannelResults `json:"parent"`
	BannerGenerated bool                  `json:"bannerGenerated"`
}

// ToEvent converts the job input into the orchestrator's event shape.
func (i *Input) ToEvent() models.NotificationEvent {
	event := models.NotificationEvent{
		Kind:        models.StoryApproved,
		SubjectName: i.AuthorName,
		ReferenceID: i.StoryRef,
		ApplicantContact: models.Contact{
			Name:  i.AuthorName,
			Email: i.AuthorEmail,
			Phone: i.AuthorPhone,
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

	return event
}
