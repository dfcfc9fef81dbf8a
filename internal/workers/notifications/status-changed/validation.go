// internal/workers/notifications/status-changed/validation.go
package statuschanged

import "github.com/myster33/edlead-impact-sub001/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicantName", "referenceId", "newStatus"},
		Properties: map[string]validation.Property{
			"applicantName": {
				Type:        "string",
				Description: "Full name of the applicant",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(255),
			},
			"referenceId": {
				Type:        "string",
				Description: "Application reference identifier",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(64),
			},
			"newStatus": {
				Type:        "string",
				Description: "Review status the application moved to",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(32),
			},
			"oldStatus": {
				Type:        "string",
				Description: "Review status the application moved from",
				MaxLength:   validation.IntPtr(32),
			},
			"applicantEmail": {
				Type:        "string",
				Description: "Applicant email address",
				MaxLength:   validation.IntPtr(255),
			},
			"applicantPhone": {
				Type:        "string",
				Description: "Applicant phone number in any local format",
				MaxLength:   validation.IntPtr(32),
			},
			"parentName": {
				Type:        "string",
				Description: "Parent or guardian name",
				MaxLength:   validation.IntPtr(255),
			},
			"parentEmail": {
				Type:        "string",
				Description: "Parent or guardian email address",
				MaxLength:   validation.IntPtr(255),
			},
			"parentPhone": {
				Type:        "string",
				Description: "Parent or guardian phone number in any local format",
				MaxLength:   validation.IntPtr(32),
			},
			"photoUrl": {
				Type:        "string",
				Description: "URL of the applicant photo used for the banner",
				MaxLength:   validation.IntPtr(2048),
			},
		},
		AdditionalProperties: true,
	}
}
