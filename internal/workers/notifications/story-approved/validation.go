// internal/workers/notifications/story-approved/validation.go
package storyapproved

import "github.com/myster33/edlead-impact-sub001/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"authorName", "storyRef"},
		Properties: map[string]validation.Property{
			"authorName": {
				Type:        "string",
				Description: "Full name of the story author",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(255),
			},
			"storyRef": {
				Type:        "string",
				Description: "Published story reference identifier",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(64),
			},
			"authorEmail": {
				Type:        "string",
				Description: "Author email address",
				MaxLength:   validation.IntPtr(255),
			},
			"authorPhone": {
				Type:        "string",
				Description: "Author phone number in any local format",
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
				Description: "URL of the author photo used for the banner",
				MaxLength:   validation.IntPtr(2048),
			},
		},
		AdditionalProperties: true,
	}
}
