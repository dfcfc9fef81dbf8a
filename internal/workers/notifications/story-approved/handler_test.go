// internal/workers/notifications/story-approved/handler_test.go
package storyapproved

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/myster33/edlead-impact-sub001/internal/common/errors"
	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/models"
)

type stubNotifier struct {
	result models.NotifyResult
	err    error
	events []models.NotificationEvent
}

func (s *stubNotifier) Notify(_ context.Context, event models.NotificationEvent) (models.NotifyResult, error) {
	s.events = append(s.events, event)
	return s.result, s.err
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "story-moderation",
		ElementId:          "Activity_NotifyStoryApproved",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func newTestHandler(t *testing.T, notifier Notifier) *Handler {
	h, err := NewHandler(HandlerOptions{
		Notifier:     notifier,
		CustomConfig: DefaultConfig(),
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func TestParseInput_ValidJob(t *testing.T) {
	h := newTestHandler(t, &stubNotifier{})

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{
		"authorName":  "Sipho Dlamini",
		"storyRef":    "STORY-0117",
		"authorEmail": "sipho@example.com",
		"photoUrl":    "https://cdn.example.com/photos/sipho.jpg",
	}))
	require.NoError(t, err)

	assert.Equal(t, "Sipho Dlamini", input.AuthorName)
	assert.Equal(t, "STORY-0117", input.StoryRef)
}

func TestParseInput_MissingStoryRefFailsValidation(t *testing.T) {
	h := newTestHandler(t, &stubNotifier{})

	_, err := h.parseInput(createMockJob(2, map[string]interface{}{
		"authorName": "Sipho Dlamini",
	}))
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeEventValidationFailed, stdErr.Code)
}

func TestExecute_DispatchesStoryApprovedEvent(t *testing.T) {
	notifier := &stubNotifier{result: models.NotifyResult{
		Learner:         models.ChannelResults{Email: true, WhatsApp: true},
		BannerGenerated: true,
	}}
	h := newTestHandler(t, notifier)

	output, err := h.Execute(context.Background(), &Input{
		AuthorName:  "Sipho Dlamini",
		StoryRef:    "STORY-0117",
		AuthorEmail: "sipho@example.com",
		AuthorPhone: "0825551234",
		ParentName:  "Mr Dlamini",
		ParentPhone: "0837654321",
	})
	require.NoError(t, err)

	assert.True(t, output.Success)
	assert.True(t, output.BannerGenerated)
	assert.Contains(t, output.Message, "STORY-0117")

	require.Len(t, notifier.events, 1)
	event := notifier.events[0]
	assert.Equal(t, models.StoryApproved, event.Kind)
	assert.Equal(t, "Sipho Dlamini", event.SubjectName)
	assert.Equal(t, "STORY-0117", event.ReferenceID)
	require.NotNil(t, event.ParentContact)
	assert.Equal(t, "Mr Dlamini", event.ParentContact.Name)
}

func TestExecute_NotifierErrorPropagates(t *testing.T) {
	notifier := &stubNotifier{err: commonerrors.NewEventValidationFailedError("missing fields: subjectName")}
	h := newTestHandler(t, notifier)

	_, err := h.Execute(context.Background(), &Input{StoryRef: "STORY-0117"})
	assert.Error(t, err)
}

func TestToEvent_NoParentFieldsMeansNoParentContact(t *testing.T) {
	input := &Input{AuthorName: "Sipho Dlamini", StoryRef: "STORY-0117"}
	event := input.ToEvent()
	assert.Nil(t, event.ParentContact)
}
