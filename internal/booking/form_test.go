package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-widget/internal/calendly"
)

type fakeScheduler struct {
	payload *calendly.SchedulePayload
	event   *calendly.ScheduledEvent
	err     error
	calls   int
}

func (f *fakeScheduler) Schedule(_ context.Context, payload *calendly.SchedulePayload) (*calendly.ScheduledEvent, error) {
	f.calls++
	f.payload = payload
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func confirmedEvent() *calendly.ScheduledEvent {
	return &calendly.ScheduledEvent{
		StartTime:       "2026-09-14T15:00:00Z",
		ReschedulingURL: "https://calendly.com/reschedulings/abc",
		CancellationURL: "https://calendly.com/cancellations/abc",
	}
}

func testEventType() *calendly.EventType {
	return &calendly.EventType{
		Name:     "Intro Call",
		Duration: 30,
		CustomQuestions: []calendly.CustomQuestion{
			{Name: "What would you like to discuss?", Type: QuestionText, Position: 0, Enabled: true, Required: true},
			{Name: "Favorite color", Type: QuestionMultiSelect, Position: 1, Enabled: true, IncludeOther: true, AnswerChoices: []string{"red", "blue"}},
			{Name: "Team size", Type: QuestionSingleSelect, Position: 2, Enabled: true, AnswerChoices: []string{"1-10", "11-50"}},
			{Name: "Old question", Type: QuestionText, Position: 3, Enabled: false, Required: true},
		},
	}
}

func fillContact(f *Form) {
	f.SetName("Jane Doe")
	f.SetEmail("jane@example.com")
}

func TestValidateRequiredQuestion(t *testing.T) {
	f := NewForm(testEventType(), "UTC", &fakeScheduler{})
	fillContact(f)

	errs := f.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "What would you like to discuss?", errs[0])

	f.SetAnswer("question_0", "Pricing")
	assert.Empty(t, f.Validate())
}

func TestValidateDisabledQuestionSkipped(t *testing.T) {
	f := NewForm(testEventType(), "UTC", &fakeScheduler{})
	fillContact(f)
	f.SetAnswer("question_0", "Pricing")

	// question_3 is required but disabled; it must never be flagged.
	assert.Empty(t, f.Validate())
}

func TestValidateOtherWithoutSupplement(t *testing.T) {
	f := NewForm(testEventType(), "UTC", &fakeScheduler{})
	fillContact(f)
	f.SetAnswer("question_0", "Pricing")

	// "Favorite color" is optional, but a selected "other" still needs text.
	f.SetAnswer("question_1", []string{"red", "other"})
	errs := f.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, `Favorite color - Please specify your "Other" response`, errs[0])

	f.SetAnswer("question_1_other", "   ")
	assert.Len(t, f.Validate(), 1)

	f.SetAnswer("question_1_other", "teal")
	assert.Empty(t, f.Validate())
}

func TestValidateContactFields(t *testing.T) {
	f := NewForm(testEventType(), "UTC", &fakeScheduler{})
	f.SetAnswer("question_0", "Pricing")

	errs := f.Validate()
	assert.Equal(t, []string{"Name", "Email"}, errs)
}

func TestValidateOutboundCallNeedsPhone(t *testing.T) {
	et := testEventType()
	et.CustomQuestions = nil
	et.Locations = []calendly.LocationConfiguration{{Kind: "outbound_call"}}

	f := NewForm(et, "UTC", &fakeScheduler{})
	fillContact(f)

	errs := f.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "Phone Number", errs[0])

	f.SetInviteePhoneNumber("+15551234567")
	assert.Empty(t, f.Validate())
}

func TestBuildPayloadJoinsOtherSupplement(t *testing.T) {
	f := NewForm(testEventType(), "America/New_York", &fakeScheduler{})
	fillContact(f)
	f.SetAnswer("question_0", "Pricing")
	f.SetAnswer("question_1", []string{"red", "other"})
	f.SetAnswer("question_1_other", "teal")
	f.SetAnswer("question_2", "1-10")
	require.Empty(t, f.Validate())

	payload := f.BuildPayload("2026-09-14T15:00:00Z")
	require.Len(t, payload.QuestionsAndAnswers, 3)
	assert.Equal(t, "red, teal", payload.QuestionsAndAnswers[1].Answer)
	assert.Equal(t, "1-10", payload.QuestionsAndAnswers[2].Answer)
	assert.Equal(t, "2026-09-14T15:00:00Z", payload.StartTime)
	assert.Equal(t, "America/New_York", payload.Invitee.Timezone)
}

func TestBuildPayloadScalarOtherSubstituted(t *testing.T) {
	et := testEventType()
	et.CustomQuestions = []calendly.CustomQuestion{
		{Name: "Team size", Type: QuestionSingleSelect, Position: 0, Enabled: true, IncludeOther: true, AnswerChoices: []string{"1-10"}},
	}
	f := NewForm(et, "UTC", &fakeScheduler{})
	fillContact(f)
	f.SetAnswer("question_0", "other")
	f.SetAnswer("question_0_other", "just me")
	require.Empty(t, f.Validate())

	payload := f.BuildPayload("2026-09-14T15:00:00Z")
	require.Len(t, payload.QuestionsAndAnswers, 1)
	assert.Equal(t, "just me", payload.QuestionsAndAnswers[0].Answer)
}

func TestBuildPayloadOrdersByPosition(t *testing.T) {
	et := testEventType()
	et.CustomQuestions = []calendly.CustomQuestion{
		{Name: "Second", Type: QuestionText, Position: 2, Enabled: true},
		{Name: "First", Type: QuestionText, Position: 1, Enabled: true},
	}
	f := NewForm(et, "UTC", &fakeScheduler{})
	fillContact(f)
	f.SetAnswer("question_0", "b")
	f.SetAnswer("question_1", "a")

	payload := f.BuildPayload("2026-09-14T15:00:00Z")
	require.Len(t, payload.QuestionsAndAnswers, 2)
	assert.Equal(t, "First", payload.QuestionsAndAnswers[0].Question)
	assert.Equal(t, "a", payload.QuestionsAndAnswers[0].Answer)
	assert.Equal(t, "Second", payload.QuestionsAndAnswers[1].Question)
}

func TestBuildPayloadGuests(t *testing.T) {
	f := NewForm(testEventType(), "UTC", &fakeScheduler{})
	fillContact(f)
	f.SetGuests("a@x.com, , b@x.com")
	payload := f.BuildPayload("2026-09-14T15:00:00Z")
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, payload.EventGuests)
}

func TestBuildPayloadLocationGetsInviteePhone(t *testing.T) {
	et := testEventType()
	et.CustomQuestions = nil
	et.Locations = []calendly.LocationConfiguration{{Kind: "outbound_call"}}

	f := NewForm(et, "UTC", &fakeScheduler{})
	fillContact(f)
	f.SetInviteePhoneNumber("+15551234567")
	require.Empty(t, f.Validate())

	payload := f.BuildPayload("2026-09-14T15:00:00Z")
	require.NotNil(t, payload.Location)
	assert.Equal(t, "outbound_call", payload.Location.Kind)
	assert.Equal(t, "+15551234567", payload.Location.Location)
	// The phone rides in the location block, never the contact block.
	assert.Equal(t, "jane@example.com", payload.Invitee.Email)
}

func TestBuildPayloadNoLocations(t *testing.T) {
	et := testEventType()
	et.Locations = nil
	f := NewForm(et, "UTC", &fakeScheduler{})
	fillContact(f)
	f.SetAnswer("question_0", "Pricing")

	payload := f.BuildPayload("2026-09-14T15:00:00Z")
	assert.Nil(t, payload.Location)
}

func TestSubmitValidationBlocksExternalCall(t *testing.T) {
	sched := &fakeScheduler{event: confirmedEvent()}
	f := NewForm(testEventType(), "UTC", sched)

	err := f.Submit(context.Background(), "2026-09-14T15:00:00Z")
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, StateCollecting, f.State())
	assert.Zero(t, sched.calls)
	assert.NotEmpty(t, f.ValidationErrors())
}

func TestSubmitConfirmedIsTerminal(t *testing.T) {
	sched := &fakeScheduler{event: confirmedEvent()}
	f := NewForm(testEventType(), "UTC", sched)
	fillContact(f)
	f.SetAnswer("question_0", "Pricing")

	require.NoError(t, f.Submit(context.Background(), "2026-09-14T15:00:00Z"))
	assert.Equal(t, StateConfirmed, f.State())
	require.NotNil(t, f.Confirmation())
	assert.NotEmpty(t, f.Confirmation().ReschedulingURL)
	assert.NotEmpty(t, f.Confirmation().CancellationURL)

	// Terminal: mutation and resubmission are no-ops.
	f.SetName("Someone Else")
	f.SetAnswer("question_0", "changed")
	require.NoError(t, f.Submit(context.Background(), "2026-09-14T15:00:00Z"))
	assert.Equal(t, 1, sched.calls)
	assert.Equal(t, "Jane Doe", f.Name())
	assert.Equal(t, "Pricing", f.Answer("question_0").Text)
}

func TestSubmitFailureIsRetryableAndRetainsData(t *testing.T) {
	apiErr := &calendly.APIError{
		StatusCode: 422,
		Title:      "Invalid submission",
		Message:    "The start time is no longer available.",
		Details:    []calendly.ErrorDetail{{Parameter: "start_time", Message: "taken", Code: "conflict"}},
	}
	sched := &fakeScheduler{err: apiErr}
	f := NewForm(testEventType(), "UTC", sched)
	fillContact(f)
	f.SetAnswer("question_0", "Pricing")

	err := f.Submit(context.Background(), "2026-09-14T15:00:00Z")
	require.Error(t, err)
	assert.Equal(t, StateFailed, f.State())
	require.NotNil(t, f.SubmissionError())
	assert.Equal(t, "Invalid submission", f.SubmissionError().Title)
	assert.Equal(t, "Jane Doe", f.Name())

	// Same form, corrected world: the retry succeeds.
	sched.err = nil
	sched.event = confirmedEvent()
	require.NoError(t, f.Submit(context.Background(), "2026-09-14T16:00:00Z"))
	assert.Equal(t, StateConfirmed, f.State())
	assert.Nil(t, f.SubmissionError())
}

func TestSubmitTransportErrorWrapped(t *testing.T) {
	sched := &fakeScheduler{err: errors.New("dial tcp: connection refused")}
	f := NewForm(testEventType(), "UTC", sched)
	fillContact(f)
	f.SetAnswer("question_0", "Pricing")

	require.Error(t, f.Submit(context.Background(), "2026-09-14T15:00:00Z"))
	require.NotNil(t, f.SubmissionError())
	assert.Equal(t, "Scheduling request failed", f.SubmissionError().Title)
}
