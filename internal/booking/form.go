package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"booking-widget/internal/calendly"
)

// Scheduler is the one external call the form makes.
type Scheduler interface {
	Schedule(ctx context.Context, payload *calendly.SchedulePayload) (*calendly.ScheduledEvent, error)
}

// State is the submission lifecycle of one booking attempt.
type State string

const (
	StateCollecting State = "collecting"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
	StateFailed     State = "failed"
)

// ErrValidationFailed is returned by Submit when local validation blocked
// the attempt. The messages are available via ValidationErrors.
var ErrValidationFailed = errors.New("booking: validation failed")

// Form owns all submission-bound state for one booking attempt: contact
// fields, per-question answers, the chosen location variant and guests.
// Entered data survives failed submissions; a confirmed form is terminal
// and ignores further mutation.
type Form struct {
	scheduler Scheduler
	eventType *calendly.EventType
	timezone  string

	name    string
	email   string
	guests  string
	answers map[string]Answer

	locations       *LocationResolver
	inviteePhone    string
	inviteeLocation string

	state          State
	validationErrs []string
	confirmation   *calendly.ScheduledEvent
	submitErr      *calendly.APIError
}

func NewForm(eventType *calendly.EventType, timezone string, scheduler Scheduler) *Form {
	return &Form{
		scheduler: scheduler,
		eventType: eventType,
		timezone:  timezone,
		answers:   make(map[string]Answer),
		locations: NewLocationResolver(eventType.Locations),
		state:     StateCollecting,
	}
}

func (f *Form) State() State                           { return f.state }
func (f *Form) Locations() *LocationResolver           { return f.locations }
func (f *Form) ValidationErrors() []string             { return f.validationErrs }
func (f *Form) Confirmation() *calendly.ScheduledEvent { return f.confirmation }
func (f *Form) SubmissionError() *calendly.APIError    { return f.submitErr }
func (f *Form) Answer(key string) Answer               { return f.answers[key] }
func (f *Form) Name() string                           { return f.name }
func (f *Form) Email() string                          { return f.email }
func (f *Form) InviteePhoneNumber() string             { return f.inviteePhone }
func (f *Form) InviteeLocation() string                { return f.inviteeLocation }

func (f *Form) terminal() bool { return f.state == StateConfirmed }

func (f *Form) SetName(v string) {
	if f.terminal() {
		return
	}
	f.name = v
}

func (f *Form) SetEmail(v string) {
	if f.terminal() {
		return
	}
	f.email = v
}

// SetGuests stores the raw comma-separated guest string; it is split and
// cleaned only when the payload is built.
func (f *Form) SetGuests(v string) {
	if f.terminal() {
		return
	}
	f.guests = v
}

func (f *Form) SetInviteePhoneNumber(v string) {
	if f.terminal() {
		return
	}
	f.inviteePhone = v
}

func (f *Form) SetInviteeLocation(v string) {
	if f.terminal() {
		return
	}
	f.inviteeLocation = v
}

func (f *Form) SelectLocation(i int) {
	if f.terminal() {
		return
	}
	f.locations.Select(i)
}

// SetAnswer writes one normalized answer through the single-callback
// contract the question inputs share. Keys ending in "_other" carry the
// supplement for the corresponding question.
func (f *Form) SetAnswer(key string, value any) {
	if f.terminal() {
		return
	}
	if base, ok := strings.CutSuffix(key, "_other"); ok {
		a := f.answers[base]
		a.OtherText, _ = value.(string)
		f.answers[base] = a
		return
	}
	switch v := value.(type) {
	case string:
		f.answers[key] = NormalizeScalar(v, f.answers[key])
	case []string:
		f.answers[key] = NormalizeList(v, f.answers[key])
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				list = append(list, s)
			}
		}
		f.answers[key] = NormalizeList(list, f.answers[key])
	}
}

// enabledQuestions returns (index, question) pairs for enabled questions
// ordered by declared position. The key is derived from the declared
// index, not the sort order.
type indexedQuestion struct {
	index    int
	question calendly.CustomQuestion
}

func (f *Form) enabledQuestions() []indexedQuestion {
	out := make([]indexedQuestion, 0, len(f.eventType.CustomQuestions))
	for i, q := range f.eventType.CustomQuestions {
		if q.Enabled {
			out = append(out, indexedQuestion{index: i, question: q})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].question.Position < out[b].question.Position
	})
	return out
}

// Inputs describes the widget controls for this form's questions.
func (f *Form) Inputs() []*Input {
	var out []*Input
	for _, iq := range f.enabledQuestions() {
		if in := InputFor(iq.question, iq.index); in != nil {
			out = append(out, in)
		}
	}
	return out
}

// Validate checks required fields and "other" completeness. It is purely
// local and returns the ordered human-readable violations; an empty list
// means the form may be submitted.
func (f *Form) Validate() []string {
	var errs []string

	if strings.TrimSpace(f.name) == "" {
		errs = append(errs, "Name")
	}
	if strings.TrimSpace(f.email) == "" {
		errs = append(errs, "Email")
	}
	if f.locations.RequiresPhoneNumber() && strings.TrimSpace(f.inviteePhone) == "" {
		errs = append(errs, "Phone Number")
	}
	if f.locations.RequiresInviteeLocation() && strings.TrimSpace(f.inviteeLocation) == "" {
		errs = append(errs, "Your Location")
	}

	for _, iq := range f.enabledQuestions() {
		q := iq.question
		a := f.answers[QuestionKey(iq.index)]

		if q.Required && a.Empty() {
			errs = append(errs, q.Name)
			continue
		}
		// A selected "other" needs its supplement even on optional questions.
		if q.IncludeOther && a.Other && strings.TrimSpace(a.OtherText) == "" {
			errs = append(errs, fmt.Sprintf("%s - Please specify your \"Other\" response", q.Name))
		}
	}
	return errs
}

// Submit validates, builds the payload for the chosen slot start and calls
// the scheduling endpoint. Confirmed forms are terminal: Submit becomes a
// no-op. Failed submissions leave all entered data in place and may be
// retried by calling Submit again.
func (f *Form) Submit(ctx context.Context, startTime string) error {
	if f.terminal() {
		return nil
	}
	f.validationErrs = nil
	f.submitErr = nil

	if errs := f.Validate(); len(errs) > 0 {
		f.validationErrs = errs
		f.state = StateCollecting
		return ErrValidationFailed
	}

	f.state = StateSubmitting
	payload := f.BuildPayload(startTime)

	event, err := f.scheduler.Schedule(ctx, payload)
	if err != nil {
		f.state = StateFailed
		var apiErr *calendly.APIError
		if errors.As(err, &apiErr) {
			f.submitErr = apiErr
		} else {
			// Transport-level failures render through the same error card.
			f.submitErr = &calendly.APIError{
				Title:   "Scheduling request failed",
				Message: err.Error(),
			}
		}
		return err
	}

	f.state = StateConfirmed
	f.confirmation = event
	return nil
}
