package booking

import (
	"strings"

	"booking-widget/internal/calendly"
)

// BuildPayload transforms the form state into the submission wire shape.
// Callers run it only after Validate returned no violations; Submit
// enforces that ordering.
func (f *Form) BuildPayload(startTime string) *calendly.SchedulePayload {
	questions := make([]calendly.QuestionAndAnswer, 0, len(f.eventType.CustomQuestions))
	for _, iq := range f.enabledQuestions() {
		questions = append(questions, calendly.QuestionAndAnswer{
			Question: iq.question.Name,
			Answer:   f.answers[QuestionKey(iq.index)].Render(),
			Position: iq.question.Position,
		})
	}

	return &calendly.SchedulePayload{
		StartTime:           startTime,
		QuestionsAndAnswers: questions,
		Invitee: calendly.Invitee{
			Name:     f.name,
			Email:    f.email,
			Timezone: f.timezone,
		},
		EventGuests: SplitGuests(f.guests),
		Location:    f.locationPayload(),
	}
}

// locationPayload copies the active location and, when its kind demands
// invitee input, carries that input under the location field. The contact
// block never receives it.
func (f *Form) locationPayload() *calendly.LocationConfiguration {
	active := f.locations.Active()
	if active == nil {
		return nil
	}
	loc := *active
	switch {
	case f.locations.RequiresPhoneNumber() && f.inviteePhone != "":
		loc.Location = f.inviteePhone
	case f.locations.RequiresInviteeLocation() && f.inviteeLocation != "":
		loc.Location = f.inviteeLocation
	}
	return &loc
}

// SplitGuests normalizes the raw comma-separated guest string: entries are
// trimmed and blanks dropped.
func SplitGuests(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// LocationLine is the confirmation-card location summary: the number the
// host will call, the invitee-provided place, or the display label.
func (f *Form) LocationLine() string {
	active := f.locations.Active()
	if active == nil {
		return ""
	}
	switch {
	case f.locations.RequiresPhoneNumber() && f.inviteePhone != "":
		return "Phone call: " + f.inviteePhone
	case f.locations.RequiresInviteeLocation() && f.inviteeLocation != "":
		return f.inviteeLocation
	default:
		return LocationDisplayName(*active)
	}
}
