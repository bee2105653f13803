package app

import (
	"time"

	"booking-widget/internal/booking"
	"booking-widget/internal/calendly"
)

// The widget is one of three views at any moment: the calendar (pick a
// date and time), the details form, or the confirmation card.
const (
	viewCalendar  = "calendar"
	viewForm      = "form"
	viewConfirmed = "confirmed"
)

type eventTypeView struct {
	Name             string `json:"name"`
	Duration         int    `json:"duration"`
	DescriptionPlain string `json:"description_plain,omitempty"`
	LocationLabel    string `json:"location_label,omitempty"`
}

type locationOptionView struct {
	Index    int    `json:"index"`
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

type locationView struct {
	Options                 []locationOptionView `json:"options"`
	SelectedIndex           int                  `json:"selected_index"`
	HasMultiple             bool                 `json:"has_multiple"`
	RequiresPhoneNumber     bool                 `json:"requires_phone_number"`
	RequiresInviteeLocation bool                 `json:"requires_invitee_location"`
}

type confirmationView struct {
	EventName       string `json:"event_name"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	LocationLine    string `json:"location_line,omitempty"`
	ReschedulingURL string `json:"rescheduling_url"`
	CancellationURL string `json:"cancellation_url"`
}

type sessionView struct {
	SessionID        string             `json:"session_id"`
	View             string             `json:"view"`
	AvailabilityOnly bool               `json:"availability_only,omitempty"`
	EventType        eventTypeView      `json:"event_type"`
	Timezone         string             `json:"timezone"`
	Month            string             `json:"month"`
	SelectedDate     string             `json:"selected_date,omitempty"`
	SelectedSlot     *calendly.Spot     `json:"selected_slot,omitempty"`
	CalendarError    bool               `json:"calendar_error,omitempty"`
	Inputs           []*booking.Input   `json:"inputs,omitempty"`
	Location         *locationView      `json:"location,omitempty"`
	ValidationErrors []string           `json:"validation_errors,omitempty"`
	Error            *calendly.APIError `json:"error,omitempty"`
	Confirmation     *confirmationView  `json:"confirmation,omitempty"`
}

// viewState renders the whole widget state for one session. Callers hold
// the session lock.
func (a *App) viewState(sess *Session) sessionView {
	et := sess.EventType
	view := sessionView{
		SessionID:        sess.ID,
		AvailabilityOnly: a.Cfg.AvailabilityOnly,
		Timezone:         sess.Selector.Timezone(),
		Month:            sess.Selector.Month().Format(monthLayout),
		SelectedDate:     sess.Selector.SelectedDate(),
		SelectedSlot:     sess.Selector.SelectedSlot(),
		CalendarError:    sess.Selector.Err() != nil,
		EventType: eventTypeView{
			Name:             et.Name,
			Duration:         et.Duration,
			DescriptionPlain: et.DescriptionPlain,
		},
	}
	// The event summary shows the location only when there is exactly one.
	if len(et.Locations) == 1 {
		view.EventType.LocationLabel = booking.LocationDisplayName(et.Locations[0])
	}

	switch {
	case sess.Form.State() == booking.StateConfirmed:
		view.View = viewConfirmed
		view.Confirmation = a.confirmation(sess)
	case !a.Cfg.AvailabilityOnly && view.SelectedSlot != nil:
		view.View = viewForm
		view.Inputs = sess.Form.Inputs()
		view.Location = locationState(sess.Form)
		view.ValidationErrors = sess.Form.ValidationErrors()
		view.Error = sess.Form.SubmissionError()
	default:
		view.View = viewCalendar
	}
	return view
}

func locationState(form *booking.Form) *locationView {
	resolver := form.Locations()
	options := resolver.Options()
	if len(options) == 0 {
		return nil
	}
	out := &locationView{
		SelectedIndex:           resolver.SelectedIndex(),
		HasMultiple:             resolver.HasMultiple(),
		RequiresPhoneNumber:     resolver.RequiresPhoneNumber(),
		RequiresInviteeLocation: resolver.RequiresInviteeLocation(),
	}
	for i, loc := range options {
		out.Options = append(out.Options, locationOptionView{
			Index:    i,
			Kind:     loc.Kind,
			Label:    booking.LocationDisplayName(loc),
			Category: booking.LocationKind(loc.Kind).Category().String(),
		})
	}
	return out
}

func (a *App) confirmation(sess *Session) *confirmationView {
	event := sess.Form.Confirmation()
	if event == nil {
		return nil
	}
	out := &confirmationView{
		EventName:       sess.EventType.Name,
		LocationLine:    sess.Form.LocationLine(),
		ReschedulingURL: event.ReschedulingURL,
		CancellationURL: event.CancellationURL,
	}
	startStr := event.StartTime
	if startStr == "" {
		if slot := sess.Selector.SelectedSlot(); slot != nil {
			startStr = slot.StartTime
		}
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return out
	}
	if loc, err := time.LoadLocation(sess.Selector.Timezone()); err == nil {
		start = start.In(loc)
	}
	out.Date = start.Format("Monday, January 2, 2006")
	out.Time = start.Format("3:04 PM")
	return out
}
