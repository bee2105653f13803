package calendly

// EventType describes one bookable meeting type. It is fetched once per
// widget session and treated as read-only after that.
type EventType struct {
	UUID             string                  `json:"uuid"`
	Name             string                  `json:"name"`
	Duration         int                     `json:"duration"`
	DescriptionPlain string                  `json:"description_plain,omitempty"`
	Locations        []LocationConfiguration `json:"locations,omitempty"`
	CustomQuestions  []CustomQuestion        `json:"custom_questions,omitempty"`
}

// LocationConfiguration is one configured meeting location. Kind is an open
// string on the wire; known values are enumerated in the booking package.
type LocationConfiguration struct {
	Kind     string `json:"kind"`
	Location string `json:"location,omitempty"`
}

type CustomQuestion struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Position      int      `json:"position"`
	Enabled       bool     `json:"enabled"`
	Required      bool     `json:"required"`
	IncludeOther  bool     `json:"include_other"`
	AnswerChoices []string `json:"answer_choices,omitempty"`
}

// Availability is the per-date record returned for a range query.
type Availability struct {
	Date   string `json:"date"` // YYYY-MM-DD in the requested timezone
	Status string `json:"status"`
	Spots  []Spot `json:"spots,omitempty"`
}

type Spot struct {
	Status            string `json:"status"`
	StartTime         string `json:"start_time"` // RFC3339
	InviteesRemaining int    `json:"invitees_remaining,omitempty"`
}

const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

type Timezone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SchedulePayload is the wire shape of a booking submission.
type SchedulePayload struct {
	StartTime           string                 `json:"start_time"`
	QuestionsAndAnswers []QuestionAndAnswer    `json:"questions_and_answers"`
	Invitee             Invitee                `json:"invitee"`
	EventGuests         []string               `json:"event_guests"`
	Location            *LocationConfiguration `json:"location,omitempty"`
}

type QuestionAndAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Position int    `json:"position"`
}

type Invitee struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
}

// ScheduledEvent is the confirmation returned for a successful submission.
type ScheduledEvent struct {
	URI             string `json:"uri,omitempty"`
	StartTime       string `json:"start_time"`
	ReschedulingURL string `json:"rescheduling_url"`
	CancellationURL string `json:"cancellation_url"`
}
