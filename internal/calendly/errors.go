package calendly

import "fmt"

// APIError is the structured error body the scheduling API returns for
// rejected requests. It is relayed to the widget as-is so field-level
// details stay attributable.
type APIError struct {
	StatusCode int           `json:"-"`
	Title      string        `json:"title"`
	Message    string        `json:"message"`
	Details    []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Parameter string `json:"parameter"`
	Message   string `json:"message"`
	Code      string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Message)
	}
	return e.Title
}
