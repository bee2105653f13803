package calendly

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(ts *httptest.Server) *Client {
	return NewClient(ts.URL, "client-1", "evt-1", Options{}, nil)
}

func TestFetchEventType(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/event_types/evt-1", r.URL.Path)
		assert.Equal(t, "client-1", r.URL.Query().Get("client_id"))
		_ = json.NewEncoder(w).Encode(EventType{
			UUID:      "evt-1",
			Name:      "Intro Call",
			Duration:  30,
			Locations: []LocationConfiguration{{Kind: "zoom_conference"}},
		})
	}))
	defer ts.Close()

	et, err := newTestClient(ts).FetchEventType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Intro Call", et.Name)
	assert.Equal(t, 30, et.Duration)
	require.Len(t, et.Locations, 1)
}

func TestFetchAvailability(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/event_types/evt-1/calendar/range", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2026-09-01", q.Get("range_start"))
		assert.Equal(t, "2026-10-01", q.Get("range_end"))
		assert.Equal(t, "America/New_York", q.Get("timezone"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"days": []Availability{
				{Date: "2026-09-14", Status: StatusAvailable, Spots: []Spot{
					{Status: StatusAvailable, StartTime: "2026-09-14T15:00:00Z"},
				}},
			},
		})
	}))
	defer ts.Close()

	days, err := newTestClient(ts).FetchAvailability(context.Background(), "2026-09-01", "2026-10-01", "America/New_York")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-09-14", days[0].Date)
}

func TestScheduleSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/event_types/evt-1/bookings", r.URL.Path)

		var payload SchedulePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "jane@example.com", payload.Invitee.Email)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ScheduledEvent{
			StartTime:       payload.StartTime,
			ReschedulingURL: "https://example.com/r/1",
			CancellationURL: "https://example.com/c/1",
		})
	}))
	defer ts.Close()

	event, err := newTestClient(ts).Schedule(context.Background(), &SchedulePayload{
		StartTime: "2026-09-14T15:00:00Z",
		Invitee:   Invitee{Name: "Jane", Email: "jane@example.com", Timezone: "UTC"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/r/1", event.ReschedulingURL)
	assert.Equal(t, "https://example.com/c/1", event.CancellationURL)
}

func TestScheduleStructuredError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(APIError{
			Title:   "Invalid submission",
			Message: "The start time is no longer available.",
			Details: []ErrorDetail{{Parameter: "start_time", Message: "taken", Code: "conflict"}},
		})
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Schedule(context.Background(), &SchedulePayload{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "Invalid submission", apiErr.Title)
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "start_time", apiErr.Details[0].Parameter)
}

func TestScheduleOpaqueErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Schedule(context.Background(), &SchedulePayload{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Scheduling request failed", apiErr.Title)
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Title: "Invalid submission", Message: "try again"}
	assert.Equal(t, "Invalid submission: try again", err.Error())
	assert.Equal(t, "Invalid submission", (&APIError{Title: "Invalid submission"}).Error())
}
