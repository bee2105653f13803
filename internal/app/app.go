// Package app composes the widget: it wires the availability selector
// into the booking form per session and exposes both over HTTP.
package app

import (
	"context"
	"log/slog"

	"booking-widget/internal/calendly"
	"booking-widget/internal/config"
)

// SchedulingAPI is the upstream contract the widget consumes. It is
// satisfied by *calendly.Client and faked in tests.
type SchedulingAPI interface {
	FetchEventType(ctx context.Context) (*calendly.EventType, error)
	FetchAvailability(ctx context.Context, rangeStart, rangeEnd, timezone string) ([]calendly.Availability, error)
	FetchTimezones(ctx context.Context) ([]calendly.Timezone, error)
	Schedule(ctx context.Context, payload *calendly.SchedulePayload) (*calendly.ScheduledEvent, error)
}

type App struct {
	API      SchedulingAPI
	Cfg      *config.Config
	Sessions *SessionStore
	Metrics  *Metrics
	Logger   *slog.Logger
}
