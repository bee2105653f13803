package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"booking-widget/internal/availability"
	"booking-widget/internal/booking"
)

const monthLayout = "2006-01"

type createSessionReq struct {
	Timezone string `json:"timezone,omitempty"`
}

// POST /api/sessions
// Opens a widget session: fetches the configured event type and the
// current month's availability.
func (a *App) CreateSessionHandler(c *gin.Context) {
	var req createSessionReq
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = a.Cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timezone"})
		return
	}

	ctx := c.Request.Context()
	eventType, err := a.API.FetchEventType(ctx)
	if err != nil {
		a.Logger.Error("event type fetch failed", "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "event type unavailable"})
		return
	}

	selector := availability.NewSelector(a.API, timezone, time.Now().In(loc))
	form := booking.NewForm(eventType, timezone, a.API)
	sess := a.Sessions.Create(eventType, selector, form)
	a.Metrics.SessionsCreated.Inc()

	// An errored availability fetch leaves the calendar disabled, it does
	// not fail session creation.
	if err := selector.Refresh(ctx); err != nil {
		a.Logger.Warn("availability fetch failed", "session", sess.ID, "err", err)
	}

	c.JSON(http.StatusCreated, a.viewState(sess))
}

// GET /api/sessions/:id
func (a *App) GetSessionHandler(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	c.JSON(http.StatusOK, a.viewState(sess))
}

type timezoneReq struct {
	Timezone string `json:"timezone" binding:"required"`
}

// PUT /api/sessions/:id/timezone
// One of the two triggers that re-fetch the availability range.
func (a *App) SetTimezoneHandler(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	var req timezoneReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timezone"})
		return
	}
	sess.Lock()
	defer sess.Unlock()
	if sess.Selector.SetTimezone(req.Timezone) {
		if err := sess.Selector.Refresh(c.Request.Context()); err != nil {
			a.Logger.Warn("availability fetch failed", "session", sess.ID, "err", err)
		}
	}
	c.JSON(http.StatusOK, a.viewState(sess))
}

type monthReq struct {
	Month string `json:"month" binding:"required"` // YYYY-MM
}

// PUT /api/sessions/:id/month
func (a *App) SetMonthHandler(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	var req monthReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := time.Parse(monthLayout, req.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, want YYYY-MM"})
		return
	}
	sess.Lock()
	defer sess.Unlock()
	if sess.Selector.SetMonth(m.Year(), m.Month()) {
		if err := sess.Selector.Refresh(c.Request.Context()); err != nil {
			a.Logger.Warn("availability fetch failed", "session", sess.ID, "err", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"month": sess.Selector.Month().Format(monthLayout),
		"days":  sess.Selector.Days(),
		"error": sess.Selector.Err() != nil,
	})
}

// GET /api/sessions/:id/days
func (a *App) GetDaysHandler(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"month": sess.Selector.Month().Format(monthLayout),
		"days":  sess.Selector.Days(),
		"error": sess.Selector.Err() != nil,
	})
}

type dateReq struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
}

// PUT /api/sessions/:id/date
// Selecting a date clears any previously chosen slot.
func (a *App) SelectDateHandler(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	var req dateReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Selector.SelectDate(req.Date); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "date not available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":  req.Date,
		"spots": sess.Selector.AvailableSpots(),
	})
}

type slotReq struct {
	StartTime string `json:"start_time" binding:"required"` // RFC3339
}

// PUT /api/sessions/:id/slot
func (a *App) SelectSlotHandler(c *gin.Context) {
	if a.Cfg.AvailabilityOnly {
		c.JSON(http.StatusForbidden, gin.H{"error": "booking disabled for this widget"})
		return
	}
	sess, ok := a.session(c)
	if !ok {
		return
	}
	var req slotReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Selector.SelectSlot(req.StartTime); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "time not available"})
		return
	}
	c.JSON(http.StatusOK, a.viewState(sess))
}

// DELETE /api/sessions/:id/slot
// The "back" action: drops the chosen time, keeps everything the invitee
// already typed.
func (a *App) ClearSlotHandler(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Selector.ClearSlot()
	c.JSON(http.StatusOK, a.viewState(sess))
}

type scheduleReq struct {
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	Guests             string         `json:"guests"`
	LocationIndex      *int           `json:"location_index,omitempty"`
	InviteePhoneNumber string         `json:"invitee_phone_number,omitempty"`
	InviteeLocation    string         `json:"invitee_location,omitempty"`
	Answers            map[string]any `json:"answers,omitempty"`
}

// POST /api/sessions/:id/schedule
// Applies the submitted fields to the form, validates locally, and only
// then calls the scheduling endpoint.
func (a *App) ScheduleHandler(c *gin.Context) {
	if a.Cfg.AvailabilityOnly {
		c.JSON(http.StatusForbidden, gin.H{"error": "booking disabled for this widget"})
		return
	}
	sess, ok := a.session(c)
	if !ok {
		return
	}
	var req scheduleReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	slot := sess.Selector.SelectedSlot()
	if slot == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no time selected"})
		return
	}

	form := sess.Form
	form.SetName(req.Name)
	form.SetEmail(req.Email)
	form.SetGuests(req.Guests)
	if req.LocationIndex != nil {
		form.SelectLocation(*req.LocationIndex)
	}
	form.SetInviteePhoneNumber(req.InviteePhoneNumber)
	form.SetInviteeLocation(req.InviteeLocation)
	for key, value := range req.Answers {
		form.SetAnswer(key, value)
	}

	a.Metrics.ScheduleAttempts.Inc()
	err := form.Submit(c.Request.Context(), slot.StartTime)
	switch {
	case err == nil:
		a.Metrics.ScheduleOutcomes.WithLabelValues(outcomeConfirmed).Inc()
		c.JSON(http.StatusCreated, a.viewState(sess))
	case errors.Is(err, booking.ErrValidationFailed):
		a.Metrics.ScheduleOutcomes.WithLabelValues(outcomeValidation).Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"validation_errors": form.ValidationErrors(),
			"scroll_to_error":   true,
		})
	default:
		a.Metrics.ScheduleOutcomes.WithLabelValues(outcomeAPIError).Inc()
		apiErr := form.SubmissionError()
		status := http.StatusBadGateway
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
		c.JSON(status, gin.H{
			"error":           apiErr,
			"scroll_to_error": true,
		})
	}
}

// GET /api/timezones
func (a *App) TimezonesHandler(c *gin.Context) {
	timezones, err := a.API.FetchTimezones(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "timezones unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"timezones": timezones})
}

// GET /healthz
func (a *App) HealthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "sessions": a.Sessions.Len()})
}

func (a *App) session(c *gin.Context) (*Session, bool) {
	sess, ok := a.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return sess, true
}
