package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"booking-widget/internal/booking"
)

// googleCalendarConfig returns the OAuth2 config for the invitee-side
// "add to my Google Calendar" export, or nil when not configured.
func (a *App) googleCalendarConfig() *oauth2.Config {
	if a.Cfg.GoogleClientID == "" || a.Cfg.GoogleClientSecret == "" || a.Cfg.GoogleRedirectURL == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     a.Cfg.GoogleClientID,
		ClientSecret: a.Cfg.GoogleClientSecret,
		RedirectURL:  a.Cfg.GoogleRedirectURL,
		Scopes: []string{
			calendar.CalendarEventsScope,
		},
		Endpoint: google.Endpoint,
	}
}

// GET /api/calendar/auth
// Starts the OAuth2 flow for the calendar export.
func (a *App) GoogleAuthHandler(c *gin.Context) {
	cfg := a.googleCalendarConfig()
	if cfg == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Google Calendar export not configured"})
		return
	}

	state := fmt.Sprintf("session_%s_%d", c.Query("session_id"), time.Now().Unix())
	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.JSON(http.StatusOK, gin.H{
		"auth_url": url,
		"state":    state,
	})
}

// GET /oauth2callback
func (a *App) GoogleOAuth2CallbackHandler(c *gin.Context) {
	cfg := a.googleCalendarConfig()
	if cfg == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Google Calendar export not configured"})
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}

	token, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to exchange code for token"})
		return
	}

	tokenJSON, _ := json.Marshal(token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Authorization successful",
		"state":   state,
		"token":   string(tokenJSON),
	})
}

// POST /api/sessions/:id/calendar-export
// Inserts the confirmed booking into the invitee's own Google Calendar.
// The invitee's OAuth token comes from the X-Google-Token header.
func (a *App) ExportToCalendarHandler(c *gin.Context) {
	cfg := a.googleCalendarConfig()
	if cfg == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Google Calendar export not configured"})
		return
	}

	sess, ok := a.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	if sess.Form.State() != booking.StateConfirmed {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing scheduled yet"})
		return
	}

	tokenStr := c.GetHeader("X-Google-Token")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Google token required in X-Google-Token header"})
		return
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(tokenStr), &token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token format"})
		return
	}

	slot := sess.Selector.SelectedSlot()
	if slot == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing scheduled yet"})
		return
	}
	start, err := time.Parse(time.RFC3339, slot.StartTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid scheduled start time"})
		return
	}
	end := start.Add(time.Duration(sess.EventType.Duration) * time.Minute)

	client := cfg.Client(context.Background(), &token)
	srv, err := calendar.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create calendar service"})
		return
	}

	event := &calendar.Event{
		Summary:     sess.EventType.Name,
		Description: sess.EventType.DescriptionPlain,
		Location:    sess.Form.LocationLine(),
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	created, err := srv.Events.Insert("primary", event).Do()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to create event: %v", err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"event_id":  created.Id,
		"html_link": created.HtmlLink,
	})
}
