package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"booking-widget/internal/app"
	"booking-widget/internal/calendly"
	"booking-widget/internal/config"
	"booking-widget/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.LogLevel)
	client := calendly.NewClient(cfg.CalendlyBaseURL, cfg.CalendlyClientID, cfg.EventTypeUUID, calendly.Options{
		ClientSecret: cfg.CalendlyClientSecret,
		TokenURL:     cfg.CalendlyTokenURL,
		StaticToken:  cfg.CalendlyStaticToken,
	}, logger)

	registry := prometheus.NewRegistry()
	appInstance := &app.App{
		API:      client,
		Cfg:      cfg,
		Sessions: app.NewSessionStore(cfg.SessionTTL),
		Metrics:  app.NewMetrics(registry),
		Logger:   logger,
	}
	defer appInstance.Sessions.Close()

	router := gin.Default()

	// OAuth2 callback (must be before auth middleware)
	router.GET("/oauth2callback", appInstance.GoogleOAuth2CallbackHandler)
	router.GET("/healthz", appInstance.HealthzHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.Use(app.AuthMiddleware(cfg.StaticTokens, cfg.JWTHMACSecret))

	api := router.Group("/api")
	{
		api.GET("/timezones", appInstance.TimezonesHandler)

		sessions := api.Group("/sessions")
		sessions.Use(app.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
		{
			sessions.POST("", appInstance.CreateSessionHandler)
			sessions.GET("/:id", appInstance.GetSessionHandler)
			sessions.GET("/:id/days", appInstance.GetDaysHandler)
			sessions.PUT("/:id/timezone", appInstance.SetTimezoneHandler)
			sessions.PUT("/:id/month", appInstance.SetMonthHandler)
			sessions.PUT("/:id/date", appInstance.SelectDateHandler)
			sessions.PUT("/:id/slot", appInstance.SelectSlotHandler)
			sessions.DELETE("/:id/slot", appInstance.ClearSlotHandler)
			sessions.POST("/:id/schedule", appInstance.ScheduleHandler)
			sessions.POST("/:id/calendar-export", appInstance.ExportToCalendarHandler)
		}

		calendarGroup := api.Group("/calendar")
		{
			calendarGroup.GET("/auth", appInstance.GoogleAuthHandler)
		}
	}

	server.Run(router, cfg.Port)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
