// Package server assembles the echo instance serving the prompt API.
package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"promptlib/cmd/internal/http/handler"
)

type Options struct {
	PromptService handler.PromptService
	// Registry is exposed on /metrics when set.
	Registry *prometheus.Registry
	// RequestLogging enables one log line per request.
	RequestLogging bool
}

func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("2M"))

	if opts.RequestLogging {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:    true,
			LogURI:       true,
			LogStatus:    true,
			LogLatency:   true,
			LogRequestID: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				log.Infof("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
				return nil
			},
		}))
	}

	promptRoutes := handler.NewPromptDefault(opts.PromptService)

	// Prompts
	e.GET("/api/prompts", promptRoutes.GetPrompts)
	e.GET("/api/prompts/:id", promptRoutes.GetPrompt)
	e.POST("/api/prompts", promptRoutes.CreatePrompt)
	e.PUT("/api/prompts/:id", promptRoutes.UpdatePrompt)
	e.DELETE("/api/prompts/:id", promptRoutes.DeletePrompt)
	e.PATCH("/api/prompts/:id/lock", promptRoutes.SetLock)

	e.GET("/api/health", handler.HealthCheck)

	if opts.Registry != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	return e
}
