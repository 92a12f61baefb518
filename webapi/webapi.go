// Package webapi exposes the conversion widget over HTTP:
// - rates: resolved rate table, status line and manual refresh
// - convert: conversions with locale-aware display strings
// - prefs: per-browser currency selection and last amount
package webapi

import (
	"strings"

	"github.com/amirasaad/fxwidget/pkg/app"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	widgetSvc := a.WidgetService
	cfg := a.Config

	fiberApp := fiber.New(fiber.Config{
		AppName: "fxwidget",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Default to 500 if status code cannot be determined
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, utils.StatusMessage(status), err.Error())
		},
	})

	fiberApp.Use(recover.New())

	// Uses X-Forwarded-For header when behind a proxy
	if cfg.RateLimit != nil && cfg.RateLimit.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.MaxRequests,
			Expiration: cfg.RateLimit.Window,
			KeyGenerator: func(c *fiber.Ctx) string {
				if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
					first, _, _ := strings.Cut(forwardedFor, ",")
					return strings.TrimSpace(first)
				}
				if realIP := c.Get("X-Real-IP"); realIP != "" {
					return realIP
				}
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
			},
		}))
	}

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		res, resolved := a.Deps.State.Current()
		return SuccessResponseJSON(c, fiber.StatusOK, "fxwidget is running", fiber.Map{
			"resolved": resolved,
			"source":   res.Source,
		})
	})
	fiberApp.Get("/metrics", adaptor.HTTPHandler(
		promhttp.HandlerFor(a.Deps.Registry, promhttp.HandlerOpts{}),
	))

	cookieName := ""
	if cfg.Widget != nil {
		cookieName = cfg.Widget.ClientCookie
	}
	api := fiberApp.Group("/api", ClientID(cookieName, cfg.Env == "production"))
	RateRoutes(api, widgetSvc)
	PrefsRoutes(api, widgetSvc)

	return fiberApp
}
