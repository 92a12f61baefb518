package webapi

import (
	"github.com/amirasaad/fxwidget/pkg/service/widget"
	"github.com/gofiber/fiber/v2"
)

// RateRoutes registers the rate and conversion endpoints.
func RateRoutes(router fiber.Router, widgetSvc *widget.Service) {
	router.Get("/rates", GetRates(widgetSvc))
	router.Post("/rates/refresh", RefreshRates(widgetSvc))
	router.Get("/convert", Convert(widgetSvc))
}

// GetRates returns the resolved rate table and its status line.
func GetRates(widgetSvc *widget.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := widgetSvc.Resolution(c.UserContext())
		return SuccessResponseJSON(c, fiber.StatusOK, res.Status, ToRatesResponse(res))
	}
}

// RefreshRates fetches fresh rates, keeping the current ones if every
// source fails.
func RefreshRates(widgetSvc *widget.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := widgetSvc.Refresh(c.UserContext())
		return SuccessResponseJSON(c, fiber.StatusOK, res.Status, ToRatesResponse(res))
	}
}

// Convert converts ?amount= from ?from= to ?to=. Missing currencies come
// from the client's saved preferences.
func Convert(widgetSvc *widget.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := clientID(c)

		from, to := c.Query("from"), c.Query("to")
		if from == "" || to == "" {
			saved := widgetSvc.Prefs(ctx, id)
			if from == "" {
				from = saved.From
			}
			if to == "" {
				to = saved.To
			}
		}

		result, err := widgetSvc.Convert(ctx, id, c.Query("amount"), from, to)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Conversion failed", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, result.Display.Summary, ToConversionResponse(result))
	}
}
