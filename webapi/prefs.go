package webapi

import (
	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/service/widget"
	"github.com/gofiber/fiber/v2"
)

// PrefsRoutes registers the preference endpoints.
func PrefsRoutes(router fiber.Router, widgetSvc *widget.Service) {
	group := router.Group("/prefs")
	group.Get("/", GetPrefs(widgetSvc))
	group.Put("/", UpdatePrefs(widgetSvc))
	group.Post("/swap", SwapCurrencies(widgetSvc))
	group.Delete("/amount", ClearAmount(widgetSvc))
}

// GetPrefs returns the client's saved currency selection and amount.
func GetPrefs(widgetSvc *widget.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := widgetSvc.Prefs(c.UserContext(), clientID(c))
		return SuccessResponseJSON(c, fiber.StatusOK, "Preferences fetched", p)
	}
}

// UpdatePrefs saves the submitted preferences and converts the amount if set.
func UpdatePrefs(widgetSvc *widget.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[domain.UserPrefs](c)
		if input == nil {
			return err // error response already written
		}
		result, err := widgetSvc.Update(c.UserContext(), clientID(c), *input)
		return conversionResponse(c, "Preferences saved", result, err)
	}
}

// SwapCurrencies exchanges the selected currencies.
func SwapCurrencies(widgetSvc *widget.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := widgetSvc.Swap(c.UserContext(), clientID(c))
		return conversionResponse(c, "Currencies swapped", result, err)
	}
}

// ClearAmount empties the amount and keeps the currency selection.
func ClearAmount(widgetSvc *widget.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := widgetSvc.Clear(c.UserContext(), clientID(c))
		return SuccessResponseJSON(c, fiber.StatusOK, "Amount cleared", p)
	}
}

func conversionResponse(c *fiber.Ctx, message string, result *widget.Result, err error) error {
	if err != nil {
		return ErrorResponseJSON(c, ErrorToStatusCode(err), "Conversion failed", err.Error())
	}
	return SuccessResponseJSON(c, fiber.StatusOK, message, ToConversionResponse(result))
}
