package webapi

import (
	"time"

	"github.com/amirasaad/fxwidget/pkg/currency"
	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/service/widget"
)

// RatesResponse describes the rate table currently in use.
type RatesResponse struct {
	Currencies  []string       `json:"currencies"`
	Rates       domain.RateMap `json:"rates"`
	Source      domain.Source  `json:"source"`
	Status      string         `json:"status"`
	LastUpdated string         `json:"last_updated,omitempty"`
	SavedAt     *time.Time     `json:"saved_at,omitempty"`
	Degraded    bool           `json:"degraded"`
}

// ToRatesResponse converts a resolution to its response DTO
func ToRatesResponse(res domain.Resolution) *RatesResponse {
	out := &RatesResponse{
		Currencies:  res.Rates.Codes(),
		Rates:       res.Rates,
		Source:      res.Source,
		Status:      res.Status,
		LastUpdated: res.Meta.LastUpdated,
		Degraded:    res.Degraded(),
	}
	if !res.Meta.SavedAt.IsZero() {
		saved := res.Meta.SavedAt.UTC()
		out.SavedAt = &saved
	}
	return out
}

// ConversionResponse is the widget state after a conversion.
type ConversionResponse struct {
	Prefs   domain.UserPrefs  `json:"prefs"`
	Rate    float64           `json:"rate,omitempty"`
	Result  float64           `json:"result,omitempty"`
	Display *currency.Display `json:"display,omitempty"`
}

// ToConversionResponse converts a widget result to its response DTO
func ToConversionResponse(r *widget.Result) *ConversionResponse {
	out := &ConversionResponse{Prefs: r.Prefs, Display: r.Display}
	if r.Conversion != nil {
		out.Rate = r.Conversion.Rate
		out.Result = r.Conversion.Result
	}
	return out
}
