package currency

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Default fraction digit limits for displayed values.
const (
	DefaultAmountDigits = 2
	DefaultRateDigits   = 6
)

// Display is the formatted, locale-aware rendering of a Conversion.
type Display struct {
	Amount  string `json:"amount"`
	Result  string `json:"result"`
	Rate    string `json:"rate"`
	Caption string `json:"caption"` // 1 USD = 83 INR
	Summary string `json:"summary"` // 10 USD = 830 INR
}

// Formatter renders numbers with locale grouping, a maximum number of
// fraction digits and no trailing zeros.
type Formatter struct {
	printer      *message.Printer
	amountDigits int
	rateDigits   int
}

// NewFormatter creates a formatter for locale. An unknown locale falls back
// to American English; non-positive digit limits use the defaults.
func NewFormatter(locale string, amountDigits, rateDigits int) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	if amountDigits <= 0 {
		amountDigits = DefaultAmountDigits
	}
	if rateDigits <= 0 {
		rateDigits = DefaultRateDigits
	}
	return &Formatter{
		printer:      message.NewPrinter(tag),
		amountDigits: amountDigits,
		rateDigits:   rateDigits,
	}
}

func (f *Formatter) format(v float64, digits int) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(digits)))
}

// Amount formats a monetary amount.
func (f *Formatter) Amount(v float64) string {
	return f.format(v, f.amountDigits)
}

// Rate formats a unit exchange rate.
func (f *Formatter) Rate(v float64) string {
	return f.format(v, f.rateDigits)
}

// Display renders c for the result and rate caption areas.
func (f *Formatter) Display(c *Conversion) Display {
	amount := f.Amount(c.Amount)
	result := f.Amount(c.Result)
	rate := f.Rate(c.Rate)
	return Display{
		Amount:  amount,
		Result:  result,
		Rate:    rate,
		Caption: fmt.Sprintf("1 %s = %s %s", c.From, rate, c.To),
		Summary: fmt.Sprintf("%s %s = %s %s", amount, c.From, result, c.To),
	}
}
