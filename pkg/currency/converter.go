package currency

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/amirasaad/fxwidget/pkg/domain"
)

var (
	// ErrInvalidAmount indicates the amount is not a finite number above zero.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrCurrencyNotAvailable indicates a currency code is missing from the rate table.
	ErrCurrencyNotAvailable = errors.New("currency not available")
)

// Conversion holds the outcome of converting an amount between two currencies.
type Conversion struct {
	Amount float64
	From   string
	To     string
	// Rate is the unit cross rate: 1 From = Rate To.
	Rate   float64
	Result float64
}

// NormalizeCode trims and upper-cases a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseAmount parses user input into an amount accepted by Convert.
func ParseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if err := validateAmount(amount); err != nil {
		return 0, err
	}
	return amount, nil
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Convert applies the cross rate rates[to]/rates[from] to amount. The amount
// is validated before the currencies.
func Convert(amount float64, from, to string, rates domain.RateMap) (*Conversion, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	fromRate, ok := rates[from]
	if !ok {
		return nil, ErrCurrencyNotAvailable
	}
	toRate, ok := rates[to]
	if !ok {
		return nil, ErrCurrencyNotAvailable
	}

	if !usableRate(fromRate) || !usableRate(toRate) {
		return nil, ErrCurrencyNotAvailable
	}

	rate := toRate / fromRate
	result := amount * rate
	// A finite amount can still overflow once the rate is applied.
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return nil, ErrInvalidAmount
	}
	return &Conversion{
		Amount: amount,
		From:   from,
		To:     to,
		Rate:   rate,
		Result: result,
	}, nil
}

func usableRate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
