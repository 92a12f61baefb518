package domain

// Default currency selection used when no preferences were saved.
const (
	DefaultFromCurrency = BaseCurrency
	DefaultToCurrency   = "EUR"
)

// UserPrefs holds the widget state that survives between sessions.
type UserPrefs struct {
	From   string `json:"from" validate:"required,len=3,alpha"`
	To     string `json:"to" validate:"required,len=3,alpha"`
	Amount string `json:"amount" validate:"max=64"`
}

// DefaultPrefs returns the preferences of a first-time user.
func DefaultPrefs() UserPrefs {
	return UserPrefs{
		From: DefaultFromCurrency,
		To:   DefaultToCurrency,
	}
}

// Swapped returns a copy with source and target currency exchanged.
func (p UserPrefs) Swapped() UserPrefs {
	p.From, p.To = p.To, p.From
	return p
}
