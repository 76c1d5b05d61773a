package view

import (
	"context"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dbTimeout = 5 * time.Second

var printer = message.NewPrinter(language.Spanish)

// FormatAmount renders an amount in euros with Spanish separators.
func FormatAmount(amount float64) string {
	return printer.Sprintf("%.2f €", amount)
}

// FormatPercent renders a margin such as 42.5 as "42,5 %".
func FormatPercent(p float64) string {
	return printer.Sprintf("%.1f %%", p)
}

// FormatDate formats a time.Time into DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatStoredDate converts a stored YYYY-MM-DD date into DD/MM/YYYY and
// returns anything else unchanged.
func FormatStoredDate(s string) string {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return s
	}

	return FormatDate(t)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
