package pricing

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts as Australian dollars for one locale.
// The zero value uses FormatFixed.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a Formatter for the given BCP 47 locale. An
// unparseable locale yields the fixed two-decimal fallback.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		return Formatter{}
	}
	return Formatter{printer: message.NewPrinter(tag)}
}

// Format renders amount as symbol then digits with the locale's digit
// grouping, e.g. "$1,096.70" and "-$55.00".
func (f Formatter) Format(amount decimal.Decimal) string {
	if f.printer == nil {
		return FormatFixed(amount)
	}
	amount = amount.Round(2)
	v, _ := amount.Abs().Float64()
	out := f.printer.Sprint(currency.NarrowSymbol(currency.AUD.Amount(v)))

	// x/text separates the symbol from the digits with a space.
	if i := strings.IndexFunc(out, unicode.IsDigit); i > 0 {
		out = strings.TrimRightFunc(out[:i], unicode.IsSpace) + out[i:]
	}
	return sign(amount) + out
}

// FormatFixed renders amount as "$" followed by two fixed decimals, with
// the sign ahead of the symbol.
func FormatFixed(amount decimal.Decimal) string {
	amount = amount.Round(2)
	return sign(amount) + "$" + amount.Abs().StringFixed(2)
}

func sign(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-"
	}
	return ""
}
