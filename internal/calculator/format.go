package calculator

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders rates and results with locale grouping separators.
type Formatter struct {
	locale  language.Tag
	printer *message.Printer
}

// NewFormatter falls back to English when locale cannot be parsed.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{locale: tag, printer: message.NewPrinter(tag)}
}

func (f *Formatter) Locale() string {
	return f.locale.String()
}

// FormatResult always prints exactly two fractional digits.
func (f *Formatter) FormatResult(v float64) string {
	return f.printer.Sprintf("%.2f", v)
}

// FormatRate uses the looser preview formatting: up to three fractional
// digits and no trailing zeros.
func (f *Formatter) FormatRate(v float64) string {
	return f.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}
