package model

import "strings"

// Currency is a lower-case currency code as used by the catalog API.
type Currency string

const (
	USD Currency = "usd"
	EUR Currency = "eur"
	GBP Currency = "gbp"
)

var SupportedCurrencies = []Currency{USD, EUR, GBP}

func (c Currency) IsSupported() bool {
	for _, supportedCurrency := range SupportedCurrencies {
		if c == supportedCurrency {
			return true
		}
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency normalizes user input ("USD", " usd ") to a Currency.
// The result is not guaranteed to be supported.
func ParseCurrency(s string) Currency {
	return Currency(strings.ToLower(strings.TrimSpace(s)))
}
