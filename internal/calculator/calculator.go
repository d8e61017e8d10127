// Package calculator resolves exchange rates from a service catalog and
// converts foreign-currency amounts to NGN. It performs no I/O.
package calculator

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"exdollarium-calculator/internal/domain/model"
)

// MinimumRechargeAmount is the smallest USD amount accepted for Website Recharge.
const MinimumRechargeAmount = 5.0

// rechargeTiers maps a Website Recharge amount to its rate multiplier.
var rechargeTiers = map[float64]int{
	5:  1,
	10: 2,
	20: 3,
	30: 4,
	50: 5,
}

// RechargeTiers returns the Website Recharge amounts in ascending order.
func RechargeTiers() []float64 {
	return []float64{5, 10, 20, 30, 50}
}

// TierMultiplier returns the multiplier for a Website Recharge amount.
// Amounts outside the tier table fall back to 1.
func TierMultiplier(amount float64) int {
	if m, ok := rechargeTiers[amount]; ok {
		return m
	}
	return 1
}

// SelectService finds a service by exact name.
func SelectService(catalog []model.Service, name string) (model.Service, error) {
	for _, s := range catalog {
		if s.Name == name {
			return s, nil
		}
	}
	return model.Service{}, ErrServiceNotFound
}

// ResolveRate returns the NGN rate of service for currency. Absent, zero and
// non-finite rates are all unavailable.
func ResolveRate(service model.Service, currency model.Currency) (float64, error) {
	rate, ok := service.ExchangeRates[currency]
	if !ok || !usableRate(rate) {
		return 0, ErrRateUnavailable
	}
	return rate, nil
}

func usableRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

// ParseAmount parses a user-entered decimal amount such as "10", "2.5" or
// "1e3". Blank, non-numeric, negative and out-of-range input is rejected, as
// are hex literals and digit separators; "0" is a valid amount.
func ParseAmount(input string) (float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(input)
	if err != nil || d.IsNegative() {
		return 0, ErrInvalidAmount
	}

	amount := d.InexactFloat64()
	if math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// ComputeEquivalent converts request.Amount of request.Currency into NGN
// using the named service from catalog.
func ComputeEquivalent(catalog []model.Service, request model.CalculationRequest) (*model.CalculationResult, error) {
	if strings.TrimSpace(request.Service) == "" {
		return nil, ErrMissingService
	}

	amount, err := ParseAmount(request.Amount)
	if err != nil {
		return nil, err
	}

	service, err := SelectService(catalog, request.Service)
	if err != nil {
		return nil, err
	}

	tiered := service.Name == model.WebsiteRecharge
	if tiered && amount < MinimumRechargeAmount {
		return nil, ErrBelowMinimum
	}

	rate, err := ResolveRate(service, request.Currency)
	if err != nil {
		return nil, err
	}

	multiplier := 1
	var value float64
	if tiered {
		multiplier = TierMultiplier(amount)
		value = rate * float64(multiplier)
	} else {
		value = amount * rate
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, ErrInvalidCalculation
	}

	return &model.CalculationResult{
		Service:       service.Name,
		Currency:      request.Currency,
		Amount:        amount,
		Rate:          rate,
		Multiplier:    multiplier,
		NGNEquivalent: Round2(value),
	}, nil
}

// Round2 rounds half away from zero to 2 fractional digits.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
