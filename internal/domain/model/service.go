package model

import "time"

// WebsiteRecharge is the only service priced by tier instead of linearly.
const WebsiteRecharge = "Website Recharge"

// Service is a named exchange channel with per-currency NGN rates.
type Service struct {
	ID            string               `json:"_id,omitempty"`
	Name          string               `json:"name"`
	ExchangeRates map[Currency]float64 `json:"exchangeRates"`
}

// Clone returns a copy that shares no map with s.
func (s Service) Clone() Service {
	rates := make(map[Currency]float64, len(s.ExchangeRates))
	for c, r := range s.ExchangeRates {
		rates[c] = r
	}
	s.ExchangeRates = rates
	return s
}

// CloneServices deep-copies a catalog snapshot.
func CloneServices(services []Service) []Service {
	if services == nil {
		return nil
	}
	out := make([]Service, len(services))
	for i, s := range services {
		out[i] = s.Clone()
	}
	return out
}

// CatalogSnapshot is a full-replacement view of the service catalog.
type CatalogSnapshot struct {
	Services  []Service `json:"services"`
	FetchedAt time.Time `json:"fetched_at"`
}

type CalculationRequest struct {
	Service  string   `json:"service"`
	Currency Currency `json:"currency"`
	Amount   string   `json:"amount"`
}

type CalculationResult struct {
	Service       string   `json:"service"`
	Currency      Currency `json:"currency"`
	Amount        float64  `json:"amount"`
	Rate          float64  `json:"rate"`
	Multiplier    int      `json:"multiplier"`
	NGNEquivalent float64  `json:"ngnEquivalent"`
}
