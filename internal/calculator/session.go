package calculator

import (
	"exdollarium-calculator/internal/domain/model"
)

// State is the visible state of a calculator form.
type State int

const (
	StateIdle State = iota
	StateServiceSelected
	StateCurrencySelected
	StateAmountEntered
	StateResult
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateServiceSelected:
		return "service_selected"
	case StateCurrencySelected:
		return "currency_selected"
	case StateAmountEntered:
		return "amount_entered"
	case StateResult:
		return "result"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Session holds the inputs of one calculator form. Every input change drops
// the previous result or error. A Session is not safe for concurrent use.
type Session struct {
	catalog  []model.Service
	service  string
	currency model.Currency
	amount   string

	result *model.CalculationResult
	err    error
}

func NewSession(catalog []model.Service) *Session {
	return &Session{catalog: model.CloneServices(catalog)}
}

// SetCatalog swaps in a new catalog snapshot and clears any outcome.
func (s *Session) SetCatalog(catalog []model.Service) {
	s.catalog = model.CloneServices(catalog)
	s.clear()
}

func (s *Session) Catalog() []model.Service {
	return s.catalog
}

// SelectService rejects names absent from the catalog and keeps the current
// selection in that case.
func (s *Session) SelectService(name string) error {
	if _, err := SelectService(s.catalog, name); err != nil {
		return ErrInvalidServiceSelected
	}
	s.service = name
	s.clear()
	return nil
}

func (s *Session) SelectCurrency(currency model.Currency) {
	s.currency = currency
	s.clear()
}

func (s *Session) EnterAmount(amount string) {
	s.amount = amount
	s.clear()
}

// Calculate computes the NGN equivalent of the current inputs.
func (s *Session) Calculate() (*model.CalculationResult, error) {
	result, err := ComputeEquivalent(s.catalog, model.CalculationRequest{
		Service:  s.service,
		Currency: s.currency,
		Amount:   s.amount,
	})
	s.result, s.err = result, err
	return result, err
}

// Rate is the live preview rate for the current service and currency.
func (s *Session) Rate() (float64, error) {
	service, err := SelectService(s.catalog, s.service)
	if err != nil {
		return 0, err
	}
	return ResolveRate(service, s.currency)
}

func (s *Session) State() State {
	switch {
	case s.result != nil:
		return StateResult
	case s.err != nil:
		return StateError
	case s.amount != "":
		return StateAmountEntered
	case s.currency != "":
		return StateCurrencySelected
	case s.service != "":
		return StateServiceSelected
	}
	return StateIdle
}

func (s *Session) Result() *model.CalculationResult { return s.result }

func (s *Session) Err() error { return s.err }

func (s *Session) Service() string { return s.service }

func (s *Session) Currency() model.Currency { return s.currency }

func (s *Session) Amount() string { return s.amount }

func (s *Session) clear() {
	s.result = nil
	s.err = nil
}
