package calculator

import "errors"

// Kind classifies why a calculation could not be performed.
type Kind string

const (
	KindMissingService     Kind = "missing_service"
	KindInvalidAmount      Kind = "invalid_amount"
	KindServiceNotFound    Kind = "service_not_found"
	KindBelowMinimum       Kind = "below_minimum"
	KindRateUnavailable    Kind = "rate_unavailable"
	KindInvalidCalculation Kind = "invalid_calculation"
)

// ValidationError carries the message shown next to the calculator form.
// Two errors with the same Kind match under errors.Is.
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingService     = &ValidationError{Kind: KindMissingService, Message: "Please select a service."}
	ErrInvalidAmount      = &ValidationError{Kind: KindInvalidAmount, Message: "Please enter a valid amount."}
	ErrServiceNotFound    = &ValidationError{Kind: KindServiceNotFound, Message: "Service not found."}
	ErrBelowMinimum       = &ValidationError{Kind: KindBelowMinimum, Message: "Minimum for Website Recharge is $5."}
	ErrRateUnavailable    = &ValidationError{Kind: KindRateUnavailable, Message: "Exchange rate not available for this currency."}
	ErrInvalidCalculation = &ValidationError{Kind: KindInvalidCalculation, Message: "Invalid calculation."}

	// ErrInvalidServiceSelected is the selection-time variant of ErrServiceNotFound.
	ErrInvalidServiceSelected = &ValidationError{Kind: KindServiceNotFound, Message: "Invalid service selected!"}
)

// KindOf reports the Kind of a calculator error anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}

// Message returns the user-facing text for err, or "" if err is not a
// calculator error.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return ""
}
