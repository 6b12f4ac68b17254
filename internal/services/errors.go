package services

import "fmt"

// PaymentGatewayError wraps a non-2xx answer from a payment processor.
// No retry is attempted; the processor's own message is carried so the
// caller can log and surface it.
type PaymentGatewayError struct {
	Gateway string
	Message string
	Err     error
}

func (e *PaymentGatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s gateway error: %s", e.Gateway, e.Message)
	}
	return fmt.Sprintf("%s gateway error: %v", e.Gateway, e.Err)
}

func (e *PaymentGatewayError) Unwrap() error {
	return e.Err
}

func gatewayErr(gateway string, err error) *PaymentGatewayError {
	return &PaymentGatewayError{Gateway: gateway, Message: err.Error(), Err: err}
}
