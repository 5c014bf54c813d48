package submission

import "errors"

var (
	// ErrSubmitDisabled is returned when the form verdict blocks submission.
	ErrSubmitDisabled = errors.New("submission disabled by form state")

	// ErrSubmitInFlight is returned while another submission is pending.
	ErrSubmitInFlight = errors.New("submission already in flight")

	// ErrClosed is returned after Close, including for a submission that
	// was pending when Close was called.
	ErrClosed = errors.New("submission simulator closed")

	// ErrInvalidOrder is returned for an order without a pair or a positive rate.
	ErrInvalidOrder = errors.New("invalid order")
)
