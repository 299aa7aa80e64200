package booking

import "fmt"

// InputValidationError reports a user input that does not satisfy the
// transaction-type input declarations. It is recovered at the caller
// boundary and never aborts a schedule.
type InputValidationError struct {
	InputName string
	Reason    string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("input %q: %s", e.InputName, e.Reason)
}

// BookingFailedError aborts the whole complex transaction: no base
// transaction and no instrument mutation of a failed booking persists.
type BookingFailedError struct {
	ActionIndex int
	Text        string
	Err         error
}

func (e *BookingFailedError) Error() string {
	return fmt.Sprintf("booking failed at action %d: %s", e.ActionIndex, e.Text)
}

func (e *BookingFailedError) Unwrap() error { return e.Err }
