package panelnet

import "strconv"

// Error is a wrapper for specific types of errors for which there is no additional information
// necessary. These errors are defined as global variables.
type Error struct{ string }

func (err Error) Error() string {
	return err.string
}

// These are the global errors that may be returned or panicked.
var (
	ErrNetNotFinalized  = Error{"Network has not been finalized"}
	ErrNetFinalized     = Error{"Network has already been finalized"}
	ErrNoHP             = Error{"HyperParameter does not exist"}
	ErrNoData           = Error{"DataSupplier has no data"}
	ErrInvalidBatchSize = Error{"Batch size must be ≥ 1"}
	ErrInvalidEpochs    = Error{"Number of epochs must be ≥ 1"}
	ErrUnknownOperator  = Error{"Operator is neither a Layer nor Elementwise"}
	ErrNonFiniteCost    = Error{"Cost is not finite"}
)

// NilArgError documents errors resulting from certain arguments provided to a function being nil.
type NilArgError struct{ string }

func (err NilArgError) Error() string {
	return err.string + " is nil"
}

// SizeMismatchError results from the number of values provided not matching the number the
// Network expects.
type SizeMismatchError struct {
	Expected, Given int
	Of              string
}

func (err SizeMismatchError) Error() string {
	return "Size of " + err.Of + " does not match: expected " + strconv.Itoa(err.Expected) +
		", given " + strconv.Itoa(err.Given)
}
