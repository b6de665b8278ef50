package rf

import "errors"

var (
	// ErrFrequencyMismatch is returned when two networks that must share a
	// frequency axis disagree in length or values.
	ErrFrequencyMismatch = errors.New("frequency axes do not match")

	// ErrPortCount is returned when a network has the wrong number of ports
	// for the requested operation.
	ErrPortCount = errors.New("wrong number of ports")

	ErrEmptyFrequency     = errors.New("frequency axis is empty")
	ErrFrequencyNotSorted = errors.New("frequency axis is not strictly increasing")
)
