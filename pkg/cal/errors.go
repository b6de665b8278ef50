package cal

import "errors"

var (
	// ErrNotRun is returned when a calibration is applied before Run has
	// completed successfully.
	ErrNotRun = errors.New("calibration has not been run")

	// ErrInsufficientStandards is returned when fewer standards are supplied
	// than the error model needs.
	ErrInsufficientStandards = errors.New("not enough calibration standards")

	// ErrInsufficientThrus is returned when a two-port calibration is given
	// no thru standard.
	ErrInsufficientThrus = errors.New("at least one thru standard is required")

	// ErrSingularStandardSet is returned when the standard set is
	// rank-deficient at one or more frequencies, e.g. duplicate standards.
	ErrSingularStandardSet = errors.New("standard set is singular")

	// ErrStandardCount is returned when the ideal and measured standard
	// lists have different lengths.
	ErrStandardCount = errors.New("ideal and measured standard counts differ")
)
