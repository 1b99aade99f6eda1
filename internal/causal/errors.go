package causal

import "errors"

var (
	// ErrInsufficientData marks a fit skipped by a minimum sample guard.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDegenerate marks a fit whose numerics cannot support an estimate,
	// such as a residualized treatment with no variance.
	ErrDegenerate = errors.New("degenerate estimate")
)

// IsSkip reports whether err is an expected "not enough signal yet" outcome
// rather than a failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrDegenerate)
}
