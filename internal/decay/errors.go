package decay

import (
	"errors"
	"math"
)

// Construction errors for an [Environment].
var (
	// ErrDecayRatio indicates a decay ratio outside the open interval (0, 1).
	ErrDecayRatio = errors.New("decay: ratio must be in (0, 1)")

	// ErrMinSpeed indicates a speed floor that is not strictly positive.
	ErrMinSpeed = errors.New("decay: minimum speed must be positive")
)

// IsDomainError reports whether x is the NaN sentinel returned by
// out-of-domain queries.
func IsDomainError(x float64) bool {
	return math.IsNaN(x)
}
