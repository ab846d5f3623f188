package decay

import "math"

// RatioForStoppingTime returns the decay ratio r for which a coast launched at
// v0 with speed floor vmin stops after desired seconds. Pass the largest
// expected launch speed to bound the duration of every coast.
//
// It returns NaN unless desired and v0 are positive and vmin lies in (0, 1);
// with vmin >= 1 the stopping time is never positive.
func RatioForStoppingTime(desired, v0, vmin float64) float64 {
	if !(desired > 0) || !(v0 > 0) || !(vmin > 0 && vmin < 1) {
		return math.NaN()
	}
	return math.Exp(math.Log(vmin) / (v0 * desired))
}
