package effort

import (
	"fmt"
	"math"
)

// FormatHours renders a duration for humans: minutes under an hour, one decimal under
// ten hours, whole hours above that.
func FormatHours(hours float64) string {
	if hours <= 0 || math.IsNaN(hours) {
		return "0 h"
	}
	if hours < 1 {
		return fmt.Sprintf("%d min", int(roundHalfUp(hours*60)))
	}
	if hours < 10 {
		return fmt.Sprintf("%.1f h", roundHalfUp(hours*10)/10)
	}
	return fmt.Sprintf("%.0f h", roundHalfUp(hours))
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return int(roundHalfUp(part / whole * 100))
}
