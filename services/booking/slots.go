package booking

import (
	"time"

	"pulsebot/models"
)

// FirstFit returns the earliest candidate whose local hour falls inside the
// requested window. Candidates are assumed chronological, so first match is
// also soonest, which is what a customer asking for "morning" expects. The
// second return is false when nothing fits (including an empty candidate
// list: a fully booked day looks the same as a no-match at this layer).
func FirstFit(candidates []time.Time, window models.Window) (time.Time, bool) {
	for _, slot := range candidates {
		if window.Contains(slot.Hour()) {
			return slot, true
		}
	}
	return time.Time{}, false
}
