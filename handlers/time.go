package handlers

import "time"

// location is the mine-site timezone. The 18:00 cutoff, the after-6pm
// flag and calendar-day comparisons are all evaluated in it, not in the
// server's zone.
var location = time.UTC

func InitTimezone(loc *time.Location) {
	if loc != nil {
		location = loc
	}
}

func localNow() time.Time {
	return time.Now().In(location)
}
