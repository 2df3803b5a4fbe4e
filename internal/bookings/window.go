package bookings

import "time"

// ConflictWindow: dua booking CONFIRMED di restaurant yang sama tidak boleh
// berjarak <= 2 jam.
const ConflictWindow = 2 * time.Hour

// Window mengembalikan batas inklusif [t-2h, t+2h].
func Window(t time.Time) (start, end time.Time) {
	return t.Add(-ConflictWindow), t.Add(ConflictWindow)
}

// InWindow: true jika candidate jatuh di dalam window subject (inklusif di
// tepat 2 jam, eksklusif sedetik di luarnya).
func InWindow(candidate, subject time.Time) bool {
	start, end := Window(subject)
	return !candidate.Before(start) && !candidate.After(end)
}
