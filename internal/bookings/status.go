package bookings

type Status string

const (
	StatusCreated              Status = "CREATED"
	StatusCheckingAvailability Status = "CHECKING_AVAILABILITY"
	StatusConfirmed            Status = "CONFIRMED"
	StatusRejected             Status = "REJECTED"
)

var validNext = map[Status]map[Status]bool{
	StatusCreated:              {StatusCheckingAvailability: true},
	StatusCheckingAvailability: {StatusConfirmed: true, StatusRejected: true},
	StatusConfirmed:            {},
	StatusRejected:             {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal: CONFIRMED / REJECTED, tidak ada transisi keluar lagi.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected
}
