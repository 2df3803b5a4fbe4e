package bookings

const (
	TopicBookingRequests  = "booking.requests"
	TopicBookingConfirmed = "booking.confirmed"
	TopicBookingRejected  = "booking.rejected"
)

// Partition key = booking_id; urutan antar restaurant tidak dijamin dan
// correctness tidak bergantung pada urutan delivery (lihat repo_conflict.go).
func PartitionKey(bookingID string) []byte { return []byte(bookingID) }
