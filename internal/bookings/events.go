package bookings

import (
	"encoding/json"
	"time"
)

const (
	EventBookingRequested = "BookingRequested"
	EventBookingConfirmed = "BookingConfirmed"
	EventBookingRejected  = "BookingRejected"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "booking-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya booking_id
	Payload       json.RawMessage `json:"payload"`                  // payload spesifik
}

// ---- Payload tipe per event ----

type BookingRequestedPayload struct {
	BookingID      string    `json:"booking_id"`
	RestaurantName string    `json:"restaurant_name"`
	Datetime       time.Time `json:"datetime"`
	Guests         int       `json:"guests"`
}

type BookingConfirmedPayload struct {
	BookingID      string    `json:"booking_id"`
	RestaurantName string    `json:"restaurant_name"`
	Datetime       time.Time `json:"datetime"`
}

type BookingRejectedPayload struct {
	BookingID      string    `json:"booking_id"`
	RestaurantName string    `json:"restaurant_name"`
	Datetime       time.Time `json:"datetime"`
	Reason         string    `json:"reason"` // e.g., TIME_CONFLICT
}
