package bookings

import "time"

type Booking struct {
	ID             string
	RestaurantName string
	Datetime       time.Time
	Guests         int
	Status         Status // lihat status.go
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BookingRef: field minimum yang dibutuhkan worker dari sebuah event.
type BookingRef struct {
	ID             string
	RestaurantName string
	Datetime       time.Time
}
