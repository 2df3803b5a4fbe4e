package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-restaurant-bookings.git/internal/bookings"
	kafkax "github.com/ariefcatur/go-restaurant-bookings.git/internal/kafka"
	"github.com/ariefcatur/go-restaurant-bookings.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

const maxGuests = 15

// BookingStore: dipenuhi *bookings.Repo; test pakai mock.
type BookingStore interface {
	Create(ctx context.Context, restaurantName string, datetime time.Time, guests int) (bookings.Booking, error)
	Get(ctx context.Context, id string) (bookings.Booking, error)
	GetStatus(ctx context.Context, id string) (bookings.Status, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type BookingsHandler struct {
	Store    BookingStore
	Producer Publisher
	Redis    *redis.Client // optional cache
	Service  string
}

type CreateBookingReq struct {
	RestaurantName string `json:"restaurant_name"`
	Datetime       string `json:"datetime"` // RFC3339
	Guests         int    `json:"guests"`
}

type BookingResp struct {
	ID             string    `json:"id"`
	RestaurantName string    `json:"restaurant_name"`
	Datetime       time.Time `json:"datetime"`
	Guests         int       `json:"guests"`
	Status         string    `json:"status"`
}

func (h *BookingsHandler) Register(r *chi.Mux) {
	r.Post("/bookings", h.createBooking)
	r.Get("/bookings/{id}", h.getBooking)
	r.Get("/bookings/{id}/status", h.getBookingStatus)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// validateBookingRequest mengembalikan daftar pelanggaran; kosong berarti valid.
func validateBookingRequest(req CreateBookingReq, now time.Time) (time.Time, []string) {
	var errs []string

	if req.RestaurantName == "" {
		errs = append(errs, "restaurant_name is required and must be a non-empty string")
	}

	at, err := time.Parse(time.RFC3339, req.Datetime)
	if err != nil {
		errs = append(errs, "valid datetime is required")
	} else if !at.After(now) {
		errs = append(errs, "booking datetime must be in the future")
	}

	if req.Guests < 1 || req.Guests > maxGuests {
		errs = append(errs, fmt.Sprintf("guests must be an integer between 1 and %d", maxGuests))
	}

	return at, errs
}

func (h *BookingsHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	at, verrs := validateBookingRequest(req, time.Now())
	if len(verrs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "details": verrs})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Store.Create(ctx, req.RestaurantName, at.UTC(), req.Guests)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error while creating booking"})
		return
	}

	// Cache status (CREATED) agar GET cepat
	if h.Redis != nil {
		statusKey := fmt.Sprintf(redisx.KeyBookingStatus, b.ID)
		_ = h.Redis.Set(ctx, statusKey, `{"status":"CREATED"}`, redisx.TTLStatusCache).Err()
	}

	// Publish event (envelope v1)
	ev := bookings.Envelope{
		EventID:       uuid.NewString(),
		EventType:     bookings.EventBookingRequested,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: b.ID,
	}
	ev.Payload = kafkax.MustMarshal(bookings.BookingRequestedPayload{
		BookingID:      b.ID,
		RestaurantName: b.RestaurantName,
		Datetime:       b.Datetime,
		Guests:         b.Guests,
	})
	h.Producer.Publish(bookings.PartitionKey(b.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(bookings.EventBookingRequested)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusCreated, BookingResp{
		ID:             b.ID,
		RestaurantName: b.RestaurantName,
		Datetime:       b.Datetime,
		Guests:         b.Guests,
		Status:         string(b.Status),
	})
}

func (h *BookingsHandler) getBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	b, err := h.Store.Get(ctx, bookingID)
	if errors.Is(err, bookings.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found booking"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error while fetching booking"})
		return
	}

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyBookingStatus, b.ID)
		body, _ := json.Marshal(map[string]string{"status": string(b.Status)})
		_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, BookingResp{
		ID:             b.ID,
		RestaurantName: b.RestaurantName,
		Datetime:       b.Datetime,
		Guests:         b.Guests,
		Status:         string(b.Status),
	})
}

func (h *BookingsHandler) getBookingStatus(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	key := fmt.Sprintf(redisx.KeyBookingStatus, bookingID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	// 2) fallback DB; cukup kolom status, bukan seluruh row
	st, err := h.Store.GetStatus(ctx, bookingID)
	if errors.Is(err, bookings.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found booking"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error while fetching booking"})
		return
	}
	body, _ := json.Marshal(map[string]string{"status": string(st)})
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
