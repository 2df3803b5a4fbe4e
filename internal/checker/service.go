package checker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-restaurant-bookings.git/internal/bookings"
	kafkax "github.com/ariefcatur/go-restaurant-bookings.git/internal/kafka"
	"github.com/ariefcatur/go-restaurant-bookings.git/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Result memisahkan keputusan state machine dari policy acknowledgment
// transport: loop yang memutuskan commit offset, bukan catch-and-log di sini.
type Result int

const (
	ResultOK    Result = iota
	ResultSkip         // permanen: not found, malformed, atau sudah diproses
	ResultRetry        // transient store failure; jangan commit offset
)

// Store adalah kontrak booking store yang dipakai state machine. Dipenuhi
// oleh *bookings.Repo; test memakai double in-memory.
type Store interface {
	Get(ctx context.Context, id string) (bookings.Booking, error)
	ClaimForCheck(ctx context.Context, id string) (bool, error)
	ReleaseClaim(ctx context.Context, id string) error
	Decide(ctx context.Context, id, restaurantName string, datetime time.Time) (bookings.Status, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Store          Store
	Redis          *redis.Client // optional; dedup & status cache best-effort
	ProducerOK     Publisher     // publish booking.confirmed
	ProducerReject Publisher     // publish booking.rejected
	Log            *zap.Logger
	ServiceName    string
}

// HandleBookingRequested: dipasang sebagai handler consumer.
func (s *Service) HandleBookingRequested(ctx context.Context, m kafkago.Message) kafkax.Disposition {
	var env bookings.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.Error("malformed envelope, skipping", zap.Error(err), zap.Int64("offset", m.Offset))
		return kafkax.Ack
	}
	if env.EventType != bookings.EventBookingRequested {
		return kafkax.Ack
	} // ignore

	// dedup via Redis (pakai event_id); DB tetap jadi kebenaran, ini cuma
	// short-circuit murah untuk redelivery yang sudah tuntas.
	if s.Redis != nil && env.EventID != "" {
		dkey := fmt.Sprintf(redisx.KeyDedup, "checker", env.EventID)
		if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
			return kafkax.Ack
		}
	}

	p, err := kafkax.UnwrapPayload[bookings.BookingRequestedPayload](env.Payload)
	if err != nil {
		s.Log.Error("malformed payload, skipping", zap.Error(err), zap.String("event_id", env.EventID))
		return kafkax.Ack
	}
	if p.BookingID == "" {
		s.Log.Error("payload missing booking_id, skipping", zap.String("event_id", env.EventID))
		return kafkax.Ack
	}
	// conflict check butuh restaurant + datetime; tanpa keduanya claim akan
	// memutuskan lewat window jam nol, jadi payload begini dianggap malformed.
	if p.RestaurantName == "" || p.Datetime.IsZero() {
		s.Log.Error("payload missing restaurant_name or datetime, skipping",
			zap.String("event_id", env.EventID),
			zap.String("booking_id", p.BookingID),
		)
		return kafkax.Ack
	}

	ref := bookings.BookingRef{
		ID:             p.BookingID,
		RestaurantName: p.RestaurantName,
		Datetime:       p.Datetime,
	}
	if s.Process(ctx, ref) == ResultRetry {
		return kafkax.Retry
	}

	if s.Redis != nil && env.EventID != "" {
		dkey := fmt.Sprintf(redisx.KeyDedup, "checker", env.EventID)
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}
	return kafkax.Ack
}

// Process menjalankan lifecycle satu booking:
// CREATED -> CHECKING_AVAILABILITY -> {CONFIRMED | REJECTED}.
// Claim-nya conditional update atomik, jadi redelivery (atau instance lain)
// yang kalah cepat mendarat di jalur skip, bukan mengulang conflict check.
func (s *Service) Process(ctx context.Context, ref bookings.BookingRef) Result {
	claimed, err := s.Store.ClaimForCheck(ctx, ref.ID)
	if err != nil {
		s.Log.Error("claim booking", zap.String("booking_id", ref.ID), zap.Error(err))
		return ResultRetry
	}
	if !claimed {
		b, err := s.Store.Get(ctx, ref.ID)
		if errors.Is(err, bookings.ErrNotFound) {
			s.Log.Error("booking not found, skipping", zap.String("booking_id", ref.ID))
			return ResultSkip
		}
		if err != nil {
			s.Log.Error("get booking", zap.String("booking_id", ref.ID), zap.Error(err))
			return ResultRetry
		}
		// sudah lewat CREATED oleh delivery ini atau sebelumnya
		s.Log.Info("booking already processed, skipping",
			zap.String("booking_id", ref.ID),
			zap.String("status", string(b.Status)),
		)
		return ResultSkip
	}

	final, err := s.Store.Decide(ctx, ref.ID, ref.RestaurantName, ref.Datetime)
	if err != nil {
		s.Log.Error("decide booking", zap.String("booking_id", ref.ID), zap.Error(err))
		// kembalikan claim supaya redelivery bisa mengulang dari CREATED;
		// kalau ini pun gagal, booking tertinggal CHECKING_AVAILABILITY.
		if rerr := s.Store.ReleaseClaim(ctx, ref.ID); rerr != nil {
			s.Log.Error("release claim", zap.String("booking_id", ref.ID), zap.Error(rerr))
		}
		return ResultRetry
	}

	s.cacheStatus(ctx, ref.ID, final)
	s.publishOutcome(ref, final)
	s.Log.Info("booking decided",
		zap.String("booking_id", ref.ID),
		zap.String("restaurant", ref.RestaurantName),
		zap.String("status", string(final)),
	)
	return ResultOK
}

func (s *Service) cacheStatus(ctx context.Context, bookingID string, st bookings.Status) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyBookingStatus, bookingID)
	body, _ := json.Marshal(map[string]string{"status": string(st)})
	_ = s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func (s *Service) publishOutcome(ref bookings.BookingRef, final bookings.Status) {
	var (
		prod      Publisher
		eventType string
		payload   []byte
	)
	switch final {
	case bookings.StatusConfirmed:
		prod, eventType = s.ProducerOK, bookings.EventBookingConfirmed
		payload = kafkax.MustMarshal(bookings.BookingConfirmedPayload{
			BookingID: ref.ID, RestaurantName: ref.RestaurantName, Datetime: ref.Datetime,
		})
	case bookings.StatusRejected:
		prod, eventType = s.ProducerReject, bookings.EventBookingRejected
		payload = kafkax.MustMarshal(bookings.BookingRejectedPayload{
			BookingID: ref.ID, RestaurantName: ref.RestaurantName, Datetime: ref.Datetime,
			Reason: "TIME_CONFLICT",
		})
	default:
		return
	}
	if prod == nil {
		return
	}

	ev := bookings.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: ref.ID,
		Payload:       payload,
	}
	prod.Publish(bookings.PartitionKey(ref.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
