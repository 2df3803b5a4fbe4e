package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var ErrNotFound = errors.New("booking not found")

// Create menyimpan booking baru dengan status CREATED. Status selanjutnya
// hanya diubah oleh worker (lihat internal/checker).
func (r *Repo) Create(ctx context.Context, restaurantName string, datetime time.Time, guests int) (Booking, error) {
	b := Booking{
		ID:             uuid.NewString(),
		RestaurantName: restaurantName,
		Datetime:       datetime,
		Guests:         guests,
		Status:         StatusCreated,
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO bookings(id, restaurant_name, datetime, guests, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, b.ID, b.RestaurantName, b.Datetime, b.Guests, string(b.Status)).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return Booking{}, err
	}
	return b, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Booking, error) {
	var b Booking
	var s string
	err := r.DB.QueryRow(ctx, `
		SELECT id, restaurant_name, datetime, guests, status, created_at, updated_at
		FROM bookings WHERE id=$1
	`, id).Scan(&b.ID, &b.RestaurantName, &b.Datetime, &b.Guests, &s, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	if err != nil {
		return Booking{}, err
	}
	b.Status = Status(s)
	return b, nil
}

func (r *Repo) GetStatus(ctx context.Context, id string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM bookings WHERE id=$1`, id).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

// ClaimForCheck: conditional update sebagai CAS. Dua delivery yang sama-sama
// lolos pembacaan status=CREATED tidak mungkin dua-duanya dapat affected=1,
// jadi claim bersifat mutually exclusive tanpa mutex aplikasi.
func (r *Repo) ClaimForCheck(ctx context.Context, id string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE bookings SET status=$2, updated_at=now()
		WHERE id=$1 AND status=$3
	`, id, string(StatusCheckingAvailability), string(StatusCreated))
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// ReleaseClaim mengembalikan claim ke CREATED saat transaksi keputusan gagal,
// supaya redelivery berikutnya bisa mengulang claim+decide dari awal.
func (r *Repo) ReleaseClaim(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE bookings SET status=$2, updated_at=now()
		WHERE id=$1 AND status=$3
	`, id, string(StatusCreated), string(StatusCheckingAvailability))
	return err
}
