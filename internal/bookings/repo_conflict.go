package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrNotClaimed = errors.New("booking is not in CHECKING_AVAILABILITY")

// Decide menjalankan conflict check dan menulis status terminal dalam satu
// transaksi. pg_advisory_xact_lock per restaurant men-serialize keputusan
// untuk restaurant yang sama lintas instance: dua booking overlapping yang
// diproses bersamaan tidak mungkin dua-duanya membaca "window kosong".
// Transaksi all-or-nothing; kalau gagal, booking tetap CHECKING_AVAILABILITY
// dan caller yang memutuskan kompensasinya.
func (r *Repo) Decide(ctx context.Context, id, restaurantName string, datetime time.Time) (Status, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, restaurantName); err != nil {
		return "", err
	}

	// Lock row milik sendiri dan pastikan claim masih berlaku.
	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if Status(current) != StatusCheckingAvailability {
		return "", fmt.Errorf("%w: status=%s", ErrNotClaimed, current)
	}

	conflict, err := hasConflict(ctx, tx, restaurantName, datetime, id)
	if err != nil {
		return "", err
	}

	final := StatusConfirmed
	if conflict {
		final = StatusRejected
	}
	if _, err := tx.Exec(ctx, `
		UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1
	`, id, string(final)); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return final, nil
}

// hasConflict: ada booking CONFIRMED lain di restaurant yang sama dalam
// window inklusif [datetime-2h, datetime+2h]? Jalan di dalam transaksi
// caller supaya pembacaan tunduk ke advisory lock di atas.
func hasConflict(ctx context.Context, tx pgx.Tx, restaurantName string, datetime time.Time, excludeID string) (bool, error) {
	start, end := Window(datetime)
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE restaurant_name=$1
			  AND status=$2
			  AND datetime BETWEEN $3 AND $4
			  AND id <> $5
		)
	`, restaurantName, string(StatusConfirmed), start, end, excludeID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
