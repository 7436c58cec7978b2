// README: Booking store backed by PostgreSQL.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"reclaim/internal/infra"
	"reclaim/internal/types"
)

type Store struct {
	db infra.DBTX
}

func NewStore(db infra.DBTX) *Store {
	return &Store{db: db}
}

const selectBookingColumns = `
	id, number, status, version,
	site_name, site_address, site_postcode, site_contact_name, site_contact_phone,
	scheduled_date, charity_percent,
	estimated_co2e, estimated_buyback, round_trip_km, round_trip_miles,
	driver_id, driver_name, job_id,
	created_at, scheduled_at, collected_at, sanitised_at, graded_at, completed_at, cancelled_at,
	cancellation_notes`

func (s *Store) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, number, status, version,
			site_name, site_address, site_postcode, site_contact_name, site_contact_phone,
			scheduled_date, charity_percent,
			estimated_co2e, estimated_buyback, round_trip_km, round_trip_miles,
			created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11,
			$12, $13, $14, $15,
			$16
		)`,
		string(b.ID), b.Number, string(b.Status), b.Version,
		b.Site.Name, b.Site.Address, b.Site.Postcode, b.Site.ContactName, b.Site.ContactPhone,
		b.ScheduledDate, b.CharityPercent,
		b.EstimatedCO2e, b.EstimatedBuyback, b.RoundTripDistanceKm, b.RoundTripDistanceMiles,
		b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}

	for i, a := range b.Assets {
		_, err := s.db.Exec(ctx, `
			INSERT INTO booking_assets (booking_id, position, category_id, category_name, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			string(b.ID), i, a.CategoryID, a.CategoryName, a.Quantity,
		)
		if err != nil {
			return fmt.Errorf("inserting booking asset: %w", err)
		}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT `+selectBookingColumns+` FROM bookings WHERE id = $1`, string(id))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting booking: %w", err)
	}
	if err := s.loadAssets(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) Update(ctx context.Context, b *Booking) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
			version = version + 1,
			driver_id = $2,
			driver_name = $3,
			job_id = $4,
			scheduled_at = $5,
			collected_at = $6,
			sanitised_at = $7,
			graded_at = $8,
			completed_at = $9,
			cancelled_at = $10,
			cancellation_notes = $11
		WHERE id = $12 AND version = $13`,
		string(b.Status),
		b.DriverID, b.DriverName, b.JobID,
		b.ScheduledAt, b.CollectedAt, b.SanitisedAt, b.GradedAt, b.CompletedAt, b.CancelledAt,
		b.CancellationNotes,
		string(b.ID), b.Version,
	)
	if err != nil {
		return fmt.Errorf("updating booking: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrConflict
	}
	b.Version++
	return nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	query := `SELECT ` + selectBookingColumns + ` FROM bookings`
	var args []any
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}

	for _, b := range out {
		if err := s.loadAssets(ctx, b); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadAssets(ctx context.Context, b *Booking) error {
	rows, err := s.db.Query(ctx, `
		SELECT category_id, category_name, quantity
		FROM booking_assets
		WHERE booking_id = $1
		ORDER BY position`, string(b.ID),
	)
	if err != nil {
		return fmt.Errorf("loading booking assets: %w", err)
	}
	defer rows.Close()

	b.Assets = b.Assets[:0]
	for rows.Next() {
		var a AssetLine
		if err := rows.Scan(&a.CategoryID, &a.CategoryName, &a.Quantity); err != nil {
			return fmt.Errorf("scanning booking asset: %w", err)
		}
		b.Assets = append(b.Assets, a)
	}
	return rows.Err()
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.Number, &b.Status, &b.Version,
		&b.Site.Name, &b.Site.Address, &b.Site.Postcode, &b.Site.ContactName, &b.Site.ContactPhone,
		&b.ScheduledDate, &b.CharityPercent,
		&b.EstimatedCO2e, &b.EstimatedBuyback, &b.RoundTripDistanceKm, &b.RoundTripDistanceMiles,
		&b.DriverID, &b.DriverName, &b.JobID,
		&b.CreatedAt, &b.ScheduledAt, &b.CollectedAt, &b.SanitisedAt, &b.GradedAt, &b.CompletedAt, &b.CancelledAt,
		&b.CancellationNotes,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
