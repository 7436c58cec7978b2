// README: Postgres lifecycle store; each unit of work is one database transaction.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reclaim/internal/modules/booking"
	"reclaim/internal/modules/fleet"
	"reclaim/internal/modules/job"
	"reclaim/internal/modules/records"
	"reclaim/internal/types"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &postgresTx{
		tx:       tx,
		bookings: booking.NewStore(tx),
		jobs:     job.NewStore(tx),
		records:  records.NewStore(tx),
		drivers:  fleet.NewStore(tx),
	}, nil
}

type postgresTx struct {
	tx       pgx.Tx
	bookings *booking.Store
	jobs     *job.Store
	records  *records.Store
	drivers  *fleet.Store
}

func (t *postgresTx) Bookings() booking.Repository { return t.bookings }
func (t *postgresTx) Jobs() job.Repository         { return t.jobs }
func (t *postgresTx) Records() records.Repository  { return t.records }
func (t *postgresTx) Drivers() fleet.Repository    { return t.drivers }

func (t *postgresTx) AppendEvent(ctx context.Context, e *Event) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO lifecycle_events (
			booking_id, entity_type, entity_id, from_status, to_status, actor_type, actor_id, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		string(e.BookingID), string(e.EntityType), string(e.EntityID),
		e.FromStatus, e.ToStatus, e.ActorType, e.ActorID, e.Notes, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("appending lifecycle event: %w", err)
	}
	return nil
}

func (t *postgresTx) Events(ctx context.Context, bookingID types.ID) ([]Event, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, booking_id, entity_type, entity_id, from_status, to_status, actor_type, actor_id, notes, created_at
		FROM lifecycle_events
		WHERE booking_id = $1
		ORDER BY id`, string(bookingID),
	)
	if err != nil {
		return nil, fmt.Errorf("listing lifecycle events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.BookingID, &e.EntityType, &e.EntityID, &e.FromStatus, &e.ToStatus,
			&e.ActorType, &e.ActorID, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning lifecycle event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (t *postgresTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *postgresTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
