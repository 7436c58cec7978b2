// README: Record store backed by PostgreSQL.
package records

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

func (s *Store) UpsertGrade(ctx context.Context, g *GradingRecord) error {
	var id string
	err := s.db.QueryRow(ctx, `
		INSERT INTO grading_records (
			id, booking_id, asset_id, grade, resale_value_per_unit, condition, notes, graded_at, graded_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (booking_id, asset_id) DO UPDATE
		SET grade = EXCLUDED.grade,
			resale_value_per_unit = EXCLUDED.resale_value_per_unit,
			condition = EXCLUDED.condition,
			notes = EXCLUDED.notes,
			graded_at = EXCLUDED.graded_at,
			graded_by = EXCLUDED.graded_by
		RETURNING id`,
		string(g.ID), string(g.BookingID), g.AssetID, string(g.Grade), g.ResaleValuePerUnit,
		g.Condition, g.Notes, g.GradedAt, g.GradedBy,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("upserting grading record: %w", err)
	}
	g.ID = types.ID(id)
	return nil
}

func (s *Store) ListGrades(ctx context.Context, bookingID types.ID) ([]GradingRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, booking_id, asset_id, grade, resale_value_per_unit, condition, notes, graded_at, graded_by
		FROM grading_records
		WHERE booking_id = $1
		ORDER BY asset_id`, string(bookingID),
	)
	if err != nil {
		return nil, fmt.Errorf("listing grading records: %w", err)
	}
	defer rows.Close()

	var out []GradingRecord
	for rows.Next() {
		var g GradingRecord
		if err := rows.Scan(&g.ID, &g.BookingID, &g.AssetID, &g.Grade, &g.ResaleValuePerUnit,
			&g.Condition, &g.Notes, &g.GradedAt, &g.GradedBy); err != nil {
			return nil, fmt.Errorf("scanning grading record: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

const selectSanitisationColumns = `
	id, booking_id, asset_id, method, method_details, certificate_id, certificate_url,
	verified, verified_at, verified_by, notes, performed_at, performed_by`

func (s *Store) AddSanitisation(ctx context.Context, r *SanitisationRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO sanitisation_records (`+selectSanitisationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		string(r.ID), string(r.BookingID), r.AssetID, string(r.Method), r.MethodDetails,
		r.CertificateID, r.CertificateURL, r.Verified, r.VerifiedAt, r.VerifiedBy,
		r.Notes, r.Timestamp, r.PerformedBy,
	)
	if err != nil {
		return fmt.Errorf("inserting sanitisation record: %w", err)
	}
	return nil
}

func (s *Store) GetSanitisation(ctx context.Context, id types.ID) (*SanitisationRecord, error) {
	row := s.db.QueryRow(ctx, `SELECT `+selectSanitisationColumns+` FROM sanitisation_records WHERE id = $1`, string(id))
	r, err := scanSanitisation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSanitisationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting sanitisation record: %w", err)
	}
	return r, nil
}

func (s *Store) UpdateSanitisation(ctx context.Context, r *SanitisationRecord) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE sanitisation_records
		SET verified = $1, verified_at = $2, verified_by = $3
		WHERE id = $4`,
		r.Verified, r.VerifiedAt, r.VerifiedBy, string(r.ID),
	)
	if err != nil {
		return fmt.Errorf("updating sanitisation record: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrSanitisationNotFound
	}
	return nil
}

func (s *Store) ListSanitisations(ctx context.Context, bookingID types.ID) ([]SanitisationRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+selectSanitisationColumns+`
		FROM sanitisation_records
		WHERE booking_id = $1
		ORDER BY performed_at, id`, string(bookingID),
	)
	if err != nil {
		return nil, fmt.Errorf("listing sanitisation records: %w", err)
	}
	defer rows.Close()

	var out []SanitisationRecord
	for rows.Next() {
		r, err := scanSanitisation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sanitisation record: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanSanitisation(row pgx.Row) (*SanitisationRecord, error) {
	var r SanitisationRecord
	err := row.Scan(
		&r.ID, &r.BookingID, &r.AssetID, &r.Method, &r.MethodDetails, &r.CertificateID, &r.CertificateURL,
		&r.Verified, &r.VerifiedAt, &r.VerifiedBy, &r.Notes, &r.Timestamp, &r.PerformedBy,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
