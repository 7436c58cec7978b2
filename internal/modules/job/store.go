// README: Job store backed by PostgreSQL.
package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"reclaim/internal/infra"
	"reclaim/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db infra.DBTX
}

func NewStore(db infra.DBTX) *Store {
	return &Store{db: db}
}

const selectJobColumns = `
	id, booking_id, booking_number, status, version,
	driver_id, driver_name, vehicle_reg, vehicle_type, vehicle_fuel_type, driver_phone,
	co2e_saved, travel_emissions, buyback_value, charity_percent, round_trip_km,
	created_at, updated_at, completed_at`

func (s *Store) Create(ctx context.Context, j *Job) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO jobs (
			id, booking_id, booking_number, status, version,
			driver_id, driver_name, vehicle_reg, vehicle_type, vehicle_fuel_type, driver_phone,
			co2e_saved, travel_emissions, buyback_value, charity_percent, round_trip_km,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16,
			$17, $18
		)`,
		string(j.ID), string(j.BookingID), j.BookingNumber, string(j.Status), j.Version,
		string(j.Driver.ID), j.Driver.Name, j.Driver.VehicleReg, j.Driver.VehicleType, string(j.Driver.VehicleFuelType), j.Driver.Phone,
		j.CO2eSaved, j.TravelEmissions, j.BuybackValue, j.CharityPercent, j.RoundTripDistanceKm,
		j.CreatedAt, j.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: booking %s already has a job", ErrConflict, j.BookingID)
	}
	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}

	for i, a := range j.Assets {
		_, err := s.db.Exec(ctx, `
			INSERT INTO job_assets (job_id, position, category_id, category_name, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			string(j.ID), i, a.CategoryID, a.CategoryName, a.Quantity,
		)
		if err != nil {
			return fmt.Errorf("inserting job asset: %w", err)
		}
	}
	for _, ev := range j.Evidence {
		if err := s.AddEvidence(ctx, j.ID, ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Job, error) {
	return s.getOne(ctx, `SELECT `+selectJobColumns+` FROM jobs WHERE id = $1`, string(id))
}

func (s *Store) GetByBooking(ctx context.Context, bookingID types.ID) (*Job, error) {
	return s.getOne(ctx, `SELECT `+selectJobColumns+` FROM jobs WHERE booking_id = $1`, string(bookingID))
}

func (s *Store) getOne(ctx context.Context, query string, arg string) (*Job, error) {
	j, err := scanJob(s.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}
	if err := s.loadAssets(ctx, j); err != nil {
		return nil, err
	}
	if err := s.loadEvidence(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *Store) Update(ctx context.Context, j *Job) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE jobs
		SET status = $1,
			version = version + 1,
			updated_at = $2,
			completed_at = $3
		WHERE id = $4 AND version = $5`,
		string(j.Status), j.UpdatedAt, j.CompletedAt,
		string(j.ID), j.Version,
	)
	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrConflict
	}
	j.Version++
	return nil
}

func (s *Store) AddEvidence(ctx context.Context, jobID types.ID, ev Evidence) error {
	photos := ev.Photos
	if photos == nil {
		photos = []string{}
	}
	seals := ev.SealNumbers
	if seals == nil {
		seals = []string{}
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO job_evidence (job_id, status, photos, signature, seal_numbers, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(jobID), string(ev.Status), photos, ev.Signature, seals, ev.Notes, ev.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrEvidenceAlreadyExist, ev.Status)
	}
	if err != nil {
		return fmt.Errorf("inserting job evidence: %w", err)
	}
	return nil
}

func (s *Store) loadAssets(ctx context.Context, j *Job) error {
	rows, err := s.db.Query(ctx, `
		SELECT category_id, category_name, quantity
		FROM job_assets
		WHERE job_id = $1
		ORDER BY position`, string(j.ID),
	)
	if err != nil {
		return fmt.Errorf("loading job assets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.CategoryID, &a.CategoryName, &a.Quantity); err != nil {
			return fmt.Errorf("scanning job asset: %w", err)
		}
		j.Assets = append(j.Assets, a)
	}
	return rows.Err()
}

func (s *Store) loadEvidence(ctx context.Context, j *Job) error {
	rows, err := s.db.Query(ctx, `
		SELECT status, photos, signature, seal_numbers, notes, created_at
		FROM job_evidence
		WHERE job_id = $1
		ORDER BY created_at, id`, string(j.ID),
	)
	if err != nil {
		return fmt.Errorf("loading job evidence: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ev Evidence
		if err := rows.Scan(&ev.Status, &ev.Photos, &ev.Signature, &ev.SealNumbers, &ev.Notes, &ev.CreatedAt); err != nil {
			return fmt.Errorf("scanning job evidence: %w", err)
		}
		j.Evidence = append(j.Evidence, ev)
	}
	return rows.Err()
}

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.BookingID, &j.BookingNumber, &j.Status, &j.Version,
		&j.Driver.ID, &j.Driver.Name, &j.Driver.VehicleReg, &j.Driver.VehicleType, &j.Driver.VehicleFuelType, &j.Driver.Phone,
		&j.CO2eSaved, &j.TravelEmissions, &j.BuybackValue, &j.CharityPercent, &j.RoundTripDistanceKm,
		&j.CreatedAt, &j.UpdatedAt, &j.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
