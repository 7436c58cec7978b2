// README: Read-only lifecycle queries.
package lifecycle

import (
	"context"

	"reclaim/internal/modules/booking"
	"reclaim/internal/modules/catalog"
	"reclaim/internal/modules/job"
	"reclaim/internal/modules/valuation"
	"reclaim/internal/types"
)

func (s *Service) GetBooking(ctx context.Context, id types.ID) (*booking.Booking, error) {
	var out *booking.Booking
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings().Get(ctx, id)
		out = b
		return err
	})
	return out, err
}

func (s *Service) ListBookings(ctx context.Context, filter booking.ListFilter) ([]*booking.Booking, error) {
	var out []*booking.Booking
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		list, err := tx.Bookings().List(ctx, filter)
		out = list
		return err
	})
	return out, err
}

func (s *Service) GetJob(ctx context.Context, id types.ID) (*job.Job, error) {
	var out *job.Job
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		j, err := tx.Jobs().Get(ctx, id)
		out = j
		return err
	})
	return out, err
}

func (s *Service) ListRecords(ctx context.Context, bookingID types.ID) (RecordSet, error) {
	var out RecordSet
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.Bookings().Get(ctx, bookingID); err != nil {
			return err
		}
		grades, err := tx.Records().ListGrades(ctx, bookingID)
		if err != nil {
			return err
		}
		sans, err := tx.Records().ListSanitisations(ctx, bookingID)
		if err != nil {
			return err
		}
		out = RecordSet{Grades: grades, Sanitisations: sans}
		return nil
	})
	return out, err
}

func (s *Service) GetCompletionStatus(ctx context.Context, bookingID types.ID) (CompletionStatus, error) {
	var out CompletionStatus
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings().Get(ctx, bookingID)
		if err != nil {
			return err
		}
		out, err = s.completion(ctx, tx, b)
		return err
	})
	return out, err
}

// EvaluateCompletionGate reports whether every asset line is graded and
// sanitised with all sanitisations verified.
func (s *Service) EvaluateCompletionGate(ctx context.Context, bookingID types.ID) (bool, error) {
	st, err := s.GetCompletionStatus(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return st.Satisfied, nil
}

// GetImpact summarises CO2e and resale value. Travel is counted once a
// driver, and so a vehicle fuel type, is known.
func (s *Service) GetImpact(ctx context.Context, bookingID types.ID) (valuation.Impact, error) {
	var out valuation.Impact
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings().Get(ctx, bookingID)
		if err != nil {
			return err
		}
		grades, err := tx.Records().ListGrades(ctx, bookingID)
		if err != nil {
			return err
		}
		var fuel catalog.FuelType
		if b.JobID != nil {
			j, err := tx.Jobs().Get(ctx, *b.JobID)
			if err != nil {
				return err
			}
			fuel = j.Driver.VehicleFuelType
		}

		graded := make([]valuation.GradedLine, 0, len(grades))
		for _, g := range grades {
			line, ok := b.Asset(g.AssetID)
			if !ok {
				continue
			}
			graded = append(graded, valuation.GradedLine{
				Line:               valuation.Line{CategoryID: line.CategoryID, Quantity: line.Quantity},
				ResaleValuePerUnit: g.ResaleValuePerUnit,
			})
		}
		out, err = s.calc.Impact(valuationLines(b.Assets), graded, b.RoundTripDistanceKm, fuel, b.CharityPercent)
		return err
	})
	return out, err
}

// History lists the status changes of a booking and its job, oldest first.
func (s *Service) History(ctx context.Context, bookingID types.ID) ([]Event, error) {
	var out []Event
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.Bookings().Get(ctx, bookingID); err != nil {
			return err
		}
		events, err := tx.Events(ctx, bookingID)
		out = events
		return err
	})
	return out, err
}
