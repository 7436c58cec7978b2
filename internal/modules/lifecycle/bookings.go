// README: Booking operations: creation, driver assignment, admin transitions and approval.
package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"reclaim/internal/modules/booking"
	"reclaim/internal/modules/fleet"
	"reclaim/internal/modules/job"
	"reclaim/internal/modules/valuation"
	"reclaim/internal/types"
)

// CreateBooking validates the request, estimates distance and value, and
// stores the booking as created.
func (s *Service) CreateBooking(ctx context.Context, cmd CreateBookingCommand) (*booking.Booking, error) {
	lines, err := s.assetLines(cmd.Assets)
	if err != nil {
		return nil, err
	}
	site := cmd.Site
	site.Postcode = strings.ToUpper(strings.TrimSpace(site.Postcode))
	site.Address = strings.TrimSpace(site.Address)
	if site.Postcode == "" {
		return nil, fmt.Errorf("%w: site postcode is required", types.ErrValidation)
	}
	if site.Address == "" {
		return nil, fmt.Errorf("%w: site address is required", types.ErrValidation)
	}
	if cmd.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("%w: scheduled date is required", types.ErrValidation)
	}
	if cmd.CharityPercent < 0 || cmd.CharityPercent > 100 {
		return nil, fmt.Errorf("%w: charity percent must be between 0 and 100", types.ErrValidation)
	}

	km, err := s.roundTripKm(ctx, site.Postcode)
	if err != nil {
		return nil, err
	}

	vlines := valuationLines(lines)
	co2e, err := s.calc.ReuseSavings(vlines)
	if err != nil {
		return nil, err
	}
	buyback, err := s.calc.EstimateBuyback(vlines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &booking.Booking{
		ID:                     types.NewID(),
		Number:                 newBookingNumber(),
		Status:                 booking.StatusCreated,
		Site:                   site,
		ScheduledDate:          cmd.ScheduledDate.UTC(),
		Assets:                 lines,
		CharityPercent:         cmd.CharityPercent,
		EstimatedCO2e:          co2e,
		EstimatedBuyback:       buyback,
		RoundTripDistanceKm:    km,
		RoundTripDistanceMiles: valuation.KmToMiles(km),
		CreatedAt:              now,
	}
	err = s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Bookings().Create(ctx, b); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, newEvent(b.ID, EntityBooking, b.ID, "", string(b.Status), cmd.Actor, "", now))
	})
	s.done("booking created", err, zap.String("booking", b.Number), zap.Float64("round_trip_km", km))
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) assetLines(in []AssetLineInput) ([]booking.AssetLine, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one asset line is required", types.ErrValidation)
	}
	seen := make(map[string]bool, len(in))
	out := make([]booking.AssetLine, 0, len(in))
	for _, l := range in {
		cat, ok := s.catalog.Category(l.CategoryID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown asset category %q", types.ErrValidation, l.CategoryID)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for %s must be positive", types.ErrValidation, l.CategoryID)
		}
		if seen[cat.ID] {
			return nil, fmt.Errorf("%w: asset category %s listed twice", types.ErrValidation, cat.ID)
		}
		seen[cat.ID] = true
		out = append(out, booking.AssetLine{CategoryID: cat.ID, CategoryName: cat.Name, Quantity: l.Quantity})
	}
	return out, nil
}

func (s *Service) roundTripKm(ctx context.Context, postcode string) (float64, error) {
	if s.opts.DistanceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.DistanceTimeout)
		defer cancel()
	}
	km, err := s.distance.RoundTripKm(ctx, postcode)
	if err != nil {
		return 0, storeError(ctx, fmt.Errorf("estimating round trip to %s: %w", postcode, err))
	}
	if km < 0 {
		return 0, fmt.Errorf("%w: negative round trip distance", types.ErrValidation)
	}
	return km, nil
}

func valuationLines(lines []booking.AssetLine) []valuation.Line {
	out := make([]valuation.Line, len(lines))
	for i, l := range lines {
		out[i] = valuation.Line{CategoryID: l.CategoryID, Quantity: l.Quantity}
	}
	return out
}

// AssignDriver schedules a created booking and opens its job.
func (s *Service) AssignDriver(ctx context.Context, cmd AssignDriverCommand) (*booking.Booking, error) {
	var out *booking.Booking
	err := s.withBooking(ctx, cmd.BookingID, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings().Get(ctx, cmd.BookingID)
		if err != nil {
			return err
		}
		if b.Status != booking.StatusCreated {
			return fmt.Errorf("%w: cannot assign a driver to a %s booking", booking.ErrInvalidState, b.Status)
		}
		d, err := tx.Drivers().Get(ctx, cmd.DriverID)
		if err != nil {
			return err
		}
		if !d.Active {
			return fmt.Errorf("%w: driver %s is inactive", types.ErrValidation, d.ID)
		}

		now := s.now()
		var j *job.Job
		if b.JobID == nil {
			travel, err := s.calc.TravelEmissions(b.RoundTripDistanceKm, d.FuelType)
			if err != nil {
				return err
			}
			j = newJob(b, d, travel, now)
		}

		from := b.Status
		if err := b.Transition(booking.StatusScheduled, "", now); err != nil {
			return err
		}
		driverID, driverName := d.ID, d.Name
		b.DriverID = &driverID
		b.DriverName = &driverName

		if j != nil {
			if err := tx.Jobs().Create(ctx, j); err != nil {
				return err
			}
			b.JobID = &j.ID
		}
		if err := tx.Bookings().Update(ctx, b); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, newEvent(b.ID, EntityBooking, b.ID, string(from), string(b.Status), cmd.Actor, "driver "+d.Name, now)); err != nil {
			return err
		}
		if j != nil {
			if err := tx.AppendEvent(ctx, newEvent(b.ID, EntityJob, j.ID, "", string(j.Status), cmd.Actor, "", now)); err != nil {
				return err
			}
		}
		out = b
		return nil
	})
	s.done("driver assigned", err, zap.String("booking_id", string(cmd.BookingID)), zap.String("driver_id", string(cmd.DriverID)))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func newJob(b *booking.Booking, d *fleet.Driver, travel float64, now time.Time) *job.Job {
	assets := make([]job.Asset, len(b.Assets))
	for i, a := range b.Assets {
		assets[i] = job.Asset{CategoryID: a.CategoryID, CategoryName: a.CategoryName, Quantity: a.Quantity}
	}
	return &job.Job{
		ID:            types.NewID(),
		BookingID:     b.ID,
		BookingNumber: b.Number,
		Status:        job.StatusRouted,
		Driver: job.Driver{
			ID:              d.ID,
			Name:            d.Name,
			VehicleReg:      d.VehicleReg,
			VehicleType:     d.VehicleType,
			VehicleFuelType: d.FuelType,
			Phone:           d.Phone,
		},
		Assets:              assets,
		CO2eSaved:           b.EstimatedCO2e,
		TravelEmissions:     travel,
		BuybackValue:        b.EstimatedBuyback,
		CharityPercent:      b.CharityPercent,
		RoundTripDistanceKm: b.RoundTripDistanceKm,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// TransitionBookingStatus is the admin path for moving a booking. Scheduling
// goes through AssignDriver and completion through ApproveBooking.
// Cancelling a booking also cancels its open job.
func (s *Service) TransitionBookingStatus(ctx context.Context, cmd TransitionBookingCommand) (*booking.Booking, error) {
	switch cmd.Status {
	case booking.StatusScheduled:
		return nil, fmt.Errorf("%w: bookings are scheduled by assigning a driver", booking.ErrInvalidState)
	case booking.StatusCompleted:
		return s.ApproveBooking(ctx, ApproveBookingCommand{BookingID: cmd.BookingID, Actor: cmd.Actor})
	}
	if !cmd.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", types.ErrValidation, cmd.Status)
	}

	var out *booking.Booking
	err := s.withBooking(ctx, cmd.BookingID, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings().Get(ctx, cmd.BookingID)
		if err != nil {
			return err
		}
		now := s.now()
		from := b.Status
		if err := b.Transition(cmd.Status, cmd.Notes, now); err != nil {
			return err
		}

		var (
			j       *job.Job
			jobFrom job.Status
		)
		if cmd.Status == booking.StatusCancelled && b.JobID != nil {
			j, err = tx.Jobs().Get(ctx, *b.JobID)
			if err != nil {
				return err
			}
			if j.Status.IsTerminal() {
				j = nil
			} else {
				jobFrom = j.Status
				if err := j.Transition(job.StatusCancelled, now); err != nil {
					return err
				}
			}
		}

		if err := tx.Bookings().Update(ctx, b); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, newEvent(b.ID, EntityBooking, b.ID, string(from), string(b.Status), cmd.Actor, cmd.Notes, now)); err != nil {
			return err
		}
		if j != nil {
			if err := tx.Jobs().Update(ctx, j); err != nil {
				return err
			}
			if err := tx.AppendEvent(ctx, newEvent(b.ID, EntityJob, j.ID, string(jobFrom), string(j.Status), cmd.Actor, "booking cancelled", now)); err != nil {
				return err
			}
		}
		out = b
		return nil
	})
	s.done("booking transitioned", err, zap.String("booking_id", string(cmd.BookingID)), zap.String("to", string(cmd.Status)))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveBooking completes a booking whose completion gate is satisfied,
// together with its job.
func (s *Service) ApproveBooking(ctx context.Context, cmd ApproveBookingCommand) (*booking.Booking, error) {
	var out *booking.Booking
	err := s.withBooking(ctx, cmd.BookingID, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings().Get(ctx, cmd.BookingID)
		if err != nil {
			return err
		}
		status, err := s.completion(ctx, tx, b)
		if err != nil {
			return err
		}
		if !status.Satisfied {
			return fmt.Errorf("%w: %d of %d asset lines graded, %d sanitised, %d verified",
				types.ErrGateNotSatisfied, status.Graded, status.Total, status.Sanitised, status.Verified)
		}

		now := s.now()
		from := b.Status
		if err := b.Transition(booking.StatusCompleted, "", now); err != nil {
			return err
		}

		var (
			j       *job.Job
			jobFrom job.Status
		)
		if b.JobID != nil {
			j, err = tx.Jobs().Get(ctx, *b.JobID)
			if err != nil {
				return err
			}
			if j.Status == job.StatusCompleted {
				j = nil
			} else {
				jobFrom = j.Status
				if err := j.Transition(job.StatusCompleted, now); err != nil {
					return fmt.Errorf("completing job for %s: %w", b.Number, err)
				}
			}
		}

		if err := tx.Bookings().Update(ctx, b); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, newEvent(b.ID, EntityBooking, b.ID, string(from), string(b.Status), cmd.Actor, "approved", now)); err != nil {
			return err
		}
		if j != nil {
			if err := tx.Jobs().Update(ctx, j); err != nil {
				return err
			}
			if err := tx.AppendEvent(ctx, newEvent(b.ID, EntityJob, j.ID, string(jobFrom), string(j.Status), cmd.Actor, "approved", now)); err != nil {
				return err
			}
		}
		out = b
		return nil
	})
	s.done("booking approved", err, zap.String("booking_id", string(cmd.BookingID)))
	if err != nil {
		return nil, err
	}
	return out, nil
}
