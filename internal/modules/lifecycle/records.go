// README: Grading and sanitisation operations and the completion gate.
package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"reclaim/internal/modules/booking"
	"reclaim/internal/modules/records"
	"reclaim/internal/types"
)

func gradeable(s booking.Status) bool {
	return s == booking.StatusSanitised || s == booking.StatusGraded || s == booking.StatusCompleted
}

func sanitisable(s booking.Status) bool {
	return s == booking.StatusCollected || gradeable(s)
}

func bookingAsset(b *booking.Booking, assetID string) (booking.AssetLine, error) {
	line, ok := b.Asset(assetID)
	if !ok {
		return booking.AssetLine{}, fmt.Errorf("%w: asset %q is not on booking %s", types.ErrValidation, assetID, b.Number)
	}
	return line, nil
}

// RecordGrade grades an asset line. Grading a line again replaces the
// previous grade and keeps the record id.
func (s *Service) RecordGrade(ctx context.Context, cmd RecordGradeCommand) (*records.GradingRecord, error) {
	if !cmd.Grade.Valid() {
		return nil, fmt.Errorf("%w: unknown grade %q", types.ErrValidation, cmd.Grade)
	}

	var out *records.GradingRecord
	err := s.withBooking(ctx, cmd.BookingID, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings().Get(ctx, cmd.BookingID)
		if err != nil {
			return err
		}
		if !gradeable(b.Status) {
			return fmt.Errorf("%w: cannot grade assets of a %s booking", booking.ErrInvalidState, b.Status)
		}
		line, err := bookingAsset(b, cmd.AssetID)
		if err != nil {
			return err
		}
		perUnit, err := s.calc.ResaleValuePerUnit(line.CategoryID, cmd.Grade)
		if err != nil {
			return err
		}
		g := &records.GradingRecord{
			ID:                 types.NewID(),
			BookingID:          b.ID,
			AssetID:            line.CategoryID,
			Grade:              cmd.Grade,
			ResaleValuePerUnit: perUnit,
			Condition:          cmd.Condition,
			Notes:              cmd.Notes,
			GradedAt:           s.now(),
			GradedBy:           cmd.GradedBy,
		}
		if err := tx.Records().UpsertGrade(ctx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	s.done("asset graded", err, zap.String("booking_id", string(cmd.BookingID)), zap.String("asset", cmd.AssetID), zap.String("grade", string(cmd.Grade)))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecordSanitisation appends an unverified sanitisation record to an asset line.
func (s *Service) RecordSanitisation(ctx context.Context, cmd RecordSanitisationCommand) (*records.SanitisationRecord, error) {
	r := &records.SanitisationRecord{
		ID:             types.NewID(),
		BookingID:      cmd.BookingID,
		AssetID:        cmd.AssetID,
		Method:         cmd.Method,
		MethodDetails:  cmd.MethodDetails,
		CertificateID:  cmd.CertificateID,
		CertificateURL: cmd.CertificateURL,
		Notes:          cmd.Notes,
		PerformedBy:    cmd.PerformedBy,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	err := s.withBooking(ctx, cmd.BookingID, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings().Get(ctx, cmd.BookingID)
		if err != nil {
			return err
		}
		if !sanitisable(b.Status) {
			return fmt.Errorf("%w: cannot sanitise assets of a %s booking", booking.ErrInvalidState, b.Status)
		}
		if _, err := bookingAsset(b, cmd.AssetID); err != nil {
			return err
		}
		r.Timestamp = s.now()
		return tx.Records().AddSanitisation(ctx, r)
	})
	s.done("asset sanitised", err, zap.String("booking_id", string(cmd.BookingID)), zap.String("asset", cmd.AssetID), zap.String("method", string(cmd.Method)))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// VerifySanitisation marks a sanitisation record verified. Verifying twice
// returns the record unchanged.
func (s *Service) VerifySanitisation(ctx context.Context, cmd VerifySanitisationCommand) (*records.SanitisationRecord, error) {
	var bookingID types.ID
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		r, err := tx.Records().GetSanitisation(ctx, cmd.RecordID)
		if err != nil {
			return err
		}
		bookingID = r.BookingID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out *records.SanitisationRecord
	err = s.withBooking(ctx, bookingID, func(ctx context.Context, tx Tx) error {
		r, err := tx.Records().GetSanitisation(ctx, cmd.RecordID)
		if err != nil {
			return err
		}
		if r.Verify(cmd.VerifiedBy, s.now()) {
			if err := tx.Records().UpdateSanitisation(ctx, r); err != nil {
				return err
			}
		}
		out = r
		return nil
	})
	s.done("sanitisation verified", err, zap.String("record_id", string(cmd.RecordID)))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// completion reports grading and sanitisation progress per asset line.
func (s *Service) completion(ctx context.Context, tx Tx, b *booking.Booking) (CompletionStatus, error) {
	grades, err := tx.Records().ListGrades(ctx, b.ID)
	if err != nil {
		return CompletionStatus{}, err
	}
	sans, err := tx.Records().ListSanitisations(ctx, b.ID)
	if err != nil {
		return CompletionStatus{}, err
	}

	idx := make(map[string]int, len(b.Assets))
	lines := make([]LineCompletion, len(b.Assets))
	for i, a := range b.Assets {
		idx[a.CategoryID] = i
		lines[i] = LineCompletion{AssetID: a.CategoryID, Quantity: a.Quantity}
	}
	for _, g := range grades {
		if i, ok := idx[g.AssetID]; ok {
			grade := g.Grade
			lines[i].Grade = &grade
		}
	}
	for _, r := range sans {
		i, ok := idx[r.AssetID]
		if !ok {
			continue
		}
		lines[i].Sanitisations++
		if r.Verified {
			lines[i].Verified++
		}
	}

	st := CompletionStatus{BookingID: b.ID, Total: len(lines), Lines: lines, Satisfied: len(lines) > 0}
	for _, l := range lines {
		if l.graded() {
			st.Graded++
		}
		if l.sanitised() {
			st.Sanitised++
		}
		if l.verified() {
			st.Verified++
		}
		if !l.Complete() {
			st.Satisfied = false
		}
	}
	return st, nil
}
