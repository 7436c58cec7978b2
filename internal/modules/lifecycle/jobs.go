// README: Job operations: status transitions, evidence capture and booking sync.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reclaim/internal/modules/booking"
	"reclaim/internal/modules/job"
	"reclaim/internal/types"
)

// jobChange is a validated job transition and the booking sync it implies.
// Nothing has been written yet.
type jobChange struct {
	job         *job.Job
	jobFrom     job.Status
	booking     *booking.Booking
	bookingFrom booking.Status
	synced      bool
	at          time.Time
}

func checkJobTarget(target job.Status) error {
	if target == job.StatusCancelled {
		return fmt.Errorf("%w: jobs are cancelled through their booking", job.ErrInvalidState)
	}
	if !target.Valid() {
		return fmt.Errorf("%w: unknown job status %q", types.ErrValidation, target)
	}
	return nil
}

// TransitionJobStatus moves a job and mirrors the change onto its booking.
func (s *Service) TransitionJobStatus(ctx context.Context, cmd TransitionJobCommand) (*job.Job, error) {
	if err := checkJobTarget(cmd.Status); err != nil {
		return nil, err
	}
	bookingID, err := s.jobBooking(ctx, cmd.JobID)
	if err != nil {
		return nil, err
	}

	var out *job.Job
	err = s.withBooking(ctx, bookingID, func(ctx context.Context, tx Tx) error {
		j, b, err := s.loadJob(ctx, tx, cmd.JobID)
		if err != nil {
			return err
		}
		change, err := s.planJobTransition(ctx, tx, j, b, cmd.Status, s.now())
		if err != nil {
			return err
		}
		if err := s.persistJobChange(ctx, tx, change, cmd.Actor); err != nil {
			return err
		}
		out = j
		return nil
	})
	s.done("job transitioned", err, zap.String("job_id", string(cmd.JobID)), zap.String("to", string(cmd.Status)))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitJobEvidence stores evidence for a status without moving the job.
func (s *Service) SubmitJobEvidence(ctx context.Context, cmd SubmitEvidenceCommand) (*job.Job, error) {
	bookingID, err := s.jobBooking(ctx, cmd.JobID)
	if err != nil {
		return nil, err
	}

	var out *job.Job
	err = s.withBooking(ctx, bookingID, func(ctx context.Context, tx Tx) error {
		j, err := tx.Jobs().Get(ctx, cmd.JobID)
		if err != nil {
			return err
		}
		if j.Status.IsTerminal() {
			return fmt.Errorf("%w: job is %s", job.ErrInvalidState, j.Status)
		}
		if err := j.SubmitEvidence(cmd.Evidence, s.now()); err != nil {
			return err
		}
		if err := tx.Jobs().AddEvidence(ctx, j.ID, j.Evidence[len(j.Evidence)-1]); err != nil {
			return err
		}
		if err := tx.Jobs().Update(ctx, j); err != nil {
			return err
		}
		out = j
		return nil
	})
	s.done("job evidence submitted", err, zap.String("job_id", string(cmd.JobID)), zap.String("status", string(cmd.Evidence.Status)))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitEvidenceAndTransition records evidence for the target status and
// moves the job there under one lock. Evidence already stored for the target
// is kept, so a failed attempt can be retried with the same call. Either both
// steps are stored or neither is.
func (s *Service) SubmitEvidenceAndTransition(ctx context.Context, cmd AdvanceJobCommand) (*job.Job, error) {
	if err := checkJobTarget(cmd.Status); err != nil {
		return nil, err
	}
	bookingID, err := s.jobBooking(ctx, cmd.JobID)
	if err != nil {
		return nil, err
	}

	var out *job.Job
	err = s.withBooking(ctx, bookingID, func(ctx context.Context, tx Tx) error {
		j, b, err := s.loadJob(ctx, tx, cmd.JobID)
		if err != nil {
			return err
		}
		now := s.now()

		var added *job.Evidence
		if _, exists := j.EvidenceFor(cmd.Status); !exists {
			ev := cmd.Evidence
			ev.Status = cmd.Status
			if err := j.SubmitEvidence(ev, now); err != nil {
				return err
			}
			stored := j.Evidence[len(j.Evidence)-1]
			added = &stored
		}

		change, err := s.planJobTransition(ctx, tx, j, b, cmd.Status, now)
		if err != nil {
			return err
		}
		if added != nil {
			if err := tx.Jobs().AddEvidence(ctx, j.ID, *added); err != nil {
				return err
			}
		}
		if err := s.persistJobChange(ctx, tx, change, cmd.Actor); err != nil {
			return err
		}
		out = j
		return nil
	})
	s.done("job advanced", err, zap.String("job_id", string(cmd.JobID)), zap.String("to", string(cmd.Status)))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// planJobTransition applies the transition and its booking sync to j and b
// in memory. Completion additionally needs the booking's completion gate.
func (s *Service) planJobTransition(ctx context.Context, tx Tx, j *job.Job, b *booking.Booking, target job.Status, now time.Time) (*jobChange, error) {
	if target == job.StatusCompleted {
		status, err := s.completion(ctx, tx, b)
		if err != nil {
			return nil, err
		}
		if !status.Satisfied {
			return nil, fmt.Errorf("%w: booking %s", types.ErrGateNotSatisfied, b.Number)
		}
	}

	c := &jobChange{job: j, jobFrom: j.Status, booking: b, bookingFrom: b.Status, at: now}
	if err := j.Transition(target, now); err != nil {
		return nil, err
	}
	if bt, ok := syncTargets[target]; ok && booking.CanTransition(b.Status, bt) {
		if err := b.Transition(bt, "", now); err != nil {
			return nil, err
		}
		c.synced = true
	}
	return c, nil
}

func (s *Service) persistJobChange(ctx context.Context, tx Tx, c *jobChange, actor Actor) error {
	if err := tx.Jobs().Update(ctx, c.job); err != nil {
		return err
	}
	if err := tx.AppendEvent(ctx, newEvent(c.booking.ID, EntityJob, c.job.ID, string(c.jobFrom), string(c.job.Status), actor, "", c.at)); err != nil {
		return err
	}
	if !c.synced {
		return nil
	}
	if err := tx.Bookings().Update(ctx, c.booking); err != nil {
		return err
	}
	return tx.AppendEvent(ctx, newEvent(c.booking.ID, EntityBooking, c.booking.ID, string(c.bookingFrom), string(c.booking.Status), actor, "synced from job", c.at))
}
