// README: Lifecycle coordinator keeps bookings, jobs and records consistent under a per-booking lock.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reclaim/internal/lock"
	"reclaim/internal/modules/booking"
	"reclaim/internal/modules/catalog"
	"reclaim/internal/modules/job"
	"reclaim/internal/modules/valuation"
	"reclaim/internal/types"
)

type Options struct {
	// LockTimeout bounds how long an operation waits for its booking lock.
	LockTimeout time.Duration
	// StoreTimeout bounds the storage work of one operation.
	StoreTimeout time.Duration
	// DistanceTimeout bounds the route lookup made when a booking is created.
	DistanceTimeout time.Duration
}

type Service struct {
	store    Store
	calc     *valuation.Calculator
	catalog  *catalog.Catalog
	locker   lock.Locker
	distance DistanceEstimator
	log      *zap.Logger
	opts     Options
	now      func() time.Time
}

func NewService(store Store, calc *valuation.Calculator, locker lock.Locker, distance DistanceEstimator, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		calc:     calc,
		catalog:  calc.Catalog(),
		locker:   locker,
		distance: distance,
		log:      log.Named("lifecycle"),
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// syncTargets maps job statuses onto the booking status they drive.
var syncTargets = map[job.Status]booking.Status{
	job.StatusCollected: booking.StatusCollected,
	job.StatusSanitised: booking.StatusSanitised,
	job.StatusGraded:    booking.StatusGraded,
	job.StatusCompleted: booking.StatusCompleted,
}

type txFunc func(ctx context.Context, tx Tx) error

// withBooking runs fn in one unit of work while holding the booking lock.
// Jobs and records are always locked through their booking.
func (s *Service) withBooking(ctx context.Context, bookingID types.ID, fn txFunc) error {
	release, err := s.locker.Acquire(ctx, "booking:"+string(bookingID), s.opts.LockTimeout)
	if err != nil {
		return err
	}
	defer release()
	return s.withTx(ctx, fn)
}

func (s *Service) withTx(ctx context.Context, fn txFunc) error {
	if s.opts.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.StoreTimeout)
		defer cancel()
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return storeError(ctx, err)
	}
	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			s.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return storeError(ctx, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return storeError(ctx, fmt.Errorf("commit: %w", err))
	}
	return nil
}

// storeError reports an expired storage deadline as a timeout.
func storeError(ctx context.Context, err error) error {
	if errors.Is(err, types.ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: storage: %v", types.ErrTimeout, err)
	}
	return err
}

func (s *Service) jobBooking(ctx context.Context, jobID types.ID) (types.ID, error) {
	var id types.ID
	err := s.withTx(ctx, func(ctx context.Context, tx Tx) error {
		j, err := tx.Jobs().Get(ctx, jobID)
		if err != nil {
			return err
		}
		id = j.BookingID
		return nil
	})
	return id, err
}

func (s *Service) loadJob(ctx context.Context, tx Tx, jobID types.ID) (*job.Job, *booking.Booking, error) {
	j, err := tx.Jobs().Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	b, err := tx.Bookings().Get(ctx, j.BookingID)
	if err != nil {
		return nil, nil, err
	}
	return j, b, nil
}

func (s *Service) done(op string, err error, fields ...zap.Field) {
	if err != nil {
		s.log.Debug(op+" rejected", append(fields, zap.Error(err))...)
		return
	}
	s.log.Info(op, fields...)
}

func newEvent(bookingID types.ID, entity EntityType, entityID types.ID, from, to string, actor Actor, notes string, at time.Time) *Event {
	e := &Event{
		BookingID:  bookingID,
		EntityType: entity,
		EntityID:   entityID,
		FromStatus: from,
		ToStatus:   to,
		ActorType:  actor.Type,
		Notes:      notes,
		CreatedAt:  at,
	}
	if e.ActorType == "" {
		e.ActorType = ActorSystem
	}
	if actor.ID != "" {
		id := actor.ID
		e.ActorID = &id
	}
	return e
}

func newBookingNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(raw[:8])
}
