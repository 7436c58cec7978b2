// README: Booking aggregate, status definitions and the booking state machine.
package booking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"reclaim/internal/types"
)

type Status string

const (
	StatusCreated   Status = "created"
	StatusScheduled Status = "scheduled"
	StatusCollected Status = "collected"
	StatusSanitised Status = "sanitised"
	StatusGraded    Status = "graded"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound     = fmt.Errorf("booking %w", types.ErrNotFound)
	ErrInvalidState = fmt.Errorf("booking: %w", types.ErrInvalidTransition)
	ErrConflict     = fmt.Errorf("booking: %w", types.ErrConflict)
)

// Site is where the collection takes place.
type Site struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	Postcode     string `json:"postcode"`
	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
}

// AssetLine is fixed once the booking is created.
type AssetLine struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Quantity     int    `json:"quantity"`
}

type Booking struct {
	ID      types.ID `json:"id"`
	Number  string   `json:"bookingNumber"`
	Status  Status   `json:"status"`
	Version int      `json:"version"`

	Site           Site        `json:"site"`
	ScheduledDate  time.Time   `json:"scheduledDate"`
	Assets         []AssetLine `json:"assets"`
	CharityPercent int         `json:"charityPercent"`

	EstimatedCO2e          float64         `json:"estimatedCO2e"`
	EstimatedBuyback       decimal.Decimal `json:"estimatedBuyback"`
	RoundTripDistanceKm    float64         `json:"roundTripDistanceKm"`
	RoundTripDistanceMiles float64         `json:"roundTripDistanceMiles"`

	DriverID   *types.ID `json:"driverId,omitempty"`
	DriverName *string   `json:"driverName,omitempty"`
	JobID      *types.ID `json:"jobId,omitempty"`

	CreatedAt         time.Time  `json:"createdAt"`
	ScheduledAt       *time.Time `json:"scheduledAt,omitempty"`
	CollectedAt       *time.Time `json:"collectedAt,omitempty"`
	SanitisedAt       *time.Time `json:"sanitisedAt,omitempty"`
	GradedAt          *time.Time `json:"gradedAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	CancelledAt       *time.Time `json:"cancelledAt,omitempty"`
	CancellationNotes *string    `json:"cancellationNotes,omitempty"`
}

// AllowedTransitions represents the booking state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusCreated:   {StatusScheduled, StatusCancelled},
	StatusScheduled: {StatusCollected, StatusCancelled},
	StatusCollected: {StatusSanitised, StatusCancelled},
	StatusSanitised: {StatusGraded, StatusCancelled},
	StatusGraded:    {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusScheduled, StatusCollected, StatusSanitised,
		StatusGraded, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Transition moves the booking to the target status and stamps the matching
// timestamp the first time that status is reached. Notes are kept only for
// cancellations.
func (b *Booking) Transition(to Status, notes string, now time.Time) error {
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, b.Status, to)
	}
	b.Status = to
	switch to {
	case StatusScheduled:
		stamp(&b.ScheduledAt, now)
	case StatusCollected:
		stamp(&b.CollectedAt, now)
	case StatusSanitised:
		stamp(&b.SanitisedAt, now)
	case StatusGraded:
		stamp(&b.GradedAt, now)
	case StatusCompleted:
		stamp(&b.CompletedAt, now)
	case StatusCancelled:
		stamp(&b.CancelledAt, now)
		if notes != "" {
			b.CancellationNotes = &notes
		}
	}
	return nil
}

// HasAsset reports whether categoryID is one of the booking's asset lines.
func (b *Booking) HasAsset(categoryID string) bool {
	_, ok := b.Asset(categoryID)
	return ok
}

func (b *Booking) Asset(categoryID string) (AssetLine, bool) {
	for _, a := range b.Assets {
		if a.CategoryID == categoryID {
			return a, true
		}
	}
	return AssetLine{}, false
}

// Clone returns a deep copy.
func (b *Booking) Clone() *Booking {
	c := *b
	c.Assets = append([]AssetLine(nil), b.Assets...)
	c.DriverID = clonePtr(b.DriverID)
	c.DriverName = clonePtr(b.DriverName)
	c.JobID = clonePtr(b.JobID)
	c.ScheduledAt = clonePtr(b.ScheduledAt)
	c.CollectedAt = clonePtr(b.CollectedAt)
	c.SanitisedAt = clonePtr(b.SanitisedAt)
	c.GradedAt = clonePtr(b.GradedAt)
	c.CompletedAt = clonePtr(b.CompletedAt)
	c.CancelledAt = clonePtr(b.CancelledAt)
	c.CancellationNotes = clonePtr(b.CancellationNotes)
	return &c
}

func stamp(field **time.Time, now time.Time) {
	if *field == nil {
		t := now
		*field = &t
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
