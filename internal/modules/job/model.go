// README: Job aggregate, evidence gate and the job state machine.
package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"reclaim/internal/modules/catalog"
	"reclaim/internal/types"
)

type Status string

const (
	StatusBooked    Status = "booked"
	StatusRouted    Status = "routed"
	StatusEnRoute   Status = "en-route"
	StatusArrived   Status = "arrived"
	StatusCollected Status = "collected"
	StatusWarehouse Status = "warehouse"
	StatusSanitised Status = "sanitised"
	StatusGraded    Status = "graded"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound             = fmt.Errorf("job %w", types.ErrNotFound)
	ErrInvalidState         = fmt.Errorf("job: %w", types.ErrInvalidTransition)
	ErrConflict             = fmt.Errorf("job: %w", types.ErrConflict)
	ErrEvidenceRequired     = fmt.Errorf("job: %w", types.ErrEvidenceRequired)
	ErrEvidenceAlreadyExist = fmt.Errorf("job: %w", types.ErrEvidenceAlreadyExists)
	ErrInvalidEvidence      = fmt.Errorf("job evidence: %w", types.ErrValidation)
)

// Driver is a snapshot of the assigned driver taken when the job is created.
type Driver struct {
	ID              types.ID         `json:"id"`
	Name            string           `json:"name"`
	VehicleReg      string           `json:"vehicleReg"`
	VehicleType     string           `json:"vehicleType"`
	VehicleFuelType catalog.FuelType `json:"vehicleFuelType"`
	Phone           string           `json:"phone"`
}

type Asset struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Quantity     int    `json:"quantity"`
}

// Evidence is proof captured by the driver for a given status. At most one
// entry exists per status and it is never modified.
type Evidence struct {
	Status      Status    `json:"status"`
	Photos      []string  `json:"photos"`
	Signature   string    `json:"signature,omitempty"`
	SealNumbers []string  `json:"sealNumbers,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Job struct {
	ID            types.ID `json:"id"`
	BookingID     types.ID `json:"bookingId"`
	BookingNumber string   `json:"bookingNumber"`
	Status        Status   `json:"status"`
	Version       int      `json:"version"`

	Driver   Driver     `json:"driver"`
	Assets   []Asset    `json:"assets"`
	Evidence []Evidence `json:"evidence"`

	CO2eSaved           float64         `json:"co2eSaved"`
	TravelEmissions     float64         `json:"travelEmissions"`
	BuybackValue        decimal.Decimal `json:"buybackValue"`
	CharityPercent      int             `json:"charityPercent"`
	RoundTripDistanceKm float64         `json:"roundTripDistanceKm"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// AllowedTransitions represents the job state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusBooked:    {StatusRouted, StatusEnRoute, StatusCancelled},
	StatusRouted:    {StatusEnRoute, StatusCancelled},
	StatusEnRoute:   {StatusArrived, StatusCancelled},
	StatusArrived:   {StatusCollected, StatusCancelled},
	StatusCollected: {StatusWarehouse, StatusCancelled},
	StatusWarehouse: {StatusSanitised, StatusCancelled},
	StatusSanitised: {StatusGraded, StatusCancelled},
	StatusGraded:    {StatusCompleted, StatusCancelled},
}

// EvidenceRequired lists the statuses a driver must prove before entering.
var EvidenceRequired = map[Status]bool{
	StatusEnRoute:   true,
	StatusArrived:   true,
	StatusCollected: true,
	StatusWarehouse: true,
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
	case StatusBooked, StatusRouted, StatusEnRoute, StatusArrived, StatusCollected,
		StatusWarehouse, StatusSanitised, StatusGraded, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Validate checks the evidence shape for its status.
func (e Evidence) Validate() error {
	if !e.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEvidence, e.Status)
	}
	if EvidenceRequired[e.Status] {
		if len(e.Photos) == 0 {
			return fmt.Errorf("%w: at least one photo is required for %s", ErrInvalidEvidence, e.Status)
		}
		if !photosPresent(e.Photos) {
			return fmt.Errorf("%w: blank photo reference for %s", ErrInvalidEvidence, e.Status)
		}
		if strings.TrimSpace(e.Signature) == "" {
			return fmt.Errorf("%w: signature is required for %s", ErrInvalidEvidence, e.Status)
		}
	}
	return nil
}

// satisfies reports whether the evidence is enough to pass the gate.
func (e Evidence) satisfies() bool {
	return photosPresent(e.Photos) && strings.TrimSpace(e.Signature) != ""
}

// photosPresent is false for an empty list or any blank entry.
func photosPresent(photos []string) bool {
	if len(photos) == 0 {
		return false
	}
	for _, p := range photos {
		if strings.TrimSpace(p) == "" {
			return false
		}
	}
	return true
}

func (j *Job) EvidenceFor(s Status) (Evidence, bool) {
	for _, e := range j.Evidence {
		if e.Status == s {
			return e, true
		}
	}
	return Evidence{}, false
}

// SubmitEvidence appends ev. It does not change the job status.
func (j *Job) SubmitEvidence(ev Evidence, now time.Time) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if _, ok := j.EvidenceFor(ev.Status); ok {
		return fmt.Errorf("%w: %s", ErrEvidenceAlreadyExist, ev.Status)
	}
	ev.CreatedAt = now
	ev.Photos = append([]string(nil), ev.Photos...)
	ev.SealNumbers = append([]string(nil), ev.SealNumbers...)
	j.Evidence = append(j.Evidence, ev)
	j.UpdatedAt = now
	return nil
}

// Transition moves the job to the target status. Gated targets need
// evidence recorded for that exact status.
func (j *Job) Transition(to Status, now time.Time) error {
	if !CanTransition(j.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, j.Status, to)
	}
	if EvidenceRequired[to] {
		ev, ok := j.EvidenceFor(to)
		if !ok || !ev.satisfies() {
			return fmt.Errorf("%w: %s", ErrEvidenceRequired, to)
		}
	}
	j.Status = to
	j.UpdatedAt = now
	if to == StatusCompleted && j.CompletedAt == nil {
		t := now
		j.CompletedAt = &t
	}
	return nil
}

// Clone returns a deep copy.
func (j *Job) Clone() *Job {
	c := *j
	c.Assets = append([]Asset(nil), j.Assets...)
	c.Evidence = make([]Evidence, len(j.Evidence))
	for i, e := range j.Evidence {
		e.Photos = append([]string(nil), e.Photos...)
		e.SealNumbers = append([]string(nil), e.SealNumbers...)
		c.Evidence[i] = e
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
