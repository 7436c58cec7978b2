// README: Lifecycle commands, audit events and completion reports.
package lifecycle

import (
	"time"

	"reclaim/internal/modules/booking"
	"reclaim/internal/modules/catalog"
	"reclaim/internal/modules/job"
	"reclaim/internal/modules/records"
	"reclaim/internal/types"
)

type EntityType string

const (
	EntityBooking EntityType = "booking"
	EntityJob     EntityType = "job"
)

const (
	ActorSystem = "system"
	ActorAdmin  = "admin"
	ActorDriver = "driver"
)

// Actor identifies who asked for a change. A zero Actor is recorded as system.
type Actor struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// Event is one status change of a booking or its job.
type Event struct {
	ID         int64      `json:"id"`
	BookingID  types.ID   `json:"bookingId"`
	EntityType EntityType `json:"entityType"`
	EntityID   types.ID   `json:"entityId"`
	FromStatus string     `json:"fromStatus"`
	ToStatus   string     `json:"toStatus"`
	ActorType  string     `json:"actorType"`
	ActorID    *string    `json:"actorId,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type AssetLineInput struct {
	CategoryID string `json:"categoryId"`
	Quantity   int    `json:"quantity"`
}

type CreateBookingCommand struct {
	Site           booking.Site
	Assets         []AssetLineInput
	ScheduledDate  time.Time
	CharityPercent int
	Actor          Actor
}

type AssignDriverCommand struct {
	BookingID types.ID
	DriverID  types.ID
	Actor     Actor
}

type TransitionJobCommand struct {
	JobID  types.ID
	Status job.Status
	Actor  Actor
}

type SubmitEvidenceCommand struct {
	JobID    types.ID
	Evidence job.Evidence
	Actor    Actor
}

// AdvanceJobCommand submits evidence for Status and moves the job there in
// one step.
type AdvanceJobCommand struct {
	JobID    types.ID
	Status   job.Status
	Evidence job.Evidence
	Actor    Actor
}

type TransitionBookingCommand struct {
	BookingID types.ID
	Status    booking.Status
	Notes     string
	Actor     Actor
}

type RecordGradeCommand struct {
	BookingID types.ID
	AssetID   string
	Grade     catalog.Grade
	Condition string
	Notes     string
	GradedBy  string
}

type RecordSanitisationCommand struct {
	BookingID      types.ID
	AssetID        string
	Method         records.Method
	MethodDetails  string
	CertificateID  string
	CertificateURL string
	Notes          string
	PerformedBy    string
}

type VerifySanitisationCommand struct {
	RecordID   types.ID
	VerifiedBy string
}

type ApproveBookingCommand struct {
	BookingID types.ID
	Actor     Actor
}

// LineCompletion is the grading and sanitisation progress of one asset line.
type LineCompletion struct {
	AssetID       string         `json:"assetId"`
	Quantity      int            `json:"quantity"`
	Grade         *catalog.Grade `json:"grade,omitempty"`
	Sanitisations int            `json:"sanitisations"`
	Verified      int            `json:"verified"`
}

func (l LineCompletion) graded() bool    { return l.Grade != nil }
func (l LineCompletion) sanitised() bool { return l.Sanitisations > 0 }
func (l LineCompletion) verified() bool  { return l.Sanitisations > 0 && l.Verified == l.Sanitisations }

// Complete reports whether the line passes the completion gate.
func (l LineCompletion) Complete() bool {
	return l.graded() && l.sanitised() && l.verified()
}

// CompletionStatus counts asset lines at each stage of the completion gate.
type CompletionStatus struct {
	BookingID types.ID         `json:"bookingId"`
	Total     int              `json:"total"`
	Graded    int              `json:"graded"`
	Sanitised int              `json:"sanitised"`
	Verified  int              `json:"verified"`
	Satisfied bool             `json:"satisfied"`
	Lines     []LineCompletion `json:"lines"`
}

// RecordSet is every record held against a booking.
type RecordSet struct {
	Grades        []records.GradingRecord      `json:"grades"`
	Sanitisations []records.SanitisationRecord `json:"sanitisations"`
}
