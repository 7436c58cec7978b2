// README: Grading and sanitisation records attached to booking asset lines.
package records

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"reclaim/internal/modules/catalog"
	"reclaim/internal/types"
)

var (
	ErrGradeNotFound        = fmt.Errorf("grading record %w", types.ErrNotFound)
	ErrSanitisationNotFound = fmt.Errorf("sanitisation record %w", types.ErrNotFound)
	ErrInvalidRecord        = fmt.Errorf("record: %w", types.ErrValidation)
)

type Method string

const (
	MethodDataWipe Method = "data-wipe"
	MethodDegauss  Method = "degauss"
	MethodShred    Method = "shred"
	MethodCrush    Method = "crush"
	MethodOther    Method = "other"
)

func (m Method) Valid() bool {
	switch m {
	case MethodDataWipe, MethodDegauss, MethodShred, MethodCrush, MethodOther:
		return true
	}
	return false
}

// GradingRecord holds the grade of one asset line. There is at most one per
// (booking, asset).
type GradingRecord struct {
	ID                 types.ID        `json:"id"`
	BookingID          types.ID        `json:"bookingId"`
	AssetID            string          `json:"assetId"`
	Grade              catalog.Grade   `json:"grade"`
	ResaleValuePerUnit decimal.Decimal `json:"resaleValuePerUnit"`
	Condition          string          `json:"condition,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	GradedAt           time.Time       `json:"gradedAt"`
	GradedBy           string          `json:"gradedBy,omitempty"`
}

type SanitisationRecord struct {
	ID             types.ID   `json:"id"`
	BookingID      types.ID   `json:"bookingId"`
	AssetID        string     `json:"assetId"`
	Method         Method     `json:"method"`
	MethodDetails  string     `json:"methodDetails,omitempty"`
	CertificateID  string     `json:"certificateId"`
	CertificateURL string     `json:"certificateUrl,omitempty"`
	Verified       bool       `json:"verified"`
	VerifiedAt     *time.Time `json:"verifiedAt,omitempty"`
	VerifiedBy     *string    `json:"verifiedBy,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
	PerformedBy    string     `json:"performedBy,omitempty"`
}

func (r *SanitisationRecord) Validate() error {
	if r.AssetID == "" {
		return fmt.Errorf("%w: asset id is required", ErrInvalidRecord)
	}
	if !r.Method.Valid() {
		return fmt.Errorf("%w: unknown method %q", ErrInvalidRecord, r.Method)
	}
	if r.CertificateID == "" {
		return fmt.Errorf("%w: certificate id is required", ErrInvalidRecord)
	}
	return nil
}

// Verify marks the record verified. It reports false when the record was
// already verified, in which case nothing changes.
func (r *SanitisationRecord) Verify(by string, now time.Time) bool {
	if r.Verified {
		return false
	}
	r.Verified = true
	t := now
	r.VerifiedAt = &t
	if by != "" {
		r.VerifiedBy = &by
	}
	return true
}

func (r *SanitisationRecord) Clone() *SanitisationRecord {
	c := *r
	if r.VerifiedAt != nil {
		t := *r.VerifiedAt
		c.VerifiedAt = &t
	}
	if r.VerifiedBy != nil {
		s := *r.VerifiedBy
		c.VerifiedBy = &s
	}
	return &c
}
