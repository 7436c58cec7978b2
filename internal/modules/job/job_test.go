package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reclaim/internal/testutil"
	"reclaim/internal/types"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from, to Status
		want     bool
	}{
		{"booked to routed", StatusBooked, StatusRouted, true},
		{"booked straight to en-route", StatusBooked, StatusEnRoute, true},
		{"routed to en-route", StatusRouted, StatusEnRoute, true},
		{"en-route to arrived", StatusEnRoute, StatusArrived, true},
		{"arrived to collected", StatusArrived, StatusCollected, true},
		{"collected to warehouse", StatusCollected, StatusWarehouse, true},
		{"warehouse to sanitised", StatusWarehouse, StatusSanitised, true},
		{"sanitised to graded", StatusSanitised, StatusGraded, true},
		{"graded to completed", StatusGraded, StatusCompleted, true},
		{"arrived cancelled", StatusArrived, StatusCancelled, true},
		{"skip arrived", StatusEnRoute, StatusCollected, false},
		{"backwards", StatusCollected, StatusArrived, false},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusBooked, false},
		{"warehouse skip to graded", StatusWarehouse, StatusGraded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransitionRequiresEvidence(t *testing.T) {
	now := time.Now()
	j := newJob(StatusRouted)

	err := j.Transition(StatusEnRoute, now)
	require.ErrorIs(t, err, types.ErrEvidenceRequired)
	assert.Equal(t, StatusRouted, j.Status)

	require.NoError(t, j.SubmitEvidence(Evidence{
		Status:    StatusEnRoute,
		Photos:    []string{"photos/van-loaded.jpg"},
		Signature: "sig-driver",
	}, now))
	require.NoError(t, j.Transition(StatusEnRoute, now))
	assert.Equal(t, StatusEnRoute, j.Status)

	// Evidence for another status does not open the gate.
	require.NoError(t, j.SubmitEvidence(Evidence{
		Status:    StatusCollected,
		Photos:    []string{"photos/collected.jpg"},
		Signature: "sig-site",
	}, now))
	require.ErrorIs(t, j.Transition(StatusArrived, now), types.ErrEvidenceRequired)
}

func TestUngatedTransitions(t *testing.T) {
	now := time.Now()
	j := newJob(StatusWarehouse)

	require.NoError(t, j.Transition(StatusSanitised, now))
	require.NoError(t, j.Transition(StatusGraded, now))
	require.NoError(t, j.Transition(StatusCompleted, now))
	require.NotNil(t, j.CompletedAt)
	assert.Equal(t, now, *j.CompletedAt)

	err := j.Transition(StatusCancelled, now)
	assert.ErrorIs(t, err, types.ErrInvalidTransition)
}

func TestSubmitEvidence(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		ev      Evidence
		wantErr error
	}{
		{
			name:    "unknown status",
			ev:      Evidence{Status: "lost", Photos: []string{"p"}, Signature: "s"},
			wantErr: types.ErrValidation,
		},
		{
			name:    "gated without photos",
			ev:      Evidence{Status: StatusArrived, Signature: "s"},
			wantErr: types.ErrValidation,
		},
		{
			name:    "gated without signature",
			ev:      Evidence{Status: StatusArrived, Photos: []string{"p"}},
			wantErr: types.ErrValidation,
		},
		{
			name:    "blank photo entry",
			ev:      Evidence{Status: StatusArrived, Photos: []string{""}, Signature: "s"},
			wantErr: types.ErrValidation,
		},
		{
			name:    "one of the photos blank",
			ev:      Evidence{Status: StatusArrived, Photos: []string{"p", "  "}, Signature: "s"},
			wantErr: types.ErrValidation,
		},
		{
			name:    "whitespace signature",
			ev:      Evidence{Status: StatusArrived, Photos: []string{"p"}, Signature: " \t"},
			wantErr: types.ErrValidation,
		},
		{
			name: "gated with photo and signature",
			ev:   Evidence{Status: StatusArrived, Photos: []string{"p"}, Signature: "s"},
		},
		{
			name: "ungated status without signature",
			ev:   Evidence{Status: StatusSanitised, Notes: "wiped on bench 3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := newJob(StatusRouted)
			err := j.SubmitEvidence(tt.ev, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, j.Evidence)
				return
			}
			require.NoError(t, err)
			require.Len(t, j.Evidence, 1)
			assert.Equal(t, now, j.Evidence[0].CreatedAt)
		})
	}
}

func TestSubmitEvidenceDuplicate(t *testing.T) {
	now := time.Now()
	j := newJob(StatusEnRoute)
	first := Evidence{Status: StatusArrived, Photos: []string{"a.jpg"}, Signature: "one"}
	require.NoError(t, j.SubmitEvidence(first, now))

	err := j.SubmitEvidence(Evidence{Status: StatusArrived, Photos: []string{"b.jpg"}, Signature: "two"}, now.Add(time.Minute))
	require.ErrorIs(t, err, types.ErrEvidenceAlreadyExists)

	stored, ok := j.EvidenceFor(StatusArrived)
	require.True(t, ok)
	assert.Equal(t, "one", stored.Signature)
	assert.Equal(t, []string{"a.jpg"}, stored.Photos)
}

func TestMemoryStore(t *testing.T) {
	testRepository(t, NewMemoryStore(), func(*Job) {})
}

func TestPostgresStore(t *testing.T) {
	db := testutil.OpenDB(t)
	testRepository(t, NewStore(db), func(j *Job) { testutil.InsertBooking(t, db, j.BookingID) })
}

// testRepository runs the repository contract. prepare stores whatever the
// job references before it is created.
func testRepository(t *testing.T, repo Repository, prepare func(*Job)) {
	t.Helper()
	ctx := context.Background()
	j := newJob(StatusRouted)
	prepare(j)
	require.NoError(t, repo.Create(ctx, j))

	other := newJob(StatusRouted)
	other.BookingID = j.BookingID
	require.ErrorIs(t, repo.Create(ctx, other), types.ErrConflict)

	got, err := repo.GetByBooking(ctx, j.BookingID)
	require.NoError(t, err)
	assert.Equal(t, j.ID, got.ID)
	assert.Equal(t, j.Assets, got.Assets)
	assert.True(t, j.BuybackValue.Equal(got.BuybackValue))
	assert.Equal(t, j.Driver, got.Driver)

	now := time.Now().UTC().Truncate(time.Microsecond)
	enRoute := Evidence{
		Status:      StatusEnRoute,
		Photos:      []string{"photos/van.jpg", "photos/seal.jpg"},
		Signature:   "s",
		SealNumbers: []string{"SEAL-001", "SEAL-002"},
		Notes:       "two cages",
		CreatedAt:   now,
	}
	require.NoError(t, repo.AddEvidence(ctx, j.ID, enRoute))
	dup := enRoute
	dup.Photos = []string{"photos/other.jpg"}
	require.ErrorIs(t, repo.AddEvidence(ctx, j.ID, dup), types.ErrEvidenceAlreadyExists)
	require.NoError(t, repo.AddEvidence(ctx, j.ID, Evidence{
		Status: StatusArrived, Photos: []string{"photos/site.jpg"}, Signature: "t", CreatedAt: now.Add(time.Minute),
	}))

	got, err = repo.Get(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, got.Evidence, 2)
	first := got.Evidence[0]
	assert.Equal(t, StatusEnRoute, first.Status)
	assert.Equal(t, enRoute.Photos, first.Photos, "first submission is kept")
	assert.Equal(t, enRoute.SealNumbers, first.SealNumbers)
	assert.Equal(t, "two cages", first.Notes)
	assert.Equal(t, StatusArrived, got.Evidence[1].Status)

	require.NoError(t, got.Transition(StatusEnRoute, time.Now()))
	stale := got.Clone()
	require.NoError(t, repo.Update(ctx, got))
	assert.Equal(t, 1, got.Version)
	require.ErrorIs(t, repo.Update(ctx, stale), types.ErrConflict)

	got, err = repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusEnRoute, got.Status)
	assert.Equal(t, 1, got.Version)
	assert.Len(t, got.Evidence, 2, "update keeps stored evidence")

	_, err = repo.Get(ctx, types.NewID())
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func newJob(status Status) *Job {
	now := time.Now()
	return &Job{
		ID:            types.NewID(),
		BookingID:     types.NewID(),
		BookingNumber: "BK-TEST0001",
		Status:        status,
		Driver: Driver{
			ID:              "drv-1",
			Name:            "Sam Driver",
			VehicleReg:      "AB12 CDE",
			VehicleType:     "van",
			VehicleFuelType: "diesel",
		},
		Assets:              []Asset{{CategoryID: "laptop", CategoryName: "Laptop", Quantity: 4}},
		CO2eSaved:           1000,
		TravelEmissions:     20,
		BuybackValue:        decimal.NewFromInt(340),
		CharityPercent:      10,
		RoundTripDistanceKm: 80,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
