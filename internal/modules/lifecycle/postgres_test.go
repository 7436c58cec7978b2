package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reclaim/internal/modules/booking"
	"reclaim/internal/modules/catalog"
	"reclaim/internal/modules/fleet"
	"reclaim/internal/modules/job"
	"reclaim/internal/testutil"
	"reclaim/internal/types"
)

func newPostgresFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	seedDrivers(t, fleet.NewStore(db))
	return newServiceFixture(t, NewPostgresStore(db))
}

func TestPostgresLifecycle(t *testing.T) {
	f := newPostgresFixture(t)
	ctx := context.Background()
	b, j := f.assigned(t)
	assert.Equal(t, booking.StatusScheduled, b.Status)
	assert.Equal(t, job.StatusRouted, j.Status)

	first := evidenceFor(job.StatusEnRoute)
	first.Photos = append(first.Photos, "photos/van.jpg")
	first.SealNumbers = []string{"SEAL-1", "SEAL-2"}
	_, err := f.svc.SubmitJobEvidence(ctx, SubmitEvidenceCommand{JobID: j.ID, Evidence: first})
	require.NoError(t, err)
	_, err = f.svc.SubmitJobEvidence(ctx, SubmitEvidenceCommand{JobID: j.ID, Evidence: evidenceFor(job.StatusEnRoute)})
	require.ErrorIs(t, err, types.ErrEvidenceAlreadyExists)

	got, err := f.svc.TransitionJobStatus(ctx, TransitionJobCommand{JobID: j.ID, Status: job.StatusEnRoute})
	require.NoError(t, err)
	ev, ok := got.EvidenceFor(job.StatusEnRoute)
	require.True(t, ok)
	assert.Equal(t, first.Photos, ev.Photos)
	assert.Equal(t, first.SealNumbers, ev.SealNumbers)

	f.advance(t, j.ID, job.StatusArrived, job.StatusCollected, job.StatusWarehouse, job.StatusSanitised)
	f.completeRecords(t, b)

	g, err := f.svc.RecordGrade(ctx, RecordGradeCommand{BookingID: b.ID, AssetID: "laptop", Grade: catalog.GradeA, Notes: "regraded"})
	require.NoError(t, err)
	set, err := f.svc.ListRecords(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, set.Grades, 2)
	for _, gr := range set.Grades {
		if gr.AssetID == "laptop" {
			assert.Equal(t, g.ID, gr.ID)
			assert.Equal(t, catalog.GradeA, gr.Grade)
		}
	}
	for _, r := range set.Sanitisations {
		require.NotNil(t, r.VerifiedAt)
		require.NotNil(t, r.VerifiedBy)
		assert.Equal(t, "qa", *r.VerifiedBy)
	}

	f.advance(t, j.ID, job.StatusGraded)
	approved, err := f.svc.ApproveBooking(ctx, ApproveBookingCommand{BookingID: b.ID, Actor: Actor{Type: ActorAdmin}})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCompleted, approved.Status)
	require.NotNil(t, approved.CompletedAt)

	cur, err := f.svc.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, cur.Status)

	events, err := f.svc.History(ctx, b.ID)
	require.NoError(t, err)
	var trail []string
	for i, e := range events {
		trail = append(trail, string(e.EntityType)+":"+e.FromStatus+">"+e.ToStatus)
		if i > 0 {
			assert.Greater(t, e.ID, events[i-1].ID)
		}
	}
	assert.Equal(t, []string{
		"booking:>created",
		"booking:created>scheduled",
		"job:>routed",
		"job:routed>en-route",
		"job:en-route>arrived",
		"job:arrived>collected",
		"booking:scheduled>collected",
		"job:collected>warehouse",
		"job:warehouse>sanitised",
		"booking:collected>sanitised",
		"job:sanitised>graded",
		"booking:sanitised>graded",
		"booking:graded>completed",
		"job:graded>completed",
	}, trail)
}

func TestPostgresApproveLeavesBookingWhenJobLags(t *testing.T) {
	f := newPostgresFixture(t)
	ctx := context.Background()
	b, j := f.assigned(t)
	f.advance(t, j.ID, job.StatusEnRoute, job.StatusArrived, job.StatusCollected, job.StatusWarehouse)

	for _, st := range []booking.Status{booking.StatusSanitised, booking.StatusGraded} {
		_, err := f.svc.TransitionBookingStatus(ctx, TransitionBookingCommand{BookingID: b.ID, Status: st})
		require.NoError(t, err)
	}
	f.completeRecords(t, b)

	before, err := f.svc.History(ctx, b.ID)
	require.NoError(t, err)

	_, err = f.svc.ApproveBooking(ctx, ApproveBookingCommand{BookingID: b.ID})
	require.ErrorIs(t, err, types.ErrInvalidTransition)

	cur, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusGraded, cur.Status)
	assert.Nil(t, cur.CompletedAt)

	after, err := f.svc.History(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}
