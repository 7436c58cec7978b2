// README: Collaborators the coordinator depends on.
package lifecycle

import "context"

//go:generate mockgen -destination=distance_mock_test.go -package=lifecycle reclaim/internal/modules/lifecycle DistanceEstimator

// DistanceEstimator returns the round-trip driving distance in km between the
// depot and a site postcode.
type DistanceEstimator interface {
	RoundTripKm(ctx context.Context, postcode string) (float64, error)
}
