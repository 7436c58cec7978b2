package maps

import (
	"context"

	"go.uber.org/zap"
)

// DistanceEstimator returns the round-trip driving distance in km between the
// depot and a site postcode.
type DistanceEstimator interface {
	RoundTripKm(ctx context.Context, postcode string) (float64, error)
}

// StaticEstimator answers every postcode with the same distance.
type StaticEstimator struct {
	Km float64
}

func (s StaticEstimator) RoundTripKm(context.Context, string) (float64, error) {
	return s.Km, nil
}

// FallbackEstimator uses Primary and falls back to Secondary when it fails.
type FallbackEstimator struct {
	Primary   DistanceEstimator
	Secondary DistanceEstimator
	Log       *zap.Logger
}

func (f FallbackEstimator) RoundTripKm(ctx context.Context, postcode string) (float64, error) {
	km, err := f.Primary.RoundTripKm(ctx, postcode)
	if err == nil {
		return km, nil
	}
	if f.Log != nil {
		f.Log.Warn("route distance lookup failed, using fallback",
			zap.String("postcode", postcode), zap.Error(err))
	}
	return f.Secondary.RoundTripKm(ctx, postcode)
}
