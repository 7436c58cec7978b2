package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

// RouteService asks Google Maps for driving distances from the depot.
type RouteService struct {
	client *maps.Client
	depot  string
	region string
}

// NewRouteService creates a new RouteService with the given API Key. Routes
// start and end at depot.
func NewRouteService(apiKey, depot string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client, depot: depot, region: "GB"}, nil
}

// RoundTripKm returns the driving distance depot -> postcode -> depot. The
// outbound leg is doubled.
func (s *RouteService) RoundTripKm(ctx context.Context, postcode string) (float64, error) {
	postcode = strings.TrimSpace(postcode)
	if postcode == "" {
		return 0, fmt.Errorf("empty destination postcode")
	}
	r := &maps.DirectionsRequest{
		Origin:      s.depot,
		Destination: postcode,
		Mode:        maps.TravelModeDriving,
		Units:       maps.UnitsMetric,
		Region:      s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("no route found to %s", postcode)
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	return 2 * float64(meters) / 1000, nil
}
