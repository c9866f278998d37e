package geo

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"github.com/standby-inc/standby-api/schema"
)

var (
	ErrNoGeoInfoFound         = fmt.Errorf("no geo information found")
	ErrResolverNotInitialized = fmt.Errorf("location resolver is not initialized")
)

// LocationResolver resolves the country of a coordinate.
type LocationResolver interface {
	GetCountry(schema.Location) (string, error)
}

var defaultResolver LocationResolver

type GeocodingLocationResolver struct {
	client *maps.Client
}

func NewGeocodingLocationResolver(client *maps.Client) *GeocodingLocationResolver {
	return &GeocodingLocationResolver{
		client: client,
	}
}

func (g *GeocodingLocationResolver) GetCountry(loc schema.Location) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	geos, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{
			Lat: loc.Latitude,
			Lng: loc.Longitude,
		},
		ResultType: []string{"country"},
		Language:   "en",
	})
	if err != nil {
		return "", err
	}

	return countryFromGeocode(geos)
}

func countryFromGeocode(geos []maps.GeocodingResult) (string, error) {
	if len(geos) == 0 {
		return "", ErrNoGeoInfoFound
	}

	for _, a := range geos[0].AddressComponents {
		for _, t := range a.Types {
			if t == "country" {
				return a.LongName, nil
			}
		}
	}

	return "", ErrNoGeoInfoFound
}

func SetLocationResolver(resolver LocationResolver) {
	defaultResolver = resolver
}

// Country resolves the country of the given coordinate with the process
// wide resolver.
func Country(loc schema.Location) (string, error) {
	if defaultResolver == nil {
		return "", ErrResolverNotInitialized
	}

	return defaultResolver.GetCountry(loc)
}
