package providers

import (
	"context"
	"errors"

	"github.com/ringsaturn/tzf"

	"github.com/i474232898/yr-forecast/internal/weather"
)

var errNoTimezone = errors.New("no timezone found for coordinates")

// TZFLookup implements weather.TimezoneLookup with offline timezone polygons.
type TZFLookup struct {
	finder tzf.F
}

// NewTZFLookup loads the polygon set into memory. It is slow; build it once.
func NewTZFLookup() (*TZFLookup, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, err
	}
	return &TZFLookup{finder: finder}, nil
}

func (t *TZFLookup) TimezoneFor(_ context.Context, c weather.Coordinates) (string, error) {
	name := t.finder.GetTimezoneName(c.Lon, c.Lat)
	if name == "" {
		return "", errNoTimezone
	}
	return name, nil
}
