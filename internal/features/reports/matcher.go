package reports

import (
	"context"
	"math"

	"github.com/xyz-asif/reportabaches/internal/pkg/geo"
	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

// DefaultRadiusMeters is the duplicate detection radius used when none is given.
const DefaultRadiusMeters = 20.0

// Matcher finds open reports of the same category around a point.
type Matcher struct {
	store  Store
	radius float64
	log    *logger.Logger
}

// NewMatcher builds a Matcher. A non-positive radius falls back to DefaultRadiusMeters.
func NewMatcher(store Store, radius float64, log *logger.Logger) *Matcher {
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}
	return &Matcher{store: store, radius: radius, log: log}
}

// Radius returns the default radius in meters.
func (m *Matcher) Radius() float64 { return m.radius }

// FindNearbyOpenReports returns the unresolved reports of category within
// radius meters of location. A zero radius means the matcher default.
//
// Only invalid input is reported as an error. A failing store yields an empty
// result so that duplicate detection never blocks report creation.
func (m *Matcher) FindNearbyOpenReports(ctx context.Context, location geo.Point, category Category, radius float64) ([]Report, error) {
	if err := location.Validate(); err != nil {
		return nil, apperrors.Validation("%v", err)
	}
	if !category.Valid() {
		return nil, apperrors.Validation("unknown category %q", category)
	}
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, apperrors.Validation("radius must be a positive number of meters")
	}
	if radius == 0 {
		radius = m.radius
	}

	// Category equality is the only filter sent to the store; status and
	// distance are checked here.
	candidates, err := m.store.FindByCategory(ctx, category)
	if err != nil {
		m.log.Warn("duplicate check for %s skipped: %v", category, err)
		return []Report{}, nil
	}

	nearby := make([]Report, 0)
	for _, r := range candidates {
		if r.IsResolved() {
			continue
		}
		if geo.Within(location, r.Location, radius) {
			nearby = append(nearby, r)
		}
	}
	return nearby, nil
}
