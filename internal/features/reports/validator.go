package reports

import (
	"strings"

	"github.com/xyz-asif/reportabaches/internal/pkg/geo"
	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

const (
	maxDescriptionLength = 1000
	maxAddressLength     = 200
)

// ValidateCategory checks the tag against the closed category set
func ValidateCategory(category string) (Category, error) {
	c := Category(strings.TrimSpace(category))
	if !c.Valid() {
		return "", apperrors.Validation("unknown category %q", category)
	}
	return c, nil
}

// ValidateStatus accepts an empty status as "any"
func ValidateStatus(status string) (Status, error) {
	s := Status(strings.TrimSpace(status))
	if s == "" {
		return "", nil
	}
	if !s.Valid() {
		return "", apperrors.Validation("unknown status %q", status)
	}
	return s, nil
}

// ValidateLocation requires both coordinates and checks their ranges
func ValidateLocation(lat, lng *float64) (geo.Point, error) {
	if lat == nil || lng == nil {
		return geo.Point{}, apperrors.Validation("location is required")
	}
	p := geo.Point{Latitude: *lat, Longitude: *lng}
	if err := p.Validate(); err != nil {
		return geo.Point{}, apperrors.Validation("%v", err)
	}
	return p, nil
}

func validateCreate(in CreateInput) error {
	if !in.Category.Valid() {
		return apperrors.Validation("unknown category %q", in.Category)
	}
	if err := in.Location.Validate(); err != nil {
		return apperrors.Validation("%v", err)
	}
	if in.Photo == nil || len(in.Photo.Data) == 0 {
		return apperrors.Validation("a photo is required")
	}
	if len(strings.TrimSpace(in.Description)) > maxDescriptionLength {
		return apperrors.Validation("description cannot exceed %d characters", maxDescriptionLength)
	}
	if len(strings.TrimSpace(in.Address)) > maxAddressLength {
		return apperrors.Validation("address cannot exceed %d characters", maxAddressLength)
	}
	return nil
}
