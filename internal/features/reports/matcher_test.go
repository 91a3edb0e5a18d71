package reports

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xyz-asif/reportabaches/internal/pkg/geo"
	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

func seed(store *memStore, id string, category Category, status Status, at geo.Point) {
	store.put(Report{ID: id, Category: category, Status: status, Location: at})
}

func ids(reports []Report) []string {
	out := make([]string, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.ID)
	}
	return out
}

func TestFindNearbyExcludesResolved(t *testing.T) {
	f := newFixture()
	seed(f.store, "a", CategoryPotholes, StatusPending, plaza)
	seed(f.store, "b", CategoryPotholes, StatusInProgress, plaza)
	seed(f.store, "c", CategoryPotholes, StatusResolved, plaza)

	got, err := f.matcher.FindNearbyOpenReports(context.Background(), plaza, CategoryPotholes, 0)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, ids(got))
	for _, r := range got {
		require.NotEqual(t, StatusResolved, r.Status)
	}
}

func TestFindNearbyFiltersCategoryAndDistance(t *testing.T) {
	f := newFixture()
	seed(f.store, "near", CategoryPotholes, StatusPending, north(plaza, 10))
	seed(f.store, "far", CategoryPotholes, StatusPending, north(plaza, 25))
	seed(f.store, "other", CategoryGarbage, StatusPending, plaza)

	got, err := f.matcher.FindNearbyOpenReports(context.Background(), plaza, CategoryPotholes, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"near"}, ids(got))

	got, err = f.matcher.FindNearbyOpenReports(context.Background(), plaza, CategoryPotholes, 30)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"near", "far"}, ids(got))
}

func TestFindNearbyRadiusBoundary(t *testing.T) {
	f := newFixture()
	target := north(plaza, 15)
	seed(f.store, "edge", CategoryTrees, StatusPending, target)
	r := geo.Distance(plaza, target)

	got, err := f.matcher.FindNearbyOpenReports(context.Background(), plaza, CategoryTrees, r)
	require.NoError(t, err)
	require.Len(t, got, 1, "distance equal to the radius is included")

	got, err = f.matcher.FindNearbyOpenReports(context.Background(), plaza, CategoryTrees, r-1e-6)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = f.matcher.FindNearbyOpenReports(context.Background(), plaza, CategoryTrees, r+1e-6)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestFindNearbyStoreFailureYieldsEmpty(t *testing.T) {
	f := newFixture()
	seed(f.store, "a", CategoryPotholes, StatusPending, plaza)
	f.store.findErr = errStoreDown

	got, err := f.matcher.FindNearbyOpenReports(context.Background(), plaza, CategoryPotholes, 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestFindNearbyRejectsInvalidInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.matcher.FindNearbyOpenReports(ctx, geo.Point{Latitude: 91}, CategoryPotholes, 0)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.matcher.FindNearbyOpenReports(ctx, plaza, Category("volcanoes"), 0)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.matcher.FindNearbyOpenReports(ctx, plaza, CategoryPotholes, -5)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	for _, radius := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = f.matcher.FindNearbyOpenReports(ctx, plaza, CategoryPotholes, radius)
		require.ErrorIs(t, err, apperrors.ErrValidation, "radius %v", radius)
	}
}

func TestNewMatcherDefaultsRadius(t *testing.T) {
	require.Equal(t, DefaultRadiusMeters, NewMatcher(newMemStore(), 0, testLogger()).Radius())
	require.Equal(t, 50.0, NewMatcher(newMemStore(), 50, testLogger()).Radius())
}
