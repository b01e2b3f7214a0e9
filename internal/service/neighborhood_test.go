package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/dongne/internal/apperror"
	"github.com/sakif/dongne/internal/geo"
	"github.com/sakif/dongne/internal/model"
	"github.com/sakif/dongne/internal/region"
)

const (
	dunsan1 = "대전광역시 서구 둔산1동"
	dunsan2 = "대전광역시 서구 둔산2동"
	seoGu   = "대전광역시 서구"
)

// addPost stores a post straight into the mock with the given labels and
// coordinate.
func addPost(t *testing.T, posts *mockPostRepo, fine, coarse string, lat, lon float64) *model.Post {
	t.Helper()
	p := &model.Post{UserID: "user-1", Title: "t", AdminDong: fine, UpperAdminDong: coarse, Lat: lat, Lon: lon}
	require.NoError(t, posts.Create(context.Background(), p))
	return p
}

func newTestNeighborhood(resolver *stubResolver) (*NeighborhoodService, *mockPostRepo) {
	posts := newMockPostRepo()
	return NewNeighborhoodService(posts, resolver, 0, testLogger()), posts
}

func TestByRegion_MatchesFineLabel(t *testing.T) {
	svc, posts := newTestNeighborhood(resolvedTo(dunsan1, seoGu))
	older := addPost(t, posts, dunsan1, seoGu, 36.351, 127.385)
	addPost(t, posts, dunsan2, seoGu, 36.352, 127.386)
	newer := addPost(t, posts, dunsan1, seoGu, 36.350, 127.384)

	at := geo.Point{Lat: 36.3504, Lon: 127.3845}
	feed, err := svc.ByRegion(context.Background(), at)
	require.NoError(t, err)

	assert.Equal(t, at, feed.Location)
	assert.True(t, feed.Region.OK())
	assert.Equal(t, dunsan1, feed.Region.Label)
	assert.Equal(t, []string{newer.ID, older.ID}, postIDs(feed.Posts))
}

func TestByRegion_UnresolvedIsEmpty(t *testing.T) {
	for _, status := range []region.Status{region.CallFailed, region.NotFound} {
		t.Run(status.String(), func(t *testing.T) {
			svc, posts := newTestNeighborhood(failingResolver(status))
			// A post stored with the same sentinel must not match.
			addPost(t, posts, region.Result{Depth: region.Fine, Status: status}.String(), seoGu, 0, 0)

			feed, err := svc.ByRegion(context.Background(), geo.Point{})
			require.NoError(t, err)

			assert.False(t, feed.Region.OK())
			assert.NotNil(t, feed.Posts)
			assert.Empty(t, feed.Posts)
		})
	}
}

func TestByUpperRegion_MatchesCoarseLabel(t *testing.T) {
	svc, posts := newTestNeighborhood(resolvedTo(dunsan1, seoGu))
	a := addPost(t, posts, dunsan1, seoGu, 36.351, 127.385)
	b := addPost(t, posts, dunsan2, seoGu, 36.352, 127.386)
	addPost(t, posts, "서울특별시 중구 명동", "서울특별시 중구", 37.56, 126.98)

	feed, err := svc.ByUpperRegion(context.Background(), geo.Point{Lat: 36.35, Lon: 127.38})
	require.NoError(t, err)

	assert.Equal(t, region.Coarse, feed.Region.Depth)
	assert.Equal(t, []string{b.ID, a.ID}, postIDs(feed.Posts))
}

func TestByUpperRegion_Unresolved(t *testing.T) {
	svc, posts := newTestNeighborhood(failingResolver(region.NotFound))
	addPost(t, posts, dunsan1, seoGu, 36.351, 127.385)

	feed, err := svc.ByUpperRegion(context.Background(), geo.Point{})
	require.NoError(t, err)

	assert.Equal(t, region.SentinelCoarseNotFound, feed.Region.String())
	assert.Empty(t, feed.Posts)
}

func TestByRegion_StorageError(t *testing.T) {
	svc, posts := newTestNeighborhood(resolvedTo(dunsan1, seoGu))
	posts.err = errStorage

	_, err := svc.ByRegion(context.Background(), geo.Point{})
	assert.ErrorIs(t, err, errStorage)
}

func TestInViewport_KeepsPostsInsideBox(t *testing.T) {
	svc, posts := newTestNeighborhood(resolvedTo(dunsan1, seoGu))
	center := geo.Point{Lat: 36.3504, Lon: 127.3845}

	// Five posts scattered inside a ~1km box around center, two outside.
	var inside []string
	for _, off := range [][2]float64{{0, 0}, {0.004, 0.005}, {-0.004, -0.005}, {0.0045, -0.0055}, {-0.002, 0.003}} {
		p := addPost(t, posts, dunsan1, seoGu, center.Lat+off[0], center.Lon+off[1])
		inside = append([]string{p.ID}, inside...) // newest first
	}
	addPost(t, posts, dunsan1, seoGu, center.Lat+0.02, center.Lon)
	addPost(t, posts, dunsan1, seoGu, center.Lat, center.Lon-0.02)

	got, err := svc.InViewport(context.Background(), geo.Viewport{
		CenterLat: center.Lat, CenterLon: center.Lon, DeltaLat: 0.009, DeltaLon: 0.0112,
	})
	require.NoError(t, err)
	assert.Equal(t, inside, postIDs(got))
}

func TestInViewport_Antimeridian(t *testing.T) {
	svc, posts := newTestNeighborhood(resolvedTo(dunsan1, seoGu))
	east := addPost(t, posts, "", "", 0, 178)
	west := addPost(t, posts, "", "", 0, -180)
	addPost(t, posts, "", "", 0, 170)

	got, err := svc.InViewport(context.Background(), geo.Viewport{CenterLat: 0, CenterLon: 179, DeltaLat: 2, DeltaLon: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{west.ID, east.ID}, postIDs(got))
}

func TestInViewport_InvalidViewport(t *testing.T) {
	svc, _ := newTestNeighborhood(resolvedTo(dunsan1, seoGu))

	tests := []geo.Viewport{
		{CenterLat: math.NaN(), CenterLon: 1, DeltaLat: 1, DeltaLon: 1},
		{CenterLat: 1, CenterLon: 1, DeltaLat: -1, DeltaLon: 1},
		{CenterLat: 1, CenterLon: 1, DeltaLat: 1, DeltaLon: -0.1},
	}
	for _, v := range tests {
		_, err := svc.InViewport(context.Background(), v)
		assert.True(t, errors.Is(err, apperror.ErrValidation), "viewport %+v: error = %v", v, err)
	}
}

func TestInViewport_NeverCallsGeocoder(t *testing.T) {
	resolver := resolvedTo(dunsan1, seoGu)
	svc, _ := newTestNeighborhood(resolver)

	_, err := svc.InViewport(context.Background(), geo.Viewport{DeltaLat: 1, DeltaLon: 1})
	require.NoError(t, err)
	assert.Zero(t, resolver.calls)
}

func TestWithinRadius(t *testing.T) {
	svc, posts := newTestNeighborhood(resolvedTo(dunsan1, seoGu))
	at := geo.Point{Lat: 36.3504, Lon: 127.3845}
	near := addPost(t, posts, "", "", 36.3600, 127.3845)  // ~1.07 km north
	addPost(t, posts, "", "", 36.4504, 127.3845)          // ~11 km north
	nearer := addPost(t, posts, "", "", 36.3504, 127.3850) // ~45 m east

	feed, err := svc.WithinRadius(context.Background(), at, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, feed.RadiusKm)
	assert.Equal(t, []string{nearer.ID, near.ID}, postIDs(feed.Posts))
}

func TestWithinRadius_DefaultRadius(t *testing.T) {
	svc, posts := newTestNeighborhood(resolvedTo(dunsan1, seoGu))
	addPost(t, posts, "", "", 36.3504+0.02, 127.3845) // ~2.2 km

	feed, err := svc.WithinRadius(context.Background(), geo.Point{Lat: 36.3504, Lon: 127.3845}, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultRadiusKm, feed.RadiusKm)
	assert.Len(t, feed.Posts, 1)
}

func TestWithinRadius_MissingLocation(t *testing.T) {
	svc, _ := newTestNeighborhood(resolvedTo(dunsan1, seoGu))

	_, err := svc.WithinRadius(context.Background(), geo.Point{Lat: math.NaN(), Lon: 1}, 1)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
