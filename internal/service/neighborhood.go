package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/sakif/dongne/internal/apperror"
	"github.com/sakif/dongne/internal/geo"
	"github.com/sakif/dongne/internal/model"
	"github.com/sakif/dongne/internal/region"
	"github.com/sakif/dongne/internal/repository"
)

// DefaultRadiusKm is used by WithinRadius when the caller passes no radius.
const DefaultRadiusKm = 3.0

// NeighborhoodService answers "what is near me" with one of four strategies:
//
//   - ByRegion:      posts stamped with the caller's fine region label
//   - ByUpperRegion: posts stamped with the caller's coarse region label
//   - InViewport:    posts whose coordinate lies in a map rectangle
//   - WithinRadius:  posts within a great-circle distance of the caller
//
// All four are read-only and return posts newest first, in the order storage
// hands them back. The region strategies never fall back to a geometric one:
// an unresolved caller location yields an empty list.
type NeighborhoodService struct {
	posts         repository.PostRepository
	resolver      RegionResolver
	defaultRadius float64
	logger        *slog.Logger
}

func NewNeighborhoodService(posts repository.PostRepository, resolver RegionResolver, defaultRadiusKm float64, logger *slog.Logger) *NeighborhoodService {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = DefaultRadiusKm
	}
	return &NeighborhoodService{
		posts:         posts,
		resolver:      resolver,
		defaultRadius: defaultRadiusKm,
		logger:        logger,
	}
}

// RegionFeed is the result of a region strategy: the caller's location, the
// label it resolved to and the matching posts.
type RegionFeed struct {
	Location geo.Point
	Region   region.Result
	Posts    []model.Post
}

// RadiusFeed is the result of WithinRadius.
type RadiusFeed struct {
	Location geo.Point
	RadiusKm float64
	Posts    []model.Post
}

func (s *NeighborhoodService) ByRegion(ctx context.Context, at geo.Point) (*RegionFeed, error) {
	res := s.resolver.ResolveFine(ctx, at.Lon, at.Lat)
	return s.regionFeed(ctx, at, res, s.posts.ListByAdminDong)
}

func (s *NeighborhoodService) ByUpperRegion(ctx context.Context, at geo.Point) (*RegionFeed, error) {
	res := s.resolver.ResolveCoarse(ctx, at.Lon, at.Lat)
	return s.regionFeed(ctx, at, res, s.posts.ListByUpperAdminDong)
}

func (s *NeighborhoodService) regionFeed(
	ctx context.Context,
	at geo.Point,
	res region.Result,
	list func(context.Context, string) ([]model.Post, error),
) (*RegionFeed, error) {
	feed := &RegionFeed{Location: at, Region: res, Posts: []model.Post{}}
	if !res.OK() {
		return feed, nil
	}

	posts, err := list(ctx, res.Label)
	if err != nil {
		s.logger.Error("failed to list posts by region",
			slog.String("depth", res.Depth.String()),
			slog.String("label", res.Label),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing %s region posts: %w", res.Depth, err)
	}
	feed.Posts = posts
	return feed, nil
}

// InViewport scans every post and keeps those inside v.
func (s *NeighborhoodService) InViewport(ctx context.Context, v geo.Viewport) ([]model.Post, error) {
	if !v.Complete() {
		return nil, apperror.ValidationFailed("viewport", "centerLat, centerLon, deltaLat and deltaLon are required")
	}
	if v.DeltaLat < 0 || v.DeltaLon < 0 {
		return nil, apperror.ValidationFailed("viewport", "deltaLat and deltaLon must be non-negative")
	}

	return s.scan(ctx, func(p geo.Point) bool { return v.Contains(p) })
}

// WithinRadius scans every post and keeps those at most radiusKm from at.
// A radiusKm <= 0 uses the configured default.
func (s *NeighborhoodService) WithinRadius(ctx context.Context, at geo.Point, radiusKm float64) (*RadiusFeed, error) {
	if math.IsNaN(at.Lat) || math.IsNaN(at.Lon) {
		return nil, apperror.ValidationFailed("location", "currentLat and currentLon are required")
	}
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		radiusKm = s.defaultRadius
	}

	posts, err := s.scan(ctx, func(p geo.Point) bool { return geo.WithinRadius(at, p, radiusKm) })
	if err != nil {
		return nil, err
	}
	return &RadiusFeed{Location: at, RadiusKm: radiusKm, Posts: posts}, nil
}

// scan is the full-table-scan-then-filter shared by the geometric strategies.
func (s *NeighborhoodService) scan(ctx context.Context, keep func(geo.Point) bool) ([]model.Post, error) {
	all, err := s.posts.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to scan posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("scanning posts: %w", err)
	}

	matched := make([]model.Post, 0, len(all))
	for _, p := range all {
		if keep(geo.Point{Lat: p.Lat, Lon: p.Lon}) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}
