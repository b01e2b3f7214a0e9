// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services here add one more collaborator next to the repositories: the
// region resolver, which turns a coordinate into region labels by asking an
// external geocoder. Writes that move a coordinate (onboarding, location
// update, post creation) stamp those labels onto the stored row; the
// neighborhood queries use them as match keys.
//
// ENRICHMENT IS BEST-EFFORT:
// A failed lookup never fails the write. The resolver returns a region.Result
// whose Status says what went wrong, and the row stores Result.String() (the
// wire sentinel) in place of a real label. Read paths branch on Result.OK(),
// never on the string.
//
// DEPENDENCY INJECTION:
// Every service takes interfaces (repository.*, RegionResolver, ImageRemover)
// and a *slog.Logger. Tests pass in-memory fakes; server.New passes SQLite,
// the Kakao-backed resolver and the upload store.
package service

import (
	"context"

	"github.com/sakif/dongne/internal/region"
)

// Validation limits.
const (
	MaxNicknameLength = 30
	MaxTitleLength    = 200
	MaxContentLength  = 10000
	MaxCommentLength  = 1000
)

// RegionResolver is what services need from region.Resolver.
//
// It is declared here, on the consumer side, so tests can swap in a stub that
// returns canned results without any HTTP.
type RegionResolver interface {
	ResolveFine(ctx context.Context, lon, lat float64) region.Result
	ResolveCoarse(ctx context.Context, lon, lat float64) region.Result
	Resolve(ctx context.Context, lon, lat float64) (fine, coarse region.Result)
}

var _ RegionResolver = (*region.Resolver)(nil)

// ImageRemover deletes a previously stored image given its public URL.
// upload.Store implements it.
type ImageRemover interface {
	Remove(url string) error
}
