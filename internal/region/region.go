// Package region turns coordinates into administrative-region labels.
//
// TWO DEPTHS:
//   - Fine:   the finest administrative unit ("admin dong"), e.g. "대전광역시 서구 둔산1동"
//   - Coarse: the parent grouping ("upper admin dong"), "<depth1> <depth2>", e.g. "대전광역시 서구"
//
// FAILURE IS DATA:
// Resolution never returns an error. A failed lookup produces a Result with a
// non-OK Status so that write paths can store it and carry on. Callers branch
// on Result.OK(); the legacy sentinel strings only appear when a Result is
// rendered with String() for storage or JSON.
package region

import (
	"context"
	"log/slog"
	"time"

	"github.com/sakif/dongne/internal/geocode"
	"github.com/sakif/dongne/internal/metrics"
)

// Depth selects which label a Result describes.
type Depth int

const (
	Fine Depth = iota
	Coarse
)

func (d Depth) String() string {
	if d == Coarse {
		return "coarse"
	}
	return "fine"
}

// Status is the outcome of a resolution.
type Status int

const (
	Resolved   Status = iota
	CallFailed        // provider unreachable, misconfigured, timed out or answered garbage
	NotFound          // provider answered but had no usable candidate
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case CallFailed:
		return "call_failed"
	default:
		return "not_found"
	}
}

// Wire sentinels. These exact strings are what older clients and already
// stored rows contain for unresolved labels.
const (
	SentinelCallFailed     = "API 호출 중 오류가 발생했거나 API 키가 설정되지 않았습니다."
	SentinelFineNotFound   = "행정동 주소를 찾을 수 없습니다."
	SentinelCoarseNotFound = "상위 행정동 주소를 찾을 수 없습니다."
)

// Result is a tagged label: either Resolved with a Label, or a failure.
type Result struct {
	Depth  Depth
	Status Status
	Label  string // set only when Status == Resolved
}

// OK reports whether the label was resolved.
func (r Result) OK() bool {
	return r.Status == Resolved
}

// String renders the value that is persisted and sent to clients.
func (r Result) String() string {
	switch r.Status {
	case Resolved:
		return r.Label
	case CallFailed:
		return SentinelCallFailed
	}
	if r.Depth == Coarse {
		return SentinelCoarseNotFound
	}
	return SentinelFineNotFound
}

// IsSentinel reports whether a stored label is one of the failure sentinels.
func IsSentinel(label string) bool {
	switch label {
	case SentinelCallFailed, SentinelFineNotFound, SentinelCoarseNotFound:
		return true
	}
	return false
}

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 5 * time.Second

// Resolver wraps a geocode.Provider. It holds no cache: every call queries the
// provider again.
type Resolver struct {
	provider geocode.Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewResolver creates a Resolver. A timeout <= 0 uses DefaultTimeout.
func NewResolver(provider geocode.Provider, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// ResolveFine returns the fine label for (lon, lat): the address name of the
// first administrative candidate. Legal candidates are never used here.
func (r *Resolver) ResolveFine(ctx context.Context, lon, lat float64) Result {
	regions, err := r.lookup(ctx, lon, lat)
	return r.record(lon, lat, fineFrom(regions, err), err)
}

// ResolveCoarse returns the coarse label for (lon, lat), preferring an
// administrative candidate and falling back to a legal one.
func (r *Resolver) ResolveCoarse(ctx context.Context, lon, lat float64) Result {
	regions, err := r.lookup(ctx, lon, lat)
	return r.record(lon, lat, coarseFrom(regions, err), err)
}

// Resolve returns both labels from a single provider call.
func (r *Resolver) Resolve(ctx context.Context, lon, lat float64) (fine, coarse Result) {
	regions, err := r.lookup(ctx, lon, lat)
	fine = r.record(lon, lat, fineFrom(regions, err), err)
	coarse = r.record(lon, lat, coarseFrom(regions, err), err)
	return fine, coarse
}

func (r *Resolver) lookup(ctx context.Context, lon, lat float64) ([]geocode.Region, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.provider.Regions(ctx, lon, lat)
}

func (r *Resolver) record(lon, lat float64, res Result, err error) Result {
	metrics.RegionResolutionsTotal.WithLabelValues(res.Depth.String(), res.Status.String()).Inc()
	if !res.OK() {
		attrs := []any{
			slog.String("depth", res.Depth.String()),
			slog.String("status", res.Status.String()),
			slog.Float64("lon", lon),
			slog.Float64("lat", lat),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		r.logger.Warn("region unresolved", attrs...)
	}
	return res
}

func fineFrom(regions []geocode.Region, err error) Result {
	if err != nil {
		return Result{Depth: Fine, Status: CallFailed}
	}
	if admin, ok := geocode.FindKind(regions, geocode.KindAdministrative); ok {
		return Result{Depth: Fine, Status: Resolved, Label: admin.AddressName}
	}
	return Result{Depth: Fine, Status: NotFound}
}

func coarseFrom(regions []geocode.Region, err error) Result {
	if err != nil {
		return Result{Depth: Coarse, Status: CallFailed}
	}
	cand, ok := geocode.FindKind(regions, geocode.KindAdministrative)
	if !ok {
		cand, ok = geocode.FindKind(regions, geocode.KindLegal)
	}
	if !ok {
		return Result{Depth: Coarse, Status: NotFound}
	}
	return Result{Depth: Coarse, Status: Resolved, Label: cand.Depth1Name + " " + cand.Depth2Name}
}
