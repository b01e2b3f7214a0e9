package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/dongne/internal/metrics"
)

// DefaultKakaoBaseURL is the production host of the Kakao Local API.
const DefaultKakaoBaseURL = "https://dapi.kakao.com"

const coord2RegionPath = "/v2/local/geo/coord2regioncode.json"

// kakaoTokenType is the authorization scheme Kakao expects for REST keys:
// "Authorization: KakaoAK <key>".
const kakaoTokenType = "KakaoAK"

// KakaoClient calls the Kakao coord2regioncode endpoint.
//
// AUTHENTICATION:
// Kakao REST keys never expire, so the key is wrapped in an oauth2 static
// token source with a custom token type. oauth2.Transport then stamps the
// "Authorization: KakaoAK <key>" header on every request for us.
type KakaoClient struct {
	baseURL string
	hasKey  bool
	http    *http.Client
	logger  *slog.Logger
}

// KakaoConfig configures a KakaoClient.
type KakaoConfig struct {
	APIKey  string
	BaseURL string        // empty means DefaultKakaoBaseURL
	Timeout time.Duration // per-request HTTP timeout; 0 means none beyond ctx
}

// NewKakaoClient builds a client. An empty APIKey is allowed: every call then
// fails fast with ErrMissingKey, which the region resolver reports as a failed
// call rather than aborting the write.
func NewKakaoClient(cfg KakaoConfig, logger *slog.Logger) *KakaoClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultKakaoBaseURL
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.APIKey,
		TokenType:   kakaoTokenType,
	})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = cfg.Timeout

	return &KakaoClient{
		baseURL: base,
		hasKey:  cfg.APIKey != "",
		http:    httpClient,
		logger:  logger,
	}
}

var _ Provider = (*KakaoClient)(nil)

// kakaoResponse is the subset of the coord2regioncode payload we read.
type kakaoResponse struct {
	Documents []Region `json:"documents"`
}

// kakaoError is the body Kakao sends with non-200 responses.
type kakaoError struct {
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
}

// Regions returns every candidate region (administrative and legal) for the
// coordinate. Kakao takes x = longitude, y = latitude.
func (c *KakaoClient) Regions(ctx context.Context, lon, lat float64) ([]Region, error) {
	if !c.hasKey {
		metrics.GeocodeRequestsTotal.WithLabelValues("missing_key").Inc()
		return nil, ErrMissingKey
	}

	q := url.Values{}
	q.Set("x", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("y", strconv.FormatFloat(lat, 'f', -1, 64))
	u := c.baseURL + coord2RegionPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: building request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.GeocodeDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("geocode: calling kakao: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		var ke kakaoError
		_ = json.NewDecoder(resp.Body).Decode(&ke)
		return nil, fmt.Errorf("geocode: kakao returned status %d: %s %s",
			resp.StatusCode, ke.ErrorType, ke.Message)
	}

	var body kakaoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("geocode: decoding kakao response: %w", err)
	}

	metrics.GeocodeRequestsTotal.WithLabelValues("ok").Inc()
	c.logger.Debug("kakao regions",
		slog.Float64("lon", lon),
		slog.Float64("lat", lat),
		slog.Int("candidates", len(body.Documents)),
		slog.Duration("duration", time.Since(start)),
	)
	return body.Documents, nil
}
