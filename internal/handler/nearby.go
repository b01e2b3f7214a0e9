package handler

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/sakif/dongne/internal/geo"
	"github.com/sakif/dongne/internal/model"
	"github.com/sakif/dongne/internal/service"
)

const locationQueryMessage = "Valid currentLat and currentLon are required query parameters."

// NearbyHandler serves the neighborhood feeds under /posts/nearby*.
//
// A region that cannot be resolved is not an error: the feed comes back
// empty with the sentinel label in place of the region name.
type NearbyHandler struct {
	feeds  *service.NeighborhoodService
	logger *slog.Logger
}

func NewNearbyHandler(feeds *service.NeighborhoodService, logger *slog.Logger) *NearbyHandler {
	return &NearbyHandler{feeds: feeds, logger: logger}
}

type nearbyResponse struct {
	Message       string       `json:"message"`
	YourLocation  geo.Point    `json:"yourLocation"`
	YourAdminDong string       `json:"yourAdminDong"`
	NearbyPosts   []model.Post `json:"nearbyPosts"`
}

type nearbyUpperResponse struct {
	Message            string       `json:"message"`
	YourLocation       geo.Point    `json:"yourLocation"`
	YourUpperAdminDong string       `json:"yourUpperAdminDong"`
	NearbyPosts        []model.Post `json:"nearbyPosts"`
}

type viewportResponse struct {
	Message         string       `json:"message"`
	Viewport        geo.Viewport `json:"viewport"`
	PostsInViewport []model.Post `json:"postsInViewport"`
}

type radiusResponse struct {
	Message      string       `json:"message"`
	YourLocation geo.Point    `json:"yourLocation"`
	RadiusKm     float64      `json:"radiusKm"`
	NearbyPosts  []model.Post `json:"nearbyPosts"`
}

// HandleNearby lists posts stamped with the caller's own region.
//
// HTTP: GET /posts/nearby?currentLat=36.35&currentLon=127.38
func (h *NearbyHandler) HandleNearby(w http.ResponseWriter, r *http.Request) {
	at, err := currentLocation(r)
	if err != nil {
		writeError(w, err)
		return
	}

	feed, err := h.feeds.ByRegion(r.Context(), at)
	if err != nil {
		writeError(w, err)
		return
	}

	label := feed.Region.String()
	message := fmt.Sprintf("Posts for your neighborhood (%s)", label)
	if !feed.Region.OK() {
		message = fmt.Sprintf("Could not determine your neighborhood. %s", label)
	}

	writeJSON(w, http.StatusOK, nearbyResponse{
		Message:       message,
		YourLocation:  feed.Location,
		YourAdminDong: label,
		NearbyPosts:   feed.Posts,
	})
}

// HandleNearbyUpper lists posts stamped with the caller's parent region.
//
// HTTP: GET /posts/nearbyupper?currentLat=36.35&currentLon=127.38
func (h *NearbyHandler) HandleNearbyUpper(w http.ResponseWriter, r *http.Request) {
	at, err := currentLocation(r)
	if err != nil {
		writeError(w, err)
		return
	}

	feed, err := h.feeds.ByUpperRegion(r.Context(), at)
	if err != nil {
		writeError(w, err)
		return
	}

	label := feed.Region.String()
	message := fmt.Sprintf("Posts for your upper neighborhood (%s)", label)
	if !feed.Region.OK() {
		message = fmt.Sprintf("Could not determine your upper neighborhood. %s", label)
	}

	writeJSON(w, http.StatusOK, nearbyUpperResponse{
		Message:            message,
		YourLocation:       feed.Location,
		YourUpperAdminDong: label,
		NearbyPosts:        feed.Posts,
	})
}

// HandleViewport lists posts inside a map rectangle. No geocoding happens.
//
// HTTP: GET /posts/nearbyviewport?centerLat=&centerLon=&deltaLat=&deltaLon=
func (h *NearbyHandler) HandleViewport(w http.ResponseWriter, r *http.Request) {
	vals, err := requireQueryFloats(r,
		"Valid centerLat, centerLon, deltaLat and deltaLon are required query parameters.",
		"centerLat", "centerLon", "deltaLat", "deltaLon")
	if err != nil {
		writeError(w, err)
		return
	}
	v := geo.Viewport{CenterLat: vals[0], CenterLon: vals[1], DeltaLat: vals[2], DeltaLon: vals[3]}

	posts, err := h.feeds.InViewport(r.Context(), v)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewportResponse{
		Message:         "Posts within the specified viewport.",
		Viewport:        v,
		PostsInViewport: posts,
	})
}

// HandleRadius lists posts within radiusKm of the caller. radiusKm is
// optional and falls back to the configured default.
//
// HTTP: GET /posts/nearbyradius?currentLat=&currentLon=&radiusKm=
func (h *NearbyHandler) HandleRadius(w http.ResponseWriter, r *http.Request) {
	at, err := currentLocation(r)
	if err != nil {
		writeError(w, err)
		return
	}
	radius, err := queryFloat(r, "radiusKm")
	if err != nil {
		writeError(w, err)
		return
	}
	if math.IsNaN(radius) {
		radius = 0
	}

	feed, err := h.feeds.WithinRadius(r.Context(), at, radius)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, radiusResponse{
		Message:      fmt.Sprintf("Posts within %g km of your location.", feed.RadiusKm),
		YourLocation: feed.Location,
		RadiusKm:     feed.RadiusKm,
		NearbyPosts:  feed.Posts,
	})
}

func currentLocation(r *http.Request) (geo.Point, error) {
	vals, err := requireQueryFloats(r, locationQueryMessage, "currentLat", "currentLon")
	if err != nil {
		return geo.Point{}, err
	}
	return geo.Point{Lat: vals[0], Lon: vals[1]}, nil
}
