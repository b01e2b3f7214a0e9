package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/dongne/internal/service"
)

// AuthHandler serves the /auth routes: onboarding, location updates and the
// nickname availability check.
//
// There are no credentials anywhere. Onboarding hands the client a user id,
// and the client sends that id back on every later request that needs one.
type AuthHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewAuthHandler(users *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

type onboardRequest struct {
	Nickname string   `json:"nickname" validate:"required,max=30"`
	Lat      *float64 `json:"lat" validate:"required"`
	Lon      *float64 `json:"lon" validate:"required"`
}

type onboardResponse struct {
	Message   string  `json:"message"`
	UserID    string  `json:"userId"`
	Nickname  string  `json:"nickname"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	AdminDong string  `json:"adminDong"`
}

// HandleOnboard creates a user.
//
// HTTP: POST /auth/onboard
// REQUEST BODY: {"nickname": "nabi", "lat": 36.3504, "lon": 127.3845}
//
// A geocoding failure does not fail onboarding: adminDong then carries the
// failure sentinel string.
func (h *AuthHandler) HandleOnboard(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Onboard(r.Context(), req.Nickname, *req.Lat, *req.Lon)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, onboardResponse{
		Message:   "User onboarded successfully!",
		UserID:    user.ID,
		Nickname:  user.Nickname,
		Lat:       user.Lat,
		Lon:       user.Lon,
		AdminDong: user.AdminDong,
	})
}

type updateLocationRequest struct {
	UserID string   `json:"userId" validate:"required"`
	Lat    *float64 `json:"lat" validate:"required"`
	Lon    *float64 `json:"lon" validate:"required"`
}

type updateLocationResponse struct {
	Message   string `json:"message"`
	AdminDong string `json:"adminDong"`
}

// HandleUpdateLocation moves a user and re-resolves their region.
//
// HTTP: POST /auth/update-location
func (h *AuthHandler) HandleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req updateLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	label, err := h.users.UpdateLocation(r.Context(), req.UserID, *req.Lat, *req.Lon)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updateLocationResponse{
		Message:   "User location updated successfully.",
		AdminDong: label,
	})
}

// HandleCheckNickname answers {"isAvailable": bool}.
//
// HTTP: GET /auth/check-nickname?nickname=nabi
func (h *AuthHandler) HandleCheckNickname(w http.ResponseWriter, r *http.Request) {
	available, err := h.users.CheckNickname(r.Context(), r.URL.Query().Get("nickname"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isAvailable": available})
}
