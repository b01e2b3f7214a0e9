package handler_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/dongne/internal/region"
)

func TestAuthHandler_Onboard(t *testing.T) {
	t.Run("creates user with resolved region", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.doJSON(t, http.MethodPost, "/auth/onboard", map[string]any{
			"nickname": "nabi", "lat": 36.3504, "lon": 127.3845,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var res struct {
			Message   string  `json:"message"`
			UserID    string  `json:"userId"`
			Nickname  string  `json:"nickname"`
			Lat       float64 `json:"lat"`
			Lon       float64 `json:"lon"`
			AdminDong string  `json:"adminDong"`
		}
		decode(t, rr, &res)
		assert.Equal(t, "User onboarded successfully!", res.Message)
		assert.NotEmpty(t, res.UserID)
		assert.Equal(t, "nabi", res.Nickname)
		assert.Equal(t, 36.3504, res.Lat)
		assert.Equal(t, 127.3845, res.Lon)
		assert.Equal(t, dunsanFine, res.AdminDong)
	})

	t.Run("geocoder failure still onboards with sentinel", func(t *testing.T) {
		env := newTestEnv(t)
		env.provider.err = errors.New("connection refused")

		rr := env.doJSON(t, http.MethodPost, "/auth/onboard", map[string]any{
			"nickname": "nabi", "lat": 36.3504, "lon": 127.3845,
		})
		require.Equal(t, http.StatusCreated, rr.Code)

		var res struct {
			AdminDong string `json:"adminDong"`
		}
		decode(t, rr, &res)
		assert.Equal(t, region.SentinelCallFailed, res.AdminDong)
	})

	t.Run("zero coordinates are accepted", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.doJSON(t, http.MethodPost, "/auth/onboard", map[string]any{
			"nickname": "equator", "lat": 0, "lon": 0,
		})
		assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t)
		for name, body := range map[string]map[string]any{
			"no nickname": {"lat": 36.35, "lon": 127.38},
			"no lat":      {"nickname": "nabi", "lon": 127.38},
			"no lon":      {"nickname": "nabi", "lat": 36.35},
		} {
			rr := env.doJSON(t, http.MethodPost, "/auth/onboard", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, name)
			assert.Equal(t, "validation_error", errorBody(t, rr).Error, name)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, http.MethodPost, "/auth/onboard", strings.NewReader(`{"nickname":`), "application/json")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate nickname", func(t *testing.T) {
		env := newTestEnv(t)
		env.onboard(t, "nabi")

		rr := env.doJSON(t, http.MethodPost, "/auth/onboard", map[string]any{
			"nickname": "nabi", "lat": 37.5, "lon": 127.0,
		})
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Nickname already exists. Please choose another.", errorBody(t, rr).Message)
	})
}

func TestAuthHandler_UpdateLocation(t *testing.T) {
	t.Run("re-resolves region", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.onboard(t, "nabi")

		rr := env.doJSON(t, http.MethodPost, "/auth/update-location", map[string]any{
			"userId": userID, "lat": 36.36, "lon": 127.39,
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var res struct {
			AdminDong string `json:"adminDong"`
		}
		decode(t, rr, &res)
		assert.Equal(t, dunsanFine, res.AdminDong)
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.doJSON(t, http.MethodPost, "/auth/update-location", map[string]any{
			"userId": "ghost", "lat": 36.36, "lon": 127.39,
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("missing userId", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.doJSON(t, http.MethodPost, "/auth/update-location", map[string]any{
			"lat": 36.36, "lon": 127.39,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_CheckNickname(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "nabi")

	tests := []struct {
		query string
		want  bool
	}{
		{"nabi", false},
		{"horangi", true},
	}
	for _, tt := range tests {
		rr := env.do(t, http.MethodGet, "/auth/check-nickname?nickname="+tt.query, nil, "")
		require.Equal(t, http.StatusOK, rr.Code)

		var res struct {
			IsAvailable bool `json:"isAvailable"`
		}
		decode(t, rr, &res)
		assert.Equal(t, tt.want, res.IsAvailable, tt.query)
	}

	rr := env.do(t, http.MethodGet, "/auth/check-nickname", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
