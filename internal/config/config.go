// Package config reads the server configuration from the environment.
//
// A .env file in the working directory is loaded first (via godotenv) when it
// exists. Variables already set in the real environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything cmd/server needs to build a server.
type Config struct {
	Port            int
	DBPath          string
	UploadDir       string
	PublicBaseURL   string
	MaxUploadBytes  int64
	KakaoAPIKey     string
	KakaoBaseURL    string
	GeocoderTimeout time.Duration
	NearbyRadiusKm  float64
	LogLevel        string
	LogFormat       string
}

// Defaults.
const (
	DefaultPort            = 3000
	DefaultDBPath          = "data/database.sqlite"
	DefaultUploadDir       = "public/uploads"
	DefaultMaxUploadBytes  = 5 << 20
	DefaultKakaoBaseURL    = "https://dapi.kakao.com"
	DefaultGeocoderTimeout = 5 * time.Second
	DefaultNearbyRadiusKm  = 3.0
)

// Load reads files (default ".env") into the process environment, skipping
// ones that do not exist, and then builds a Config from it.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: loading %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup. Unset or empty variables take their
// default; set but malformed ones are an error naming the variable.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		DBPath:       orDefault(get("DB_PATH"), DefaultDBPath),
		UploadDir:    orDefault(get("UPLOAD_DIR"), DefaultUploadDir),
		KakaoBaseURL: orDefault(get("KAKAO_BASE_URL"), DefaultKakaoBaseURL),
		LogLevel:     orDefault(get("LOG_LEVEL"), "info"),
		LogFormat:    orDefault(get("LOG_FORMAT"), "text"),
		// REST_API_KEY is the name older deployments used.
		KakaoAPIKey: orDefault(get("KAKAO_REST_API_KEY"), get("REST_API_KEY")),
	}

	var err error
	if cfg.Port, err = intVar(get, "PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: PORT %d is out of range", cfg.Port)
	}

	maxUpload, err := intVar(get, "MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)
	if err != nil {
		return nil, err
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive, got %d", maxUpload)
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if v := get("GEOCODER_TIMEOUT"); v != "" {
		cfg.GeocoderTimeout, err = time.ParseDuration(v)
		if err != nil || cfg.GeocoderTimeout <= 0 {
			return nil, fmt.Errorf("config: GEOCODER_TIMEOUT %q is not a positive duration", v)
		}
	} else {
		cfg.GeocoderTimeout = DefaultGeocoderTimeout
	}

	cfg.NearbyRadiusKm = DefaultNearbyRadiusKm
	if v := get("NEARBY_RADIUS_KM"); v != "" {
		cfg.NearbyRadiusKm, err = strconv.ParseFloat(v, 64)
		if err != nil || cfg.NearbyRadiusKm <= 0 {
			return nil, fmt.Errorf("config: NEARBY_RADIUS_KM %q is not a positive number", v)
		}
	}

	cfg.PublicBaseURL = strings.TrimRight(
		orDefault(get("PUBLIC_BASE_URL"), fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")

	return cfg, nil
}

func intVar(get func(string) string, key string, def int) (int, error) {
	v := get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s %q is not an integer", key, v)
	}
	return n, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
