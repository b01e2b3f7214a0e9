// Package upload stores images that come in with multipart requests and
// hands back the public URL they are served from.
//
// Files live flat in one directory and are named
//
//	image-<unix millis>-<uuid><ext>
//
// The server exposes that directory under /uploads/, so a stored file's URL
// is <PUBLIC_BASE_URL>/uploads/<name>.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // registers the webp decoder with image.Decode

	"github.com/sakif/dongne/internal/apperror"
)

// DefaultMaxBytes caps a single image at 5MB.
const DefaultMaxBytes = 5 << 20

// URLPrefix is the path the upload directory is served under.
const URLPrefix = "/uploads/"

// Store writes uploaded images to a directory on disk.
type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates dir if needed. baseURL is the public origin of the server,
// e.g. "http://localhost:3000". maxBytes <= 0 uses DefaultMaxBytes.
func NewStore(dir, baseURL string, maxBytes int64, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: creating %s: %w", dir, err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Store{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// MaxBytes is the per-image size limit.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates fh as an image and writes it to disk. It returns the public
// URL of the stored file.
//
// Validation errors (not an image, too big, undecodable) are
// apperror.ErrValidation so the handler answers 400.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", apperror.ValidationFailed("image",
			fmt.Sprintf("image must be %d bytes or smaller", s.maxBytes))
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return "", apperror.ValidationFailed("image", "Only image files are allowed!")
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("upload: opening %s: %w", fh.Filename, err)
	}
	defer f.Close()

	// Read one byte past the limit so an understated Size cannot sneak a
	// larger body through.
	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("upload: reading %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperror.ValidationFailed("image",
			fmt.Sprintf("image must be %d bytes or smaller", s.maxBytes))
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", apperror.ValidationFailed("image", "file is not a supported image")
	}
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return "", apperror.ValidationFailed("image", "image data is corrupt")
	}

	name := fmt.Sprintf("image-%d-%s%s", s.now().UnixMilli(), uuid.NewString(), extension(fh.Filename, format))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("upload: writing %s: %w", name, err)
	}

	s.logger.Debug("image stored",
		slog.String("file", name),
		slog.String("format", format),
		slog.Int("bytes", len(data)),
	)
	return s.baseURL + URLPrefix + name, nil
}

// Remove deletes the file behind a URL returned by Save. URLs that do not
// point into this store, and files that are already gone, are ignored.
func (s *Store) Remove(url string) error {
	if !strings.HasPrefix(url, s.baseURL+URLPrefix) {
		return nil
	}
	name := path.Base(url)
	if !strings.HasPrefix(name, "image-") || strings.ContainsAny(name, `/\`) {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("upload: removing %s: %w", name, err)
	}
	return nil
}

// Handler serves stored files. Mount it under URLPrefix.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(http.Dir(s.dir)))
}

// extension keeps the client's extension when it is a plain short suffix and
// falls back to the decoded format name otherwise.
func extension(filename, format string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) >= 2 && len(ext) <= 6 && isAlnum(ext[1:]) {
		return ext
	}
	return "." + format
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
