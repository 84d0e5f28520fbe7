// Package mediastore materializes request inputs on disk: uploaded files are
// streamed to the work directory and reference images are downloaded from
// their URL. Every path it hands out is request scoped and removed again by
// Remove once the pipeline is done with it.
package mediastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ICTPass2002kgao/Tact-api-prod/internal/logging"
)

// Errors the handlers map to a 400 response.
var (
	ErrBadURL     = errors.New("reference_url is not a valid http or https URL")
	ErrDownload   = errors.New("reference download failed")
	ErrNotAnImage = errors.New("reference URL did not return an image")
	ErrTooLarge   = errors.New("file exceeds size limit")
)

// Store owns the work directory and the download client.
type Store struct {
	dir      string
	maxBytes int64
	client   *http.Client
	logger   *zap.Logger
}

// New prepares the work directory and returns a Store.
func New(dir string, maxBytes int64, downloadTimeout time.Duration, logger *zap.Logger) (*Store, error) {
	workDir := filepath.Join(dir, "tact-api")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, logging.NewOperationError("mediastore.prepare_workdir", "", err)
	}
	return &Store{
		dir:      workDir,
		maxBytes: maxBytes,
		client:   &http.Client{Timeout: downloadTimeout},
		logger:   logger.Named("mediastore"),
	}, nil
}

// Dir returns the work directory; extraction outputs are written next to
// their inputs so one Remove sweep covers everything.
func (s *Store) Dir() string {
	return s.dir
}

// SaveUpload streams an uploaded file to a temp file, preserving the upload's
// extension so backends that sniff by suffix keep working.
func (s *Store) SaveUpload(fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, fh.Size)
	}

	src, err := fh.Open()
	if err != nil {
		return "", logging.NewOperationError("mediastore.open_upload", "", err)
	}
	defer src.Close()

	ext := sanitizeExt(filepath.Ext(fh.Filename))
	dst, err := os.CreateTemp(s.dir, "upload-*"+ext)
	if err != nil {
		return "", logging.NewOperationError("mediastore.create_temp", "", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", logging.NewOperationError("mediastore.write_upload", "", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", logging.NewOperationError("mediastore.write_upload", "", err)
	}
	return dst.Name(), nil
}

// Download fetches the reference image from rawURL into a temp file. The
// response must be an image and respect the size cap.
func (s *Store) Download(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", ErrBadURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", ErrBadURL
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") &&
		contentType != "application/octet-stream" {
		return "", fmt.Errorf("%w: got %s", ErrNotAnImage, contentType)
	}

	dst, err := os.CreateTemp(s.dir, "reference-*"+extForContentType(contentType))
	if err != nil {
		return "", logging.NewOperationError("mediastore.create_temp", "", err)
	}

	reader := io.Reader(resp.Body)
	if s.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, s.maxBytes+1)
	}
	written, err := io.Copy(dst, reader)
	if err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("%w: over %d bytes", ErrTooLarge, s.maxBytes)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", logging.NewOperationError("mediastore.write_download", "", err)
	}
	return dst.Name(), nil
}

// Remove deletes materialized files best-effort. Missing files are fine.
func (s *Store) Remove(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove temp file", zap.String("path", path), zap.Error(err))
		}
	}
}

func sanitizeExt(ext string) string {
	if len(ext) > 8 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return strings.ToLower(ext)
}

func extForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}
