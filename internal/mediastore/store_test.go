package mediastore

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	store, err := New(t.TempDir(), maxBytes, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func buildFileHeader(t *testing.T, filename string, payload []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("failed to write payload: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("failed to read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() }) //nolint:errcheck
	return form.File["file"][0]
}

func TestSaveUploadPreservesExtension(t *testing.T) {
	store := newTestStore(t, 0)

	path, err := store.SaveUpload(buildFileHeader(t, "selfie.PNG", []byte("image-bytes")))
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	defer os.Remove(path)

	if filepath.Ext(path) != ".png" {
		t.Fatalf("expected .png extension, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("unexpected payload: %q", data)
	}
}

func TestSaveUploadRejectsOversizedFile(t *testing.T) {
	store := newTestStore(t, 4)

	_, err := store.SaveUpload(buildFileHeader(t, "big.jpg", []byte("way too large")))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestDownloadWritesImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes")) //nolint:errcheck
	}))
	defer server.Close()

	store := newTestStore(t, 0)
	path, err := store.Download(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	defer os.Remove(path)

	if filepath.Ext(path) != ".jpg" {
		t.Fatalf("expected .jpg extension, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read download: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected payload: %q", data)
	}
}

func TestDownloadRejectsBadURL(t *testing.T) {
	store := newTestStore(t, 0)

	for _, raw := range []string{"", "ftp://host/img.jpg", "not a url", "file:///etc/passwd"} {
		if _, err := store.Download(context.Background(), raw); !errors.Is(err, ErrBadURL) {
			t.Fatalf("url %q: expected ErrBadURL, got %v", raw, err)
		}
	}
}

func TestDownloadRejectsNonImageContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not found</html>")) //nolint:errcheck
	}))
	defer server.Close()

	store := newTestStore(t, 0)
	if _, err := store.Download(context.Background(), server.URL); !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
}

func TestDownloadRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	store := newTestStore(t, 0)
	if _, err := store.Download(context.Background(), server.URL); !errors.Is(err, ErrDownload) {
		t.Fatalf("expected ErrDownload, got %v", err)
	}
}

func TestDownloadEnforcesSizeCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(bytes.Repeat([]byte("a"), 64)) //nolint:errcheck
	}))
	defer server.Close()

	store := newTestStore(t, 16)
	if _, err := store.Download(context.Background(), server.URL); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	leftovers, err := filepath.Glob(filepath.Join(store.Dir(), "reference-*"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("expected no leftover files, got %v", leftovers)
	}
}

func TestRemoveIsBestEffort(t *testing.T) {
	store := newTestStore(t, 0)

	path := filepath.Join(store.Dir(), "gone.jpg")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	store.Remove(path, "", filepath.Join(store.Dir(), "never-existed.jpg"))

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected file removed, stat err: %v", err)
	}
}

func TestSanitizeExt(t *testing.T) {
	if got := sanitizeExt(".JPG"); got != ".jpg" {
		t.Fatalf("expected .jpg, got %s", got)
	}
	if got := sanitizeExt("." + strings.Repeat("x", 16)); got != "" {
		t.Fatalf("expected long extension dropped, got %s", got)
	}
	if got := sanitizeExt(".a/b"); got != "" {
		t.Fatalf("expected slash extension dropped, got %s", got)
	}
}
