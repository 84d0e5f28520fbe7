package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ICTPass2002kgao/Tact-api-prod/internal/logging"
)

// Failure codes reported by the remote comparison API.
const (
	failureNoFaceLive      = "no_face_live"
	failureNoFaceReference = "no_face_reference"
)

// HTTPVerifier delegates comparison to a CompreFace style REST service: both
// images are posted as multipart files and the service answers with the
// match decision.
type HTTPVerifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTP builds a verifier talking to the REST endpoint. The apiKey is sent
// as an x-api-key header when non-empty.
func NewHTTP(endpoint, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPVerifier {
	return &HTTPVerifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.Named("verifier_http"),
	}
}

func (v *HTTPVerifier) Name() string { return "http" }

type verifyAPIResponse struct {
	Matched     bool    `json:"matched"`
	Distance    float64 `json:"distance"`
	Threshold   float64 `json:"threshold"`
	FailureCode string  `json:"failure_code"`
	Message     string  `json:"message"`
}

func (v *HTTPVerifier) Verify(ctx context.Context, livePath, referencePath string) (*Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writeFilePart(writer, "live_image", livePath); err != nil {
		return nil, logging.NewOperationError("verifier.http.build_request", "", err)
	}
	if err := writeFilePart(writer, "reference_image", referencePath); err != nil {
		return nil, logging.NewOperationError("verifier.http.build_request", "", err)
	}
	if err := writer.Close(); err != nil {
		return nil, logging.NewOperationError("verifier.http.build_request", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, body)
	if err != nil {
		return nil, logging.NewOperationError("verifier.http.build_request", "", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if v.apiKey != "" {
		req.Header.Set("x-api-key", v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, logging.NewOperationError("verifier.http.call", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		v.logger.Error("comparison API returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", payload),
		)
		return nil, logging.NewOperationError("verifier.http.call", "",
			fmt.Errorf("comparison API returned status %d", resp.StatusCode))
	}

	var decoded verifyAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, logging.NewOperationError("verifier.http.decode_response", "", err)
	}

	switch decoded.FailureCode {
	case "":
	case failureNoFaceLive:
		return nil, ErrNoFaceInLive
	case failureNoFaceReference:
		return nil, ErrNoFaceInReference
	default:
		return nil, logging.NewOperationError("verifier.http.call", "",
			fmt.Errorf("comparison failed: %s", decoded.Message))
	}

	return &Result{
		Matched:   decoded.Matched,
		Distance:  decoded.Distance,
		Threshold: decoded.Threshold,
	}, nil
}

func writeFilePart(writer *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}
