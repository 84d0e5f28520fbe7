package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ICTPass2002kgao/Tact-api-prod/internal/mediaconv"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/mediastore"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/repository"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/usecase"
)

// Default upload caps, overridable through Options.
const (
	DefaultMaxImageBytes = 15 << 20
	DefaultMaxVideoBytes = 200 << 20
)

// VerificationService is the slice of the verification use case the routes
// need.
type VerificationService interface {
	VerifyFaces(ctx context.Context, input usecase.VerifyInput) (*usecase.VerificationOutcome, error)
	GetResult(ctx context.Context, requestID string) (*repository.VerificationLog, error)
	GetMetricsSummary(ctx context.Context) (*usecase.MetricsSummary, error)
}

// AudioService converts an uploaded video into a streamable audio file.
type AudioService interface {
	ExtractAudio(ctx context.Context, video *multipart.FileHeader) (*usecase.AudioResult, error)
}

// Options tunes the registered routes.
type Options struct {
	MaxImageBytes int64
	MaxVideoBytes int64
	// Auth, when set, guards every route except /health.
	Auth gin.HandlerFunc
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, uc VerificationService, audio AudioService, opts Options) {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	if opts.MaxVideoBytes <= 0 {
		opts.MaxVideoBytes = DefaultMaxVideoBytes
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := router.Group("/")
	if opts.Auth != nil {
		group.Use(opts.Auth)
	}

	group.POST("/api/verify_faces/", verifyFacesHandler(uc, opts.MaxImageBytes))
	group.POST("/extract-audio/", extractAudioHandler(audio, opts.MaxVideoBytes))
	group.GET("/result/:id", resultHandler(uc))
	group.GET("/metrics/summary", metricsHandler(uc))
}

func verifyFacesHandler(uc VerificationService, maxImageBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := parseVerifyInput(c, maxImageBytes)
		if !ok {
			return
		}

		outcome, err := uc.VerifyFaces(c.Request.Context(), input)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, mediastore.ErrBadURL),
				errors.Is(err, mediastore.ErrDownload),
				errors.Is(err, mediastore.ErrNotAnImage),
				errors.Is(err, mediastore.ErrTooLarge):
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		response := gin.H{
			"request_id": outcome.RequestID,
			"matched":    outcome.Matched,
			"distance":   outcome.Distance,
			"threshold":  outcome.Threshold,
		}
		if outcome.Message != "" {
			response["message"] = outcome.Message
		}
		c.JSON(http.StatusOK, response)
	}
}

// parseVerifyInput accepts either camera_image+firebase_image (two files) or
// live_image+reference_url. It writes the error response itself.
func parseVerifyInput(c *gin.Context, maxImageBytes int64) (usecase.VerifyInput, bool) {
	camera, cameraErr := c.FormFile("camera_image")
	firebase, firebaseErr := c.FormFile("firebase_image")
	live, liveErr := c.FormFile("live_image")
	referenceURL := strings.TrimSpace(c.PostForm("reference_url"))

	var input usecase.VerifyInput
	switch {
	case cameraErr == nil && firebaseErr == nil:
		input = usecase.VerifyInput{Live: camera, Reference: firebase}
	case liveErr == nil && referenceURL != "":
		input = usecase.VerifyInput{Live: live, ReferenceURL: referenceURL}
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "camera_image and firebase_image files, or live_image and reference_url, are required",
		})
		return usecase.VerifyInput{}, false
	}

	for _, fh := range []*multipart.FileHeader{input.Live, input.Reference} {
		if fh == nil {
			continue
		}
		if !checkUpload(c, fh, maxImageBytes, "image/") {
			return usecase.VerifyInput{}, false
		}
	}
	return input, true
}

func extractAudioHandler(audio AudioService, maxVideoBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		video, err := c.FormFile("video_file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "video_file is required"})
			return
		}
		if !checkUpload(c, video, maxVideoBytes, "video/") {
			return
		}

		result, err := audio.ExtractAudio(c.Request.Context(), video)
		if err != nil {
			if errors.Is(err, mediaconv.ErrNoAudioStream) {
				c.JSON(http.StatusBadRequest, gin.H{"error": mediaconv.ErrNoAudioStream.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer result.Cleanup()

		c.FileAttachment(result.Path, result.Filename)
	}
}

func resultHandler(uc VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("id")
		if requestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
			return
		}

		log, err := uc.GetResult(c.Request.Context(), requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id": log.RequestID,
			"backend":    log.Backend,
			"matched":    log.Matched,
			"distance":   log.Distance,
			"threshold":  log.Threshold,
			"message":    log.Message,
			"created_at": log.CreatedAt,
		})
	}
}

func metricsHandler(uc VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := uc.GetMetricsSummary(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// checkUpload enforces the size cap and content type prefix, writing the
// error response itself.
func checkUpload(c *gin.Context, fh *multipart.FileHeader, maxBytes int64, typePrefix string) bool {
	if fh.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return false
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, typePrefix) &&
		contentType != "application/octet-stream" {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported content type " + contentType})
		return false
	}
	return true
}
