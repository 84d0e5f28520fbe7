// Package mediaconv wraps ffmpeg for video to audio conversion.
package mediaconv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ICTPass2002kgao/Tact-api-prod/internal/logging"
)

// ErrNoAudioStream is returned when the uploaded video has no audio track.
var ErrNoAudioStream = errors.New("video contains no audio stream")

// Extractor demuxes and re-encodes the audio track of a video as MP3.
type Extractor struct {
	ffmpegPath string
	logger     *zap.Logger
}

// NewExtractor returns an extractor using the given ffmpeg binary.
func NewExtractor(ffmpegPath string, logger *zap.Logger) *Extractor {
	return &Extractor{ffmpegPath: ffmpegPath, logger: logger.Named("mediaconv")}
}

// ExtractAudio converts videoPath to an MP3 next to it in outputDir and
// returns the output path. The partial output is removed on failure.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath, outputDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	outputPath := filepath.Join(outputDir, base+".mp3")

	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		outputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.logger.Info("extracting audio",
		zap.String("video", videoPath),
		zap.String("output", outputPath),
	)

	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		detail := tail(stderr.String(), 512)
		if strings.Contains(detail, "does not contain any stream") ||
			strings.Contains(detail, "Output file is empty") {
			return "", ErrNoAudioStream
		}
		e.logger.Error("ffmpeg failed", zap.Error(err), zap.String("stderr", detail))
		return "", logging.NewOperationError("mediaconv.extract_audio", "",
			fmt.Errorf("ffmpeg: %w: %s", err, detail))
	}

	return outputPath, nil
}

// tail keeps the last n bytes of ffmpeg's stderr, where the actual error is.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
