package usecase

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ICTPass2002kgao/Tact-api-prod/internal/logging"
)

// AudioExtractor converts a materialized video into an audio file.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath, outputDir string) (string, error)
}

// AudioResult points at the extracted audio file. Cleanup must be called
// once the file has been streamed to the client.
type AudioResult struct {
	Path     string
	Filename string
	Cleanup  func()
}

// AudioUseCase runs the extraction pipeline: save the upload, convert it,
// drop the source video immediately, and hand the audio to the caller.
type AudioUseCase struct {
	store     MediaStore
	workDir   string
	extractor AudioExtractor
	logger    *zap.Logger
}

// NewAudioUseCase constructs a new audio extraction use case.
func NewAudioUseCase(store MediaStore, workDir string, extractor AudioExtractor, logger *zap.Logger) *AudioUseCase {
	return &AudioUseCase{
		store:     store,
		workDir:   workDir,
		extractor: extractor,
		logger:    logger.Named("audio_usecase"),
	}
}

// ExtractAudio converts the uploaded video to MP3.
func (uc *AudioUseCase) ExtractAudio(ctx context.Context, video *multipart.FileHeader) (*AudioResult, error) {
	videoPath, err := uc.store.SaveUpload(video)
	if err != nil {
		uc.logger.Error("failed to materialize video", zap.Error(err))
		return nil, err
	}
	// the source video is only needed for the conversion itself
	defer uc.store.Remove(videoPath)

	audioPath, err := uc.extractor.ExtractAudio(ctx, videoPath, uc.workDir)
	if err != nil {
		uc.logger.Error("audio extraction failed", zap.Error(err))
		return nil, logging.NewOperationError("usecase.extract_audio", "", err)
	}

	filename := audioFilename(video.Filename)
	uc.logger.Info("audio extracted",
		zap.String("video", video.Filename),
		zap.String("audio", filename),
	)

	return &AudioResult{
		Path:     audioPath,
		Filename: filename,
		Cleanup:  func() { uc.store.Remove(audioPath) },
	}, nil
}

// audioFilename derives the attachment name from the uploaded video's name.
func audioFilename(videoName string) string {
	base := strings.TrimSuffix(filepath.Base(videoName), filepath.Ext(videoName))
	if base == "" || base == "." {
		base = "audio"
	}
	return base + ".mp3"
}
