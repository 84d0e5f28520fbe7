package verifier

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"sync"

	_ "image/gif"
	_ "image/png"

	"github.com/Kagami/go-face"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ICTPass2002kgao/Tact-api-prod/internal/logging"
)

// DlibVerifier compares faces locally with the dlib ResNet embedding model
// via go-face. Model files (shape predictor, resnet descriptor, cnn detector)
// must be present in the configured directory.
type DlibVerifier struct {
	rec       *face.Recognizer
	threshold float64
	logger    *zap.Logger

	// the go-face recognizer is not safe for concurrent use
	mu sync.Mutex
}

// NewDlib loads the dlib models from modelDir and returns a ready verifier.
func NewDlib(modelDir string, threshold float64, logger *zap.Logger) (*DlibVerifier, error) {
	rec, err := face.NewRecognizer(modelDir)
	if err != nil {
		return nil, logging.NewOperationError("verifier.dlib.load_models", "", err)
	}
	return &DlibVerifier{
		rec:       rec,
		threshold: threshold,
		logger:    logger.Named("verifier_dlib"),
	}, nil
}

func (v *DlibVerifier) Name() string { return "dlib" }

// Verify extracts one descriptor per image and compares them with Euclidean
// distance. Images containing zero or multiple faces count as undetected.
func (v *DlibVerifier) Verify(ctx context.Context, livePath, referencePath string) (*Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	liveFace, err := v.recognizeFile(livePath)
	if err != nil {
		return nil, logging.NewOperationError("verifier.dlib.recognize_live", "", err)
	}
	if liveFace == nil {
		return nil, ErrNoFaceInLive
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refFace, err := v.recognizeFile(referencePath)
	if err != nil {
		return nil, logging.NewOperationError("verifier.dlib.recognize_reference", "", err)
	}
	if refFace == nil {
		return nil, ErrNoFaceInReference
	}

	distance := math.Sqrt(face.SquaredEuclideanDistance(liveFace.Descriptor, refFace.Descriptor))
	v.logger.Debug("compared descriptors",
		zap.Float64("distance", distance),
		zap.Float64("threshold", v.threshold),
	)

	return &Result{
		Matched:   distance <= v.threshold,
		Distance:  distance,
		Threshold: v.threshold,
	}, nil
}

// recognizeFile runs go-face on path, transcoding to JPEG first if needed.
// The dlib image loader only reads JPEG, while uploads and reference
// downloads arrive as any common raster format.
func (v *DlibVerifier) recognizeFile(path string) (*face.Face, error) {
	jpegPath, cleanup, err := asJPEG(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return v.rec.RecognizeSingleFile(jpegPath)
}

var jpegMagic = []byte{0xFF, 0xD8}

// asJPEG returns a path to a JPEG rendition of the image at path. JPEG
// inputs are returned as-is; anything else is decoded and re-encoded into
// a sibling temp file, which the cleanup func removes.
func asJPEG(path string) (string, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	if bytes.HasPrefix(data, jpegMagic) {
		return path, func() {}, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}

	out, err := os.CreateTemp(filepath.Dir(path), "jpeg-*.jpg")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(out.Name()) }

	if err := jpeg.Encode(out, img, nil); err != nil {
		out.Close()
		cleanup()
		return "", nil, fmt.Errorf("encode %s as jpeg: %w", format, err)
	}
	if err := out.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return out.Name(), cleanup, nil
}

// Close releases the dlib recognizer.
func (v *DlibVerifier) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rec.Close()
}
