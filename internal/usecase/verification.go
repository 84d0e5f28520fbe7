package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ICTPass2002kgao/Tact-api-prod/internal/logging"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/repository"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/verifier"
)

const resultCacheTTL = 5 * time.Minute

// VerificationRepository defines the persistence operations needed by the
// use case.
type VerificationRepository interface {
	SaveLog(ctx context.Context, log *repository.VerificationLog) error
	FindByRequestID(ctx context.Context, requestID string) (*repository.VerificationLog, error)
	AggregateMetrics(ctx context.Context) (*repository.MetricsAggregation, error)
}

// MediaStore materializes request inputs on disk and cleans them up again.
type MediaStore interface {
	SaveUpload(fh *multipart.FileHeader) (string, error)
	Download(ctx context.Context, rawURL string) (string, error)
	Remove(paths ...string)
}

// VerifyInput carries the inputs of one verification request. Either
// Reference or ReferenceURL is set, never both.
type VerifyInput struct {
	Live         *multipart.FileHeader
	Reference    *multipart.FileHeader
	ReferenceURL string
}

// VerificationOutcome is the normalized result returned to the handler.
type VerificationOutcome struct {
	RequestID string
	Matched   bool
	Distance  float64
	Threshold float64
	Message   string
}

// VerificationUseCase runs the verification pipeline: materialize inputs,
// invoke the verifier backend, persist the outcome, cache it, and clean up
// the temp files regardless of how the request went.
type VerificationUseCase struct {
	repo           VerificationRepository
	cache          Cache
	store          MediaStore
	verifier       verifier.Verifier
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

type cachedOutcome struct {
	RequestID string    `json:"request_id"`
	Backend   string    `json:"backend"`
	Matched   bool      `json:"matched"`
	Distance  float64   `json:"distance"`
	Threshold float64   `json:"threshold"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewVerificationUseCase constructs a new use case instance.
func NewVerificationUseCase(repo VerificationRepository, cache Cache, store MediaStore, v verifier.Verifier, logger *zap.Logger) *VerificationUseCase {
	return &VerificationUseCase{
		repo:           repo,
		cache:          cache,
		store:          store,
		verifier:       v,
		logger:         logger.Named("verification_usecase"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// VerifyFaces orchestrates one verification request end to end.
func (uc *VerificationUseCase) VerifyFaces(ctx context.Context, input VerifyInput) (*VerificationOutcome, error) {
	requestID := uuid.NewString()
	start := time.Now()
	opLogger := logging.WithOperation(uc.logger, "usecase.verify_faces", requestID)

	var paths []string
	defer func() {
		uc.store.Remove(paths...)
	}()

	livePath, err := uc.store.SaveUpload(input.Live)
	if err != nil {
		opLogger.Error("failed to materialize live image", zap.Error(err))
		return nil, err
	}
	paths = append(paths, livePath)

	var referencePath string
	if input.ReferenceURL != "" {
		referencePath, err = uc.store.Download(ctx, input.ReferenceURL)
	} else {
		referencePath, err = uc.store.SaveUpload(input.Reference)
	}
	if err != nil {
		opLogger.Error("failed to materialize reference image", zap.Error(err))
		return nil, err
	}
	paths = append(paths, referencePath)

	outcome := &VerificationOutcome{RequestID: requestID}
	result, err := uc.verifier.Verify(ctx, livePath, referencePath)
	switch {
	case err == nil:
		outcome.Matched = result.Matched
		outcome.Distance = result.Distance
		outcome.Threshold = result.Threshold
	case errors.Is(err, verifier.ErrNoFaceInLive), errors.Is(err, verifier.ErrNoFaceInReference):
		// detection failures are an ordinary matched:false outcome
		outcome.Message = err.Error()
	default:
		wrapped := logging.NewOperationError("usecase.verify", requestID, err)
		opLogger.Error("verifier backend failed", zap.Error(wrapped))
		return nil, wrapped
	}

	log := &repository.VerificationLog{
		RequestID: requestID,
		Backend:   uc.verifier.Name(),
		Matched:   outcome.Matched,
		Distance:  outcome.Distance,
		Threshold: outcome.Threshold,
		Message:   outcome.Message,
		LatencyMS: time.Since(start).Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.repo.SaveLog(ctx, log); err != nil {
		wrapped := logging.NewOperationError("usecase.save_log", requestID, err)
		opLogger.Error("failed to persist verification log", zap.Error(wrapped))
		return nil, wrapped
	}

	uc.cacheOutcome(ctx, requestID, log, opLogger)

	opLogger.Info("verification complete",
		zap.Bool("matched", outcome.Matched),
		zap.Float64("distance", outcome.Distance),
		zap.Int64("latency_ms", log.LatencyMS),
	)
	return outcome, nil
}

// cacheOutcome stores the result in Redis. The cache is an optimization:
// failures are logged and the request still succeeds.
func (uc *VerificationUseCase) cacheOutcome(ctx context.Context, requestID string, log *repository.VerificationLog, opLogger *zap.Logger) {
	serialized, err := json.Marshal(cachedOutcome{
		RequestID: log.RequestID,
		Backend:   log.Backend,
		Matched:   log.Matched,
		Distance:  log.Distance,
		Threshold: log.Threshold,
		Message:   log.Message,
		CreatedAt: log.CreatedAt,
	})
	if err != nil {
		opLogger.Warn("failed to serialize verification outcome", zap.Error(err))
		return
	}

	if err := uc.withRedisRetry(ctx, requestID, "cache.set.result", func() error {
		return uc.cache.Set(ctx, cacheKey(requestID), string(serialized), resultCacheTTL)
	}); err != nil {
		opLogger.Warn("failed to cache verification outcome", zap.Error(err))
	}
}

// GetResult retrieves a cached verification outcome or loads it from
// persistence.
func (uc *VerificationUseCase) GetResult(ctx context.Context, requestID string) (*repository.VerificationLog, error) {
	if cached, err := uc.withRedisGet(ctx, requestID, "cache.get.result", cacheKey(requestID)); err == nil {
		var payload cachedOutcome
		if err := json.Unmarshal([]byte(cached), &payload); err != nil {
			logging.WithOperation(uc.logger, "usecase.get_result", requestID).Warn("failed to decode cached result", zap.Error(err))
		} else {
			return &repository.VerificationLog{
				RequestID: payload.RequestID,
				Backend:   payload.Backend,
				Matched:   payload.Matched,
				Distance:  payload.Distance,
				Threshold: payload.Threshold,
				Message:   payload.Message,
				CreatedAt: payload.CreatedAt,
			}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logging.WithOperation(uc.logger, "usecase.get_result", requestID).Warn("failed to read cache", zap.Error(err))
	}

	return uc.repo.FindByRequestID(ctx, requestID)
}

func cacheKey(requestID string) string {
	return fmt.Sprintf("verification:%s", requestID)
}

func (uc *VerificationUseCase) withRedisRetry(ctx context.Context, requestID, operation string, fn func() error) error {
	if uc.retryAttempts <= 1 {
		return logging.NewOperationError(operation, requestID, fn())
	}

	backoff := uc.initialBackoff
	opLogger := logging.WithOperation(uc.logger, operation, requestID)
	var err error
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, requestID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= uc.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("redis operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		// a key miss is an answer, not a failure
		if errors.Is(err, redis.Nil) {
			return logging.NewOperationError(operation, requestID, err)
		}

		if !isTransientError(err) || attempt == uc.retryAttempts-1 {
			opLogger.Error("redis operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("transient redis error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, requestID, err)
}

func (uc *VerificationUseCase) withRedisGet(ctx context.Context, requestID, operation, key string) (string, error) {
	var result string
	err := uc.withRedisRetry(ctx, requestID, operation, func() error {
		value, err := uc.cache.Get(ctx, key)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}

	return false
}
