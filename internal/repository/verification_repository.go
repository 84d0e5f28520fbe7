package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ICTPass2002kgao/Tact-api-prod/internal/logging"
)

// VerificationLog is a persisted face verification outcome.
type VerificationLog struct {
	ID        uint      `gorm:"primaryKey"`
	RequestID string    `gorm:"column:request_id;uniqueIndex;size:64"`
	Backend   string    `gorm:"column:backend;size:32"`
	Matched   bool      `gorm:"column:matched"`
	Distance  float64   `gorm:"column:distance"`
	Threshold float64   `gorm:"column:threshold"`
	Message   string    `gorm:"column:message;type:text"`
	LatencyMS int64     `gorm:"column:latency_ms"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (VerificationLog) TableName() string {
	return "verification_logs"
}

// MetricsAggregation is the raw aggregate over verification_logs.
type MetricsAggregation struct {
	TotalCount       int64   `gorm:"column:total_count"`
	MatchedCount     int64   `gorm:"column:matched_count"`
	AverageDistance  float64 `gorm:"column:average_distance"`
	AverageLatencyMS float64 `gorm:"column:average_latency_ms"`
}

// VerificationRepository provides persistence APIs for verification logs.
// Writes go through a bounded retry loop so transient database hiccups do
// not lose an outcome that was already produced.
type VerificationRepository struct {
	db             *gorm.DB
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewVerificationRepository creates a new repository instance.
func NewVerificationRepository(db *gorm.DB, logger *zap.Logger) *VerificationRepository {
	return &VerificationRepository{
		db:             db,
		logger:         logger.Named("verification_repository"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// AutoMigrate ensures the schema is available.
func (r *VerificationRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&VerificationLog{})
}

// SaveLog persists a verification log entry.
func (r *VerificationRepository) SaveLog(ctx context.Context, log *VerificationLog) error {
	return r.executeWithRetry(ctx, "repository.save_log", log.RequestID, func() error {
		return r.db.WithContext(ctx).Create(log).Error
	})
}

// FindByRequestID retrieves a verification log by its request identifier.
func (r *VerificationRepository) FindByRequestID(ctx context.Context, requestID string) (*VerificationLog, error) {
	var log VerificationLog
	if err := r.db.WithContext(ctx).First(&log, "request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// AggregateMetrics computes verification stats over all persisted logs.
func (r *VerificationRepository) AggregateMetrics(ctx context.Context) (*MetricsAggregation, error) {
	var aggregation MetricsAggregation
	err := r.db.WithContext(ctx).
		Model(&VerificationLog{}).
		Select(
			"count(*) as total_count, " +
				"coalesce(sum(case when matched then 1 else 0 end), 0) as matched_count, " +
				"coalesce(avg(distance), 0) as average_distance, " +
				"coalesce(avg(latency_ms), 0) as average_latency_ms",
		).
		Scan(&aggregation).Error
	if err != nil {
		return nil, logging.NewOperationError("repository.aggregate_metrics", "", err)
	}
	return &aggregation, nil
}

func (r *VerificationRepository) executeWithRetry(ctx context.Context, operation, requestID string, fn func() error) error {
	if r.retryAttempts <= 1 {
		return logging.NewOperationError(operation, requestID, fn())
	}

	backoff := r.initialBackoff
	opLogger := logging.WithOperation(r.logger, operation, requestID)
	var err error
	for attempt := 0; attempt < r.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, requestID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= r.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("database operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !isTransientError(err) || attempt == r.retryAttempts-1 {
			opLogger.Error("database operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("transient database error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, requestID, err)
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
