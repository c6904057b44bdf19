package worker

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/persistence"
	"github.com/spec-kit/sla-service/internal/service"
)

// Sweeper runs one SLA sweep.
type Sweeper interface {
	RunSweep(ctx context.Context) (service.SweepResult, error)
}

// Releaser frees a held lock.
type Releaser interface {
	Release(ctx context.Context) error
}

// Locker hands out the cross-instance sweep lock. A nil Releaser with a nil error means
// another instance holds it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (Releaser, error)
}

type redisLocker struct {
	redis *persistence.Redis
}

// NewRedisLocker backs the sweep lock with Redis.
func NewRedisLocker(redis *persistence.Redis) Locker {
	return redisLocker{redis: redis}
}

func (l redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Releaser, error) {
	lock, err := l.redis.TryLock(ctx, key, ttl)
	if err != nil || lock == nil {
		return nil, err
	}
	return lock, nil
}

// ErrSweepSkipped reports that another instance is sweeping.
var ErrSweepSkipped = errors.New("sla sweep already running elsewhere")

const lockReleaseTimeout = 5 * time.Second

// SweepWorker triggers SLA sweeps on a cron schedule in the business timezone.
type SweepWorker struct {
	sweeper Sweeper
	locker  Locker
	cfg     config.SweepConfig
	metrics *observability.Metrics
	logger  *zap.Logger
	cron    *cron.Cron
	spec    string
}

// NewSweepWorker validates the schedule and registers the sweep job. The job does not run until Start.
func NewSweepWorker(sweeper Sweeper, locker Locker, cfg config.SweepConfig, timezone string, metrics *observability.Metrics, logger *zap.Logger) (*SweepWorker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cronLog := cronLogger{logger: logger.Sugar()}
	w := &SweepWorker{
		sweeper: sweeper,
		locker:  locker,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		spec:    cfg.CronSpec(timezone),
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
	}
	if _, err := w.cron.AddFunc(w.spec, w.tick); err != nil {
		return nil, err
	}
	return w, nil
}

// Spec returns the effective cron expression.
func (w *SweepWorker) Spec() string {
	return w.spec
}

// Start begins firing the schedule in the background.
func (w *SweepWorker) Start() {
	w.logger.Info("SLA sweep scheduler started", zap.String("schedule", w.spec))
	w.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to expire.
func (w *SweepWorker) Stop(ctx context.Context) {
	done := w.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		w.logger.Warn("SLA sweep still running at shutdown")
	}
}

func (w *SweepWorker) tick() {
	if _, err := w.RunOnce(context.Background()); err != nil && !errors.Is(err, ErrSweepSkipped) {
		w.logger.Error("scheduled SLA sweep failed", zap.Error(err))
	}
}

// RunOnce runs a single sweep bounded by the configured timeout. It returns ErrSweepSkipped
// when another instance holds the sweep lock. A lock backend failure is logged and the sweep
// runs anyway.
func (w *SweepWorker) RunOnce(ctx context.Context) (service.SweepResult, error) {
	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}

	if w.locker != nil {
		lock, err := w.locker.TryLock(ctx, w.cfg.LockKey, w.lockTTL())
		switch {
		case err != nil:
			w.logger.Warn("SLA sweep lock unavailable; sweeping without it", zap.Error(err))
		case lock == nil:
			w.logger.Info("SLA sweep skipped; lock held by another instance", zap.String("lock_key", w.cfg.LockKey))
			w.metrics.RecordSweep(service.SweepOutcomeSkipped, 0, 0, 0, 0, 0)
			return service.SweepResult{}, ErrSweepSkipped
		default:
			defer w.release(lock)
		}
	}

	return w.sweeper.RunSweep(ctx)
}

func (w *SweepWorker) lockTTL() time.Duration {
	if w.cfg.LockTTL > 0 {
		return w.cfg.LockTTL
	}
	return w.cfg.Timeout
}

func (w *SweepWorker) release(lock Releaser) {
	ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
	defer cancel()
	if err := lock.Release(ctx); err != nil {
		w.logger.Warn("failed to release SLA sweep lock", zap.Error(err))
	}
}

// cronLogger adapts zap to cron's logger interface.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
