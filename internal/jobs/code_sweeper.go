package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"whisperbox/internal/observability"
)

const sweepTimeout = 30 * time.Second

// ExpiredCodeStore deletes one-time codes whose expiry lies before the cutoff.
type ExpiredCodeStore interface {
	DeleteExpiredCodes(ctx context.Context, before time.Time) (int64, error)
}

// CodeSweeper periodically purges expired verification and reset codes.
// Validation already rejects expired codes, so the sweep only reclaims rows.
type CodeSweeper struct {
	store    ExpiredCodeStore
	schedule string
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
}

func NewCodeSweeper(store ExpiredCodeStore, schedule string, logger *zap.Logger) *CodeSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodeSweeper{
		store:    store,
		schedule: schedule,
		logger:   logger.Named("code_sweeper"),
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start registers the sweep on its schedule and starts the scheduler.
func (s *CodeSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("sweep failed", zap.Error(err))
			observability.CaptureError(ctx, "code_sweeper", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule code sweep %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("code sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *CodeSweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *CodeSweeper) RunOnce(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredCodes(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired codes removed", zap.Int64("count", n))
		observability.AddBreadcrumb(ctx, "jobs", fmt.Sprintf("removed %d expired codes", n), sentry.LevelInfo)
	}
	return n, nil
}
