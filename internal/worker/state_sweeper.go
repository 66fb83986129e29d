package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/support-kit/case-assistant/internal/repository"
)

const sweepTimeout = 30 * time.Second

// StateSweeper purges expired search state records on a schedule. Expired
// records are already invisible to lookups, so the sweep only reclaims
// storage and can lag without affecting correctness.
type StateSweeper struct {
	states   repository.SearchStateRepository
	logger   *zap.Logger
	schedule string
	cron     *cron.Cron
}

// NewStateSweeper constructs the sweeper. Schedule accepts standard cron
// expressions and the @every shorthand.
func NewStateSweeper(states repository.SearchStateRepository, logger *zap.Logger, schedule string) *StateSweeper {
	return &StateSweeper{states: states, logger: logger, schedule: schedule}
}

// Start begins scheduling sweeps. The first sweep runs on schedule, not
// immediately. Panics in a sweep are recovered and logged.
func (s *StateSweeper) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(zap.NewStdLog(s.logger)))))
	if _, err := c.AddFunc(s.schedule, func() { s.sweep(ctx) }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.logger.Info("search state sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts scheduling and waits for an in-flight sweep to finish. Safe to
// call on a nil sweeper.
func (s *StateSweeper) Stop() {
	if s == nil || s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *StateSweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	removed, err := s.states.DeleteExpired(sweepCtx)
	if err != nil {
		s.logger.Error("search state sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("expired search state removed", zap.Int64("removed", removed))
	}
}
