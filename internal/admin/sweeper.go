package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// DefaultSweepInterval is how often expired sessions are purged.
const DefaultSweepInterval = time.Minute

// Sweepable is implemented by Service.
type Sweepable interface {
	Sweep(ctx context.Context) error
}

// Sweeper runs Sweep on a gocron schedule.
type Sweeper struct {
	scheduler gocron.Scheduler
	target    Sweepable
	interval  time.Duration
	logger    interfaces.Logger
}

// NewSweeper schedules target every interval (DefaultSweepInterval if <= 0).
func NewSweeper(target Sweepable, interval time.Duration, logger interfaces.Logger) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("admin sweeper: create scheduler: %w", err)
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Sweeper{
		scheduler: scheduler,
		target:    target,
		interval:  interval,
		logger:    logger,
	}, nil
}

// Start registers the job and starts the scheduler. Cancelling ctx stops
// further sweeps.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.run),
		gocron.WithName("admin-session-sweep"),
		gocron.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("admin sweeper: schedule: %w", err)
	}
	s.scheduler.Start()
	s.logger.Info("admin.sweeper.started", "interval", s.interval.String())
	return nil
}

func (s *Sweeper) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.target.Sweep(ctx); err != nil {
		s.logger.Error("admin.sweeper.failed", "error", err)
	}
}

// Stop shuts the scheduler down.
func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}
