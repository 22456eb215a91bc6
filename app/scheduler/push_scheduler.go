package scheduler

import (
	"context"
	"log"
	"time"

	businessflow "github.com/magnetlab/signal-pipeline/business_flow"
	"github.com/magnetlab/signal-pipeline/config"
)

// PushScheduler periodically pushes qualified, not-yet-pushed leads to the
// outreach service.
type PushScheduler struct {
	pushFlow businessflow.OutboundPushFlow
	cfg      config.SchedulerConfig
	logger   *log.Logger
}

func NewPushScheduler(
	pushFlow businessflow.OutboundPushFlow,
	cfg config.SchedulerConfig,
	logCfg config.LoggingConfig,
) *PushScheduler {
	return &PushScheduler{
		pushFlow: pushFlow,
		cfg:      cfg,
		logger:   newSchedulerLogger("push-scheduler ", logCfg),
	}
}

// Start launches the push loop in a background goroutine and returns a stop function
func (s *PushScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		interval := s.cfg.PushInterval
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *PushScheduler) runOnce(ctx context.Context) {
	summaries, err := s.pushFlow.PushAllWorkspaces(ctx)
	if err != nil {
		pushCycleFailures.Inc()
		s.logger.Printf("push cycle failed: %v", err)
		return
	}
	for _, summary := range summaries {
		if summary.Attempted == 0 {
			continue
		}
		leadsPushed.Add(float64(summary.Accepted))
		s.logger.Printf("workspace %d: pushed %d/%d qualified leads", summary.WorkspaceID, summary.Accepted, summary.Attempted)
	}
}
