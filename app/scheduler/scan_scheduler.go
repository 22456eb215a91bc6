package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	businessflow "github.com/magnetlab/signal-pipeline/business_flow"
	"github.com/magnetlab/signal-pipeline/config"
	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/repository"
	"github.com/magnetlab/signal-pipeline/utils"
)

// ScanScheduler periodically finds due monitors and scans them: it pulls
// recent posts for each monitor target, fans out to the posts' engagers,
// and hands everything to the signal engine.
type ScanScheduler struct {
	monitorRepo repository.SignalMonitorRepository
	scanRunRepo repository.ScanRunRepository
	engine      businessflow.SignalEngineFlow
	harvest     HarvestClient
	lock        MonitorLock
	cfg         config.SchedulerConfig
	harvestCfg  config.HarvestConfig
	logger      *log.Logger

	mu       sync.Mutex
	inFlight map[uint]struct{}
}

func NewScanScheduler(
	monitorRepo repository.SignalMonitorRepository,
	scanRunRepo repository.ScanRunRepository,
	engine businessflow.SignalEngineFlow,
	harvest HarvestClient,
	lock MonitorLock,
	cfg config.SchedulerConfig,
	harvestCfg config.HarvestConfig,
	logCfg config.LoggingConfig,
) *ScanScheduler {
	s := &ScanScheduler{
		monitorRepo: monitorRepo,
		scanRunRepo: scanRunRepo,
		engine:      engine,
		harvest:     harvest,
		lock:        lock,
		cfg:         cfg,
		harvestCfg:  harvestCfg,
		inFlight:    make(map[uint]struct{}),
	}
	s.logger = newSchedulerLogger("scan-scheduler ", logCfg)
	return s
}

// newSchedulerLogger builds a logger writing to stdout and a rotated file
func newSchedulerLogger(prefix string, cfg config.LoggingConfig) *log.Logger {
	var w io.Writer = os.Stdout
	if cfg.Output != "stdout" && cfg.FilePath != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		if cfg.Output == "file" {
			w = rotated
		} else {
			w = io.MultiWriter(os.Stdout, rotated)
		}
	}
	// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *ScanScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		interval := s.cfg.ScanInterval
		if interval <= 0 {
			interval = time.Minute
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

func (s *ScanScheduler) runOnce(ctx context.Context) {
	now := utils.UTCNow()
	kinds := []models.MonitorKind{models.MonitorKindKeyword, models.MonitorKindCompany, models.MonitorKindProfile}

	for _, kind := range kinds {
		monitors, err := s.monitorRepo.ListActiveByKind(ctx, kind)
		if err != nil {
			s.logger.Printf("list active %s monitors failed: %v", kind, err)
			continue
		}
		for _, monitor := range monitors {
			if !monitor.Due(now) {
				continue
			}
			m := monitor
			if !s.markInFlight(m.ID) {
				continue
			}
			go func() {
				defer s.clearInFlight(m.ID)
				if err := s.scanMonitor(ctx, m); err != nil {
					s.logger.Printf("scan monitor id=%d failed: %v", m.ID, err)
				}
			}()
		}
	}
}

func (s *ScanScheduler) markInFlight(monitorID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[monitorID]; busy {
		return false
	}
	s.inFlight[monitorID] = struct{}{}
	return true
}

func (s *ScanScheduler) clearInFlight(monitorID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, monitorID)
}

// TriggerMonitor runs a scan for one monitor outside its cadence, used by
// the dashboard's manual "scan now" action.
func (s *ScanScheduler) TriggerMonitor(ctx context.Context, workspaceID int64, monitorUUID string) error {
	monitor, err := s.monitorRepo.ByUUID(ctx, monitorUUID)
	if err != nil {
		return err
	}
	if monitor == nil {
		return businessflow.ErrMonitorNotFound
	}
	if monitor.WorkspaceID != workspaceID {
		return businessflow.ErrMonitorAccessDenied
	}
	if !monitor.IsActive {
		return businessflow.ErrMonitorInactive
	}
	if !s.markInFlight(monitor.ID) {
		return nil
	}
	go func() {
		defer s.clearInFlight(monitor.ID)
		if err := s.scanMonitor(context.Background(), monitor); err != nil {
			s.logger.Printf("triggered scan monitor id=%d failed: %v", monitor.ID, err)
		}
	}()
	return nil
}

func (s *ScanScheduler) scanMonitor(parent context.Context, monitor *models.SignalMonitor) error {
	acquired, err := s.lock.Acquire(parent, monitor.ID)
	if err != nil {
		return fmt.Errorf("acquire scan lock: %w", err)
	}
	if !acquired {
		s.logger.Printf("monitor id=%d is locked by another instance, skipping", monitor.ID)
		return nil
	}
	defer s.lock.Release(context.Background(), monitor.ID)

	timeout := s.cfg.ScanTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	startedAt := utils.UTCNow()
	run := &models.ScanRun{
		MonitorID:   monitor.ID,
		WorkspaceID: monitor.WorkspaceID,
		Kind:        monitor.Kind,
		Status:      models.ScanRunStatusRunning,
		StartedAt:   startedAt,
	}
	if err := s.scanRunRepo.Save(ctx, run); err != nil {
		return fmt.Errorf("create scan run: %w", err)
	}

	// The run timestamp advances even when the scan fails, so a monitor
	// with a broken target cannot hog every cycle.
	if err := s.monitorRepo.UpdateLastRun(ctx, monitor.ID, startedAt); err != nil {
		s.logger.Printf("monitor id=%d: update last run failed: %v", monitor.ID, err)
	}

	scanErr := s.executeScan(ctx, monitor, run)

	finishedAt := utils.UTCNow()
	run.FinishedAt = &finishedAt
	if scanErr != nil {
		run.Status = models.ScanRunStatusFailed
		msg := scanErr.Error()
		run.Error = &msg
	} else {
		run.Status = models.ScanRunStatusCompleted
	}
	if err := s.scanRunRepo.Update(ctx, run); err != nil {
		s.logger.Printf("monitor id=%d: finalize scan run failed: %v", monitor.ID, err)
	}

	scansTotal.WithLabelValues(string(monitor.Kind), string(run.Status)).Inc()
	scanDuration.WithLabelValues(string(monitor.Kind)).Observe(finishedAt.Sub(startedAt).Seconds())

	s.logger.Printf("monitor id=%d kind=%s status=%s posts=%d engagers=%d matched=%d",
		monitor.ID, monitor.Kind, run.Status, run.PostsSeen, run.EngagersProcessed, run.EngagersMatched)
	return scanErr
}

func (s *ScanScheduler) executeScan(ctx context.Context, monitor *models.SignalMonitor, run *models.ScanRun) error {
	var (
		posts []HarvestPost
		err   error
	)
	switch monitor.Kind {
	case models.MonitorKindKeyword:
		posts, err = s.harvest.SearchPostsByKeyword(ctx, monitor.Target, s.harvestCfg.MaxPosts)
	case models.MonitorKindCompany:
		posts, err = s.harvest.PostsByCompany(ctx, monitor.Target, s.harvestCfg.MaxPosts)
	case models.MonitorKindProfile:
		posts, err = s.harvest.PostsByProfile(ctx, monitor.Target, s.harvestCfg.MaxPosts)
	default:
		return businessflow.ErrInvalidMonitorKind
	}
	if err != nil {
		return fmt.Errorf("fetch posts: %w", err)
	}

	for _, post := range posts {
		run.PostsSeen++
		engagers, err := s.collectEngagers(ctx, monitor, post)
		if err != nil {
			// One broken post must not sink the rest of the scan.
			s.logger.Printf("monitor id=%d: collect engagers for post %s failed: %v", monitor.ID, post.URN, err)
			continue
		}
		result, err := s.engine.ProcessEngagers(ctx, monitor, engagers)
		if err != nil {
			s.logger.Printf("monitor id=%d: process engagers for post %s failed: %v", monitor.ID, post.URN, err)
			continue
		}
		run.EngagersProcessed += result.Processed
		run.EngagersMatched += result.Matched
		engagersProcessed.Add(float64(result.Processed))
		engagersMatched.Add(float64(result.Matched))
	}
	return nil
}

// collectEngagers assembles the engager batch for one post. For keyword
// monitors the post author is itself a signal: writing about the topic is
// the strongest intent available. For company and profile monitors the
// author is the monitored entity, so only commenters and reactors count.
func (s *ScanScheduler) collectEngagers(ctx context.Context, monitor *models.SignalMonitor, post HarvestPost) ([]businessflow.EngagerInput, error) {
	var engagers []businessflow.EngagerInput

	if monitor.Kind == models.MonitorKindKeyword && post.Author.ProfileURL != "" {
		engagers = append(engagers, businessflow.EngagerInput{
			Profile:    post.Author,
			SignalType: models.SignalTypePostAuthorship,
			Snippet:    post.Text,
			OccurredAt: orNow(post.PostedAt),
		})
	}

	comments, err := s.harvest.GetPostComments(ctx, post.URN, s.harvestCfg.MaxEngagers)
	if err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}
	for _, comment := range comments {
		if comment.Author.ProfileURL == "" {
			continue
		}
		engagers = append(engagers, businessflow.EngagerInput{
			Profile:    comment.Author,
			SignalType: models.SignalTypeComment,
			Snippet:    comment.Text,
			OccurredAt: orNow(comment.CommentedAt),
		})
	}

	reactions, err := s.harvest.GetPostReactions(ctx, post.URN, s.harvestCfg.MaxEngagers)
	if err != nil {
		return nil, fmt.Errorf("fetch reactions: %w", err)
	}
	for _, reaction := range reactions {
		if reaction.Author.ProfileURL == "" {
			continue
		}
		engagers = append(engagers, businessflow.EngagerInput{
			Profile:    reaction.Author,
			SignalType: models.SignalTypeReaction,
			OccurredAt: orNow(reaction.ReactedAt),
		})
	}

	return engagers, nil
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return utils.UTCNow()
	}
	return t
}
