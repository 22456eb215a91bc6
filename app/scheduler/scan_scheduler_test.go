package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessflow "github.com/magnetlab/signal-pipeline/business_flow"
	"github.com/magnetlab/signal-pipeline/config"
	"github.com/magnetlab/signal-pipeline/icp"
	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/repository"
)

type fakeHarvestClient struct {
	posts     []HarvestPost
	comments  map[string][]HarvestComment
	reactions map[string][]HarvestReaction
}

func (f *fakeHarvestClient) SearchPostsByKeyword(ctx context.Context, keyword string, limit int) ([]HarvestPost, error) {
	return f.posts, nil
}

func (f *fakeHarvestClient) PostsByCompany(ctx context.Context, companyURN string, limit int) ([]HarvestPost, error) {
	return f.posts, nil
}

func (f *fakeHarvestClient) PostsByProfile(ctx context.Context, profileURN string, limit int) ([]HarvestPost, error) {
	return f.posts, nil
}

func (f *fakeHarvestClient) GetPostComments(ctx context.Context, postURN string, limit int) ([]HarvestComment, error) {
	return f.comments[postURN], nil
}

func (f *fakeHarvestClient) GetPostReactions(ctx context.Context, postURN string, limit int) ([]HarvestReaction, error) {
	return f.reactions[postURN], nil
}

type fakeEngine struct {
	batches [][]businessflow.EngagerInput
}

func (f *fakeEngine) UpsertLead(ctx context.Context, workspaceID int64, profile icp.Profile) (*models.SignalLead, error) {
	return nil, nil
}

func (f *fakeEngine) RecordEvent(ctx context.Context, leadID int64, monitorID uint, signalType models.SignalType, snippet string, occurredAt time.Time) (*models.SignalEvent, error) {
	return nil, nil
}

func (f *fakeEngine) ProcessEngagers(ctx context.Context, monitor *models.SignalMonitor, engagers []businessflow.EngagerInput) (*businessflow.ProcessResult, error) {
	f.batches = append(f.batches, engagers)
	return &businessflow.ProcessResult{Processed: len(engagers)}, nil
}

// fakeMonitorRepo embeds the interface and overrides only what the
// scheduler touches.
type fakeMonitorRepo struct {
	repository.SignalMonitorRepository
	lastRun map[uint]time.Time
}

func (f *fakeMonitorRepo) UpdateLastRun(ctx context.Context, monitorID uint, ranAt time.Time) error {
	if f.lastRun == nil {
		f.lastRun = make(map[uint]time.Time)
	}
	f.lastRun[monitorID] = ranAt
	return nil
}

type fakeScanRunRepo struct {
	repository.ScanRunRepository
	saved   []*models.ScanRun
	updated []*models.ScanRun
}

func (f *fakeScanRunRepo) Save(ctx context.Context, run *models.ScanRun) error {
	run.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, run)
	return nil
}

func (f *fakeScanRunRepo) Update(ctx context.Context, run *models.ScanRun) error {
	f.updated = append(f.updated, run)
	return nil
}

func profileFor(name string) icp.Profile {
	return icp.Profile{
		FullName:   name,
		Headline:   name + " - Founder at Testco",
		ProfileURL: "https://linkedin.com/in/" + name,
	}
}

func newTestScheduler(harvest HarvestClient, engine businessflow.SignalEngineFlow, monitorRepo repository.SignalMonitorRepository, runRepo repository.ScanRunRepository) *ScanScheduler {
	return NewScanScheduler(
		monitorRepo,
		runRepo,
		engine,
		harvest,
		NewNoopMonitorLock(),
		config.SchedulerConfig{ScanTimeout: time.Minute},
		config.HarvestConfig{MaxPosts: 20, MaxEngagers: 200},
		config.LoggingConfig{Output: "stdout"},
	)
}

func TestScanMonitorKeywordFansOutToEngagers(t *testing.T) {
	now := time.Now().UTC()
	harvest := &fakeHarvestClient{
		posts: []HarvestPost{
			{URN: "urn:post:1", Text: "thoughts on cold outreach", Author: profileFor("alice"), PostedAt: now},
			{URN: "urn:post:2", Text: "lead magnets that work", Author: profileFor("bob"), PostedAt: now},
		},
		comments: map[string][]HarvestComment{
			"urn:post:1": {{Author: profileFor("carol"), Text: "great insight, love it", CommentedAt: now}},
		},
		reactions: map[string][]HarvestReaction{
			"urn:post:2": {{Author: profileFor("carol"), Kind: "LIKE", ReactedAt: now}},
		},
	}
	engine := &fakeEngine{}
	monitorRepo := &fakeMonitorRepo{}
	runRepo := &fakeScanRunRepo{}
	s := newTestScheduler(harvest, engine, monitorRepo, runRepo)

	monitor := &models.SignalMonitor{ID: 7, WorkspaceID: 42, Kind: models.MonitorKindKeyword, Target: "outreach", IsActive: true}
	err := s.scanMonitor(context.Background(), monitor)
	require.NoError(t, err)

	// One engine batch per post.
	require.Len(t, engine.batches, 2)

	// Post 1: author + commenter. Post 2: author + reactor.
	assert.Len(t, engine.batches[0], 2)
	assert.Equal(t, models.SignalTypePostAuthorship, engine.batches[0][0].SignalType)
	assert.Equal(t, models.SignalTypeComment, engine.batches[0][1].SignalType)
	assert.Equal(t, "great insight, love it", engine.batches[0][1].Snippet)
	assert.Len(t, engine.batches[1], 2)
	assert.Equal(t, models.SignalTypeReaction, engine.batches[1][1].SignalType)
	assert.Empty(t, engine.batches[1][1].Snippet)

	// Run record reflects the scan.
	require.Len(t, runRepo.updated, 1)
	run := runRepo.updated[0]
	assert.Equal(t, models.ScanRunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.PostsSeen)
	assert.Equal(t, 4, run.EngagersProcessed)
	require.NotNil(t, run.FinishedAt)

	// Last run advanced.
	assert.Contains(t, monitorRepo.lastRun, uint(7))
}

func TestScanMonitorCompanySkipsAuthor(t *testing.T) {
	now := time.Now().UTC()
	harvest := &fakeHarvestClient{
		posts: []HarvestPost{
			{URN: "urn:post:9", Text: "company update", Author: profileFor("companypage"), PostedAt: now},
		},
		comments: map[string][]HarvestComment{
			"urn:post:9": {{Author: profileFor("dave"), Text: "congrats", CommentedAt: now}},
		},
		reactions: map[string][]HarvestReaction{},
	}
	engine := &fakeEngine{}
	s := newTestScheduler(harvest, engine, &fakeMonitorRepo{}, &fakeScanRunRepo{})

	monitor := &models.SignalMonitor{ID: 8, WorkspaceID: 42, Kind: models.MonitorKindCompany, Target: "urn:li:company:1", IsActive: true}
	require.NoError(t, s.scanMonitor(context.Background(), monitor))

	require.Len(t, engine.batches, 1)
	require.Len(t, engine.batches[0], 1)
	assert.Equal(t, models.SignalTypeComment, engine.batches[0][0].SignalType)
}

func TestParseCompanySize(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"201", 201, true},
		{"51-200", 51, true},
		{"10,001+", 10001, true},
		{"", 0, false},
		{"unknown", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseCompanySize(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}

func TestParseHarvestTime(t *testing.T) {
	rfc := parseHarvestTime("2026-08-01T12:00:00Z")
	assert.Equal(t, 2026, rfc.Year())

	millis := parseHarvestTime("1754049600000")
	assert.False(t, millis.IsZero())

	assert.True(t, parseHarvestTime("").IsZero())
	assert.True(t, parseHarvestTime("garbage").IsZero())
}
