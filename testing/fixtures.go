// Package testing provides test utilities and database setup for testing the signal pipeline
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestMonitor creates an active monitor of the given kind
func (tf *TestFixtures) CreateTestMonitor(workspaceID int64, kind models.MonitorKind) (*models.SignalMonitor, error) {
	monitor := &models.SignalMonitor{
		UUID:           uuid.New(),
		WorkspaceID:    workspaceID,
		Kind:           kind,
		Target:         fmt.Sprintf("test-target-%d", rand.Intn(100000)),
		DisplayName:    "Test Monitor",
		IsActive:       true,
		CadenceMinutes: 360,
	}

	if err := tf.DB.DB.Create(monitor).Error; err != nil {
		return nil, fmt.Errorf("failed to create test monitor: %w", err)
	}
	return monitor, nil
}

// CreateTestLead creates a lead with a unique profile URL in the workspace
func (tf *TestFixtures) CreateTestLead(workspaceID int64) (*models.SignalLead, error) {
	now := utils.UTCNow()
	lead := &models.SignalLead{
		UUID:        uuid.New(),
		WorkspaceID: workspaceID,
		ProfileURL:  fmt.Sprintf("https://www.linkedin.com/in/test-%d", rand.Intn(1000000)),
		FullName:    "Jane Tester",
		Headline:    "VP of Engineering at Testco",
		JobTitle:    "VP of Engineering",
		Company:     "Testco",
		Location:    "Berlin, Germany",
		ICPScore:    70,
		ICPMatched:  true,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}

	if err := tf.DB.DB.Create(lead).Error; err != nil {
		return nil, fmt.Errorf("failed to create test lead: %w", err)
	}
	return lead, nil
}

// CreateTestEvent records a signal event for the lead
func (tf *TestFixtures) CreateTestEvent(leadID int64, monitorID uint, signalType models.SignalType) (*models.SignalEvent, error) {
	event := &models.SignalEvent{
		LeadID:     leadID,
		MonitorID:  monitorID,
		SignalType: signalType,
		Snippet:    "Looking for a better way to do this",
		OccurredAt: utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create test event: %w", err)
	}
	return event, nil
}

// CreateTestFilterSet stores an ICP filter set for the workspace
func (tf *TestFixtures) CreateTestFilterSet(workspaceID int64, titleKeywords []string) (*models.ICPFilterSet, error) {
	set := &models.ICPFilterSet{
		WorkspaceID:       workspaceID,
		TitleKeywords:     pq.StringArray(titleKeywords),
		IndustryKeywords:  pq.StringArray{},
		ExcludedCompanies: pq.StringArray{},
	}

	if err := tf.DB.DB.Create(set).Error; err != nil {
		return nil, fmt.Errorf("failed to create test filter set: %w", err)
	}
	return set, nil
}

// CreateTestScanRun records a completed scan run for the monitor
func (tf *TestFixtures) CreateTestScanRun(monitor *models.SignalMonitor) (*models.ScanRun, error) {
	now := utils.UTCNow()
	run := &models.ScanRun{
		MonitorID:         monitor.ID,
		WorkspaceID:       monitor.WorkspaceID,
		Kind:              monitor.Kind,
		Status:            models.ScanRunStatusCompleted,
		PostsSeen:         3,
		EngagersProcessed: 12,
		EngagersMatched:   4,
		StartedAt:         now,
		FinishedAt:        &now,
	}

	if err := tf.DB.DB.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to create test scan run: %w", err)
	}
	return run, nil
}
