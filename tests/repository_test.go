// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/repository"
	testingutil "github.com/magnetlab/signal-pipeline/testing"
	"github.com/magnetlab/signal-pipeline/utils"
)

func TestSignalMonitorRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewSignalMonitorRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUUID", func(t *testing.T) {
			monitor, err := fixtures.CreateTestMonitor(1, models.MonitorKindKeyword)
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, monitor.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, monitor.ID, found.ID)
		})

		t.Run("ByUUIDNotFound", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, uuid.New().String())
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ListActiveByKind", func(t *testing.T) {
			active, err := fixtures.CreateTestMonitor(2, models.MonitorKindCompany)
			require.NoError(t, err)

			inactive, err := fixtures.CreateTestMonitor(2, models.MonitorKindCompany)
			require.NoError(t, err)
			inactive.IsActive = false
			require.NoError(t, repo.Update(ctx, inactive))

			monitors, err := repo.ListActiveByKind(ctx, models.MonitorKindCompany)
			require.NoError(t, err)

			ids := make(map[uint]bool)
			for _, m := range monitors {
				assert.True(t, m.IsActive)
				assert.Equal(t, models.MonitorKindCompany, m.Kind)
				ids[m.ID] = true
			}
			assert.True(t, ids[active.ID])
			assert.False(t, ids[inactive.ID])
		})

		t.Run("UpdateLastRun", func(t *testing.T) {
			monitor, err := fixtures.CreateTestMonitor(3, models.MonitorKindProfile)
			require.NoError(t, err)
			require.Nil(t, monitor.LastRunAt)

			ranAt := utils.UTCNow()
			require.NoError(t, repo.UpdateLastRun(ctx, monitor.ID, ranAt))

			found, err := repo.ByUUID(ctx, monitor.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found.LastRunAt)
			assert.WithinDuration(t, ranAt, *found.LastRunAt, time.Second)
		})

		t.Run("ByFilter", func(t *testing.T) {
			workspaceID := int64(4)
			_, err := fixtures.CreateTestMonitor(workspaceID, models.MonitorKindKeyword)
			require.NoError(t, err)
			_, err = fixtures.CreateTestMonitor(workspaceID, models.MonitorKindProfile)
			require.NoError(t, err)

			kind := models.MonitorKindKeyword
			monitors, err := repo.ByFilter(ctx, models.SignalMonitorFilter{
				WorkspaceID: &workspaceID,
				Kind:        &kind,
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, monitors, 1)
			assert.Equal(t, models.MonitorKindKeyword, monitors[0].Kind)
		})

		t.Run("Delete", func(t *testing.T) {
			monitor, err := fixtures.CreateTestMonitor(5, models.MonitorKindKeyword)
			require.NoError(t, err)

			require.NoError(t, repo.Delete(ctx, monitor.ID))

			found, err := repo.ByUUID(ctx, monitor.UUID.String())
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSignalLeadRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewSignalLeadRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByWorkspaceAndProfileURL", func(t *testing.T) {
			lead, err := fixtures.CreateTestLead(1)
			require.NoError(t, err)

			found, err := repo.ByWorkspaceAndProfileURL(ctx, 1, lead.ProfileURL)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, lead.ID, found.ID)

			// Same URL, wrong workspace
			found, err = repo.ByWorkspaceAndProfileURL(ctx, 99, lead.ProfileURL)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ListQualifiedUnpushed", func(t *testing.T) {
			workspaceID := int64(2)
			qualified, err := fixtures.CreateTestLead(workspaceID)
			require.NoError(t, err)

			unmatched, err := fixtures.CreateTestLead(workspaceID)
			require.NoError(t, err)
			unmatched.ICPMatched = false
			require.NoError(t, repo.Update(ctx, unmatched))

			pushed, err := fixtures.CreateTestLead(workspaceID)
			require.NoError(t, err)
			pushed.PushedToOutbound = true
			require.NoError(t, repo.Update(ctx, pushed))

			leads, err := repo.ListQualifiedUnpushed(ctx, workspaceID, 10)
			require.NoError(t, err)
			require.Len(t, leads, 1)
			assert.Equal(t, qualified.ID, leads[0].ID)
		})

		t.Run("MarkPushAttemptedAndPushed", func(t *testing.T) {
			lead, err := fixtures.CreateTestLead(3)
			require.NoError(t, err)

			attemptedAt := utils.UTCNow()
			require.NoError(t, repo.MarkPushAttempted(ctx, []int64{lead.ID}, attemptedAt))

			found, err := repo.ByLeadID(ctx, lead.ID)
			require.NoError(t, err)
			require.NotNil(t, found.PushAttemptedAt)
			assert.False(t, found.PushedToOutbound)

			require.NoError(t, repo.MarkPushed(ctx, []int64{lead.ID}, utils.UTCNow()))

			found, err = repo.ByLeadID(ctx, lead.ID)
			require.NoError(t, err)
			assert.True(t, found.PushedToOutbound)
		})

		t.Run("WorkspacesWithQualifiedUnpushed", func(t *testing.T) {
			workspaceID := int64(40)
			_, err := fixtures.CreateTestLead(workspaceID)
			require.NoError(t, err)

			workspaces, err := repo.WorkspacesWithQualifiedUnpushed(ctx)
			require.NoError(t, err)
			assert.Contains(t, workspaces, workspaceID)
		})

		t.Run("ByFilterMinScore", func(t *testing.T) {
			workspaceID := int64(5)
			lead, err := fixtures.CreateTestLead(workspaceID)
			require.NoError(t, err)
			lead.ICPScore = 90
			require.NoError(t, repo.Update(ctx, lead))

			low, err := fixtures.CreateTestLead(workspaceID)
			require.NoError(t, err)
			low.ICPScore = 10
			require.NoError(t, repo.Update(ctx, low))

			minScore := 50
			leads, err := repo.ByFilter(ctx, models.SignalLeadFilter{
				WorkspaceID: &workspaceID,
				MinICPScore: &minScore,
			}, "icp_score DESC", 0, 0)
			require.NoError(t, err)
			require.Len(t, leads, 1)
			assert.Equal(t, lead.ID, leads[0].ID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSignalEventRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewSignalEventRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		lead, err := fixtures.CreateTestLead(1)
		require.NoError(t, err)
		monitor, err := fixtures.CreateTestMonitor(1, models.MonitorKindKeyword)
		require.NoError(t, err)

		t.Run("ListByLead", func(t *testing.T) {
			_, err := fixtures.CreateTestEvent(lead.ID, monitor.ID, models.SignalTypeComment)
			require.NoError(t, err)
			_, err = fixtures.CreateTestEvent(lead.ID, monitor.ID, models.SignalTypeReaction)
			require.NoError(t, err)

			events, err := repo.ListByLead(ctx, lead.ID, 10, 0)
			require.NoError(t, err)
			assert.Len(t, events, 2)
		})

		t.Run("RepeatedEventsAccumulate", func(t *testing.T) {
			// The same person commenting twice yields two events, not one.
			before, err := repo.Count(ctx, models.SignalEventFilter{LeadID: &lead.ID})
			require.NoError(t, err)

			_, err = fixtures.CreateTestEvent(lead.ID, monitor.ID, models.SignalTypeComment)
			require.NoError(t, err)
			_, err = fixtures.CreateTestEvent(lead.ID, monitor.ID, models.SignalTypeComment)
			require.NoError(t, err)

			after, err := repo.Count(ctx, models.SignalEventFilter{LeadID: &lead.ID})
			require.NoError(t, err)
			assert.Equal(t, before+2, after)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestICPFilterSetRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewICPFilterSetRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByWorkspace", func(t *testing.T) {
			set, err := fixtures.CreateTestFilterSet(1, []string{"founder", "cto"})
			require.NoError(t, err)

			found, err := repo.ByWorkspace(ctx, 1)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, set.ID, found.ID)
			assert.Equal(t, pq.StringArray{"founder", "cto"}, found.TitleKeywords)
		})

		t.Run("ByWorkspaceNotFound", func(t *testing.T) {
			found, err := repo.ByWorkspace(ctx, 999)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("Update", func(t *testing.T) {
			set, err := fixtures.CreateTestFilterSet(2, []string{"founder"})
			require.NoError(t, err)

			minSize := 50
			set.TitleKeywords = pq.StringArray{"vp", "head of"}
			set.CompanySizeMin = &minSize
			require.NoError(t, repo.Update(ctx, set))

			found, err := repo.ByWorkspace(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, pq.StringArray{"vp", "head of"}, found.TitleKeywords)
			require.NotNil(t, found.CompanySizeMin)
			assert.Equal(t, 50, *found.CompanySizeMin)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestScanRunRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewScanRunRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		monitor, err := fixtures.CreateTestMonitor(1, models.MonitorKindKeyword)
		require.NoError(t, err)

		t.Run("SaveAndUpdate", func(t *testing.T) {
			run := &models.ScanRun{
				MonitorID:   monitor.ID,
				WorkspaceID: monitor.WorkspaceID,
				Kind:        monitor.Kind,
				Status:      models.ScanRunStatusRunning,
				StartedAt:   utils.UTCNow(),
			}
			require.NoError(t, repo.Save(ctx, run))
			require.NotZero(t, run.ID)

			finishedAt := utils.UTCNow()
			run.Status = models.ScanRunStatusCompleted
			run.PostsSeen = 5
			run.EngagersProcessed = 20
			run.EngagersMatched = 7
			run.FinishedAt = &finishedAt
			require.NoError(t, repo.Update(ctx, run))

			runs, err := repo.ListByMonitor(ctx, monitor.ID, 10, 0)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, models.ScanRunStatusCompleted, runs[0].Status)
			assert.Equal(t, 5, runs[0].PostsSeen)
		})

		t.Run("ListByMonitorNewestFirst", func(t *testing.T) {
			other, err := fixtures.CreateTestMonitor(1, models.MonitorKindCompany)
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				_, err := fixtures.CreateTestScanRun(other)
				require.NoError(t, err)
			}

			runs, err := repo.ListByMonitor(ctx, other.ID, 2, 0)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.False(t, runs[0].StartedAt.Before(runs[1].StartedAt))
		})

		return nil
	})
	require.NoError(t, err)
}
