// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnetlab/signal-pipeline/icp"
	"github.com/magnetlab/signal-pipeline/models"
	testingutil "github.com/magnetlab/signal-pipeline/testing"
	"github.com/magnetlab/signal-pipeline/utils"
)

func TestMonitorKind(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.True(t, models.MonitorKindKeyword.Valid())
		assert.True(t, models.MonitorKindCompany.Valid())
		assert.True(t, models.MonitorKindProfile.Valid())
		assert.False(t, models.MonitorKind("hashtag").Valid())
		assert.False(t, models.MonitorKind("").Valid())
	})

	t.Run("ScanValue", func(t *testing.T) {
		var kind models.MonitorKind
		require.NoError(t, kind.Scan("company"))
		assert.Equal(t, models.MonitorKindCompany, kind)

		v, err := models.MonitorKindKeyword.Value()
		require.NoError(t, err)
		assert.Equal(t, "keyword", v)
	})
}

func TestSignalType(t *testing.T) {
	assert.True(t, models.SignalTypeComment.Valid())
	assert.True(t, models.SignalTypeReaction.Valid())
	assert.True(t, models.SignalTypePostAuthorship.Valid())
	assert.False(t, models.SignalType("share").Valid())
}

func TestScanRunStatus(t *testing.T) {
	assert.True(t, models.ScanRunStatusRunning.Valid())
	assert.True(t, models.ScanRunStatusCompleted.Valid())
	assert.True(t, models.ScanRunStatusFailed.Valid())
	assert.False(t, models.ScanRunStatus("queued").Valid())
}

func TestMonitorDue(t *testing.T) {
	now := utils.UTCNow()

	t.Run("NeverRanIsDue", func(t *testing.T) {
		monitor := &models.SignalMonitor{CadenceMinutes: 360}
		assert.True(t, monitor.Due(now))
	})

	t.Run("RecentRunNotDue", func(t *testing.T) {
		ranAt := now.Add(-10 * time.Minute)
		monitor := &models.SignalMonitor{CadenceMinutes: 360, LastRunAt: &ranAt}
		assert.False(t, monitor.Due(now))
	})

	t.Run("StaleRunIsDue", func(t *testing.T) {
		ranAt := now.Add(-7 * time.Hour)
		monitor := &models.SignalMonitor{CadenceMinutes: 360, LastRunAt: &ranAt}
		assert.True(t, monitor.Due(now))
	})

	t.Run("CadenceFallsBackToDefault", func(t *testing.T) {
		monitor := &models.SignalMonitor{CadenceMinutes: 0}
		assert.Equal(t, utils.DefaultScanCadence, monitor.Cadence())
	})
}

func TestICPFilterSetCriteria(t *testing.T) {
	minSize := 50
	maxSize := 500
	seniority := "vp"

	set := &models.ICPFilterSet{
		WorkspaceID:       1,
		TitleKeywords:     pq.StringArray{"founder", "engineering"},
		IndustryKeywords:  pq.StringArray{"saas"},
		ExcludedCompanies: pq.StringArray{"Acme"},
		CompanySizeMin:    &minSize,
		CompanySizeMax:    &maxSize,
		RequiredSeniority: &seniority,
	}

	criteria := set.Criteria()
	assert.Equal(t, []string{"founder", "engineering"}, criteria.TitleKeywords)
	assert.Equal(t, []string{"saas"}, criteria.IndustryKeywords)
	assert.Equal(t, []string{"Acme"}, criteria.ExcludedCompanies)
	require.NotNil(t, criteria.CompanySizeMin)
	assert.Equal(t, 50, *criteria.CompanySizeMin)
	require.NotNil(t, criteria.RequiredSeniority)
	assert.Equal(t, icp.SeniorityVP, *criteria.RequiredSeniority)
}

func TestModelPersistence(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("MonitorRoundTrip", func(t *testing.T) {
			monitor, err := fixtures.CreateTestMonitor(1, models.MonitorKindKeyword)
			require.NoError(t, err)
			assert.NotZero(t, monitor.ID)

			var loaded models.SignalMonitor
			require.NoError(t, testDB.DB.First(&loaded, monitor.ID).Error)
			assert.Equal(t, models.MonitorKindKeyword, loaded.Kind)
			assert.True(t, loaded.IsActive)
			assert.Equal(t, monitor.UUID, loaded.UUID)
		})

		t.Run("LeadUniquePerWorkspaceAndProfile", func(t *testing.T) {
			lead, err := fixtures.CreateTestLead(1)
			require.NoError(t, err)

			dup := &models.SignalLead{
				UUID:        uuid.New(),
				WorkspaceID: lead.WorkspaceID,
				ProfileURL:  lead.ProfileURL,
				FirstSeenAt: utils.UTCNow(),
				LastSeenAt:  utils.UTCNow(),
			}
			assert.Error(t, testDB.DB.Create(dup).Error)

			// Same profile in another workspace is fine.
			other := &models.SignalLead{
				UUID:        uuid.New(),
				WorkspaceID: lead.WorkspaceID + 1,
				ProfileURL:  lead.ProfileURL,
				FirstSeenAt: utils.UTCNow(),
				LastSeenAt:  utils.UTCNow(),
			}
			assert.NoError(t, testDB.DB.Create(other).Error)
		})

		t.Run("EventSentimentStoredAsString", func(t *testing.T) {
			lead, err := fixtures.CreateTestLead(2)
			require.NoError(t, err)
			monitor, err := fixtures.CreateTestMonitor(2, models.MonitorKindCompany)
			require.NoError(t, err)

			sentiment := icp.SentimentPositive
			event := &models.SignalEvent{
				LeadID:     lead.ID,
				MonitorID:  monitor.ID,
				SignalType: models.SignalTypeComment,
				Sentiment:  &sentiment,
				Snippet:    "this looks great",
				OccurredAt: utils.UTCNow(),
			}
			require.NoError(t, testDB.DB.Create(event).Error)

			var loaded models.SignalEvent
			require.NoError(t, testDB.DB.First(&loaded, event.ID).Error)
			require.NotNil(t, loaded.Sentiment)
			assert.Equal(t, icp.SentimentPositive, *loaded.Sentiment)
		})

		t.Run("FilterSetUniquePerWorkspace", func(t *testing.T) {
			_, err := fixtures.CreateTestFilterSet(3, []string{"founder"})
			require.NoError(t, err)

			dup := &models.ICPFilterSet{WorkspaceID: 3}
			assert.Error(t, testDB.DB.Create(dup).Error)
		})

		return nil
	})
	require.NoError(t, err)
}
