// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	businessflow "github.com/magnetlab/signal-pipeline/business_flow"
	"github.com/magnetlab/signal-pipeline/icp"
	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/repository"
	testingutil "github.com/magnetlab/signal-pipeline/testing"
	"github.com/magnetlab/signal-pipeline/utils"
)

func newTestEngine(db *gorm.DB) businessflow.SignalEngineFlow {
	leadRepo := repository.NewSignalLeadRepository(db)
	eventRepo := repository.NewSignalEventRepository(db)
	filterSetRepo := repository.NewICPFilterSetRepository(db)
	// No redis in tests, the source degrades to plain DB reads.
	filterSource := businessflow.NewCachedICPFilterSource(filterSetRepo, nil, time.Minute, "test", log.Default())
	return businessflow.NewSignalEngineFlow(db, leadRepo, eventRepo, filterSource, log.Default())
}

func founderProfile(profileURL string) icp.Profile {
	return icp.Profile{
		FullName:   "Ada Founder",
		Headline:   "Founder & CEO at Startly",
		Title:      "Founder & CEO",
		Company:    "Startly",
		Location:   "Austin, TX",
		ProfileURL: profileURL,
	}
}

func TestUpsertLead(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		engine := newTestEngine(testDB.DB)
		leadRepo := repository.NewSignalLeadRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("CreatesNewLead", func(t *testing.T) {
			workspaceID := int64(1)
			_, err := fixtures.CreateTestFilterSet(workspaceID, []string{"founder"})
			require.NoError(t, err)

			lead, err := engine.UpsertLead(ctx, workspaceID, founderProfile("https://www.linkedin.com/in/ada"))
			require.NoError(t, err)
			assert.NotZero(t, lead.ID)
			assert.Equal(t, "Ada Founder", lead.FullName)
			assert.Equal(t, "Founder & CEO", lead.JobTitle)
			assert.Equal(t, "Startly", lead.Company)
			assert.True(t, lead.ICPMatched)
			assert.Greater(t, lead.ICPScore, 0)
			assert.Equal(t, lead.FirstSeenAt, lead.LastSeenAt)
		})

		t.Run("SecondSightingIsIdempotent", func(t *testing.T) {
			workspaceID := int64(2)
			profile := founderProfile("https://www.linkedin.com/in/grace")

			first, err := engine.UpsertLead(ctx, workspaceID, profile)
			require.NoError(t, err)

			second, err := engine.UpsertLead(ctx, workspaceID, profile)
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID)
			assert.Equal(t, first.UUID, second.UUID)
			assert.Equal(t, first.FirstSeenAt.Unix(), second.FirstSeenAt.Unix())
			assert.False(t, second.LastSeenAt.Before(first.LastSeenAt))

			count, err := leadRepo.Count(ctx, models.SignalLeadFilter{WorkspaceID: &workspaceID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("EmptyFieldsNeverBlankSnapshot", func(t *testing.T) {
			workspaceID := int64(3)
			full := founderProfile("https://www.linkedin.com/in/sparse")
			_, err := engine.UpsertLead(ctx, workspaceID, full)
			require.NoError(t, err)

			// A later sighting with a thinner profile must not erase what we know.
			sparse := icp.Profile{ProfileURL: full.ProfileURL, FullName: "Ada Founder"}
			lead, err := engine.UpsertLead(ctx, workspaceID, sparse)
			require.NoError(t, err)
			assert.Equal(t, "Founder & CEO at Startly", lead.Headline)
			assert.Equal(t, "Startly", lead.Company)
		})

		t.Run("RescoresAgainstCurrentFilters", func(t *testing.T) {
			workspaceID := int64(4)
			filterSetRepo := repository.NewICPFilterSetRepository(testDB.DB)
			set, err := fixtures.CreateTestFilterSet(workspaceID, []string{"founder"})
			require.NoError(t, err)

			profile := founderProfile("https://www.linkedin.com/in/shift")
			lead, err := engine.UpsertLead(ctx, workspaceID, profile)
			require.NoError(t, err)
			assert.True(t, lead.ICPMatched)

			// Tighten the filters so the same profile no longer matches.
			set.TitleKeywords = []string{"plumber"}
			require.NoError(t, filterSetRepo.Update(ctx, set))

			lead, err = engine.UpsertLead(ctx, workspaceID, profile)
			require.NoError(t, err)
			assert.False(t, lead.ICPMatched)
		})

		t.Run("RejectsEmptyProfileURL", func(t *testing.T) {
			_, err := engine.UpsertLead(ctx, 5, icp.Profile{FullName: "No URL"})
			require.Error(t, err)
			assert.ErrorIs(t, err, businessflow.ErrProfileURLRequired)
		})

		t.Run("RejectsMissingWorkspace", func(t *testing.T) {
			_, err := engine.UpsertLead(ctx, 0, founderProfile("https://www.linkedin.com/in/x"))
			require.Error(t, err)
			assert.ErrorIs(t, err, businessflow.ErrWorkspaceRequired)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRecordEvent(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		engine := newTestEngine(testDB.DB)
		eventRepo := repository.NewSignalEventRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		lead, err := fixtures.CreateTestLead(1)
		require.NoError(t, err)
		monitor, err := fixtures.CreateTestMonitor(1, models.MonitorKindKeyword)
		require.NoError(t, err)

		t.Run("CommentGetsSentiment", func(t *testing.T) {
			event, err := engine.RecordEvent(ctx, lead.ID, monitor.ID, models.SignalTypeComment,
				"This is great, love the approach", utils.UTCNow())
			require.NoError(t, err)
			require.NotNil(t, event.Sentiment)
			assert.Equal(t, icp.SentimentPositive, *event.Sentiment)
		})

		t.Run("ReactionWithoutSnippetHasNoSentiment", func(t *testing.T) {
			event, err := engine.RecordEvent(ctx, lead.ID, monitor.ID, models.SignalTypeReaction, "", utils.UTCNow())
			require.NoError(t, err)
			assert.Nil(t, event.Sentiment)
		})

		t.Run("EventsAccumulate", func(t *testing.T) {
			before, err := eventRepo.Count(ctx, models.SignalEventFilter{LeadID: &lead.ID})
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				_, err := engine.RecordEvent(ctx, lead.ID, monitor.ID, models.SignalTypeComment, "again", utils.UTCNow())
				require.NoError(t, err)
			}

			after, err := eventRepo.Count(ctx, models.SignalEventFilter{LeadID: &lead.ID})
			require.NoError(t, err)
			assert.Equal(t, before+3, after)
		})

		t.Run("RejectsInvalidSignalType", func(t *testing.T) {
			_, err := engine.RecordEvent(ctx, lead.ID, monitor.ID, models.SignalType("share"), "", utils.UTCNow())
			require.Error(t, err)
			assert.ErrorIs(t, err, businessflow.ErrInvalidSignalType)
		})

		t.Run("RejectsZeroOccurredAt", func(t *testing.T) {
			_, err := engine.RecordEvent(ctx, lead.ID, monitor.ID, models.SignalTypeComment, "hi", time.Time{})
			require.Error(t, err)
			assert.ErrorIs(t, err, businessflow.ErrOccurredAtRequired)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestProcessEngagers(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		engine := newTestEngine(testDB.DB)
		leadRepo := repository.NewSignalLeadRepository(testDB.DB)
		eventRepo := repository.NewSignalEventRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		workspaceID := int64(1)
		_, err := fixtures.CreateTestFilterSet(workspaceID, []string{"founder"})
		require.NoError(t, err)
		monitor, err := fixtures.CreateTestMonitor(workspaceID, models.MonitorKindKeyword)
		require.NoError(t, err)

		t.Run("BatchUpsertsAndRecords", func(t *testing.T) {
			engagers := []businessflow.EngagerInput{
				{
					Profile:    founderProfile("https://www.linkedin.com/in/one"),
					SignalType: models.SignalTypeComment,
					Snippet:    "interesting take",
					OccurredAt: utils.UTCNow(),
				},
				{
					Profile: icp.Profile{
						FullName:   "Random Person",
						Title:      "Accountant",
						ProfileURL: "https://www.linkedin.com/in/two",
					},
					SignalType: models.SignalTypeReaction,
					OccurredAt: utils.UTCNow(),
				},
				{
					// No profile URL, skipped as failed
					Profile:    icp.Profile{FullName: "Ghost"},
					SignalType: models.SignalTypeReaction,
					OccurredAt: utils.UTCNow(),
				},
			}

			result, err := engine.ProcessEngagers(ctx, monitor, engagers)
			require.NoError(t, err)
			assert.Equal(t, 2, result.Processed)
			assert.Equal(t, 1, result.Matched)
			assert.Equal(t, 1, result.Failed)

			count, err := leadRepo.Count(ctx, models.SignalLeadFilter{WorkspaceID: &workspaceID})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)

			matched, err := leadRepo.ByWorkspaceAndProfileURL(ctx, workspaceID, "https://www.linkedin.com/in/one")
			require.NoError(t, err)
			require.NotNil(t, matched)
			assert.True(t, matched.ICPMatched)

			events, err := eventRepo.ListByLead(ctx, matched.ID, 10, 0)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, models.SignalTypeComment, events[0].SignalType)
			assert.Equal(t, monitor.ID, events[0].MonitorID)
		})

		return nil
	})
	require.NoError(t, err)
}
