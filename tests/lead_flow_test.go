// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnetlab/signal-pipeline/app/dto"
	businessflow "github.com/magnetlab/signal-pipeline/business_flow"
	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/repository"
	testingutil "github.com/magnetlab/signal-pipeline/testing"
)

func TestLeadFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		leadRepo := repository.NewSignalLeadRepository(testDB.DB)
		eventRepo := repository.NewSignalEventRepository(testDB.DB)
		flow := businessflow.NewLeadFlow(leadRepo, eventRepo, log.Default())
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		workspaceID := int64(1)
		var leads []*models.SignalLead
		for i := 0; i < 5; i++ {
			lead, err := fixtures.CreateTestLead(workspaceID)
			require.NoError(t, err)
			leads = append(leads, lead)
		}

		t.Run("ListPaginates", func(t *testing.T) {
			resp, err := flow.ListLeads(ctx, workspaceID, &dto.ListLeadsRequest{Page: 1, PageSize: 2})
			require.NoError(t, err)
			assert.Len(t, resp.Leads, 2)
			assert.Equal(t, int64(5), resp.Total)
			assert.Equal(t, 1, resp.Page)
			assert.Equal(t, 2, resp.PageSize)

			second, err := flow.ListLeads(ctx, workspaceID, &dto.ListLeadsRequest{Page: 2, PageSize: 2})
			require.NoError(t, err)
			assert.Len(t, second.Leads, 2)
			assert.NotEqual(t, resp.Leads[0].UUID, second.Leads[0].UUID)
		})

		t.Run("ListFiltersByMatch", func(t *testing.T) {
			unmatched := leads[0]
			unmatched.ICPMatched = false
			require.NoError(t, leadRepo.Update(ctx, unmatched))

			matched := true
			resp, err := flow.ListLeads(ctx, workspaceID, &dto.ListLeadsRequest{ICPMatched: &matched})
			require.NoError(t, err)
			assert.Equal(t, int64(4), resp.Total)
		})

		t.Run("InvalidPageRejected", func(t *testing.T) {
			_, err := flow.ListLeads(ctx, workspaceID, &dto.ListLeadsRequest{Page: -1})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPage(err))
		})

		t.Run("GetLeadScopedToWorkspace", func(t *testing.T) {
			got, err := flow.GetLead(ctx, workspaceID, leads[1].UUID.String())
			require.NoError(t, err)
			assert.Equal(t, leads[1].ProfileURL, got.ProfileURL)

			_, err = flow.GetLead(ctx, workspaceID+1, leads[1].UUID.String())
			require.Error(t, err)
		})

		t.Run("ListLeadEvents", func(t *testing.T) {
			monitor, err := fixtures.CreateTestMonitor(workspaceID, models.MonitorKindKeyword)
			require.NoError(t, err)
			_, err = fixtures.CreateTestEvent(leads[2].ID, monitor.ID, models.SignalTypeComment)
			require.NoError(t, err)

			resp, err := flow.ListLeadEvents(ctx, workspaceID, leads[2].UUID.String(), 10)
			require.NoError(t, err)
			require.Len(t, resp.Events, 1)
			assert.Equal(t, "comment", resp.Events[0].SignalType)
		})

		t.Run("LeadsForExportUnpaginated", func(t *testing.T) {
			rows, err := flow.LeadsForExport(ctx, workspaceID, &dto.ListLeadsRequest{})
			require.NoError(t, err)
			assert.Len(t, rows, 5)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestICPFiltersFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		filterSetRepo := repository.NewICPFilterSetRepository(testDB.DB)
		filterSource := businessflow.NewCachedICPFilterSource(filterSetRepo, nil, time.Minute, "test", log.Default())
		flow := businessflow.NewICPFiltersFlow(testDB.DB, filterSetRepo, filterSource, log.Default())
		ctx := testingutil.CreateTestContext()
		meta := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		workspaceID := int64(1)

		t.Run("NoStoredSetMeansMatchEveryone", func(t *testing.T) {
			filters, err := flow.GetFilters(ctx, workspaceID)
			require.NoError(t, err)
			assert.Empty(t, filters.TitleKeywords)
			assert.Nil(t, filters.CompanySizeMin)
		})

		t.Run("UpdateCreatesThenEdits", func(t *testing.T) {
			minSize := 10
			maxSize := 500
			seniority := "vp"
			updated, err := flow.UpdateFilters(ctx, workspaceID, &dto.UpdateICPFiltersRequest{
				TitleKeywords:     []string{"founder", "vp of sales"},
				IndustryKeywords:  []string{"saas"},
				CompanySizeMin:    &minSize,
				CompanySizeMax:    &maxSize,
				RequiredSeniority: &seniority,
			}, meta)
			require.NoError(t, err)
			assert.Equal(t, []string{"founder", "vp of sales"}, updated.TitleKeywords)
			require.NotNil(t, updated.RequiredSeniority)
			assert.Equal(t, "vp", *updated.RequiredSeniority)

			// Second update replaces, not appends.
			updated, err = flow.UpdateFilters(ctx, workspaceID, &dto.UpdateICPFiltersRequest{
				TitleKeywords: []string{"cto"},
			}, meta)
			require.NoError(t, err)
			assert.Equal(t, []string{"cto"}, updated.TitleKeywords)

			set, err := filterSetRepo.ByWorkspace(ctx, workspaceID)
			require.NoError(t, err)
			require.NotNil(t, set)
		})

		t.Run("InvertedSizeRangeRejected", func(t *testing.T) {
			minSize := 500
			maxSize := 10
			_, err := flow.UpdateFilters(ctx, workspaceID, &dto.UpdateICPFiltersRequest{
				CompanySizeMin: &minSize,
				CompanySizeMax: &maxSize,
			}, meta)
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanySizeInverted(err))
		})

		t.Run("UnknownSeniorityRejected", func(t *testing.T) {
			seniority := "intern"
			_, err := flow.UpdateFilters(ctx, workspaceID, &dto.UpdateICPFiltersRequest{
				RequiredSeniority: &seniority,
			}, meta)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidSeniority(err))
		})

		return nil
	})
	require.NoError(t, err)
}
