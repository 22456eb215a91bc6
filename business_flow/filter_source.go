package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magnetlab/signal-pipeline/icp"
	"github.com/magnetlab/signal-pipeline/repository"
)

// ICPFilterSource resolves the current ICP filters of a workspace. Leads are
// re-scored on every upsert, so lookups happen on the hot path of a scan and
// must stay cheap.
type ICPFilterSource interface {
	FiltersForWorkspace(ctx context.Context, workspaceID int64) (icp.Filters, error)
	// Invalidate drops any cached filters for the workspace after an update.
	Invalidate(ctx context.Context, workspaceID int64)
}

// CachedICPFilterSource reads filter sets through Redis with a short TTL and
// falls back to the database. A workspace without a stored filter set resolves
// to empty filters, which match every engager.
type CachedICPFilterSource struct {
	filterSetRepo repository.ICPFilterSetRepository
	rc            *redis.Client
	ttl           time.Duration
	keyPrefix     string
	logger        *log.Logger
}

func NewCachedICPFilterSource(
	filterSetRepo repository.ICPFilterSetRepository,
	rc *redis.Client,
	ttl time.Duration,
	keyPrefix string,
	logger *log.Logger,
) *CachedICPFilterSource {
	return &CachedICPFilterSource{
		filterSetRepo: filterSetRepo,
		rc:            rc,
		ttl:           ttl,
		keyPrefix:     keyPrefix,
		logger:        logger,
	}
}

func (s *CachedICPFilterSource) cacheKey(workspaceID int64) string {
	return fmt.Sprintf("%s:icpfilters:%d", s.keyPrefix, workspaceID)
}

// FiltersForWorkspace returns the workspace filters, preferring the cache.
// Cache failures degrade to a database read instead of failing the scan.
func (s *CachedICPFilterSource) FiltersForWorkspace(ctx context.Context, workspaceID int64) (icp.Filters, error) {
	key := s.cacheKey(workspaceID)

	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, key).Bytes(); err == nil && len(bs) > 0 {
			var filters icp.Filters
			if err := json.Unmarshal(bs, &filters); err == nil {
				return filters, nil
			}
			// Corrupt cache entry, drop it and fall through to the DB.
			_ = s.rc.Del(ctx, key).Err()
		}
	}

	filterSet, err := s.filterSetRepo.ByWorkspace(ctx, workspaceID)
	if err != nil {
		return icp.Filters{}, NewBusinessError("ICP_FILTER_LOOKUP_FAILED", "Failed to load ICP filters", err)
	}

	var filters icp.Filters
	if filterSet != nil {
		filters = filterSet.Criteria()
	}

	if s.rc != nil {
		if bs, err := json.Marshal(filters); err == nil {
			if err := s.rc.Set(ctx, key, bs, s.ttl).Err(); err != nil && s.logger != nil {
				s.logger.Printf("icp filter cache set failed for workspace %d: %v", workspaceID, err)
			}
		}
	}

	return filters, nil
}

// Invalidate removes the cached filters so the next scan sees fresh criteria
func (s *CachedICPFilterSource) Invalidate(ctx context.Context, workspaceID int64) {
	if s.rc == nil {
		return
	}
	if err := s.rc.Del(ctx, s.cacheKey(workspaceID)).Err(); err != nil && s.logger != nil {
		s.logger.Printf("icp filter cache invalidate failed for workspace %d: %v", workspaceID, err)
	}
}
