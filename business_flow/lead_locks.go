package businessflow

import (
	"fmt"
	"hash/fnv"
	"sync"
)

// leadLockStripes must be a power of two.
const leadLockStripes = 64

var leadLocks [leadLockStripes]sync.Mutex

// lockLead serializes upserts for the same workspace/profile pair so that
// concurrent scans produce one lead row instead of racing on the insert.
func lockLead(workspaceID int64, profileURL string) *sync.Mutex {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d|%s", workspaceID, profileURL)
	m := &leadLocks[h.Sum32()&(leadLockStripes-1)]
	m.Lock()
	return m
}
