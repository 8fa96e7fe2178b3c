package inventory

import "sync"

// variantLocks hands out one mutex per variant id so that read-modify-write
// cycles for the same variant never interleave within this process. Locks are
// never released from the map; the variant population is small and bounded by
// the catalog.
type variantLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newVariantLocks() *variantLocks {
	return &variantLocks{locks: make(map[int64]*sync.Mutex)}
}

func (v *variantLocks) get(variantID int64) *sync.Mutex {
	v.mu.Lock()
	defer v.mu.Unlock()

	lock, ok := v.locks[variantID]
	if !ok {
		lock = &sync.Mutex{}
		v.locks[variantID] = lock
	}
	return lock
}
