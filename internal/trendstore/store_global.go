package trendstore

import (
	"fmt"
	"sync"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// StoreManager manages the process-wide trend store instance.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	trends       contract.TrendStore
}

var _ contract.TrendManager = &StoreManager{} // Compile-time check

// GetTrendStore returns the trend store.
func (mgr *StoreManager) GetTrendStore() contract.TrendStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.trends
}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStore uses sync.Once to safely initialize the global trend store.
func InitStore(backend schema.DatabaseBackend, connStr string) error { // called in main entrypoint
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		store, err := NewTrendStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize trend store: %w", err)
			return
		}

		// Assign to global manager
		Manager.Lock()
		defer Manager.Unlock()
		Manager.trends = store
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseStore should be called on application shutdown.
func CloseStore() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.trends != nil {
			_ = Manager.trends.Close()
		}
	})
}
