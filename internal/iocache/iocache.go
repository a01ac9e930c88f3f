// Package iocache is for the metrics warehouse and report snapshot storage.
package iocache

import (
	"sync"

	"github.com/huangsam/grouppulse/internal/contract"
)

// CacheStoreManager manages the snapshot store, the warehouse and the active metrics source.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	reports      contract.CacheStore
	metrics      contract.MetricsStore
	source       contract.MetricsSource // overrides the warehouse as the scoring source
}

var _ contract.StoreManager = &CacheStoreManager{} // Compile-time check

// NewStoreManager builds a manager from explicit stores. Any of them may be nil.
func NewStoreManager(reports contract.CacheStore, metrics contract.MetricsStore, source contract.MetricsSource) *CacheStoreManager {
	return &CacheStoreManager{reports: reports, metrics: metrics, source: source}
}

// GetReportCache returns the report snapshot store.
func (mgr *CacheStoreManager) GetReportCache() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.reports
}

// GetMetricsStore returns the metrics warehouse.
func (mgr *CacheStoreManager) GetMetricsStore() contract.MetricsStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.metrics
}

// GetSource returns the source override when one is set, otherwise the warehouse.
func (mgr *CacheStoreManager) GetSource() contract.MetricsSource {
	mgr.RLock()
	defer mgr.RUnlock()
	if mgr.source != nil {
		return mgr.source
	}
	if mgr.metrics != nil {
		return mgr.metrics
	}
	return nil
}

// SetSource replaces the scoring source, e.g. with a MemorySource loaded from --input.
func (mgr *CacheStoreManager) SetSource(src contract.MetricsSource) {
	mgr.Lock()
	defer mgr.Unlock()
	mgr.source = src
}
