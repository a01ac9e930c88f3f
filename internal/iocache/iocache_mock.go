package iocache

import (
	"context"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetReportCache implements the StoreManager interface.
func (m *MockStoreManager) GetReportCache() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetMetricsStore implements the StoreManager interface.
func (m *MockStoreManager) GetMetricsStore() contract.MetricsStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.MetricsStore)
	return store
}

// GetSource implements the StoreManager interface.
func (m *MockStoreManager) GetSource() contract.MetricsSource {
	ret := m.Called()
	src, _ := ret.Get(0).(contract.MetricsSource)
	return src
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMetricsStore is a mock implementation of MetricsStore for testing.
type MockMetricsStore struct {
	mock.Mock
}

var _ contract.MetricsStore = &MockMetricsStore{} // Compile-time check

// FetchDailyMetrics implements the MetricsSource interface.
func (m *MockMetricsStore) FetchDailyMetrics(ctx context.Context, groupID string, date time.Time) (schema.DailyRecord, error) {
	args := m.Called(ctx, groupID, date)
	return args.Get(0).(schema.DailyRecord), args.Error(1)
}

// FetchRange implements the MetricsSource interface.
func (m *MockMetricsStore) FetchRange(ctx context.Context, groupID string, start, end time.Time) ([]schema.DailyRecord, error) {
	args := m.Called(ctx, groupID, start, end)
	records, _ := args.Get(0).([]schema.DailyRecord)
	return records, args.Error(1)
}

// FetchByReportID implements the MetricsSource interface.
func (m *MockMetricsStore) FetchByReportID(ctx context.Context, reportID string) (schema.DailyRecord, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).(schema.DailyRecord), args.Error(1)
}

// ListGroups implements the MetricsSource interface.
func (m *MockMetricsStore) ListGroups(ctx context.Context) ([]schema.GroupInfo, error) {
	args := m.Called(ctx)
	groups, _ := args.Get(0).([]schema.GroupInfo)
	return groups, args.Error(1)
}

// UpsertDailyMetrics implements the MetricsStore interface.
func (m *MockMetricsStore) UpsertDailyMetrics(ctx context.Context, records []schema.DailyRecord) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

// BeginRun implements the MetricsStore interface.
func (m *MockMetricsStore) BeginRun(command string, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(command, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the MetricsStore interface.
func (m *MockMetricsStore) EndRun(runID int64, endTime time.Time, totalReports int) error {
	args := m.Called(runID, endTime, totalReports)
	return args.Error(0)
}

// GetStatus implements the MetricsStore interface.
func (m *MockMetricsStore) GetStatus() (schema.MetricsStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.MetricsStatus), args.Error(1)
}

// GetAllDailyMetrics implements the MetricsStore interface.
func (m *MockMetricsStore) GetAllDailyMetrics(ctx context.Context) ([]schema.DailyRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.DailyRecord)
	return records, args.Error(1)
}

// GetAllAnalysisRuns implements the MetricsStore interface.
func (m *MockMetricsStore) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.AnalysisRunRecord)
	return runs, args.Error(1)
}

// Close implements the MetricsStore interface.
func (m *MockMetricsStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
