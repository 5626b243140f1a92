// Package mocks provides testify mocks for the adapter interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// MockReportStore is a mock implementation of adapter.ReportStore.
type MockReportStore struct {
	mock.Mock
}

// NewMockReportStore creates a MockReportStore whose expectations are asserted when the
// test ends.
func NewMockReportStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReportStore {
	store := &MockReportStore{}
	store.Mock.Test(t)

	t.Cleanup(func() { store.AssertExpectations(t) })

	return store
}

func (_m *MockReportStore) SaveHistory(ctx context.Context, record m.HistoryRecord) (int64, error) {
	args := _m.Called(ctx, record)

	id, _ := args.Get(0).(int64)

	return id, args.Error(1)
}

func (_m *MockReportStore) ListHistory(ctx context.Context, limit int) ([]m.HistoryRecord, error) {
	args := _m.Called(ctx, limit)

	records, _ := args.Get(0).([]m.HistoryRecord)

	return records, args.Error(1)
}

func (_m *MockReportStore) Close() error {
	args := _m.Called()
	return args.Error(0)
}
