// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// MockWorkflow is a mock implementation of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

// NewMockWorkflow creates a MockWorkflow whose expectations are asserted when the test ends.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	wf := &MockWorkflow{}
	wf.Mock.Test(t)

	t.Cleanup(func() { wf.AssertExpectations(t) })

	return wf
}

func (_m *MockWorkflow) Analyze(ctx context.Context) (*m.ScanResult, error) {
	args := _m.Called(ctx)

	scan, _ := args.Get(0).(*m.ScanResult)

	return scan, args.Error(1)
}

func (_m *MockWorkflow) Scan(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

func (_m *MockWorkflow) List(ctx context.Context, args domain.ListArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) Top(ctx context.Context, args domain.TopArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) Audit(ctx context.Context, args domain.AuditArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) Shrink(ctx context.Context, args domain.ShrinkArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) FixShaders(ctx context.Context, args domain.FixShadersArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) Clean(ctx context.Context, args domain.CleanArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) Restore(ctx context.Context, args domain.RestoreArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) History(ctx context.Context, args domain.HistoryArgs) error {
	return _m.Called(ctx, args).Error(0)
}
