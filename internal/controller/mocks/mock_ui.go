// Package mocks provides testify mocks for the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"assetmaid.dev/pkg/assetmaid/internal/controller"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// MockUI is a mock implementation of controller.UI.
type MockUI struct {
	mock.Mock
}

// NewMockUI creates a MockUI whose expectations are asserted when the test ends.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mockUI := &MockUI{}
	mockUI.Mock.Test(t)

	t.Cleanup(func() { mockUI.AssertExpectations(t) })

	return mockUI
}

func (_m *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	args := _m.Called(ctx, options)
	return args.Error(0)
}

func (_m *MockUI) Close(ctx context.Context) {
	_m.Called(ctx)
}

func (_m *MockUI) Wait(ctx context.Context) {
	_m.Called(ctx)
}

func (_m *MockUI) DisplayScanSummary(ctx context.Context, scan *m.ScanResult) {
	_m.Called(ctx, scan)
}

func (_m *MockUI) DisplayWarnings(ctx context.Context, warnings []m.Warning) {
	_m.Called(ctx, warnings)
}

func (_m *MockUI) DisplayListing(ctx context.Context, listing controller.Listing) error {
	args := _m.Called(ctx, listing)
	return args.Error(0)
}

func (_m *MockUI) DisplayTopLists(ctx context.Context, lists m.TopLists, summary m.Summary) error {
	args := _m.Called(ctx, lists, summary)
	return args.Error(0)
}

func (_m *MockUI) DisplayRelocationPlan(ctx context.Context, plan m.RelocationPlan) {
	_m.Called(ctx, plan)
}

func (_m *MockUI) DisplayRelocationResult(ctx context.Context, result m.RelocationResult) {
	_m.Called(ctx, result)
}

func (_m *MockUI) DisplayBatchResult(ctx context.Context, result m.BatchResult) {
	_m.Called(ctx, result)
}

func (_m *MockUI) DisplayHistory(ctx context.Context, records []m.HistoryRecord) error {
	args := _m.Called(ctx, records)
	return args.Error(0)
}

func (_m *MockUI) DisplayMessage(ctx context.Context, format string, args ...any) {
	_m.Called(ctx, format, args)
}

// MockConfirmer is a mock implementation of controller.Confirmer.
type MockConfirmer struct {
	mock.Mock
}

// NewMockConfirmer creates a MockConfirmer whose expectations are asserted when the test ends.
func NewMockConfirmer(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockConfirmer {
	mockConfirmer := &MockConfirmer{}
	mockConfirmer.Mock.Test(t)

	t.Cleanup(func() { mockConfirmer.AssertExpectations(t) })

	return mockConfirmer
}

func (_m *MockConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	args := _m.Called(ctx, prompt)
	return args.Bool(0), args.Error(1)
}

func (_m *MockConfirmer) Prompt(ctx context.Context, prompt string) (string, error) {
	args := _m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
