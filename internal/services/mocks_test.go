package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cbmflow/internal/store"
)

// MockLedger is a mock for store.Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Record(ctx context.Context, rec store.UploadRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockLedger) List(ctx context.Context, limit int) ([]store.UploadRecord, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]store.UploadRecord)
	return records, args.Error(1)
}

func (m *MockLedger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLedger) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPinger is a mock for Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
