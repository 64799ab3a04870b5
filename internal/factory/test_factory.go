package factory

import (
	"time"

	"github.com/poolhall/tablequeue/internal/dependencies/mocks"
	"github.com/poolhall/tablequeue/internal/services/queue"
	"github.com/poolhall/tablequeue/internal/storage/memory"
	"github.com/poolhall/tablequeue/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, mockClock, queue.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
