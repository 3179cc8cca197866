package utils

import (
	"time"
)

// TimeProvider defines an interface for getting the current time
// This allows for easy mocking in tests
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider implements TimeProvider using the actual system time
type RealTimeProvider struct{}

// Now returns the current system time
func (r *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// MockTimeProvider implements TimeProvider with a fixed time for testing
type MockTimeProvider struct {
	fixedTime time.Time
}

// NewMockTimeProvider creates a new mock time provider with the given fixed time
func NewMockTimeProvider(fixedTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{fixedTime: fixedTime}
}

// Now returns the fixed time
func (m *MockTimeProvider) Now() time.Time {
	return m.fixedTime
}

// SetTime updates the fixed time
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.fixedTime = t
}
