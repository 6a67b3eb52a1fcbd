package authkit_test

import (
	"github.com/stretchr/testify/mock"
)

// MockIdentity implements authkit.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) FirstName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) LastName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Active() bool {
	args := m.Called()
	return args.Bool(0)
}

// nullLogger swallows output so tests stay quiet
type nullLogger struct{}

func (nullLogger) Debug(format string, args ...any) {}
func (nullLogger) Info(format string, args ...any)  {}
func (nullLogger) Warn(format string, args ...any)  {}
func (nullLogger) Error(format string, args ...any) {}

// recordingLogger captures Warn lines for assertions on security logging
type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Debug(format string, args ...any) {}
func (l *recordingLogger) Info(format string, args ...any)  {}
func (l *recordingLogger) Error(format string, args ...any) {}

func (l *recordingLogger) Warn(format string, args ...any) {
	l.warnings = append(l.warnings, format)
}
