package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testMockLogger struct {
	mock.Mock
}

func (m *testMockLogger) Info(msg string, fields ...Field) {
	m.Called(msg, fields)
}

func (m *testMockLogger) Warn(msg string, fields ...Field) {
	m.Called(msg, fields)
}

func (m *testMockLogger) Error(msg string, fields ...Field) {
	m.Called(msg, fields)
}

func (m *testMockLogger) Debug(msg string, fields ...Field) {
	m.Called(msg, fields)
}

func (m *testMockLogger) WithFields(fields ...Field) Logger {
	args := m.Called(fields)
	return args.Get(0).(Logger)
}

func (m *testMockLogger) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestNewMultiLogger(t *testing.T) {
	tests := []struct {
		name    string
		loggers []Logger
		wantLen int
	}{
		{name: "empty loggers", loggers: []Logger{}, wantLen: 0},
		{name: "single logger", loggers: []Logger{NullLogger{}}, wantLen: 1},
		{
			name:    "multiple loggers",
			loggers: []Logger{NullLogger{}, NullLogger{}, NullLogger{}},
			wantLen: 3,
		},
		{name: "nil slice", loggers: nil, wantLen: 0},
		{name: "nil entries dropped", loggers: []Logger{nil, NullLogger{}}, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ml := NewMultiLogger(tt.loggers...)
			require.NotNil(t, ml)
			assert.Len(t, ml.loggers, tt.wantLen)
		})
	}
}

func TestMultiLogger_DelegatesEveryLevel(t *testing.T) {
	fields := []Field{SuiteField("math"), IntField("attempt", 2)}

	mocks := []*testMockLogger{new(testMockLogger), new(testMockLogger)}
	loggers := make([]Logger, len(mocks))
	for i, m := range mocks {
		m.On("Info", "info", fields).Return()
		m.On("Warn", "warn", fields).Return()
		m.On("Error", "error", fields).Return()
		m.On("Debug", "debug", fields).Return()
		loggers[i] = m
	}

	ml := NewMultiLogger(loggers...)
	ml.Info("info", fields...)
	ml.Warn("warn", fields...)
	ml.Error("error", fields...)
	ml.Debug("debug", fields...)

	for _, m := range mocks {
		m.AssertExpectations(t)
	}
}

func TestMultiLogger_WithFields(t *testing.T) {
	var a, b bytes.Buffer
	ml := NewMultiLogger(
		NewConsoleLoggerTo(&a, false),
		NewConsoleLoggerTo(&b, false),
	)

	child := ml.WithFields(SuiteField("twice"))
	child.Info("closed")

	assert.Contains(t, a.String(), "suite=twice")
	assert.Contains(t, b.String(), "suite=twice")
}

func TestMultiLogger_Close(t *testing.T) {
	tests := []struct {
		name    string
		errors  []error
		wantErr error
	}{
		{name: "all succeed", errors: []error{nil, nil}},
		{
			name:    "first fails only",
			errors:  []error{errors.New("first error"), nil},
			wantErr: errors.New("first error"),
		},
		{
			name:    "both fail are joined",
			errors:  []error{errors.New("first"), errors.New("second")},
			wantErr: errors.New("first\nsecond"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := make([]*testMockLogger, len(tt.errors))
			loggers := make([]Logger, len(tt.errors))
			for i, err := range tt.errors {
				m := new(testMockLogger)
				m.On("Close").Return(err)
				mocks[i] = m
				loggers[i] = m
			}

			err := NewMultiLogger(loggers...).Close()

			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
			}

			for _, m := range mocks {
				m.AssertExpectations(t)
			}
		})
	}
}

func TestMultiLogger_EmptyLoggers(t *testing.T) {
	ml := NewMultiLogger()

	ml.Info("test")
	ml.Warn("test")
	ml.Error("test")
	ml.Debug("test")

	child := ml.WithFields(LogField("k", "v"))
	require.NotNil(t, child)
	assert.NoError(t, ml.Close())
}
