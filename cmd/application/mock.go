package application

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/fieldmatch"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	ClientFunc func(opts ...fieldmatch.Option) (fieldmatch.Client, error)
	LoggerFunc func() *zerolog.Logger

	Format    string
	IsQuiet   bool
	Out       io.Writer
	Err       io.Writer
	VersionID string
}

// Client returns a client from ClientFunc, or a default client.
func (m *Mock) Client(opts ...fieldmatch.Option) (fieldmatch.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(opts...)
	}
	return fieldmatch.New(opts...)
}

// Logger returns a logger from LoggerFunc, or a disabled logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string { return m.Format }

// Quiet returns IsQuiet.
func (m *Mock) Quiet() bool { return m.IsQuiet }

// NoColor always disables color.
func (m *Mock) NoColor() bool { return true }

// Stdout returns Out, or io.Discard.
func (m *Mock) Stdout() io.Writer {
	if m.Out != nil {
		return m.Out
	}
	return io.Discard
}

// Stderr returns Err, or io.Discard.
func (m *Mock) Stderr() io.Writer {
	if m.Err != nil {
		return m.Err
	}
	return io.Discard
}

// Version returns VersionID, or "dev".
func (m *Mock) Version() string {
	if m.VersionID != "" {
		return m.VersionID
	}
	return "dev"
}

// Commit returns a placeholder.
func (m *Mock) Commit() string { return "unknown" }

// Date returns a placeholder.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns a placeholder.
func (m *Mock) BuiltBy() string { return "unknown" }

var _ Application = (*Mock)(nil)
