// Package application provides the application interface for fieldmatch commands.
//
// Commands accept an Application rather than the concrete App so they can be
// tested with a Mock:
//
//	mock := &application.Mock{
//	    ClientFunc: func(opts ...fieldmatch.Option) (fieldmatch.Client, error) {
//	        return fieldmatch.New(opts...)
//	    },
//	}
//	cmd := match.NewCommand(mock)
package application

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/fieldmatch"
)

// Application provides the application interface that commands need.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns a fieldmatch client configured from flags, the
	// environment and the config file. Extra options are applied last.
	Client(opts ...fieldmatch.Option) (fieldmatch.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, ...).
	OutputFormat() string

	// Quiet reports whether only the primary output should be printed.
	Quiet() bool

	// NoColor reports whether colored output is disabled.
	NoColor() bool

	// Stdout is where command results are written.
	Stdout() io.Writer

	// Stderr is where alerts and summaries are written.
	Stderr() io.Writer

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
