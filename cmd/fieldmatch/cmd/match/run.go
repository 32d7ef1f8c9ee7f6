package match

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/agentstation/fieldmatch"
	"github.com/agentstation/fieldmatch/cmd/application"
	"github.com/agentstation/fieldmatch/internal/cmd/alerts"
	"github.com/agentstation/fieldmatch/pkg/engine"
	"github.com/agentstation/fieldmatch/pkg/fields"
	"github.com/agentstation/fieldmatch/pkg/merge"
)

// Session is one matching run over two record files.
type Session struct {
	Client fieldmatch.Client
	Source merge.Dataset
	Target merge.Dataset
	Result *engine.Result
}

// Run loads both record files and matches their first records.
func Run(ctx context.Context, app application.Application, sourcePath, targetPath string) (*Session, error) {
	client, err := app.Client()
	if err != nil {
		return nil, err
	}

	source, err := load(client, "source", sourcePath)
	if err != nil {
		return nil, err
	}
	target, err := load(client, "target", targetPath)
	if err != nil {
		return nil, err
	}

	app.Logger().Debug().
		Str("source", filepath.Base(sourcePath)).
		Str("target", filepath.Base(targetPath)).
		Int("source_fields", source.Fields.Len()).
		Int("target_fields", target.Fields.Len()).
		Msg("Matching datasets")

	res, err := client.Match(ctx, source.Fields, target.Fields)
	if err != nil {
		return nil, err
	}
	return &Session{Client: client, Source: source, Target: target, Result: res}, nil
}

func load(client fieldmatch.Client, system, path string) (merge.Dataset, error) {
	records, err := fields.LoadRecords(path)
	if err != nil {
		return merge.Dataset{}, err
	}
	set, err := client.FieldSet(system, records)
	if err != nil {
		return merge.Dataset{}, fmt.Errorf("reading %s fields from %s: %w", system, path, err)
	}
	return merge.Dataset{Fields: set, Records: records}, nil
}

// ReportWarnings writes run warnings to stderr unless quiet output was asked for.
func ReportWarnings(app application.Application, warnings []string) error {
	if app.Quiet() || len(warnings) == 0 {
		return nil
	}
	w := alerts.NewWriterTo(app.Stderr(), !app.NoColor())
	msg := "1 warning"
	if len(warnings) != 1 {
		msg = fmt.Sprintf("%d warnings", len(warnings))
	}
	return w.WriteAlert(alerts.NewWarning(msg).WithDetails(warnings...))
}
