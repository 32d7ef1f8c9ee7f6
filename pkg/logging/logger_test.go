package logging_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/fieldmatch/pkg/logging"
)

func TestNewWritesJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.NewJSON(buf).Level(zerolog.InfoLevel)

	logger.Info().Str("target_field", "cust_id").Msg("matched")

	out := buf.String()
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"target_field":"cust_id"`)
	assert.Contains(t, out, `"message":"matched"`)
}

func TestLoggerLevels(t *testing.T) {
	configs := []struct {
		name   string
		config *logging.Config
		want   []string
		absent []string
	}{
		{
			name:   "debug includes everything",
			config: &logging.Config{Level: "debug", Format: "json"},
			want:   []string{"debug", "info", "error"},
		},
		{
			name:   "error drops info",
			config: &logging.Config{Level: "error", Format: "json"},
			want:   []string{"error"},
			absent: []string{`"message":"info"`, `"message":"debug"`},
		},
	}

	original := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(original) })

	for _, tc := range configs {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.NewLoggerFromConfig(tc.config).Output(buf)

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			for _, s := range tc.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tc.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Logger.Info().Msg("message 1")
	tl.Logger.Warn().Msg("message 2")

	tl.AssertContains(t, "message 1")
	tl.AssertNotContains(t, "message 3")
	tl.AssertCount(t, 2)
	assert.True(t, tl.ContainsAll("message 1", "message 2"))

	tl.Clear()
	assert.Equal(t, 0, tl.Count())
	assert.Empty(t, tl.Lines())
}

func TestCaptureLoggingForTest(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)

	logging.Warn().Str("source_field", "phone").Msg("sampler unavailable")

	tl.AssertContains(t, "sampler unavailable")
	tl.AssertContains(t, `"source_field":"phone"`)
}
