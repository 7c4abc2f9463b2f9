package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableString(t *testing.T) {
	table := NewTable([]string{"Metric", "Value"}, io.Discard)
	table.AddRow("Processed files", "2")
	table.AddRow("Failed files", "1", "dropped")
	table.AddRow("Elapsed")

	want := strings.Join([]string{
		"┌─────────────────┬───────┐",
		"│ Metric          │ Value │",
		"├─────────────────┼───────┤",
		"│ Processed files │ 2     │",
		"│ Failed files    │ 1     │",
		"│ Elapsed         │       │",
		"└─────────────────┴───────┘",
	}, "\n")
	assert.Equal(t, want, table.String())
}

func TestTablePrint(t *testing.T) {
	var out bytes.Buffer
	table := NewTable([]string{"A"}, &out)
	table.AddRow("✓")
	table.Print()
	assert.Equal(t, "┌───┐\n│ A │\n├───┤\n│ ✓ │\n└───┘\n", out.String())
}

func TestRichHandlerText(t *testing.T) {
	var out bytes.Buffer
	log := NewRichLogger(&RichLoggerOptions{Output: &out, Level: slog.LevelInfo})

	log.Debug("hidden")
	log.With("run", 1).WithGroup("file").Warn("skipped", "name", "a.png")

	assert.Equal(t, "WARN  skipped run=1 file.name=a.png\n", out.String())
}

func TestRichHandlerJSON(t *testing.T) {
	var out bytes.Buffer
	log := NewRichLogger(&RichLoggerOptions{Output: &out, EnableJSON: true, CompactJSON: true})

	log.Error("conversion failed", "err", errors.New("boom"), "quality", 80)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "ERROR", got["level"])
	assert.Equal(t, "conversion failed", got["msg"])
	assert.Equal(t, "boom", got["err"])
	assert.Equal(t, float64(80), got["quality"])
	assert.NotContains(t, got, "time")
}

func TestConsoleHelpers(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&RichLoggerOptions{Output: &out, Level: slog.LevelDebug})

	c.Success("%d files processed", 2)
	c.Error("Error while converting %s", "a.png")
	c.Debug("detail")
	c.Prompt("Format?")

	assert.Equal(t, strings.Join([]string{
		"INFO  ✓ 2 files processed",
		"ERROR ✖ Error while converting a.png",
		"DEBUG detail",
		"? Format? ",
	}, "\n"), out.String())
}

func TestConsolePromptOutput(t *testing.T) {
	type testCase struct {
		name    string
		json    bool
		inLog   bool
		inAside bool
	}

	testCases := []testCase{
		{name: "text prompts share the log output", json: false, inLog: true},
		{name: "json prompts stay off the log output", json: true, inAside: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out, aside bytes.Buffer
			opts := &RichLoggerOptions{Output: &out, EnableJSON: tc.json, CompactJSON: true}
			if tc.json {
				opts.PromptOutput = &aside
			}
			c := NewConsole(opts)

			c.Info("starting")
			c.Prompt("Format?")

			assert.Equal(t, tc.inLog, strings.Contains(out.String(), "? Format? "))
			assert.Equal(t, tc.inAside, strings.Contains(aside.String(), "? Format? "))
			if tc.json {
				var line map[string]interface{}
				require.NoError(t, json.Unmarshal(out.Bytes(), &line), "only log records on the JSON stream")
				assert.Equal(t, "ℹ starting", line["msg"])
			}
		})
	}
}

func TestConsolePromptOutputDefaultsToStderrForJSON(t *testing.T) {
	c := NewConsole(&RichLoggerOptions{Output: io.Discard, EnableJSON: true})
	assert.Same(t, os.Stderr, c.PromptOutput)

	var out bytes.Buffer
	c = NewConsole(&RichLoggerOptions{Output: &out})
	assert.Same(t, &out, c.PromptOutput)
}

func TestConsoleBox(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&RichLoggerOptions{Output: &out})

	c.Box("info", "Version: dev")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "┌─info─"))
	assert.Equal(t, "│ Version: dev     │", lines[1])
	for _, line := range lines {
		assert.Equal(t, utf8.RuneCountInString(lines[1]), utf8.RuneCountInString(line), line)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "5s", FormatDuration(5*time.Second))
	assert.Equal(t, "2m03s", FormatDuration(123*time.Second))
	assert.Equal(t, "1h00m01s", FormatDuration(time.Hour+time.Second))
}

func TestProgressBarTolerantOfRepeatedComplete(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(2, "Converting images", &out)
	bar.Increment(1)
	bar.Increment(1)
	bar.Complete()
	bar.Complete()
	bar.Increment(1)
}
