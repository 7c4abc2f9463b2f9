package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

type Console struct {
	Logger       *slog.Logger
	Output       io.Writer
	Progress     io.Writer
	PromptOutput io.Writer
	Colorized    bool
}

func NewConsole(opts *RichLoggerOptions) *Console {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	// JSON output is meant for machines, keep questions off it.
	if opts.PromptOutput == nil {
		opts.PromptOutput = opts.Output
		if opts.EnableJSON {
			opts.PromptOutput = os.Stderr
		}
	}

	return &Console{
		Logger:       NewRichLogger(opts),
		Output:       opts.Output,
		Progress:     opts.Progress,
		PromptOutput: opts.PromptOutput,
		Colorized:    opts.EnableColors && !opts.EnableJSON,
	}
}

func (c *Console) StartTimer(name string) *Timer {
	return &Timer{
		Name:      name,
		StartTime: time.Now(),
		Console:   c,
	}
}

func (c *Console) paint(color, msg string) string {
	if c.Colorized {
		return color + msg + Reset
	}
	return msg
}

func (c *Console) Success(format string, args ...interface{}) {
	c.Logger.Info(c.paint(Green+Bold, "✓ "+fmt.Sprintf(format, args...)))
}

func (c *Console) Info(format string, args ...interface{}) {
	c.Logger.Info(c.paint(Blue+Bold, "ℹ "+fmt.Sprintf(format, args...)))
}

func (c *Console) Log(format string, args ...interface{}) {
	c.Logger.Info(c.paint(White, fmt.Sprintf(format, args...)))
}

func (c *Console) Debug(format string, args ...interface{}) {
	c.Logger.Debug(fmt.Sprintf(format, args...))
}

func (c *Console) Warn(format string, args ...interface{}) {
	c.Logger.Warn(c.paint(Yellow+Bold, "⚠ "+fmt.Sprintf(format, args...)))
}

func (c *Console) Error(format string, args ...interface{}) {
	c.Logger.Error(c.paint(Red+Bold, "✖ "+fmt.Sprintf(format, args...)))
}

func (c *Console) Fatal(format string, args ...interface{}) {
	c.Logger.Error(c.paint(BgRed+White+Bold, "💀 "+fmt.Sprintf(format, args...)))
	os.Exit(1)
}

// Prompt writes a question without going through the log handler, so the
// answer can be typed on the same line.
func (c *Console) Prompt(question string) {
	fmt.Fprint(c.PromptOutput, c.paint(Cyan+Bold, "? ")+question+" ")
}

func (c *Console) NewProgressBar(total int64, label string) *ProgressBar {
	return NewProgressBar(total, label, c.Progress)
}

func (c *Console) NewTable(headers []string) *Table {
	return NewTable(headers, c.Output)
}

func (c *Console) Box(title string, content string) {
	lines := strings.Split(content, "\n")
	maxWidth := utf8.RuneCountInString(title)

	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > maxWidth {
			maxWidth = n
		}
	}

	maxWidth += 4

	fmt.Fprintln(c.Output, "┌─"+title+strings.Repeat("─", maxWidth+1-utf8.RuneCountInString(title))+"┐")

	for _, line := range lines {
		fmt.Fprintln(c.Output, "│ "+line+strings.Repeat(" ", maxWidth-utf8.RuneCountInString(line))+" │")
	}

	fmt.Fprintln(c.Output, "└"+strings.Repeat("─", maxWidth+2)+"┘")
}
