package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	BgRed   = "\033[41m"
)

type RichLoggerOptions struct {
	Output           io.Writer
	Progress         io.Writer
	PromptOutput     io.Writer
	TimeFormat       string
	Level            slog.Level
	AddSource        bool
	EnableJSON       bool
	EnableColors     bool
	EnableTime       bool
	CompactJSON      bool
	EnableSeparators bool
}

// DefaultOptions logs to stdout. Colors are only enabled when stdout is a
// terminal, and progress bars only render when stderr is one.
func DefaultOptions() *RichLoggerOptions {
	opts := &RichLoggerOptions{
		Level:        slog.LevelInfo,
		EnableColors: isTerminal(os.Stdout),
		EnableTime:   true,
		TimeFormat:   "15:04:05.000",
		Output:       os.Stdout,
		CompactJSON:  true,
		Progress:     io.Discard,
	}
	if isTerminal(os.Stderr) {
		opts.Progress = os.Stderr
	}
	return opts
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type RichHandler struct {
	opts   *RichLoggerOptions
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

func NewRichHandler(opts *RichLoggerOptions) *RichHandler {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &RichHandler{
		opts: opts,
		mu:   &sync.Mutex{},
	}
}

func (h *RichHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

func (h *RichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := h.clone()
	for _, a := range attrs {
		a.Key = h.qualify(a.Key)
		h2.attrs = append(h2.attrs, a)
	}
	return h2
}

func (h *RichHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.groups = append(h2.groups, name)
	return h2
}

func (h *RichHandler) clone() *RichHandler {
	h2 := &RichHandler{
		opts:   h.opts,
		mu:     h.mu,
		attrs:  make([]slog.Attr, len(h.attrs)),
		groups: make([]string, len(h.groups)),
	}
	copy(h2.attrs, h.attrs)
	copy(h2.groups, h.groups)
	return h2
}

func (h *RichHandler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

// collect returns the handler attributes followed by the record ones.
func (h *RichHandler) collect(record slog.Record) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(h.attrs)+record.NumAttrs())
	attrs = append(attrs, h.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		a.Key = h.qualify(a.Key)
		attrs = append(attrs, a)
		return true
	})
	return attrs
}

func (h *RichHandler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.opts.EnableJSON {
		return h.handleJSON(record)
	}

	return h.handleText(record)
}

func (h *RichHandler) handleJSON(record slog.Record) error {
	jsonMap := make(map[string]interface{})

	if h.opts.EnableTime {
		jsonMap["time"] = record.Time.Format(h.opts.TimeFormat)
	}
	jsonMap["level"] = record.Level.String()

	if h.opts.AddSource && record.PC != 0 {
		jsonMap["source"] = source(record.PC, false)
	}

	jsonMap["msg"] = record.Message

	for _, a := range h.collect(record) {
		v := a.Value.Resolve().Any()
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		jsonMap[a.Key] = v
	}

	var jsonData []byte
	var err error
	if h.opts.CompactJSON {
		jsonData, err = json.Marshal(jsonMap)
	} else {
		jsonData, err = json.MarshalIndent(jsonMap, "", "  ")
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(h.opts.Output, string(jsonData))
	return err
}

var levelColors = map[slog.Level]string{
	slog.LevelDebug: Cyan,
	slog.LevelInfo:  Green,
	slog.LevelWarn:  Yellow,
	slog.LevelError: Red,
}

func (h *RichHandler) handleText(record slog.Record) error {
	var builder strings.Builder

	paint := func(color, s string) {
		if h.opts.EnableColors && color != "" {
			builder.WriteString(color)
			builder.WriteString(s)
			builder.WriteString(Reset)
			return
		}
		builder.WriteString(s)
	}

	if h.opts.EnableTime {
		paint(Blue, record.Time.Format(h.opts.TimeFormat))
		builder.WriteString(" ")
	}

	paint(levelColors[record.Level]+Bold, fmt.Sprintf("%-5s", strings.ToUpper(record.Level.String())))
	builder.WriteString(" ")

	if h.opts.AddSource && record.PC != 0 {
		paint(Magenta, source(record.PC, true))
		builder.WriteString(" ")
	}

	builder.WriteString(record.Message)

	for _, a := range h.collect(record) {
		builder.WriteString(" ")
		paint(Cyan, a.Key+"=")
		builder.WriteString(a.Value.Resolve().String())
	}

	if h.opts.EnableSeparators {
		builder.WriteString("\n")
		paint(Blue, strings.Repeat("─", 80))
	}

	_, err := fmt.Fprintln(h.opts.Output, builder.String())
	return err
}

func source(pc uintptr, short bool) string {
	fs := runtime.CallersFrames([]uintptr{pc})
	f, _ := fs.Next()
	file := f.File
	if short {
		if lastSlash := strings.LastIndex(file, "/"); lastSlash >= 0 {
			file = file[lastSlash+1:]
		}
	}
	return fmt.Sprintf("%s:%d", file, f.Line)
}

func NewRichLogger(opts *RichLoggerOptions) *slog.Logger {
	if opts == nil {
		opts = DefaultOptions()
	}
	return slog.New(NewRichHandler(opts))
}
