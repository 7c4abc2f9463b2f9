package main

import (
	"bufio"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"smartcompress/logger"
)

const defaultQuality = 100

type Mode int

const (
	ModeRename Mode = iota
	ModeConvert
)

func (m Mode) String() string {
	if m == ModeConvert {
		return "convert"
	}
	return "rename"
}

// Params is collected once before any file is touched and never changes
// afterwards.
type Params struct {
	Rename           bool
	Prefix           string
	Format           string
	Quality          int
	PreserveMetadata bool
}

func (p Params) Mode() Mode {
	if p.Format == "" {
		return ModeRename
	}
	return ModeConvert
}

// Prompter asks one question and returns the typed line. End of input is
// reported as an empty answer.
type Prompter interface {
	Ask(question string) string
	Close() error
}

type LinePrompter struct {
	console *logger.Console
	reader  *bufio.Reader
	closer  io.Closer
	closed  bool
}

func NewLinePrompter(in io.Reader, console *logger.Console) *LinePrompter {
	p := &LinePrompter{
		console: console,
		reader:  bufio.NewReader(in),
	}
	if c, ok := in.(io.Closer); ok {
		p.closer = c
	}
	return p
}

func (p *LinePrompter) Ask(question string) string {
	if p.closed {
		return ""
	}
	p.console.Prompt(question)

	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		p.console.Debug("reading answer: %v", err)
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}

func (p *LinePrompter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// isAffirmative only accepts the exact answers y and yes.
func isAffirmative(answer string) bool {
	return answer == "y" || answer == "yes"
}

// parseQuality accepts any finite number, rounded to the nearest integer and
// kept out of range if typed so. Everything else falls back to the default.
func parseQuality(answer string) int {
	q, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if err != nil || math.IsNaN(q) || math.Abs(q) > math.MaxInt32 {
		return defaultQuality
	}
	return int(math.Round(q))
}

func normalizeFormat(answer string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(answer), "."))
}

func CollectParams(p Prompter, console *logger.Console) Params {
	params := Params{Quality: defaultQuality}

	params.Rename = isAffirmative(p.Ask("Rename files? (y/n) or leave empty (default: false)"))
	if params.Rename {
		console.Log("Files will be renamed")

		prefix := p.Ask("Enter a prefix or leave empty (ex: 'toto' -> toto-1.png)")
		if prefix != "" {
			console.Log("Prefix set to: %s", prefix)
			params.Prefix = prefix + "-"
		}
	}

	params.Format = normalizeFormat(p.Ask("Enter a format or leave empty (png, jpg, webp, tiff, gif, bmp, avif, svg, pdf, raw)"))
	if params.Format == "" {
		return params
	}
	console.Log("Format set to: %s", params.Format)

	if answer := strings.TrimSpace(p.Ask("Enter a quality or leave empty (0-100) (default: 100)")); answer != "" {
		params.Quality = parseQuality(answer)
		console.Log("Quality set to: %d", params.Quality)
	}

	params.PreserveMetadata = isAffirmative(p.Ask("Preserve metadata? (y/n) or leave empty (default: false)"))
	if params.PreserveMetadata {
		console.Log("Will preserve metadata")
	}

	return params
}
