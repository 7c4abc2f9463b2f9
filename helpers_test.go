package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"smartcompress/logger"
)

func newTestConsole(out io.Writer) *logger.Console {
	return logger.NewConsole(&logger.RichLoggerOptions{
		Output:   out,
		Progress: io.Discard,
		Level:    slog.LevelDebug,
	})
}

type scriptedPrompter struct {
	answers []string
	asked   []string
	closed  int
}

func (p *scriptedPrompter) Ask(question string) string {
	p.asked = append(p.asked, question)
	if len(p.answers) == 0 {
		return ""
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer
}

func (p *scriptedPrompter) Close() error {
	p.closed++
	return nil
}

type convertCall struct {
	Src  string
	Dst  string
	Opts ConvertOptions
}

// fakeConverter writes a marker file for each successful call and fails the
// sources listed in fail.
type fakeConverter struct {
	fs    afero.Fs
	fail  map[string]bool
	calls []convertCall
}

func (c *fakeConverter) Convert(_ context.Context, src, dst string, opts ConvertOptions) error {
	c.calls = append(c.calls, convertCall{Src: filepath.Base(src), Dst: filepath.Base(dst), Opts: opts})
	if c.fail[filepath.Base(src)] {
		return fmt.Errorf("simulated failure for %s", filepath.Base(src))
	}
	return afero.WriteFile(c.fs, dst, []byte("converted:"+filepath.Base(src)), 0o644)
}

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, fs afero.Fs, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}
