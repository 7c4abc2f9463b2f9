package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"smartcompress/logger"
)

type Processor struct {
	Fs        afero.Fs
	InputDir  string
	OutputDir string
	SkipExt   map[string]bool
	Converter Converter
	Prompter  Prompter
	Console   *logger.Console
}

// Report describes what a run did to the captured entries.
type Report struct {
	Mode      Mode
	Processed int
	Renamed   int
	Converted int
	Failed    []string
	Skipped   []string
	Deleted   []string
	Counter   int
}

func NewProcessor(cfg *Config, fs afero.Fs, conv Converter, prompter Prompter, console *logger.Console) *Processor {
	skip := make(map[string]bool, len(cfg.SkipExt))
	for _, ext := range cfg.SkipExt {
		skip[ext] = true
	}

	return &Processor{
		Fs:        fs,
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		SkipExt:   skip,
		Converter: conv,
		Prompter:  prompter,
		Console:   console,
	}
}

// Enumerate captures the input directory listing. Entries created after this
// call are never processed.
func (p *Processor) Enumerate() ([]string, error) {
	infos, err := afero.ReadDir(p.Fs, p.InputDir)
	if err != nil {
		return nil, fmt.Errorf("error while reading directory %s: %w", p.InputDir, err)
	}

	entries := make([]string, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, info.Name())
	}
	return entries, nil
}

// eligible reports whether name is a regular file that is not excluded by
// extension. A vanished entry is treated as ineligible.
func (p *Processor) eligible(name string) bool {
	info, err := p.Fs.Stat(filepath.Join(p.InputDir, name))
	if err != nil {
		p.Console.Debug("skipping %s: %v", name, err)
		return false
	}
	if !info.Mode().IsRegular() {
		return false
	}
	return !p.SkipExt[strings.ToLower(filepath.Ext(name))]
}

func outputName(params Params, name string, counter int) string {
	ext := filepath.Ext(name)
	seq := params.Prefix + strconv.Itoa(counter)

	if params.Mode() == ModeRename {
		return seq + ext
	}
	if params.Rename {
		return seq + "." + params.Format
	}
	return strings.TrimSuffix(name, ext) + "." + params.Format
}

func (p *Processor) Run(ctx context.Context, params Params, entries []string) (*Report, error) {
	mode := params.Mode()
	report := &Report{Mode: mode, Counter: 1}

	if err := p.Fs.MkdirAll(p.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("error creating output directory: %w", err)
	}

	p.Console.Info("Processing %d entries from %s (mode: %s)", len(entries), p.InputDir, mode)
	timer := p.Console.StartTimer("Batch")

	var eligible []string
	for _, name := range entries {
		if p.eligible(name) {
			eligible = append(eligible, name)
		} else {
			report.Skipped = append(report.Skipped, name)
		}
	}

	var bar *logger.ProgressBar
	if mode == ModeConvert && len(eligible) > 0 {
		bar = p.Console.NewProgressBar(int64(len(eligible)), "Converting images")
	}

	for _, name := range eligible {
		newName := outputName(params, name, report.Counter)
		src := filepath.Join(p.InputDir, name)
		dst := filepath.Join(p.OutputDir, newName)

		switch mode {
		case ModeRename:
			if err := p.move(src, dst); err != nil {
				return report, err
			}
			report.Renamed++
			p.Console.Log("The file %s has been renamed to %s", name, newName)
		case ModeConvert:
			err := p.Converter.Convert(ctx, src, dst, ConvertOptions{
				Quality:          params.Quality,
				PreserveMetadata: params.PreserveMetadata,
			})
			if err != nil {
				report.Failed = append(report.Failed, name)
				p.Console.Error("Error while converting %s: %v", name, err)
			} else {
				report.Converted++
				p.Console.Log("The file %s has been converted to %s", name, newName)
			}
			bar.Increment(1)
		}

		report.Processed++
		report.Counter++
	}

	if bar != nil {
		bar.Complete()
	}
	elapsed := timer.End()

	p.Console.Success("%d files processed", report.Processed)

	if mode == ModeRename {
		return report, nil
	}

	p.displayResults(report, len(entries), elapsed)

	if isAffirmative(p.Prompter.Ask("Delete input files? (y/n) or leave empty (default: false)")) {
		p.deleteInputs(eligible, report)
		p.Console.Success("Done!")
	}

	if err := p.Prompter.Close(); err != nil {
		p.Console.Debug("closing prompt: %v", err)
	}

	return report, nil
}

func (p *Processor) move(src, dst string) error {
	if _, err := p.Fs.Stat(dst); err == nil {
		p.Console.Warn("Overwriting existing %s", filepath.Base(dst))
	}
	if err := p.Fs.Rename(src, dst); err != nil {
		return fmt.Errorf("error renaming %s: %w", filepath.Base(src), err)
	}
	return nil
}

// deleteInputs removes every eligible entry captured at startup, whether or
// not its conversion succeeded.
func (p *Processor) deleteInputs(names []string, report *Report) {
	failed := make(map[string]bool, len(report.Failed))
	for _, name := range report.Failed {
		failed[name] = true
	}

	for _, name := range names {
		if failed[name] {
			p.Console.Warn("Deleting %s although its conversion failed", name)
		}
		err := p.Fs.Remove(filepath.Join(p.InputDir, name))
		if err != nil && !os.IsNotExist(err) {
			p.Console.Error("Error deleting %s: %v", name, err)
			continue
		}
		report.Deleted = append(report.Deleted, name)
	}
}

func (p *Processor) displayResults(report *Report, total int, elapsed time.Duration) {
	table := p.Console.NewTable([]string{"Metric", "Value"})
	table.AddRow("Entries", fmt.Sprintf("%d", total))
	table.AddRow("Processed files", fmt.Sprintf("%d", report.Processed))
	table.AddRow("Converted files", fmt.Sprintf("%d", report.Converted))
	table.AddRow("Failed files", fmt.Sprintf("%d", len(report.Failed)))
	table.AddRow("Skipped entries", fmt.Sprintf("%d", len(report.Skipped)))
	table.AddRow("Elapsed", logger.FormatDuration(elapsed))

	p.Console.Info("Processing Summary:")
	table.Print()
}
