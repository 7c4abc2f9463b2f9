package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"smartcompress/logger"
)

const (
	inputDirName  = "_input"
	outputDirName = "_output"
)

type Config struct {
	InputDir    string
	OutputDir   string
	SkipExt     []string
	NoColor     bool
	JSON        bool
	Debug       bool
	ShowVersion bool
}

var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// ParseConfig reads the command line. The input and output directories
// default to folders next to the executable.
func ParseConfig(args []string, output io.Writer) (*Config, error) {
	base, err := programDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	var skipExt string

	fs := flag.NewFlagSet("smartcompress", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.InputDir, "input", filepath.Join(base, inputDirName), "Directory holding the files to process")
	fs.StringVar(&cfg.OutputDir, "output", filepath.Join(base, outputDirName), "Directory receiving renamed or converted files")
	fs.StringVar(&skipExt, "skip-ext", "", "Comma separated extensions to leave untouched (ex: js,bat,txt)")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&cfg.JSON, "json", false, "Log as JSON lines")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: smartcompress [options]")
		fmt.Fprintln(output, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg.SkipExt = parseExtensions(skipExt)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func programDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func parseExtensions(list string) []string {
	var exts []string
	for _, ext := range strings.Split(list, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

func (cfg *Config) validate() error {
	if cfg.InputDir == "" {
		return fmt.Errorf("input directory must not be empty")
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	in, err := filepath.Abs(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("resolving input directory: %w", err)
	}
	out, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("resolving output directory: %w", err)
	}
	if in == out {
		return fmt.Errorf("input and output directories must differ")
	}
	return nil
}

func (cfg *Config) LoggerOptions() *logger.RichLoggerOptions {
	opts := logger.DefaultOptions()
	if cfg.NoColor {
		opts.EnableColors = false
	}
	if cfg.JSON {
		opts.EnableJSON = true
		opts.EnableColors = false
	}
	if cfg.Debug {
		opts.Level = slog.LevelDebug
	}
	return opts
}

func (cfg *Config) VersionInfo() string {
	return fmt.Sprintf("Version: %s\nBuild date: %s\nGit commit: %s", Version, BuildDate, GitCommit)
}
