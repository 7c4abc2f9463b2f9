package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/spf13/afero"

	"smartcompress/logger"
)

func main() {
	cfg, err := ParseConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Stderr.WriteString("Configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	console := logger.NewConsole(cfg.LoggerOptions())

	if cfg.ShowVersion {
		console.Box("smartcompress version information", cfg.VersionInfo())
		os.Exit(0)
	}

	fs := afero.NewOsFs()
	prompter := NewLinePrompter(os.Stdin, console)
	defer prompter.Close()

	processor := NewProcessor(cfg, fs, NewImageConverter(fs, console), prompter, console)

	entries, err := processor.Enumerate()
	if err != nil {
		console.Fatal("Error occurred while reading directory: %v", err)
	}

	params := CollectParams(prompter, console)

	if _, err := processor.Run(context.Background(), params, entries); err != nil {
		console.Fatal("Processing error: %v", err)
	}
}
