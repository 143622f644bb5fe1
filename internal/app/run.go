package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"prodfmt/internal/categorize"
	"prodfmt/internal/config"
	"prodfmt/internal/discovery"
	"prodfmt/internal/logging"
	"prodfmt/internal/output"
)

type Options struct {
	Inputs       []string
	ConfigPath   string
	OutputPath   string
	Concurrency  int
	LogFile      string
	Verbose      bool
	NoCategorize bool
	CWD          string
	Stdout       io.Writer
	Stderr       io.Writer
	Stdin        io.Reader
}

type Result struct {
	Sources int
	Blocks  int
	Failed  int
}

const stdinName = "stdin"

func Run(opts Options) (Result, error) {
	cwd := strings.TrimSpace(opts.CWD)
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Result{}, fmt.Errorf("resolve working dir: %w", err)
		}
		cwd = wd
	}

	cfg, paths, err := config.Load(opts.ConfigPath, cwd)
	if err != nil {
		return Result{}, err
	}
	if opts.Concurrency > 0 {
		cfg.Concurrency = opts.Concurrency
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger, closer, err := logging.New(stderr, opts.LogFile, opts.Verbose)
	if err != nil {
		return Result{}, fmt.Errorf("init logging: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	logger.Emit(logging.Event{Level: "debug", Event: "startup"})
	logger.Emit(logging.Event{Level: "debug", Event: "config_loaded", Input: paths.ConfigSource})

	var classifier categorize.Classifier = categorize.Noop{}
	if cfg.Categorizer.Enabled && !opts.NoCategorize {
		classifier = categorize.NewClient(
			cfg.Categorizer.Endpoint,
			cfg.Categorizer.Model,
			cfg.Categorizer.Language,
			time.Duration(cfg.Categorizer.TimeoutSec)*time.Second,
		)
	}

	f := newFormatter(cfg, classifier, logger)
	defer f.wait()

	sources, result, err := collectSources(opts, cwd, logger)
	if err != nil {
		return result, err
	}

	outputs := make([]string, 0, len(sources))
	for _, src := range sources {
		md, blocks := f.formatSource(src.name, src.raw)
		result.Blocks += blocks
		logger.Emit(logging.Event{Level: "debug", Event: "format_ok", Input: src.name, Block: blocks})
		if md == "" {
			continue
		}
		outputs = append(outputs, md)
		src.rendered = md
	}
	result.Sources = len(sources)

	if err := writeOutputs(opts, sources, outputs, f.separator, logger); err != nil {
		result.Failed++
		return result, err
	}
	return result, nil
}

type source struct {
	name     string
	raw      string
	rendered string
}

func collectSources(opts Options, cwd string, logger *logging.Logger) ([]*source, Result, error) {
	result := Result{}
	if len(opts.Inputs) == 0 {
		stdin := opts.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, result, fmt.Errorf("read stdin: %w", err)
		}
		return []*source{{name: stdinName, raw: string(raw)}}, result, nil
	}

	abs := make([]string, 0, len(opts.Inputs))
	for _, in := range opts.Inputs {
		if filepath.IsAbs(in) {
			abs = append(abs, in)
		} else {
			abs = append(abs, filepath.Join(cwd, in))
		}
	}
	discovered, err := discovery.Discover(abs)
	if err != nil {
		return nil, result, err
	}
	for _, w := range discovered.Warnings {
		logger.Emit(logging.Event{Level: "warn", Event: "scan_warning", Error: w})
	}

	sources := make([]*source, 0, len(discovered.Files))
	for _, file := range discovered.Files {
		raw, readErr := os.ReadFile(file)
		if readErr != nil {
			result.Failed++
			logger.Emit(logging.Event{Level: "error", Event: "read_failed", Input: file, Error: readErr.Error()})
			continue
		}
		sources = append(sources, &source{name: file, raw: string(raw)})
	}
	if len(sources) == 0 {
		return nil, result, fmt.Errorf("no readable listing files")
	}
	return sources, result, nil
}

func writeOutputs(opts Options, sources []*source, outputs []string, separator string, logger *logging.Logger) error {
	joined := strings.Join(outputs, "\n"+separator+"\n")

	target := strings.TrimSpace(opts.OutputPath)
	if target == "" {
		stdout := opts.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		if joined != "" {
			fmt.Fprintln(stdout, joined)
		}
		return nil
	}

	if st, err := os.Stat(target); err == nil && st.IsDir() {
		if err := output.EnsureDir(target); err != nil {
			return err
		}
		for _, src := range sources {
			if src.rendered == "" {
				continue
			}
			_, path, err := output.Next(target, 8, nil)
			if err != nil {
				return err
			}
			if err := output.Write(path, src.rendered+"\n"); err != nil {
				logger.Emit(logging.Event{Level: "error", Event: "write_failed", Input: src.name, OutputFile: path, Error: err.Error()})
				return err
			}
			logger.Emit(logging.Event{Event: "write_ok", Input: src.name, OutputFile: path})
		}
		return nil
	}

	if err := output.Write(target, joined+"\n"); err != nil {
		logger.Emit(logging.Event{Level: "error", Event: "write_failed", OutputFile: target, Error: err.Error()})
		return err
	}
	logger.Emit(logging.Event{Event: "write_ok", OutputFile: target})
	return nil
}
