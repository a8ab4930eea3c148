package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"llvmls/internal/config"
	"llvmls/internal/modelcache"
	"llvmls/internal/observ"
	"llvmls/internal/trace"
)

// run holds what PersistentPreRunE prepared for the executing command.
var run = struct {
	cfg     config.Config
	cache   *modelcache.Cache
	timer   *observ.Timer
	cleanup func()
}{
	cfg:   config.Default(),
	cache: modelcache.New(4),
}

func setupRun(cmd *cobra.Command, _ []string) error {
	root := cmd.Root()

	configPath, err := root.PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Resolve(configPath, cwd)
	if err != nil {
		return err
	}
	run.cfg = cfg

	if err := setupColor(cmd); err != nil {
		return err
	}

	timings, err := root.PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	run.timer = nil
	if timings {
		run.timer = observ.NewTimer()
	}

	cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	run.cleanup = cleanup
	return nil
}

// finishRun prints timings and releases the tracer. It runs whether or not
// the command failed.
func finishRun(cmd *cobra.Command) {
	if run.timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), run.timer.Summary())
	}
	if run.cleanup != nil {
		run.cleanup()
		run.cleanup = nil
	}
}

// track starts a timing phase when --timings is set.
func track(name string) func(note string) {
	if run.timer == nil {
		return func(string) {}
	}
	return run.timer.Track(name)
}

func setupColor(cmd *cobra.Command) error {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(colorFlag) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, on or off)", colorFlag)
	}
	return nil
}

// setupTracing builds the tracer from flags, falling back to the [trace]
// section of the config, and attaches it to the command context.
func setupTracing(cmd *cobra.Command, cfg config.Config) (func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if traceOutput == "" {
		traceOutput = cfg.Trace.Output
	}

	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if levelStr == "" {
		levelStr = cfg.Trace.Level
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff && traceOutput != "" && !root.PersistentFlags().Changed("trace-level") {
		level = trace.LevelPhase
	}

	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(trace.Config{Level: level, OutputPath: traceOutput})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
