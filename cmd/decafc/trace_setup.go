package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"decaf/internal/trace"
)

// traceFlags mirrors the --trace* persistent flags.
type traceFlags struct {
	output    string
	level     string
	mode      string
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(cmd *cobra.Command) (tf traceFlags, err error) {
	flags := cmd.Root().PersistentFlags()
	for name, dst := range map[string]*string{"trace": &tf.output, "trace-level": &tf.level, "trace-mode": &tf.mode} {
		if *dst, err = flags.GetString(name); err != nil {
			return tf, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	if tf.ringSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return tf, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if tf.heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return tf, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	return tf, nil
}

// config resolves the flags. An output without a level traces phases, and
// an output in ring mode also streams.
func (tf traceFlags) config(cmd *cobra.Command) (trace.Config, error) {
	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return trace.Config{}, err
	}
	if level == trace.LevelOff && tf.output != "" {
		level = trace.LevelPhase
	}
	cfg := trace.Config{Level: level, OutputPath: tf.output, RingSize: tf.ringSize}
	if level == trace.LevelOff {
		return cfg, nil
	}
	if cfg.Mode, err = trace.ParseMode(tf.mode); err != nil {
		return cfg, err
	}
	if tf.output != "" && cfg.Mode == trace.ModeRing {
		cfg.Mode = trace.ModeBoth
	}
	// "-" идёт в stderr команды, чтобы тесты могли его перехватить
	if tf.output == "-" {
		cfg.Output = cmd.ErrOrStderr()
	}
	return cfg, nil
}

// setupTracing installs the tracer described by the flags into the command
// context and starts the heartbeat. The cleanup stops both.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := tf.config(cmd)
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
	if !tracer.Enabled() {
		return func() {}, nil
	}

	heartbeat := trace.StartHeartbeat(tracer, tf.heartbeat)
	stderr := cmd.ErrOrStderr()
	return func() {
		heartbeat.Stop()
		closeTracer(stderr, tracer)
	}, nil
}

func closeTracer(stderr io.Writer, tracer trace.Tracer) {
	if err := tracer.Flush(); err != nil {
		fmt.Fprintf(stderr, "trace: flush error: %v\n", err)
	}
	if err := tracer.Close(); err != nil {
		fmt.Fprintf(stderr, "trace: close error: %v\n", err)
	}
}
