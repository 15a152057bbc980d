package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tracegen/internal/trace"
)

// traceFlags holds the raw --trace* persistent flags.
type traceFlags struct {
	output, level, mode, format string
	ringSize                    int
	heartbeat                   time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	flags := cmd.Root().PersistentFlags()
	var tf traceFlags
	var errs [6]error
	tf.output, errs[0] = flags.GetString("trace")
	tf.level, errs[1] = flags.GetString("trace-level")
	tf.mode, errs[2] = flags.GetString("trace-mode")
	tf.format, errs[3] = flags.GetString("trace-format")
	tf.ringSize, errs[4] = flags.GetInt("trace-ring-size")
	tf.heartbeat, errs[5] = flags.GetDuration("trace-heartbeat")
	for _, err := range errs {
		if err != nil {
			return tf, fmt.Errorf("read trace flags: %w", err)
		}
	}
	return tf, nil
}

// config resolves the flags into a tracer configuration. An output file
// without a level traces the phases, and a ring with an output file also
// streams.
func (tf traceFlags) config() (trace.Config, error) {
	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return trace.Config{}, err
	}
	if level == trace.LevelOff && tf.output != "" {
		level = trace.LevelPhase
	}
	cfg := trace.Config{Level: level, OutputPath: tf.output, RingSize: tf.ringSize, Heartbeat: tf.heartbeat}
	if level == trace.LevelOff {
		return cfg, nil
	}
	if cfg.Mode, err = trace.ParseMode(tf.mode); err != nil {
		return trace.Config{}, err
	}
	if tf.output != "" && cfg.Mode == trace.ModeRing {
		cfg.Mode = trace.ModeBoth
	}
	if cfg.Format, err = trace.ParseFormat(tf.format); err != nil {
		return trace.Config{}, err
	}
	return cfg, nil
}

// setupTracing attaches the configured tracer to the command context. The
// cleanup stops the heartbeat and flushes the tracer.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := tf.config()
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
	if !tracer.Enabled() {
		return func() {}, nil
	}

	heartbeat := trace.StartHeartbeat(tracer, cfg.Heartbeat)
	stderr := cmd.ErrOrStderr()
	return func() {
		heartbeat.Stop()
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(stderr, "trace: flush: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(stderr, "trace: close: %v\n", err)
		}
	}, nil
}

// dumpTraceRing prints the events kept in memory after a failed run.
func dumpTraceRing(cmd *cobra.Command) {
	ring := trace.RingOf(trace.FromContext(cmd.Context()))
	if ring == nil {
		return
	}
	out := cmd.ErrOrStderr()
	fmt.Fprintln(out, "trace: last events before the failure")
	if err := ring.Dump(out, trace.FormatText); err != nil {
		fmt.Fprintf(out, "trace: dump: %v\n", err)
	}
}
