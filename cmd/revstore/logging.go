package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/revstore/pkg/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose  bool
	logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func newLogger(w io.Writer) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), logLevel)
	return zap.New(core)
}

// applyVerbose switches the shared logger to debug when --verbose is set.
func applyVerbose() bool {
	if verbose {
		logLevel.SetLevel(zap.DebugLevel)
	}
	return verbose
}

// applyLogLevel switches the shared logger to the repository's configured
// level unless --verbose asked for debug output.
func applyLogLevel(r *repo.Repo) error {
	if applyVerbose() {
		return nil
	}
	if err := logLevel.UnmarshalText([]byte(r.Config.Log.Level)); err != nil {
		return fmt.Errorf("log level %q: %w", r.Config.Log.Level, err)
	}
	return nil
}

// openRepo opens the repository containing the working directory, logging
// to the command's stderr.
func openRepo(cmd *cobra.Command) (*repo.Repo, error) {
	r, err := repo.Open(".", repo.WithLogger(newLogger(cmd.ErrOrStderr())))
	if err != nil {
		return nil, err
	}
	if err := applyLogLevel(r); err != nil {
		return nil, err
	}
	return r, nil
}
