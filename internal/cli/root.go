// Package cli implements the sdktest command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// errRunFailed reports a finished run with failures. Its details were
// already printed by the reporter.
var errRunFailed = errors.New("run failed")

var envFile string

var rootCmd = &cobra.Command{
	Use:   "sdktest",
	Short: "Exercise the Connect API end to end",
	Long: "Connects as merchant and fulfiller, runs every scenario of the Connect\n" +
		"suite in order and reports each field assertion.\n\n" +
		"Configuration comes from the environment and an optional .env file.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runSuite,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (default: .env in . or ..)")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

// newLogger builds the diagnostics logger. It writes to stderr so report
// output on stdout stays clean.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
