package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"agentops/internal/config"
)

// Execute runs the CLI.
func Execute() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	root := silenceUsageAndErrors(&cobra.Command{
		Use:   "agentops",
		Short: "Evaluate agents against golden sets and manage versioned improvements.",
	})
	root.AddCommand(newValidateSpecCmd())
	root.AddCommand(newEvalCmd(cfg, logger))
	root.AddCommand(newApplyChangesetCmd(cfg, logger))
	root.AddCommand(newProposeCmd(cfg, logger))
	root.AddCommand(newMemoryCmd(cfg, logger))
	root.AddCommand(newTracesCmd(cfg, logger))
	root.AddCommand(newMetricsSummaryCmd(cfg, logger))

	executed, err := root.ExecuteC()
	if err != nil {
		maybePrintUsage(executed, root, err)
	}
	return err
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}

func printJSON(v any) error {
	formatted, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	fmt.Println(string(formatted))
	return nil
}

func silenceUsageAndErrors(cmd *cobra.Command) *cobra.Command {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd
}

func maybePrintUsage(cmd, root *cobra.Command, err error) {
	if err == nil {
		return
	}
	target := cmd
	if target == nil {
		target = root
	}
	if target == nil {
		return
	}
	if shouldShowUsage(err) {
		_ = target.Usage()
	}
}

func shouldShowUsage(err error) bool {
	msg := strings.ToLower(err.Error())
	if strings.HasPrefix(msg, "unknown command") {
		return true
	}
	if strings.HasPrefix(msg, "unknown flag") || strings.HasPrefix(msg, "unknown shorthand flag") {
		return true
	}
	if strings.Contains(msg, "accepts") && strings.Contains(msg, "arg") {
		return true
	}
	if strings.Contains(msg, "required flag") {
		return true
	}
	if strings.Contains(msg, "flag needs an argument") {
		return true
	}
	if strings.HasPrefix(msg, "invalid argument") {
		return true
	}
	return false
}
