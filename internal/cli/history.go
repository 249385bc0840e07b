package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"agentops/internal/config"
	"agentops/internal/engine"
	"agentops/internal/store"
)

func newMemoryCmd(cfg config.Config, logger zerolog.Logger) *cobra.Command {
	var entryType string
	var subjectID string
	var limit int
	cmd := silenceUsageAndErrors(&cobra.Command{
		Use:   "memory [--type=<type>] [--subject=<id>] [--limit=<n>]",
		Short: "List long-term memory entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			memory := store.NewMemoryStore(cfg.MemoryPath(), logger)
			entries, err := memory.Load(historyOptions(entryType, subjectID, limit)...)
			if err != nil {
				return err
			}
			return printJSON(entries)
		},
	})
	cmd.Flags().StringVar(&entryType, "type", "", "filter by entry type (best_practice, failure_pattern, config_change, eval_outcome, prompt_tweak)")
	cmd.Flags().StringVar(&subjectID, "subject", "", "filter by subject id")
	cmd.Flags().IntVar(&limit, "limit", 0, "only the most recent n entries")
	return cmd
}

func newTracesCmd(cfg config.Config, logger zerolog.Logger) *cobra.Command {
	var subjectID string
	var limit int
	cmd := silenceUsageAndErrors(&cobra.Command{
		Use:   "traces [--subject=<id>] [--limit=<n>]",
		Short: "List evaluation trace events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			traces := store.NewTraceStore(cfg.TracesPath(), logger)
			entries, err := traces.Load(historyOptions("", subjectID, limit)...)
			if err != nil {
				return err
			}
			return printJSON(entries)
		},
	})
	cmd.Flags().StringVar(&subjectID, "subject", "", "filter by subject id")
	cmd.Flags().IntVar(&limit, "limit", 0, "only the most recent n entries")
	return cmd
}

func newMetricsSummaryCmd(cfg config.Config, logger zerolog.Logger) *cobra.Command {
	var subjectID string
	cmd := silenceUsageAndErrors(&cobra.Command{
		Use:   "metrics-summary [--subject=<id>]",
		Short: "Aggregate trace metrics per subject version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			traces := store.NewTraceStore(cfg.TracesPath(), logger)
			entries, err := traces.Load(historyOptions("", subjectID, 0)...)
			if err != nil {
				return err
			}
			return printJSON(engine.SummarizeTraces(entries))
		},
	})
	cmd.Flags().StringVar(&subjectID, "subject", "", "filter by subject id")
	return cmd
}

func historyOptions(entryType, subjectID string, limit int) []store.Option {
	var opts []store.Option
	if entryType != "" {
		opts = append(opts, store.WithType(entryType))
	}
	if subjectID != "" {
		opts = append(opts, store.WithSubjectID(subjectID))
	}
	if limit > 0 {
		opts = append(opts, store.WithLimit(limit))
	}
	return opts
}
