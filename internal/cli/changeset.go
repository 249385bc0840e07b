package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"agentops/internal/changeset"
	"agentops/internal/config"
	"agentops/internal/planner"
	"agentops/internal/spec"
	"agentops/internal/store"
)

func newApplyChangesetCmd(cfg config.Config, logger zerolog.Logger) *cobra.Command {
	return silenceUsageAndErrors(&cobra.Command{
		Use:   "apply-changeset <changeset.json>",
		Short: "Apply a changeset: patch the config and grow the golden set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := changeset.LoadFile(args[0])
			if err != nil {
				return err
			}
			memory := store.NewMemoryStore(cfg.MemoryPath(), logger)
			if err := changeset.NewEngine(memory, logger).Apply(cs); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", cs.NewConfigPath)
			if len(cs.NewTestcases) > 0 {
				fmt.Printf("Appended %d testcases to %s\n", len(cs.NewTestcases), cs.GoldenSetPath)
			}
			return nil
		},
	})
}

func newProposeCmd(cfg config.Config, logger zerolog.Logger) *cobra.Command {
	var versionID string
	var apply bool
	cmd := silenceUsageAndErrors(&cobra.Command{
		Use:   "propose [--version=<version>] [--apply] <subject-spec>",
		Short: "Ask the planner to propose a changeset from eval history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := spec.Load(args[0])
			if err != nil {
				return err
			}
			if err := spec.Validate(sp); err != nil {
				return err
			}
			if versionID == "" {
				versionID = sp.Version
			}

			memory := store.NewMemoryStore(cfg.MemoryPath(), logger)
			traces := store.NewTraceStore(cfg.TracesPath(), logger)
			pl, err := planner.NewLLMPlanner(planner.LLMPlannerConfig{
				APIKey:  cfg.JudgeAPIKey,
				Model:   cfg.PlannerModel,
				BaseURL: cfg.JudgeBaseURL,
				Spec:    sp,
				Memory:  memory,
				Traces:  traces,
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			cs, err := pl.ProposeChangeset(cmd.Context(), versionID)
			if err != nil {
				return err
			}
			if err := printJSON(cs); err != nil {
				return err
			}
			if !apply {
				return nil
			}
			return changeset.NewEngine(memory, logger).Apply(cs)
		},
	})
	cmd.Flags().StringVar(&versionID, "version", "", "version the proposal improves on")
	cmd.Flags().BoolVar(&apply, "apply", false, "apply the proposed changeset immediately")
	return cmd
}
