package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"agentops/internal/config"
	"agentops/internal/engine"
	"agentops/internal/judge"
	"agentops/internal/packs"
	"agentops/internal/spec"
	"agentops/internal/store"
	"agentops/internal/subject"
)

func newValidateSpecCmd() *cobra.Command {
	return silenceUsageAndErrors(&cobra.Command{
		Use:   "validate-spec <subject-spec>",
		Short: "Validate a subject spec file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := spec.Load(args[0])
			if err != nil {
				return err
			}
			if err := spec.Validate(sp); err != nil {
				return err
			}
			if err := printJSON(sp); err != nil {
				return err
			}
			fmt.Println("valid")
			return nil
		},
	})
}

func newEvalCmd(cfg config.Config, logger zerolog.Logger) *cobra.Command {
	var versionID string
	var testcaseID string
	cmd := silenceUsageAndErrors(&cobra.Command{
		Use:   "eval [--version=<version>] [--testcase=<id>] <subject-spec>",
		Short: "Run the full evaluation suite for a subject version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := spec.Load(args[0])
			if err != nil {
				return err
			}
			if err := spec.Validate(sp); err != nil {
				return err
			}

			eng, err := buildEngine(cfg, logger, sp)
			if err != nil {
				return err
			}
			var summary *engine.Summary
			if testcaseID != "" {
				summary, err = eng.RunSingleEval(cmd.Context(), versionID, testcaseID)
			} else {
				summary, err = eng.RunFullEval(cmd.Context(), versionID)
			}
			if err != nil {
				var gse *engine.GoldenSetError
				if errors.As(err, &gse) {
					// Structured error object on stdout, nonzero exit.
					if perr := printJSON(map[string]string{
						"error":       "no testcases loaded from golden set",
						"golden_path": gse.Path,
						"reason":      gse.Reason,
					}); perr != nil {
						return perr
					}
				}
				return err
			}
			return printJSON(summary)
		},
	})
	cmd.Flags().StringVar(&versionID, "version", "", "subject version to evaluate (defaults to the spec version)")
	cmd.Flags().StringVar(&testcaseID, "testcase", "", "evaluate only the golden testcase with this id")
	return cmd
}

func buildEngine(cfg config.Config, logger zerolog.Logger, sp *spec.SubjectSpec) (*engine.Engine, error) {
	client, err := buildSubjectClient(sp, logger)
	if err != nil {
		return nil, err
	}

	scoringPacks := []packs.ScoringPack{
		packs.NewRulePack(sp.Evaluation.Metrics),
	}
	judgePack, err := buildJudgePack(cfg, logger, sp)
	if err != nil {
		return nil, err
	}
	scoringPacks = append(scoringPacks, judgePack)

	return engine.New(engine.Config{
		Subject: client,
		Packs:   scoringPacks,
		Spec:    sp,
		Traces:  store.NewTraceStore(cfg.TracesPath(), logger),
		Memory:  store.NewMemoryStore(cfg.MemoryPath(), logger),
		Logger:  logger,
	}), nil
}

func buildSubjectClient(sp *spec.SubjectSpec, logger zerolog.Logger) (subject.Client, error) {
	switch sp.Runtime.Type {
	case "command":
		return subject.NewCommandClient(subject.CommandClientConfig{
			SubjectID: sp.SubjectID,
			Command:   sp.Runtime.Command,
			Logger:    logger,
		})
	default:
		return nil, fmt.Errorf("unsupported runtime type %q", sp.Runtime.Type)
	}
}

func buildJudgePack(cfg config.Config, logger zerolog.Logger, sp *spec.SubjectSpec) (*packs.JudgePack, error) {
	packCfg := packs.JudgePackConfig{
		Metrics:  sp.Evaluation.Metrics,
		RubricID: sp.Evaluation.Judge.RubricID,
		Disabled: cfg.DisableJudge,
		Logger:   logger,
	}
	// Rule-only specs must run without judge credentials: the client is only
	// built when some configured metric could actually call it.
	if !packCfg.Disabled && packs.JudgeMetricsEnabled(sp.Evaluation.Metrics) {
		model := sp.Evaluation.Judge.Model
		if model == "" {
			model = cfg.JudgeModel
		}
		client, err := judge.NewOpenAIClient(judge.OpenAIClientConfig{
			APIKey:  cfg.JudgeAPIKey,
			Model:   model,
			BaseURL: cfg.JudgeBaseURL,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build judge client: %w (set AGENTOPS_DISABLE_JUDGE=true to run without judge metrics)", err)
		}
		packCfg.Client = client
	}
	return packs.NewJudgePack(packCfg), nil
}
