package store

import "github.com/rs/zerolog"

// Memory entry type discriminators.
const (
	TypeBestPractice   = "best_practice"
	TypeFailurePattern = "failure_pattern"
	TypeConfigChange   = "config_change"
	TypeEvalOutcome    = "eval_outcome"
	TypePromptTweak    = "prompt_tweak"
)

// MemoryStore is the long-term memory log: durable facts (best practices,
// failure patterns, applied changes, eval outcomes) reused across runs.
// Entries carry a "type" discriminator and a generated "memory_id".
type MemoryStore struct {
	*Store
}

// NewMemoryStore creates a memory store at path.
func NewMemoryStore(path string, logger zerolog.Logger) *MemoryStore {
	return &MemoryStore{Store: New(path, "memory_id", logger)}
}

func (m *MemoryStore) record(entryType string, fields map[string]any) (string, error) {
	entry := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		entry[k] = v
	}
	entry["type"] = entryType
	return m.Append(entry)
}

// RecordEvalOutcome persists one evaluation outcome entry.
func (m *MemoryStore) RecordEvalOutcome(fields map[string]any) (string, error) {
	return m.record(TypeEvalOutcome, fields)
}

// RecordConfigChange persists a record of an applied configuration change.
func (m *MemoryStore) RecordConfigChange(fields map[string]any) (string, error) {
	return m.record(TypeConfigChange, fields)
}

// RecordBestPractice persists a curated best practice.
func (m *MemoryStore) RecordBestPractice(fields map[string]any) (string, error) {
	return m.record(TypeBestPractice, fields)
}

// RecordFailurePattern persists an observed failure pattern.
func (m *MemoryStore) RecordFailurePattern(fields map[string]any) (string, error) {
	return m.record(TypeFailurePattern, fields)
}

// RecordPromptTweak persists a planned prompt or config tweak so later eval
// outcomes can be correlated with it.
func (m *MemoryStore) RecordPromptTweak(fields map[string]any) (string, error) {
	return m.record(TypePromptTweak, fields)
}
