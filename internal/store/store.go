// Package store implements the append-only JSONL record stores backing
// evaluation traces and long-term memory. Each append is one flushed,
// newline-terminated JSON object; loads scan linearly and tolerate
// corrupted lines. A single logical writer per process is assumed.
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is a line-oriented JSON log. It does not validate domain shape;
// Append only injects provenance fields (id + timestamp) into a copy of
// the caller's record.
type Store struct {
	path    string
	idField string
	logger  zerolog.Logger
}

// New creates a store writing to path, injecting the generated id under
// idField ("trace_id", "memory_id", ...).
func New(path, idField string, logger zerolog.Logger) *Store {
	if idField == "" {
		idField = "id"
	}
	return &Store{path: path, idField: idField, logger: logger}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Append writes record plus generated provenance fields as one JSON line.
// The caller's map is not mutated. Returns the generated id.
func (s *Store) Append(record map[string]any) (string, error) {
	id := uuid.NewString()
	out := make(map[string]any, len(record)+2)
	for k, v := range record {
		out[k] = v
	}
	out[s.idField] = id
	out["timestamp"] = time.Now().UTC().Format("2006-01-02T15:04:05.000000") + "Z"

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return "", err
	}
	if err := f.Sync(); err != nil {
		return "", err
	}
	return id, nil
}

type loadOptions struct {
	filters []func(map[string]any) bool
	limit   int
}

// Option narrows what Load returns.
type Option func(*loadOptions)

// WithType keeps entries whose "type" field equals t.
func WithType(t string) Option {
	return WithField("type", t)
}

// WithSubjectID keeps entries whose "subject_id" field equals id.
func WithSubjectID(id string) Option {
	return WithField("subject_id", id)
}

// WithField keeps entries whose key equals value.
func WithField(key string, value any) Option {
	return func(o *loadOptions) {
		o.filters = append(o.filters, func(rec map[string]any) bool {
			return rec[key] == value
		})
	}
}

// WithLimit keeps only the most recently appended n entries (after
// filtering). Tail semantics: older entries are dropped first.
func WithLimit(n int) Option {
	return func(o *loadOptions) { o.limit = n }
}

// Load scans the backing log and returns matching entries in append order.
// A line that fails to parse is retained as a synthetic error record so
// corruption in one entry cannot hide the rest of the history. A missing
// file is not an error: Load returns an empty slice.
func (s *Store) Load(opts ...Option) ([]map[string]any, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	// bufio.Reader instead of a Scanner: lines have no fixed size cap, so an
	// oversized record cannot fail the whole load.
	var entries []map[string]any
	reader := bufio.NewReader(f)
	for {
		line, readErr := reader.ReadString('\n')
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			var rec map[string]any
			if err := json.Unmarshal([]byte(trimmed), &rec); err != nil {
				s.logger.Warn().Str("path", s.path).Msg("retaining unparseable log line as error record")
				rec = map[string]any{"_raw_line": trimmed, "error": "failed_to_parse_json"}
			}
			keep := true
			for _, filter := range o.filters {
				if !filter(rec) {
					keep = false
					break
				}
			}
			if keep {
				entries = append(entries, rec)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("scan %s: %w", s.path, readErr)
		}
	}

	if o.limit > 0 && len(entries) > o.limit {
		entries = entries[len(entries)-o.limit:]
	}
	return entries, nil
}
