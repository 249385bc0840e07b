package golden

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Column names every golden set must carry. Extra columns are allowed and
// preserved.
const (
	FieldID               = "id"
	FieldInputJSON        = "input_json"
	FieldJudgeQuestion    = "judge_question"
	FieldExpectedBehavior = "expected_behavior"
)

// RequiredFields are the columns a new testcase must provide before it can
// be appended. The id is optional; missing ids are auto-assigned.
var RequiredFields = []string{FieldInputJSON, FieldJudgeQuestion, FieldExpectedBehavior}

var defaultColumns = []string{FieldID, FieldInputJSON, FieldJudgeQuestion, FieldExpectedBehavior}

// Testcase is one golden row keyed by column name. Rows are immutable once
// loaded into a run.
type Testcase map[string]string

func (t Testcase) ID() string               { return t[FieldID] }
func (t Testcase) InputJSON() string        { return t[FieldInputJSON] }
func (t Testcase) JudgeQuestion() string    { return t[FieldJudgeQuestion] }
func (t Testcase) ExpectedBehavior() string { return t[FieldExpectedBehavior] }

// Set holds the loaded golden rows along with the column order from the
// file header.
type Set struct {
	Path    string
	Columns []string
	Rows    []Testcase
}

// Load reads a golden CSV. Rows with an empty id column are skipped, same
// as blank trailing lines. A missing file surfaces as an *os.PathError so
// callers can distinguish absence from corruption.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Set{Path: path}, nil
		}
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = strings.TrimSpace(c)
	}

	var rows []Testcase
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		row := Testcase{}
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		if strings.TrimSpace(row[FieldID]) == "" {
			continue
		}
		rows = append(rows, row)
	}
	return &Set{Path: path, Columns: columns, Rows: rows}, nil
}

// NextID computes the next auto-assigned id: max over rows whose id parses
// as an integer, plus one. Non-numeric ids are ignored; an empty set yields 1.
func NextID(rows []Testcase) int {
	maxID := 0
	for _, r := range rows {
		n, err := strconv.Atoi(strings.TrimSpace(r.ID()))
		if err != nil {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}
	return maxID + 1
}

// Append validates and appends new testcase rows to the golden CSV.
//
// All rows are validated before anything is written: a row missing one of
// RequiredFields rejects the whole batch. Rows without an id get sequential
// ids starting at NextID over the existing rows. Extra fields extend the
// column set after the existing columns, in first-seen order; rows lacking
// an extended column are padded with empty cells. If the file does not
// exist yet a header row is written first.
func Append(path string, newRows []map[string]string) error {
	if len(newRows) == 0 {
		return nil
	}

	for i, row := range newRows {
		for _, field := range RequiredFields {
			if _, ok := row[field]; !ok {
				return fmt.Errorf("new testcase %d missing required field %q", i, field)
			}
		}
	}

	existing := &Set{}
	fileExists := false
	if _, err := os.Stat(path); err == nil {
		fileExists = true
		existing, err = Load(path)
		if err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	columns := existing.Columns
	if len(columns) == 0 {
		columns = append([]string(nil), defaultColumns...)
	}
	known := map[string]bool{}
	for _, c := range columns {
		known[c] = true
	}

	nextID := NextID(existing.Rows)
	prepared := make([]map[string]string, 0, len(newRows))
	for _, row := range newRows {
		out := map[string]string{}
		id := strings.TrimSpace(row[FieldID])
		if id == "" {
			id = strconv.Itoa(nextID)
			nextID++
		}
		out[FieldID] = id
		// Sorted so extra columns extend the header deterministically.
		keys := make([]string, 0, len(row))
		for k := range row {
			if k != FieldID {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !known[k] {
				known[k] = true
				columns = append(columns, k)
			}
			out[k] = row[k]
		}
		prepared = append(prepared, out)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !fileExists {
		if err := w.Write(columns); err != nil {
			return err
		}
	}
	for _, row := range prepared {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
