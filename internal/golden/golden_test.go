package golden_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"agentops/internal/golden"
)

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "golden.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestLoadSkipsRowsWithoutID(t *testing.T) {
	path := writeCSV(t,
		"id,input_json,judge_question,expected_behavior",
		`1,"{""q"":""a""}",Is it right?,yes`,
		`,"{""q"":""b""}",orphan,row`,
		`2,"{""q"":""c""}",Still right?,yes`,
	)
	set, err := golden.Load(path)
	require.NoError(t, err)
	require.Len(t, set.Rows, 2)
	require.Equal(t, "1", set.Rows[0].ID())
	require.Equal(t, "2", set.Rows[1].ID())
	require.Equal(t, `{"q":"a"}`, set.Rows[0].InputJSON())
	require.Equal(t, []string{"id", "input_json", "judge_question", "expected_behavior"}, set.Columns)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := golden.Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	set, err := golden.Load(path)
	require.NoError(t, err)
	require.Empty(t, set.Rows)
}

func TestLoadToleratesShortRecords(t *testing.T) {
	path := writeCSV(t,
		"id,input_json,judge_question,expected_behavior",
		"7,{}",
	)
	set, err := golden.Load(path)
	require.NoError(t, err)
	require.Len(t, set.Rows, 1)
	require.Equal(t, "", set.Rows[0].JudgeQuestion())
}

func TestNextIDIgnoresNonNumericIDs(t *testing.T) {
	rows := []golden.Testcase{
		{golden.FieldID: "1"},
		{golden.FieldID: "3"},
		{golden.FieldID: "x"},
	}
	require.Equal(t, 4, golden.NextID(rows))
	require.Equal(t, 1, golden.NextID(nil))
}

func TestAppendCreatesFileWithHeaderAndIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.csv")
	err := golden.Append(path, []map[string]string{
		{"input_json": `{"q":"a"}`, "judge_question": "ok?", "expected_behavior": "yes"},
		{"input_json": `{"q":"b"}`, "judge_question": "ok?", "expected_behavior": "yes"},
	})
	require.NoError(t, err)

	set, err := golden.Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"id", "input_json", "judge_question", "expected_behavior"}, set.Columns)
	require.Len(t, set.Rows, 2)
	require.Equal(t, "1", set.Rows[0].ID())
	require.Equal(t, "2", set.Rows[1].ID())
}

func TestAppendContinuesIDSequence(t *testing.T) {
	path := writeCSV(t,
		"id,input_json,judge_question,expected_behavior",
		"1,{},q,e",
		"3,{},q,e",
		"legacy,{},q,e",
	)
	err := golden.Append(path, []map[string]string{
		{"input_json": "{}", "judge_question": "q", "expected_behavior": "e"},
	})
	require.NoError(t, err)

	set, err := golden.Load(path)
	require.NoError(t, err)
	require.Len(t, set.Rows, 4)
	require.Equal(t, "4", set.Rows[3].ID())
}

func TestAppendRejectsBatchOnMissingRequiredField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.csv")
	err := golden.Append(path, []map[string]string{
		{"input_json": "{}", "judge_question": "q", "expected_behavior": "e"},
		{"input_json": "{}", "expected_behavior": "e"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), `missing required field "judge_question"`)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "rejected batch writes nothing")
}

func TestAppendKeepsCallerProvidedID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.csv")
	err := golden.Append(path, []map[string]string{
		{"id": "42", "input_json": "{}", "judge_question": "q", "expected_behavior": "e"},
	})
	require.NoError(t, err)
	set, err := golden.Load(path)
	require.NoError(t, err)
	require.Equal(t, "42", set.Rows[0].ID())
}

func TestAppendExtendsColumnsForNewFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.csv")
	err := golden.Append(path, []map[string]string{
		{"input_json": "{}", "judge_question": "q", "expected_behavior": "e", "tags": "smoke"},
		{"input_json": "{}", "judge_question": "q", "expected_behavior": "e"},
	})
	require.NoError(t, err)

	set, err := golden.Load(path)
	require.NoError(t, err)
	require.Contains(t, set.Columns, "tags")
	require.Equal(t, "smoke", set.Rows[0]["tags"])
	require.Equal(t, "", set.Rows[1]["tags"], "rows lacking an extended column are padded")
}

func TestAppendExtendsColumnsInSortedOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.csv")
	err := golden.Append(path, []map[string]string{
		{"input_json": "{}", "judge_question": "q", "expected_behavior": "e", "zz_notes": "n", "aa_tags": "smoke"},
	})
	require.NoError(t, err)

	set, err := golden.Load(path)
	require.NoError(t, err)
	require.Equal(t,
		[]string{"id", "input_json", "judge_question", "expected_behavior", "aa_tags", "zz_notes"},
		set.Columns,
		"new extra columns extend the header in sorted order")
}

func TestAppendNoRowsIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.csv")
	require.NoError(t, golden.Append(path, nil))
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}
