// Package engine drives full evaluation runs: it loads the golden set,
// invokes the subject and every scoring pack per testcase, persists trace
// and memory records, and aggregates metrics into a summary.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"agentops/internal/golden"
	"agentops/internal/metric"
	"agentops/internal/packs"
	"agentops/internal/spec"
	"agentops/internal/store"
	"agentops/internal/subject"
)

// GoldenSetError reports a missing or empty golden set. The run aborts with
// no partial summary; Path carries the resolved location for diagnostics.
type GoldenSetError struct {
	Path   string
	Reason string
}

func (e *GoldenSetError) Error() string {
	return fmt.Sprintf("golden set %s: %s", e.Reason, e.Path)
}

// Output is the normalized subject output kept on an EvalRecord.
type Output struct {
	Answer string `json:"answer"`
}

// ResponseMeta captures run metadata for one subject invocation.
type ResponseMeta struct {
	LatencyMS    float64            `json:"latency_ms"`
	ToolCalls    []subject.ToolCall `json:"tool_calls"`
	SessionGraph map[string]any     `json:"session_graph"`
}

// EvalRecord is the full evaluation of a single golden testcase against one
// subject version. Written once; corrections are new records. EvalID is
// deterministic (subject_id:version_id:testcase_id) so re-running the same
// version and testcase yields a stable identifier.
type EvalRecord struct {
	EvalID       string          `json:"eval_id"`
	SubjectID    string          `json:"subject_id"`
	VersionID    string          `json:"version_id"`
	Input        golden.Testcase `json:"input"`
	Output       Output          `json:"output"`
	ResponseMeta ResponseMeta    `json:"response_meta"`
	RuleMetrics  []metric.Result `json:"rule_metrics"`
	JudgeMetrics []metric.Result `json:"judge_metrics"`
}

// AggregatedMetrics holds run-level aggregates. Pointers are nil when no
// samples of that metric were produced.
type AggregatedMetrics struct {
	JudgeScoreAvg   *float64 `json:"judge_score_avg"`
	JudgeScoreP95   *float64 `json:"judge_score_p95"`
	LatencyMSP95    *float64 `json:"latency_ms_p95"`
	TaskSuccessRate *float64 `json:"task_success_rate"`
}

// Summary is the result of one full evaluation run. It is derived state,
// recomputed every run; only its constituent records are persisted.
type Summary struct {
	SubjectID    string            `json:"subject_id"`
	VersionID    string            `json:"version_id"`
	GoldenPath   string            `json:"golden_path"`
	NumTestcases int               `json:"num_testcases"`
	Metrics      AggregatedMetrics `json:"aggregated_metrics"`
	Records      []EvalRecord      `json:"records"`
}

// Config wires an Engine.
type Config struct {
	Subject subject.Client
	Packs   []packs.ScoringPack
	Spec    *spec.SubjectSpec
	Traces  *store.TraceStore
	Memory  *store.MemoryStore
	Logger  zerolog.Logger
}

// Engine owns the EvalRecord lifecycle for the runs it executes.
type Engine struct {
	subject subject.Client
	packs   []packs.ScoringPack
	spec    *spec.SubjectSpec
	traces  *store.TraceStore
	memory  *store.MemoryStore
	logger  zerolog.Logger
}

// New creates an evaluation engine.
func New(cfg Config) *Engine {
	return &Engine{
		subject: cfg.Subject,
		packs:   cfg.Packs,
		spec:    cfg.Spec,
		traces:  cfg.Traces,
		memory:  cfg.Memory,
		logger:  cfg.Logger,
	}
}

// RunFullEval evaluates every golden testcase against the given version and
// returns the aggregated summary with all records inlined. A missing or
// empty golden set returns a *GoldenSetError and no partial summary; every
// per-case failure after that point is caught and logged so one bad row
// cannot stop the batch.
func (e *Engine) RunFullEval(ctx context.Context, versionID string) (*Summary, error) {
	versionID = e.resolveVersion(versionID)
	goldenPath, set, err := e.loadGoldenSet()
	if err != nil {
		return nil, err
	}
	return e.run(ctx, versionID, goldenPath, set.Rows), nil
}

// RunSingleEval evaluates one golden testcase by id. An unknown id is an
// error; everything else behaves like RunFullEval restricted to that case.
func (e *Engine) RunSingleEval(ctx context.Context, versionID, testcaseID string) (*Summary, error) {
	versionID = e.resolveVersion(versionID)
	goldenPath, set, err := e.loadGoldenSet()
	if err != nil {
		return nil, err
	}
	for _, tc := range set.Rows {
		if tc.ID() == testcaseID {
			return e.run(ctx, versionID, goldenPath, []golden.Testcase{tc}), nil
		}
	}
	return nil, fmt.Errorf("testcase %q not found in %s", testcaseID, goldenPath)
}

func (e *Engine) resolveVersion(versionID string) string {
	if versionID == "" {
		versionID = e.spec.Version
	}
	if versionID == "" {
		versionID = "v1"
	}
	return versionID
}

func (e *Engine) run(ctx context.Context, versionID, goldenPath string, rows []golden.Testcase) *Summary {
	records := make([]EvalRecord, 0, len(rows))
	for _, tc := range rows {
		record := e.runCase(ctx, tc, versionID)
		records = append(records, record)
		e.persistRecord(record)
	}
	return &Summary{
		SubjectID:    e.spec.SubjectID,
		VersionID:    versionID,
		GoldenPath:   goldenPath,
		NumTestcases: len(records),
		Metrics:      aggregate(records),
		Records:      records,
	}
}

func (e *Engine) loadGoldenSet() (string, *golden.Set, error) {
	path := e.spec.Evaluation.GoldenPath
	if path == "" {
		return "", nil, &GoldenSetError{Path: "", Reason: "not configured"}
	}
	if !filepath.IsAbs(path) {
		if cwd, err := os.Getwd(); err == nil {
			path = filepath.Join(cwd, path)
		}
	}
	set, err := golden.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, &GoldenSetError{Path: path, Reason: "missing"}
		}
		return "", nil, err
	}
	if len(set.Rows) == 0 {
		return "", nil, &GoldenSetError{Path: path, Reason: "empty"}
	}
	e.logger.Info().Int("testcases", len(set.Rows)).Str("path", path).Msg("loaded golden set")
	return path, set, nil
}

// buildRequest parses the row's input_json. Any valid JSON value passes
// through unchanged; only a malformed row degrades to an empty request
// rather than aborting the batch.
func (e *Engine) buildRequest(tc golden.Testcase) any {
	raw := tc.InputJSON()
	if raw == "" {
		return map[string]any{}
	}
	var request any
	if err := json.Unmarshal([]byte(raw), &request); err != nil {
		e.logger.Warn().Str("testcase_id", tc.ID()).Err(err).Msg("failed to parse input_json; using empty request")
		return map[string]any{}
	}
	return request
}

func (e *Engine) runCase(ctx context.Context, tc golden.Testcase, versionID string) EvalRecord {
	request := e.buildRequest(tc)

	resp, err := e.subject.RunQuery(ctx, request, nil)
	if err != nil {
		e.logger.Error().Str("testcase_id", tc.ID()).Err(err).Msg("subject call failed")
		resp = &subject.Response{}
	}
	resp.Normalize()

	var results []metric.Result
	for _, pack := range e.packs {
		packResults, err := pack.Evaluate(ctx, tc, resp, e.spec)
		if err != nil {
			e.logger.Error().
				Str("pack", pack.Name()).
				Str("testcase_id", tc.ID()).
				Err(err).
				Msg("scoring pack failed; contributing zero metrics for this case")
			continue
		}
		results = append(results, packResults...)
	}

	var ruleMetrics, judgeMetrics []metric.Result
	for _, m := range results {
		switch m.Kind() {
		case metric.KindRule:
			ruleMetrics = append(ruleMetrics, m)
		case metric.KindJudge:
			judgeMetrics = append(judgeMetrics, m)
		default:
			e.logger.Warn().Str("metric", m.Name).Msg("metric missing kind tag; dropped")
		}
	}

	return EvalRecord{
		EvalID:    fmt.Sprintf("%s:%s:%s", e.spec.SubjectID, versionID, tc.ID()),
		SubjectID: e.spec.SubjectID,
		VersionID: versionID,
		Input:     tc,
		Output:    Output{Answer: resp.Answer},
		ResponseMeta: ResponseMeta{
			LatencyMS:    resp.LatencyMS,
			ToolCalls:    resp.ToolCalls,
			SessionGraph: resp.SessionGraph,
		},
		RuleMetrics:  ruleMetrics,
		JudgeMetrics: judgeMetrics,
	}
}

// persistRecord writes the side logs. Failures are logged and swallowed:
// the evaluation result must not be lost because a log write failed.
func (e *Engine) persistRecord(record EvalRecord) {
	if e.memory != nil {
		if _, err := e.memory.RecordEvalOutcome(record.memoryFields()); err != nil {
			e.logger.Warn().Str("eval_id", record.EvalID).Err(err).Msg("failed to record eval outcome to memory")
		}
	}
	if e.traces != nil {
		if _, err := e.traces.LogTrace(record.traceEvent()); err != nil {
			e.logger.Warn().Str("eval_id", record.EvalID).Err(err).Msg("failed to log trace event")
		}
	}
}

func (r EvalRecord) memoryFields() map[string]any {
	fields := map[string]any{
		"eval_id":     r.EvalID,
		"subject_id":  r.SubjectID,
		"version_id":  r.VersionID,
		"testcase_id": r.Input.ID(),
	}
	if score, ok := r.firstJudgeScore(); ok {
		fields["judge_score"] = score
	}
	if success, ok := r.taskSuccess(); ok {
		fields["task_success"] = success
	}
	return fields
}

// traceEvent is the flattened per-case projection written to the trace log.
func (r EvalRecord) traceEvent() map[string]any {
	event := map[string]any{
		"version_id":    r.VersionID,
		"subject_id":    r.SubjectID,
		"testcase_id":   r.Input.ID(),
		"input_json":    r.Input.InputJSON(),
		"answer":        r.Output.Answer,
		"latency_ms":    r.ResponseMeta.LatencyMS,
		"tool_calls":    r.ResponseMeta.ToolCalls,
		"session_graph": r.ResponseMeta.SessionGraph,
	}
	if score, ok := r.firstJudgeScore(); ok {
		event["eval_score"] = score
	}
	for _, m := range r.JudgeMetrics {
		if m.Name != packs.MetricJudgeScore {
			continue
		}
		if reasoning, ok := m.Details["reasoning"].(string); ok {
			event["eval_reasoning"] = reasoning
			break
		}
	}
	return event
}

func (r EvalRecord) firstJudgeScore() (float64, bool) {
	for _, m := range r.JudgeMetrics {
		if m.Name == packs.MetricJudgeScore {
			return m.Float64()
		}
	}
	return 0, false
}

func (r EvalRecord) taskSuccess() (bool, bool) {
	for _, m := range r.RuleMetrics {
		if m.Name == packs.MetricTaskSuccess {
			return m.Bool()
		}
	}
	return false, false
}

func aggregate(records []EvalRecord) AggregatedMetrics {
	var judgeScores, latencies []float64
	successCount, successTotal := 0, 0

	for _, r := range records {
		for _, m := range r.JudgeMetrics {
			if m.Name != packs.MetricJudgeScore {
				continue
			}
			if v, ok := m.Float64(); ok {
				judgeScores = append(judgeScores, v)
			}
		}
		if r.ResponseMeta.LatencyMS > 0 {
			latencies = append(latencies, r.ResponseMeta.LatencyMS)
		}
		for _, m := range r.RuleMetrics {
			if m.Name != packs.MetricTaskSuccess {
				continue
			}
			if v, ok := m.Bool(); ok {
				successTotal++
				if v {
					successCount++
				}
			}
		}
	}

	agg := AggregatedMetrics{
		JudgeScoreAvg: meanPtr(judgeScores),
		JudgeScoreP95: p95Ptr(judgeScores),
		LatencyMSP95:  p95Ptr(latencies),
	}
	if successTotal > 0 {
		rate := float64(successCount) / float64(successTotal)
		agg.TaskSuccessRate = &rate
	}
	return agg
}
