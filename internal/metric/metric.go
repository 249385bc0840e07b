package metric

// Kind values carried in Result.Details under the "kind" key. Every scoring
// pack must tag each result with exactly one of these so the engine can
// partition metrics into rule and judge buckets.
const (
	KindRule  = "rule"
	KindJudge = "judge"
)

// Result is a single named metric computed for one (testcase, response)
// pair. Values are scalars: numeric for scores, boolean for pass/fail
// checks. A Result is never mutated after creation.
type Result struct {
	Name    string         `json:"name"`
	Value   any            `json:"value"`
	Details map[string]any `json:"details"`
}

// Kind returns the "kind" tag from Details, or "" if missing.
func (r Result) Kind() string {
	if r.Details == nil {
		return ""
	}
	kind, _ := r.Details["kind"].(string)
	return kind
}

// Float64 coerces the metric value to a float64. JSON round-trips turn
// numbers into float64, but metrics built in-process may carry int or bool.
func (r Result) Float64() (float64, bool) {
	switch v := r.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Bool coerces the metric value to a bool.
func (r Result) Bool() (bool, bool) {
	switch v := r.Value.(type) {
	case bool:
		return v, true
	case float64:
		return v != 0, true
	case int:
		return v != 0, true
	default:
		return false, false
	}
}
