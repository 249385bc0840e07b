package changeset

import (
	"fmt"
	"strings"
)

// Merge applies patches in list order to a deep copy of base and returns
// the result. Base is never mutated. Each patch's dot-path is walked
// segment by segment: intermediate segments resolve to (or are created as)
// nested maps; the last segment is set unconditionally, replacing any
// existing leaf or subtree. Later patches win on overlapping paths. An
// unsupported op fails the whole merge before anything is returned.
func Merge(base map[string]any, patches []ConfigPatch) (map[string]any, error) {
	merged := deepCopyMap(base)
	for _, patch := range patches {
		if patch.Op != OpSet {
			return nil, fmt.Errorf("unsupported patch op %q for path %q", patch.Op, patch.Path)
		}
		if strings.TrimSpace(patch.Path) == "" {
			return nil, fmt.Errorf("config patch has empty path")
		}
		setByPath(merged, patch.Path, patch.Value)
	}
	return merged, nil
}

func setByPath(obj map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	cur := obj
	for _, key := range parts[:len(parts)-1] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[key] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

func deepCopyMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return val
	}
}
