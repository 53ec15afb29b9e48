// Package payload normalizes the variable response shapes the upstream
// retail API produces. Endpoints wrap lists inconsistently: a bare JSON
// array, {"content": [...]}, {"data": [...]}, or {"data": {"content":
// [...]}}. Normalization happens once here, at the boundary, so domain
// code only ever sees canonical slices.
package payload

import (
	"encoding/json"
	"math"
)

// PageEnvelope is a normalized paged list response. Missing or malformed
// envelope fields fall back to values derived from the content itself.
type PageEnvelope struct {
	Content       []map[string]any
	Page          int
	Size          int
	TotalElements int
	TotalPages    int
}

// UnwrapList extracts the record list from a response body of any of the
// known shapes. Unparseable or empty bodies produce an empty list, never
// an error: a malformed upstream response is treated the same as "no
// records".
func UnwrapList(body []byte) []map[string]any {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil
	}
	return extractList(doc, 0)
}

// UnwrapPage extracts a full paged envelope. When the body is a bare
// array or the envelope fields are missing, pagination metadata is
// synthesized from the content length and defaultSize.
func UnwrapPage(body []byte, defaultSize int) PageEnvelope {
	if defaultSize < 1 {
		defaultSize = 1
	}
	env := PageEnvelope{Size: defaultSize, TotalPages: 1}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return env
	}

	env.Content = extractList(doc, 0)
	env.TotalElements = len(env.Content)

	pagesGiven := false
	if obj := innermostObject(doc, 0); obj != nil {
		if n, ok := intField(obj, "page"); ok {
			env.Page = n
		}
		if n, ok := intField(obj, "size"); ok && n > 0 {
			env.Size = n
		}
		if n, ok := intField(obj, "totalElements"); ok {
			env.TotalElements = n
		}
		if n, ok := intField(obj, "totalPages"); ok && n > 0 {
			env.TotalPages = n
			pagesGiven = true
		}
	}
	if !pagesGiven {
		env.TotalPages = maxInt(1, int(math.Ceil(float64(env.TotalElements)/float64(env.Size))))
	}
	return env
}

// extractList walks at most two "data" wrappers and one "content"
// wrapper, mirroring the shapes seen in the wild.
func extractList(doc any, depth int) []map[string]any {
	switch v := doc.(type) {
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, el := range v {
			if m, ok := el.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		if depth >= 3 {
			return nil
		}
		if inner, ok := v["content"]; ok {
			return extractList(inner, depth+1)
		}
		if inner, ok := v["data"]; ok {
			return extractList(inner, depth+1)
		}
	}
	return nil
}

// innermostObject returns the deepest envelope object carrying the list,
// which is where the pagination fields live.
func innermostObject(doc any, depth int) map[string]any {
	obj, ok := doc.(map[string]any)
	if !ok || depth >= 3 {
		return nil
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		if deeper := innermostObject(inner, depth+1); deeper != nil {
			return deeper
		}
		return inner
	}
	return obj
}

func intField(obj map[string]any, key string) (int, bool) {
	v, ok := obj[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
