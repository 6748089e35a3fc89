package scraper

import (
	"encoding/json"
	"strconv"
)

// Str digs a string out of a decoded JSON object following path.
// Anything missing, null, or of an unexpected type yields "".
// Numbers and booleans are formatted rather than dropped.
func Str(obj map[string]any, path ...string) string {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[key]
	}
	switch v := cur.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Objects decodes a list of JSON values, keeping only the objects.
func Objects(items []json.RawMessage) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		var m map[string]any
		if err := json.Unmarshal(it, &m); err != nil || m == nil {
			continue
		}
		out = append(out, m)
	}
	return out
}
