package scrub

import (
	"reflect"
	"sort"
)

// Scrub returns a sanitized copy of an arbitrary nested key/value structure
// with all raw-text and content-derived keys removed and oversized
// collections bounded.
//
// Scrub is pure, total, and idempotent: it never mutates its input, never
// panics on malformed input, and Scrub(Scrub(x)) equals Scrub(x) for all x.
// Values it does not understand pass through unchanged.
//
// At every object level:
//
//  1. Keys in the raw-text set are dropped.
//  2. Keys in the content-derived set (exact or prefix match) are dropped.
//  3. Keys carrying a generic content signal anywhere in their name are
//     dropped when their value is an oversized string or collection;
//     dropping rather than truncating avoids leaking a fragment.
//  4. Remaining collections above the size caps are truncated to the cap.
//
// Arrays are scrubbed element-wise, nested objects recursively, and scalars
// pass through unchanged.
func Scrub(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return scrubMap(v)
	case []any:
		return scrubSlice(v)
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	default:
		return scrubReflected(value)
	}
}

// scrubMap applies the rule table to one object level and recurses into the
// surviving values.
func scrubMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))

	for key, val := range m {
		if isRawTextKey(key) || isContentDerivedKey(key) {
			continue
		}
		if hasSignalSubstring(key) && oversized(val) {
			continue
		}
		out[key] = Scrub(val)
	}

	if len(out) > MaxMapKeys {
		out = truncateMap(out, MaxMapKeys)
	}

	return out
}

// scrubSlice scrubs elements and bounds the result to MaxArrayLen.
func scrubSlice(s []any) []any {
	n := len(s)
	if n > MaxArrayLen {
		n = MaxArrayLen
	}

	out := make([]any, 0, n)
	for _, elem := range s[:n] {
		out = append(out, Scrub(elem))
	}
	return out
}

// scrubReflected handles map and slice shapes beyond the canonical
// map[string]any / []any forms (e.g. map[string]string, []string). Anything
// else passes through unchanged rather than erroring.
func scrubReflected(value any) any {
	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return scrubMap(m)

	case reflect.Slice, reflect.Array:
		// Byte slices are opaque payloads, not collections of values.
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return value
		}
		s := make([]any, rv.Len())
		for i := range s {
			s[i] = rv.Index(i).Interface()
		}
		return scrubSlice(s)

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Scrub(rv.Elem().Interface())

	default:
		return value
	}
}

// oversized reports whether a value exceeds the size caps: a string longer
// than MaxStringLen, an array longer than MaxArrayLen, or an object with
// more than MaxMapKeys keys.
func oversized(value any) bool {
	switch v := value.(type) {
	case string:
		return len(v) > MaxStringLen
	case []any:
		return len(v) > MaxArrayLen
	case map[string]any:
		return len(v) > MaxMapKeys
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return false
		}
		return rv.Len() > MaxArrayLen
	case reflect.Map:
		return rv.Len() > MaxMapKeys
	}
	return false
}

// truncateMap keeps a deterministic subset of max keys (sorted order) so
// that truncation is stable across runs and idempotent.
func truncateMap(m map[string]any, max int) map[string]any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, max)
	for _, k := range keys[:max] {
		out[k] = m[k]
	}
	return out
}
