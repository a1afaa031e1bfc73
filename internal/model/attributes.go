package model

import (
	"encoding/json"
	"math"
	"time"
)

// Attributes holds caller-supplied document fields the service does not interpret.
// They are flattened next to the known fields on the wire and in document storage.
type Attributes map[string]any

// Clone returns a shallow copy of the attributes.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Without returns a copy of the attributes with the given keys removed.
func (a Attributes) Without(keys ...string) Attributes {
	out := a.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// marshalFlat encodes attrs and fixed as one JSON object. Known fields win on conflict.
func marshalFlat(attrs Attributes, fixed map[string]any) ([]byte, error) {
	doc := make(map[string]any, len(attrs)+len(fixed))
	for k, v := range attrs {
		doc[k] = v
	}
	for k, v := range fixed {
		doc[k] = v
	}
	return json.Marshal(doc)
}

// stringField pops key from doc if it holds a string or null.
// Any other value is left in doc untouched.
func stringField(doc map[string]any, key string) string {
	v, ok := doc[key]
	if !ok {
		return ""
	}
	s, isString := v.(string)
	if !isString && v != nil {
		return ""
	}
	delete(doc, key)
	return s
}

// timeField pops key from doc if it parses as a timestamp or is null.
// Values that do not parse are left in doc and the zero time is returned.
func timeField(doc map[string]any, key string) time.Time {
	v, ok := doc[key]
	if !ok {
		return time.Time{}
	}
	if v == nil {
		delete(doc, key)
		return time.Time{}
	}

	t, ok := parseTime(v)
	if !ok {
		return time.Time{}
	}
	delete(doc, key)
	return t
}

// maxEpochMillis bounds epoch timestamps to 100,000,000 days either side of 1970.
const maxEpochMillis = 8.64e15

// parseTime accepts a time.Time, an RFC3339 string, or a number of
// milliseconds since the Unix epoch.
func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	case float64:
		if t != math.Trunc(t) || math.Abs(t) > maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t)).UTC(), true
	case int64:
		return parseTime(float64(t))
	case json.Number:
		ms, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return parseTime(ms)
	default:
		return time.Time{}, false
	}
}
