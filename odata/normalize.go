package odata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// TypeKey carries the entity type name (from __metadata.type or m:type)
// in normalized output.
const TypeKey = "odata.type"

// ErrEmptyPayload is returned when a response body has no content to decode.
var ErrEmptyPayload = errors.New("odata: empty payload")

// Normalize flattens SharePoint verbose ({"d":...}) and minimal
// ({"value":[...]}) JSON into plain objects and arrays so both shapes
// unmarshal into the same Go types.
func Normalize(raw []byte) ([]byte, error) {
	v, err := decodeAny(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalizeValue(unwrapEnvelope(v)))
}

// NextLink returns the continuation URL of a collection response, if any.
func NextLink(raw []byte) string {
	v, err := decodeAny(raw)
	if err != nil {
		return ""
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	if d, ok := obj["d"].(map[string]any); ok {
		if s, ok := d["__next"].(string); ok {
			return s
		}
	}
	for _, key := range []string{"odata.nextLink", "@odata.nextLink"} {
		if s, ok := obj[key].(string); ok {
			return s
		}
	}
	return ""
}

func decodeAny(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyPayload
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("odata: decode json: %w", err)
	}
	return v, nil
}

func unwrapEnvelope(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if d, ok := obj["d"]; ok && len(obj) == 1 {
		return d
	}
	if value, ok := obj["value"].([]any); ok {
		return value
	}
	return obj
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if _, deferred := val["__deferred"]; deferred {
			return nil
		}
		if results, ok := val["results"].([]any); ok && isCollectionWrapper(val) {
			return normalizeValue(results)
		}
		out := make(map[string]any, len(val))
		for k, child := range val {
			switch k {
			case "__metadata":
				if meta, ok := child.(map[string]any); ok {
					if t, ok := meta["type"].(string); ok {
						out[TypeKey] = t
					}
				}
				continue
			case "__next", "__count":
				continue
			case TypeKey:
				out[k] = child
				continue
			}
			if isAnnotation(k) {
				continue
			}
			out[k] = normalizeValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalizeValue(child)
		}
		return out
	default:
		return v
	}
}

// isCollectionWrapper reports whether an object is only the verbose
// {"results":[...]} wrapper, possibly with paging metadata.
func isCollectionWrapper(obj map[string]any) bool {
	for k := range obj {
		switch k {
		case "results", "__next", "__count", "__metadata":
		default:
			return false
		}
	}
	return true
}

func isAnnotation(key string) bool {
	if len(key) > 6 && key[:6] == "odata." {
		return true
	}
	return len(key) > 0 && key[0] == '@'
}
