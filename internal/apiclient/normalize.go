package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeList accepts both shapes the backend uses for collections: a bare
// JSON array, or an object holding the array under field. A null or missing
// list decodes as empty.
func decodeList[T any](route string, raw json.RawMessage, field string) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	items := []T{}

	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return items, nil
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("cannot decode %s response: %w", route, err)
		}
	case trimmed[0] == '{':
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("cannot decode %s response: %w", route, err)
		}
		list, ok := wrapped[field]
		if !ok || bytes.Equal(bytes.TrimSpace(list), []byte("null")) {
			return items, nil
		}
		if err := json.Unmarshal(list, &items); err != nil {
			return nil, fmt.Errorf("cannot decode %s response: %w", route, err)
		}
	default:
		return nil, fmt.Errorf("cannot decode %s response: unexpected body %.40q", route, trimmed)
	}

	if items == nil {
		items = []T{}
	}
	return items, nil
}

// decodeOne accepts a single record either at the top level, wrapped under
// field, or as the first element of an array. found is false for an empty
// array or a null wrapper.
func decodeOne[T any](route string, raw json.RawMessage, field string) (item T, found bool, err error) {
	trimmed := bytes.TrimSpace(raw)

	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return item, false, nil
	case trimmed[0] == '[':
		var items []T
		if err = json.Unmarshal(trimmed, &items); err != nil {
			return item, false, fmt.Errorf("cannot decode %s response: %w", route, err)
		}
		if len(items) == 0 {
			return item, false, nil
		}
		return items[0], true, nil
	case trimmed[0] == '{':
		var wrapped map[string]json.RawMessage
		if err = json.Unmarshal(trimmed, &wrapped); err != nil {
			return item, false, fmt.Errorf("cannot decode %s response: %w", route, err)
		}
		if inner, ok := wrapped[field]; ok && isJSONObject(inner) {
			trimmed = inner
		} else if ok {
			return item, false, nil
		}
		if err = json.Unmarshal(trimmed, &item); err != nil {
			return item, false, fmt.Errorf("cannot decode %s response: %w", route, err)
		}
		return item, true, nil
	default:
		return item, false, fmt.Errorf("cannot decode %s response: unexpected body %.40q", route, trimmed)
	}
}
