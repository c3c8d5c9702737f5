package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FlexString is a string field that also accepts the looser shapes models
// tend to emit: numbers, booleans, null, and for people {"name", "title"}
// objects.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*f = FlexString(describeObject(obj, data))
	case '[':
		var items []FlexString
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it != "" {
				parts = append(parts, string(it))
			}
		}
		*f = FlexString(strings.Join(parts, ", "))
	default:
		// number or boolean literal
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexString(data)
	}
	return nil
}

func describeObject(obj map[string]any, raw []byte) string {
	name, _ := obj["name"].(string)
	if name == "" {
		return string(raw)
	}
	for _, k := range []string{"title", "role", "position"} {
		if v, ok := obj[k].(string); ok && v != "" {
			return name + " (" + v + ")"
		}
	}
	return name
}

func (f FlexString) String() string {
	return string(f)
}
