package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

var timeType = reflect.TypeOf(time.Time{})

// decode maps a schema-less JSON object onto a wire struct.
// Numbers and strings convert into each other and unknown keys are ignored.
func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncType(timeHook),
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("decode %T: %w", out, err)
	}
	return nil
}

// timeLayouts are the timestamp shapes seen from the marketplace, most common first.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// timeHook fills time.Time fields from strings in timeLayouts or unix milliseconds.
// Timestamps are optional display data: anything unparseable becomes the zero time.
// POST: never fails for a time.Time target
func timeHook(from, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}
	switch v := data.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return time.Time{}, nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
	case json.Number:
		if ms, err := v.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	}
	slog.Warn("api_time_unparsed", "value", fmt.Sprint(data))
	return time.Time{}, nil
}

// refID extracts an identifier from a field that is either a scalar id or an embedded object.
func refID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case map[string]any:
		for _, key := range []string{"id", "_id", "Id"} {
			if id := refID(t[key]); id != "" {
				return id
			}
		}
	}
	return ""
}

// refName extracts a display name from an embedded object, or a plain string.
func refName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		for _, key := range []string{"name", "title"} {
			if s, ok := t[key].(string); ok && s != "" {
				return s
			}
		}
		first, _ := t["firstName"].(string)
		last, _ := t["lastName"].(string)
		return strings.TrimSpace(first + " " + last)
	}
	return ""
}

// firstNonEmpty returns the first non-blank argument.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// decodeEach decodes every list item with fn, skipping nothing: a bad item fails the call.
func decodeEach[T any](items []any, fn func(any) (T, error)) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, item := range items {
		v, err := fn(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeFailure(path string, err error) error {
	return &Error{Kind: KindDecode, Path: path, Message: "unexpected response from the marketplace", Err: err}
}

func pathID(id string) string {
	return url.PathEscape(id)
}
