package scheduler

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EncodeArgs renders program arguments as sorted --key=value flags.
func EncodeArgs(args map[string]any) ([]string, error) {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := encodeValue(args[k])
		if err != nil {
			return nil, fmt.Errorf("encoding argument %q: %w", k, err)
		}
		out = append(out, "--"+k+"="+v)
	}
	return out, nil
}

func encodeValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		// Strings that would decode as another type travel JSON-quoted.
		if decoded, ok := decodeValue(x).(string); ok && decoded == x {
			return x, nil
		}
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// DecodeArgs parses flags produced by EncodeArgs. Booleans and numbers come
// back typed, JSON strings, objects and arrays decoded, everything else as a
// plain string. A bare --key is true.
func DecodeArgs(flags []string) (map[string]any, error) {
	args := make(map[string]any, len(flags))
	for _, f := range flags {
		if !strings.HasPrefix(f, "--") {
			return nil, fmt.Errorf("unexpected argument %q", f)
		}
		key, raw, hasValue := strings.Cut(strings.TrimPrefix(f, "--"), "=")
		if key == "" {
			return nil, fmt.Errorf("empty flag name in %q", f)
		}
		if !hasValue {
			args[key] = true
			continue
		}
		args[key] = decodeValue(raw)
	}
	return args, nil
}

func decodeValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if strings.HasPrefix(raw, `"`) || strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return raw
}
