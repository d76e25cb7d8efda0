// Package metricdict persists named metric mappings (metric name to scalar
// or array value) such as the validation and test scores of a run.
package metricdict

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Dict maps a metric name to a scalar or array value.
type Dict map[string]any

type codec struct {
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

var (
	jsonCodec = codec{
		marshal:   func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") },
		unmarshal: json.Unmarshal,
	}
	msgpackCodec = codec{
		marshal:   msgpack.Marshal,
		unmarshal: msgpack.Unmarshal,
	}
)

func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		return msgpackCodec
	default:
		return jsonCodec
	}
}

// Load reads a Dict from path. A missing file yields an error wrapping
// fs.ErrNotExist.
func Load(path string) (Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metric dict: %w", err)
	}
	d := Dict{}
	if err := codecFor(path).unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing metric dict %s: %w", path, err)
	}
	return d, nil
}

// Save writes d to path, replacing any previous file atomically.
func Save(path string, d Dict) error {
	if d == nil {
		d = Dict{}
	}
	data, err := codecFor(path).marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling metric dict: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating metric dict dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing metric dict: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing metric dict: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming metric dict: %w", err)
	}
	return nil
}

// Scalar returns the value of name as a float64 when it is numeric.
func (d Dict) Scalar(name string) (float64, bool) {
	switch v := d[name].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
