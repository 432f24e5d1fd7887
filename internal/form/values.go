package form

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Values is a map-backed Source.
type Values map[Field]string

// Value returns the raw value of f.
func (v Values) Value(f Field) string {
	return v[f]
}

// Checked treats "on" and any true value accepted by strconv.ParseBool as checked.
func (v Values) Checked(f Field) bool {
	raw := strings.TrimSpace(v[f])
	if strings.EqualFold(raw, "on") {
		return true
	}
	b, err := strconv.ParseBool(raw)
	return err == nil && b
}

// Set stores a raw value.
func (v Values) Set(f Field, value string) {
	v[f] = value
}

// SetChecked stores a checkbox state.
func (v Values) SetChecked(f Field, checked bool) {
	v[f] = strconv.FormatBool(checked)
}

// Merge copies every entry of other into v.
func (v Values) Merge(other Values) {
	for f, value := range other {
		v[f] = value
	}
}

// LoadFile reads form values from a YAML document mapping field names to scalars.
// Environment variables in the file are expanded before parsing.
func LoadFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var doc map[string]any

	decoder := yaml.NewDecoder(bytes.NewReader(data))

	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse form file %s: %w", path, err)
	}

	values := Values{}

	for key, raw := range doc {
		f := Field(key)
		if !Known(f) {
			return nil, fmt.Errorf("parse form file %s: unknown field %q", path, key)
		}

		switch val := raw.(type) {
		case nil:
			values[f] = ""
		case string:
			values[f] = val
		case bool, int, int64, uint64, float64:
			values[f] = fmt.Sprint(val)
		default:
			return nil, fmt.Errorf("parse form file %s: field %q must be a scalar", path, key)
		}
	}

	return values, nil
}
