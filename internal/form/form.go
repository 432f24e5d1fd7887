// Package form reads raw form-control values and normalizes them into typed scalars.
package form

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Field identifies a single form control.
type Field string

// Form controls known to the portal.
const (
	Engine          Field = "engine"
	Text            Field = "text"
	Fmt             Field = "fmt"
	Voice           Field = "voice"
	Preset          Field = "preset"
	UserID          Field = "userId"
	LengthScale     Field = "lengthScale"
	NoiseScale      Field = "noiseScale"
	SentenceSilence Field = "sentenceSilence"
	OnnxURL         Field = "onnxUrl"
	JSONURL         Field = "jsonUrl"
	Postprocess     Field = "postprocess"
	SavePreset      Field = "savePreset"
	XVoice          Field = "xVoice"
	XStyle          Field = "xStyle"
	XLang           Field = "xLang"
	XSpeed          Field = "xSpeed"
	XTemp           Field = "xTemp"
)

// Fields lists every known form control.
var Fields = []Field{
	Engine, Text, Fmt,
	Voice, Preset, UserID, LengthScale, NoiseScale, SentenceSilence, OnnxURL, JSONURL, Postprocess, SavePreset,
	XVoice, XStyle, XLang, XSpeed, XTemp,
}

// Known reports whether f names a form control.
func Known(f Field) bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Checkbox reports whether f is a checkbox control.
func Checkbox(f Field) bool {
	return f == Postprocess || f == SavePreset
}

// Source provides the raw state of the form controls.
type Source interface {
	// Value returns the raw text of a control, or "" if it has none.
	Value(f Field) string
	// Checked returns the state of a checkbox control.
	Checked(f Field) bool
}

// StringOrAbsent trims raw and returns nil when nothing is left,
// so optional fields can be omitted instead of sent as empty strings.
func StringOrAbsent(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// NumberOrDefault parses the leading decimal number of raw and returns def
// when no finite number can be read. It never fails.
func NumberOrDefault(raw string, def float64) float64 {
	v, ok := parseDecimalPrefix(raw)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// parseDecimalPrefix reads the longest decimal literal at the start of s,
// ignoring leading whitespace and any trailing garbage ("1.5x" reads 1.5).
func parseDecimalPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		// Also covers "Infinity" and "NaN", which are never finite.
		return 0, false
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		// Out of range literals overflow to ±Inf and fall back to the default.
		return 0, false
	}
	return v, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Accessor reads typed values from a Source.
type Accessor struct {
	src Source
}

// NewAccessor creates an Accessor over src.
func NewAccessor(src Source) Accessor {
	return Accessor{src: src}
}

// Raw returns the untouched value of f.
func (a Accessor) Raw(f Field) string {
	return a.src.Value(f)
}

// String returns the trimmed value of f, or nil if it is blank.
func (a Accessor) String(f Field) *string {
	return StringOrAbsent(a.src.Value(f))
}

// Trimmed returns the trimmed value of f.
func (a Accessor) Trimmed(f Field) string {
	return strings.TrimSpace(a.src.Value(f))
}

// Number returns the numeric value of f, or def if it does not hold a finite number.
func (a Accessor) Number(f Field, def float64) float64 {
	return NumberOrDefault(a.src.Value(f), def)
}

// Bool returns the checked state of f.
func (a Accessor) Bool(f Field) bool {
	return a.src.Checked(f)
}
