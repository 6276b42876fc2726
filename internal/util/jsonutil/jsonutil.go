package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoObject is returned when no balanced JSON object span exists in the input.
var ErrNoObject = errors.New("jsonutil: no JSON object found")

// MarshalNoEscape encodes v into JSON without escaping <, >, & into <, etc.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Remove trailing newline from json.Encoder.Encode
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalFlex tries to unmarshal JSON bytes into v with best effort:
// 1) Direct unmarshal
// 2) Unmarshal the first balanced object span found inside the text
// Models often wrap JSON in prose or code fences; the second step covers that.
func UnmarshalFlex(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	span, err := ExtractObject(string(raw))
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(span), v)
}

// ExtractObject returns the first balanced {...} span of s.
// Braces inside JSON strings are ignored.
func ExtractObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		if end := objectEnd(s, start); end > 0 {
			return s[start:end], nil
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoObject
}

// SplitObjects splits a run of concatenated JSON objects ({...}{...}...) into
// its top-level object substrings. Text between objects is ignored. A span
// that never closes or is not valid JSON (a truncated or garbled object) is
// skipped and scanning resumes at the next '{' after its start.
func SplitObjects(s string) []string {
	var out []string
	i := 0
	for i < len(s) {
		start := strings.IndexByte(s[i:], '{')
		if start < 0 {
			break
		}
		start += i
		if end := objectEnd(s, start); end > 0 && json.Valid([]byte(s[start:end])) {
			out = append(out, s[start:end])
			i = end
			continue
		}
		i = start + 1
	}
	return out
}

// objectEnd scans from the '{' at start and returns the index just past its
// matching '}', or -1 when the input ends first.
func objectEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
