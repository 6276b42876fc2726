package mockup

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"idea2app/internal/util/jsonutil"
)

var rePatchStart = regexp.MustCompile(`^\{\s*"op"\s*:`)

// isPatchStream reports whether content looks like a stream of JSON patches.
func isPatchStream(content string) bool {
	return rePatchStart.MatchString(strings.TrimSpace(content))
}

type patchOp struct {
	Op    string          `json:"op"`
	Path  *string         `json:"path"`
	Value json.RawMessage `json:"value"`
}

var errBadPath = errors.New("invalid pointer path")

// ApplyPatches folds a run of concatenated {"op":"add",...} objects into a
// spec. Malformed objects and patches missing path or value are skipped; a
// truncated trailing object is dropped. The folded document must carry both
// root and elements, otherwise ErrIncompleteSpec is returned.
func ApplyPatches(stream string) (Spec, error) {
	doc := map[string]any{}
	for _, raw := range jsonutil.SplitObjects(stream) {
		var p patchOp
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			log.Printf("mockup: skip unparseable patch %q: %v", clip(raw), err)
			continue
		}
		if p.Op != "add" || p.Path == nil || p.Value == nil {
			continue
		}
		var value any
		if err := json.Unmarshal(p.Value, &value); err != nil {
			log.Printf("mockup: skip patch %s: bad value: %v", *p.Path, err)
			continue
		}
		next, err := setPointer(doc, splitPointer(*p.Path), value)
		if err != nil {
			log.Printf("mockup: skip patch %s: %v", *p.Path, err)
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			log.Printf("mockup: skip patch %s: document root must be an object", *p.Path)
			continue
		}
		doc = m
	}

	if _, ok := doc["root"]; !ok {
		return Spec{}, ErrIncompleteSpec
	}
	if _, ok := doc["elements"]; !ok {
		return Spec{}, ErrIncompleteSpec
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return Spec{}, fmt.Errorf("encode patched spec: %w", err)
	}
	var spec Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return Spec{}, fmt.Errorf("%w: %v", ErrIncompleteSpec, err)
	}
	return spec, nil
}

// splitPointer splits an RFC 6901 pointer into unescaped reference tokens.
func splitPointer(path string) []string {
	if path == "" || path == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return parts
}

// setPointer returns node with value set at tokens. Missing intermediate
// containers are created as objects; "-" appends to an array.
func setPointer(node any, tokens []string, value any) (any, error) {
	if len(tokens) == 0 {
		return value, nil
	}
	tok := tokens[0]
	switch n := node.(type) {
	case map[string]any:
		v, err := setPointer(n[tok], tokens[1:], value)
		if err != nil {
			return n, err
		}
		n[tok] = v
		return n, nil
	case []any:
		if tok == "-" {
			if len(tokens) > 1 {
				return n, errBadPath
			}
			return append(n, value), nil
		}
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 0 || idx > len(n) {
			return n, errBadPath
		}
		if len(tokens) == 1 {
			n = append(n, nil)
			copy(n[idx+1:], n[idx:])
			n[idx] = value
			return n, nil
		}
		if idx == len(n) {
			return n, errBadPath
		}
		v, err := setPointer(n[idx], tokens[1:], value)
		if err != nil {
			return n, err
		}
		n[idx] = v
		return n, nil
	default:
		if tok == "-" {
			if len(tokens) > 1 {
				return node, errBadPath
			}
			return []any{value}, nil
		}
		return setPointer(map[string]any{}, tokens, value)
	}
}

func clip(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
