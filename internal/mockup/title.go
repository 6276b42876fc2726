package mockup

import (
	"fmt"
	"strings"
	"unicode"
)

// DeriveTitle picks a display title for spec when no markdown heading is
// available. n is the 1-based page index used by the last fallback.
func DeriveTitle(spec Spec, n int) string {
	root, ok := spec.Elements[spec.Root]
	if ok {
		if t := stringProp(root.Props, "title"); t != "" {
			return t
		}
		if t := headingText(spec, root.Children); t != "" {
			return t
		}
		for _, id := range root.Children {
			child, ok := spec.Elements[id]
			if !ok {
				continue
			}
			if t := headingText(spec, child.Children); t != "" {
				return t
			}
		}
	}
	if t := humanize(spec.Root); t != "" {
		return t
	}
	return fmt.Sprintf("Page %d", n)
}

func headingText(spec Spec, ids []string) string {
	for _, id := range ids {
		el, ok := spec.Elements[id]
		if !ok || el.Type != "Heading" {
			continue
		}
		if t := stringProp(el.Props, "text"); t != "" {
			return t
		}
	}
	return ""
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return strings.TrimSpace(s)
}

// humanize turns "main-dashboard" or "main_dashboard" into "Main Dashboard".
func humanize(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
