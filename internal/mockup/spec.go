package mockup

import (
	"fmt"
	"sort"
)

// Element is one node of a UI specification tree.
type Element struct {
	Type     string         `json:"type"`
	Props    map[string]any `json:"props"`
	Children []string       `json:"children"`
}

// Spec is a flat UI tree: a root id plus every node keyed by id.
type Spec struct {
	Root     string             `json:"root"`
	Elements map[string]Element `json:"elements"`
}

// Page is a named, described view onto one spec or sub-spec.
type Page struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Spec        Spec   `json:"spec"`
}

// Issue is one problem found by Validate.
type Issue struct {
	ElementID string `json:"elementId,omitempty"`
	Message   string `json:"message"`
}

func (i Issue) String() string {
	if i.ElementID == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.ElementID, i.Message)
}

// IsComplete reports whether the root exists and every child id referenced
// anywhere in the tree is present in Elements.
func (s Spec) IsComplete() bool {
	if s.Root == "" {
		return false
	}
	if _, ok := s.Elements[s.Root]; !ok {
		return false
	}
	for _, el := range s.Elements {
		for _, child := range el.Children {
			if _, ok := s.Elements[child]; !ok {
				return false
			}
		}
	}
	return true
}

// Validate reports structural problems and, when catalog is non-nil,
// element types the catalog does not know. Unknown types are reported but
// renderers may still show them as placeholders.
func (s Spec) Validate(catalog *Catalog) []Issue {
	var issues []Issue
	if s.Root == "" {
		issues = append(issues, Issue{Message: "root is empty"})
	} else if _, ok := s.Elements[s.Root]; !ok {
		issues = append(issues, Issue{ElementID: s.Root, Message: "root element is missing"})
	}

	ids := make([]string, 0, len(s.Elements))
	for id := range s.Elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		el := s.Elements[id]
		for _, child := range el.Children {
			if _, ok := s.Elements[child]; !ok {
				issues = append(issues, Issue{ElementID: id, Message: fmt.Sprintf("child %q is missing", child)})
			}
		}
		if catalog == nil {
			continue
		}
		schema, ok := catalog.Lookup(el.Type)
		if !ok {
			issues = append(issues, Issue{ElementID: id, Message: fmt.Sprintf("unknown component type %q", el.Type)})
			continue
		}
		for _, name := range schema.RequiredProps() {
			if _, ok := el.Props[name]; !ok {
				issues = append(issues, Issue{ElementID: id, Message: fmt.Sprintf("missing required prop %q", name)})
			}
		}
		if !schema.Children && len(el.Children) > 0 {
			issues = append(issues, Issue{ElementID: id, Message: fmt.Sprintf("%s does not accept children", el.Type)})
		}
	}
	return issues
}

// Reachable returns the ids reachable from start over children edges,
// in BFS order. Ids missing from Elements are not followed.
func (s Spec) Reachable(start string) []string {
	if _, ok := s.Elements[start]; !ok {
		return nil
	}
	seen := map[string]bool{start: true}
	order := []string{start}
	for i := 0; i < len(order); i++ {
		for _, child := range s.Elements[order[i]].Children {
			if seen[child] {
				continue
			}
			if _, ok := s.Elements[child]; !ok {
				continue
			}
			seen[child] = true
			order = append(order, child)
		}
	}
	return order
}

// Subtree returns the spec rooted at id, restricted to the ids reachable
// from it. The receiver is not modified.
func (s Spec) Subtree(id string) Spec {
	reach := s.Reachable(id)
	out := Spec{Root: id, Elements: make(map[string]Element, len(reach))}
	for _, rid := range reach {
		out.Elements[rid] = s.Elements[rid]
	}
	return out
}
