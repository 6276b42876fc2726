package mockup

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// PropSchema describes one component prop.
type PropSchema struct {
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
}

// ComponentSchema describes one allowed component type.
type ComponentSchema struct {
	Description string                `yaml:"description"`
	Children    bool                  `yaml:"children"`
	PageLevel   bool                  `yaml:"page_level"`
	Props       map[string]PropSchema `yaml:"props"`
}

// RequiredProps returns the required prop names, sorted.
func (c ComponentSchema) RequiredProps() []string {
	var out []string
	for name, p := range c.Props {
		if p.Required {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Catalog is the closed set of component types mockups may use.
type Catalog struct {
	components map[string]ComponentSchema
}

// ParseCatalog decodes a catalog document.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var doc struct {
		Components map[string]ComponentSchema `yaml:"components"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Components) == 0 {
		return nil, fmt.Errorf("parse catalog: no components")
	}
	return &Catalog{components: doc.Components}, nil
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Lookup returns the schema for a component type.
func (c *Catalog) Lookup(typ string) (ComponentSchema, bool) {
	s, ok := c.components[typ]
	return s, ok
}

// Known reports whether typ is part of the catalog. Renderers show a
// placeholder for unknown types.
func (c *Catalog) Known(typ string) bool {
	_, ok := c.components[typ]
	return ok
}

// IsPageLevel reports whether typ may stand alone as a page.
func (c *Catalog) IsPageLevel(typ string) bool {
	s, ok := c.components[typ]
	return ok && s.PageLevel
}

// Names returns the component names, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.components))
	for name := range c.components {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Prompt renders the catalog as the component reference given to the model.
func (c *Catalog) Prompt() string {
	var sb strings.Builder
	sb.WriteString("Available components (use ONLY these types):\n")
	for _, name := range c.Names() {
		s := c.components[name]
		fmt.Fprintf(&sb, "- %s: %s", name, s.Description)
		if s.Children {
			sb.WriteString(" Accepts children.")
		}
		if len(s.Props) > 0 {
			props := make([]string, 0, len(s.Props))
			for p := range s.Props {
				props = append(props, p)
			}
			sort.Strings(props)
			sb.WriteString(" Props: ")
			for i, p := range props {
				if i > 0 {
					sb.WriteString(", ")
				}
				ps := s.Props[p]
				fmt.Fprintf(&sb, "%s (%s", p, ps.Type)
				if ps.Required {
					sb.WriteString(", required")
				}
				sb.WriteString(")")
			}
			sb.WriteString(".")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
