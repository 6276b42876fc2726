package mockup

// SplitPages breaks a multi-screen spec into one page per root child. It
// applies only when the root has more than one child and every child is a
// page-level container of catalog; otherwise it returns nil. Each page holds
// the elements reachable from its child. spec is not modified.
func SplitPages(spec Spec, catalog *Catalog) []Page {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	root, ok := spec.Elements[spec.Root]
	if !ok || len(root.Children) <= 1 {
		return nil
	}
	for _, id := range root.Children {
		child, ok := spec.Elements[id]
		if !ok || !catalog.IsPageLevel(child.Type) {
			return nil
		}
	}

	pages := make([]Page, 0, len(root.Children))
	for i, id := range root.Children {
		sub := spec.Subtree(id)
		pages = append(pages, Page{
			Title:       DeriveTitle(sub, i+1),
			Description: stringProp(sub.Elements[id].Props, "description"),
			Spec:        sub,
		})
	}
	return pages
}
