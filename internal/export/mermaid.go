package export

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dusk-indust/lendit/internal/catalog"
)

// GenerateMermaid produces a Mermaid graph TD diagram of who owns what.
// Each user becomes a subgraph holding one node per owned item; unavailable
// items get the "lent" class. Users with no items are drawn as a lone node.
func GenerateMermaid(ctx context.Context, cat catalog.Catalog) (string, error) {
	snap, err := BuildSnapshot(ctx, cat)
	if err != nil {
		return "", err
	}
	return RenderMermaid(snap.CatalogUsers(), snap.Items), nil
}

// RenderMermaid is GenerateMermaid over already loaded data.
func RenderMermaid(users []catalog.User, items []catalog.Item) string {
	byOwner := make(map[int64][]catalog.Item, len(users))
	for _, it := range items {
		byOwner[it.OwnerID] = append(byOwner[it.OwnerID], it)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("  classDef lent fill:#eee,stroke:#999,color:#999\n")

	var lent []string
	for _, u := range users {
		owned := byOwner[u.ID]
		delete(byOwner, u.ID)
		if len(owned) == 0 {
			sb.WriteString(fmt.Sprintf("  U%d[\"%s\"]\n", u.ID, label(u.Name)))
			continue
		}
		sb.WriteString(fmt.Sprintf("  subgraph U%d[\"%s\"]\n", u.ID, label(u.Name)))
		for _, it := range owned {
			sb.WriteString(fmt.Sprintf("    I%d[\"%s\"]\n", it.ID, label(it.Name)))
			if !it.Available {
				lent = append(lent, fmt.Sprintf("I%d", it.ID))
			}
		}
		sb.WriteString("  end\n")
	}

	// Items whose owner is not among users.
	for _, owner := range slices.Sorted(maps.Keys(byOwner)) {
		for _, it := range byOwner[owner] {
			sb.WriteString(fmt.Sprintf("  I%d[\"%s\"]\n", it.ID, label(it.Name)))
			if !it.Available {
				lent = append(lent, fmt.Sprintf("I%d", it.ID))
			}
		}
	}

	if len(lent) > 0 {
		sb.WriteString(fmt.Sprintf("  class %s lent\n", strings.Join(lent, ",")))
	}
	return sb.String()
}

// label escapes text for a quoted Mermaid node label.
func label(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
