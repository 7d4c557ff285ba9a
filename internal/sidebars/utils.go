package sidebars

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
	"git.home.luguber.info/inful/docgraph/internal/urls"
)

// NavigationItem is a sidebar entry that takes part in previous/next navigation.
// Either DocID is set, or Title and Permalink describe a generated index page.
type NavigationItem struct {
	DocID string
	// Label is the sidebar item label of a doc entry, if any.
	Label     string
	Title     string
	Permalink string
}

// Navigation is the position of one document within its sidebar.
type Navigation struct {
	// SidebarName is empty when the document is in no sidebar.
	SidebarName string
	Previous    *NavigationItem
	Next        *NavigationItem
}

// Utils answers navigation questions for the sidebars of one version.
type Utils struct {
	sidebars   Sidebars
	docIDs     map[string][]string
	navigation map[string][]NavigationItem
	docSidebar map[string]string
	referenced []string
}

// NewUtils indexes s. versionPath roots generated index permalinks. Hidden
// doc ids still count as referenced but take no part in navigation, so
// their neighbours link across them.
func NewUtils(s Sidebars, versionPath string, hidden ...string) *Utils {
	skip := make(map[string]struct{}, len(hidden))
	for _, id := range hidden {
		skip[id] = struct{}{}
	}
	u := &Utils{
		sidebars:   s,
		docIDs:     make(map[string][]string),
		navigation: make(map[string][]NavigationItem),
		docSidebar: make(map[string]string),
	}
	for _, name := range s.names {
		flat := flatten(s.items[name])
		var ids []string
		var nav []NavigationItem
		for _, item := range flat {
			switch item.Type {
			case TypeDoc:
				u.referenced = append(u.referenced, item.ID)
				if _, ok := skip[item.ID]; ok {
					continue
				}
				ids = append(ids, item.ID)
				nav = append(nav, NavigationItem{DocID: item.ID, Label: item.Label})
			case TypeRef:
				u.referenced = append(u.referenced, item.ID)
			case TypeCategory:
				if item.Link == nil {
					continue
				}
				if item.Link.Type == LinkDoc {
					u.referenced = append(u.referenced, item.Link.ID)
					if _, ok := skip[item.Link.ID]; ok {
						continue
					}
					ids = append(ids, item.Link.ID)
					nav = append(nav, NavigationItem{DocID: item.Link.ID})
					continue
				}
				slug := item.Link.Slug
				if slug == "" {
					slug = "/category/" + urls.KebabCase(item.Label)
				}
				nav = append(nav, NavigationItem{Title: item.Label, Permalink: urls.Normalize(versionPath, slug)})
			}
		}
		u.docIDs[name] = ids
		u.navigation[name] = nav
		for _, id := range ids {
			u.docSidebar[id] = name
		}
	}
	return u
}

// flatten lists items depth-first, each category before its children.
func flatten(items []Item) []Item {
	var out []Item
	for _, item := range items {
		out = append(out, item)
		if item.Type == TypeCategory {
			out = append(out, flatten(item.Items)...)
		}
	}
	return out
}

// SidebarNameByDocID returns the sidebar containing id. When several
// sidebars contain it, the last declared wins.
func (u *Utils) SidebarNameByDocID(id string) (string, bool) {
	name, ok := u.docSidebar[id]
	return name, ok
}

// CheckSidebarsDocIDs fails when a sidebar references an id not in validIDs.
func (u *Utils) CheckSidebarsDocIDs(validIDs []string, sidebarFilePath string) error {
	valid := make(map[string]struct{}, len(validIDs))
	for _, id := range validIDs {
		valid[id] = struct{}{}
	}
	var invalid []string
	for _, id := range u.referenced {
		if _, ok := valid[id]; !ok && !slices.Contains(invalid, id) {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)
	available := make([]string, 0, len(valid))
	for id := range valid {
		available = append(available, id)
	}
	sort.Strings(available)

	return ferrors.ReferenceError(fmt.Sprintf(
		"invalid sidebar file at %q.\nThese sidebar document ids do not exist:\n- %s\n\nAvailable document ids are:\n- %s",
		sidebarFilePath, strings.Join(invalid, "\n- "), strings.Join(available, "\n- "))).
		WithContext(ferrors.KeySidebarFile, sidebarFilePath).
		WithContext(ferrors.KeyTarget, invalid).
		Build()
}

// GetDocNavigation returns the sidebar and neighbours of a document. The
// unversioned id is tried first, then the legacy versioned id. A displayed
// sidebar set in front matter overrides the lookup; an explicit null means
// no sidebar.
func (u *Utils) GetDocNavigation(unversionedID, versionedID string, displayed frontmatter.NullableString) (Navigation, error) {
	docID := unversionedID
	var sidebarName string
	if displayed.Set {
		sidebarName = displayed.Value
	} else {
		name, ok := u.SidebarNameByDocID(docID)
		if !ok {
			docID = versionedID
			name, _ = u.SidebarNameByDocID(docID)
		}
		sidebarName = name
	}
	if sidebarName == "" {
		return Navigation{}, nil
	}

	items, ok := u.navigation[sidebarName]
	if !ok {
		return Navigation{}, ferrors.ReferenceError(fmt.Sprintf(
			"doc with id %s wants to display sidebar %s but a sidebar with this name doesn't exist", docID, sidebarName)).
			WithContext(ferrors.KeyDocID, docID).
			WithContext(ferrors.KeyTarget, sidebarName).
			Build()
	}

	idx := slices.IndexFunc(items, func(it NavigationItem) bool { return it.DocID != "" && it.DocID == docID })
	if idx < 0 {
		return Navigation{SidebarName: sidebarName}, nil
	}
	nav := Navigation{SidebarName: sidebarName}
	if idx > 0 {
		prev := items[idx-1]
		nav.Previous = &prev
	}
	if idx+1 < len(items) {
		next := items[idx+1]
		nav.Next = &next
	}
	return nav, nil
}

// GetFirstDocIDOfFirstSidebar returns the first doc of the first declared sidebar.
func (u *Utils) GetFirstDocIDOfFirstSidebar() (string, bool) {
	if len(u.sidebars.names) == 0 {
		return "", false
	}
	ids := u.docIDs[u.sidebars.names[0]]
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}
