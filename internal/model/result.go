package model

import "github.com/samber/lo"

// MaxResults caps the number of rows a result list holds.
const MaxResults = 10

// ItemKind distinguishes the two kinds of result rows.
type ItemKind int

const (
	KindLink ItemKind = iota
	KindQuery
)

func (k ItemKind) String() string {
	switch k {
	case KindLink:
		return "link"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// ResultItem is one selectable row in the overlay.
//
// For KindLink, Target is the URL to navigate to and ID is used to mark the
// link as read. For KindQuery, Target is the query name and Query holds the
// stored query text that replaces the search input on activation.
type ResultItem struct {
	ID          ID
	Kind        ItemKind
	Target      string
	Name        string
	Description string
	Tags        []string
	Query       string
	ToRead      bool
	Favourite   bool
	Shared      bool
}

// IsLink reports whether the item navigates somewhere.
func (r ResultItem) IsLink() bool {
	return r.Kind == KindLink
}

// Deletable reports whether the item can be removed from the service.
// Only saved queries are removable from the overlay, and only when they
// carry an id.
func (r ResultItem) Deletable() bool {
	return r.Kind == KindQuery && !r.ID.IsZero()
}

// ResultList is an ordered, capped set of result rows.
type ResultList struct {
	Items []ResultItem
}

// NewResultList keeps the first MaxResults items in the order given.
func NewResultList(items []ResultItem) ResultList {
	if len(items) > MaxResults {
		items = items[:MaxResults]
	}
	return ResultList{Items: items}
}

// FromLinks converts service links into a result list.
func FromLinks(links []Link) ResultList {
	return NewResultList(lo.Map(links, func(l Link, _ int) ResultItem {
		return ResultItem{
			ID:          l.ID,
			Kind:        KindLink,
			Target:      l.Href,
			Name:        l.Title(),
			Description: l.Description,
			Tags:        l.Tags,
			ToRead:      l.ToRead,
			Favourite:   l.Favourite,
			Shared:      l.Shared,
		}
	}))
}

// FromQueries converts saved queries into a result list. The query text is
// shown as the description so the user can tell what activating it will do.
func FromQueries(queries []StoredQuery) ResultList {
	return NewResultList(lo.Map(queries, func(q StoredQuery, _ int) ResultItem {
		return ResultItem{
			ID:          q.ID,
			Kind:        KindQuery,
			Target:      q.Name,
			Name:        q.Name,
			Description: q.Query,
			Query:       q.Query,
		}
	}))
}

// Len returns the number of rows.
func (l ResultList) Len() int {
	return len(l.Items)
}

// Empty reports whether there are no rows.
func (l ResultList) Empty() bool {
	return len(l.Items) == 0
}

// At returns the row at index i, or false when out of range.
func (l ResultList) At(i int) (ResultItem, bool) {
	if i < 0 || i >= len(l.Items) {
		return ResultItem{}, false
	}
	return l.Items[i], true
}
