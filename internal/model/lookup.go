package model

import "strings"

const (
	savedQueryPrefix = "@"
	exactSuffix      = "."
)

// QueryState is the current text of the search input and what it asks for.
type QueryState struct {
	Text string
}

// IsSavedQueryLookup reports whether the text targets saved queries.
func (q QueryState) IsSavedQueryLookup() bool {
	return strings.HasPrefix(q.Text, savedQueryPrefix)
}

// IsExactLookup reports whether the text ends in the exactness modifier and
// still names something once prefix and modifier are removed.
func (q QueryState) IsExactLookup() bool {
	return strings.HasSuffix(q.Text, exactSuffix) && q.exactName() != ""
}

func (q QueryState) exactName() string {
	name := strings.TrimSuffix(q.Text, exactSuffix)
	return strings.TrimPrefix(name, savedQueryPrefix)
}

// LookupKind is the endpoint a lookup goes to.
type LookupKind int

const (
	// LookupLinks filters links by free text.
	LookupLinks LookupKind = iota
	// LookupQueries matches saved queries by name substring.
	LookupQueries
	// LookupExact looks up a saved query with exactly this name and, on a
	// single hit, runs its stored query against links.
	LookupExact
)

func (k LookupKind) String() string {
	switch k {
	case LookupLinks:
		return "links"
	case LookupQueries:
		return "queries"
	case LookupExact:
		return "exact"
	default:
		return "unknown"
	}
}

// Lookup describes the requests needed to answer a QueryState.
type Lookup struct {
	Kind LookupKind
	Term string
	// Fallback is set for LookupExact and runs when the exact match does not
	// return exactly one saved query.
	Fallback *Lookup
}

// Classify derives the lookup for the given input text.
//
//	"rust"    links filtered by "rust"
//	""        most recent links
//	"@work"   saved queries whose name contains "work"
//	"work."   exact saved query "work", else links filtered by "work"
//	"@work."  exact saved query "work", else saved queries containing "work"
func Classify(text string) Lookup {
	q := QueryState{Text: text}
	if q.IsExactLookup() {
		fallback := classifyPlain(strings.TrimSuffix(text, exactSuffix))
		return Lookup{Kind: LookupExact, Term: q.exactName(), Fallback: &fallback}
	}
	return classifyPlain(text)
}

func classifyPlain(text string) Lookup {
	if strings.HasPrefix(text, savedQueryPrefix) {
		return Lookup{Kind: LookupQueries, Term: strings.TrimPrefix(text, savedQueryPrefix)}
	}
	return Lookup{Kind: LookupLinks, Term: text}
}
