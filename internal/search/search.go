package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/linkify/internal/model"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Link           *model.Link
	MatchedIndexes []int
	Score          int
}

// linkTitles implements fuzzy.Source for a link slice.
type linkTitles []*model.Link

func (lt linkTitles) String(i int) string {
	return lt[i].Title()
}

func (lt linkTitles) Len() int {
	return len(lt)
}

// RankLinks orders links by how well their titles match query, best
// first. Links that do not match keep their original order after the
// matches, so nothing the server returned is dropped.
func RankLinks(links []model.Link, query string) []SearchResult {
	ptrs := make(linkTitles, len(links))
	for i := range links {
		ptrs[i] = &links[i]
	}

	if query == "" {
		results := make([]SearchResult, len(ptrs))
		for i, l := range ptrs {
			results[i] = SearchResult{Link: l}
		}
		return results
	}

	matches := fuzzy.FindFrom(query, ptrs)
	matched := make(map[int]bool, len(matches))
	results := make([]SearchResult, 0, len(ptrs))
	for _, m := range matches {
		matched[m.Index] = true
		results = append(results, SearchResult{
			Link:           ptrs[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		})
	}
	for i, l := range ptrs {
		if !matched[i] {
			results = append(results, SearchResult{Link: l})
		}
	}
	return results
}

// MatchIndexes returns the byte offsets in text that fuzzy-match pattern,
// or nil when pattern is empty or does not match.
func MatchIndexes(pattern, text string) []int {
	if pattern == "" || text == "" {
		return nil
	}
	matches := fuzzy.Find(pattern, []string{text})
	if len(matches) == 0 {
		return nil
	}
	return matches[0].MatchedIndexes
}
