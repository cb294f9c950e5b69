package search

import (
	"sort"

	"github.com/poiesic/docsift/core"
)

// Weights for blending the two rankings in hybrid search.
const (
	vectorWeight   = 0.6
	fullTextWeight = 0.4
)

// fuse merges vector and full-text rankings into one result list scored by
// the weighted blend of both signals. A document absent from one ranking
// contributes zero for that signal. The blended score is written to
// Similarity. Ties keep insertion order: vector results first, then
// full-text-only results.
func fuse(vectorResults, textResults []*core.SearchResult) []*core.SearchResult {
	merged := make(map[core.ID]*core.SearchResult, len(vectorResults)+len(textResults))
	order := make([]core.ID, 0, len(vectorResults)+len(textResults))

	for _, r := range vectorResults {
		merged[r.DocumentId] = &core.SearchResult{
			DocumentId: r.DocumentId,
			Filename:   r.Filename,
			Content:    r.Content,
			Similarity: r.Similarity,
			CreatedAt:  r.CreatedAt,
		}
		order = append(order, r.DocumentId)
	}

	for _, r := range textResults {
		if existing, ok := merged[r.DocumentId]; ok {
			existing.Relevance = r.Relevance
			continue
		}
		merged[r.DocumentId] = &core.SearchResult{
			DocumentId: r.DocumentId,
			Filename:   r.Filename,
			Content:    r.Content,
			Relevance:  r.Relevance,
			CreatedAt:  r.CreatedAt,
		}
		order = append(order, r.DocumentId)
	}

	results := make([]*core.SearchResult, 0, len(order))
	for _, id := range order {
		r := merged[id]
		r.Similarity = vectorWeight*r.Similarity + fullTextWeight*r.Relevance
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	return results
}
