package search

import "github.com/poiesic/docsift/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, mode core.SearchMode)
	AfterVectorSearch(matches []*core.NearestMatch)
	AfterFullTextSearch(matches []*core.TextMatch)
	AfterFusion(results []*core.SearchResult)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.SearchMode)        {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.NearestMatch) {}
func (n *noopMonitor) AfterFullTextSearch(_ []*core.TextMatch)  {}
func (n *noopMonitor) AfterFusion(_ []*core.SearchResult)       {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)            {}
