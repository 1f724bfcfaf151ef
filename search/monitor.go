package search

import (
	"github.com/poiesic/reposcout/core"
	"github.com/poiesic/reposcout/index"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(matches []index.Match)
	AfterThreshold(matches []index.Match)
	CacheMiss(id string)
	AfterKeywordNormalization(scores map[string]float32)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                 {}
func (n *noopMonitor) AfterSemanticSearch(_ []index.Match)            {}
func (n *noopMonitor) AfterThreshold(_ []index.Match)                 {}
func (n *noopMonitor) CacheMiss(_ string)                             {}
func (n *noopMonitor) AfterKeywordNormalization(_ map[string]float32) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)                  {}
