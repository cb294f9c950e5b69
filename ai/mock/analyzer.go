package mock

import (
	"context"
	"strings"

	"github.com/poiesic/docsift/ai"
)

// MockAnalyzer is a test double for ai.Analyzer.
// It allows custom behavior injection via function fields.
type MockAnalyzer struct {
	// AnalyzeDocumentFunc is called by AnalyzeDocument if set.
	// If nil, uses default word-based behavior.
	AnalyzeDocumentFunc func(ctx context.Context, content string) (*ai.DocumentAnalysis, error)

	// ExtractInsightsFunc is called by ExtractInsights if set.
	// If nil, uses default behavior.
	ExtractInsightsFunc func(ctx context.Context, snippets []ai.ScoredSnippet) (*ai.ResultInsights, error)

	callCount int
}

// NewMockAnalyzer creates a mock analyzer with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockAnalyzer().
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

// AnalyzeDocument produces a simple deterministic analysis.
// Default behavior: the first few words become topics, the first sentence
// becomes the summary.
func (m *MockAnalyzer) AnalyzeDocument(ctx context.Context, content string) (*ai.DocumentAnalysis, error) {
	m.callCount++

	if m.AnalyzeDocumentFunc != nil {
		return m.AnalyzeDocumentFunc(ctx, content)
	}

	if strings.TrimSpace(content) == "" {
		return nil, ai.ErrNoContent
	}

	words := strings.Fields(strings.ToLower(content))
	topics := make([]string, 0, 3)
	for i, word := range words {
		if i >= 3 {
			break
		}
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if word != "" {
			topics = append(topics, word)
		}
	}

	summary := content
	if idx := strings.IndexAny(summary, ".!?"); idx > 0 {
		summary = summary[:idx+1]
	}

	return &ai.DocumentAnalysis{
		Topics:       topics,
		DocumentKind: "document",
		Purpose:      "mock analysis",
		Summary:      summary,
		Tags:         topics,
	}, nil
}

// ExtractInsights produces deterministic insights from snippet count.
func (m *MockAnalyzer) ExtractInsights(ctx context.Context, snippets []ai.ScoredSnippet) (*ai.ResultInsights, error) {
	m.callCount++

	if m.ExtractInsightsFunc != nil {
		return m.ExtractInsightsFunc(ctx, snippets)
	}

	if len(snippets) == 0 {
		return nil, ai.ErrNoContent
	}

	return &ai.ResultInsights{
		Patterns:   []string{"mock pattern"},
		Assessment: "mock assessment",
		Takeaways:  []string{"mock takeaway"},
	}, nil
}

// CallCount returns the number of times any method was called.
func (m *MockAnalyzer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockAnalyzer) Reset() {
	m.callCount = 0
	m.AnalyzeDocumentFunc = nil
	m.ExtractInsightsFunc = nil
}
