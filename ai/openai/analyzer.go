// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docsift/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxAnalysisChars bounds the content sent for analysis; roughly 8k tokens
// at 4 characters per token.
const maxAnalysisChars = 32000

// Analyzer implements ai.Analyzer using OpenAI-compatible chat APIs.
type Analyzer struct {
	client llms.Model
	logger *slog.Logger
}

// documentAnalysis mirrors the JSON structure the model is asked to produce.
type documentAnalysis struct {
	Topics   []string `json:"topics"`
	Entities struct {
		People        []string `json:"people"`
		Organizations []string `json:"organizations"`
		Locations     []string `json:"locations"`
	} `json:"entities"`
	DocumentType string   `json:"document_type"`
	Purpose      string   `json:"purpose"`
	KeyInsights  []string `json:"key_insights"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
}

// resultInsights mirrors the JSON structure for search result analysis.
type resultInsights struct {
	Patterns          []string `json:"patterns"`
	QualityAssessment string   `json:"quality_assessment"`
	Gaps              []string `json:"gaps"`
	KeyTakeaways      []string `json:"key_takeaways"`
}

// newAnalyzer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newAnalyzer(config *ai.Config) (*Analyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.AnalyzerHost),
		openai.WithToken("none"),
		openai.WithModel(config.AnalyzerModel),
	)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		client: client,
		logger: slog.Default().With("component", "openai-analyzer"),
	}, nil
}

// NewAnalyzer creates a new document analyzer using the provided configuration.
//
// Returns ai.Analyzer interface to enforce abstraction.
func NewAnalyzer(config *ai.Config) (ai.Analyzer, error) {
	return newAnalyzer(config)
}

// AnalyzeDocument analyzes extracted document text using an LLM.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, content string) (*ai.DocumentAnalysis, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ai.ErrNoContent
	}

	if len(content) > maxAnalysisChars {
		content = content[:maxAnalysisChars] + "..."
	}

	var result documentAnalysis
	if err := a.generateJSON(ctx, documentAnalysisPrompt, content, &result); err != nil {
		return nil, err
	}

	analysis := &ai.DocumentAnalysis{
		Topics:        result.Topics,
		People:        result.Entities.People,
		Organizations: result.Entities.Organizations,
		Locations:     result.Entities.Locations,
		DocumentKind:  result.DocumentType,
		Purpose:       result.Purpose,
		KeyInsights:   result.KeyInsights,
		Summary:       result.Summary,
		Tags:          result.Tags,
	}

	a.logger.Debug("analyzed document",
		"topics", len(analysis.Topics),
		"insights", len(analysis.KeyInsights))
	return analysis, nil
}

// ExtractInsights analyzes scored search snippets using an LLM.
func (a *Analyzer) ExtractInsights(ctx context.Context, snippets []ai.ScoredSnippet) (*ai.ResultInsights, error) {
	if len(snippets) == 0 {
		return nil, ai.ErrNoContent
	}

	// Cap at 5 snippets, 300 chars each, like a human skimming top results
	samples := make([]string, 0, 5)
	for i, s := range snippets {
		if i >= 5 {
			break
		}
		content := s.Content
		if len(content) > 300 {
			content = content[:300] + "..."
		}
		samples = append(samples, fmt.Sprintf("Score: %.3f - %s", s.Score, content))
	}

	var result resultInsights
	if err := a.generateJSON(ctx, insightsPrompt, strings.Join(samples, "\n\n"), &result); err != nil {
		return nil, err
	}

	return &ai.ResultInsights{
		Patterns:   result.Patterns,
		Assessment: result.QualityAssessment,
		Gaps:       result.Gaps,
		Takeaways:  result.KeyTakeaways,
	}, nil
}

// generateJSON runs a chat completion in JSON mode and decodes the response
// into out, retrying on malformed output.
func (a *Analyzer) generateJSON(ctx context.Context, systemPrompt, userContent string, out any) error {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(userContent),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			a.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return err
		}

		if len(response.Choices) < 1 {
			a.logger.Debug("no choices returned from model")
			return ai.ErrEmptyResponse
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), out); err != nil {
			lastErr = err
			a.logger.Warn("error parsing analyzer response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		return nil
	}

	a.logger.Error("failed to parse analyzer response after retries", "err", lastErr)
	return lastErr
}
