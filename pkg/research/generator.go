package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// ContentGenerator writes the final markdown article following the document
// structure exactly. It runs at a slightly higher temperature than the
// deterministic stages to keep the prose readable.
type ContentGenerator struct {
	llm    llms.Model
	logger *slog.Logger
}

func NewContentGenerator(llm llms.Model) *ContentGenerator {
	return &ContentGenerator{llm: llm, logger: slog.Default()}
}

func (g *ContentGenerator) Invoke(ctx context.Context, state State) (State, error) {
	if len(state.SearchResults) == 0 {
		return state, errors.New("no search results available to generate content")
	}
	if state.DocumentStructure == "" {
		return state, errors.New("no document structure available to generate content")
	}

	summaries := concatenateSummaries(state.SearchResults)
	if summaries == "" {
		return state, errors.New("no summaries available to generate content")
	}

	g.logger.Info("Generating final document content")

	prompt := renderPrompt(contentGeneratorPrompt, map[string]string{
		"topic":     state.ResearchQuery,
		"summaries": summaries,
		"structure": state.DocumentStructure,
	})

	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(0.3))
	if err != nil {
		return state, fmt.Errorf("llm call failed: %w", err)
	}

	finalDocument := strings.TrimSpace(response)
	if finalDocument == "" {
		return state, errors.New("failed to generate document content")
	}

	g.logger.Info("Document content generated successfully", "length", len(finalDocument))

	state.FinalDocument = finalDocument
	return state, nil
}
