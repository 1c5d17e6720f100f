package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
)

// DocumentStructurer designs the markdown skeleton the final document will
// follow: headings plus HTML-comment hints, no body text.
type DocumentStructurer struct {
	llm    llms.Model
	logger *slog.Logger
}

func NewDocumentStructurer(llm llms.Model) *DocumentStructurer {
	return &DocumentStructurer{llm: llm, logger: slog.Default()}
}

func (d *DocumentStructurer) Invoke(ctx context.Context, state State) (State, error) {
	if len(state.SearchResults) == 0 {
		return state, errors.New("no search results available to create document structure")
	}

	summaries := concatenateSummaries(state.SearchResults)
	if summaries == "" {
		return state, errors.New("no summaries available to create document structure")
	}

	d.logger.Info("Generating document structure")

	prompt := renderPrompt(documentStructurePrompt, map[string]string{
		"topic":     state.ResearchQuery,
		"summaries": summaries,
	})

	response, err := llms.GenerateFromSinglePrompt(ctx, d.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return state, fmt.Errorf("llm call failed: %w", err)
	}

	structure, found := ExtractFromTags(response, "structure")
	if !found || structure == "" {
		return state, errors.New("failed to generate document structure")
	}

	d.logger.Info("Document structure generated successfully")

	state.DocumentStructure = structure
	return state, nil
}
