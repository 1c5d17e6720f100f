package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// GapAnalyzer reviews the collected summaries and either proposes a short
// follow-up search query or reports that coverage is complete.
type GapAnalyzer struct {
	llm    llms.Model
	logger *slog.Logger
}

func NewGapAnalyzer(llm llms.Model) *GapAnalyzer {
	return &GapAnalyzer{llm: llm, logger: slog.Default()}
}

// concatenateSummaries joins the non-empty per-source summaries, keeping
// each source's original ordinal so the model can reason about coverage.
func concatenateSummaries(results []SearchResult) string {
	var parts []string
	for i, result := range results {
		if result.Summary == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("Source %d:\n%s\n", i+1, result.Summary))
	}
	return strings.Join(parts, "\n")
}

func (a *GapAnalyzer) Invoke(ctx context.Context, state State) (State, error) {
	if len(state.SearchResults) == 0 {
		return state, errors.New("no search results available to analyze")
	}

	summaries := concatenateSummaries(state.SearchResults)
	if summaries == "" {
		return state, errors.New("no summaries available to analyze")
	}

	a.logger.Info("Analyzing knowledge gaps", "loop", state.GapLoopCount+1)

	prompt := renderPrompt(gapAnalyzerPrompt, map[string]string{
		"topic":     state.ResearchQuery,
		"summaries": summaries,
	})

	response, err := llms.GenerateFromSinglePrompt(ctx, a.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return state, fmt.Errorf("llm call failed: %w", err)
	}

	// A missing <query> tag means the model answered a bare NONE (or close
	// enough); either way there is nothing left to search for.
	gapQuery, found := ExtractFromTags(response, "query")
	if !found || gapQuery == "" {
		gapQuery = GapQueryNone
	}

	if gapQuery == GapQueryNone {
		a.logger.Info("No knowledge gaps found")
	} else {
		a.logger.Info("Found knowledge gap", "query", gapQuery)
	}

	state.GapQuery = gapQuery
	state.GapLoopCount++
	return state, nil
}
