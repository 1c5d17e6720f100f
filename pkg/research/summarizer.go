package research

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// FailedSummary marks a source whose summarization call failed. Downstream
// stages treat it like any other summary so one flaky call never aborts the
// batch.
const FailedSummary = "Failed to generate summary."

// ContentSummarizer condenses each source's raw content into a short
// topic-focused summary. All sources are summarized concurrently and rejoin
// in input order.
type ContentSummarizer struct {
	llm    llms.Model
	logger *slog.Logger
}

func NewContentSummarizer(llm llms.Model) *ContentSummarizer {
	return &ContentSummarizer{llm: llm, logger: slog.Default()}
}

func (s *ContentSummarizer) Invoke(ctx context.Context, state State) (State, error) {
	if len(state.SearchResults) == 0 {
		return state, errors.New("no search results available to summarize")
	}

	s.logger.Info("Starting parallel summarization", "count", len(state.SearchResults))

	// Indexed writes into a pre-sized slice keep the output in input order
	// regardless of completion order.
	summarized := make([]SearchResult, len(state.SearchResults))
	var wg sync.WaitGroup
	for i, result := range state.SearchResults {
		wg.Add(1)
		go func(i int, result SearchResult) {
			defer wg.Done()
			summarized[i] = s.summarize(ctx, result, state.ResearchQuery)
		}(i, result)
	}
	wg.Wait()

	s.logger.Info("Completed summarization of all results")

	state.SearchResults = summarized
	return state, nil
}

func (s *ContentSummarizer) summarize(ctx context.Context, result SearchResult, topic string) SearchResult {
	prompt := renderPrompt(contentSummarizerPrompt, map[string]string{
		"topic":   topic,
		"content": result.RawContent,
	})

	response, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		s.logger.Error("Error summarizing content", "url", result.URL, "error", err)
		result.Summary = FailedSummary
		return result
	}

	result.Summary = strings.TrimSpace(response)
	return result
}
