package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
)

// SearchPlanner turns the user's research query into a focused search query
// of three industry-standard terms.
type SearchPlanner struct {
	llm    llms.Model
	logger *slog.Logger
}

func NewSearchPlanner(llm llms.Model) *SearchPlanner {
	return &SearchPlanner{llm: llm, logger: slog.Default()}
}

func (p *SearchPlanner) Invoke(ctx context.Context, state State) (State, error) {
	prompt := renderPrompt(searchPlannerPrompt, map[string]string{
		"input": state.ResearchQuery,
	})

	response, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return state, fmt.Errorf("llm call failed: %w", err)
	}

	searchPlan := RemoveThinkingTags(response)
	if searchPlan == "" {
		return state, errors.New("failed to generate search plan")
	}

	p.logger.Info("Search plan created", "plan", searchPlan)

	state.SearchPlan = searchPlan
	return state, nil
}
