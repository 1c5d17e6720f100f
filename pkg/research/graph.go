package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/mikeboe/deep-research/pkg/config"
)

// Step names one node of the research pipeline. The values double as the
// wire-level step identifiers on the progress channel.
type Step string

const (
	StepSearchPlanner     Step = "search_planner"
	StepSearch            Step = "search"
	StepSummarize         Step = "summarize"
	StepAnalyzeGaps       Step = "analyze_gaps"
	StepGenerateStructure Step = "generate_structure"
	StepGenerateContent   Step = "generate_content"
	StepComplete          Step = "complete"
	StepError             Step = "error"
)

// Fixed ordinal progress per stage.
const (
	progressSearchPlanner     = 10
	progressSearch            = 25
	progressSummarize         = 40
	progressAnalyzeGaps       = 60
	progressGenerateStructure = 75
	progressGenerateContent   = 90
	ProgressComplete          = 100
)

// ProgressFunc receives one notification before each stage runs.
type ProgressFunc func(step Step, progress int, details string)

// StageError tags a stage failure with the step it arose in.
type StageError struct {
	Step Step
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Stage is one node of the pipeline: it consumes the state and returns an
// updated copy.
type Stage interface {
	Invoke(ctx context.Context, state State) (State, error)
}

// SearchStage runs the planned query through the search client and replaces
// the state's sources wholesale.
type SearchStage struct {
	Client         *TavilyClient
	InitialResults int
}

func (s *SearchStage) Invoke(ctx context.Context, state State) (State, error) {
	if state.SearchPlan == "" {
		return state, errors.New("no search plan available")
	}

	results, err := s.Client.Search(ctx, state.SearchPlan, s.InitialResults)
	if err != nil {
		return state, err
	}

	state.SearchResults = results
	return state, nil
}

// Graph executes the research pipeline: a fixed stage topology with one
// conditional back-edge from the gap analyzer to the search stage. Stages
// run sequentially; the state flows by value between them, so one Graph can
// serve concurrent sessions.
type Graph struct {
	Planner     Stage
	Search      Stage
	Summarizer  Stage
	GapAnalyzer Stage
	Structurer  Stage
	Generator   Stage
	MaxGapLoops int
	Logger      *slog.Logger
}

// NewGraph wires the pipeline against the Ollama chat backend and the Tavily
// search backend described by cfg. The planner, gap analyzer and structurer
// use the thinking model; summarization and content generation use the
// generating model.
func NewGraph(cfg *config.Config) (*Graph, error) {
	thinking, err := ollama.New(
		ollama.WithServerURL(cfg.LLM.OllamaBaseURL),
		ollama.WithModel(cfg.LLM.ThinkingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init thinking model: %w", err)
	}

	generating, err := ollama.New(
		ollama.WithServerURL(cfg.LLM.OllamaBaseURL),
		ollama.WithModel(cfg.LLM.GeneratingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init generating model: %w", err)
	}

	return NewGraphWithModels(cfg, thinking, generating), nil
}

// NewGraphWithModels builds the pipeline around caller-supplied models.
func NewGraphWithModels(cfg *config.Config, thinking, generating llms.Model) *Graph {
	return &Graph{
		Planner: NewSearchPlanner(thinking),
		Search: &SearchStage{
			Client:         NewTavilyClient(cfg.Tavily.APIKey, cfg.Tavily.MaxRetries),
			InitialResults: cfg.Tavily.InitialResults,
		},
		Summarizer:  NewContentSummarizer(generating),
		GapAnalyzer: NewGapAnalyzer(thinking),
		Structurer:  NewDocumentStructurer(thinking),
		Generator:   NewContentGenerator(generating),
		MaxGapLoops: cfg.Research.MaxGapLoops,
		Logger:      slog.Default(),
	}
}

// Run executes one research session for query. onProgress (optional) is
// called once before each stage with that stage's fixed progress ordinal.
// On stage failure the returned error is a *StageError naming the stage.
func (g *Graph) Run(ctx context.Context, query string, onProgress ProgressFunc) (State, error) {
	if strings.TrimSpace(query) == "" {
		return State{}, &StageError{Step: StepSearchPlanner, Err: errors.New("research query must not be empty")}
	}

	state := NewState(query)
	current := StepSearchPlanner

	for {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		ran := current
		var err error
		switch current {
		case StepSearchPlanner:
			g.emit(onProgress, StepSearchPlanner, progressSearchPlanner, "Planning search strategy...")
			state, err = g.Planner.Invoke(ctx, state)
			current = StepSearch

		case StepSearch:
			g.emit(onProgress, StepSearch, progressSearch, "Searching for relevant information...")
			state, err = g.Search.Invoke(ctx, state)
			current = StepSummarize

		case StepSummarize:
			g.emit(onProgress, StepSummarize, progressSummarize, "Summarizing found information...")
			state, err = g.Summarizer.Invoke(ctx, state)
			current = StepAnalyzeGaps

		case StepAnalyzeGaps:
			g.emit(onProgress, StepAnalyzeGaps, progressAnalyzeGaps,
				fmt.Sprintf("Analyzing knowledge gaps (Loop %d)...", state.GapLoopCount+1))
			state, err = g.GapAnalyzer.Invoke(ctx, state)
			if err == nil {
				if g.shouldContinueSearching(state) {
					state.SearchPlan = state.GapQuery
					current = StepSearch
				} else {
					current = StepGenerateStructure
				}
			}

		case StepGenerateStructure:
			g.emit(onProgress, StepGenerateStructure, progressGenerateStructure, "Generating document structure...")
			state, err = g.Structurer.Invoke(ctx, state)
			current = StepGenerateContent

		case StepGenerateContent:
			g.emit(onProgress, StepGenerateContent, progressGenerateContent, "Generating final document...")
			state, err = g.Generator.Invoke(ctx, state)
			if err == nil {
				return state, nil
			}
		}

		if err != nil {
			// Cancellation during a stage surfaces as the context error, not
			// a stage failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return state, ctxErr
			}
			return state, &StageError{Step: ran, Err: err}
		}
	}
}

// shouldContinueSearching decides the one conditional edge: loop back to
// search while the analyzer keeps finding gaps and the loop bound allows.
func (g *Graph) shouldContinueSearching(state State) bool {
	if state.GapQuery == GapQueryNone {
		g.Logger.Info("No knowledge gaps found, proceeding to document generation")
		return false
	}

	if state.GapLoopCount >= g.MaxGapLoops {
		g.Logger.Info("Reached maximum gap search loops, proceeding to document generation", "max_gap_loops", g.MaxGapLoops)
		return false
	}

	g.Logger.Info("Continuing search to fill knowledge gap", "gap_query", state.GapQuery)
	return true
}

func (g *Graph) emit(onProgress ProgressFunc, step Step, progress int, details string) {
	g.Logger.Info(details, "step", string(step), "progress", progress)
	if onProgress != nil {
		onProgress(step, progress, details)
	}
}
