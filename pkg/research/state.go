package research

// GapQueryNone is the sentinel the gap analyzer emits when coverage is complete.
const GapQueryNone = "NONE"

// SearchResult represents a single retrieved source.
type SearchResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"rawContent"`
	Score      float64 `json:"score"`
	Summary    string  `json:"summary,omitempty"`
}

// State is the record threaded through every pipeline stage. Stages receive
// it by value and return an updated copy; only the orchestrator holds the
// current version, so no locking is needed.
type State struct {
	ResearchQuery     string
	SearchPlan        string
	SearchResults     []SearchResult
	GapQuery          string
	DocumentStructure string
	FinalDocument     string
	GapLoopCount      int
}

// NewState seeds a fresh state for one research session.
func NewState(query string) State {
	return State{ResearchQuery: query}
}
