package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tmc/langchaingo/llms"

	"github.com/mikeboe/deep-research/pkg/config"
	"github.com/mikeboe/deep-research/pkg/research"
)

// scriptedModel implements llms.Model with a context-aware script.
type scriptedModel struct {
	respond func(ctx context.Context, prompt string) (string, error)
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var prompt strings.Builder
	for _, mc := range messages {
		for _, part := range mc.Parts {
			if text, ok := part.(llms.TextContent); ok {
				prompt.WriteString(text.Text)
			}
		}
	}
	content, err := m.respond(ctx, prompt.String())
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return m.respond(ctx, prompt)
}

func happyThinkingModel() *scriptedModel {
	return &scriptedModel{respond: func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "search query optimizer"):
			return "event loop javascript", nil
		case strings.Contains(prompt, "research gap analyzer"):
			return "<query>NONE</query>", nil
		case strings.Contains(prompt, "documentation architect"):
			return "<structure># Event Loop\n## Intro\n</structure>", nil
		}
		return "", context.Canceled
	}}
}

func happyGeneratingModel() *scriptedModel {
	return &scriptedModel{respond: func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "content summarizer"):
			return "Event loop coordinates callbacks.", nil
		case strings.Contains(prompt, "technical writer"):
			return "# Event Loop\n## Intro\nText.", nil
		}
		return "", context.Canceled
	}}
}

// newTestEndpoint stands up the full HTTP surface with stubbed backends and
// returns a connected websocket client.
func newTestEndpoint(t *testing.T, thinking, generating llms.Model, emptySearch bool) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tavily := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if emptySearch {
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{
			{"title": "Event Loop", "url": "https://example.com/loop", "content": "snippet", "raw_content": "full text", "score": 0.9},
		}})
	}))
	t.Cleanup(tavily.Close)

	cfg := &config.Config{
		Server:   config.ServerConfig{WSPath: "/api/v1/ws/research", CorsOrigins: []string{"*"}},
		Tavily:   config.TavilyConfig{APIKey: "test-key", InitialResults: 3, MaxRetries: 3},
		Research: config.ResearchConfig{MaxGapLoops: 2},
	}

	graph := research.NewGraphWithModels(cfg, thinking, generating)
	graph.Search.(*research.SearchStage).Client.BaseURL = tavily.URL

	r := gin.New()
	NewHandler(graph, cfg).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + cfg.Server.WSPath
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type event struct {
	Step       string `json:"step"`
	Timestamp  string `json:"timestamp"`
	Progress   int    `json:"progress"`
	Details    string `json:"details"`
	Query      string `json:"query"`
	Completion string `json:"completion"`
}

// readEvents collects events until the server closes the connection.
func readEvents(t *testing.T, conn *websocket.Conn) []event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	var events []event
	for {
		var e event
		if err := conn.ReadJSON(&e); err != nil {
			return events
		}
		events = append(events, e)
	}
}

func TestSessionHappyPath(t *testing.T) {
	conn := newTestEndpoint(t, happyThinkingModel(), happyGeneratingModel(), false)

	if err := conn.WriteJSON(map[string]string{"action": "start", "query": "event loop"}); err != nil {
		t.Fatalf("write start: %v", err)
	}

	events := readEvents(t, conn)

	wantSteps := []string{"search_planner", "search", "summarize", "analyze_gaps", "generate_structure", "generate_content", "complete"}
	if len(events) != len(wantSteps) {
		t.Fatalf("got %d events %+v, want steps %v", len(events), events, wantSteps)
	}
	for i, want := range wantSteps {
		if events[i].Step != want {
			t.Fatalf("event %d step = %q, want %q", i, events[i].Step, want)
		}
	}

	wantProgress := []int{10, 25, 40, 60, 75, 90, 100}
	for i, want := range wantProgress {
		if events[i].Progress != want {
			t.Errorf("event %d progress = %d, want %d", i, events[i].Progress, want)
		}
	}

	for i, e := range events {
		if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
			t.Errorf("event %d timestamp %q is not RFC 3339: %v", i, e.Timestamp, err)
		}
	}

	last := events[len(events)-1]
	if last.Completion != "# Event Loop\n## Intro\nText." {
		t.Errorf("completion = %q", last.Completion)
	}
	for _, e := range events[:len(events)-1] {
		if e.Completion != "" {
			t.Errorf("non-terminal event %q carries a completion", e.Step)
		}
	}
}

func TestSessionIgnoresUnknownMessagesBeforeStart(t *testing.T) {
	conn := newTestEndpoint(t, happyThinkingModel(), happyGeneratingModel(), false)

	conn.WriteJSON(map[string]string{"action": "ping"})
	conn.WriteJSON(map[string]string{"hello": "world"})
	if err := conn.WriteJSON(map[string]string{"action": "start", "query": "event loop"}); err != nil {
		t.Fatalf("write start: %v", err)
	}

	events := readEvents(t, conn)
	if len(events) == 0 || events[len(events)-1].Step != "complete" {
		t.Fatalf("session did not complete after ignored messages: %+v", events)
	}
}

func TestSessionRejectsEmptyQuery(t *testing.T) {
	conn := newTestEndpoint(t, happyThinkingModel(), happyGeneratingModel(), false)

	if err := conn.WriteJSON(map[string]string{"action": "start", "query": "  "}); err != nil {
		t.Fatalf("write start: %v", err)
	}

	events := readEvents(t, conn)
	if len(events) != 1 {
		t.Fatalf("got %d events %+v, want exactly one error event", len(events), events)
	}
	if events[0].Step != "error" {
		t.Errorf("step = %q, want error", events[0].Step)
	}
}

func TestSessionSearchFailureEmitsSingleErrorEvent(t *testing.T) {
	conn := newTestEndpoint(t, happyThinkingModel(), happyGeneratingModel(), true)

	if err := conn.WriteJSON(map[string]string{"action": "start", "query": "event loop"}); err != nil {
		t.Fatalf("write start: %v", err)
	}

	events := readEvents(t, conn)
	if len(events) == 0 {
		t.Fatal("no events received")
	}

	var terminals int
	for _, e := range events {
		if e.Step == "error" || e.Step == "complete" {
			terminals++
		}
	}
	if terminals != 1 {
		t.Fatalf("terminal events = %d, want exactly 1: %+v", terminals, events)
	}

	last := events[len(events)-1]
	if last.Step != "error" {
		t.Fatalf("last event step = %q, want error", last.Step)
	}
	if !strings.Contains(last.Details, "No results") {
		t.Errorf("error details = %q, want mention of missing results", last.Details)
	}
	if !strings.Contains(last.Details, "search") {
		t.Errorf("error details = %q, want the failing stage name", last.Details)
	}
}

func TestSessionStopCancelsRun(t *testing.T) {
	blocked := make(chan struct{})
	generating := &scriptedModel{respond: func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "content summarizer") {
			close(blocked)
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "# Doc", nil
	}}

	conn := newTestEndpoint(t, happyThinkingModel(), generating, false)

	if err := conn.WriteJSON(map[string]string{"action": "start", "query": "event loop"}); err != nil {
		t.Fatalf("write start: %v", err)
	}

	select {
	case <-blocked:
	case <-time.After(10 * time.Second):
		t.Fatal("summarizer never started")
	}
	if err := conn.WriteJSON(map[string]string{"action": "stop"}); err != nil {
		t.Fatalf("write stop: %v", err)
	}

	events := readEvents(t, conn)
	for _, e := range events {
		if e.Step == "complete" || e.Step == "error" {
			t.Fatalf("cancelled session emitted terminal event: %+v", e)
		}
	}
}
