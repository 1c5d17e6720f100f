package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mikeboe/deep-research/pkg/research"
)

// startMessage is the single inbound command a client may send.
type startMessage struct {
	Action string `json:"action"`
	Query  string `json:"query"`
}

// researchMessage is one outbound progress event.
type researchMessage struct {
	Step       research.Step `json:"step"`
	Timestamp  string        `json:"timestamp"`
	Progress   int           `json:"progress"`
	Details    string        `json:"details"`
	Query      string        `json:"query,omitempty"`
	Completion string        `json:"completion,omitempty"`
}

// session binds one websocket connection to one orchestrator run. All
// writes happen from the run goroutine, so the connection sees a single
// producer; the reader goroutine only watches for disconnects and stop
// commands.
type session struct {
	conn   *websocket.Conn
	graph  *research.Graph
	logger *slog.Logger
}

func newSession(conn *websocket.Conn, graph *research.Graph, logger *slog.Logger) *session {
	return &session{
		conn:   conn,
		graph:  graph,
		logger: logger.With("session_id", uuid.New().String()),
	}
}

func (s *session) run() {
	defer s.conn.Close()

	start, ok := s.awaitStart()
	if !ok {
		return
	}

	if strings.TrimSpace(start.Query) == "" {
		s.logger.Warn("Rejecting start with empty query")
		s.send(research.StepError, research.ProgressComplete, "Research query must not be empty", "", "")
		return
	}

	s.logger.Info("Starting research session", "query", start.Query)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.watchPeer(cancel)

	state, err := s.graph.Run(ctx, start.Query, func(step research.Step, progress int, details string) {
		s.send(step, progress, details, start.Query, "")
	})

	if err != nil {
		if ctx.Err() != nil {
			s.logger.Info("Session cancelled by peer")
			return
		}
		s.logger.Error("Research failed", "error", err)
		s.send(research.StepError, research.ProgressComplete, errorDetails(err), start.Query, "")
		return
	}

	s.logger.Info("Research completed", "document_length", len(state.FinalDocument))
	s.send(research.StepComplete, research.ProgressComplete, "Research completed successfully", start.Query, state.FinalDocument)
}

// awaitStart reads inbound messages until a start command arrives. Returns
// false if the peer goes away first.
func (s *session) awaitStart() (startMessage, bool) {
	for {
		var msg startMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return startMessage{}, false
		}
		if msg.Action == "start" {
			return msg, true
		}
		s.logger.Warn("Ignoring inbound message", "action", msg.Action)
	}
}

// watchPeer cancels the run when the peer disconnects or asks to stop. Any
// other inbound traffic during a run is ignored.
func (s *session) watchPeer(cancel context.CancelFunc) {
	for {
		var msg startMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			cancel()
			return
		}
		if msg.Action == "stop" {
			s.logger.Info("Peer requested stop")
			cancel()
			return
		}
	}
}

func (s *session) send(step research.Step, progress int, details, query, completion string) {
	msg := researchMessage{
		Step:       step,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Progress:   progress,
		Details:    details,
		Query:      query,
		Completion: completion,
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Error("Failed to write event", "step", string(step), "error", err)
	}
}

// errorDetails names the stage a failure arose in when known.
func errorDetails(err error) string {
	var stageErr *research.StageError
	if errors.As(err, &stageErr) {
		return "Research failed at " + string(stageErr.Step) + ": " + stageErr.Err.Error()
	}
	return "Research failed: " + err.Error()
}
