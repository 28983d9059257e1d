// Package mcpserver exposes the turn-cycle operations as MCP tools over
// streamable HTTP, so an external agent can drive the cycle the same way the
// TUI operator does.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tatianab/blueprince/internal/cycle"
	"github.com/tatianab/blueprince/internal/game"
	"github.com/tatianab/blueprince/internal/house"
	"github.com/tatianab/blueprince/internal/memory"
)

type StepInput struct{}

type DoorInput struct {
	Door     string `json:"door" jsonschema:"Door orientation: N, S, E or W"`
	LeadsTo  string `json:"leads_to,omitempty" jsonschema:"Name of the room behind the door, or BLOCKED"`
	Locked   *bool  `json:"locked,omitempty" jsonschema:"Whether the door is locked"`
	Security *bool  `json:"security,omitempty" jsonschema:"Whether the door is a security door"`
}

type AnnotateInput struct {
	Doors []DoorInput `json:"doors" jsonschema:"Door annotations for the room awaiting them"`
}

type ConfirmInput struct {
	Resources map[string]int `json:"resources" jsonschema:"Confirmed value per resource name"`
}

type TermInput struct {
	Term       string `json:"term" jsonschema:"Glossary term"`
	Definition string `json:"definition" jsonschema:"Definition of the term"`
}

type CycleOutput struct {
	Phase     string   `json:"phase" jsonschema:"Cycle phase after the call"`
	Prompt    string   `json:"prompt,omitempty" jsonschema:"Pending operator prompt, if the cycle suspended"`
	Conflicts []string `json:"conflicts,omitempty" jsonschema:"Adjacency conflicts reported by the last placement"`
	DayEnded  bool     `json:"day_ended,omitempty" jsonschema:"Whether the cycle ended the day"`
	Stale     bool     `json:"stale,omitempty" jsonschema:"Whether the on-disk snapshot is stale"`
}

type TextOutput struct {
	Text string `json:"text" jsonschema:"Rendered text"`
}

// Server serializes tool calls onto the one active cycle.
type Server struct {
	mu      sync.Mutex
	cycle   *cycle.Cycle
	game    *game.State
	journal *memory.Journal
}

func New(c *cycle.Cycle, g *game.State, j *memory.Journal) *Server {
	return &Server{cycle: c, game: g, journal: j}
}

func (s *Server) cycleOutput(prompt cycle.Prompt) *CycleOutput {
	out := &CycleOutput{
		Phase:    string(s.cycle.Phase()),
		DayEnded: s.cycle.DayEnded(),
		Stale:    s.game.Stale(),
	}
	for _, c := range s.cycle.Conflicts() {
		out.Conflicts = append(out.Conflicts, c.String())
	}
	switch p := prompt.(type) {
	case cycle.ResourcePrompt:
		var parts []string
		for r, reading := range p.Readings {
			parts = append(parts, fmt.Sprintf("%s=%d (confidence %.2f)", r, reading.Value, reading.Confidence))
		}
		out.Prompt = "confirm resources: " + strings.Join(parts, ", ")
	case cycle.AnnotationPrompt:
		out.Prompt = fmt.Sprintf("annotate doors of %s: %d missing, unresolved %v", p.Room, p.DoorsShort, p.Unresolved)
	}
	return out
}

func (s *Server) handleStep(ctx context.Context, _ *mcp.CallToolRequest, _ *StepInput) (*mcp.CallToolResult, *CycleOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prompt, err := s.cycle.Step(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, s.cycleOutput(prompt), nil
}

func (s *Server) handleConfirm(ctx context.Context, _ *mcp.CallToolRequest, input *ConfirmInput) (*mcp.CallToolResult, *CycleOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	confirmed := make(map[game.Resource]int, len(input.Resources))
	for name, v := range input.Resources {
		confirmed[game.Resource(strings.ToLower(name))] = v
	}
	prompt, err := s.cycle.ResumeResources(ctx, confirmed)
	if err != nil {
		return nil, nil, err
	}
	return nil, s.cycleOutput(prompt), nil
}

func (s *Server) handleAnnotate(ctx context.Context, _ *mcp.CallToolRequest, input *AnnotateInput) (*mcp.CallToolResult, *CycleOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	annotations := make([]cycle.DoorAnnotation, 0, len(input.Doors))
	for _, d := range input.Doors {
		dir, err := house.ParseDirection(d.Door)
		if err != nil {
			return nil, nil, err
		}
		annotations = append(annotations, cycle.DoorAnnotation{
			Door:     dir,
			LeadsTo:  d.LeadsTo,
			Locked:   d.Locked,
			Security: d.Security,
		})
	}
	prompt, err := s.cycle.ResumeAnnotation(ctx, annotations)
	if err != nil {
		return nil, nil, err
	}
	return nil, s.cycleOutput(prompt), nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcp.CallToolRequest, _ *StepInput) (*mcp.CallToolResult, *TextOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nil, &TextOutput{Text: s.game.Summarize()}, nil
}

func (s *Server) handleMap(_ context.Context, _ *mcp.CallToolRequest, _ *StepInput) (*mcp.CallToolResult, *TextOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for line := range s.game.House.Render() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return nil, &TextOutput{Text: b.String()}, nil
}

func (s *Server) handleCaptureNote(ctx context.Context, _ *mcp.CallToolRequest, _ *StepInput) (*mcp.CallToolResult, *TextOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	title, err := s.cycle.CaptureNote(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, &TextOutput{Text: "noted: " + title}, nil
}

func (s *Server) handleAddTerm(_ context.Context, _ *mcp.CallToolRequest, input *TermInput) (*mcp.CallToolResult, *TextOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.journal.PutTerm(input.Term, input.Definition); err != nil {
		return nil, nil, err
	}
	return nil, &TextOutput{Text: "recorded"}, nil
}

// RunHTTP serves the tools over streamable HTTP with origin and bearer-token
// guards.
func RunHTTP(s *Server, addr, path string, origins []string, token string) error {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "blueprince",
		Version: "v1.0.0",
	}, nil)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "step",
		Description: "Advance the turn cycle until it completes or suspends on an operator prompt.",
	}, s.handleStep)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "confirm_resources",
		Description: "Confirm or correct low-confidence resource readings and resume the cycle.",
	}, s.handleConfirm)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "annotate_doors",
		Description: "Annotate the doors of a newly drafted room and resume the cycle.",
	}, s.handleAnnotate)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "status",
		Description: "Summarize the current game state.",
	}, s.handleStatus)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "map",
		Description: "Render the house map.",
	}, s.handleMap)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "capture_note",
		Description: "Read the note on screen, title it and record it in long-term memory.",
	}, s.handleCaptureNote)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "add_term",
		Description: "Record a glossary term in long-term memory.",
	}, s.handleAddTerm)

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return mcpServer
	}, &mcp.StreamableHTTPOptions{
		Logger: slog.Default(),
	})

	originSet := map[string]struct{}{}
	for _, origin := range origins {
		originSet[origin] = struct{}{}
	}

	guarded := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAllowedOrigin(r, originSet) {
			http.Error(w, "Forbidden origin", http.StatusForbidden)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})

	mux := http.NewServeMux()
	mux.Handle(path, guarded)

	slog.Info("serving MCP", "addr", addr, "path", path)
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return server.ListenAndServe()
}

func isAllowedOrigin(r *http.Request, allowed map[string]struct{}) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, ok := allowed[origin]
	return ok
}
