package oracle

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/blueprince/internal/house"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/decide.txt
var decidePrompt string

//go:embed prompts/draft.txt
var draftPrompt string

//go:embed prompts/note_title.txt
var noteTitlePrompt string

//go:embed prompts/parlor.txt
var parlorPrompt string

// Gemini is the production Oracle backed by a Gemini model.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ Oracle = (*Gemini)(nil)

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (g *Gemini) Close() {
	g.client.Close()
}

// generate runs one prompt template and returns the response text with any
// markdown fences stripped.
func (g *Gemini) generate(ctx context.Context, name, prompt string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(prompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}

	return stripFences(string(text)), nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```yaml")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func memoryText(oc Context) (string, string) {
	terms := ""
	for term, def := range oc.Terms {
		terms += fmt.Sprintf("- %s: %s\n", term, def)
	}
	notes := ""
	for _, n := range oc.Notes {
		notes += fmt.Sprintf("---\n%s\n", n)
	}
	return terms, notes
}

func (g *Gemini) Decide(ctx context.Context, oc Context) (Action, error) {
	terms, notes := memoryText(oc)
	raw, err := g.generate(ctx, "decide", decidePrompt, struct {
		Summary string
		Terms   string
		Notes   string
		Planned string
	}{oc.Summary, terms, notes, oc.Planned})
	if err != nil {
		return Action{}, err
	}
	return ParseAction(raw)
}

func (g *Gemini) ChooseDraft(ctx context.Context, oc Context, options []*house.Room) (DraftChoice, error) {
	optText := ""
	for _, opt := range options {
		optText += fmt.Sprintf("- %s (cost %d gems, shape %s, %d doors, rarity %s): %s\n",
			opt.Name, opt.Cost, opt.Shape, opt.Shape.DoorCount(), opt.Rarity, opt.Description)
	}
	terms, notes := memoryText(oc)
	raw, err := g.generate(ctx, "draft", draftPrompt, struct {
		Summary string
		Terms   string
		Notes   string
		Options string
	}{oc.Summary, terms, notes, optText})
	if err != nil {
		return DraftChoice{}, err
	}
	choice, err := ParseDraftChoice(raw)
	if err != nil {
		return DraftChoice{}, err
	}
	if err := choice.Validate(options); err != nil {
		return DraftChoice{}, err
	}
	return choice, nil
}

func (g *Gemini) TitleNote(ctx context.Context, content string) (string, error) {
	raw, err := g.generate(ctx, "note_title", noteTitlePrompt, struct{ Content string }{content})
	if err != nil {
		return "", err
	}
	title := strings.TrimSpace(strings.SplitN(raw, "\n", 2)[0])
	if title == "" {
		return "", fmt.Errorf("empty note title: %w", ErrMalformedDecision)
	}
	return title, nil
}

func (g *Gemini) SolveParlor(ctx context.Context, puzzle string) (string, string, error) {
	raw, err := g.generate(ctx, "parlor", parlorPrompt, struct{ Puzzle string }{puzzle})
	if err != nil {
		return "", "", err
	}
	var resp struct {
		Box       string `yaml:"box"`
		Reasoning string `yaml:"reasoning"`
	}
	if err := yaml.Unmarshal([]byte(raw), &resp); err != nil {
		return "", "", fmt.Errorf("parse parlor answer: %v: %w", err, ErrMalformedDecision)
	}
	if resp.Box == "" {
		return "", "", fmt.Errorf("parlor answer names no box: %w", ErrMalformedDecision)
	}
	return resp.Box, resp.Reasoning, nil
}
