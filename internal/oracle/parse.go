package oracle

import (
	"fmt"
	"strings"

	"github.com/tatianab/blueprince/internal/house"
	"gopkg.in/yaml.v3"
)

// actionWire is the YAML shape the model is asked to produce.
type actionWire struct {
	Action      string   `yaml:"action"`
	Door        string   `yaml:"door_direction"`
	SpecialItem string   `yaml:"special_item"`
	TargetRoom  string   `yaml:"target_room"`
	Path        []string `yaml:"path"`
	Planned     string   `yaml:"planned_action"`
	Item        string   `yaml:"item"`
	Quantity    int      `yaml:"quantity"`
	Switch      string   `yaml:"switch"`
	Command     string   `yaml:"command"`
	Explanation string   `yaml:"explanation"`
}

// ParseAction decodes a fence-stripped YAML decision into an Action. Any
// decoding or validation failure wraps ErrMalformedDecision.
func ParseAction(raw string) (Action, error) {
	var w actionWire
	if err := yaml.Unmarshal([]byte(raw), &w); err != nil {
		return Action{}, fmt.Errorf("parse decision: %v: %w", err, ErrMalformedDecision)
	}

	a := Action{
		Kind:        Kind(strings.ToLower(strings.TrimSpace(w.Action))),
		SpecialItem: w.SpecialItem,
		TargetRoom:  house.NormalizeName(w.TargetRoom),
		Planned:     w.Planned,
		Item:        w.Item,
		Quantity:    w.Quantity,
		Switch:      w.Switch,
		Command:     w.Command,
		Explanation: w.Explanation,
	}
	if w.Door != "" {
		dir, err := house.ParseDirection(w.Door)
		if err != nil {
			return Action{}, fmt.Errorf("parse decision: %v: %w", err, ErrMalformedDecision)
		}
		a.Door = dir
	}
	for _, step := range w.Path {
		dir, err := house.ParseDirection(step)
		if err != nil {
			return Action{}, fmt.Errorf("parse decision path: %v: %w", err, ErrMalformedDecision)
		}
		a.Path = append(a.Path, dir)
	}
	if a.Kind == KindPurchaseItem && a.Quantity == 0 {
		a.Quantity = 1
	}
	if err := a.Validate(); err != nil {
		return Action{}, err
	}
	return a, nil
}

// ParseDraftChoice decodes a fence-stripped YAML drafting decision.
func ParseDraftChoice(raw string) (DraftChoice, error) {
	var w struct {
		Redraw      string `yaml:"redraw"`
		Room        string `yaml:"room"`
		Enter       bool   `yaml:"enter"`
		Explanation string `yaml:"explanation"`
	}
	if err := yaml.Unmarshal([]byte(raw), &w); err != nil {
		return DraftChoice{}, fmt.Errorf("parse draft choice: %v: %w", err, ErrMalformedDecision)
	}
	return DraftChoice{
		Redraw:      strings.ToUpper(strings.TrimSpace(w.Redraw)),
		Room:        house.NormalizeName(w.Room),
		Enter:       w.Enter,
		Explanation: w.Explanation,
	}, nil
}
