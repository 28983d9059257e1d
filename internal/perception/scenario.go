package perception

import (
	"fmt"
	"os"

	"github.com/tatianab/blueprince/internal/game"
	"github.com/tatianab/blueprince/internal/house"
	"gopkg.in/yaml.v3"
)

// scenarioFile is the on-disk shape of a scripted run.
type scenarioFile struct {
	Resources []map[string]struct {
		Value      int     `yaml:"value"`
		Confidence float64 `yaml:"confidence"`
	} `yaml:"resources"`
	RoomChoices [][]scenarioRoom    `yaml:"room_choices"`
	Notes       []string            `yaml:"notes"`
	ShopStock   [][]house.StockItem `yaml:"shop_stock"`
}

type scenarioRoom struct {
	Name        string      `yaml:"name"`
	Cost        int         `yaml:"cost"`
	Shape       house.Shape `yaml:"shape"`
	Rarity      string      `yaml:"rarity"`
	Description string      `yaml:"description"`
}

// LoadScenario reads a scripted observer from a YAML file.
func LoadScenario(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	script := &Script{
		Notes:     f.Notes,
		ShopStock: f.ShopStock,
	}
	for _, readings := range f.Resources {
		out := make(Resources, len(readings))
		for name, r := range readings {
			out[game.Resource(name)] = Reading{Value: r.Value, Confidence: r.Confidence}
		}
		script.ResourceReadings = append(script.ResourceReadings, out)
	}
	for _, choices := range f.RoomChoices {
		rooms := make([]*house.Room, 0, len(choices))
		for _, c := range choices {
			room := house.NewRoom(c.Name, c.Shape, house.Position{})
			room.Cost = c.Cost
			room.Rarity = c.Rarity
			room.Description = c.Description
			rooms = append(rooms, room)
		}
		script.RoomChoices = append(script.RoomChoices, rooms)
	}
	return script, nil
}
