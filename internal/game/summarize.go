package game

import (
	"fmt"
	"strings"

	"github.com/tatianab/blueprince/internal/house"
)

// Summarize renders the state as decision context: resources, position, the
// full room roster with door detail, inventory and any outstanding special
// order. The oracle sees exactly what this returns.
func (s *State) Summarize() string {
	var b strings.Builder

	parts := make([]string, 0, len(AllResources))
	for _, r := range AllResources {
		parts = append(parts, fmt.Sprintf("%s=%d", r, s.Resources[r]))
	}
	fmt.Fprintf(&b, "Resources: %s\n", strings.Join(parts, ", "))
	if s.Current != nil {
		fmt.Fprintf(&b, "Current room: %s at %s\n", s.Current.Name, s.Current.Pos)
	}
	fmt.Fprintf(&b, "House dimensions: width=%d, height=%d (north-west corner is (0,0))\n", s.House.Width, s.House.Height)
	fmt.Fprintf(&b, "Day: %d\n", s.Day)

	b.WriteString("Items:\n")
	if len(s.Inventory) == 0 {
		b.WriteString("  None\n")
	}
	for _, item := range s.Inventory {
		fmt.Fprintf(&b, "  - %s: %s\n", item.Name, item.Description)
	}
	if s.SpecialOrder != "" {
		fmt.Fprintf(&b, "Special order for COMMISSARY: %s\n", s.SpecialOrder)
	}

	b.WriteString("Rooms currently in house:\n")
	s.House.Rooms(func(room *house.Room) bool {
		fmt.Fprintf(&b, "  - %s at %s, type: %v, rarity: %s, has_been_entered: %t\n",
			room.Name, room.Pos, room.Tags, room.Rarity, room.Entered)
		switch room.Kind {
		case house.KindShop:
			if len(room.Stock) == 0 {
				b.WriteString("    Items for sale: Unknown\n")
			} else {
				fmt.Fprintf(&b, "    Items for sale in %s:\n", room.Name)
				for _, item := range room.Stock {
					fmt.Fprintf(&b, "      - %s: %d\n", item.Name, item.Price)
				}
			}
		case house.KindPuzzle:
			fmt.Fprintf(&b, "    Puzzle has been solved: %t\n", room.PuzzleSolved)
		case house.KindUtilityCloset:
			sw := room.Switches
			fmt.Fprintf(&b, "    Utility switches: keycard=%t, gymnasium=%t, darkroom=%t, garage=%t\n",
				sw.KeycardEntry, sw.Gymnasium, sw.Darkroom, sw.Garage)
		case house.KindCoatCheck:
			stored := room.StoredItem
			if stored == "" {
				stored = "None"
			}
			fmt.Fprintf(&b, "    Stored item in Coat Check: %s\n", stored)
		case house.KindSecretPassage:
			fmt.Fprintf(&b, "    Passage has been used: %t\n", room.PassageUsed)
		}
		if room.Trunks > 0 {
			fmt.Fprintf(&b, "    Trunks in %s: %d\n", room.Name, room.Trunks)
		}
		if room.DigSpots > 0 {
			fmt.Fprintf(&b, "    Dig spots in %s: %d\n", room.Name, room.DigSpots)
		}
		if room.HasTerminal {
			fmt.Fprintf(&b, "    Terminal present in %s\n", room.Name)
		}
		b.WriteString("    Doors:\n")
		for _, door := range room.Doors {
			fmt.Fprintf(&b, "      %s (leads_to=%s, locked=%s, is_security=%s)\n",
				door.Orientation, door.LeadsTo, door.Locked, door.Security)
		}
		return true
	})
	b.WriteString("If a room has_been_entered, its initial items and door information have already been collected.\n")
	return b.String()
}
