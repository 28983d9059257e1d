package house

import (
	"fmt"
	"strings"
)

// Direction is a compass orientation for a door.
type Direction string

const (
	North Direction = "N"
	South Direction = "S"
	East  Direction = "E"
	West  Direction = "W"
)

// Directions lists all four orientations in rendering order.
var Directions = []Direction{North, South, East, West}

// ParseDirection normalizes a direction string: single letters or full
// compass names, any casing.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "N", "NORTH":
		return North, nil
	case "S", "SOUTH":
		return South, nil
	case "E", "EAST":
		return East, nil
	case "W", "WEST":
		return West, nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

// Opposite returns the facing direction: the orientation a matching door on
// the neighboring room must have.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return d
}

// Delta returns the grid offset one step in this direction. North is up,
// toward y=0, matching the blueprint layout where rank grows northward.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	}
	return 0, 0
}
