package house

import (
	"fmt"
	"iter"
	"strings"
)

// Connector symbols used by Render. Matches the blueprint legend shown to
// the operator:
//
//	= |  open passage    ?  unknown door
//	X    blocked door    L  locked door
//	S    security door
func connectorSymbol(a, b *Door) string {
	switch {
	case a == nil || b == nil:
		return " "
	case a.Blocked() || b.Blocked():
		return "X"
	case !a.DestinationKnown() || !b.DestinationKnown():
		return "?"
	case a.Security == Yes || b.Security == Yes:
		return "S"
	case a.Locked == Yes || b.Locked == Yes:
		return "L"
	default:
		return "="
	}
}

// Render yields the grid one text row at a time, for the operator display.
// Purely derived; no state is touched.
func (m *Map) Render() iter.Seq[string] {
	return func(yield func(string) bool) {
		for y := 0; y < m.Height; y++ {
			var row strings.Builder
			for x := 0; x < m.Width; x++ {
				room := m.RoomAt(Position{X: x, Y: y})
				if room == nil {
					row.WriteString("[ ]")
				} else {
					row.WriteString(fmt.Sprintf("[%c]", room.Name[0]))
				}
				if x < m.Width-1 {
					row.WriteString(m.horizontalConnector(x, y))
				}
			}
			if !yield(row.String()) {
				return
			}
			if y < m.Height-1 {
				if !yield(m.verticalConnectorRow(y)) {
					return
				}
			}
		}
	}
}

func (m *Map) horizontalConnector(x, y int) string {
	left := m.RoomAt(Position{X: x, Y: y})
	right := m.RoomAt(Position{X: x + 1, Y: y})
	if left == nil || right == nil {
		return " "
	}
	var e, w *Door
	if d, ok := left.DoorAt(East); ok {
		e = d
	}
	if d, ok := right.DoorAt(West); ok {
		w = d
	}
	return connectorSymbol(e, w)
}

func (m *Map) verticalConnectorRow(y int) string {
	var row strings.Builder
	for x := 0; x < m.Width; x++ {
		top := m.RoomAt(Position{X: x, Y: y})
		bottom := m.RoomAt(Position{X: x, Y: y + 1})
		sym := " "
		if top != nil && bottom != nil {
			var s, n *Door
			if d, ok := top.DoorAt(South); ok {
				s = d
			}
			if d, ok := bottom.DoorAt(North); ok {
				n = d
			}
			sym = connectorSymbol(s, n)
			if sym == "=" {
				sym = "|"
			}
		}
		row.WriteString(" " + sym + " ")
		if x < m.Width-1 {
			row.WriteString(" ")
		}
	}
	return strings.TrimRight(row.String(), " ")
}
