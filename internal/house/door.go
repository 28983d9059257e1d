package house

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTransition is returned when a resolve operation would overwrite an
// already-resolved field with a conflicting value. The field is left untouched.
var ErrInvalidTransition = errors.New("invalid transition")

// Destination sentinels. Captured save data from early runs uses these exact
// strings, so they are kept as the wire vocabulary.
const (
	DestUnknown = "?"       // door has not been opened yet
	DestBlocked = "BLOCKED" // door faces a wall or a room with no matching door
)

// Mark is a three-valued flag for door attributes that start out unknown and
// are resolved by observation: unresolved, yes, or no.
type Mark int

const (
	Unresolved Mark = iota
	Yes
	No
)

func (m Mark) String() string {
	switch m {
	case Yes:
		return "true"
	case No:
		return "false"
	}
	return "?"
}

// MarshalYAML writes marks in the save-file vocabulary ("?", "true", "false").
func (m Mark) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalYAML accepts the historic encodings of door flags: booleans,
// "True"/"False" in any casing, and the "?" / "N/A" unknown sentinels.
func (m *Mark) UnmarshalYAML(unmarshal func(any) error) error {
	var b bool
	if err := unmarshal(&b); err == nil {
		*m = markOf(b)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		*m = Yes
	case "false", "f", "no", "n", "0":
		*m = No
	case "", "?", "n/a", "unknown":
		*m = Unresolved
	default:
		return fmt.Errorf("invalid mark %q", s)
	}
	return nil
}

func markOf(b bool) Mark {
	if b {
		return Yes
	}
	return No
}

// Door describes one compass-direction connection out of a room. The
// destination, lock state and security flag all start unresolved and are
// advanced monotonically: once a field is resolved it never goes back.
type Door struct {
	Orientation Direction `yaml:"orientation"`
	LeadsTo     string    `yaml:"leads_to"`
	Locked      Mark      `yaml:"locked"`
	Security    Mark      `yaml:"is_security"`
}

// NewDoor returns an unresolved door with the given orientation.
func NewDoor(dir Direction) *Door {
	return &Door{Orientation: dir, LeadsTo: DestUnknown}
}

// ResolveDestination records where the door leads. Resolving to the already
// recorded destination is a no-op; resolving to a different one fails.
func (d *Door) ResolveDestination(name string) error {
	name = NormalizeName(name)
	if name == "" || name == DestUnknown {
		return fmt.Errorf("resolve destination: empty name: %w", ErrInvalidTransition)
	}
	if d.LeadsTo != DestUnknown && d.LeadsTo != "" && d.LeadsTo != name {
		return fmt.Errorf("door %s already leads to %s, not %s: %w", d.Orientation, d.LeadsTo, name, ErrInvalidTransition)
	}
	d.LeadsTo = name
	return nil
}

// ResolveLocked records the lock state.
func (d *Door) ResolveLocked(locked bool) error {
	return d.resolveMark(&d.Locked, locked, "locked")
}

// ResolveSecurity records whether this is a keycard security door.
func (d *Door) ResolveSecurity(security bool) error {
	return d.resolveMark(&d.Security, security, "security")
}

func (d *Door) resolveMark(field *Mark, v bool, what string) error {
	next := markOf(v)
	if *field != Unresolved && *field != next {
		return fmt.Errorf("door %s %s already resolved to %s: %w", d.Orientation, what, *field, ErrInvalidTransition)
	}
	*field = next
	return nil
}

// ForceLocked overrides the lock state without transition checks. Terminal
// commands and the utility closet keycard switch relock doors globally, which
// is a legitimate regression of an observed value, unlike a resolution.
func (d *Door) ForceLocked(locked bool) {
	d.Locked = markOf(locked)
}

// MarkBlocked records that the door faces a wall or a doorless neighbor.
// Blocked doors count as fully resolved: there is nothing behind them.
func (d *Door) MarkBlocked() error {
	if d.LeadsTo != DestUnknown && d.LeadsTo != "" && d.LeadsTo != DestBlocked {
		return fmt.Errorf("door %s leads to %s, cannot block: %w", d.Orientation, d.LeadsTo, ErrInvalidTransition)
	}
	d.LeadsTo = DestBlocked
	return nil
}

// Blocked reports whether the door is a dead edge.
func (d *Door) Blocked() bool { return d.LeadsTo == DestBlocked }

// DestinationKnown reports whether the destination has been resolved, either
// to a room name or to the blocked sentinel.
func (d *Door) DestinationKnown() bool {
	return d.LeadsTo != "" && d.LeadsTo != DestUnknown
}

// Resolved reports whether nothing about the door remains unknown. A blocked
// door is resolved regardless of its flags.
func (d *Door) Resolved() bool {
	if d.Blocked() {
		return true
	}
	return d.DestinationKnown() && d.Locked != Unresolved && d.Security != Unresolved
}

func (d *Door) String() string {
	return fmt.Sprintf("%s - leads_to=%s, locked=%s, is_security=%s", d.Orientation, d.LeadsTo, d.Locked, d.Security)
}
