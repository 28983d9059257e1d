// Package perception is how the agent sees the actual game. Implementations
// report what is on screen: resource counters, drafting options, notes and
// shop stock. Readings are observations, not truth; each resource reading
// carries a confidence so the cycle can decide whether to trust it.
package perception

import (
	"context"
	"errors"

	"github.com/tatianab/blueprince/internal/game"
	"github.com/tatianab/blueprince/internal/house"
)

// ErrExhausted is returned by scripted observers that have run out of
// prepared readings.
var ErrExhausted = errors.New("no more scripted observations")

// Reading is one observed resource value. Confidence is in [0, 1]; readings
// below the cycle's threshold are confirmed with the operator before they
// touch game state.
type Reading struct {
	Value      int
	Confidence float64
}

// Resources maps each resource to its observed reading.
type Resources map[game.Resource]Reading

// Observer reports what the game currently shows.
type Observer interface {
	// ReadResources observes the five resource counters.
	ReadResources(ctx context.Context) (Resources, error)
	// ReadRoomChoices observes the drafting options behind a just-opened
	// door, at most three partial rooms (name, cost, shape, rarity,
	// description).
	ReadRoomChoices(ctx context.Context) ([]*house.Room, error)
	// ReadNote observes the text of a note on screen.
	ReadNote(ctx context.Context) (string, error)
	// ReadShopItems observes the stock of the shop being perused.
	ReadShopItems(ctx context.Context) ([]house.StockItem, error)
}
