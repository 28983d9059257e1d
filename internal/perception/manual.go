package perception

import (
	"context"
	"errors"

	"github.com/tatianab/blueprince/internal/game"
	"github.com/tatianab/blueprince/internal/house"
)

// ErrUnavailable is returned by the manual observer for readings that only a
// scripted scenario or a live capture source can provide.
var ErrUnavailable = errors.New("observation unavailable; supply a scenario")

// Manual is the Observer used when no capture source is wired up. Resource
// readings echo the current game state at zero confidence, so every cycle
// suspends for the operator to confirm or correct the counters by hand.
type Manual struct {
	State *game.State
}

var _ Observer = (*Manual)(nil)

func (m *Manual) ReadResources(_ context.Context) (Resources, error) {
	out := make(Resources, len(game.AllResources))
	for _, r := range game.AllResources {
		out[r] = Reading{Value: m.State.Resources[r], Confidence: 0}
	}
	return out, nil
}

func (m *Manual) ReadRoomChoices(_ context.Context) ([]*house.Room, error) {
	return nil, ErrUnavailable
}

func (m *Manual) ReadNote(_ context.Context) (string, error) {
	return "", ErrUnavailable
}

func (m *Manual) ReadShopItems(_ context.Context) ([]house.StockItem, error) {
	return nil, ErrUnavailable
}
