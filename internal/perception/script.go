package perception

import (
	"context"

	"github.com/tatianab/blueprince/internal/house"
)

// Script is an Observer that replays prepared readings in order. It backs
// tests and offline simulation runs.
type Script struct {
	ResourceReadings []Resources
	RoomChoices      [][]*house.Room
	Notes            []string
	ShopStock        [][]house.StockItem
}

var _ Observer = (*Script)(nil)

func (s *Script) ReadResources(_ context.Context) (Resources, error) {
	if len(s.ResourceReadings) == 0 {
		return nil, ErrExhausted
	}
	r := s.ResourceReadings[0]
	s.ResourceReadings = s.ResourceReadings[1:]
	return r, nil
}

func (s *Script) ReadRoomChoices(_ context.Context) ([]*house.Room, error) {
	if len(s.RoomChoices) == 0 {
		return nil, ErrExhausted
	}
	c := s.RoomChoices[0]
	s.RoomChoices = s.RoomChoices[1:]
	return c, nil
}

func (s *Script) ReadNote(_ context.Context) (string, error) {
	if len(s.Notes) == 0 {
		return "", ErrExhausted
	}
	n := s.Notes[0]
	s.Notes = s.Notes[1:]
	return n, nil
}

func (s *Script) ReadShopItems(_ context.Context) ([]house.StockItem, error) {
	if len(s.ShopStock) == 0 {
		return nil, ErrExhausted
	}
	st := s.ShopStock[0]
	s.ShopStock = s.ShopStock[1:]
	return st, nil
}
