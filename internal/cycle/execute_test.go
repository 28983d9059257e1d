package cycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tatianab/blueprince/internal/game"
	"github.com/tatianab/blueprince/internal/house"
	"github.com/tatianab/blueprince/internal/oracle"
	"github.com/tatianab/blueprince/internal/perception"
)

// placeNeighbor drafts a fully documented room next to the entrance by hand,
// as if a previous day's cycle had done it.
func placeNeighbor(t *testing.T, f *fixture, name string, dir house.Direction) *house.Room {
	t.Helper()
	entrance := f.state.House.RoomAt(house.EntrancePos)
	room := house.NewRoom(name, house.ShapeDeadEnd, entrance.Pos.Step(dir))
	d := house.NewDoor(dir.Opposite())
	require.NoError(t, room.AddDoor(d))
	require.NoError(t, d.ResolveSecurity(false))
	_, err := f.state.House.PlaceRoom(room)
	require.NoError(t, err)
	room.MarkEntered()
	return room
}

func runCycle(t *testing.T, f *fixture, action oracle.Action) {
	t.Helper()
	f.obs.ResourceReadings = append(f.obs.ResourceReadings, fullHand())
	f.orc.decisions = append(f.orc.decisions, decision{action: action})
	prompt, err := f.cycle.Step(context.Background())
	require.NoError(t, err)
	require.Nil(t, prompt)
}

func TestShopFlow(t *testing.T) {
	f := newFixture(t)
	shop := placeNeighbor(t, f, "COMMISSARY", house.West)
	require.NoError(t, f.state.EnterRoom(shop))
	f.obs.ShopStock = [][]house.StockItem{{
		{Name: "Shovel", Price: 6},
		{Name: "Apple", Price: 2},
	}}

	runCycle(t, f, oracle.Action{Kind: oracle.KindPeruseShop})
	require.Len(t, shop.Stock, 2)

	runCycle(t, f, oracle.Action{Kind: oracle.KindPurchaseItem, Item: "Shovel", Quantity: 1})
	require.Equal(t, 4, f.state.Resources[game.Coins])
	require.True(t, f.state.HasItem("Shovel"))
	require.Len(t, shop.Stock, 1, "the bought item leaves the shelf")

	// Buying beyond the purse fails without mutation.
	f.obs.ResourceReadings = append(f.obs.ResourceReadings, fullHand())
	f.orc.decisions = append(f.orc.decisions, decision{action: oracle.Action{
		Kind: oracle.KindPurchaseItem, Item: "Apple", Quantity: 9,
	}})
	_, err := f.cycle.Step(context.Background())
	require.ErrorIs(t, err, ErrActionPrecondition)
	require.Len(t, shop.Stock, 1)
}

func TestCoatCheckFlow(t *testing.T) {
	f := newFixture(t)
	coatCheck := placeNeighbor(t, f, "COAT CHECK", house.West)
	require.NoError(t, f.state.EnterRoom(coatCheck))
	f.state.AddItem("Shovel", "digs")

	runCycle(t, f, oracle.Action{Kind: oracle.KindStoreItem, Item: "Shovel"})
	require.False(t, f.state.HasItem("Shovel"))
	require.Equal(t, "Shovel", coatCheck.StoredItem)

	// Storing a second item is rejected while one is held.
	f.obs.ResourceReadings = append(f.obs.ResourceReadings, fullHand())
	f.orc.decisions = append(f.orc.decisions, decision{action: oracle.Action{
		Kind: oracle.KindStoreItem, Item: "Apple",
	}})
	_, err := f.cycle.Step(context.Background())
	require.ErrorIs(t, err, ErrActionPrecondition)

	runCycle(t, f, oracle.Action{Kind: oracle.KindRetrieveItem, Item: "shovel"})
	require.True(t, f.state.HasItem("Shovel"))
	require.Empty(t, coatCheck.StoredItem)
}

func TestToggleKeycardSwitchDrivesSecurityDoors(t *testing.T) {
	f := newFixture(t)
	closet := placeNeighbor(t, f, "UTILITY CLOSET", house.West)
	require.NoError(t, f.state.EnterRoom(closet))

	// The antechamber's south door is still undocumented; mark it as the
	// keycard door the switch governs.
	ante := f.state.House.FindRoom("ANTECHAMBER")
	require.NotNil(t, ante)
	south, ok := ante.DoorAt(house.South)
	require.True(t, ok)
	require.NoError(t, south.ResolveSecurity(true))

	// Keycard entry starts on; the first toggle turns it off and the
	// unopened security door locks.
	runCycle(t, f, oracle.Action{Kind: oracle.KindToggleSwitch, Switch: "keycard"})
	require.False(t, closet.Switches.KeycardEntry)
	require.Equal(t, house.Yes, south.Locked)

	runCycle(t, f, oracle.Action{Kind: oracle.KindToggleSwitch, Switch: "keycard"})
	require.True(t, closet.Switches.KeycardEntry)
	require.Equal(t, house.No, south.Locked)
}

func TestMoveCarriesPlannedAction(t *testing.T) {
	f := newFixture(t)
	den := placeNeighbor(t, f, "DEN", house.West)
	_ = den

	var seen []string
	spy := &contextSpy{inner: f.orc, planned: &seen}
	f.cycle = New(f.state, f.store, f.obs, spy, f.journal, "test")

	f.obs.ResourceReadings = []perception.Resources{fullHand(), fullHand()}
	f.orc.decisions = []decision{
		{action: oracle.Action{Kind: oracle.KindMove, TargetRoom: "DEN", Planned: "open the trunk"}},
		{action: oracle.Action{Kind: oracle.KindEndDay}},
	}

	prompt, err := f.cycle.Step(context.Background())
	require.NoError(t, err)
	require.Nil(t, prompt)
	require.Equal(t, "DEN", f.state.Current.Name)
	require.Equal(t, 49, f.state.Resources[game.Footprints])

	// The plan shows up in the next cycle's decision context.
	prompt, err = f.cycle.Step(context.Background())
	require.NoError(t, err)
	require.Nil(t, prompt)
	require.Equal(t, []string{"", "open the trunk"}, seen)
}

func TestMoveToUnknownRoomFails(t *testing.T) {
	f := newFixture(t)
	f.obs.ResourceReadings = []perception.Resources{fullHand()}
	f.orc.decisions = []decision{{action: oracle.Action{Kind: oracle.KindMove, TargetRoom: "BALLROOM"}}}

	_, err := f.cycle.Step(context.Background())
	require.ErrorIs(t, err, ErrActionPrecondition)
	require.Equal(t, "ENTRANCE HALL", f.state.Current.Name)
}

// contextSpy records the planned-action field handed to the oracle.
type contextSpy struct {
	inner   *fakeOracle
	planned *[]string
}

func (s *contextSpy) Decide(ctx context.Context, oc oracle.Context) (oracle.Action, error) {
	*s.planned = append(*s.planned, oc.Planned)
	return s.inner.Decide(ctx, oc)
}

func (s *contextSpy) ChooseDraft(ctx context.Context, oc oracle.Context, options []*house.Room) (oracle.DraftChoice, error) {
	return s.inner.ChooseDraft(ctx, oc, options)
}

func (s *contextSpy) TitleNote(ctx context.Context, content string) (string, error) {
	return s.inner.TitleNote(ctx, content)
}

func (s *contextSpy) SolveParlor(ctx context.Context, puzzle string) (string, string, error) {
	return s.inner.SolveParlor(ctx, puzzle)
}
