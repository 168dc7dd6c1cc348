package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weedbox/pokerroom/card"
	"github.com/weedbox/pokerroom/pot"
)

func headsUpOptions(deck []card.Card) Options {
	return Options{
		Variant:    Variant_Holdem,
		SB:         1,
		BB:         2,
		DealerSeat: 0,
		Players: []PlayerSeed{
			{ID: "a", Name: "A", Seat: 0, Stack: 100},
			{ID: "b", Name: "B", Seat: 1, Stack: 100},
		},
		Deck: deck,
	}
}

// riggedDeck deals in the engine's order: hole cards per player in seat
// order, then board streets.
func riggedDeck(literals string) []card.Card {
	cards := card.MustParseAll(literals)
	deck := card.NewDeck()
	rest := make([]card.Card, 0, 52-len(cards))
	used := make(map[card.Card]bool)
	for _, c := range cards {
		used[c] = true
	}
	for _, c := range deck.Remaining() {
		if !used[c] {
			rest = append(rest, c)
		}
	}
	return append(cards, rest...)
}

func TestNewGame_BlindsAndTurnOrder(t *testing.T) {
	g, err := NewGame(headsUpOptions(nil))
	assert.Nil(t, err)

	s := g.State()
	assert.Equal(t, Stage_Preflop, s.Stage)
	assert.Equal(t, s.DealerIdx, s.SBIdx) // heads-up: dealer posts the small blind
	assert.Equal(t, int64(1), s.Players[s.SBIdx].Bet)
	assert.Equal(t, int64(2), s.Players[s.BBIdx].Bet)
	assert.Equal(t, int64(2), s.CurrentBet)
	assert.Equal(t, s.SBIdx, s.CurrentIdx) // dealer acts first preflop heads-up
	assert.Equal(t, int64(200), s.TotalChips())

	for _, p := range s.Players {
		assert.Len(t, p.HoleCards, 2)
	}
}

func TestNewGame_NotEnoughPlayers(t *testing.T) {
	opts := headsUpOptions(nil)
	opts.Players[1].Stack = 0
	_, err := NewGame(opts)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestHand_CheckedDownToShowdown(t *testing.T) {
	// a: AS AD (top set on the board), b: KS KD
	deck := riggedDeck("AS AD KS KD AH 7C 2D 8H 3S")
	g, err := NewGame(headsUpOptions(deck))
	assert.Nil(t, err)
	s := g.State()

	assert.Nil(t, g.Call(s.SBIdx))  // dealer completes
	assert.Nil(t, g.Check(s.BBIdx)) // option declined
	assert.Equal(t, Stage_Flop, s.Stage)
	assert.Len(t, s.Community, 3)
	assert.Equal(t, int64(4), s.Pot)

	// heads-up postflop the big blind acts first
	assert.Equal(t, s.BBIdx, s.CurrentIdx)

	for _, stage := range []Stage{Stage_Turn, Stage_River, Stage_Settled} {
		assert.Nil(t, g.Check(s.BBIdx))
		assert.Nil(t, g.Check(s.SBIdx))
		assert.Equal(t, stage, s.Stage)
	}

	assert.NotNil(t, s.Result)
	assert.False(t, s.Result.WinByFold)
	assert.Equal(t, int64(4), s.Result.Distribution["a"])
	assert.Equal(t, int64(0), s.Result.Distribution["b"])
	assert.Equal(t, int64(200), s.TotalChips())
}

func TestHand_WinByFoldResolvesImmediately(t *testing.T) {
	g, err := NewGame(headsUpOptions(nil))
	assert.Nil(t, err)
	s := g.State()

	assert.Nil(t, g.Fold(s.SBIdx))

	assert.Equal(t, Stage_Settled, s.Stage)
	assert.True(t, s.Result.WinByFold)
	assert.Equal(t, int64(3), s.Result.Pot)
	assert.Equal(t, int64(101), s.Players[s.BBIdx].Stack)
	assert.Equal(t, int64(200), s.TotalChips())
}

func TestHand_InvalidActionsDoNotMutate(t *testing.T) {
	g, err := NewGame(headsUpOptions(nil))
	assert.Nil(t, err)
	s := g.State()

	before := *s.Players[s.BBIdx]

	// not this player's turn
	assert.ErrorIs(t, g.Check(s.BBIdx), ErrNotPlayersTurn)
	// cannot check while facing the blind
	assert.ErrorIs(t, g.Check(s.SBIdx), ErrInvalidAction)
	// raise below minimum and not all-in
	assert.ErrorIs(t, g.Raise(s.SBIdx, 3), ErrInvalidWager)

	assert.Equal(t, before, *s.Players[s.BBIdx])
	assert.Equal(t, Stage_Preflop, s.Stage)
	assert.Equal(t, s.SBIdx, s.CurrentIdx)
}

func TestHand_MinRaiseTracksLastRaise(t *testing.T) {
	g, err := NewGame(Options{
		Variant:    Variant_Holdem,
		SB:         1,
		BB:         2,
		DealerSeat: 0,
		Players: []PlayerSeed{
			{ID: "a", Seat: 0, Stack: 500},
			{ID: "b", Seat: 1, Stack: 500},
			{ID: "c", Seat: 2, Stack: 500},
		},
	})
	assert.Nil(t, err)
	s := g.State()

	// utg raises to 10 (raise of 8); next min raise-to is 18
	utg := s.CurrentIdx
	assert.Nil(t, g.Raise(utg, 10))
	minBet, _ := g.Bounds(s.CurrentIdx)
	assert.Equal(t, int64(18), minBet)
	assert.ErrorIs(t, g.Raise(s.CurrentIdx, 15), ErrInvalidWager)
	assert.Nil(t, g.Raise(s.CurrentIdx, 18))
}

func TestHand_ShortAllInDoesNotReopenAction(t *testing.T) {
	g, err := NewGame(Options{
		Variant:    Variant_Holdem,
		SB:         1,
		BB:         2,
		DealerSeat: 2,
		Players: []PlayerSeed{
			{ID: "a", Seat: 0, Stack: 100},
			{ID: "b", Seat: 1, Stack: 14},
			{ID: "c", Seat: 2, Stack: 100},
		},
	})
	assert.Nil(t, err)
	s := g.State()

	// seats: dealer=2, sb=0, bb=1; utg is the dealer
	aIdx := s.PlayerIdx("a")
	bIdx := s.PlayerIdx("b")
	cIdx := s.PlayerIdx("c")

	assert.Nil(t, g.Raise(cIdx, 10))
	assert.Nil(t, g.Call(aIdx))

	// bb shoves 14: a raise of 4, below the full raise of 8
	assert.Nil(t, g.Raise(bIdx, 14))
	assert.True(t, s.Players[bIdx].AllIn)

	// action returns to c, who already acted: call or fold only
	assert.Equal(t, cIdx, s.CurrentIdx)
	assert.ErrorIs(t, g.Raise(cIdx, 30), ErrRaiseNotAllowed)
	assert.Nil(t, g.Call(cIdx))

	assert.Equal(t, aIdx, s.CurrentIdx)
	assert.ErrorIs(t, g.Raise(aIdx, 30), ErrRaiseNotAllowed)
	assert.Nil(t, g.Call(aIdx))

	assert.Equal(t, Stage_Flop, s.Stage)
}

func TestHand_BigBlindOption(t *testing.T) {
	g, err := NewGame(Options{
		Variant:    Variant_Holdem,
		SB:         1,
		BB:         2,
		DealerSeat: 0,
		Players: []PlayerSeed{
			{ID: "a", Seat: 0, Stack: 100},
			{ID: "b", Seat: 1, Stack: 100},
			{ID: "c", Seat: 2, Stack: 100},
		},
	})
	assert.Nil(t, err)
	s := g.State()

	assert.Nil(t, g.Call(s.DealerIdx)) // three-handed: the dealer opens preflop
	assert.Equal(t, Stage_Preflop, s.Stage)
	assert.Nil(t, g.Call(s.SBIdx))

	// big blind still owns the option
	assert.Equal(t, s.BBIdx, s.CurrentIdx)
	assert.Nil(t, g.Raise(s.BBIdx, 6))
	assert.Equal(t, Stage_Preflop, s.Stage)
	assert.Equal(t, s.CurrentIdx, s.PlayerIdx("a"))
}

func TestHand_TimeoutDefaults(t *testing.T) {
	g, err := NewGame(headsUpOptions(nil))
	assert.Nil(t, err)
	s := g.State()

	// facing the blind: timeout folds
	action, err := g.Timeout(s.SBIdx)
	assert.Nil(t, err)
	assert.Equal(t, "fold", action)
	assert.Equal(t, Stage_Settled, s.Stage)

	// fresh hand, completed preflop: timeout checks
	g, err = NewGame(headsUpOptions(nil))
	assert.Nil(t, err)
	s = g.State()
	assert.Nil(t, g.Call(s.SBIdx))
	action, err = g.Timeout(s.BBIdx)
	assert.Nil(t, err)
	assert.Equal(t, "check", action)
	assert.Equal(t, Stage_Flop, s.Stage)
}

func TestHand_AllInRunoutPending(t *testing.T) {
	opts := headsUpOptions(nil)
	opts.Players[0].Stack = 10
	g, err := NewGame(opts)
	assert.Nil(t, err)
	s := g.State()

	assert.Nil(t, g.Raise(s.SBIdx, 10)) // dealer shoves
	assert.Nil(t, g.Call(s.BBIdx))

	assert.True(t, s.RunoutPending)
	assert.Equal(t, int64(20), s.Pot)
	assert.True(t, g.RunItTwiceEligible())
	assert.Equal(t, 2, g.MaxRuns())
	assert.Equal(t, 5, g.RemainingBoardSize())

	// no actions accepted while the runout is pending
	assert.ErrorIs(t, g.Check(s.BBIdx), ErrInvalidAction)

	assert.Nil(t, g.Runout())
	assert.Equal(t, Stage_Settled, s.Stage)
	assert.Len(t, s.Community, 5)
	assert.Equal(t, int64(110), s.TotalChips())

	var distributed int64
	for _, amount := range s.Result.Distribution {
		distributed += amount
	}
	assert.Equal(t, int64(20), distributed)
}

func TestHand_ChipConservationAcrossRandomHand(t *testing.T) {
	g, err := NewGame(headsUpOptions(nil))
	assert.Nil(t, err)
	s := g.State()

	assert.Equal(t, int64(200), s.TotalChips())
	assert.Nil(t, g.Call(s.SBIdx))
	assert.Equal(t, int64(200), s.TotalChips())
	assert.Nil(t, g.Raise(s.BBIdx, 8))
	assert.Equal(t, int64(200), s.TotalChips())
	assert.Nil(t, g.Call(s.SBIdx))

	for s.Stage != Stage_Settled {
		idx := s.CurrentIdx
		assert.GreaterOrEqual(t, idx, 0)
		assert.Nil(t, g.Check(idx))
		assert.Equal(t, int64(200), s.TotalChips())
	}
}

func TestHand_NoDuplicateCardsDealt(t *testing.T) {
	g, err := NewGame(Options{
		Variant:    Variant_Omaha,
		Mode:       pot.Mode_PotLimit,
		SB:         1,
		BB:         2,
		DealerSeat: 0,
		Players: []PlayerSeed{
			{ID: "a", Seat: 0, Stack: 100},
			{ID: "b", Seat: 1, Stack: 100},
			{ID: "c", Seat: 3, Stack: 100},
		},
	})
	assert.Nil(t, err)
	s := g.State()

	seen := make(map[card.Card]bool)
	record := func(cards []card.Card) {
		for _, c := range cards {
			assert.False(t, seen[c], "duplicate card %s", c)
			seen[c] = true
		}
	}
	for _, p := range s.Players {
		assert.Len(t, p.HoleCards, 4)
		record(p.HoleCards)
	}
	record(s.Community)
	record(s.Deck)
	assert.Equal(t, 52, len(seen))
}

func TestHand_PotLimitBoundsEnforced(t *testing.T) {
	g, err := NewGame(Options{
		Variant:    Variant_Omaha,
		Mode:       pot.Mode_PotLimit,
		SB:         1,
		BB:         2,
		DealerSeat: 0,
		Players: []PlayerSeed{
			{ID: "a", Seat: 0, Stack: 500},
			{ID: "b", Seat: 1, Stack: 500},
		},
	})
	assert.Nil(t, err)
	s := g.State()

	// dealer may pot to 2 + (1 + 2 + 1) = 6
	minBet, maxBet := g.Bounds(s.CurrentIdx)
	assert.Equal(t, int64(4), minBet)
	assert.Equal(t, int64(6), maxBet)

	assert.ErrorIs(t, g.Raise(s.CurrentIdx, 7), ErrInvalidWager)
	assert.Nil(t, g.Raise(s.CurrentIdx, 6))
}
