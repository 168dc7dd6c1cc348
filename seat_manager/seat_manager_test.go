package seat_manager

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatManager_ClaimAndVacate(t *testing.T) {
	sm := NewSeatManager(9)

	assert.Nil(t, sm.Claim(3, SeatPlayer{ID: "p1", Name: "Alice", Chips: 1000}))

	seatID, err := sm.GetSeatID("p1")
	assert.Nil(t, err)
	assert.Equal(t, 3, seatID)

	// taken seat
	assert.ErrorIs(t, sm.Claim(3, SeatPlayer{ID: "p2", Chips: 1000}), ErrSeatConflict)
	// same player, second seat
	assert.ErrorIs(t, sm.Claim(4, SeatPlayer{ID: "p1", Chips: 1000}), ErrAlreadySeated)
	// out of range
	assert.ErrorIs(t, sm.Claim(9, SeatPlayer{ID: "p3", Chips: 1000}), ErrInvalidSeat)
	assert.ErrorIs(t, sm.Claim(-1, SeatPlayer{ID: "p3", Chips: 1000}), ErrInvalidSeat)

	// only the owner may vacate
	assert.ErrorIs(t, sm.Vacate(3, "p2"), ErrNotOwner)
	assert.ErrorIs(t, sm.Vacate(4, "p1"), ErrNotOwner)
	assert.Nil(t, sm.Vacate(3, "p1"))

	_, err = sm.GetSeatID("p1")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	// seat is claimable again
	assert.Nil(t, sm.Claim(3, SeatPlayer{ID: "p2", Chips: 500}))
}

func TestSeatManager_ConcurrentClaimsOneWinner(t *testing.T) {
	sm := NewSeatManager(9)

	const contenders = 32
	var wg sync.WaitGroup
	results := make([]error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = sm.Claim(5, SeatPlayer{ID: string(rune('a' + n)), Chips: 100})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSeatConflict)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, sm.SeatedCount())
}

func TestSeatManager_SeatedPlayersOrderedBySeat(t *testing.T) {
	sm := NewSeatManager(9)
	assert.Nil(t, sm.Claim(7, SeatPlayer{ID: "c", Chips: 100}))
	assert.Nil(t, sm.Claim(0, SeatPlayer{ID: "a", Chips: 100}))
	assert.Nil(t, sm.Claim(4, SeatPlayer{ID: "b", Chips: 100}))

	players := sm.SeatedPlayers()
	assert.Len(t, players, 3)
	assert.Equal(t, "a", players[0].ID)
	assert.Equal(t, "b", players[1].ID)
	assert.Equal(t, "c", players[2].ID)
	assert.Equal(t, 4, players[1].Seat)
}

func TestSeatManager_DealerRotationSkipsBrokePlayers(t *testing.T) {
	sm := NewSeatManager(9)
	assert.Nil(t, sm.Claim(0, SeatPlayer{ID: "a", Chips: 100}))
	assert.Nil(t, sm.Claim(1, SeatPlayer{ID: "b", Chips: 100}))
	assert.Nil(t, sm.Claim(2, SeatPlayer{ID: "c", Chips: 100}))

	assert.Nil(t, sm.InitDealer(false))
	assert.Equal(t, 0, sm.CurrentDealerSeatID())

	assert.Nil(t, sm.RotateDealer())
	assert.Equal(t, 1, sm.CurrentDealerSeatID())

	// b busts; rotation skips seat 1 next time around
	assert.Nil(t, sm.UpdateChips("b", 0))
	assert.Nil(t, sm.RotateDealer())
	assert.Equal(t, 2, sm.CurrentDealerSeatID())
	assert.Nil(t, sm.RotateDealer())
	assert.Equal(t, 0, sm.CurrentDealerSeatID())
}

func TestSeatManager_InitDealerNeedsTwoActive(t *testing.T) {
	sm := NewSeatManager(9)
	assert.Nil(t, sm.Claim(0, SeatPlayer{ID: "a", Chips: 100}))
	assert.ErrorIs(t, sm.InitDealer(false), ErrNotEnoughActive)

	assert.Nil(t, sm.Claim(1, SeatPlayer{ID: "b", Chips: 0}))
	assert.ErrorIs(t, sm.InitDealer(false), ErrNotEnoughActive)

	assert.Nil(t, sm.UpdateChips("b", 50))
	assert.Nil(t, sm.InitDealer(false))
}

func TestSeatManager_StateRoundTrip(t *testing.T) {
	sm := NewSeatManager(6)
	assert.Nil(t, sm.Claim(2, SeatPlayer{ID: "a", Name: "Alice", Chips: 100}))
	assert.Nil(t, sm.Claim(5, SeatPlayer{ID: "b", Name: "Bob", Chips: 200}))
	assert.Nil(t, sm.InitDealer(false))

	restored := NewSeatManagerFromState(sm.State())
	assert.Equal(t, sm.CurrentDealerSeatID(), restored.CurrentDealerSeatID())
	assert.Equal(t, 6, restored.MaxSeats())

	seatID, err := restored.GetSeatID("b")
	assert.Nil(t, err)
	assert.Equal(t, 5, seatID)

	// restored copy is independent of the source
	assert.Nil(t, restored.Vacate(2, "a"))
	_, err = sm.GetSeatID("a")
	assert.Nil(t, err)
}
