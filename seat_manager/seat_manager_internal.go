package seat_manager

import (
	"math/rand"
	"sort"
	"time"
)

func (sm *seatManager) findSeat(playerID string) (int, bool) {
	for seatID, sp := range sm.seats {
		if sp != nil && sp.ID == playerID {
			return seatID, true
		}
	}
	return UnsetSeatID, false
}

func (sm *seatManager) seatedPlayersLocked() []*SeatPlayer {
	seatIDs := make([]int, 0, len(sm.seats))
	for seatID := range sm.seats {
		seatIDs = append(seatIDs, seatID)
	}
	sort.Ints(seatIDs)

	players := make([]*SeatPlayer, 0, len(seatIDs))
	for _, seatID := range seatIDs {
		player := *sm.seats[seatID]
		players = append(players, &player)
	}
	return players
}

func (sm *seatManager) activeCountLocked() int {
	count := 0
	for _, sp := range sm.seats {
		if sp != nil && sp.Active() {
			count++
		}
	}
	return count
}

func (sm *seatManager) activeSeatIDs() []int {
	seatIDs := make([]int, 0, len(sm.seats))
	for seatID, sp := range sm.seats {
		if sp != nil && sp.Active() {
			seatIDs = append(seatIDs, seatID)
		}
	}
	sort.Ints(seatIDs)
	return seatIDs
}

func (sm *seatManager) firstActiveSeatID() int {
	seatIDs := sm.activeSeatIDs()
	if len(seatIDs) == 0 {
		return UnsetSeatID
	}
	return seatIDs[0]
}

func (sm *seatManager) randomActiveSeatID() int {
	seatIDs := sm.activeSeatIDs()
	if len(seatIDs) == 0 {
		return UnsetSeatID
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return seatIDs[r.Intn(len(seatIDs))]
}

// nextActiveSeatID scans clockwise from startSeatID for the next seat whose
// occupant still has chips.
func (sm *seatManager) nextActiveSeatID(startSeatID int) int {
	for i := 1; i <= sm.maxSeats; i++ {
		seatID := (startSeatID + i) % sm.maxSeats
		if sp, exist := sm.seats[seatID]; exist && sp != nil && sp.Active() {
			return seatID
		}
	}
	return UnsetSeatID
}
