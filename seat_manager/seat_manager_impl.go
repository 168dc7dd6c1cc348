package seat_manager

import (
	"sync"
)

type seatManager struct {
	maxSeats     int
	seats        map[int]*SeatPlayer // key: seat_id (0 to maxSeats-1), empty seats absent
	dealerSeatID int                 // UnsetSeatID until InitDealer
	mu           sync.RWMutex
}

func (sm *seatManager) Claim(seatID int, player SeatPlayer) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if seatID < 0 || seatID >= sm.maxSeats {
		return ErrInvalidSeat
	}
	if occupant := sm.seats[seatID]; occupant != nil {
		return ErrSeatConflict
	}
	if _, seated := sm.findSeat(player.ID); seated {
		return ErrAlreadySeated
	}

	player.Seat = seatID
	sm.seats[seatID] = &player
	return nil
}

func (sm *seatManager) Vacate(seatID int, playerID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if seatID < 0 || seatID >= sm.maxSeats {
		return ErrInvalidSeat
	}
	occupant := sm.seats[seatID]
	if occupant == nil || occupant.ID != playerID {
		return ErrNotOwner
	}

	delete(sm.seats, seatID)
	return nil
}

func (sm *seatManager) GetSeatID(playerID string) (int, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	seatID, seated := sm.findSeat(playerID)
	if !seated {
		return UnsetSeatID, ErrPlayerNotFound
	}
	return seatID, nil
}

func (sm *seatManager) UpdateChips(playerID string, chips int64) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	seatID, seated := sm.findSeat(playerID)
	if !seated {
		return ErrPlayerNotFound
	}
	sm.seats[seatID].Chips = chips
	return nil
}

func (sm *seatManager) Seats() map[int]*SeatPlayer {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	seats := make(map[int]*SeatPlayer, sm.maxSeats)
	for seatID := 0; seatID < sm.maxSeats; seatID++ {
		if sp, exist := sm.seats[seatID]; exist {
			player := *sp
			seats[seatID] = &player
		} else {
			seats[seatID] = nil
		}
	}
	return seats
}

func (sm *seatManager) SeatedPlayers() []*SeatPlayer {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.seatedPlayersLocked()
}

func (sm *seatManager) SeatedCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.seats)
}

func (sm *seatManager) ActiveCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.activeCountLocked()
}

func (sm *seatManager) MaxSeats() int {
	return sm.maxSeats
}

func (sm *seatManager) InitDealer(isRandom bool) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.activeCountLocked() < 2 {
		return ErrNotEnoughActive
	}

	if isRandom {
		sm.dealerSeatID = sm.randomActiveSeatID()
	} else {
		sm.dealerSeatID = sm.firstActiveSeatID()
	}
	return nil
}

func (sm *seatManager) RotateDealer() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.activeCountLocked() < 2 {
		return ErrNotEnoughActive
	}
	if sm.dealerSeatID == UnsetSeatID {
		sm.dealerSeatID = sm.firstActiveSeatID()
		return nil
	}

	next := sm.nextActiveSeatID(sm.dealerSeatID)
	if next == UnsetSeatID {
		return ErrNotEnoughActive
	}
	sm.dealerSeatID = next
	return nil
}

func (sm *seatManager) CurrentDealerSeatID() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.dealerSeatID
}

func (sm *seatManager) State() *State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	seats := make(map[int]*SeatPlayer, len(sm.seats))
	for seatID, sp := range sm.seats {
		player := *sp
		seats[seatID] = &player
	}
	return &State{
		MaxSeats:     sm.maxSeats,
		Seats:        seats,
		DealerSeatID: sm.dealerSeatID,
	}
}
