package seat_manager

import (
	"errors"
)

var (
	ErrInvalidSeat     = errors.New("seat manager: invalid seat id")
	ErrSeatConflict    = errors.New("seat manager: seat is already taken")
	ErrAlreadySeated   = errors.New("seat manager: player already holds a seat")
	ErrNotOwner        = errors.New("seat manager: player does not hold this seat")
	ErrPlayerNotFound  = errors.New("seat manager: player not found")
	ErrNotEnoughSeats  = errors.New("seat manager: no enough seats")
	ErrNotEnoughActive = errors.New("seat manager: not enough players with chips")
)

const UnsetSeatID = -1

// SeatManager owns the seat map of one table. Claim and Vacate are atomic
// check-and-set operations: when two claims race for the same seat exactly
// one succeeds.
type SeatManager interface {
	Claim(seatID int, player SeatPlayer) error
	Vacate(seatID int, playerID string) error
	GetSeatID(playerID string) (int, error)
	UpdateChips(playerID string, chips int64) error

	Seats() map[int]*SeatPlayer
	SeatedPlayers() []*SeatPlayer
	SeatedCount() int
	ActiveCount() int
	MaxSeats() int

	InitDealer(isRandom bool) error
	RotateDealer() error
	CurrentDealerSeatID() int

	State() *State
}

// SeatPlayer is one seat occupant.
type SeatPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Seat  int    `json:"seat"`
	Chips int64  `json:"chips"`
}

// Active seats take part in the next hand.
func (sp *SeatPlayer) Active() bool {
	return sp.Chips > 0
}

// State is the serializable form of a seat manager, used for snapshots.
type State struct {
	MaxSeats     int                 `json:"max_seats"`
	Seats        map[int]*SeatPlayer `json:"seats"`
	DealerSeatID int                 `json:"dealer_seat_id"`
}

func NewSeatManager(maxSeats int) SeatManager {
	return &seatManager{
		maxSeats:     maxSeats,
		seats:        make(map[int]*SeatPlayer),
		dealerSeatID: UnsetSeatID,
	}
}

func NewSeatManagerFromState(state *State) SeatManager {
	seats := make(map[int]*SeatPlayer)
	for seatID, sp := range state.Seats {
		if sp != nil {
			player := *sp
			seats[seatID] = &player
		}
	}
	return &seatManager{
		maxSeats:     state.MaxSeats,
		seats:        seats,
		dealerSeatID: state.DealerSeatID,
	}
}
