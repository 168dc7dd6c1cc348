package pokerroom

import (
	"sync"

	"github.com/weedbox/pokerroom/game"
)

type CommandAction string

const (
	CommandAction_ClaimSeat        CommandAction = "claim_seat"
	CommandAction_StandUp          CommandAction = "stand_up"
	CommandAction_RedeemChips      CommandAction = "redeem_chips"
	CommandAction_StartGame        CommandAction = "start_game"
	CommandAction_SelectVariant    CommandAction = "select_variant"
	CommandAction_PlayerAction     CommandAction = "player_action"
	CommandAction_EnableRunItTwice CommandAction = "enable_run_it_twice"
	CommandAction_RequestNextHand  CommandAction = "request_next_hand"
)

const (
	PlayerAction_Fold  = "fold"
	PlayerAction_Check = "check"
	PlayerAction_Call  = "call"
	PlayerAction_Bet   = "bet"
	PlayerAction_Raise = "raise"
)

// Command is the transport-facing envelope. RequestID makes redelivery after
// a crash or retry a no-op.
type Command struct {
	RequestID  string        `json:"request_id,omitempty"`
	Action     CommandAction `json:"action"`
	PlayerID   string        `json:"player_id,omitempty"`
	PlayerName string        `json:"player_name,omitempty"`
	Seat       int           `json:"seat,omitempty"`
	Chips      int64         `json:"chips,omitempty"`
	GameAction string        `json:"game_action,omitempty"` // fold|check|call|bet|raise
	Amount     int64         `json:"amount,omitempty"`
	Runs       int           `json:"runs,omitempty"`
	Entropy    []byte        `json:"entropy,omitempty"` // run-it-twice player contribution
	Variant    game.Variant  `json:"variant,omitempty"`
}

// requestJournal remembers recently applied request ids so duplicate delivery
// is acknowledged without re-applying.
type requestJournal struct {
	mu      sync.Mutex
	applied map[string]error
	order   []string
	limit   int
}

func newRequestJournal(limit int) *requestJournal {
	return &requestJournal{
		applied: make(map[string]error),
		limit:   limit,
	}
}

// lookup returns the recorded outcome for a request id.
func (rj *requestJournal) lookup(requestID string) (error, bool) {
	rj.mu.Lock()
	defer rj.mu.Unlock()

	result, seen := rj.applied[requestID]
	return result, seen
}

// ids lists the remembered request ids, oldest first, for snapshotting.
func (rj *requestJournal) ids() []string {
	rj.mu.Lock()
	defer rj.mu.Unlock()

	out := make([]string, len(rj.order))
	copy(out, rj.order)
	return out
}

// seed marks restored request ids as applied; replays of them are no-ops.
func (rj *requestJournal) seed(requestIDs []string) {
	for _, id := range requestIDs {
		rj.record(id, nil)
	}
}

func (rj *requestJournal) record(requestID string, result error) {
	rj.mu.Lock()
	defer rj.mu.Unlock()

	if _, seen := rj.applied[requestID]; seen {
		return
	}
	rj.applied[requestID] = result
	rj.order = append(rj.order, requestID)
	for len(rj.order) > rj.limit {
		delete(rj.applied, rj.order[0])
		rj.order = rj.order[1:]
	}
}
