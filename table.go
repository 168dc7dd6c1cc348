package pokerroom

import (
	"encoding/json"
	"time"

	"github.com/weedbox/pokerroom/game"
	"github.com/weedbox/pokerroom/rit"
	"github.com/weedbox/pokerroom/seat_manager"
)

type TableStateStatus string

const (
	TableStateStatus_TableCreated TableStateStatus = "table_created" // seats open, no hand yet
	TableStateStatus_TableClosed  TableStateStatus = "table_closed"

	TableStateStatus_AwaitingDealerChoice   TableStateStatus = "awaiting_dealer_choice"
	TableStateStatus_TableGamePlaying       TableStateStatus = "table_game_playing"
	TableStateStatus_TableGameRunoutPending TableStateStatus = "table_game_runout_pending" // all-in, board incomplete
	TableStateStatus_TableGameSettled       TableStateStatus = "table_game_settled"
)

const UnsetValue = -1

type Table struct {
	ID           string       `json:"id"`
	Meta         TableSetting `json:"meta"`
	State        *TableState  `json:"state"`
	UpdateAt     int64        `json:"update_at"`     // seconds
	UpdateSerial int64        `json:"update_serial"` // per-table monotonic sequence
}

// TableState is everything that changes over the table's lifetime. GameState
// and RunItTwice carry private material; sanitize before publishing.
type TableState struct {
	Status       TableStateStatus       `json:"status"`
	StartAt      int64                  `json:"start_at"`
	GameCount    int                    `json:"game_count"`
	Variant      game.Variant           `json:"variant"` // the running hand's variant
	SeatState    *seat_manager.State    `json:"seat_state"`
	GameState    *game.State            `json:"game_state,omitempty"`
	RunItTwice   *RunItTwiceState       `json:"run_it_twice,omitempty"`
	LastAction   *TablePlayerGameAction `json:"last_action,omitempty"`
	TimeBanks    map[string]int         `json:"time_banks,omitempty"`    // remaining extra seconds per player
	TurnDeadline int64                  `json:"turn_deadline,omitempty"` // unix seconds, 0 when no clock runs
}

// RunItTwiceState tracks an open multi-run prompt and its resolution.
type RunItTwiceState struct {
	PromptOpen bool           `json:"prompt_open"`
	Choices    map[string]int `json:"choices,omitempty"` // playerID -> requested runs
	Entropy    []byte         `json:"entropy,omitempty"` // accumulated player contributions
	Runs       int            `json:"runs,omitempty"`
	Record     *rit.Record    `json:"record,omitempty"`
}

// TablePlayerGameAction is the most recent accepted command, echoed in
// game_state_update events.
type TablePlayerGameAction struct {
	PlayerID string `json:"player_id"`
	Action   string `json:"action"`
	Amount   int64  `json:"amount,omitempty"`
}

func (t *Table) RefreshUpdateAt() {
	t.UpdateAt = time.Now().Unix()
	t.UpdateSerial++
}

func (t *Table) GetJSON() (string, error) {
	encoded, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Clone deep-copies the table through its JSON form.
func (t *Table) Clone() (*Table, error) {
	encoded, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	cloned := &Table{}
	if err := json.Unmarshal(encoded, cloned); err != nil {
		return nil, err
	}
	return cloned, nil
}

// HandInProgress reports whether a hand is being played or run out.
func (t *Table) HandInProgress() bool {
	switch t.State.Status {
	case TableStateStatus_TableGamePlaying, TableStateStatus_TableGameRunoutPending:
		return true
	}
	return false
}
