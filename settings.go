package pokerroom

import (
	"github.com/weedbox/pokerroom/game"
	"github.com/weedbox/pokerroom/pot"
)

// TableSetting is the configuration a table is created with.
type TableSetting struct {
	TableID      string       `json:"table_id"` // generated when empty
	Name         string       `json:"name"`
	MaxSeats     int          `json:"max_seats"`
	MinPlayers   int          `json:"min_players"`
	Variant      game.Variant `json:"variant"`
	DealerChoice bool         `json:"dealer_choice"` // dealer picks the variant each hand
	Mode         pot.Mode     `json:"mode"`
	SB           int64        `json:"sb"`
	BB           int64        `json:"bb"`
	Ante         int64        `json:"ante"`
	BringIn      int64        `json:"bring_in"`

	ActionTime       int  `json:"action_time"`        // turn clock (seconds)
	TimeBank         int  `json:"time_bank"`          // extra seconds per player per hand
	RunItTwice       bool `json:"run_it_twice"`       // offer multi-run showdowns
	RITPromptTime    int  `json:"rit_prompt_time"`    // seconds to answer the prompt
	AutoNextHand     bool `json:"auto_next_hand"`     // open the next hand automatically
	NextHandInterval int  `json:"next_hand_interval"` // seconds between hands
}

func (ts *TableSetting) applyDefaults() {
	if ts.MaxSeats <= 0 {
		ts.MaxSeats = 9
	}
	if ts.MinPlayers < 2 {
		ts.MinPlayers = 2
	}
	if ts.Variant == "" {
		ts.Variant = game.Variant_Holdem
	}
	if ts.Mode == "" {
		ts.Mode = pot.Mode_NoLimit
	}
	if ts.ActionTime <= 0 {
		ts.ActionTime = 15
	}
	if ts.RITPromptTime <= 0 {
		ts.RITPromptTime = 10
	}
	if ts.NextHandInterval <= 0 {
		ts.NextHandInterval = 3
	}
}
