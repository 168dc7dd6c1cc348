package pokerroom

import (
	"go.uber.org/zap"
)

const (
	TableEvent_SeatClaimed     = "seat_claimed"
	TableEvent_SeatVacated     = "seat_vacated"
	TableEvent_SeatState       = "seat_state"
	TableEvent_GameStarted     = "game_started"
	TableEvent_GameStateUpdate = "game_state_update"
	TableEvent_ActionFailed    = "action_failed"
	TableEvent_RITPrompt       = "rit_prompt"
	TableEvent_RITEnabled      = "rit_enabled"
	TableEvent_GameSettled     = "game_settled"
	TableEvent_StatusUpdated   = "status_updated"
)

// Event is the outbound envelope handed to the transport collaborator. Table
// is the broadcast-sanitized view; Seq orders events per table.
type Event struct {
	Name       string                 `json:"name"`
	TableID    string                 `json:"table_id"`
	Seq        int64                  `json:"seq"`
	PlayerID   string                 `json:"player_id,omitempty"`
	Action     string                 `json:"action,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Runs       int                    `json:"runs,omitempty"`
	Chips      int64                  `json:"chips,omitempty"` // cash-out on seat_vacated
	LastAction *TablePlayerGameAction `json:"last_action,omitempty"`
	Table      *Table                 `json:"table,omitempty"`
}

// emitEvent commits the transition: bump the serial, snapshot, then publish
// the sanitized view. Publishing is fire-and-forget; a broken listener never
// fails the command path.
func (te *tableEngine) emitEvent(name string, playerID string) {
	te.emitPlayerEvent(name, playerID, 0)
}

// emitPlayerEvent is emitEvent with a chip amount attached to the envelope.
func (te *tableEngine) emitPlayerEvent(name string, playerID string, chips int64) {
	te.table.RefreshUpdateAt()
	te.table.State.SeatState = te.sm.State()

	te.persist()

	sanitized, err := ForBroadcast(te.table)
	if err != nil {
		te.logger.Error("sanitize for broadcast failed",
			zap.String("table_id", te.table.ID),
			zap.Error(err))
		return
	}

	event := &Event{
		Name:       name,
		TableID:    te.table.ID,
		Seq:        te.table.UpdateSerial,
		PlayerID:   playerID,
		Chips:      chips,
		LastAction: te.table.State.LastAction,
		Table:      sanitized,
	}

	te.logger.Debug("emit event",
		zap.String("table_id", te.table.ID),
		zap.String("event", name),
		zap.Int64("seq", event.Seq),
		zap.String("player_id", playerID))

	te.onTableUpdated(te.table)
	te.onEventEmitted(event)
}

// emitErrorEvent reports a rejected command; state is unchanged so there is
// no serial bump and no snapshot.
func (te *tableEngine) emitErrorEvent(action string, playerID string, err error) {
	te.logger.Info("command rejected",
		zap.String("table_id", te.table.ID),
		zap.String("action", action),
		zap.String("player_id", playerID),
		zap.Error(err))

	te.onTableErrorUpdated(te.table, err)
	te.onEventEmitted(&Event{
		Name:     TableEvent_ActionFailed,
		TableID:  te.table.ID,
		Seq:      te.table.UpdateSerial,
		PlayerID: playerID,
		Action:   action,
		Error:    err.Error(),
	})
}
