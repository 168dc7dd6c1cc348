package pokerroom

import (
	"time"

	"github.com/google/uuid"
	"github.com/weedbox/pokerroom/game"
	"github.com/weedbox/pokerroom/rit"
	"github.com/weedbox/syncsaga"
	"go.uber.org/zap"
)

// openHand starts the next hand, or pauses for the dealer's variant pick.
// Caller holds the lock.
func (te *tableEngine) openHand() error {
	if te.table.State.GameCount > 0 {
		if err := te.sm.RotateDealer(); err != nil {
			return err
		}
	}

	if te.table.Meta.DealerChoice && te.pendingVariant == "" {
		te.table.State.Status = TableStateStatus_AwaitingDealerChoice
		te.emitEvent(TableEvent_StatusUpdated, "")
		te.scheduleDealerChoiceTimeout()
		return nil
	}
	return te.dealHand()
}

// dealHand creates the hand's game and deals it. Caller holds the lock.
func (te *tableEngine) dealHand() error {
	variant := te.pendingVariant
	if variant == "" {
		variant = te.table.Meta.Variant
	}
	te.pendingVariant = ""

	players := make([]game.PlayerSeed, 0)
	for _, sp := range te.sm.SeatedPlayers() {
		if !sp.Active() {
			continue
		}
		players = append(players, game.PlayerSeed{
			ID:    sp.ID,
			Name:  sp.Name,
			Seat:  sp.Seat,
			Stack: sp.Chips,
		})
	}

	g, err := game.NewGame(game.Options{
		HandID:     uuid.New().String(),
		Variant:    variant,
		Mode:       te.table.Meta.Mode,
		SB:         te.table.Meta.SB,
		BB:         te.table.Meta.BB,
		Ante:       te.table.Meta.Ante,
		BringIn:    te.table.Meta.BringIn,
		DealerSeat: te.sm.CurrentDealerSeatID(),
		Players:    players,
	})
	if err != nil {
		return err
	}

	te.game = g
	te.table.State.GameCount++
	te.table.State.Variant = variant
	te.table.State.GameState = g.State()
	te.table.State.RunItTwice = nil
	te.table.State.LastAction = nil
	te.table.State.Status = TableStateStatus_TableGamePlaying

	te.emitEvent(TableEvent_GameStarted, "")

	// forced bets can put everyone all-in before anyone acts
	return te.afterTransition()
}

func (te *tableEngine) playerAction(playerID, action string, amount int64) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.table.State.Status != TableStateStatus_TableGamePlaying {
		return ErrTableGameNotPlaying
	}

	gs := te.game.State()
	idx := gs.PlayerIdx(playerID)
	if idx < 0 {
		return ErrTablePlayerNotFound
	}

	var err error
	switch action {
	case PlayerAction_Fold:
		err = te.game.Fold(idx)
	case PlayerAction_Check:
		err = te.game.Check(idx)
	case PlayerAction_Call:
		err = te.game.Call(idx)
	case PlayerAction_Bet:
		err = te.game.Bet(idx, amount)
	case PlayerAction_Raise:
		err = te.game.Raise(idx, amount)
	default:
		err = ErrTablePlayerInvalidAction
	}
	if err != nil {
		te.emitErrorEvent(action, playerID, err)
		return err
	}

	te.cancelTurnClock()
	te.table.State.LastAction = &TablePlayerGameAction{
		PlayerID: playerID,
		Action:   action,
		Amount:   amount,
	}
	return te.afterTransition()
}

// afterTransition routes the hand out of a committed game transition.
// Caller holds the lock.
func (te *tableEngine) afterTransition() error {
	gs := te.game.State()

	if gs.Stage == game.Stage_Settled {
		te.settleHand()
		return nil
	}
	if gs.RunoutPending {
		return te.handleRunoutPending()
	}

	te.scheduleTurnClock()
	te.emitEvent(TableEvent_GameStateUpdate, "")
	return nil
}

// handleRunoutPending either opens a run-it-twice prompt or runs the board
// out immediately. Caller holds the lock.
func (te *tableEngine) handleRunoutPending() error {
	if !te.table.Meta.RunItTwice || !te.game.RunItTwiceEligible() {
		return te.runoutSingle()
	}

	te.table.State.Status = TableStateStatus_TableGameRunoutPending
	te.table.State.RunItTwice = &RunItTwiceState{
		PromptOpen: true,
		Choices:    make(map[string]int),
	}

	gs := te.game.State()
	te.rg.Stop()
	te.rg.SetTimeoutInterval(te.table.Meta.RITPromptTime)
	te.rg.OnTimeout(func(rg *syncsaga.ReadyGroup) {
		// non-responders default to a single run
		for idx, isReady := range rg.GetParticipantStates() {
			if !isReady {
				rg.Ready(idx)
			}
		}
	})
	te.rg.OnCompleted(func(rg *syncsaga.ReadyGroup) {
		te.resolveRunout()
	})
	te.rg.ResetParticipants()
	for idx, p := range gs.Players {
		if !p.Folded {
			te.rg.Add(int64(idx), false)
		}
	}
	te.rg.Start()

	te.emitEvent(TableEvent_RITPrompt, "")
	return nil
}

// resolveRunout finishes an all-in hand after the prompt closes. It acquires
// the lock itself; callers must not hold it.
func (te *tableEngine) resolveRunout() {
	te.lock.Lock()
	defer te.lock.Unlock()

	ritState := te.table.State.RunItTwice
	if te.table.State.Status != TableStateStatus_TableGameRunoutPending ||
		ritState == nil || !ritState.PromptOpen {
		return
	}
	ritState.PromptOpen = false

	// the table runs as many boards as every contender accepts
	runs := te.game.MaxRuns()
	for _, p := range te.game.State().Players {
		if p.Folded {
			continue
		}
		choice, answered := ritState.Choices[p.ID]
		if !answered {
			choice = 1
		}
		if choice < runs {
			runs = choice
		}
	}
	ritState.Runs = runs

	if runs < 2 {
		if err := te.runoutSingle(); err != nil {
			te.emitErrorEvent("runout", "", err)
		}
		return
	}

	if err := te.runItTwice(runs); err != nil {
		// a broken randomness record never corrupts the pot: fall back to
		// the standard single-board runout
		te.logger.Error("run it twice failed, falling back to single board",
			zap.String("table_id", te.table.ID),
			zap.Error(err))
		ritState.Runs = 1
		ritState.Record = nil
		if err := te.runoutSingle(); err != nil {
			te.emitErrorEvent("runout", "", err)
		}
	}
}

// runItTwice deals and verifies the multi-run boards, then settles.
// Caller holds the lock.
func (te *tableEngine) runItTwice(runs int) error {
	dealer := rit.NewDealer()
	commitment, err := dealer.Commit()
	if err != nil {
		return err
	}

	undealt := te.game.UndealtCards()
	boardSize := te.game.RemainingBoardSize()
	record, err := dealer.Deal(commitment, te.table.State.RunItTwice.Entropy, undealt, boardSize, runs)
	if err != nil {
		return err
	}
	if err := rit.Verify(record, undealt, boardSize); err != nil {
		return err
	}
	if err := te.game.ApplyRunItTwice(record); err != nil {
		return err
	}

	te.table.State.RunItTwice.Record = record
	te.emitEvent(TableEvent_RITEnabled, "")
	te.settleHand()
	return nil
}

// runoutSingle deals the remaining board once and settles. Caller holds the
// lock.
func (te *tableEngine) runoutSingle() error {
	if err := te.game.Runout(); err != nil {
		return err
	}
	te.settleHand()
	return nil
}

// settleHand commits the hand result back into the seats and schedules the
// next hand. Caller holds the lock.
func (te *tableEngine) settleHand() {
	te.cancelTurnClock()
	te.table.State.Status = TableStateStatus_TableGameSettled

	for _, p := range te.game.State().Players {
		chips := p.Stack
		if pending, exist := te.pendingRedeems[p.ID]; exist {
			chips += pending
			delete(te.pendingRedeems, p.ID)
		}
		if err := te.sm.UpdateChips(p.ID, chips); err != nil {
			// player stood up mid-hand after folding; their stack was cashed
			// out at stand-up
			te.logger.Warn("settle skipped missing player",
				zap.String("table_id", te.table.ID),
				zap.String("player_id", p.ID))
		}
	}

	te.emitEvent(TableEvent_GameSettled, "")

	if te.table.Meta.AutoNextHand && te.sm.ActiveCount() >= te.table.Meta.MinPlayers {
		interval := time.Duration(te.table.Meta.NextHandInterval) * time.Second
		if err := te.scheduleTB.NewTask(interval, func(isCancelled bool) {
			if isCancelled {
				return
			}
			if err := te.RequestNextHand(); err != nil {
				te.logger.Info("auto next hand skipped",
					zap.String("table_id", te.table.ID),
					zap.Error(err))
			}
		}); err != nil {
			te.logger.Error("next hand scheduling failed",
				zap.String("table_id", te.table.ID),
				zap.Error(err))
		}
	}
}

// scheduleTurnClock arms the acting player's clock. Caller holds the lock.
func (te *tableEngine) scheduleTurnClock() {
	gs := te.game.State()
	if gs.CurrentIdx < 0 {
		return
	}

	te.turnSerial++
	serial := te.turnSerial
	playerID := gs.Players[gs.CurrentIdx].ID
	seconds := te.table.Meta.ActionTime
	te.table.State.TurnDeadline = time.Now().Unix() + int64(seconds)

	if err := te.tb.NewTask(time.Duration(seconds)*time.Second, func(isCancelled bool) {
		if isCancelled {
			return
		}
		te.handleTurnTimeout(serial, playerID)
	}); err != nil {
		te.logger.Error("turn clock scheduling failed",
			zap.String("table_id", te.table.ID),
			zap.Error(err))
	}
}

func (te *tableEngine) cancelTurnClock() {
	te.tb.Cancel()
	te.table.State.TurnDeadline = 0
}

// handleTurnTimeout fires from the clock goroutine. It burns the player's
// time bank once, then applies the default action through the same path a
// live command would take.
func (te *tableEngine) handleTurnTimeout(serial int64, playerID string) {
	te.lock.Lock()
	defer te.lock.Unlock()

	// the clock was rearmed or the player acted while this firing was in flight
	if serial != te.turnSerial || te.table.State.Status != TableStateStatus_TableGamePlaying {
		return
	}

	if extra := te.table.State.TimeBanks[playerID]; extra > 0 {
		te.table.State.TimeBanks[playerID] = 0
		te.turnSerial++
		rearmed := te.turnSerial
		te.table.State.TurnDeadline = time.Now().Unix() + int64(extra)
		if err := te.tb.NewTask(time.Duration(extra)*time.Second, func(isCancelled bool) {
			if isCancelled {
				return
			}
			te.handleTurnTimeout(rearmed, playerID)
		}); err != nil {
			te.logger.Error("time bank scheduling failed",
				zap.String("table_id", te.table.ID),
				zap.Error(err))
		}
		te.emitEvent(TableEvent_GameStateUpdate, playerID)
		return
	}

	gs := te.game.State()
	idx := gs.PlayerIdx(playerID)
	if idx < 0 || idx != gs.CurrentIdx {
		return
	}

	action, err := te.game.Timeout(idx)
	if err != nil {
		te.emitErrorEvent("timeout", playerID, err)
		return
	}

	te.cancelTurnClock()
	te.table.State.LastAction = &TablePlayerGameAction{
		PlayerID: playerID,
		Action:   action,
	}
	if err := te.afterTransition(); err != nil {
		te.emitErrorEvent("timeout", playerID, err)
	}
}

// scheduleDealerChoiceTimeout falls back to the table's configured variant
// when the dealer does not pick in time. Caller holds the lock.
func (te *tableEngine) scheduleDealerChoiceTimeout() {
	seconds := time.Duration(te.table.Meta.ActionTime) * time.Second
	if err := te.scheduleTB.NewTask(seconds, func(isCancelled bool) {
		if isCancelled {
			return
		}

		te.lock.Lock()
		defer te.lock.Unlock()
		if te.table.State.Status != TableStateStatus_AwaitingDealerChoice {
			return
		}
		te.pendingVariant = te.table.Meta.Variant
		if err := te.dealHand(); err != nil {
			te.emitErrorEvent(string(CommandAction_SelectVariant), "", err)
		}
	}); err != nil {
		te.logger.Error("dealer choice scheduling failed",
			zap.String("table_id", te.table.ID),
			zap.Error(err))
	}
}
