package pokerroom

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"
	"github.com/weedbox/pokerroom/game"
	"github.com/weedbox/pokerroom/seat_manager"
	"github.com/weedbox/syncsaga"
	"github.com/weedbox/timebank"
	"go.uber.org/zap"
)

var (
	ErrTableInvalidCreateSetting = errors.New("table: invalid create table setting")
	ErrTableClosed               = errors.New("table: table is closed")
	ErrTableNotEnoughPlayers     = errors.New("table: not enough players to start")
	ErrTablePlayerNotFound       = errors.New("table: player not found")
	ErrTablePlayerInvalidAction  = errors.New("table: player invalid action")
	ErrTableGameNotPlaying       = errors.New("table: no hand in progress")
	ErrTableGameAlreadyPlaying   = errors.New("table: hand already in progress")
	ErrTableNotDealer            = errors.New("table: only the dealer may choose")
	ErrTableVariantNotSupported  = errors.New("table: variant not supported")
	ErrTableRITNotAvailable      = errors.New("table: run it twice not available")
)

type TableEngineOpt func(*tableEngine)

// TableEngine owns one table: it serializes every command, drives the hand
// state machine and publishes sanitized views. All methods are safe for
// concurrent use.
type TableEngine interface {
	// Events
	OnTableUpdated(fn func(*Table))
	OnTableErrorUpdated(fn func(*Table, error))
	OnEventEmitted(fn func(*Event))

	// Table lifecycle
	GetTable() *Table
	GetGame() *game.Game
	CreateTable(setting TableSetting) (*Table, error)
	CloseTable() error
	StartTableGame() error
	RequestNextHand() error
	SelectVariant(playerID string, variant game.Variant) error

	// Commands with request-id idempotency
	ApplyCommand(cmd Command) error

	// Seats
	PlayerClaimSeat(seat int, playerID, playerName string, chips int64) error
	PlayerStandUp(playerID string) error
	PlayerRedeemChips(playerID string, chips int64) error
	GetSeatState() map[int]*seat_manager.SeatPlayer

	// Player game actions
	PlayerFold(playerID string) error
	PlayerCheck(playerID string) error
	PlayerCall(playerID string) error
	PlayerBet(playerID string, amount int64) error
	PlayerRaise(playerID string, amount int64) error

	// Run it twice
	EnableRunItTwice(playerID string, runs int, entropy []byte) error
}

type tableEngine struct {
	lock       sync.Mutex
	applyMu    sync.Mutex // serializes request-id lookup against dispatch
	table      *Table
	game       *game.Game
	sm         seat_manager.SeatManager
	rg         *syncsaga.ReadyGroup
	tb         *timebank.TimeBank // turn clock
	scheduleTB *timebank.TimeBank // dealer choice window, next-hand delay
	store      PersistStore
	logger     *zap.Logger
	journal    *requestJournal

	turnSerial     int64 // invalidates stale turn-clock firings
	pendingVariant game.Variant
	pendingRedeems map[string]int64 // chips bought during a hand, applied at settle

	onTableUpdated      func(*Table)
	onTableErrorUpdated func(*Table, error)
	onEventEmitted      func(*Event)
}

func NewTableEngine(opts ...TableEngineOpt) TableEngine {
	te := &tableEngine{
		rg:             syncsaga.NewReadyGroup(),
		tb:             timebank.NewTimeBank(),
		scheduleTB:     timebank.NewTimeBank(),
		logger:         zap.NewNop(),
		journal:        newRequestJournal(1024),
		pendingRedeems: make(map[string]int64),

		onTableUpdated:      func(*Table) {},
		onTableErrorUpdated: func(*Table, error) {},
		onEventEmitted:      func(*Event) {},
	}

	for _, opt := range opts {
		opt(te)
	}
	return te
}

func WithPersistStore(store PersistStore) TableEngineOpt {
	return func(te *tableEngine) {
		te.store = store
	}
}

func WithLogger(logger *zap.Logger) TableEngineOpt {
	return func(te *tableEngine) {
		te.logger = logger
	}
}

func (te *tableEngine) OnTableUpdated(fn func(*Table)) {
	te.onTableUpdated = fn
}

func (te *tableEngine) OnTableErrorUpdated(fn func(*Table, error)) {
	te.onTableErrorUpdated = fn
}

func (te *tableEngine) OnEventEmitted(fn func(*Event)) {
	te.onEventEmitted = fn
}

func (te *tableEngine) GetTable() *Table {
	te.lock.Lock()
	defer te.lock.Unlock()

	return te.table
}

func (te *tableEngine) GetGame() *game.Game {
	te.lock.Lock()
	defer te.lock.Unlock()

	return te.game
}

func (te *tableEngine) CreateTable(setting TableSetting) (*Table, error) {
	te.lock.Lock()
	defer te.lock.Unlock()

	setting.applyDefaults()
	if setting.BB <= 0 || setting.SB <= 0 || setting.SB > setting.BB {
		return nil, ErrTableInvalidCreateSetting
	}
	if !funk.Contains(game.SupportedVariants, setting.Variant) {
		return nil, ErrTableInvalidCreateSetting
	}
	if setting.TableID == "" {
		setting.TableID = uuid.New().String()
	}

	te.sm = seat_manager.NewSeatManager(setting.MaxSeats)
	te.table = &Table{
		ID:   setting.TableID,
		Meta: setting,
		State: &TableState{
			Status:    TableStateStatus_TableCreated,
			StartAt:   UnsetValue,
			SeatState: te.sm.State(),
			TimeBanks: make(map[string]int),
		},
	}

	te.emitEvent(TableEvent_StatusUpdated, "")
	return te.table, nil
}

func (te *tableEngine) CloseTable() error {
	te.lock.Lock()
	defer te.lock.Unlock()

	te.table.State.Status = TableStateStatus_TableClosed
	te.tb.Cancel()
	te.scheduleTB.Cancel()
	te.rg.Stop()

	te.emitEvent(TableEvent_StatusUpdated, "")
	if te.store != nil {
		if err := te.store.Delete(te.table.ID); err != nil {
			te.logger.Error("snapshot delete failed",
				zap.String("table_id", te.table.ID),
				zap.Error(err))
		}
	}
	return nil
}

func (te *tableEngine) StartTableGame() error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.table.State.Status == TableStateStatus_TableClosed {
		return ErrTableClosed
	}
	if te.table.HandInProgress() {
		return ErrTableGameAlreadyPlaying
	}
	if te.sm.ActiveCount() < te.table.Meta.MinPlayers {
		return ErrTableNotEnoughPlayers
	}

	if te.table.State.StartAt == UnsetValue {
		te.table.State.StartAt = time.Now().Unix()
	}
	if te.sm.CurrentDealerSeatID() == seat_manager.UnsetSeatID {
		if err := te.sm.InitDealer(true); err != nil {
			return err
		}
	}
	return te.openHand()
}

// RequestNextHand opens the next hand once the previous one has settled.
func (te *tableEngine) RequestNextHand() error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.table.State.Status != TableStateStatus_TableGameSettled {
		return ErrTablePlayerInvalidAction
	}
	if te.sm.ActiveCount() < te.table.Meta.MinPlayers {
		return ErrTableNotEnoughPlayers
	}
	return te.openHand()
}

// SelectVariant is the dealer's-choice answer; only the current dealer may
// pick, and only while the table waits for the pick.
func (te *tableEngine) SelectVariant(playerID string, variant game.Variant) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.table.State.Status != TableStateStatus_AwaitingDealerChoice {
		return ErrTablePlayerInvalidAction
	}
	seatID, err := te.sm.GetSeatID(playerID)
	if err != nil {
		return ErrTablePlayerNotFound
	}
	if seatID != te.sm.CurrentDealerSeatID() {
		return ErrTableNotDealer
	}
	if !funk.Contains(game.SupportedVariants, variant) {
		return ErrTableVariantNotSupported
	}

	te.scheduleTB.Cancel()
	te.pendingVariant = variant
	return te.dealHand()
}

func (te *tableEngine) PlayerClaimSeat(seat int, playerID, playerName string, chips int64) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.table.State.Status == TableStateStatus_TableClosed {
		return ErrTableClosed
	}

	err := te.sm.Claim(seat, seat_manager.SeatPlayer{
		ID:    playerID,
		Name:  playerName,
		Chips: chips,
	})
	if err != nil {
		te.emitErrorEvent(string(CommandAction_ClaimSeat), playerID, err)
		return err
	}

	te.table.State.TimeBanks[playerID] = te.table.Meta.TimeBank
	te.emitEvent(TableEvent_SeatClaimed, playerID)
	return nil
}

func (te *tableEngine) PlayerStandUp(playerID string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	seatID, err := te.sm.GetSeatID(playerID)
	if err != nil {
		return ErrTablePlayerNotFound
	}

	cashOut := te.sm.Seats()[seatID].Chips
	if te.table.HandInProgress() {
		gs := te.game.State()
		if idx := gs.PlayerIdx(playerID); idx >= 0 {
			// players still contesting the hand must fold before leaving
			if !gs.Players[idx].Folded {
				return ErrTablePlayerInvalidAction
			}
			// the live-hand stack is what leaves, not the hand-start snapshot
			cashOut = gs.Players[idx].Stack + te.pendingRedeems[playerID]
		}
	}

	if err := te.sm.UpdateChips(playerID, cashOut); err != nil {
		return err
	}
	if err := te.sm.Vacate(seatID, playerID); err != nil {
		return err
	}
	delete(te.table.State.TimeBanks, playerID)
	delete(te.pendingRedeems, playerID)

	te.emitPlayerEvent(TableEvent_SeatVacated, playerID, cashOut)
	return nil
}

// PlayerRedeemChips adds chips to a seated player. During a hand the buy is
// held back and applied at settlement so hand accounting stays intact.
func (te *tableEngine) PlayerRedeemChips(playerID string, chips int64) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if chips <= 0 {
		return ErrTablePlayerInvalidAction
	}
	seatID, err := te.sm.GetSeatID(playerID)
	if err != nil {
		return ErrTablePlayerNotFound
	}

	if te.table.HandInProgress() && te.game.State().PlayerIdx(playerID) >= 0 {
		te.pendingRedeems[playerID] += chips
	} else {
		occupant := te.sm.Seats()[seatID]
		if err := te.sm.UpdateChips(playerID, occupant.Chips+chips); err != nil {
			return err
		}
	}

	te.emitEvent(TableEvent_SeatState, playerID)
	return nil
}

func (te *tableEngine) GetSeatState() map[int]*seat_manager.SeatPlayer {
	te.lock.Lock()
	defer te.lock.Unlock()

	return te.sm.Seats()
}

func (te *tableEngine) PlayerFold(playerID string) error {
	return te.playerAction(playerID, PlayerAction_Fold, 0)
}

func (te *tableEngine) PlayerCheck(playerID string) error {
	return te.playerAction(playerID, PlayerAction_Check, 0)
}

func (te *tableEngine) PlayerCall(playerID string) error {
	return te.playerAction(playerID, PlayerAction_Call, 0)
}

func (te *tableEngine) PlayerBet(playerID string, amount int64) error {
	return te.playerAction(playerID, PlayerAction_Bet, amount)
}

func (te *tableEngine) PlayerRaise(playerID string, amount int64) error {
	return te.playerAction(playerID, PlayerAction_Raise, amount)
}

// EnableRunItTwice records a player's answer to an open run-it-twice prompt.
// The hand resolves once every contender has answered or the prompt times
// out; the agreed run count is the smallest answer.
func (te *tableEngine) EnableRunItTwice(playerID string, runs int, entropy []byte) error {
	te.lock.Lock()

	ritState := te.table.State.RunItTwice
	if te.table.State.Status != TableStateStatus_TableGameRunoutPending ||
		ritState == nil || !ritState.PromptOpen {
		te.lock.Unlock()
		return ErrTableRITNotAvailable
	}

	gs := te.game.State()
	idx := gs.PlayerIdx(playerID)
	if idx < 0 || gs.Players[idx].Folded {
		te.lock.Unlock()
		return ErrTablePlayerNotFound
	}
	if runs < 1 || runs > te.game.MaxRuns() {
		te.lock.Unlock()
		return game.ErrInvalidRuns
	}
	if _, answered := ritState.Choices[playerID]; answered {
		te.lock.Unlock()
		return ErrTablePlayerInvalidAction
	}

	ritState.Choices[playerID] = runs
	ritState.Entropy = append(ritState.Entropy, entropy...)
	te.emitEvent(TableEvent_GameStateUpdate, playerID)
	te.lock.Unlock()

	// Ready may complete the group and resolve the runout synchronously, so
	// the lock must be released first.
	te.rg.Ready(int64(idx))
	return nil
}

func (te *tableEngine) ApplyCommand(cmd Command) error {
	// a racing duplicate delivery must not pass the lookup while the first
	// copy is still dispatching
	te.applyMu.Lock()
	defer te.applyMu.Unlock()

	if cmd.RequestID != "" {
		if result, seen := te.journal.lookup(cmd.RequestID); seen {
			return result
		}
	}

	result := te.dispatch(cmd)
	if cmd.RequestID != "" {
		te.journal.record(cmd.RequestID, result)
		if result == nil {
			// the snapshot written during dispatch predates the journal
			// entry; rewrite it so a crash cannot replay this request
			te.lock.Lock()
			te.persist()
			te.lock.Unlock()
		}
	}
	return result
}

func (te *tableEngine) dispatch(cmd Command) error {
	switch cmd.Action {
	case CommandAction_ClaimSeat:
		return te.PlayerClaimSeat(cmd.Seat, cmd.PlayerID, cmd.PlayerName, cmd.Chips)
	case CommandAction_StandUp:
		return te.PlayerStandUp(cmd.PlayerID)
	case CommandAction_RedeemChips:
		return te.PlayerRedeemChips(cmd.PlayerID, cmd.Chips)
	case CommandAction_StartGame:
		return te.StartTableGame()
	case CommandAction_SelectVariant:
		return te.SelectVariant(cmd.PlayerID, cmd.Variant)
	case CommandAction_RequestNextHand:
		return te.RequestNextHand()
	case CommandAction_EnableRunItTwice:
		return te.EnableRunItTwice(cmd.PlayerID, cmd.Runs, cmd.Entropy)
	case CommandAction_PlayerAction:
		switch cmd.GameAction {
		case PlayerAction_Fold:
			return te.PlayerFold(cmd.PlayerID)
		case PlayerAction_Check:
			return te.PlayerCheck(cmd.PlayerID)
		case PlayerAction_Call:
			return te.PlayerCall(cmd.PlayerID)
		case PlayerAction_Bet:
			return te.PlayerBet(cmd.PlayerID, cmd.Amount)
		case PlayerAction_Raise:
			return te.PlayerRaise(cmd.PlayerID, cmd.Amount)
		}
	}
	return ErrTablePlayerInvalidAction
}
