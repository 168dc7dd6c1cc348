package pokerroom

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/weedbox/pokerroom/game"
	"github.com/weedbox/pokerroom/seat_manager"
	"github.com/weedbox/syncsaga"
	"go.uber.org/zap"
)

var (
	ErrSnapshotNotFound = errors.New("persistence: snapshot not found")
	ErrSnapshotVersion  = errors.New("persistence: unsupported snapshot version")
)

const snapshotVersion = 1

// Snapshot is the versioned blob written after every committed transition.
// It carries everything needed to resume the table: full state, run-it-twice
// commitment material (inside the table state) and the pending turn deadline.
type Snapshot struct {
	Version int    `json:"version"`
	TableID string `json:"table_id"`
	TakenAt int64  `json:"taken_at"`
	Table   *Table `json:"table"`

	// request ids already applied; replaying one after restore is a no-op
	AppliedRequests []string `json:"applied_requests,omitempty"`
}

// PersistStore stores snapshots keyed by table id.
type PersistStore interface {
	Save(tableID string, data []byte) error
	Load(tableID string) ([]byte, error)
	Delete(tableID string) error
}

type memoryPersistStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

func NewMemoryPersistStore() PersistStore {
	return &memoryPersistStore{
		snapshots: make(map[string][]byte),
	}
}

func (ps *memoryPersistStore) Save(tableID string, data []byte) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	ps.snapshots[tableID] = stored
	return nil
}

func (ps *memoryPersistStore) Load(tableID string) ([]byte, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	data, exist := ps.snapshots[tableID]
	if !exist {
		return nil, ErrSnapshotNotFound
	}
	return data, nil
}

func (ps *memoryPersistStore) Delete(tableID string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.snapshots, tableID)
	return nil
}

// EncodeSnapshot serializes a table into the persisted blob form.
func EncodeSnapshot(t *Table, appliedRequests []string) ([]byte, error) {
	return json.Marshal(&Snapshot{
		Version:         snapshotVersion,
		TableID:         t.ID,
		TakenAt:         time.Now().Unix(),
		Table:           t,
		AppliedRequests: appliedRequests,
	})
}

// DecodeSnapshot parses a persisted blob.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	snapshot := &Snapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, err
	}
	if snapshot.Version != snapshotVersion {
		return nil, ErrSnapshotVersion
	}
	return snapshot, nil
}

// RestoreTableEngine rebuilds a running engine from a persisted snapshot.
// The hand resumes where it stopped; a pending turn clock restarts with the
// remaining wall-clock time, and an open run-it-twice prompt reopens for the
// players who had not answered.
func RestoreTableEngine(data []byte, opts ...TableEngineOpt) (TableEngine, error) {
	snapshot, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}

	te := NewTableEngine(opts...).(*tableEngine)
	te.lock.Lock()
	defer te.lock.Unlock()

	te.table = snapshot.Table
	te.journal.seed(snapshot.AppliedRequests)
	if te.table.State.TimeBanks == nil {
		te.table.State.TimeBanks = make(map[string]int)
	}
	te.sm = seat_manager.NewSeatManagerFromState(te.table.State.SeatState)

	if te.table.State.GameState == nil || !te.table.HandInProgress() {
		return te, nil
	}

	g, err := game.Restore(te.table.State.GameState)
	if err != nil {
		return nil, err
	}
	te.game = g
	te.table.State.GameState = g.State()

	// a crash between result application and the settle commit leaves the
	// table status behind the game; finish the settle instead of replaying
	// a runout the game already performed
	if g.State().Stage == game.Stage_Settled {
		te.settleHand()
		return te, nil
	}

	switch te.table.State.Status {
	case TableStateStatus_TableGamePlaying:
		te.rearmTurnClock()
	case TableStateStatus_TableGameRunoutPending:
		te.reopenRunItTwicePrompt()
	}
	return te, nil
}

// rearmTurnClock resumes the acting player's clock with whatever wall-clock
// time the snapshot deadline has left. Caller holds the lock.
func (te *tableEngine) rearmTurnClock() {
	gs := te.game.State()
	if gs.CurrentIdx < 0 {
		return
	}

	remaining := te.table.State.TurnDeadline - time.Now().Unix()
	if remaining < 1 {
		remaining = 1
	}

	te.turnSerial++
	serial := te.turnSerial
	playerID := gs.Players[gs.CurrentIdx].ID
	if err := te.tb.NewTask(time.Duration(remaining)*time.Second, func(isCancelled bool) {
		if isCancelled {
			return
		}
		te.handleTurnTimeout(serial, playerID)
	}); err != nil {
		te.logger.Error("turn clock restore failed",
			zap.String("table_id", te.table.ID),
			zap.Error(err))
	}
}

// reopenRunItTwicePrompt restarts the prompt's ready group, pre-answering the
// players whose choices the snapshot already holds. Caller holds the lock.
func (te *tableEngine) reopenRunItTwicePrompt() {
	ritState := te.table.State.RunItTwice
	if ritState == nil || !ritState.PromptOpen {
		// prompt closed but the hand never settled; run the board out
		if err := te.runoutSingle(); err != nil {
			te.logger.Error("restore runout failed",
				zap.String("table_id", te.table.ID),
				zap.Error(err))
		}
		return
	}

	gs := te.game.State()
	allAnswered := true
	te.rg.Stop()
	te.rg.SetTimeoutInterval(te.table.Meta.RITPromptTime)
	te.rg.OnTimeout(func(rg *syncsaga.ReadyGroup) {
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
		if p.Folded {
			continue
		}
		_, answered := ritState.Choices[p.ID]
		if !answered {
			allAnswered = false
		}
		te.rg.Add(int64(idx), answered)
	}
	te.rg.Start()

	// the group only completes on a Ready transition; when the snapshot
	// already holds every answer there is none coming, so resolve now
	if allAnswered {
		go te.resolveRunout()
	}
}

// persist snapshots the current state. A store failure is logged and leaves
// the engine serving from memory; the next transition retries.
func (te *tableEngine) persist() {
	if te.store == nil || te.table == nil {
		return
	}

	data, err := EncodeSnapshot(te.table, te.journal.ids())
	if err != nil {
		te.logger.Error("snapshot encode failed",
			zap.String("table_id", te.table.ID),
			zap.Error(err))
		return
	}
	if err := te.store.Save(te.table.ID, data); err != nil {
		te.logger.Error("snapshot save failed",
			zap.String("table_id", te.table.ID),
			zap.Error(err))
	}
}
