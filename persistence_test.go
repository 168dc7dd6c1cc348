package pokerroom

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/weedbox/pokerroom/game"
)

func newPersistedTable(t *testing.T, store PersistStore, stacks ...int64) TableEngine {
	te := NewTableEngine(WithPersistStore(store))
	_, err := te.CreateTable(testTableSetting())
	assert.Nil(t, err)

	for i, stack := range stacks {
		playerID := fmt.Sprintf("p%d", i)
		assert.Nil(t, te.PlayerClaimSeat(i, playerID, playerID, stack))
	}
	assert.Nil(t, te.StartTableGame())
	return te
}

func TestPersistence_SnapshotWrittenOnEveryTransition(t *testing.T) {
	store := NewMemoryPersistStore()
	te := newPersistedTable(t, store, 100, 100)
	tableID := te.GetTable().ID

	data, err := store.Load(tableID)
	assert.Nil(t, err)

	snapshot, err := DecodeSnapshot(data)
	assert.Nil(t, err)
	assert.Equal(t, tableID, snapshot.TableID)
	assert.Equal(t, TableStateStatus_TableGamePlaying, snapshot.Table.State.Status)
	assert.NotNil(t, snapshot.Table.State.GameState)

	assert.Nil(t, te.PlayerFold(actingPlayerID(te)))

	data, err = store.Load(tableID)
	assert.Nil(t, err)
	snapshot, err = DecodeSnapshot(data)
	assert.Nil(t, err)
	assert.Equal(t, TableStateStatus_TableGameSettled, snapshot.Table.State.Status)
}

func TestPersistence_RestoreResumesMidHand(t *testing.T) {
	store := NewMemoryPersistStore()
	te := newPersistedTable(t, store, 100, 100)
	tableID := te.GetTable().ID

	// the small blind completes; the table dies with the big blind to act
	assert.Nil(t, te.PlayerCall(actingPlayerID(te)))
	data, err := store.Load(tableID)
	assert.Nil(t, err)

	restored, err := RestoreTableEngine(data, WithPersistStore(NewMemoryPersistStore()))
	assert.Nil(t, err)
	assert.Equal(t, TableStateStatus_TableGamePlaying, restored.GetTable().State.Status)
	assert.Equal(t, tableID, restored.GetTable().ID)

	for restored.GetTable().State.Status == TableStateStatus_TableGamePlaying {
		playerID := actingPlayerID(restored)
		gs := restored.GetGame().State()
		if gs.CurrentBet > gs.Players[gs.CurrentIdx].Bet {
			assert.Nil(t, restored.PlayerCall(playerID))
		} else {
			assert.Nil(t, restored.PlayerCheck(playerID))
		}
	}

	assert.Equal(t, TableStateStatus_TableGameSettled, restored.GetTable().State.Status)
	var total int64
	for _, sp := range restored.GetSeatState() {
		if sp != nil {
			total += sp.Chips
		}
	}
	assert.Equal(t, int64(200), total)
}

func TestPersistence_RestoreRearmsTurnClock(t *testing.T) {
	store := NewMemoryPersistStore()

	te := NewTableEngine(WithPersistStore(store))
	setting := testTableSetting()
	setting.ActionTime = 1
	_, err := te.CreateTable(setting)
	assert.Nil(t, err)
	assert.Nil(t, te.PlayerClaimSeat(0, "p0", "P0", 100))
	assert.Nil(t, te.PlayerClaimSeat(1, "p1", "P1", 100))
	assert.Nil(t, te.StartTableGame())

	data, err := store.Load(te.GetTable().ID)
	assert.Nil(t, err)

	restored, err := RestoreTableEngine(data)
	assert.Nil(t, err)

	// the snapshot deadline is nearly due; the restored clock fires and the
	// default action folds the hand
	assert.Eventually(t, func() bool {
		return restored.GetTable().State.Status == TableStateStatus_TableGameSettled
	}, 5*time.Second, 50*time.Millisecond)
	assert.True(t, restored.GetTable().State.GameState.Result.WinByFold)
}

func TestPersistence_RestoreRejectsUnknownVersion(t *testing.T) {
	store := NewMemoryPersistStore()
	te := newPersistedTable(t, store, 100, 100)

	data, err := store.Load(te.GetTable().ID)
	assert.Nil(t, err)

	snapshot := &Snapshot{}
	assert.Nil(t, json.Unmarshal(data, snapshot))
	snapshot.Version = 99
	tampered, err := json.Marshal(snapshot)
	assert.Nil(t, err)

	_, err = RestoreTableEngine(tampered)
	assert.ErrorIs(t, err, ErrSnapshotVersion)
}

func TestPersistence_ReplayedRequestIsNoOpAfterRestore(t *testing.T) {
	store := NewMemoryPersistStore()
	te := NewTableEngine(WithPersistStore(store))
	_, err := te.CreateTable(testTableSetting())
	assert.Nil(t, err)

	claim := Command{
		RequestID: "claim-p0",
		Action:    CommandAction_ClaimSeat,
		PlayerID:  "p0",
		Seat:      0,
		Chips:     100,
	}
	assert.Nil(t, te.ApplyCommand(claim))

	data, err := store.Load(te.GetTable().ID)
	assert.Nil(t, err)
	restored, err := RestoreTableEngine(data)
	assert.Nil(t, err)

	// at-least-once delivery across the crash: the duplicate is swallowed
	assert.Nil(t, restored.ApplyCommand(claim))
	seated := 0
	for _, sp := range restored.GetSeatState() {
		if sp != nil {
			seated++
		}
	}
	assert.Equal(t, 1, seated)
}

// recordingStore keeps every written snapshot so tests can restore from a
// precise mid-flow state.
type recordingStore struct {
	PersistStore
	mu    sync.Mutex
	saves [][]byte
}

func (rs *recordingStore) Save(tableID string, data []byte) error {
	rs.mu.Lock()
	rs.saves = append(rs.saves, append([]byte(nil), data...))
	rs.mu.Unlock()
	return rs.PersistStore.Save(tableID, data)
}

func (rs *recordingStore) find(t *testing.T, match func(*Snapshot) bool) []byte {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, data := range rs.saves {
		snapshot, err := DecodeSnapshot(data)
		assert.Nil(t, err)
		if match(snapshot) {
			return data
		}
	}
	t.Fatal("no snapshot matched")
	return nil
}

// driveMultiRunHand plays a heads-up all-in through an agreed two-run
// showdown, leaving every intermediate snapshot in the store.
func driveMultiRunHand(t *testing.T, store PersistStore) TableEngine {
	te := NewTableEngine(WithPersistStore(store))
	_, err := te.CreateTable(ritTableSetting())
	assert.Nil(t, err)
	assert.Nil(t, te.PlayerClaimSeat(0, "p0", "P0", 10))
	assert.Nil(t, te.PlayerClaimSeat(1, "p1", "P1", 10))
	assert.Nil(t, te.StartTableGame())
	shoveHeadsUp(t, te)

	players := te.GetGame().State().Players
	assert.Nil(t, te.EnableRunItTwice(players[0].ID, 2, []byte("alpha")))
	assert.Nil(t, te.EnableRunItTwice(players[1].ID, 2, []byte("beta")))
	assert.Equal(t, TableStateStatus_TableGameSettled, te.GetTable().State.Status)
	return te
}

func TestPersistence_RestoreWithAllPromptAnswersResolves(t *testing.T) {
	store := &recordingStore{PersistStore: NewMemoryPersistStore()}
	driveMultiRunHand(t, store)

	// the snapshot written inside the second answer: prompt still open, both
	// choices recorded, the resolution not yet run
	data := store.find(t, func(s *Snapshot) bool {
		return s.Table.State.Status == TableStateStatus_TableGameRunoutPending &&
			s.Table.State.RunItTwice != nil &&
			s.Table.State.RunItTwice.PromptOpen &&
			len(s.Table.State.RunItTwice.Choices) == 2
	})

	restored, err := RestoreTableEngine(data)
	assert.Nil(t, err)

	// nothing more arrives; the restored table must resolve on its own
	assert.Eventually(t, func() bool {
		return restored.GetTable().State.Status == TableStateStatus_TableGameSettled
	}, 5*time.Second, 50*time.Millisecond)

	table := restored.GetTable()
	assert.Equal(t, 2, table.State.RunItTwice.Runs)
	assert.NotNil(t, table.State.RunItTwice.Record)

	var total int64
	for _, sp := range restored.GetSeatState() {
		if sp != nil {
			total += sp.Chips
		}
	}
	assert.Equal(t, int64(20), total)
}

func TestPersistence_RestoreAfterBoardsAppliedSettles(t *testing.T) {
	store := &recordingStore{PersistStore: NewMemoryPersistStore()}
	driveMultiRunHand(t, store)

	// the snapshot written by the multi-run reveal: stacks already
	// distributed, but the settle commit never ran
	data := store.find(t, func(s *Snapshot) bool {
		return s.Table.State.Status == TableStateStatus_TableGameRunoutPending &&
			s.Table.State.RunItTwice != nil &&
			!s.Table.State.RunItTwice.PromptOpen &&
			s.Table.State.GameState.Stage == game.Stage_Settled
	})

	restored, err := RestoreTableEngine(data)
	assert.Nil(t, err)

	table := restored.GetTable()
	assert.Equal(t, TableStateStatus_TableGameSettled, table.State.Status)
	assert.False(t, table.HandInProgress())

	var total int64
	for _, sp := range restored.GetSeatState() {
		if sp != nil {
			total += sp.Chips
		}
	}
	assert.Equal(t, int64(20), total)
}

func TestPersistence_MemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryPersistStore()

	_, err := store.Load("missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	assert.Nil(t, store.Save("t1", []byte("blob")))
	data, err := store.Load("t1")
	assert.Nil(t, err)
	assert.Equal(t, []byte("blob"), data)

	assert.Nil(t, store.Delete("t1"))
	_, err = store.Load("t1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
