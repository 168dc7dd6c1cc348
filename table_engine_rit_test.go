package pokerroom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/weedbox/pokerroom/card"
	"github.com/weedbox/pokerroom/game"
	"github.com/weedbox/pokerroom/rit"
)

func ritTableSetting() TableSetting {
	setting := testTableSetting()
	setting.RunItTwice = true
	return setting
}

// shoveHeadsUp puts both stacks in preflop and leaves the table awaiting the
// run-it-twice prompt.
func shoveHeadsUp(t *testing.T, te TableEngine) {
	assert.Nil(t, te.PlayerRaise(actingPlayerID(te), 10))
	assert.Nil(t, te.PlayerCall(actingPlayerID(te)))
	assert.Equal(t, TableStateStatus_TableGameRunoutPending, te.GetTable().State.Status)
	assert.True(t, te.GetTable().State.RunItTwice.PromptOpen)
}

func TestTableEngine_RunItTwiceAgreedRuns(t *testing.T) {
	te := newStartedTable(t, ritTableSetting(), 10, 10)

	var prompts, enabled int
	te.OnEventEmitted(func(e *Event) {
		switch e.Name {
		case TableEvent_RITPrompt:
			prompts++
		case TableEvent_RITEnabled:
			enabled++
		}
	})

	shoveHeadsUp(t, te)

	undealt := append([]card.Card{}, te.GetGame().UndealtCards()...)
	boardSize := te.GetGame().RemainingBoardSize()
	assert.Equal(t, 5, boardSize)

	players := te.GetGame().State().Players
	assert.Nil(t, te.EnableRunItTwice(players[0].ID, 2, []byte("alpha")))
	assert.Nil(t, te.EnableRunItTwice(players[1].ID, 2, []byte("beta")))

	table := te.GetTable()
	assert.Equal(t, TableStateStatus_TableGameSettled, table.State.Status)
	assert.Equal(t, 2, table.State.RunItTwice.Runs)

	record := table.State.RunItTwice.Record
	assert.NotNil(t, record)
	assert.Equal(t, 2, record.Runs)
	assert.Len(t, record.Boards, 2)
	// anyone holding the record and the undealt cards can re-derive the boards
	assert.Nil(t, rit.Verify(record, undealt, boardSize))

	assert.Len(t, table.State.GameState.Result.Runs, 2)

	var total int64
	for _, sp := range te.GetSeatState() {
		if sp != nil {
			total += sp.Chips
		}
	}
	assert.Equal(t, int64(20), total)

	assert.Equal(t, 1, prompts)
	assert.Equal(t, 1, enabled)
}

func TestTableEngine_RunItTwiceLowestAnswerWins(t *testing.T) {
	te := newStartedTable(t, ritTableSetting(), 10, 10)
	shoveHeadsUp(t, te)

	players := te.GetGame().State().Players
	assert.Nil(t, te.EnableRunItTwice(players[0].ID, 2, []byte("alpha")))
	assert.Nil(t, te.EnableRunItTwice(players[1].ID, 1, []byte("beta")))

	table := te.GetTable()
	assert.Equal(t, TableStateStatus_TableGameSettled, table.State.Status)
	assert.Equal(t, 1, table.State.RunItTwice.Runs)
	assert.Nil(t, table.State.RunItTwice.Record)
	assert.Len(t, table.State.GameState.Community, 5)
}

func TestTableEngine_RunItTwicePromptTimeout(t *testing.T) {
	setting := ritTableSetting()
	setting.RITPromptTime = 1
	te := newStartedTable(t, setting, 10, 10)
	shoveHeadsUp(t, te)

	// nobody answers; the prompt times out into a single-board runout
	assert.Eventually(t, func() bool {
		return te.GetTable().State.Status == TableStateStatus_TableGameSettled
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, 1, te.GetTable().State.RunItTwice.Runs)
	assert.Nil(t, te.GetTable().State.RunItTwice.Record)
}

func TestTableEngine_RunItTwicePromptValidation(t *testing.T) {
	te := newStartedTable(t, ritTableSetting(), 10, 10)

	// no pending runout yet
	actor := actingPlayerID(te)
	assert.ErrorIs(t, te.EnableRunItTwice(actor, 2, nil), ErrTableRITNotAvailable)

	shoveHeadsUp(t, te)

	players := te.GetGame().State().Players
	assert.ErrorIs(t, te.EnableRunItTwice("ghost", 2, nil), ErrTablePlayerNotFound)
	assert.ErrorIs(t, te.EnableRunItTwice(players[0].ID, 0, nil), game.ErrInvalidRuns)
	assert.ErrorIs(t, te.EnableRunItTwice(players[0].ID, 99, nil), game.ErrInvalidRuns)

	assert.Nil(t, te.EnableRunItTwice(players[0].ID, 2, []byte("alpha")))
	assert.ErrorIs(t, te.EnableRunItTwice(players[0].ID, 2, []byte("again")), ErrTablePlayerInvalidAction)
}

func TestTableEngine_RunItTwiceDisabledRunsOutImmediately(t *testing.T) {
	te := newStartedTable(t, testTableSetting(), 10, 10)

	assert.Nil(t, te.PlayerRaise(actingPlayerID(te), 10))
	assert.Nil(t, te.PlayerCall(actingPlayerID(te)))

	table := te.GetTable()
	assert.Equal(t, TableStateStatus_TableGameSettled, table.State.Status)
	assert.Nil(t, table.State.RunItTwice)
	assert.Len(t, table.State.GameState.Community, 5)
}
