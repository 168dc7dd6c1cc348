package pokerroom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_BroadcastHidesAllPrivateCards(t *testing.T) {
	te := newStartedTable(t, testTableSetting(), 100, 100)
	table := te.GetTable()

	sanitized, err := ForBroadcast(table)
	assert.Nil(t, err)

	gs := sanitized.State.GameState
	assert.Nil(t, gs.Deck)
	for _, p := range gs.Players {
		assert.Empty(t, p.HoleCards)
		assert.Empty(t, p.DownCards)
	}

	// the authoritative table still holds everything
	assert.NotEmpty(t, table.State.GameState.Deck)
	for _, p := range table.State.GameState.Players {
		assert.Len(t, p.HoleCards, 2)
	}
}

func TestSanitizer_ViewerKeepsOwnCardsOnly(t *testing.T) {
	te := newStartedTable(t, testTableSetting(), 100, 100)
	table := te.GetTable()
	viewerID := table.State.GameState.Players[0].ID

	sanitized, err := ForViewer(table, viewerID)
	assert.Nil(t, err)

	gs := sanitized.State.GameState
	assert.Nil(t, gs.Deck)
	for _, p := range gs.Players {
		if p.ID == viewerID {
			assert.Len(t, p.HoleCards, 2)
		} else {
			assert.Empty(t, p.HoleCards)
		}
	}
}

func TestSanitizer_ShowdownRevealsContenders(t *testing.T) {
	te := newStartedTable(t, testTableSetting(), 100, 100, 100)

	// the first actor folds; the rest check the hand down to showdown
	assert.Nil(t, te.PlayerFold(actingPlayerID(te)))
	for te.GetTable().State.Status == TableStateStatus_TableGamePlaying {
		playerID := actingPlayerID(te)
		gs := te.GetGame().State()
		if gs.CurrentBet > gs.Players[gs.CurrentIdx].Bet {
			assert.Nil(t, te.PlayerCall(playerID))
		} else {
			assert.Nil(t, te.PlayerCheck(playerID))
		}
	}

	sanitized, err := ForBroadcast(te.GetTable())
	assert.Nil(t, err)
	for _, p := range sanitized.State.GameState.Players {
		if p.Folded {
			assert.Empty(t, p.HoleCards)
		} else {
			assert.Len(t, p.HoleCards, 2)
		}
	}
}

func TestSanitizer_FoldWinStaysHidden(t *testing.T) {
	te := newStartedTable(t, testTableSetting(), 100, 100)
	assert.Nil(t, te.PlayerFold(actingPlayerID(te)))

	sanitized, err := ForBroadcast(te.GetTable())
	assert.Nil(t, err)
	assert.True(t, sanitized.State.GameState.Result.WinByFold)
	for _, p := range sanitized.State.GameState.Players {
		assert.Empty(t, p.HoleCards)
	}
}

func TestSanitizer_RunoutPendingRevealsAndStripsRecord(t *testing.T) {
	te := newStartedTable(t, ritTableSetting(), 10, 10)
	shoveHeadsUp(t, te)

	// one answer in: its entropy contribution is on the table state
	players := te.GetGame().State().Players
	assert.Nil(t, te.EnableRunItTwice(players[0].ID, 2, []byte("alpha")))
	assert.NotEmpty(t, te.GetTable().State.RunItTwice.Entropy)

	sanitized, err := ForBroadcast(te.GetTable())
	assert.Nil(t, err)

	// all-ins are table-up while the boards run out
	for _, p := range sanitized.State.GameState.Players {
		assert.Len(t, p.HoleCards, 2)
	}
	// randomness material stays private until the prompt closes
	assert.NotNil(t, sanitized.State.RunItTwice)
	assert.Nil(t, sanitized.State.RunItTwice.Record)
	assert.Nil(t, sanitized.State.RunItTwice.Entropy)
}
