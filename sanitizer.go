package pokerroom

import (
	"github.com/weedbox/pokerroom/game"
)

// ForViewer projects the table for one player: their own private cards stay,
// everyone else's are hidden unless revealed by the rules. The authoritative
// table is never mutated.
func ForViewer(t *Table, viewerID string) (*Table, error) {
	return sanitize(t, viewerID)
}

// ForBroadcast projects the table for all subscribers at once; every
// unrevealed private card is hidden.
func ForBroadcast(t *Table) (*Table, error) {
	return sanitize(t, "")
}

func sanitize(t *Table, viewerID string) (*Table, error) {
	cloned, err := t.Clone()
	if err != nil {
		return nil, err
	}

	gs := cloned.State.GameState
	if gs == nil {
		return cloned, nil
	}

	// the undealt deck never leaves the engine
	gs.Deck = nil
	if cloned.State.RunItTwice != nil {
		// entropy inside the record is already public after reveal; the
		// commitment digest is all a client needs beforehand
		if cloned.State.RunItTwice.PromptOpen {
			cloned.State.RunItTwice.Record = nil
			cloned.State.RunItTwice.Entropy = nil
		}
	}

	for _, p := range gs.Players {
		if p.ID == viewerID {
			continue
		}
		if cardsRevealed(gs, p) {
			continue
		}
		p.HoleCards = nil
		p.DownCards = nil
	}
	return cloned, nil
}

// cardsRevealed reports whether a player's private cards are table-public:
// at showdown or settlement for players still in the hand, or during an
// all-in runout where no further action can influence the outcome.
func cardsRevealed(gs *game.State, p *game.PlayerState) bool {
	if p.Folded {
		return false
	}
	switch gs.Stage {
	case game.Stage_Showdown, game.Stage_Settled:
		return gs.Result == nil || !gs.Result.WinByFold
	}
	return gs.RunoutPending
}
