package game

import (
	"github.com/weedbox/pokerroom/card"
	"github.com/weedbox/pokerroom/pot"
	"github.com/weedbox/pokerroom/rit"
)

// RunItTwiceEligible reports whether a multi-run showdown can be offered:
// the hand is in an all-in runout of a community-card variant with board
// cards still to come and at least two contenders.
func (g *Game) RunItTwiceEligible() bool {
	s := g.state
	if g.rules.stud() {
		return false
	}
	if !s.RunoutPending {
		return false
	}
	if len(s.Community) >= 5 {
		return false
	}
	allIn := 0
	for _, p := range s.nonFolded() {
		if p.AllIn {
			allIn++
		}
	}
	return allIn >= 1 && len(s.nonFolded()) >= 2
}

// MaxRuns is the upper bound on the requested run count: the number of
// players still in the hand.
func (g *Game) MaxRuns() int {
	return len(g.state.nonFolded())
}

// RemainingBoardSize is the number of community cards still to deal; every
// run-it-twice board must have exactly this length.
func (g *Game) RemainingBoardSize() int {
	if g.rules.stud() {
		return 0
	}
	return 5 - len(g.state.Community)
}

// UndealtCards returns the undealt portion of the deck for board derivation.
func (g *Game) UndealtCards() []card.Card {
	return append([]card.Card{}, g.state.Deck...)
}

// ApplyRunItTwice settles the hand across the record's boards: the pot is
// divided evenly across runs (remainder chips on the earliest runs) and each
// run settles independently, aggregated into one distribution.
func (g *Game) ApplyRunItTwice(record *rit.Record) error {
	s := g.state
	if !s.RunoutPending {
		return ErrRunoutNotPending
	}
	if g.rules.stud() {
		return ErrRunItTwiceVariant
	}
	if record.Runs < 1 || record.Runs > g.MaxRuns() {
		return ErrInvalidRuns
	}
	if len(record.Boards) != record.Runs {
		return ErrRunItTwiceBoards
	}
	boardSize := g.RemainingBoardSize()
	for _, board := range record.Boards {
		if len(board) != boardSize {
			return ErrRunItTwiceBoards
		}
	}

	contribs := g.contributions()
	runs := int64(record.Runs)
	total := s.Pot

	aggregate := make(map[string]int64)
	runResults := make([]RunResult, 0, record.Runs)
	for run := 0; run < record.Runs; run++ {
		runContribs := make([]pot.Contribution, len(contribs))
		for i, c := range contribs {
			share := c.Amount / runs
			if int64(run) < c.Amount%runs {
				share++
			}
			runContribs[i] = pot.Contribution{PlayerID: c.PlayerID, Amount: share, Folded: c.Folded}
		}

		community := append(append([]card.Card{}, s.Community...), record.Boards[run]...)
		hands := g.rankedHands(community)
		distribution, err := pot.Settle(runContribs, hands, s.ButtonOrder())
		if err != nil {
			return err
		}

		for id, amount := range distribution {
			aggregate[id] += amount
		}
		runResults = append(runResults, RunResult{
			Board:        record.Boards[run],
			Hands:        hands,
			Distribution: distribution,
		})
	}

	for _, p := range s.Players {
		p.Stack += aggregate[p.ID]
	}
	s.Pot = 0
	s.CurrentIdx = -1
	s.RunoutPending = false
	s.Result = &Result{
		Pot:          total,
		Distribution: aggregate,
		Runs:         runResults,
	}
	s.Stage = Stage_Settled
	return nil
}
