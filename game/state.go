package game

import (
	"github.com/weedbox/pokerroom/card"
	"github.com/weedbox/pokerroom/pot"
)

type Variant string

const (
	Variant_Holdem        Variant = "holdem"
	Variant_Omaha         Variant = "omaha"
	Variant_OmahaHiLo     Variant = "omaha_hilo"
	Variant_SevenStud     Variant = "seven_stud"
	Variant_SevenStudHiLo Variant = "seven_stud_hilo"
)

var SupportedVariants = []Variant{
	Variant_Holdem,
	Variant_Omaha,
	Variant_OmahaHiLo,
	Variant_SevenStud,
	Variant_SevenStudHiLo,
}

type Stage string

const (
	// hold'em / omaha
	Stage_Preflop Stage = "preflop"
	Stage_Flop    Stage = "flop"
	Stage_Turn    Stage = "turn"
	Stage_River   Stage = "river"

	// stud
	Stage_ThirdStreet   Stage = "third_street"
	Stage_FourthStreet  Stage = "fourth_street"
	Stage_FifthStreet   Stage = "fifth_street"
	Stage_SixthStreet   Stage = "sixth_street"
	Stage_SeventhStreet Stage = "seventh_street"

	Stage_Showdown Stage = "showdown"
	Stage_Settled  Stage = "settled"
)

// PlayerState is one participant of the running hand. Mutated only by Game.
type PlayerState struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Seat      int         `json:"seat"`
	Stack     int64       `json:"stack"`
	Bet       int64       `json:"bet"`       // committed this betting round
	TotalBet  int64       `json:"total_bet"` // committed over the whole hand
	HoleCards []card.Card `json:"hole_cards,omitempty"`
	DownCards []card.Card `json:"down_cards,omitempty"` // stud
	UpCards   []card.Card `json:"up_cards,omitempty"`   // stud
	HasActed  bool        `json:"has_acted"`
	Folded    bool        `json:"folded"`
	AllIn     bool        `json:"all_in"`

	// CannotRaise marks a player who already acted and then faced only a
	// short all-in below a full raise; action is not reopened to them.
	CannotRaise bool `json:"cannot_raise"`
}

// PrivateCards returns every card only this player may see.
func (p *PlayerState) PrivateCards() []card.Card {
	private := make([]card.Card, 0, len(p.HoleCards)+len(p.DownCards))
	private = append(private, p.HoleCards...)
	private = append(private, p.DownCards...)
	return private
}

func (p *PlayerState) allCards(community []card.Card) []card.Card {
	cards := make([]card.Card, 0, 7)
	cards = append(cards, p.HoleCards...)
	cards = append(cards, p.DownCards...)
	cards = append(cards, p.UpCards...)
	cards = append(cards, community...)
	return cards
}

// RunResult is one board's outcome within a multi-run showdown.
type RunResult struct {
	Board        []card.Card      `json:"board"`
	Hands        []pot.RankedHand `json:"hands"`
	Distribution map[string]int64 `json:"distribution"`
}

// Result is the terminal outcome of a hand.
type Result struct {
	WinByFold    bool             `json:"win_by_fold"`
	Pot          int64            `json:"pot"`
	Distribution map[string]int64 `json:"distribution"`
	Hands        []pot.RankedHand `json:"hands,omitempty"`
	Runs         []RunResult      `json:"runs,omitempty"`
}

// State is the full authoritative hand state. Deck and private cards must be
// stripped by the sanitizer before leaving the engine.
type State struct {
	HandID  string   `json:"hand_id"`
	Variant Variant  `json:"variant"`
	Mode    pot.Mode `json:"mode"`
	Stage   Stage    `json:"stage"`

	// Players are ordered by seat, ascending; indexes below point into it.
	Players    []*PlayerState `json:"players"`
	DealerIdx  int            `json:"dealer_idx"`
	SBIdx      int            `json:"sb_idx"` // -1 for stud
	BBIdx      int            `json:"bb_idx"` // -1 for stud
	BringInIdx int            `json:"bring_in_idx"`
	CurrentIdx int            `json:"current_idx"` // -1 when no action pending

	SB      int64 `json:"sb"`
	BB      int64 `json:"bb"`
	Ante    int64 `json:"ante"`
	BringIn int64 `json:"bring_in"`

	Pot        int64 `json:"pot"`         // collected from completed rounds
	CurrentBet int64 `json:"current_bet"` // bet level of the running round
	PrevRaise  int64 `json:"prev_raise"`  // last full raise size this round

	Community []card.Card `json:"community,omitempty"`
	Deck      []card.Card `json:"deck,omitempty"`

	// RunoutPending is set when no further betting is possible but board
	// cards remain; the table layer decides between a straight runout and a
	// run-it-twice prompt.
	RunoutPending bool `json:"runout_pending"`

	Result *Result `json:"result,omitempty"`
}

// TotalChips sums stacks, live bets and the pot; constant for the lifetime of
// a hand until distribution moves pot chips back to stacks.
func (s *State) TotalChips() int64 {
	total := s.Pot
	for _, p := range s.Players {
		total += p.Stack + p.Bet
	}
	return total
}

func (s *State) PlayerIdx(playerID string) int {
	for idx, p := range s.Players {
		if p.ID == playerID {
			return idx
		}
	}
	return -1
}

// ButtonOrder lists player ids clockwise starting after the dealer; pot
// settlement uses it for odd-chip placement.
func (s *State) ButtonOrder() []string {
	order := make([]string, 0, len(s.Players))
	for i := 1; i <= len(s.Players); i++ {
		order = append(order, s.Players[(s.DealerIdx+i)%len(s.Players)].ID)
	}
	return order
}

func (s *State) nonFolded() []*PlayerState {
	players := make([]*PlayerState, 0, len(s.Players))
	for _, p := range s.Players {
		if !p.Folded {
			players = append(players, p)
		}
	}
	return players
}

// actionable players can still make a betting decision.
func (s *State) actionableCount() int {
	count := 0
	for _, p := range s.Players {
		if !p.Folded && !p.AllIn {
			count++
		}
	}
	return count
}

// nextActorIdx finds the next player clockwise from idx who can act, or -1.
func (s *State) nextActorIdx(from int) int {
	for i := 1; i <= len(s.Players); i++ {
		idx := (from + i) % len(s.Players)
		p := s.Players[idx]
		if !p.Folded && !p.AllIn {
			return idx
		}
	}
	return -1
}

// roundComplete reports whether every player who can act has acted and
// matched the current bet.
func (s *State) roundComplete() bool {
	for _, p := range s.Players {
		if p.Folded || p.AllIn {
			continue
		}
		if !p.HasActed || p.Bet != s.CurrentBet {
			return false
		}
	}
	return true
}

// collectBets moves round bets into the pot and resets per-round state.
func (s *State) collectBets() {
	for _, p := range s.Players {
		s.Pot += p.Bet
		p.Bet = 0
		p.HasActed = false
		p.CannotRaise = false
	}
	s.CurrentBet = 0
	s.PrevRaise = 0
	s.CurrentIdx = -1
}
