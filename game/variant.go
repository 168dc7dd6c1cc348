package game

import (
	"errors"
	"sort"

	"github.com/weedbox/pokerroom/card"
	"github.com/weedbox/pokerroom/hand"
)

var ErrUnsupportedVariant = errors.New("game: unsupported variant")

// rules is the strategy implemented per poker variant: how streets deal, how
// hands evaluate and whether a qualifying low splits the pot.
type rules interface {
	streets() []Stage
	dealInitial(s *State) error
	dealStreet(s *State, stage Stage) error
	evaluate(p *PlayerState, community []card.Card) (hand.Ranking, error)
	evaluateLow(p *PlayerState, community []card.Card) (hand.LowRanking, bool)
	hiLo() bool
	stud() bool
}

func rulesFor(variant Variant) (rules, error) {
	switch variant {
	case Variant_Holdem:
		return &communityRules{holeCount: 2}, nil
	case Variant_Omaha:
		return &communityRules{holeCount: 4, omaha: true}, nil
	case Variant_OmahaHiLo:
		return &communityRules{holeCount: 4, omaha: true, lowSplit: true}, nil
	case Variant_SevenStud:
		return &studRules{}, nil
	case Variant_SevenStudHiLo:
		return &studRules{lowSplit: true}, nil
	}
	return nil, ErrUnsupportedVariant
}

// communityRules covers hold'em and both Omaha games.
type communityRules struct {
	holeCount int
	omaha     bool
	lowSplit  bool
}

func (r *communityRules) streets() []Stage {
	return []Stage{Stage_Preflop, Stage_Flop, Stage_Turn, Stage_River}
}

func (r *communityRules) dealInitial(s *State) error {
	for _, p := range s.Players {
		cards, err := drawFromState(s, r.holeCount)
		if err != nil {
			return err
		}
		p.HoleCards = cards
	}
	return nil
}

func (r *communityRules) dealStreet(s *State, stage Stage) error {
	count := 0
	switch stage {
	case Stage_Flop:
		count = 3
	case Stage_Turn, Stage_River:
		count = 1
	}
	cards, err := drawFromState(s, count)
	if err != nil {
		return err
	}
	s.Community = append(s.Community, cards...)
	return nil
}

func (r *communityRules) evaluate(p *PlayerState, community []card.Card) (hand.Ranking, error) {
	if r.omaha {
		return hand.EvaluateOmaha(p.HoleCards, community)
	}
	return hand.Evaluate(append(append([]card.Card{}, p.HoleCards...), community...))
}

func (r *communityRules) evaluateLow(p *PlayerState, community []card.Card) (hand.LowRanking, bool) {
	if !r.lowSplit {
		return hand.LowRanking{}, false
	}
	return hand.EvaluateLowOmaha(p.HoleCards, community)
}

func (r *communityRules) hiLo() bool { return r.lowSplit }
func (r *communityRules) stud() bool { return false }

// studRules covers seven-card stud and stud hi/lo. There is no community
// board; players hold their own mix of down and up cards.
type studRules struct {
	lowSplit bool
}

func (r *studRules) streets() []Stage {
	return []Stage{Stage_ThirdStreet, Stage_FourthStreet, Stage_FifthStreet, Stage_SixthStreet, Stage_SeventhStreet}
}

func (r *studRules) dealInitial(s *State) error {
	for _, p := range s.Players {
		down, err := drawFromState(s, 2)
		if err != nil {
			return err
		}
		up, err := drawFromState(s, 1)
		if err != nil {
			return err
		}
		p.DownCards = down
		p.UpCards = up
	}
	return nil
}

func (r *studRules) dealStreet(s *State, stage Stage) error {
	for _, p := range s.Players {
		if p.Folded {
			continue
		}
		c, err := drawFromState(s, 1)
		if err != nil {
			return err
		}
		if stage == Stage_SeventhStreet {
			p.DownCards = append(p.DownCards, c...)
		} else {
			p.UpCards = append(p.UpCards, c...)
		}
	}
	return nil
}

func (r *studRules) evaluate(p *PlayerState, community []card.Card) (hand.Ranking, error) {
	return hand.Evaluate(p.allCards(nil))
}

func (r *studRules) evaluateLow(p *PlayerState, community []card.Card) (hand.LowRanking, bool) {
	if !r.lowSplit {
		return hand.LowRanking{}, false
	}
	return hand.EvaluateLow(p.allCards(nil))
}

func (r *studRules) hiLo() bool { return r.lowSplit }
func (r *studRules) stud() bool { return true }

func drawFromState(s *State, n int) ([]card.Card, error) {
	if n > len(s.Deck) {
		return nil, card.ErrDeckExhausted
	}
	drawn := make([]card.Card, n)
	copy(drawn, s.Deck[:n])
	s.Deck = s.Deck[n:]
	return drawn, nil
}

// bringInIdx picks the third-street forced bettor: lowest up-card by rank,
// suit order clubs low to spades high breaking ties.
func bringInIdx(s *State) int {
	best := -1
	for idx, p := range s.Players {
		if p.Folded || len(p.UpCards) == 0 {
			continue
		}
		if best == -1 || upCardLess(p.UpCards[0], s.Players[best].UpCards[0]) {
			best = idx
		}
	}
	return best
}

func upCardLess(a, b card.Card) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	return a.Suit < b.Suit
}

// studFirstToActIdx finds the fourth-street-onward opener: the strongest
// visible up-card hand, ties broken by the highest card's suit.
func studFirstToActIdx(s *State) int {
	best := -1
	var bestScore uint64
	for idx, p := range s.Players {
		if p.Folded || p.AllIn {
			continue
		}
		score := upCardScore(p.UpCards)
		if best == -1 || score > bestScore {
			best = idx
			bestScore = score
		}
	}
	return best
}

// upCardScore orders partial visible hands: bigger groups first, then ranks
// high to low, then the top card's suit.
func upCardScore(ups []card.Card) uint64 {
	if len(ups) == 0 {
		return 0
	}

	counts := make(map[card.Rank]int)
	for _, c := range ups {
		counts[c.Rank]++
	}
	type group struct {
		rank  card.Rank
		count int
	}
	groups := make([]group, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, group{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	score := uint64(groups[0].count) << 60
	shift := 52
	for _, g := range groups {
		score |= uint64(g.rank) << shift
		shift -= 4
	}

	top := ups[0]
	for _, c := range ups[1:] {
		if c.Rank > top.Rank || (c.Rank == top.Rank && c.Suit > top.Suit) {
			top = c
		}
	}
	return score | uint64(top.Suit)
}
