package hand

import (
	"strings"

	"github.com/weedbox/pokerroom/card"
)

type Class int

const (
	Class_HighCard Class = iota + 1
	Class_Pair
	Class_TwoPair
	Class_ThreeOfAKind
	Class_Straight
	Class_Flush
	Class_FullHouse
	Class_FourOfAKind
	Class_StraightFlush
	Class_RoyalFlush
)

var classNames = map[Class]string{
	Class_HighCard:      "High Card",
	Class_Pair:          "Pair",
	Class_TwoPair:       "Two Pair",
	Class_ThreeOfAKind:  "Three of a Kind",
	Class_Straight:      "Straight",
	Class_Flush:         "Flush",
	Class_FullHouse:     "Full House",
	Class_FourOfAKind:   "Four of a Kind",
	Class_StraightFlush: "Straight Flush",
	Class_RoyalFlush:    "Royal Flush",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Ranking scores one high hand. Strength is a total order: a higher value
// always beats a lower one, equal values split.
type Ranking struct {
	Class    Class       `json:"class"`
	Name     string      `json:"name"`
	BestFive []card.Card `json:"best_five"`
	Kickers  []card.Rank `json:"kickers"`
	Strength uint32      `json:"strength"`
}

func (r Ranking) String() string {
	literals := make([]string, 0, len(r.BestFive))
	for _, c := range r.BestFive {
		literals = append(literals, c.String())
	}
	return r.Name + " (" + strings.Join(literals, " ") + ")"
}

// Compare returns -1, 0 or 1 for a losing to, splitting with or beating b.
// Class compares first, then kickers from highest significance down; both are
// folded into Strength already.
func Compare(a, b Ranking) int {
	if a.Strength < b.Strength {
		return -1
	}
	if a.Strength > b.Strength {
		return 1
	}
	return 0
}

// packStrength folds the class and up to five tie-break ranks, most
// significant first, into one comparable value.
func packStrength(class Class, tiebreaks []card.Rank) uint32 {
	strength := uint32(class) << 20
	shift := 16
	for _, r := range tiebreaks {
		if shift < 0 {
			break
		}
		strength |= uint32(r) << shift
		shift -= 4
	}
	return strength
}

// LowRanking scores a qualifying eight-or-better low hand. Ranks are held
// descending with the ace as one; a lower Strength is a better low.
type LowRanking struct {
	Ranks    [5]int      `json:"ranks"`
	BestFive []card.Card `json:"best_five"`
	Strength uint32      `json:"strength"`
}

// CompareLow returns -1 if a is the better (lower) hand, 1 if b is, else 0.
func CompareLow(a, b LowRanking) int {
	if a.Strength < b.Strength {
		return -1
	}
	if a.Strength > b.Strength {
		return 1
	}
	return 0
}
