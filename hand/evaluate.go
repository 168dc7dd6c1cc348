package hand

import (
	"errors"
	"sort"

	"github.com/weedbox/pokerroom/card"
)

var (
	ErrNotEnoughCards = errors.New("hand: not enough cards to evaluate")
	ErrOmahaHoleCount = errors.New("hand: omaha requires exactly four hole cards")
)

// Evaluate returns the best five-card high hand from five to seven cards,
// searching every five-card combination. Hold'em passes hole+community, stud
// passes the player's full seven cards.
func Evaluate(cards []card.Card) (Ranking, error) {
	if len(cards) < 5 {
		return Ranking{}, ErrNotEnoughCards
	}

	best := Ranking{}
	combination := make([]card.Card, 5)
	combinations(len(cards), 5, func(idx []int) {
		for i, pos := range idx {
			combination[i] = cards[pos]
		}
		r := evaluate5(combination)
		if r.Strength > best.Strength {
			best = r
		}
	})
	return best, nil
}

// EvaluateOmaha applies the Omaha constraint: exactly two of four hole cards
// and exactly three community cards, maximized over all C(4,2)*C(5,3)
// combinations.
func EvaluateOmaha(hole, community []card.Card) (Ranking, error) {
	if len(hole) != 4 {
		return Ranking{}, ErrOmahaHoleCount
	}
	if len(community) < 3 {
		return Ranking{}, ErrNotEnoughCards
	}

	best := Ranking{}
	five := make([]card.Card, 5)
	combinations(len(hole), 2, func(holeIdx []int) {
		five[0] = hole[holeIdx[0]]
		five[1] = hole[holeIdx[1]]
		combinations(len(community), 3, func(boardIdx []int) {
			for i, pos := range boardIdx {
				five[2+i] = community[pos]
			}
			r := evaluate5(five)
			if r.Strength > best.Strength {
				best = r
			}
		})
	})
	return best, nil
}

// combinations invokes fn with every k-sized index combination of n items.
// The slice passed to fn is reused between calls.
func combinations(n, k int, fn func(idx []int)) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)

		// advance to the next combination
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// evaluate5 scores exactly five cards.
func evaluate5(five []card.Card) Ranking {
	sorted := make([]card.Card, 5)
	copy(sorted, five)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rank > sorted[j].Rank })

	flush := true
	for i := 1; i < 5; i++ {
		if sorted[i].Suit != sorted[0].Suit {
			flush = false
			break
		}
	}

	straightHigh, straight := straightHighRank(sorted)

	counts := make(map[card.Rank]int)
	for _, c := range sorted {
		counts[c.Rank]++
	}

	// groups sorted by count desc, then rank desc
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

	var class Class
	var tiebreaks []card.Rank

	switch {
	case straight && flush && straightHigh == card.Ace:
		class = Class_RoyalFlush
		tiebreaks = []card.Rank{straightHigh}
	case straight && flush:
		class = Class_StraightFlush
		tiebreaks = []card.Rank{straightHigh}
	case groups[0].count == 4:
		class = Class_FourOfAKind
		tiebreaks = []card.Rank{groups[0].rank, groups[1].rank}
	case groups[0].count == 3 && groups[1].count == 2:
		class = Class_FullHouse
		tiebreaks = []card.Rank{groups[0].rank, groups[1].rank}
	case flush:
		class = Class_Flush
		tiebreaks = ranksOf(sorted)
	case straight:
		class = Class_Straight
		tiebreaks = []card.Rank{straightHigh}
	case groups[0].count == 3:
		class = Class_ThreeOfAKind
		tiebreaks = []card.Rank{groups[0].rank, groups[1].rank, groups[2].rank}
	case groups[0].count == 2 && groups[1].count == 2:
		class = Class_TwoPair
		tiebreaks = []card.Rank{groups[0].rank, groups[1].rank, groups[2].rank}
	case groups[0].count == 2:
		class = Class_Pair
		tiebreaks = []card.Rank{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank}
	default:
		class = Class_HighCard
		tiebreaks = ranksOf(sorted)
	}

	best := make([]card.Card, 5)
	if straight && straightHigh == card.Five && sorted[0].Rank == card.Ace {
		// wheel: A 5 4 3 2 reads as 5-high
		copy(best, sorted[1:])
		best[4] = sorted[0]
	} else {
		copy(best, sorted)
	}

	return Ranking{
		Class:    class,
		Name:     class.String(),
		BestFive: best,
		Kickers:  tiebreaks,
		Strength: packStrength(class, tiebreaks),
	}
}

// straightHighRank expects cards sorted by rank descending.
func straightHighRank(sorted []card.Card) (card.Rank, bool) {
	run := true
	for i := 1; i < 5; i++ {
		if sorted[i-1].Rank != sorted[i].Rank+1 {
			run = false
			break
		}
	}
	if run {
		return sorted[0].Rank, true
	}

	// wheel: A 5 4 3 2
	if sorted[0].Rank == card.Ace &&
		sorted[1].Rank == card.Five && sorted[2].Rank == card.Four &&
		sorted[3].Rank == card.Three && sorted[4].Rank == card.Two {
		return card.Five, true
	}
	return 0, false
}

func ranksOf(cards []card.Card) []card.Rank {
	ranks := make([]card.Rank, len(cards))
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	return ranks
}
