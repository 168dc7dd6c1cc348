package hand

import (
	"sort"

	"github.com/weedbox/pokerroom/card"
)

// Eight-or-better lows: five distinct ranks, each eight or lower, ace counts
// as one, straights and flushes do not disqualify.

func lowRank(r card.Rank) int {
	if r == card.Ace {
		return 1
	}
	return int(r)
}

// EvaluateLow returns the best qualifying low from any five of the given
// cards, or false when no low qualifies. Stud hi/lo passes all seven cards.
func EvaluateLow(cards []card.Card) (LowRanking, bool) {
	if len(cards) < 5 {
		return LowRanking{}, false
	}

	best := LowRanking{}
	found := false
	combination := make([]card.Card, 5)
	combinations(len(cards), 5, func(idx []int) {
		for i, pos := range idx {
			combination[i] = cards[pos]
		}
		if low, ok := low5(combination); ok {
			if !found || low.Strength < best.Strength {
				best = low
				found = true
			}
		}
	})
	return best, found
}

// EvaluateLowOmaha applies the Omaha constraint to the low: exactly two hole
// cards and three community cards.
func EvaluateLowOmaha(hole, community []card.Card) (LowRanking, bool) {
	if len(hole) != 4 || len(community) < 3 {
		return LowRanking{}, false
	}

	best := LowRanking{}
	found := false
	five := make([]card.Card, 5)
	combinations(len(hole), 2, func(holeIdx []int) {
		five[0] = hole[holeIdx[0]]
		five[1] = hole[holeIdx[1]]
		combinations(len(community), 3, func(boardIdx []int) {
			for i, pos := range boardIdx {
				five[2+i] = community[pos]
			}
			if low, ok := low5(five); ok {
				if !found || low.Strength < best.Strength {
					best = low
					found = true
				}
			}
		})
	})
	return best, found
}

func low5(five []card.Card) (LowRanking, bool) {
	seen := make(map[int]bool, 5)
	for _, c := range five {
		lr := lowRank(c.Rank)
		if lr > 8 || seen[lr] {
			return LowRanking{}, false
		}
		seen[lr] = true
	}

	sorted := make([]card.Card, 5)
	copy(sorted, five)
	sort.Slice(sorted, func(i, j int) bool {
		return lowRank(sorted[i].Rank) > lowRank(sorted[j].Rank)
	})

	low := LowRanking{BestFive: sorted}
	for i, c := range sorted {
		low.Ranks[i] = lowRank(c.Rank)
		low.Strength = low.Strength<<4 | uint32(low.Ranks[i])
	}
	return low, true
}
