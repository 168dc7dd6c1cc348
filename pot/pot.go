package pot

import (
	"errors"
	"sort"

	"github.com/weedbox/pokerroom/hand"
)

var (
	ErrNoContributions = errors.New("pot: no contributions to settle")
	ErrNoEligibleHands = errors.New("pot: no ranked hand for an eligible player")
)

// Contribution is one player's total chips committed over the whole hand.
type Contribution struct {
	PlayerID string `json:"player_id"`
	Amount   int64  `json:"amount"`
	Folded   bool   `json:"folded"`
}

// Layer is one side-pot layer. Eligible holds the non-folded players who
// contributed the full layer threshold, in input order.
type Layer struct {
	Amount   int64    `json:"amount"`
	Eligible []string `json:"eligible"`
}

// RankedHand carries a showdown player's high hand and, for hi/lo variants,
// their qualifying low. Low stays nil when absent or not qualifying.
type RankedHand struct {
	PlayerID string           `json:"player_id"`
	High     hand.Ranking     `json:"high"`
	Low      *hand.LowRanking `json:"low,omitempty"`
}

// BuildLayers partitions contributions into side-pot layers at every distinct
// positive contribution threshold, ascending. Folded chips stay in the layers
// they reached but folded players are never eligible. The layer amounts always
// sum to the total contributed.
func BuildLayers(contribs []Contribution) []Layer {
	thresholds := make([]int64, 0, len(contribs))
	seen := make(map[int64]bool)
	for _, c := range contribs {
		if c.Amount > 0 && !seen[c.Amount] {
			seen[c.Amount] = true
			thresholds = append(thresholds, c.Amount)
		}
	}
	sort.Slice(thresholds, func(i, j int) bool { return thresholds[i] < thresholds[j] })

	layers := make([]Layer, 0, len(thresholds))
	prev := int64(0)
	for _, threshold := range thresholds {
		layer := Layer{}
		for _, c := range contribs {
			portion := c.Amount
			if portion > threshold {
				portion = threshold
			}
			if portion > prev {
				layer.Amount += portion - prev
			}
			if !c.Folded && c.Amount >= threshold {
				layer.Eligible = append(layer.Eligible, c.PlayerID)
			}
		}
		layers = append(layers, layer)
		prev = threshold
	}

	// adjacent layers with identical eligibility collapse into one pot
	merged := make([]Layer, 0, len(layers))
	for _, layer := range layers {
		if len(merged) > 0 && sameEligible(merged[len(merged)-1].Eligible, layer.Eligible) {
			merged[len(merged)-1].Amount += layer.Amount
			continue
		}
		merged = append(merged, layer)
	}
	return merged
}

func sameEligible(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Settle distributes every layer to its winners. buttonOrder lists player ids
// clockwise starting from the seat after the button and decides where odd
// remainder chips go. When any eligible player holds a qualifying low, the
// layer splits half high, half low, odd chip to the high side.
func Settle(contribs []Contribution, hands []RankedHand, buttonOrder []string) (map[string]int64, error) {
	if len(contribs) == 0 {
		return nil, ErrNoContributions
	}

	handByID := make(map[string]RankedHand, len(hands))
	for _, h := range hands {
		handByID[h.PlayerID] = h
	}

	distribution := make(map[string]int64)
	for _, layer := range BuildLayers(contribs) {
		if len(layer.Eligible) == 1 {
			// an uncalled layer returns to the over-bettor
			distribution[layer.Eligible[0]] += layer.Amount
			continue
		}

		var bestHigh *hand.Ranking
		var bestLow *hand.LowRanking
		for _, id := range layer.Eligible {
			h, ok := handByID[id]
			if !ok {
				return nil, ErrNoEligibleHands
			}
			if bestHigh == nil || hand.Compare(h.High, *bestHigh) > 0 {
				high := h.High
				bestHigh = &high
			}
			if h.Low != nil && (bestLow == nil || hand.CompareLow(*h.Low, *bestLow) < 0) {
				low := *h.Low
				bestLow = &low
			}
		}

		highWinners := make([]string, 0, len(layer.Eligible))
		lowWinners := make([]string, 0, len(layer.Eligible))
		for _, id := range layer.Eligible {
			h := handByID[id]
			if hand.Compare(h.High, *bestHigh) == 0 {
				highWinners = append(highWinners, id)
			}
			if bestLow != nil && h.Low != nil && hand.CompareLow(*h.Low, *bestLow) == 0 {
				lowWinners = append(lowWinners, id)
			}
		}

		if bestLow == nil {
			award(distribution, layer.Amount, highWinners, buttonOrder)
			continue
		}

		highHalf := layer.Amount - layer.Amount/2 // odd chip to the high side
		lowHalf := layer.Amount / 2
		award(distribution, highHalf, highWinners, buttonOrder)
		award(distribution, lowHalf, lowWinners, buttonOrder)
	}

	return distribution, nil
}

// award splits amount equally, handing remainder chips one by one to the
// earliest winners in button order.
func award(distribution map[string]int64, amount int64, winners, buttonOrder []string) {
	if len(winners) == 0 || amount <= 0 {
		return
	}

	ordered := orderByButton(winners, buttonOrder)
	share := amount / int64(len(ordered))
	remainder := amount % int64(len(ordered))
	for i, id := range ordered {
		distribution[id] += share
		if int64(i) < remainder {
			distribution[id]++
		}
	}
}

func orderByButton(winners, buttonOrder []string) []string {
	if len(buttonOrder) == 0 {
		return winners
	}

	isWinner := make(map[string]bool, len(winners))
	for _, id := range winners {
		isWinner[id] = true
	}

	ordered := make([]string, 0, len(winners))
	for _, id := range buttonOrder {
		if isWinner[id] {
			ordered = append(ordered, id)
			delete(isWinner, id)
		}
	}
	// winners missing from the order list keep their input position
	for _, id := range winners {
		if isWinner[id] {
			ordered = append(ordered, id)
		}
	}
	return ordered
}
