package pot

// Mode selects how the maximum wager is bounded.
type Mode string

const (
	Mode_NoLimit  Mode = "no_limit"
	Mode_PotLimit Mode = "pot_limit"
)

// BoundsInput describes the betting situation from the acting player's view.
// All amounts are in chips; bets are "to" amounts for the current street.
type BoundsInput struct {
	Mode       Mode  `json:"mode"`
	Pot        int64 `json:"pot"`         // collected from previous streets
	LiveBets   int64 `json:"live_bets"`   // sum of every player's bet this street
	CurrentBet int64 `json:"current_bet"` // table bet level this street
	PrevRaise  int64 `json:"prev_raise"`  // size of the last raise, 0 if none
	BigBlind   int64 `json:"big_blind"`
	MyBet      int64 `json:"my_bet"`   // my chips already in this street
	MyStack    int64 `json:"my_stack"` // chips behind
}

// BetBounds returns the minimum and maximum legal total bet for the street.
// A short all-in below the minimum is legal, so the minimum is capped at the
// player's all-in level. No-limit caps the maximum at all-in; pot-limit caps
// it at the pot after a hypothetical call.
func BetBounds(in BoundsInput) (minBet, maxBet int64) {
	allIn := in.MyBet + in.MyStack

	if in.CurrentBet == 0 {
		minBet = in.BigBlind
	} else {
		raise := in.PrevRaise
		if raise < in.BigBlind {
			raise = in.BigBlind
		}
		minBet = in.CurrentBet + raise
	}
	if minBet > allIn {
		minBet = allIn
	}

	switch in.Mode {
	case Mode_PotLimit:
		callAmount := in.CurrentBet - in.MyBet
		if callAmount < 0 {
			callAmount = 0
		}
		potAfterCall := in.Pot + in.LiveBets + callAmount
		maxBet = in.CurrentBet + potAfterCall
		if maxBet > allIn {
			maxBet = allIn
		}
	default:
		maxBet = allIn
	}

	if maxBet < minBet {
		maxBet = minBet
	}
	return minBet, maxBet
}
