package game

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/weedbox/pokerroom/card"
	"github.com/weedbox/pokerroom/pot"
)

var (
	ErrInvalidOptions     = errors.New("game: invalid options")
	ErrNotEnoughPlayers   = errors.New("game: not enough players with chips")
	ErrInvalidAction      = errors.New("game: invalid action")
	ErrNotPlayersTurn     = errors.New("game: not this player's turn")
	ErrInvalidWager       = errors.New("game: wager outside legal bounds")
	ErrRaiseNotAllowed    = errors.New("game: action not reopened to player")
	ErrHandFinished       = errors.New("game: hand already finished")
	ErrRunoutNotPending   = errors.New("game: no runout pending")
	ErrInvalidRuns        = errors.New("game: run count out of range")
	ErrRunItTwiceBoards   = errors.New("game: run count does not match boards")
	ErrRunItTwiceVariant  = errors.New("game: variant has no community board")
	ErrRunItTwiceNotReady = errors.New("game: run-it-twice requires an all-in runout")
)

// PlayerSeed describes one participant entering a new hand.
type PlayerSeed struct {
	ID    string
	Name  string
	Seat  int
	Stack int64
}

// Options configures a single hand. A nil Deck means a fresh crypto-shuffled
// deck; tests inject ordered decks.
type Options struct {
	HandID     string
	Variant    Variant
	Mode       pot.Mode
	SB         int64
	BB         int64
	Ante       int64
	BringIn    int64 // stud; defaults to half the big blind
	DealerSeat int
	Players    []PlayerSeed
	Deck       []card.Card
}

// Game drives one hand from deal to settlement. It is not safe for concurrent
// use; the table engine serializes access.
type Game struct {
	state *State
	rules rules
}

func NewGame(opts Options) (*Game, error) {
	if opts.BB <= 0 || opts.SB <= 0 || opts.SB > opts.BB {
		return nil, ErrInvalidOptions
	}

	rules, err := rulesFor(opts.Variant)
	if err != nil {
		return nil, err
	}

	seeds := make([]PlayerSeed, 0, len(opts.Players))
	for _, seed := range opts.Players {
		if seed.Stack > 0 {
			seeds = append(seeds, seed)
		}
	}
	if len(seeds) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].Seat < seeds[j].Seat })

	handID := opts.HandID
	if handID == "" {
		handID = uuid.New().String()
	}

	mode := opts.Mode
	if mode == "" {
		mode = pot.Mode_NoLimit
	}

	state := &State{
		HandID:     handID,
		Variant:    opts.Variant,
		Mode:       mode,
		SB:         opts.SB,
		BB:         opts.BB,
		Ante:       opts.Ante,
		BringIn:    opts.BringIn,
		SBIdx:      -1,
		BBIdx:      -1,
		BringInIdx: -1,
		CurrentIdx: -1,
	}
	for _, seed := range seeds {
		state.Players = append(state.Players, &PlayerState{
			ID:    seed.ID,
			Name:  seed.Name,
			Seat:  seed.Seat,
			Stack: seed.Stack,
		})
	}

	state.DealerIdx = 0
	for idx, p := range state.Players {
		if p.Seat == opts.DealerSeat {
			state.DealerIdx = idx
			break
		}
	}

	if opts.Deck != nil {
		state.Deck = append([]card.Card{}, opts.Deck...)
	} else {
		deck := card.NewDeck()
		deck.Shuffle()
		state.Deck = deck.Remaining()
	}

	g := &Game{state: state, rules: rules}

	state.Stage = rules.streets()[0]
	if err := rules.dealInitial(state); err != nil {
		return nil, err
	}

	if rules.stud() {
		g.openStud()
	} else {
		g.openBlinds()
	}

	// everyone may already be all-in from the forced bets
	if state.roundComplete() {
		g.endRound()
	}
	return g, nil
}

// Restore rebuilds a game around a snapshotted state.
func Restore(state *State) (*Game, error) {
	rules, err := rulesFor(state.Variant)
	if err != nil {
		return nil, err
	}
	return &Game{state: state, rules: rules}, nil
}

func (g *Game) State() *State {
	return g.state
}

func (g *Game) openBlinds() {
	s := g.state
	if len(s.Players) == 2 {
		s.SBIdx = s.DealerIdx
		s.BBIdx = (s.DealerIdx + 1) % 2
	} else {
		s.SBIdx = (s.DealerIdx + 1) % len(s.Players)
		s.BBIdx = (s.DealerIdx + 2) % len(s.Players)
	}

	g.postWager(s.Players[s.SBIdx], s.SB)
	g.postWager(s.Players[s.BBIdx], s.BB)
	if s.Ante > 0 {
		for _, p := range s.Players {
			g.postAnte(p, s.Ante)
		}
	}

	s.CurrentBet = s.BB
	s.PrevRaise = s.BB
	s.CurrentIdx = s.nextActorIdx(s.BBIdx)
}

func (g *Game) openStud() {
	s := g.state
	if s.Ante > 0 {
		for _, p := range s.Players {
			g.postAnte(p, s.Ante)
		}
	}

	bringIn := s.BringIn
	if bringIn <= 0 {
		bringIn = s.BB / 2
		if bringIn <= 0 {
			bringIn = 1
		}
		s.BringIn = bringIn
	}

	s.BringInIdx = bringInIdx(s)
	g.postWager(s.Players[s.BringInIdx], bringIn)
	s.CurrentBet = s.Players[s.BringInIdx].Bet
	s.PrevRaise = 0
	s.CurrentIdx = s.nextActorIdx(s.BringInIdx)
}

// postWager commits chips toward the current bet, capped at the stack.
func (g *Game) postWager(p *PlayerState, amount int64) {
	if amount > p.Stack {
		amount = p.Stack
	}
	p.Stack -= amount
	p.Bet += amount
	p.TotalBet += amount
	if p.Stack == 0 {
		p.AllIn = true
	}
}

// postAnte goes straight to the pot without counting toward the street bet.
func (g *Game) postAnte(p *PlayerState, amount int64) {
	if amount > p.Stack {
		amount = p.Stack
	}
	p.Stack -= amount
	p.TotalBet += amount
	g.state.Pot += amount
	if p.Stack == 0 {
		p.AllIn = true
	}
}

func (g *Game) ensureTurn(playerIdx int) error {
	s := g.state
	if s.Stage == Stage_Settled || s.Stage == Stage_Showdown {
		return ErrHandFinished
	}
	if s.RunoutPending {
		return ErrInvalidAction
	}
	if playerIdx < 0 || playerIdx >= len(s.Players) {
		return ErrInvalidAction
	}
	if s.CurrentIdx != playerIdx {
		return ErrNotPlayersTurn
	}
	p := s.Players[playerIdx]
	if p.Folded || p.AllIn {
		return ErrInvalidAction
	}
	return nil
}

func (g *Game) Fold(playerIdx int) error {
	if err := g.ensureTurn(playerIdx); err != nil {
		return err
	}

	p := g.state.Players[playerIdx]
	p.Folded = true
	p.HasActed = true
	g.advance()
	return nil
}

func (g *Game) Check(playerIdx int) error {
	if err := g.ensureTurn(playerIdx); err != nil {
		return err
	}

	p := g.state.Players[playerIdx]
	if p.Bet != g.state.CurrentBet {
		return ErrInvalidAction
	}
	p.HasActed = true
	g.advance()
	return nil
}

func (g *Game) Call(playerIdx int) error {
	if err := g.ensureTurn(playerIdx); err != nil {
		return err
	}

	s := g.state
	p := s.Players[playerIdx]
	if s.CurrentBet <= p.Bet {
		return ErrInvalidAction
	}
	g.postWager(p, s.CurrentBet-p.Bet)
	p.HasActed = true
	g.advance()
	return nil
}

// Bet opens the betting; toAmount is the total street wager.
func (g *Game) Bet(playerIdx int, toAmount int64) error {
	if g.state.CurrentBet > 0 {
		return ErrInvalidAction
	}
	return g.wagerTo(playerIdx, toAmount)
}

// Raise increases the current bet; toAmount is the total street wager, not
// the increment.
func (g *Game) Raise(playerIdx int, toAmount int64) error {
	if g.state.CurrentBet == 0 {
		return ErrInvalidAction
	}
	return g.wagerTo(playerIdx, toAmount)
}

func (g *Game) wagerTo(playerIdx int, toAmount int64) error {
	if err := g.ensureTurn(playerIdx); err != nil {
		return err
	}

	s := g.state
	p := s.Players[playerIdx]
	if toAmount <= s.CurrentBet {
		return ErrInvalidWager
	}
	if s.CurrentBet > 0 && p.CannotRaise {
		return ErrRaiseNotAllowed
	}

	minBet, maxBet := g.Bounds(playerIdx)
	allIn := p.Bet + p.Stack
	if toAmount > maxBet {
		return ErrInvalidWager
	}
	if toAmount < minBet && toAmount != allIn {
		return ErrInvalidWager
	}

	raiseSize := toAmount - s.CurrentBet
	fullRaise := raiseSize >= s.minRaiseSize()

	g.postWager(p, toAmount-p.Bet)
	s.CurrentBet = toAmount
	p.HasActed = true

	if fullRaise {
		s.PrevRaise = raiseSize
		for _, other := range s.Players {
			if other == p || other.Folded || other.AllIn {
				continue
			}
			other.HasActed = false
			other.CannotRaise = false
		}
	} else {
		// short all-in: players who already acted face the new amount but
		// cannot raise again
		for _, other := range s.Players {
			if other == p || other.Folded || other.AllIn {
				continue
			}
			if other.HasActed {
				other.HasActed = false
				other.CannotRaise = true
			}
		}
	}

	g.advance()
	return nil
}

// minRaiseSize is the smallest full raise increment over the current bet.
func (s *State) minRaiseSize() int64 {
	if s.PrevRaise > s.BB {
		return s.PrevRaise
	}
	return s.BB
}

func (s *State) liveBets() int64 {
	var total int64
	for _, p := range s.Players {
		total += p.Bet
	}
	return total
}

// Bounds returns the legal total wager range for the player this round.
func (g *Game) Bounds(playerIdx int) (minBet, maxBet int64) {
	s := g.state
	p := s.Players[playerIdx]
	return pot.BetBounds(pot.BoundsInput{
		Mode:       s.Mode,
		Pot:        s.Pot,
		LiveBets:   s.liveBets(),
		CurrentBet: s.CurrentBet,
		PrevRaise:  s.PrevRaise,
		BigBlind:   s.BB,
		MyBet:      p.Bet,
		MyStack:    p.Stack,
	})
}

// Timeout applies the player's default action: fold when facing a wager,
// check otherwise. Returns the action taken.
func (g *Game) Timeout(playerIdx int) (string, error) {
	if err := g.ensureTurn(playerIdx); err != nil {
		return "", err
	}
	if g.state.CurrentBet > g.state.Players[playerIdx].Bet {
		return "fold", g.Fold(playerIdx)
	}
	return "check", g.Check(playerIdx)
}

// advance drives the state machine after a committed action. A single
// remaining player always resolves the hand immediately.
func (g *Game) advance() {
	s := g.state
	if len(s.nonFolded()) == 1 {
		g.resolveFoldWin()
		return
	}
	if s.roundComplete() {
		g.endRound()
		return
	}
	s.CurrentIdx = s.nextActorIdx(s.CurrentIdx)
}

func (g *Game) endRound() {
	s := g.state
	s.collectBets()

	if s.actionableCount() <= 1 && g.hasMoreStreets() {
		// betting is over but cards remain: the table layer may offer
		// run-it-twice before the runout
		s.RunoutPending = true
		return
	}
	g.nextStreetOrShowdown()
}

func (g *Game) hasMoreStreets() bool {
	streets := g.rules.streets()
	return stageIndex(streets, g.state.Stage) < len(streets)-1
}

func stageIndex(streets []Stage, stage Stage) int {
	for i, s := range streets {
		if s == stage {
			return i
		}
	}
	return -1
}

func (g *Game) nextStreetOrShowdown() {
	s := g.state
	streets := g.rules.streets()
	idx := stageIndex(streets, s.Stage)
	if idx >= len(streets)-1 {
		s.Stage = Stage_Showdown
		g.settle()
		return
	}

	s.Stage = streets[idx+1]
	if err := g.rules.dealStreet(s, s.Stage); err != nil {
		// a 52-card deck always covers a full table; exhausting it means
		// corrupted state
		panic(err)
	}

	if g.rules.stud() {
		s.CurrentIdx = studFirstToActIdx(s)
	} else {
		s.CurrentIdx = s.nextActorIdx(s.DealerIdx)
	}
	if s.CurrentIdx == -1 || s.roundComplete() {
		g.endRound()
	}
}

// Runout deals every remaining street with no further betting and settles.
func (g *Game) Runout() error {
	s := g.state
	if !s.RunoutPending {
		return ErrRunoutNotPending
	}
	s.RunoutPending = false

	streets := g.rules.streets()
	for stageIndex(streets, s.Stage) < len(streets)-1 {
		s.Stage = streets[stageIndex(streets, s.Stage)+1]
		if err := g.rules.dealStreet(s, s.Stage); err != nil {
			return err
		}
	}
	s.Stage = Stage_Showdown
	g.settle()
	return nil
}

func (g *Game) resolveFoldWin() {
	s := g.state
	s.collectBets()
	s.RunoutPending = false

	winner := s.nonFolded()[0]
	total := s.Pot
	winner.Stack += total
	s.Pot = 0
	s.Result = &Result{
		WinByFold:    true,
		Pot:          total,
		Distribution: map[string]int64{winner.ID: total},
	}
	s.Stage = Stage_Settled
}

func (g *Game) settle() {
	s := g.state

	contribs := g.contributions()
	hands := g.rankedHands(s.Community)
	distribution, err := pot.Settle(contribs, hands, s.ButtonOrder())
	if err != nil {
		panic(err)
	}

	total := s.Pot
	for _, p := range s.Players {
		p.Stack += distribution[p.ID]
	}
	s.Pot = 0
	s.CurrentIdx = -1
	s.Result = &Result{
		Pot:          total,
		Distribution: distribution,
		Hands:        hands,
	}
	s.Stage = Stage_Settled
}

func (g *Game) contributions() []pot.Contribution {
	contribs := make([]pot.Contribution, 0, len(g.state.Players))
	for _, p := range g.state.Players {
		contribs = append(contribs, pot.Contribution{
			PlayerID: p.ID,
			Amount:   p.TotalBet,
			Folded:   p.Folded,
		})
	}
	return contribs
}

func (g *Game) rankedHands(community []card.Card) []pot.RankedHand {
	hands := make([]pot.RankedHand, 0, len(g.state.Players))
	for _, p := range g.state.Players {
		if p.Folded {
			continue
		}
		high, err := g.rules.evaluate(p, community)
		if err != nil {
			panic(err)
		}
		ranked := pot.RankedHand{PlayerID: p.ID, High: high}
		if low, ok := g.rules.evaluateLow(p, community); ok {
			ranked.Low = &low
		}
		hands = append(hands, ranked)
	}
	return hands
}
