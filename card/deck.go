package card

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	mrand "math/rand"
)

var ErrDeckExhausted = errors.New("card: deck exhausted")

// Deck is an ordered set of undealt cards. Draws happen from the front.
type Deck struct {
	cards []Card
}

// NewDeck returns the 52-card set in canonical order.
func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for s := Clubs; s <= Spades; s++ {
		for r := Two; r <= Ace; r++ {
			cards = append(cards, Card{Suit: s, Rank: r})
		}
	}
	return &Deck{cards: cards}
}

// NewDeckFrom builds a deck over an explicit card list, used when re-dealing
// the undealt portion (run-it-twice) or restoring from a snapshot.
func NewDeckFrom(cards []Card) *Deck {
	copied := make([]Card, len(cards))
	copy(copied, cards)
	return &Deck{cards: copied}
}

// Shuffle permutes the deck with a crypto-seeded PRNG.
func (d *Deck) Shuffle() {
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(err)
	}
	d.ShuffleWithRand(mrand.New(mrand.NewSource(int64(binary.BigEndian.Uint64(seed[:])))))
}

// ShuffleWithRand performs a Fisher-Yates permutation using r, so callers can
// drive the deck from a deterministic stream.
func (d *Deck) ShuffleWithRand(r *mrand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

func (d *Deck) Draw(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	drawn := make([]Card, n)
	copy(drawn, d.cards[:n])
	d.cards = d.cards[n:]
	return drawn, nil
}

func (d *Deck) DrawOne() (Card, error) {
	cards, err := d.Draw(1)
	if err != nil {
		return Card{}, err
	}
	return cards[0], nil
}

// Remaining returns a copy of the undealt portion in order.
func (d *Deck) Remaining() []Card {
	copied := make([]Card, len(d.cards))
	copy(copied, d.cards)
	return copied
}

func (d *Deck) Count() int {
	return len(d.cards)
}
