package card

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Suit int8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

type Rank int8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Card is an immutable card value. The zero value is not a valid card.
type Card struct {
	Suit Suit
	Rank Rank
}

var suitChars = map[Suit]byte{Clubs: 'C', Diamonds: 'D', Hearts: 'H', Spades: 'S'}
var rankChars = map[Rank]byte{
	Two: '2', Three: '3', Four: '4', Five: '5', Six: '6', Seven: '7',
	Eight: '8', Nine: '9', Ten: 'T', Jack: 'J', Queen: 'Q', King: 'K', Ace: 'A',
}

func (s Suit) String() string {
	switch s {
	case Clubs:
		return "Clubs"
	case Diamonds:
		return "Diamonds"
	case Hearts:
		return "Hearts"
	case Spades:
		return "Spades"
	}
	return "Unknown"
}

// String returns the two-character form, e.g. "AS", "TD", "2C".
func (c Card) String() string {
	r, okr := rankChars[c.Rank]
	s, oks := suitChars[c.Suit]
	if !okr || !oks {
		return "??"
	}
	return string([]byte{r, s})
}

func (c Card) IsValid() bool {
	_, okr := rankChars[c.Rank]
	_, oks := suitChars[c.Suit]
	return okr && oks
}

// Parse accepts two-character card literals such as "AS", "td" or "2c".
func Parse(literal string) (Card, error) {
	literal = strings.ToUpper(strings.TrimSpace(literal))
	if len(literal) != 2 {
		return Card{}, fmt.Errorf("card: invalid literal %q", literal)
	}

	var c Card
	found := false
	for rank, ch := range rankChars {
		if ch == literal[0] {
			c.Rank = rank
			found = true
			break
		}
	}
	if !found {
		return Card{}, fmt.Errorf("card: invalid rank char %q", literal[0])
	}

	found = false
	for suit, ch := range suitChars {
		if ch == literal[1] {
			c.Suit = suit
			found = true
			break
		}
	}
	if !found {
		return Card{}, fmt.Errorf("card: invalid suit char %q", literal[1])
	}

	return c, nil
}

// MustParse is Parse for fixtures and tests.
func MustParse(literal string) Card {
	c, err := Parse(literal)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseAll parses a space-separated card list, e.g. "AS KS QS JS TS".
func ParseAll(literals string) ([]Card, error) {
	fields := strings.Fields(literals)
	cards := make([]Card, 0, len(fields))
	for _, field := range fields {
		c, err := Parse(field)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func MustParseAll(literals string) []Card {
	cards, err := ParseAll(literals)
	if err != nil {
		panic(err)
	}
	return cards
}

func (c Card) MarshalJSON() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("card: invalid card %d/%d", c.Suit, c.Rank)
	}
	return json.Marshal(c.String())
}

func (c *Card) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
