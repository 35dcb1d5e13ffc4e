package engine

import (
	"fmt"
	"strings"
)

// Suit identifies a card suit. Jokers carry SuitNone.
type Suit uint8

const (
	SuitNone Suit = iota
	SuitHearts
	SuitDiamonds
	SuitClubs
	SuitSpades
)

// Rank identifies a card rank. Ace through King use their face numbers so that
// RankFour..RankKing double as run sequence indices.
type Rank uint8

const (
	RankAce   Rank = 1
	RankTwo   Rank = 2
	RankThree Rank = 3
	RankFour  Rank = 4
	RankFive  Rank = 5
	RankSix   Rank = 6
	RankSeven Rank = 7
	RankEight Rank = 8
	RankNine  Rank = 9
	RankTen   Rank = 10
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
	RankJoker Rank = 14
)

// Card is an immutable rank/suit pair. Two cards are equal iff rank and suit match;
// the two physical copies of a card in the stock are indistinguishable.
type Card struct {
	Rank Rank
	Suit Suit
}

// Joker is the only card without a suit.
var Joker = Card{Rank: RankJoker, Suit: SuitNone}

// NewCard constructs a Card from rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// Points returns the card's scoring value: Joker 20, everything else 10.
func (c Card) Points() int {
	if c.Rank == RankJoker {
		return 20
	}
	return 10
}

// IsWild reports whether the card substitutes inside a run (Two or Joker).
func (c Card) IsWild() bool { return c.Rank == RankTwo || c.Rank == RankJoker }

// IsRed reports whether the suit is Hearts or Diamonds.
func (c Card) IsRed() bool { return c.Suit == SuitHearts || c.Suit == SuitDiamonds }

// IsBlack reports whether the suit is Clubs or Spades.
func (c Card) IsBlack() bool { return c.Suit == SuitClubs || c.Suit == SuitSpades }

// IsRedThree reports whether the card is a privileged red three. Red threes never
// stay in a hand: they move to the team stash as soon as they are dealt or drawn.
func (c Card) IsRedThree() bool { return c.Rank == RankThree && c.IsRed() }

// IsBlackThree reports whether the card is a three of Clubs or Spades.
func (c Card) IsBlackThree() bool { return c.Rank == RankThree && c.IsBlack() }

// LocksDiscard reports whether the card locks the discard pile when it is on top.
func (c Card) LocksDiscard() bool {
	return c.IsBlackThree() || c.Rank == RankTwo || c.Rank == RankJoker
}

// seqIndex returns the card's position in a run. Four through King map to 4..13 and
// the Ace sits above the King at 14. Twos, threes and Jokers have no position (0).
func (c Card) seqIndex() int {
	switch {
	case c.Rank == RankAce:
		return 14
	case c.Rank >= RankFour && c.Rank <= RankKing:
		return int(c.Rank)
	}
	return 0
}

// ---------------------------------------------------------------------------
// Text form
// ---------------------------------------------------------------------------

var rankCodes = map[Rank]string{
	RankAce: "A", RankTwo: "2", RankThree: "3", RankFour: "4", RankFive: "5",
	RankSix: "6", RankSeven: "7", RankEight: "8", RankNine: "9", RankTen: "10",
	RankJack: "J", RankQueen: "Q", RankKing: "K",
}

var suitCodes = map[Suit]string{
	SuitHearts: "H", SuitDiamonds: "D", SuitClubs: "C", SuitSpades: "S",
}

func (r Rank) String() string {
	if r == RankJoker {
		return "JK"
	}
	if s, ok := rankCodes[r]; ok {
		return s
	}
	return fmt.Sprintf("Rank(%d)", uint8(r))
}

func (s Suit) String() string {
	if s == SuitNone {
		return ""
	}
	if code, ok := suitCodes[s]; ok {
		return code
	}
	return fmt.Sprintf("Suit(%d)", uint8(s))
}

// String renders the card as rank code plus suit letter ("10C", "AH"), or "JK".
func (c Card) String() string {
	if c.Rank == RankJoker {
		return "JK"
	}
	return c.Rank.String() + c.Suit.String()
}

// ParseCard parses the text form produced by String. "T" is accepted for Ten and
// the input is case-insensitive.
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "JK" || s == "JOKER" {
		return Joker, nil
	}
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	rankPart, suitPart := s[:len(s)-1], s[len(s)-1:]
	if rankPart == "T" {
		rankPart = "10"
	}
	var card Card
	for r, code := range rankCodes {
		if code == rankPart {
			card.Rank = r
			break
		}
	}
	for su, code := range suitCodes {
		if code == suitPart {
			card.Suit = su
			break
		}
	}
	if card.Rank == 0 || card.Suit == SuitNone {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	return card, nil
}

// MustParseCards parses a whitespace-separated list of cards and panics on error.
// Intended for tests and fixtures.
func MustParseCards(s string) []Card {
	fields := strings.Fields(s)
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (c Card) MarshalText() ([]byte, error) {
	if c.Rank == 0 || c.Rank > RankJoker {
		return nil, fmt.Errorf("cannot encode card with rank %d", uint8(c.Rank))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ---------------------------------------------------------------------------
// Display order
// ---------------------------------------------------------------------------

// suitOrder and displayRank give the conventional hand ordering: suits grouped as
// Hearts, Spades, Diamonds, Clubs, Jokers last; ranks 3..K, A, then the Two.
var suitOrder = [...]int{SuitHearts: 0, SuitSpades: 1, SuitDiamonds: 2, SuitClubs: 3, SuitNone: 4}

func displayRank(r Rank) int {
	switch r {
	case RankAce:
		return 14
	case RankTwo:
		return 15
	case RankJoker:
		return 16
	}
	return int(r)
}

// displayLess orders two cards for presentation.
func displayLess(a, b Card) bool {
	if suitOrder[a.Suit] != suitOrder[b.Suit] {
		return suitOrder[a.Suit] < suitOrder[b.Suit]
	}
	return displayRank(a.Rank) < displayRank(b.Rank)
}
