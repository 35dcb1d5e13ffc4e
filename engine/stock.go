package engine

// DeckSize is the number of cards in play: two 52-card decks plus four Jokers.
const DeckSize = 108

// Stock is the face-down draw pile. The top card is the last element.
type Stock struct {
	Cards []Card
}

// NewStock builds the full 108-card stock in a fixed, unshuffled order.
func NewStock() Stock {
	cards := make([]Card, 0, DeckSize)
	suits := [4]Suit{SuitHearts, SuitDiamonds, SuitSpades, SuitClubs}
	for deck := 0; deck < 2; deck++ {
		for _, s := range suits {
			for r := RankAce; r <= RankKing; r++ {
				cards = append(cards, NewCard(r, s))
			}
		}
		cards = append(cards, Joker, Joker)
	}
	return Stock{Cards: cards}
}

// Shuffle permutes the stock in place (Fisher-Yates).
func (s *Stock) Shuffle(r *Rand) {
	for i := len(s.Cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s.Cards[i], s.Cards[j] = s.Cards[j], s.Cards[i]
	}
}

// Draw pops the top card. ok is false when the stock is empty.
func (s *Stock) Draw() (c Card, ok bool) {
	n := len(s.Cards)
	if n == 0 {
		return Card{}, false
	}
	c = s.Cards[n-1]
	s.Cards = s.Cards[:n-1]
	return c, true
}

// Len returns the number of cards remaining.
func (s *Stock) Len() int { return len(s.Cards) }

// ---------------------------------------------------------------------------
// xorshift64 RNG
// ---------------------------------------------------------------------------

// Rand is a small deterministic xorshift64 generator. It is stored by value inside
// the match so that snapshots and clones carry the exact shuffle sequence.
type Rand struct {
	State uint64
}

// NewRand seeds a generator. xorshift cannot start at zero, so 0 becomes 1.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		seed = 1
	}
	return Rand{State: seed}
}

// Uint64 advances the generator.
func (r *Rand) Uint64() uint64 {
	x := r.State
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	r.State = x
	return x
}

// Intn returns a number in [0, n). n must be positive.
func (r *Rand) Intn(n int) int {
	return int(r.Uint64() % uint64(n))
}
