package engine

import (
	"errors"
	"sort"
)

// CanastaSize is the number of cards that completes a meld.
const CanastaSize = 7

// MinMeldSize is the smallest legal meld.
const MinMeldSize = 3

// Meld is a group of cards on the table owned by one team.
type Meld struct {
	ID    int    `json:"id"`
	Team  int    `json:"team"`
	Cards []Card `json:"cards"`
}

// IsCanasta reports whether the meld is complete (7 or more cards).
func (m *Meld) IsCanasta() bool { return IsCanasta(m.Cards) }

// IsClean reports whether the meld is a canasta without wildcards.
func (m *Meld) IsClean() bool { return IsCleanCanasta(m.Cards) }

func (m *Meld) clone() *Meld {
	return &Meld{ID: m.ID, Team: m.Team, Cards: cloneCards(m.Cards)}
}

// Meld validation failures.
var (
	ErrMeldTooShort     = errors.New("a meld needs at least 3 cards")
	ErrTooManyWildcards = errors.New("a meld may hold at most one wildcard")
	ErrNoNaturals       = errors.New("a meld needs at least one natural card")
	ErrMixedSuits       = errors.New("a run must be a single suit")
	ErrNotSequenceable  = errors.New("threes cannot be part of a run")
	ErrDuplicateRank    = errors.New("a run cannot repeat a rank")
	ErrGapTooLarge      = errors.New("the gaps in the run need more wildcards than available")
)

// CheckMeld validates a candidate meld and returns the reason it is illegal, or nil.
//
// A legal meld has at least three cards, at most one wildcard and at least one
// natural card. If every natural is an Ace it is a same-rank meld and is accepted.
// Otherwise it must be a single-suit run: the naturals are ordered by sequence
// index (Ace high), duplicates are rejected, and the internal gaps between
// consecutive naturals must not exceed the wildcard count. The check is order
// independent.
func CheckMeld(cards []Card) error {
	if len(cards) < MinMeldSize {
		return ErrMeldTooShort
	}

	wild := 0
	naturals := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.IsWild() {
			wild++
			continue
		}
		naturals = append(naturals, c)
	}
	if wild > 1 {
		return ErrTooManyWildcards
	}
	if len(naturals) == 0 {
		return ErrNoNaturals
	}

	allAces := true
	for _, c := range naturals {
		if c.Rank != RankAce {
			allAces = false
			break
		}
	}
	if allAces {
		return nil
	}

	suit := naturals[0].Suit
	for _, c := range naturals[1:] {
		if c.Suit != suit {
			return ErrMixedSuits
		}
	}

	sort.Slice(naturals, func(i, j int) bool { return naturals[i].seqIndex() < naturals[j].seqIndex() })
	gaps := 0
	for i := 0; i+1 < len(naturals); i++ {
		cur, next := naturals[i].seqIndex(), naturals[i+1].seqIndex()
		if cur == 0 || next == 0 {
			return ErrNotSequenceable
		}
		if cur == next {
			return ErrDuplicateRank
		}
		gaps += next - cur - 1
	}
	if gaps > wild {
		return ErrGapTooLarge
	}
	return nil
}

// ValidateMeld reports whether cards form a legal meld.
func ValidateMeld(cards []Card) bool { return CheckMeld(cards) == nil }

// HasWildcard reports whether any card in the group is a wildcard.
func HasWildcard(cards []Card) bool {
	for _, c := range cards {
		if c.IsWild() {
			return true
		}
	}
	return false
}

// IsCanasta reports whether the group has reached canasta size.
func IsCanasta(cards []Card) bool { return len(cards) >= CanastaSize }

// IsCleanCanasta reports whether the group is a canasta with no wildcard.
func IsCleanCanasta(cards []Card) bool { return IsCanasta(cards) && !HasWildcard(cards) }

// arrangeMeld orders a legal meld for display: naturals by sequence index with the
// wildcard placed in the first internal gap, or after the highest natural when the
// run has no gap (before it if the run already ends at the Ace). Same-rank melds
// keep the wildcard last.
func arrangeMeld(cards []Card) []Card {
	out := make([]Card, 0, len(cards))
	var wild []Card
	for _, c := range cards {
		if c.IsWild() {
			wild = append(wild, c)
		} else {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].seqIndex() < out[j].seqIndex() })
	if len(wild) == 0 {
		return out
	}
	for i := 0; i+1 < len(out); i++ {
		if out[i+1].seqIndex()-out[i].seqIndex() > 1 {
			res := append(cloneCards(out[:i+1]), wild...)
			return append(res, out[i+1:]...)
		}
	}
	if out[len(out)-1].Rank == RankAce && out[0].Rank != RankAce {
		return append(wild, out...)
	}
	return append(out, wild...)
}
