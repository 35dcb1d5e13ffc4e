package engine

import "sort"

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

func indexOf(cards []Card, c Card) int {
	for i, x := range cards {
		if x == c {
			return i
		}
	}
	return -1
}

func containsCard(cards []Card, c Card) bool { return indexOf(cards, c) >= 0 }

// takeCards removes each of want from pool (one copy per occurrence) and returns the
// remainder as a new slice. pool is not modified. missing reports the first card
// that could not be found.
func takeCards(pool, want []Card) (rest []Card, missing Card, ok bool) {
	rest = cloneCards(pool)
	for _, c := range want {
		i := indexOf(rest, c)
		if i < 0 {
			return nil, c, false
		}
		rest = append(rest[:i], rest[i+1:]...)
	}
	return rest, Card{}, true
}

// HandPoints sums the point values of cards.
func HandPoints(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Points()
	}
	return total
}

// SortHand orders cards in place by the display convention.
func SortHand(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool { return displayLess(cards[i], cards[j]) })
}

func formatCards(cards []Card) string {
	s := ""
	for i, c := range cards {
		if i > 0 {
			s += " "
		}
		s += c.String()
	}
	return s
}
