package engine

import "testing"

// TestTableScore verifies card points, canasta bonuses and the red-three bonus.
func TestTableScore(t *testing.T) {
	m := NewMatch(1, DefaultRuleset())
	putMeld(t, m, 0, "4S 5S 6S 7S 8S 9S 10S") // 70 + 300
	putMeld(t, m, 0, "4H 5H 6H 7H 8H 9H JK")  // 80 + 100
	putMeld(t, m, 0, "AH AS AC")              // 30
	m.RedThrees[0] = cs("3H 3D")              // +200

	if got := m.TableScore(0); got != 780 {
		t.Errorf("TableScore(0) = %d, want 780", got)
	}
	if got := m.TableScore(1); got != 0 {
		t.Errorf("TableScore(1) = %d, want 0", got)
	}
}

// TestTableScoreRedThreePenalty verifies red threes count against a team without
// a clean canasta.
func TestTableScoreRedThreePenalty(t *testing.T) {
	m := NewMatch(1, DefaultRuleset())
	putMeld(t, m, 0, "4H 5H 6H 7H 8H 9H JK")
	m.RedThrees[0] = cs("3H")
	m.RedThrees[1] = cs("3D 3H")

	if got := m.TableScore(0); got != 80 {
		t.Errorf("TableScore(0) = %d, want 80 (180 - 100)", got)
	}
	if got := m.TableScore(1); got != -200 {
		t.Errorf("TableScore(1) = %d, want -200", got)
	}
}

// TestRulesetHelpers verifies the opening threshold and canasta bonus tables.
func TestRulesetHelpers(t *testing.T) {
	r := DefaultRuleset()
	for score, want := range map[int]int{-300: 80, 0: 80, 2499: 80, 2500: 100, 4000: 100} {
		if got := r.OpeningThreshold(score); got != want {
			t.Errorf("OpeningThreshold(%d) = %d, want %d", score, got, want)
		}
	}
	for cards, want := range map[string]int{
		"4H 5H 6H":              0,
		"4H 5H 6H 7H 8H 9H":     0,
		"4H 5H 6H 7H 8H 9H 2C":  100,
		"4H 5H 6H 7H 8H 9H 10H": 300,
	} {
		if got := r.MeldBonus(cs(cards)); got != want {
			t.Errorf("MeldBonus(%s) = %d, want %d", cards, got, want)
		}
	}

	custom := Ruleset{OpeningPoints: 50}.withDefaults()
	if custom.OpeningPoints != 50 || custom.DealSize != 15 {
		t.Errorf("withDefaults = %+v", custom)
	}
}

// TestScoresAccumulate verifies scores carry across rounds.
func TestScoresAccumulate(t *testing.T) {
	m := newTableMatch(t, [NumPlayers]string{"4C 9H", "", "", ""}, "", "")
	putMeld(t, m, 1, "4H 5H 6H")
	m.Scores = [NumTeams]int{200, 100}

	mustSubmit(t, m, 0, DrawFromStock{})
	if m.Scores != [NumTeams]int{200, 130} {
		t.Errorf("scores = %v, want [200 130]", m.Scores)
	}
	if m.Outcome.Deltas != [NumTeams]int{0, 30} {
		t.Errorf("deltas = %v, want [0 30]", m.Outcome.Deltas)
	}
}
