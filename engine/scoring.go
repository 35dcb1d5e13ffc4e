package engine

// TableScore returns what a team's table is worth right now: card points plus the
// canasta bonus of every meld, plus the red-three stash (a bonus with a clean
// canasta on the team, a penalty without one).
func (m *Match) TableScore(team int) int {
	total := 0
	for _, meld := range m.Melds[team] {
		total += HandPoints(meld.Cards) + m.Rules.MeldBonus(meld.Cards)
	}
	redThrees := len(m.RedThrees[team]) * m.Rules.RedThreeValue
	if m.TeamHasCleanCanasta(team) {
		total += redThrees
	} else {
		total -= redThrees
	}
	return total
}

// scoreTable adds each team's table score to its cumulative score.
func (m *Match) scoreTable() {
	for t := 0; t < NumTeams; t++ {
		m.Scores[t] += m.TableScore(t)
	}
}

// applyHandPenalty charges every team for the cards still held by its players.
func (m *Match) applyHandPenalty() {
	for p := 0; p < NumPlayers; p++ {
		m.Scores[TeamOf(p)] -= HandPoints(m.Hands[p])
	}
}
