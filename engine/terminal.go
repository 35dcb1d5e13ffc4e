package engine

// EndReason says how a round finished.
type EndReason uint8

const (
	EndNone EndReason = iota
	EndWentOut
	EndStockExhausted
)

func (r EndReason) String() string {
	switch r {
	case EndWentOut:
		return "went out"
	case EndStockExhausted:
		return "stock exhausted"
	}
	return "none"
}

// RoundOutcome records how a round ended and what it changed.
type RoundOutcome struct {
	Reason EndReason
	Player int // seat that went out, -1 for exhaustion
	Deltas [NumTeams]int
	Scores [NumTeams]int
}

// goOut ends the round because player emptied their hand: the team collects the
// going-out bonus, the table is scored and every hand left is charged to its team.
func (m *Match) goOut(player int) {
	before := m.Scores
	m.Scores[TeamOf(player)] += m.Rules.GoingOutBonus
	m.scoreTable()
	m.applyHandPenalty()
	m.finishRound(EndWentOut, player, before)
}

// endByExhaustion ends the round because the stock ran out. Cards left in hands
// are not charged.
func (m *Match) endByExhaustion() {
	before := m.Scores
	m.scoreTable()
	m.finishRound(EndStockExhausted, -1, before)
}

func (m *Match) finishRound(reason EndReason, player int, before [NumTeams]int) {
	m.RoundOver = true
	out := &RoundOutcome{Reason: reason, Player: player, Scores: m.Scores}
	for t := 0; t < NumTeams; t++ {
		out.Deltas[t] = m.Scores[t] - before[t]
	}
	m.Outcome = out
	m.HasDrawn = false
	m.HasTakenDiscard = false
}
