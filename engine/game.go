// Package engine implements the rules of Buraco, a four-player partnership game of
// the Canasta family.
//
// A Match owns every piece of game truth (stock, hands, discard pile, team melds,
// red-three stashes, scores and turn flags). Callers submit one Action at a time
// through SubmitAction; an action either commits completely or is rejected with a
// *RuleViolation and leaves the match untouched. The package is synchronous and
// does not lock: embedders serialize access to a Match themselves.
package engine

const (
	NumPlayers = 4
	NumTeams   = 2
)

// TeamOf returns the team of a seat. Seats 0 and 2 form team 0, seats 1 and 3 team 1.
func TeamOf(player int) int { return player % NumTeams }

// Match is the authoritative state of one Buraco match.
type Match struct {
	Rules Ruleset

	Stock     Stock
	Hands     [NumPlayers][]Card
	Discard   []Card
	Melds     [NumTeams]map[int]*Meld
	RedThrees [NumTeams][]Card

	Scores     [NumTeams]int // cumulative, never reset between rounds
	Round      int
	Turn       int // seat whose turn it is
	NextMeldID int // never reused within a match

	HasDrawn        bool // drew from the stock (or took the pile) this turn
	HasTakenDiscard bool // took the discard pile this turn
	StockExhausted  bool // final-turn warning issued

	RoundOver bool
	Outcome   *RoundOutcome

	RNG Rand
}

// NewMatch creates a match with zero scores. The first round is not dealt yet.
func NewMatch(seed uint64, rules Ruleset) *Match {
	m := &Match{
		Rules: rules.withDefaults(),
		RNG:   NewRand(seed),
	}
	m.clearTable()
	return m
}

// clearTable resets every round-scoped field. Scores, round and meld ids survive.
func (m *Match) clearTable() {
	m.Stock = Stock{}
	for p := range m.Hands {
		m.Hands[p] = nil
	}
	m.Discard = nil
	for t := range m.Melds {
		m.Melds[t] = make(map[int]*Meld)
		m.RedThrees[t] = nil
	}
	m.HasDrawn = false
	m.HasTakenDiscard = false
	m.StockExhausted = false
	m.RoundOver = false
	m.Outcome = nil
}

// ---------------------------------------------------------------------------
// Round lifecycle
// ---------------------------------------------------------------------------

// DealRound builds and shuffles a fresh stock, deals Rules.DealSize cards to every
// seat one at a time, then moves dealt red threes to the team stashes starting with
// seat Round%4 and replacing each from the stock.
func (m *Match) DealRound() {
	m.clearTable()
	m.Stock = NewStock()
	m.Stock.Shuffle(&m.RNG)

	for i := 0; i < m.Rules.DealSize; i++ {
		for p := 0; p < NumPlayers; p++ {
			if c, ok := m.Stock.Draw(); ok {
				m.Hands[p] = append(m.Hands[p], c)
			}
		}
	}
	for i := 0; i < NumPlayers; i++ {
		m.extractRedThrees((m.Round + i) % NumPlayers)
	}
	for p := range m.Hands {
		SortHand(m.Hands[p])
	}
}

// ResetForNextRound advances the round counter, rotates the opening seat and deals.
// Scores and the meld id counter carry over.
func (m *Match) ResetForNextRound() {
	m.Round++
	m.Turn = m.Round % NumPlayers
	m.DealRound()
}

// extractRedThrees moves red threes from a hand into the team stash and refills
// the hand from the stock until no red three remains. Every pass that finds a red
// three consumes stock, so the loop is bounded by the stock size.
func (m *Match) extractRedThrees(player int) int {
	team := TeamOf(player)
	moved := 0
	for pass := 0; pass <= DeckSize; pass++ {
		kept := make([]Card, 0, len(m.Hands[player]))
		found := 0
		for _, c := range m.Hands[player] {
			if c.IsRedThree() {
				m.RedThrees[team] = append(m.RedThrees[team], c)
				found++
				continue
			}
			kept = append(kept, c)
		}
		m.Hands[player] = kept
		if found == 0 {
			break
		}
		moved += found
		for i := 0; i < found; i++ {
			if c, ok := m.Stock.Draw(); ok {
				m.Hands[player] = append(m.Hands[player], c)
			}
		}
	}
	return moved
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// DiscardTop returns the top of the discard pile. ok is false when it is empty.
func (m *Match) DiscardTop() (Card, bool) {
	if len(m.Discard) == 0 {
		return Card{}, false
	}
	return m.Discard[len(m.Discard)-1], true
}

// DiscardLocked reports whether the top discard forbids taking the pile.
func (m *Match) DiscardLocked() bool {
	top, ok := m.DiscardTop()
	return ok && top.LocksDiscard()
}

// TeamHasOpened reports whether a team has any meld on the table this round.
func (m *Match) TeamHasOpened(team int) bool { return len(m.Melds[team]) > 0 }

// TeamHasCleanCanasta reports whether a team holds at least one clean canasta.
func (m *Match) TeamHasCleanCanasta(team int) bool {
	for _, meld := range m.Melds[team] {
		if meld.IsClean() {
			return true
		}
	}
	return false
}

// Meld looks up a meld of the given team.
func (m *Match) Meld(team, id int) (*Meld, bool) {
	meld, ok := m.Melds[team][id]
	return meld, ok
}

// CardCount counts every card in the match: stock, hands, discard, melds and
// stashes. After a deal it is always DeckSize.
func (m *Match) CardCount() int {
	n := m.Stock.Len() + len(m.Discard)
	for _, h := range m.Hands {
		n += len(h)
	}
	for t := 0; t < NumTeams; t++ {
		n += len(m.RedThrees[t])
		for _, meld := range m.Melds[t] {
			n += len(meld.Cards)
		}
	}
	return n
}

// Winner returns the leading team; team 0 wins ties.
func (m *Match) Winner() int {
	if m.Scores[0] >= m.Scores[1] {
		return 0
	}
	return 1
}

// addMeld stores a new meld under the next id.
func (m *Match) addMeld(team int, cards []Card) *Meld {
	meld := &Meld{ID: m.NextMeldID, Team: team, Cards: arrangeMeld(cards)}
	m.NextMeldID++
	m.Melds[team][meld.ID] = meld
	return meld
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

// Clone returns a deep copy of the match.
func (m *Match) Clone() *Match {
	c := *m
	c.Stock = Stock{Cards: cloneCards(m.Stock.Cards)}
	for p := range m.Hands {
		c.Hands[p] = cloneCards(m.Hands[p])
	}
	c.Discard = cloneCards(m.Discard)
	for t := 0; t < NumTeams; t++ {
		c.Melds[t] = make(map[int]*Meld, len(m.Melds[t]))
		for id, meld := range m.Melds[t] {
			c.Melds[t][id] = meld.clone()
		}
		c.RedThrees[t] = cloneCards(m.RedThrees[t])
	}
	if m.Outcome != nil {
		o := *m.Outcome
		c.Outcome = &o
	}
	return &c
}

// Snapshot is a detached copy of a match for undo support.
type Snapshot struct {
	m *Match
}

// Save returns a snapshot of the current state.
func (m *Match) Save() Snapshot { return Snapshot{m: m.Clone()} }

// Restore replaces the match state with the snapshot.
func (m *Match) Restore(s Snapshot) { *m = *s.m.Clone() }
