package engine

// Full-match tests driven by a simple bot through the public action API. Every
// step checks card conservation, meld legality and that rejected actions leave
// the match untouched.

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// botRun finds three consecutive naturals of one suit in hand. When must is set the
// run has to include it (it is the discard top, not yet in the hand).
func botRun(hand []Card, must *Card) []Card {
	for _, suit := range []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades} {
		byIdx := make(map[int]Card)
		for _, c := range hand {
			if c.Suit == suit && !c.IsWild() && c.seqIndex() > 0 {
				byIdx[c.seqIndex()] = c
			}
		}
		if must != nil {
			if must.Suit != suit || must.seqIndex() == 0 {
				continue
			}
			byIdx[must.seqIndex()] = *must
		}
		for lo := 4; lo <= 12; lo++ {
			a, ok1 := byIdx[lo]
			b, ok2 := byIdx[lo+1]
			c, ok3 := byIdx[lo+2]
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			if must != nil {
				if i := must.seqIndex(); i < lo || i > lo+2 {
					continue
				}
			}
			return []Card{a, b, c}
		}
	}
	return nil
}

// checkInvariants verifies the structural invariants that must hold after every
// committed action.
func checkInvariants(t *testing.T, m *Match) {
	t.Helper()
	checkConservation(t, m)
	for team := 0; team < NumTeams; team++ {
		for id, meld := range m.Melds[team] {
			if meld.ID != id || meld.Team != team {
				t.Fatalf("meld %d stored under team %d/id %d", meld.ID, team, id)
			}
			if err := CheckMeld(meld.Cards); err != nil {
				t.Fatalf("illegal meld on the table %v: %v", meld.Cards, err)
			}
		}
		for _, c := range m.RedThrees[team] {
			if !c.IsRedThree() {
				t.Fatalf("stash %d holds %s", team, c)
			}
		}
	}
	for p, hand := range m.Hands {
		for _, c := range hand {
			if c.IsRedThree() {
				t.Fatalf("hand %d holds red three %s", p, c)
			}
		}
	}
	if !m.RoundOver {
		return
	}
	if m.Outcome == nil {
		t.Fatal("round over without an outcome")
	}
	if m.Outcome.Scores != m.Scores {
		t.Fatalf("outcome scores %v, match scores %v", m.Outcome.Scores, m.Scores)
	}
	if m.Outcome.Reason == EndWentOut {
		p := m.Outcome.Player
		if len(m.Hands[p]) != 0 {
			t.Fatalf("player %d went out holding %v", p, m.Hands[p])
		}
		if !m.TeamHasCleanCanasta(TeamOf(p)) {
			t.Fatalf("player %d went out without a clean canasta", p)
		}
	}
}

// botTurn plays one full turn for the seat to play. It reports true when the seat
// cannot finish its turn (a single card left and no right to go out).
func botTurn(t *testing.T, m *Match, rng *Rand) bool {
	t.Helper()
	p := m.Turn
	try := func(a Action) bool {
		before := m.Clone()
		if _, err := m.SubmitAction(p, a); err != nil {
			if !IsRuleViolation(err) {
				t.Fatalf("%s: unexpected error type %T: %v", a.Kind(), err, err)
			}
			if diff := cmp.Diff(before, m); diff != "" {
				t.Fatalf("rejected %s (%v) changed the match:\n%s", a.Kind(), err, diff)
			}
			return false
		}
		checkInvariants(t, m)
		return true
	}

	if top, ok := m.DiscardTop(); ok && !top.LocksDiscard() {
		if run := botRun(m.Hands[p], &top); run != nil {
			try(TakeDiscardPile{NewMelds: [][]Card{run}})
		}
	}
	if !m.HasDrawn {
		try(DrawFromStock{})
		if m.RoundOver {
			return false
		}
		if !m.HasDrawn {
			// Final-turn notice: drawing again concedes the round.
			try(DrawFromStock{})
			if !m.RoundOver {
				t.Fatal("second draw on an exhausted stock should end the round")
			}
			return false
		}
	}

	for {
		run := botRun(m.Hands[p], nil)
		if run == nil || len(m.Hands[p])-len(run) < 2 || !try(LayDownMelds{Melds: [][]Card{run}}) {
			break
		}
	}

	team := TeamOf(p)
	ids := make([]int, 0, len(m.Melds[team]))
	for id := range m.Melds[team] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		suit := SuitNone
		for _, c := range m.Melds[team][id].Cards {
			if !c.IsWild() {
				suit = c.Suit
				break
			}
		}
		for i := 0; i < len(m.Hands[p]) && len(m.Hands[p]) > 2; {
			c := m.Hands[p][i]
			if (c.Suit != suit && !c.IsWild()) || !try(AddToMeld{MeldID: id, Cards: []Card{c}}) {
				i++
			}
		}
	}

	hand := m.Hands[p]
	if try(Discard{Card: hand[rng.Intn(len(hand))]}) {
		return false
	}
	if len(hand) != 1 {
		t.Fatalf("discard from a %d-card hand was rejected", len(hand))
	}
	return true
}

// playMatch plays up to rounds rounds with the bot and returns the match and the
// number of rounds completed.
func playMatch(t *testing.T, seed uint64, rounds int) (*Match, int) {
	t.Helper()
	const maxTurns = 400

	m := NewMatch(seed, Ruleset{OpeningPoints: 30, RaisedOpeningPoints: 30})
	m.DealRound()
	checkInvariants(t, m)
	rng := NewRand(seed * 7919)

	for r := 0; r < rounds; r++ {
		for turns := 0; !m.RoundOver; turns++ {
			if turns == maxTurns {
				t.Fatalf("seed %d round %d did not finish after %d turns", seed, r, maxTurns)
			}
			if botTurn(t, m, &rng) {
				t.Logf("seed %d round %d: seat %d stranded with one card", seed, r, m.Turn)
				return m, r
			}
		}
		if r+1 < rounds {
			m.ResetForNextRound()
			checkInvariants(t, m)
		}
	}
	return m, rounds
}

// TestRandomMatches plays many seeded matches end to end.
func TestRandomMatches(t *testing.T) {
	wentOut, exhausted := 0, 0
	for seed := uint64(1); seed <= 12; seed++ {
		m, done := playMatch(t, seed, 3)
		if done < 3 {
			continue
		}
		if m.Round != done-1 {
			t.Errorf("seed %d: Round = %d after %d rounds", seed, m.Round, done)
		}
		switch m.Outcome.Reason {
		case EndWentOut:
			wentOut++
		case EndStockExhausted:
			exhausted++
		}
	}
	t.Logf("final rounds: %d went out, %d exhausted", wentOut, exhausted)
	if wentOut+exhausted == 0 {
		t.Error("no match finished a round")
	}
}

// TestRandomMatchesDeterministic verifies the same seed replays identically.
func TestRandomMatchesDeterministic(t *testing.T) {
	a, _ := playMatch(t, 5, 2)
	b, _ := playMatch(t, 5, 2)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("replay diverged:\n%s", diff)
	}
}
