package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestFinalTurnAfterExhaustion plays the last turn after the stock runs out: the
// player takes the pile, melds and discards, and the round ends without charging
// the cards left in hands.
func TestFinalTurnAfterExhaustion(t *testing.T) {
	m := newTableMatch(t, [NumPlayers]string{"10C JC KD QH", "5S", "", ""}, "", "7H 9C")
	putMeld(t, m, 0, "4H 5H 6H")

	mustSubmit(t, m, 0, DrawFromStock{})
	mustSubmit(t, m, 0, TakeDiscardPile{NewMelds: [][]Card{cs("9C 10C JC")}})
	if diff := cmp.Diff(cs("7H QH KD"), m.Hands[0]); diff != "" {
		t.Errorf("hand mismatch (-want +got):\n%s", diff)
	}

	msg := mustSubmit(t, m, 0, Discard{Card: cs("KD")[0]})
	if msg != "you discarded KD; the stock is exhausted: round over" {
		t.Errorf("message = %q", msg)
	}
	want := RoundOutcome{
		Reason: EndStockExhausted,
		Player: -1,
		Deltas: [NumTeams]int{60, 0},
		Scores: [NumTeams]int{60, 0},
	}
	if diff := cmp.Diff(want, *m.Outcome); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if m.Turn != 0 {
		t.Errorf("Turn = %d, the turn should not pass after the final discard", m.Turn)
	}
}

// TestSecondDrawConcedesFinalTurn plays a final turn where the player ignores the
// notice and draws again: the round ends by exhaustion at once, the hand stays
// uncharged and the turn does not pass.
func TestSecondDrawConcedesFinalTurn(t *testing.T) {
	m := newTableMatch(t, [NumPlayers]string{"4C 9H", "5S", "", ""}, "", "7H")
	putMeld(t, m, 0, "4H 5H 6H")

	mustSubmit(t, m, 0, DrawFromStock{})
	if m.RoundOver {
		t.Fatal("the first draw on an empty stock should only warn")
	}

	msg := mustSubmit(t, m, 0, DrawFromStock{})
	if msg != "the stock is exhausted: round over" {
		t.Errorf("message = %q", msg)
	}
	want := RoundOutcome{
		Reason: EndStockExhausted,
		Player: -1,
		Deltas: [NumTeams]int{30, 0},
		Scores: [NumTeams]int{30, 0},
	}
	if diff := cmp.Diff(want, *m.Outcome); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(cs("4C 9H"), m.Hands[0]); diff != "" {
		t.Errorf("hand mismatch (-want +got):\n%s", diff)
	}
	if m.Turn != 0 {
		t.Errorf("Turn = %d, the turn should not pass after conceding", m.Turn)
	}
	if _, err := m.SubmitAction(0, DrawFromStock{}); err == nil {
		t.Error("actions after the round is over should be rejected")
	}
}

// TestGoingOutChargesHands verifies the penalty for cards left in every hand,
// including the partner of the player who went out.
func TestGoingOutChargesHands(t *testing.T) {
	m := newTableMatch(t, [NumPlayers]string{"KD", "QH JK", "4C 5C", "9S"}, "8S", "")
	putMeld(t, m, 0, "4S 5S 6S 7S 8S 9S 10S")
	putMeld(t, m, 1, "4H 5H 6H")
	m.RedThrees[1] = cs("3D")
	m.Scores = [NumTeams]int{1000, 500}
	m.HasDrawn = true

	mustSubmit(t, m, 0, Discard{Card: cs("KD")[0]})

	// team 0: 100 going out + 370 table - 20 partner hand
	// team 1: 30 table - 100 red three - 30 QH JK - 10 9S
	want := [NumTeams]int{1450, 390}
	if m.Scores != want {
		t.Errorf("scores = %v, want %v", m.Scores, want)
	}
	if m.Outcome.Deltas != [NumTeams]int{450, -110} {
		t.Errorf("deltas = %v", m.Outcome.Deltas)
	}
	if m.HasDrawn || m.HasTakenDiscard {
		t.Error("turn flags should be cleared at round end")
	}
}

func TestEndReasonString(t *testing.T) {
	for r, want := range map[EndReason]string{
		EndNone:           "none",
		EndWentOut:        "went out",
		EndStockExhausted: "stock exhausted",
	} {
		if got := r.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", r, got, want)
		}
	}
}
