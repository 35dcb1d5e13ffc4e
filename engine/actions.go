package engine

import "fmt"

// Action is one of the five player moves. The set is closed: DrawFromStock,
// TakeDiscardPile, LayDownMelds, AddToMeld and Discard.
type Action interface {
	Kind() string
	isAction()
}

// DrawFromStock draws the top card of the stock.
type DrawFromStock struct{}

// TakeDiscardPile picks up the whole discard pile. The melds and additions prove
// the top card can be used immediately.
type TakeDiscardPile struct {
	NewMelds  [][]Card
	Additions []MeldAddition
}

// MeldAddition appends cards to an existing team meld.
type MeldAddition struct {
	MeldID int
	Cards  []Card
}

// LayDownMelds places one or more new melds from the hand.
type LayDownMelds struct {
	Melds [][]Card
}

// AddToMeld appends hand cards to an existing team meld.
type AddToMeld struct {
	MeldID int
	Cards  []Card
}

// Discard ends the turn by placing a card on the discard pile.
type Discard struct {
	Card Card
}

func (DrawFromStock) Kind() string   { return "draw_stock" }
func (TakeDiscardPile) Kind() string { return "take_discard" }
func (LayDownMelds) Kind() string    { return "lay_down" }
func (AddToMeld) Kind() string       { return "add_to_meld" }
func (Discard) Kind() string         { return "discard" }

func (DrawFromStock) isAction()   {}
func (TakeDiscardPile) isAction() {}
func (LayDownMelds) isAction()    {}
func (AddToMeld) isAction()       {}
func (Discard) isAction()         {}

// SubmitAction applies an action for a seat. On success it returns a short
// confirmation for the acting player. On failure it returns a *RuleViolation and
// the match is unchanged.
func (m *Match) SubmitAction(player int, a Action) (string, error) {
	if m.RoundOver {
		return "", violationf(CategoryRoundOver, "the round is over")
	}
	if player < 0 || player >= NumPlayers {
		return "", violationf(CategoryBadInput, "invalid seat %d", player)
	}
	if player != m.Turn {
		return "", violationf(CategoryWrongTurn, "not your turn: player %d is to play", m.Turn)
	}

	switch a := a.(type) {
	case DrawFromStock:
		return m.drawFromStock(player)
	case TakeDiscardPile:
		return m.takeDiscardPile(player, a)
	case LayDownMelds:
		return m.layDownMelds(player, a)
	case AddToMeld:
		return m.addToMeld(player, a)
	case Discard:
		return m.discard(player, a.Card)
	case nil:
		return "", violationf(CategoryBadInput, "missing action")
	default:
		return "", violationf(CategoryBadInput, "unhandled action %s", a.Kind())
	}
}

// drawFromStock draws one card and sets aside any red threes that arrive with it.
// With an empty stock the round ends when the discard pile cannot be taken;
// otherwise the player is warned that this is the final turn. A second draw
// attempt after the warning concedes the final turn.
func (m *Match) drawFromStock(player int) (string, error) {
	if m.HasDrawn || m.HasTakenDiscard {
		return "", violationf(CategoryWrongPhase, "you already drew this turn")
	}

	if m.Stock.Len() == 0 {
		if len(m.Discard) == 0 || m.DiscardLocked() {
			m.endByExhaustion()
			return "the stock is exhausted and the discard pile cannot be taken: round over", nil
		}
		if m.StockExhausted {
			m.endByExhaustion()
			return "the stock is exhausted: round over", nil
		}
		m.StockExhausted = true
		return "the stock is exhausted: take the discard pile now, the round ends after this turn", nil
	}

	c, _ := m.Stock.Draw()
	m.Hands[player] = append(m.Hands[player], c)
	moved := m.extractRedThrees(player)
	SortHand(m.Hands[player])
	m.HasDrawn = true

	if moved > 0 {
		return fmt.Sprintf("you drew %s; %d red three(s) set aside for your team", c, moved), nil
	}
	return fmt.Sprintf("you drew %s", c), nil
}

// discard places a card on the pile and passes the turn, unless the hand empties
// (going out) or the final-turn warning is active (exhaustion).
func (m *Match) discard(player int, card Card) (string, error) {
	if !m.HasDrawn && !m.HasTakenDiscard {
		return "", violationf(CategoryWrongPhase, "draw or take the discard pile before discarding")
	}
	hand := m.Hands[player]
	i := indexOf(hand, card)
	if i < 0 {
		return "", violationf(CategoryCardNotInHand, "you do not hold %s", card)
	}
	if len(hand) == 1 {
		if m.HasTakenDiscard {
			return "", violationf(CategoryGoingOut, "you cannot discard your last card on the turn you took the discard pile")
		}
		if !m.TeamHasCleanCanasta(TeamOf(player)) {
			return "", violationf(CategoryGoingOut, "going out requires a clean canasta on your team")
		}
	}

	m.Hands[player] = append(cloneCards(hand[:i]), hand[i+1:]...)
	m.Discard = append(m.Discard, card)

	if len(m.Hands[player]) == 0 {
		m.goOut(player)
		return fmt.Sprintf("you discarded %s and went out: round over", card), nil
	}
	if m.StockExhausted {
		m.endByExhaustion()
		return fmt.Sprintf("you discarded %s; the stock is exhausted: round over", card), nil
	}

	m.Turn = (m.Turn + 1) % NumPlayers
	m.HasDrawn = false
	m.HasTakenDiscard = false
	return fmt.Sprintf("you discarded %s; player %d to play", card, m.Turn), nil
}
