package engine

import "fmt"

// takeDiscardPile picks up the whole discard pile. The player must use the top card
// at once, either in a new meld of three or more cards or in an addition to a team
// meld. Meld cards may come from the hand or from anywhere in the pile.
func (m *Match) takeDiscardPile(player int, a TakeDiscardPile) (string, error) {
	if m.HasDrawn || m.HasTakenDiscard {
		return "", violationf(CategoryWrongPhase, "you already drew this turn")
	}
	top, ok := m.DiscardTop()
	if !ok {
		return "", violationf(CategoryWrongPhase, "the discard pile is empty")
	}
	if top.LocksDiscard() {
		return "", violationf(CategoryLockedPile, "the discard pile is locked by %s", top)
	}
	if len(a.NewMelds) == 0 && len(a.Additions) == 0 {
		return "", violationf(CategoryPickupEvidence, "taking the discard pile requires melding its top card %s", top)
	}

	team := TeamOf(player)
	seen := make(map[int]bool, len(a.Additions))
	combined := make([][]Card, len(a.Additions))
	for i, add := range a.Additions {
		meld, ok := m.Melds[team][add.MeldID]
		if !ok {
			return "", violationf(CategoryUnknownMeld, "meld %d does not belong to your team", add.MeldID)
		}
		if len(add.Cards) == 0 {
			return "", violationf(CategoryBadInput, "addition to meld %d has no cards", add.MeldID)
		}
		if seen[add.MeldID] {
			return "", violationf(CategoryBadInput, "meld %d appears in more than one addition", add.MeldID)
		}
		seen[add.MeldID] = true
		combined[i] = append(cloneCards(meld.Cards), add.Cards...)
	}

	usesTop := false
	for _, cards := range a.NewMelds {
		if len(cards) >= MinMeldSize && containsCard(cards, top) {
			usesTop = true
		}
	}
	for i, add := range a.Additions {
		if len(combined[i]) >= MinMeldSize && containsCard(add.Cards, top) {
			usesTop = true
		}
	}
	if !usesTop {
		return "", violationf(CategoryPickupEvidence, "the top card %s must go into a meld of at least %d cards", top, MinMeldSize)
	}

	for i, cards := range a.NewMelds {
		if err := CheckMeld(cards); err != nil {
			return "", violationf(CategoryIllegalMeld, "new meld %d (%s): %v", i+1, formatCards(cards), err)
		}
	}
	for i, add := range a.Additions {
		if err := CheckMeld(combined[i]); err != nil {
			return "", violationf(CategoryIllegalMeld, "meld %d would become illegal: %v", add.MeldID, err)
		}
	}

	// The pile joins the hand before the meld cards leave it.
	pool := append(cloneCards(m.Hands[player]), m.Discard...)
	points := 0
	for _, cards := range a.NewMelds {
		rest, missing, ok := takeCards(pool, cards)
		if !ok {
			return "", violationf(CategoryCardNotInHand, "%s is not in your hand or the discard pile", missing)
		}
		pool = rest
		points += HandPoints(cards)
	}
	for _, add := range a.Additions {
		rest, missing, ok := takeCards(pool, add.Cards)
		if !ok {
			return "", violationf(CategoryCardNotInHand, "%s is not in your hand or the discard pile", missing)
		}
		pool = rest
		points += HandPoints(add.Cards)
	}
	if len(pool) < 2 {
		return "", violationf(CategoryGoingOut, "after taking the discard pile you must keep at least two cards")
	}
	if !m.TeamHasOpened(team) {
		if need := m.Rules.OpeningThreshold(m.Scores[team]); points < need {
			return "", violationf(CategoryOpeningPoints, "opening requires %d points, these melds are worth %d", need, points)
		}
	}

	taken := len(m.Discard)
	m.Discard = nil
	SortHand(pool)
	m.Hands[player] = pool
	for _, cards := range a.NewMelds {
		m.addMeld(team, cards)
	}
	for i, add := range a.Additions {
		m.Melds[team][add.MeldID].Cards = arrangeMeld(combined[i])
	}
	m.HasTakenDiscard = true
	m.HasDrawn = true

	return fmt.Sprintf("you took the discard pile (%d cards)", taken), nil
}

// layDownMelds places new melds from the hand.
func (m *Match) layDownMelds(player int, a LayDownMelds) (string, error) {
	if !m.HasDrawn {
		return "", violationf(CategoryWrongPhase, "draw or take the discard pile before melding")
	}
	if len(a.Melds) == 0 {
		return "", violationf(CategoryBadInput, "no melds to lay down")
	}

	hand := m.Hands[player]
	points := 0
	for i, cards := range a.Melds {
		rest, missing, ok := takeCards(hand, cards)
		if !ok {
			return "", violationf(CategoryCardNotInHand, "you do not hold %s", missing)
		}
		hand = rest
		if err := CheckMeld(cards); err != nil {
			return "", violationf(CategoryIllegalMeld, "meld %d (%s): %v", i+1, formatCards(cards), err)
		}
		points += HandPoints(cards)
	}

	team := TeamOf(player)
	if !m.TeamHasOpened(team) {
		if need := m.Rules.OpeningThreshold(m.Scores[team]); points < need {
			return "", violationf(CategoryOpeningPoints, "opening requires %d points, these melds are worth %d", need, points)
		}
	}
	if len(hand) <= 1 {
		if err := m.checkGoingOut(player, len(hand), -1, a.Melds...); err != nil {
			return "", err
		}
	}

	m.Hands[player] = hand
	for _, cards := range a.Melds {
		m.addMeld(team, cards)
	}
	if len(hand) == 0 {
		m.goOut(player)
		return fmt.Sprintf("you laid down %d meld(s) and went out: round over", len(a.Melds)), nil
	}
	return fmt.Sprintf("you laid down %d meld(s)", len(a.Melds)), nil
}

// addToMeld appends hand cards to a meld of the acting team.
func (m *Match) addToMeld(player int, a AddToMeld) (string, error) {
	if !m.HasDrawn {
		return "", violationf(CategoryWrongPhase, "draw or take the discard pile before melding")
	}
	if len(a.Cards) == 0 {
		return "", violationf(CategoryBadInput, "no cards to add")
	}
	team := TeamOf(player)
	meld, ok := m.Melds[team][a.MeldID]
	if !ok {
		return "", violationf(CategoryUnknownMeld, "meld %d does not belong to your team", a.MeldID)
	}
	hand, missing, ok := takeCards(m.Hands[player], a.Cards)
	if !ok {
		return "", violationf(CategoryCardNotInHand, "you do not hold %s", missing)
	}
	combined := append(cloneCards(meld.Cards), a.Cards...)
	if err := CheckMeld(combined); err != nil {
		return "", violationf(CategoryIllegalMeld, "meld %d would become illegal: %v", a.MeldID, err)
	}
	if len(hand) <= 1 {
		if err := m.checkGoingOut(player, len(hand), a.MeldID, combined); err != nil {
			return "", err
		}
	}

	m.Hands[player] = hand
	meld.Cards = arrangeMeld(combined)
	if len(hand) == 0 {
		m.goOut(player)
		return fmt.Sprintf("you added %d card(s) to meld %d and went out: round over", len(a.Cards), a.MeldID), nil
	}
	return fmt.Sprintf("you added %d card(s) to meld %d", len(a.Cards), a.MeldID), nil
}

// checkGoingOut decides whether a meld may leave the player with remaining cards
// (0 or 1). An empty hand goes out at once; a single card can only be discarded
// by going out, so both need the right to go out. pending are melds about to be
// committed; replaced is the id of a meld they supersede, or -1.
func (m *Match) checkGoingOut(player, remaining, replaced int, pending ...[]Card) error {
	if m.HasTakenDiscard {
		if remaining == 0 {
			return violationf(CategoryGoingOut, "you cannot go out on the turn you took the discard pile")
		}
		return violationf(CategoryGoingOut, "after taking the discard pile you must keep at least two cards")
	}
	team := TeamOf(player)
	for id, meld := range m.Melds[team] {
		if id != replaced && meld.IsClean() {
			return nil
		}
	}
	for _, cards := range pending {
		if IsCleanCanasta(cards) {
			return nil
		}
	}
	if remaining == 0 {
		return violationf(CategoryGoingOut, "going out requires a clean canasta on your team")
	}
	return violationf(CategoryGoingOut, "keeping a single card requires a clean canasta on your team")
}
