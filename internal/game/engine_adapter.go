// engine_adapter.go bridges client actions to engine.Match and engine results to events.
package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vodiniz/buracao/engine"
	"github.com/vodiniz/buracao/internal/models"
)

// HandlePlayerAction routes one client message. Rejected actions produce a
// private error event and leave the match untouched.
// Assumes lock is held by caller.
func (g *BuracoGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) {
	p := g.getPlayerByID(playerID)
	if p == nil {
		log.Warnf("Game %s: Action %s from unseated player %s ignored.", g.ID, action.ActionType, playerID)
		return
	}

	switch action.ActionType {
	case ActionChat:
		g.handleChat(p, action)
		return
	case ActionSync:
		g.sendSyncState(playerID)
		return
	}

	if !g.Started || g.Match == nil {
		g.sendError(p, "the match has not started yet")
		return
	}

	act, err := decodeAction(action)
	if err != nil {
		g.sendError(p, err.Error())
		return
	}

	msg, err := g.Match.SubmitAction(p.Seat, act)
	if err != nil {
		cat, _ := engine.CategoryOf(err)
		log.Infof("Game %s: Player %s (seat %d) %s rejected (%s): %v", g.ID, playerID, p.Seat, act.Kind(), cat, err)
		g.logAction(playerID, "action_rejected", map[string]interface{}{
			"action":   act.Kind(),
			"category": cat.String(),
			"reason":   err.Error(),
		})
		g.fireEventToPlayer(playerID, GameEvent{
			Type:    EventError,
			User:    g.eventUser(p),
			Message: err.Error(),
			Payload: map[string]interface{}{"action": act.Kind(), "category": cat.String()},
		})
		return
	}

	g.logAction(playerID, act.Kind(), actionLogPayload(act))
	g.fireEventToPlayer(playerID, GameEvent{
		Type:    EventNotification,
		User:    g.eventUser(p),
		Message: msg,
	})
	g.fireEvent(GameEvent{
		Type:    EventNotification,
		User:    g.eventUser(p),
		Message: publicSummary(p.User.Username, act),
		Payload: map[string]interface{}{"action": act.Kind()},
	})
	g.broadcastSyncStateToAll()

	if g.Match.RoundOver {
		g.EndRound()
	}
}

func (g *BuracoGame) handleChat(p *models.Player, action models.GameAction) {
	text, err := decodeChat(action)
	if err != nil {
		g.sendError(p, err.Error())
		return
	}
	g.fireEvent(GameEvent{
		Type:    EventChat,
		User:    g.eventUser(p),
		Message: text,
	})
}

func (g *BuracoGame) sendError(p *models.Player, msg string) {
	g.fireEventToPlayer(p.ID, GameEvent{
		Type:    EventError,
		User:    g.eventUser(p),
		Message: msg,
	})
}

// publicSummary describes an accepted action without revealing hidden cards.
func publicSummary(username string, act engine.Action) string {
	switch a := act.(type) {
	case engine.DrawFromStock:
		return fmt.Sprintf("%s drew from the stock", username)
	case engine.TakeDiscardPile:
		return fmt.Sprintf("%s took the discard pile", username)
	case engine.LayDownMelds:
		groups := make([]string, len(a.Melds))
		for i, m := range a.Melds {
			groups[i] = joinCards(m)
		}
		return fmt.Sprintf("%s laid down %s", username, strings.Join(groups, " | "))
	case engine.AddToMeld:
		return fmt.Sprintf("%s added %s to meld %d", username, joinCards(a.Cards), a.MeldID)
	case engine.Discard:
		return fmt.Sprintf("%s discarded %s", username, a.Card)
	}
	return fmt.Sprintf("%s played %s", username, act.Kind())
}

// actionLogPayload records the public part of an action for the Redis log.
func actionLogPayload(act engine.Action) map[string]interface{} {
	switch a := act.(type) {
	case engine.TakeDiscardPile:
		melds := make([]string, len(a.NewMelds))
		for i, m := range a.NewMelds {
			melds[i] = joinCards(m)
		}
		adds := make(map[string]interface{}, len(a.Additions))
		for _, add := range a.Additions {
			adds[fmt.Sprint(add.MeldID)] = joinCards(add.Cards)
		}
		return map[string]interface{}{"newMelds": melds, "additions": adds}
	case engine.LayDownMelds:
		melds := make([]string, len(a.Melds))
		for i, m := range a.Melds {
			melds[i] = joinCards(m)
		}
		return map[string]interface{}{"melds": melds}
	case engine.AddToMeld:
		return map[string]interface{}{"meldId": a.MeldID, "cards": joinCards(a.Cards)}
	case engine.Discard:
		return map[string]interface{}{"card": a.Card.String()}
	}
	return nil
}

func joinCards(cards []engine.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
