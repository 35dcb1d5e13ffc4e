package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vodiniz/buracao/engine"
	"github.com/vodiniz/buracao/internal/models"
)

// Client action types.
const (
	ActionDrawStock   = "draw_stock"
	ActionTakeDiscard = "take_discard"
	ActionLayDown     = "lay_down"
	ActionAddToMeld   = "add_to_meld"
	ActionDiscard     = "discard"
	ActionChat        = "chat"
	ActionSync        = "sync"
)

// MaxChatLength caps chat messages, in runes.
const MaxChatLength = 500

var (
	ErrUnknownAction  = errors.New("unknown action type")
	ErrBadPayload     = errors.New("malformed action payload")
	ErrEmptyChat      = errors.New("chat message is empty")
	ErrChatTooLong    = fmt.Errorf("chat message exceeds %d characters", MaxChatLength)
	ErrMissingPayload = errors.New("action requires a payload")
)

type meldAdditionPayload struct {
	MeldID int           `json:"meldId"`
	Cards  []engine.Card `json:"cards"`
}

type takeDiscardPayload struct {
	NewMelds  [][]engine.Card       `json:"newMelds"`
	Additions []meldAdditionPayload `json:"additions"`
}

type layDownPayload struct {
	Melds [][]engine.Card `json:"melds"`
}

type addToMeldPayload struct {
	MeldID *int          `json:"meldId"`
	Cards  []engine.Card `json:"cards"`
}

type discardPayload struct {
	Card *engine.Card `json:"card"`
}

type chatPayload struct {
	Text string `json:"text"`
}

// decodeAction converts a client message into an engine action. Card strings
// that do not parse surface as ErrBadPayload.
func decodeAction(a models.GameAction) (engine.Action, error) {
	switch a.ActionType {
	case ActionDrawStock:
		return engine.DrawFromStock{}, nil

	case ActionTakeDiscard:
		var p takeDiscardPayload
		if err := unmarshalPayload(a, &p); err != nil {
			return nil, err
		}
		act := engine.TakeDiscardPile{NewMelds: p.NewMelds}
		for _, add := range p.Additions {
			act.Additions = append(act.Additions, engine.MeldAddition{MeldID: add.MeldID, Cards: add.Cards})
		}
		return act, nil

	case ActionLayDown:
		var p layDownPayload
		if err := unmarshalPayload(a, &p); err != nil {
			return nil, err
		}
		return engine.LayDownMelds{Melds: p.Melds}, nil

	case ActionAddToMeld:
		var p addToMeldPayload
		if err := unmarshalPayload(a, &p); err != nil {
			return nil, err
		}
		if p.MeldID == nil {
			return nil, fmt.Errorf("%w: meldId is required", ErrBadPayload)
		}
		return engine.AddToMeld{MeldID: *p.MeldID, Cards: p.Cards}, nil

	case ActionDiscard:
		var p discardPayload
		if err := unmarshalPayload(a, &p); err != nil {
			return nil, err
		}
		if p.Card == nil {
			return nil, fmt.Errorf("%w: card is required", ErrBadPayload)
		}
		return engine.Discard{Card: *p.Card}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a.ActionType)
}

// decodeChat extracts and validates a chat line.
func decodeChat(a models.GameAction) (string, error) {
	var p chatPayload
	if err := unmarshalPayload(a, &p); err != nil {
		return "", err
	}
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return "", ErrEmptyChat
	}
	if utf8.RuneCountInString(text) > MaxChatLength {
		return "", ErrChatTooLong
	}
	return text, nil
}

func unmarshalPayload(a models.GameAction, v interface{}) error {
	if len(a.Payload) == 0 || string(a.Payload) == "null" {
		return fmt.Errorf("%w: %s", ErrMissingPayload, a.ActionType)
	}
	if err := json.Unmarshal(a.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}
