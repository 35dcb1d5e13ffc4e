package game

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodiniz/buracao/engine"
	"github.com/vodiniz/buracao/internal/models"
)

func rawAction(actionType, payload string) models.GameAction {
	a := models.GameAction{ActionType: actionType}
	if payload != "" {
		a.Payload = json.RawMessage(payload)
	}
	return a
}

func TestDecodeAction(t *testing.T) {
	cs := engine.MustParseCards

	tests := []struct {
		name string
		in   models.GameAction
		want engine.Action
	}{
		{"draw", rawAction(ActionDrawStock, ""), engine.DrawFromStock{}},
		{"draw ignores payload", rawAction(ActionDrawStock, `{"x":1}`), engine.DrawFromStock{}},
		{
			"take discard",
			rawAction(ActionTakeDiscard, `{"newMelds":[["4H","5H","6H"]],"additions":[{"meldId":3,"cards":["7S"]}]}`),
			engine.TakeDiscardPile{
				NewMelds:  [][]engine.Card{cs("4H 5H 6H")},
				Additions: []engine.MeldAddition{{MeldID: 3, Cards: cs("7S")}},
			},
		},
		{
			"lay down",
			rawAction(ActionLayDown, `{"melds":[["AS","AD","JK"],["10C","JC","QC"]]}`),
			engine.LayDownMelds{Melds: [][]engine.Card{cs("AS AD JK"), cs("10C JC QC")}},
		},
		{
			"add to meld zero id",
			rawAction(ActionAddToMeld, `{"meldId":0,"cards":["2D"]}`),
			engine.AddToMeld{MeldID: 0, Cards: cs("2D")},
		},
		{"discard", rawAction(ActionDiscard, `{"card":"KH"}`), engine.Discard{Card: cs("KH")[0]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeAction(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeActionErrors(t *testing.T) {
	tests := []struct {
		name string
		in   models.GameAction
		want error
	}{
		{"unknown type", rawAction("steal", ""), ErrUnknownAction},
		{"missing payload", rawAction(ActionDiscard, ""), ErrMissingPayload},
		{"null payload", rawAction(ActionLayDown, "null"), ErrMissingPayload},
		{"bad card", rawAction(ActionDiscard, `{"card":"1X"}`), ErrBadPayload},
		{"no card", rawAction(ActionDiscard, `{}`), ErrBadPayload},
		{"no meld id", rawAction(ActionAddToMeld, `{"cards":["5S"]}`), ErrBadPayload},
		{"wrong shape", rawAction(ActionLayDown, `{"melds":"4H 5H 6H"}`), ErrBadPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeAction(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeChat(t *testing.T) {
	text, err := decodeChat(rawAction(ActionChat, `{"text":"  bate!  "}`))
	require.NoError(t, err)
	assert.Equal(t, "bate!", text)

	_, err = decodeChat(rawAction(ActionChat, `{"text":""}`))
	assert.ErrorIs(t, err, ErrEmptyChat)

	long, _ := json.Marshal(map[string]string{"text": strings.Repeat("é", MaxChatLength+1)})
	_, err = decodeChat(rawAction(ActionChat, string(long)))
	assert.ErrorIs(t, err, ErrChatTooLong)

	exact, _ := json.Marshal(map[string]string{"text": strings.Repeat("é", MaxChatLength)})
	_, err = decodeChat(rawAction(ActionChat, string(exact)))
	assert.NoError(t, err)
}

func TestPublicSummaryHidesDraws(t *testing.T) {
	cs := engine.MustParseCards
	assert.Equal(t, "ana drew from the stock", publicSummary("ana", engine.DrawFromStock{}))
	assert.Equal(t, "ana took the discard pile", publicSummary("ana", engine.TakeDiscardPile{NewMelds: [][]engine.Card{cs("4H 5H 6H")}}))
	assert.Equal(t, "ana laid down 4H 5H 6H | AS AD JK", publicSummary("ana", engine.LayDownMelds{Melds: [][]engine.Card{cs("4H 5H 6H"), cs("AS AD JK")}}))
	assert.Equal(t, "ana added 7H 8H to meld 2", publicSummary("ana", engine.AddToMeld{MeldID: 2, Cards: cs("7H 8H")}))
	assert.Equal(t, "ana discarded 10C", publicSummary("ana", engine.Discard{Card: cs("10C")[0]}))
}
