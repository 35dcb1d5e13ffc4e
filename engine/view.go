package engine

import "sort"

// MeldView is a table meld as seen by any player.
type MeldView struct {
	ID    int    `json:"id"`
	Cards []Card `json:"cards"`
	Kind  string `json:"kind"` // "Canastra" once complete, else "Normal"
	Clean bool   `json:"clean"`
}

// PlayerView is the state visible to one seat. Other players' hands appear only as
// counts and only the top of the discard pile is shown.
type PlayerView struct {
	Seat   int    `json:"seat"`
	Team   int    `json:"team"`
	Hand   []Card `json:"hand"`
	MyTurn bool   `json:"myTurn"`

	HandCounts   [NumPlayers]int      `json:"handCounts"`
	Melds        [NumTeams][]MeldView `json:"melds"`
	RedThrees    [NumTeams][]Card     `json:"redThrees"`
	DiscardTop   *Card                `json:"discardTop,omitempty"`
	DiscardCount int                  `json:"discardCount"`
	StockCount   int                  `json:"stockCount"`
	Scores       [NumTeams]int        `json:"scores"`
	Round        int                  `json:"round"`
	Turn         int                  `json:"turn"`
	HasDrawn     bool                 `json:"hasDrawn"`
	FinalTurn    bool                 `json:"finalTurn"`
	RoundOver    bool                 `json:"roundOver"`
}

// ProjectView builds the view for observer. An observer outside 0..3 sees no hand.
func (m *Match) ProjectView(observer int) PlayerView {
	v := PlayerView{
		Seat:         observer,
		Team:         -1,
		DiscardCount: len(m.Discard),
		StockCount:   m.Stock.Len(),
		Scores:       m.Scores,
		Round:        m.Round,
		Turn:         m.Turn,
		HasDrawn:     m.HasDrawn,
		FinalTurn:    m.StockExhausted,
		RoundOver:    m.RoundOver,
	}
	if observer >= 0 && observer < NumPlayers {
		v.Team = TeamOf(observer)
		v.Hand = cloneCards(m.Hands[observer])
		v.MyTurn = m.Turn == observer && !m.RoundOver
	}
	if v.Hand == nil {
		v.Hand = []Card{}
	}
	for p := 0; p < NumPlayers; p++ {
		v.HandCounts[p] = len(m.Hands[p])
	}
	if top, ok := m.DiscardTop(); ok {
		v.DiscardTop = &top
	}
	for t := 0; t < NumTeams; t++ {
		v.RedThrees[t] = append([]Card{}, m.RedThrees[t]...)
		views := make([]MeldView, 0, len(m.Melds[t]))
		for _, meld := range m.Melds[t] {
			kind := "Normal"
			if meld.IsCanasta() {
				kind = "Canastra"
			}
			views = append(views, MeldView{
				ID:    meld.ID,
				Cards: cloneCards(meld.Cards),
				Kind:  kind,
				Clean: meld.IsClean(),
			})
		}
		sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
		v.Melds[t] = views
	}
	return v
}
