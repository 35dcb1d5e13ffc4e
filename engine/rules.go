package engine

// Ruleset holds the tunable scoring and dealing parameters of a match.
// Zero fields fall back to the standard values (see DefaultRuleset).
type Ruleset struct {
	DealSize            int // cards dealt to each player
	OpeningPoints       int // minimum points for a team's first melds of a round
	RaisedOpeningPoints int // opening minimum once the team score reaches RaiseThreshold
	RaiseThreshold      int
	CleanCanastaBonus   int
	DirtyCanastaBonus   int
	GoingOutBonus       int
	RedThreeValue       int // bonus (or penalty) per stashed red three
}

// DefaultRuleset returns the standard Buraco parameters.
func DefaultRuleset() Ruleset {
	return Ruleset{
		DealSize:            15,
		OpeningPoints:       80,
		RaisedOpeningPoints: 100,
		RaiseThreshold:      2500,
		CleanCanastaBonus:   300,
		DirtyCanastaBonus:   100,
		GoingOutBonus:       100,
		RedThreeValue:       100,
	}
}

// withDefaults fills zero fields from DefaultRuleset.
func (r Ruleset) withDefaults() Ruleset {
	d := DefaultRuleset()
	if r.DealSize == 0 {
		r.DealSize = d.DealSize
	}
	if r.OpeningPoints == 0 {
		r.OpeningPoints = d.OpeningPoints
	}
	if r.RaisedOpeningPoints == 0 {
		r.RaisedOpeningPoints = d.RaisedOpeningPoints
	}
	if r.RaiseThreshold == 0 {
		r.RaiseThreshold = d.RaiseThreshold
	}
	if r.CleanCanastaBonus == 0 {
		r.CleanCanastaBonus = d.CleanCanastaBonus
	}
	if r.DirtyCanastaBonus == 0 {
		r.DirtyCanastaBonus = d.DirtyCanastaBonus
	}
	if r.GoingOutBonus == 0 {
		r.GoingOutBonus = d.GoingOutBonus
	}
	if r.RedThreeValue == 0 {
		r.RedThreeValue = d.RedThreeValue
	}
	return r
}

// OpeningThreshold returns the points a team with the given cumulative score needs
// for its first melds of a round.
func (r *Ruleset) OpeningThreshold(teamScore int) int {
	if teamScore >= r.RaiseThreshold {
		return r.RaisedOpeningPoints
	}
	return r.OpeningPoints
}

// MeldBonus returns the canasta bonus earned by a meld: clean, dirty, or none.
func (r *Ruleset) MeldBonus(cards []Card) int {
	switch {
	case !IsCanasta(cards):
		return 0
	case HasWildcard(cards):
		return r.DirtyCanastaBonus
	default:
		return r.CleanCanastaBonus
	}
}
