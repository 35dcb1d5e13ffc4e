package engine

import (
	"errors"
	"fmt"
)

// Category classifies a rejected action.
type Category uint8

const (
	CategoryBadInput Category = iota
	CategoryRoundOver
	CategoryWrongTurn
	CategoryWrongPhase
	CategoryLockedPile
	CategoryIllegalMeld
	CategoryUnknownMeld
	CategoryOpeningPoints
	CategoryPickupEvidence
	CategoryCardNotInHand
	CategoryGoingOut
)

var categoryNames = [...]string{
	CategoryBadInput:       "bad_input",
	CategoryRoundOver:      "round_over",
	CategoryWrongTurn:      "wrong_turn",
	CategoryWrongPhase:     "wrong_phase",
	CategoryLockedPile:     "locked_pile",
	CategoryIllegalMeld:    "illegal_meld",
	CategoryUnknownMeld:    "unknown_meld",
	CategoryOpeningPoints:  "opening_points",
	CategoryPickupEvidence: "pickup_evidence",
	CategoryCardNotInHand:  "card_not_in_hand",
	CategoryGoingOut:       "going_out",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// RuleViolation is returned for every rejected action. The match is left exactly
// as it was before the call.
type RuleViolation struct {
	Category Category
	Reason   string
}

func (e *RuleViolation) Error() string { return e.Reason }

func violationf(cat Category, format string, args ...any) *RuleViolation {
	return &RuleViolation{Category: cat, Reason: fmt.Sprintf(format, args...)}
}

// CategoryOf extracts the violation category from err.
func CategoryOf(err error) (Category, bool) {
	var rv *RuleViolation
	if errors.As(err, &rv) {
		return rv.Category, true
	}
	return 0, false
}

// IsRuleViolation reports whether err is a rejected action.
func IsRuleViolation(err error) bool {
	_, ok := CategoryOf(err)
	return ok
}
