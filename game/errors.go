package game

import "errors"

// Rule violations are local and recoverable: a rejected request never moves
// the round into an undefined state.
var (
	// ErrInvalidIdentifier means the card id is outside [1, TotalCards].
	ErrInvalidIdentifier = errors.New("invalid card identifier")

	// Selection-time violations.
	ErrAlreadyTaken        = errors.New("card already taken")
	ErrNotInSelectionPhase = errors.New("card selection is closed")
	ErrPlayerAtMaxCards    = errors.New("player already holds the maximum number of cards")

	// ErrDrawExhausted is the forced end-of-round condition: every number in
	// [1, bound] has been drawn.
	ErrDrawExhausted = errors.New("all numbers drawn")

	// Claim-time violations.
	ErrNotCardOwner        = errors.New("card not owned by claiming player")
	ErrPatternNotSatisfied = errors.New("pattern not satisfied")
	ErrRoundAlreadyDecided = errors.New("round already decided")
)
