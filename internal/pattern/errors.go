package pattern

import "errors"

var (
	// ErrEmptyPlay is returned for a zero-card submission.
	ErrEmptyPlay = errors.New("empty play")

	// ErrJokerInCombination is returned when a joker appears inside a
	// multi-rank combination. Jokers are only legal alone or as the rocket.
	ErrJokerInCombination = errors.New("joker not allowed in combination")

	// ErrUnclassifiable is returned when the card set fits no play family.
	ErrUnclassifiable = errors.New("cards do not form a valid play")
)
