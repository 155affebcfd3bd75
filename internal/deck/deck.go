package deck

import (
	"fmt"
	rand "math/rand/v2"
)

// Size is the full landlord deck: 52 standard cards plus two jokers.
const Size = 54

// Deck is an ordered sequence of the 54-card landlord set, consumed
// front-to-back once per round.
type Deck struct {
	cards []Card
}

// New creates an unshuffled 54-card deck.
func New() *Deck {
	d := &Deck{cards: make([]Card, 0, Size)}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Three; rank <= Two; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	d.cards = append(d.cards,
		NewCard(Joker, BlackJoker),
		NewCard(Joker, RedJoker),
	)
	return d
}

// NewShuffled creates a deck and applies a uniform shuffle from rng.
func NewShuffled(rng *rand.Rand) *Deck {
	d := New()
	d.Shuffle(rng)
	return d
}

// Shuffle applies a Fisher-Yates permutation to the remaining cards.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns n cards from the front of the deck.
// Exhaustion is a configuration invariant violation, never a game
// error: hand sizes are fixed (17+17+17+3 = 54).
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, fmt.Errorf("deck exhausted: requested %d, %d remaining", n, len(d.cards))
	}
	cards := make([]Card, n)
	copy(cards, d.cards[:n])
	d.cards = d.cards[n:]
	return cards, nil
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
