package game

import (
	"sort"

	"github.com/lox/landlordd/internal/deck"
)

// Hand is the multiset of cards held by one seat. It is mutated only by
// removing a validated play or by receiving the bottom cards.
type Hand struct {
	cards []deck.Card
}

// NewHand creates a hand from dealt cards, kept sorted by rank.
func NewHand(cards []deck.Card) *Hand {
	h := &Hand{cards: make([]deck.Card, len(cards))}
	copy(h.cards, cards)
	h.sort()
	return h
}

func (h *Hand) sort() {
	sort.Slice(h.cards, func(i, j int) bool {
		if h.cards[i].Rank != h.cards[j].Rank {
			return h.cards[i].Rank < h.cards[j].Rank
		}
		return h.cards[i].Suit < h.cards[j].Suit
	})
}

// Len returns the number of cards remaining.
func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a copy of the hand.
func (h *Hand) Cards() []deck.Card {
	out := make([]deck.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Holds reports whether every given card is present in the hand.
// Duplicate physical cards in the request are counted, not collapsed.
func (h *Hand) Holds(cards []deck.Card) bool {
	remaining := make(map[deck.Card]int, len(h.cards))
	for _, c := range h.cards {
		remaining[c]++
	}
	for _, c := range cards {
		if remaining[c] == 0 {
			return false
		}
		remaining[c]--
	}
	return true
}

// Remove takes the given cards out of the hand. Fails without mutation
// if any card is not held.
func (h *Hand) Remove(cards []deck.Card) bool {
	if !h.Holds(cards) {
		return false
	}
	for _, c := range cards {
		for i, held := range h.cards {
			if held == c {
				h.cards = append(h.cards[:i], h.cards[i+1:]...)
				break
			}
		}
	}
	return true
}

// Add merges cards into the hand, used when the landlord takes the bottom.
func (h *Hand) Add(cards []deck.Card) {
	h.cards = append(h.cards, cards...)
	h.sort()
}

// LowestSingle returns the weakest card in the hand, for takeover
// auto-play when an offline seat must lead.
func (h *Hand) LowestSingle() (deck.Card, bool) {
	if len(h.cards) == 0 {
		return deck.Card{}, false
	}
	return h.cards[0], true
}
