package deck

import (
	"fmt"
	"strings"
)

// ParseCards parses a compact card string like "3h4d5sTcBj" into cards.
// Each card is two characters: rank then suit. Jokers are "Bj" and "Rj".
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %d (must be even)", len(s))
	}

	var cards []Card
	for i := 0; i < len(s); i += 2 {
		card, err := parseCard(s[i], s[i+1])
		if err != nil {
			return nil, fmt.Errorf("invalid card at position %d: %w", i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards %q: %v", s, err))
	}
	return cards
}

func parseCard(rankChar, suitChar byte) (Card, error) {
	if rankChar == 'B' || rankChar == 'R' {
		if suitChar != 'j' && suitChar != 'J' {
			return Card{}, fmt.Errorf("joker rank %c requires suit 'j', got %c", rankChar, suitChar)
		}
		if rankChar == 'B' {
			return NewCard(Joker, BlackJoker), nil
		}
		return NewCard(Joker, RedJoker), nil
	}

	var rank Rank
	switch rankChar {
	case '3', '4', '5', '6', '7', '8', '9':
		rank = Rank(rankChar - '0')
	case 'T', 't':
		rank = Ten
	case 'J', 'j':
		rank = Jack
	case 'Q', 'q':
		rank = Queen
	case 'K', 'k':
		rank = King
	case 'A', 'a':
		rank = Ace
	case '2':
		rank = Two
	default:
		return Card{}, fmt.Errorf("unknown rank %c", rankChar)
	}

	var suit Suit
	switch suitChar {
	case 's', 'S':
		suit = Spades
	case 'h', 'H':
		suit = Hearts
	case 'd', 'D':
		suit = Diamonds
	case 'c', 'C':
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("unknown suit %c", suitChar)
	}

	return NewCard(suit, rank), nil
}

// FormatCards renders cards in the compact parseable form.
func FormatCards(cards []Card) string {
	var b strings.Builder
	for _, c := range cards {
		switch c.Rank {
		case BlackJoker:
			b.WriteString("Bj")
		case RedJoker:
			b.WriteString("Rj")
		default:
			b.WriteString(c.Rank.String())
			switch c.Suit {
			case Spades:
				b.WriteByte('s')
			case Hearts:
				b.WriteByte('h')
			case Diamonds:
				b.WriteByte('d')
			case Clubs:
				b.WriteByte('c')
			}
		}
	}
	return b.String()
}
