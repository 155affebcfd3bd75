package deck

import "fmt"

// Suit represents a card suit. Jokers carry the Joker suit.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
	Joker
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Joker:
		return "★"
	default:
		return "?"
	}
}

// Rank represents a card rank in landlord ordering: Three is lowest,
// Two sits above Ace, and the two jokers sit above Two.
type Rank int

const (
	Three Rank = iota + 3
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
	Two
	BlackJoker
	RedJoker
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Three:
		return "3"
	case Four:
		return "4"
	case Five:
		return "5"
	case Six:
		return "6"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	case Two:
		return "2"
	case BlackJoker:
		return "BJ"
	case RedJoker:
		return "RJ"
	default:
		return "?"
	}
}

// IsJoker returns true for the two joker ranks
func (r Rank) IsJoker() bool {
	return r == BlackJoker || r == RedJoker
}

// Card represents a single playing card. Immutable value type.
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "T♦", "RJ★")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Value returns the numeric rank value used for dominance comparison
func (c Card) Value() int {
	return int(c.Rank)
}

// IsJoker returns true if the card is either joker
func (c Card) IsJoker() bool {
	return c.Rank.IsJoker()
}
