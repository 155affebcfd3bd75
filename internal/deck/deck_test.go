package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/landlordd/internal/randutil"
)

func TestNewDeckHas54UniqueCards(t *testing.T) {
	d := New()
	require.Equal(t, Size, d.Remaining())

	cards, err := d.Deal(Size)
	require.NoError(t, err)

	seen := make(map[Card]bool)
	jokers := 0
	for _, c := range cards {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
		if c.IsJoker() {
			jokers++
		}
	}
	assert.Equal(t, 2, jokers)
	assert.Equal(t, 0, d.Remaining())
}

func TestDealPartitionsDeckExhaustively(t *testing.T) {
	d := NewShuffled(randutil.New(42))

	var hands [3][]Card
	for i := range hands {
		hand, err := d.Deal(17)
		require.NoError(t, err)
		require.Len(t, hand, 17)
		hands[i] = hand
	}

	bottom, err := d.Deal(3)
	require.NoError(t, err)
	require.Len(t, bottom, 3)
	assert.Equal(t, 0, d.Remaining())

	// Cards are conserved: 3x17 hands + 3-card bottom cover the deck.
	seen := make(map[Card]bool)
	for _, hand := range hands {
		for _, c := range hand {
			seen[c] = true
		}
	}
	for _, c := range bottom {
		seen[c] = true
	}
	assert.Len(t, seen, Size)
}

func TestDealExhaustionFails(t *testing.T) {
	d := New()
	_, err := d.Deal(Size)
	require.NoError(t, err)

	_, err = d.Deal(1)
	assert.Error(t, err)
}

func TestShuffleIsDeterministicForSeed(t *testing.T) {
	a := NewShuffled(randutil.New(7))
	b := NewShuffled(randutil.New(7))

	ca, err := a.Deal(Size)
	require.NoError(t, err)
	cb, err := b.Deal(Size)
	require.NoError(t, err)
	assert.Equal(t, ca, cb)
}

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "pair of tens",
			input: "TdTc",
			expected: []Card{
				{Suit: Diamonds, Rank: Ten},
				{Suit: Clubs, Rank: Ten},
			},
		},
		{
			name:  "both jokers",
			input: "BjRj",
			expected: []Card{
				{Suit: Joker, Rank: BlackJoker},
				{Suit: Joker, Rank: RedJoker},
			},
		},
		{
			name:  "low straight",
			input: "3h4d5s6c7h",
			expected: []Card{
				{Suit: Hearts, Rank: Three},
				{Suit: Diamonds, Rank: Four},
				{Suit: Spades, Rank: Five},
				{Suit: Clubs, Rank: Six},
				{Suit: Hearts, Rank: Seven},
			},
		},
		{
			name:  "twos are parseable",
			input: "2s2h",
			expected: []Card{
				{Suit: Spades, Rank: Two},
				{Suit: Hearts, Rank: Two},
			},
		},
		{
			name:    "invalid rank",
			input:   "Xs",
			wantErr: true,
		},
		{
			name:    "joker with card suit",
			input:   "Bs",
			wantErr: true,
		},
		{
			name:    "odd length",
			input:   "3h4",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := ParseCards(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cards)
		})
	}
}

func TestFormatCardsRoundTrips(t *testing.T) {
	input := "3h4d5sTcBjRj2s"
	cards := MustParseCards(input)
	assert.Equal(t, input, FormatCards(cards))
}

func TestRankOrdering(t *testing.T) {
	// Two sorts above Ace and just under the jokers.
	assert.Greater(t, int(Two), int(Ace))
	assert.Greater(t, int(BlackJoker), int(Two))
	assert.Greater(t, int(RedJoker), int(BlackJoker))
}
