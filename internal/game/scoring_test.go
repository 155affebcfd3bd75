package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreLandlordWinsWithOneBomb(t *testing.T) {
	// Base stake 2, one bomb played (multiplier 2), no spring: each
	// farmer loses 4, the landlord wins the combined 8.
	result := Score(ScoreInput{
		Landlord:   0,
		Winner:     0,
		BaseStake:  2,
		Multiplier: 2,
		PlayCounts: [NumSeats]int{5, 3, 4},
	})

	assert.Equal(t, [NumSeats]int{8, -4, -4}, result.Deltas)
	assert.Equal(t, 2, result.Multiplier)
	assert.False(t, result.Spring)
	assert.True(t, result.LandlordWon)
}

func TestScoreFarmersWin(t *testing.T) {
	result := Score(ScoreInput{
		Landlord:   1,
		Winner:     2,
		BaseStake:  3,
		Multiplier: 1,
		PlayCounts: [NumSeats]int{4, 6, 5},
	})

	assert.Equal(t, [NumSeats]int{3, -6, 3}, result.Deltas)
	assert.False(t, result.LandlordWon)
}

func TestScoreDeltasSumToZero(t *testing.T) {
	for landlord := 0; landlord < NumSeats; landlord++ {
		for winner := 0; winner < NumSeats; winner++ {
			result := Score(ScoreInput{
				Landlord:   landlord,
				Winner:     winner,
				BaseStake:  3,
				Multiplier: 4,
				PlayCounts: [NumSeats]int{2, 2, 2},
			})
			sum := 0
			for _, d := range result.Deltas {
				sum += d
			}
			assert.Zero(t, sum, "landlord %d winner %d", landlord, winner)
		}
	}
}

func TestScoreSpringForLandlord(t *testing.T) {
	// Neither farmer ever played: one extra doubling.
	result := Score(ScoreInput{
		Landlord:   0,
		Winner:     0,
		BaseStake:  1,
		Multiplier: 1,
		PlayCounts: [NumSeats]int{8, 0, 0},
	})

	assert.True(t, result.Spring)
	assert.Equal(t, 2, result.Multiplier)
	assert.Equal(t, [NumSeats]int{4, -2, -2}, result.Deltas)
}

func TestScoreSpringForFarmers(t *testing.T) {
	// Landlord played only its opening before a farmer ran out.
	result := Score(ScoreInput{
		Landlord:   2,
		Winner:     0,
		BaseStake:  2,
		Multiplier: 2,
		PlayCounts: [NumSeats]int{7, 6, 1},
	})

	assert.True(t, result.Spring)
	assert.Equal(t, 4, result.Multiplier)
	assert.Equal(t, [NumSeats]int{8, 8, -16}, result.Deltas)
}

func TestScoreCapLimitsMultiplier(t *testing.T) {
	result := Score(ScoreInput{
		Landlord:   0,
		Winner:     0,
		BaseStake:  2,
		Multiplier: 64,
		PlayCounts: [NumSeats]int{5, 2, 2},
		Cap:        8,
	})

	assert.Equal(t, 8, result.Multiplier)
	assert.Equal(t, [NumSeats]int{32, -16, -16}, result.Deltas)
}

func TestScoreCapAppliesAfterSpring(t *testing.T) {
	result := Score(ScoreInput{
		Landlord:   0,
		Winner:     0,
		BaseStake:  1,
		Multiplier: 8,
		PlayCounts: [NumSeats]int{5, 0, 0},
		Cap:        8,
	})

	// Spring would push the multiplier to 16; the cap holds it at 8.
	assert.True(t, result.Spring)
	assert.Equal(t, 8, result.Multiplier)
}
