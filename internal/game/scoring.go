package game

// ScoreInput carries everything the scoring engine needs at round end.
type ScoreInput struct {
	Landlord   int
	Winner     int // seat whose hand emptied
	BaseStake  int
	Multiplier int // product of bomb/rocket doublings, minimum 1
	PlayCounts [NumSeats]int
	Cap        int // maximum settled multiple, 0 = uncapped
}

// ScoreResult is the settlement breakdown for one round. Deltas always
// sum to zero: the landlord wins or loses the combined farmer amount.
type ScoreResult struct {
	Deltas      [NumSeats]int
	Base        int
	Multiplier  int // multiplier actually settled, after spring and cap
	Spring      bool
	LandlordWon bool
}

// Score computes the per-seat signed deltas for a finished round.
// Spring doubles once more when the losing side never got to play: the
// landlord winning before any farmer played, or the farmers winning
// with the landlord having played only its opening.
func Score(in ScoreInput) ScoreResult {
	landlordWon := in.Winner == in.Landlord

	multiplier := in.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	spring := false
	if landlordWon {
		farmersPlayed := 0
		for seat, count := range in.PlayCounts {
			if seat != in.Landlord {
				farmersPlayed += count
			}
		}
		spring = farmersPlayed == 0
	} else {
		spring = in.PlayCounts[in.Landlord] == 1
	}
	if spring {
		multiplier *= 2
	}
	if in.Cap > 0 && multiplier > in.Cap {
		multiplier = in.Cap
	}

	farmerDelta := in.BaseStake * multiplier
	if landlordWon {
		farmerDelta = -farmerDelta
	}

	var result ScoreResult
	for seat := 0; seat < NumSeats; seat++ {
		if seat == in.Landlord {
			result.Deltas[seat] = -2 * farmerDelta
		} else {
			result.Deltas[seat] = farmerDelta
		}
	}
	result.Base = in.BaseStake
	result.Multiplier = multiplier
	result.Spring = spring
	result.LandlordWon = landlordWon
	return result
}
