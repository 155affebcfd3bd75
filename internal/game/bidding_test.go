package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bidTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCallModeHighestCallerWins(t *testing.T) {
	b := NewBidding(BidModeCall, 0, 3, false)

	require.NoError(t, b.Call(0, 1, bidTime))
	require.NoError(t, b.Call(1, 3, bidTime))

	// A call of the maximum resolves immediately: no further turns.
	assert.Equal(t, LandlordFixed, b.Phase())
	seat, stake := b.Landlord()
	assert.Equal(t, 1, seat)
	assert.Equal(t, 3, stake)

	err := b.Call(2, 0, bidTime)
	require.Error(t, err)
	code, ok := RejectionCode(err)
	require.True(t, ok)
	assert.Equal(t, RejectBiddingOver, code)
}

func TestCallModeAllPassIsNoLandlord(t *testing.T) {
	b := NewBidding(BidModeCall, 0, 3, false)

	require.NoError(t, b.Call(0, 0, bidTime))
	require.NoError(t, b.Call(1, 0, bidTime))
	require.NoError(t, b.Call(2, 0, bidTime))

	assert.Equal(t, NoLandlord, b.Phase())
}

func TestCallModeSingleCallerAtLowStake(t *testing.T) {
	b := NewBidding(BidModeCall, 0, 3, false)

	require.NoError(t, b.Call(0, 0, bidTime))
	require.NoError(t, b.Call(1, 1, bidTime))
	require.NoError(t, b.Call(2, 0, bidTime))

	assert.Equal(t, LandlordFixed, b.Phase())
	seat, stake := b.Landlord()
	assert.Equal(t, 1, seat)
	assert.Equal(t, 1, stake)
}

func TestCallModeRejectsLowAndOutOfTurnCalls(t *testing.T) {
	b := NewBidding(BidModeCall, 0, 3, false)

	err := b.Call(1, 1, bidTime)
	code, ok := RejectionCode(err)
	require.True(t, ok)
	assert.Equal(t, RejectNotYourTurn, code)

	require.NoError(t, b.Call(0, 2, bidTime))

	err = b.Call(1, 2, bidTime)
	code, ok = RejectionCode(err)
	require.True(t, ok)
	assert.Equal(t, RejectBidTooLow, code)

	err = b.Call(1, 4, bidTime)
	code, ok = RejectionCode(err)
	require.True(t, ok)
	assert.Equal(t, RejectBidOutOfRange, code)

	// Rejections never advance the turn.
	assert.Equal(t, 1, b.Turn())
}

func TestCallModeLastChanceLap(t *testing.T) {
	b := NewBidding(BidModeCall, 0, 3, true)

	require.NoError(t, b.Call(0, 1, bidTime))
	require.NoError(t, b.Call(1, 2, bidTime))
	require.NoError(t, b.Call(2, 0, bidTime))

	// Seat 0 called earlier and gets one more chance to outbid seat 1.
	require.Equal(t, AwaitingCalls, b.Phase())
	assert.Equal(t, 0, b.Turn())

	require.NoError(t, b.Call(0, 3, bidTime))
	assert.Equal(t, LandlordFixed, b.Phase())
	seat, stake := b.Landlord()
	assert.Equal(t, 0, seat)
	assert.Equal(t, 3, stake)
}

func TestCallModeLastChancePassResolvesToLeader(t *testing.T) {
	b := NewBidding(BidModeCall, 0, 3, true)

	require.NoError(t, b.Call(0, 1, bidTime))
	require.NoError(t, b.Call(1, 2, bidTime))
	require.NoError(t, b.Call(2, 0, bidTime))
	require.NoError(t, b.Call(0, 0, bidTime))

	assert.Equal(t, LandlordFixed, b.Phase())
	seat, stake := b.Landlord()
	assert.Equal(t, 1, seat)
	assert.Equal(t, 2, stake)
}

func TestScoreModeAuction(t *testing.T) {
	b := NewBidding(BidModeScore, 0, 5, false)

	require.NoError(t, b.Call(0, 1, bidTime))
	require.NoError(t, b.Call(1, 2, bidTime))
	require.NoError(t, b.Call(2, 0, bidTime))

	// Seat 0 may respond to seat 1's raise.
	require.Equal(t, AwaitingCalls, b.Phase())
	require.Equal(t, 0, b.Turn())
	require.NoError(t, b.Call(0, 3, bidTime))
	require.Equal(t, 1, b.Turn())
	require.NoError(t, b.Call(1, 0, bidTime))

	assert.Equal(t, LandlordFixed, b.Phase())
	seat, stake := b.Landlord()
	assert.Equal(t, 0, seat)
	assert.Equal(t, 3, stake)
}

func TestScoreModeMaxStakeResolvesImmediately(t *testing.T) {
	b := NewBidding(BidModeScore, 2, 5, false)

	require.NoError(t, b.Call(2, 5, bidTime))

	assert.Equal(t, LandlordFixed, b.Phase())
	seat, stake := b.Landlord()
	assert.Equal(t, 2, seat)
	assert.Equal(t, 5, stake)
}

func TestScoreModeAllPassIsNoLandlord(t *testing.T) {
	b := NewBidding(BidModeScore, 0, 5, false)

	require.NoError(t, b.Call(0, 0, bidTime))
	require.NoError(t, b.Call(1, 0, bidTime))
	require.NoError(t, b.Call(2, 0, bidTime))

	assert.Equal(t, NoLandlord, b.Phase())
}

func TestBidRecordsKeepOrderAndTimestamps(t *testing.T) {
	b := NewBidding(BidModeCall, 1, 3, false)

	require.NoError(t, b.Call(1, 0, bidTime))
	require.NoError(t, b.Call(2, 1, bidTime.Add(time.Second)))
	require.NoError(t, b.Call(0, 2, bidTime.Add(2*time.Second)))

	records := b.Records()
	require.Len(t, records, 3)
	assert.Equal(t, []int{1, 2, 0}, []int{records[0].Seat, records[1].Seat, records[2].Seat})
	assert.Equal(t, []int{0, 1, 2}, []int{records[0].Call, records[1].Call, records[2].Call})
	assert.True(t, records[2].At.After(records[0].At))
}
