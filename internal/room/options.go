package room

import (
	"fmt"
	"time"

	"github.com/lox/landlordd/internal/game"
)

// Options is the immutable per-room policy, supplied at room creation.
type Options struct {
	RoundLimit    int           // rounds per match
	BidMode       game.BidMode  // call or score bidding
	MaxCall       int           // highest bid value
	LastChance    bool          // extra bidding lap in call mode
	MultiplierCap int           // maximum settled multiple, 0 = uncapped
	EntryCost     int           // debited per seat at round start
	EntryKind     string        // ledger resource kind for the entry cost
	DismissWindow time.Duration // dismissal vote deadline
	IdleExpiry    time.Duration // empty-room force dismissal
	Seed          int64         // deck shuffle seed, 0 = derived from time
}

// DefaultOptions returns room policy defaults.
func DefaultOptions() Options {
	return Options{
		RoundLimit:    3,
		BidMode:       game.BidModeCall,
		MaxCall:       3,
		MultiplierCap: 64,
		EntryCost:     0,
		EntryKind:     "ticket",
		DismissWindow: 60 * time.Second,
		IdleExpiry:    10 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.RoundLimit <= 0 {
		o.RoundLimit = def.RoundLimit
	}
	if o.MaxCall <= 0 {
		o.MaxCall = def.MaxCall
	}
	if o.EntryKind == "" {
		o.EntryKind = def.EntryKind
	}
	if o.DismissWindow <= 0 {
		o.DismissWindow = def.DismissWindow
	}
	if o.IdleExpiry <= 0 {
		o.IdleExpiry = def.IdleExpiry
	}
	return o
}

// Validate checks option sanity before a room is opened.
func (o Options) Validate() error {
	if o.RoundLimit < 0 {
		return fmt.Errorf("round limit must not be negative")
	}
	if o.MultiplierCap < 0 {
		return fmt.Errorf("multiplier cap must not be negative")
	}
	if o.EntryCost < 0 {
		return fmt.Errorf("entry cost must not be negative")
	}
	if o.BidMode != game.BidModeCall && o.BidMode != game.BidModeScore {
		return fmt.Errorf("unknown bid mode %d", o.BidMode)
	}
	return nil
}
