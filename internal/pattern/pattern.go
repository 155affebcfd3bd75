package pattern

import (
	"sort"

	"github.com/lox/landlordd/internal/deck"
)

// Type classifies a set of cards into one of the legal landlord plays.
type Type int

const (
	Invalid Type = iota
	Single
	Pair
	Triple
	TripleSingle // triple with one attached card
	TriplePair   // triple with one attached pair
	Straight     // five or more consecutive ranks
	PairStraight // three or more consecutive pairs
	Airplane     // two or more consecutive triples, no wings
	AirplaneSingles
	AirplanePairs
	FourWithTwo // four of a kind with two attached cards
	Bomb
	Rocket
)

// String returns the string representation of a play type
func (t Type) String() string {
	switch t {
	case Single:
		return "single"
	case Pair:
		return "pair"
	case Triple:
		return "triple"
	case TripleSingle:
		return "triple_single"
	case TriplePair:
		return "triple_pair"
	case Straight:
		return "straight"
	case PairStraight:
		return "pair_straight"
	case Airplane:
		return "airplane"
	case AirplaneSingles:
		return "airplane_singles"
	case AirplanePairs:
		return "airplane_pairs"
	case FourWithTwo:
		return "four_with_two"
	case Bomb:
		return "bomb"
	case Rocket:
		return "rocket"
	default:
		return "invalid"
	}
}

// Play is a classified card set. Rank is the dominant rank used for
// comparison within a family; for runs it is the highest rank in the run.
type Play struct {
	Type  Type
	Cards []deck.Card
	Rank  deck.Rank
}

// Size returns the cardinality of the play.
func (p Play) Size() int {
	return len(p.Cards)
}

// IsBomb reports whether the play unconditionally supersedes non-bombs.
func (p Play) IsBomb() bool {
	return p.Type == Bomb || p.Type == Rocket
}

// Beats reports whether play a dominates play b. Bombs beat any
// non-bomb play of any size; the rocket beats everything. Otherwise the
// plays must share type and cardinality and compare by dominant rank.
func (a Play) Beats(b Play) bool {
	switch {
	case a.Type == Rocket:
		return b.Type != Rocket
	case b.Type == Rocket:
		return false
	case a.Type == Bomb && b.Type == Bomb:
		return a.Rank > b.Rank
	case a.Type == Bomb:
		return true
	case b.Type == Bomb:
		return false
	default:
		return a.Type == b.Type && a.Size() == b.Size() && a.Rank > b.Rank
	}
}

// rankGroup is one distinct rank within a submission and how many cards
// carry it, sorted ascending by rank.
type rankGroup struct {
	rank  deck.Rank
	count int
}

func groupByRank(cards []deck.Card) []rankGroup {
	counts := make(map[deck.Rank]int)
	for _, c := range cards {
		counts[c.Rank]++
	}
	groups := make([]rankGroup, 0, len(counts))
	for rank, count := range counts {
		groups = append(groups, rankGroup{rank: rank, count: count})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].rank < groups[j].rank })
	return groups
}

func containsJoker(cards []deck.Card) bool {
	for _, c := range cards {
		if c.IsJoker() {
			return true
		}
	}
	return false
}

// chainable reports whether a rank may appear in a consecutive run.
// Two and the jokers never chain.
func chainable(r deck.Rank) bool {
	return r >= deck.Three && r <= deck.Ace
}

// consecutive reports whether the groups form an unbroken ascending run
// of chainable ranks.
func consecutive(groups []rankGroup) bool {
	for i, g := range groups {
		if !chainable(g.rank) {
			return false
		}
		if i > 0 && g.rank != groups[i-1].rank+1 {
			return false
		}
	}
	return true
}

// Classify determines the play type of an unordered card set, or
// rejects it. Rejection is total: no partial classification is ever
// returned. Jokers are only legal as a single or as the rocket.
func Classify(cards []deck.Card) (Play, error) {
	if len(cards) == 0 {
		return Play{}, ErrEmptyPlay
	}

	groups := groupByRank(cards)
	play := Play{Cards: cards}

	switch len(cards) {
	case 1:
		play.Type = Single
		play.Rank = cards[0].Rank
		return play, nil

	case 2:
		if groups[0].rank == deck.BlackJoker && len(groups) == 2 && groups[1].rank == deck.RedJoker {
			play.Type = Rocket
			play.Rank = deck.RedJoker
			return play, nil
		}
		if len(groups) == 1 && !groups[0].rank.IsJoker() {
			play.Type = Pair
			play.Rank = groups[0].rank
			return play, nil
		}
		return Play{}, ErrUnclassifiable

	case 3:
		if len(groups) == 1 && !groups[0].rank.IsJoker() {
			play.Type = Triple
			play.Rank = groups[0].rank
			return play, nil
		}
		return Play{}, ErrUnclassifiable
	}

	// Four cards and up: a bomb outranks any other four-card reading of
	// the same set, so check it first.
	if len(groups) == 1 && groups[0].count == 4 {
		play.Type = Bomb
		play.Rank = groups[0].rank
		return play, nil
	}

	if containsJoker(cards) {
		return Play{}, ErrJokerInCombination
	}

	if p, ok := classifyTripleWithKicker(groups, play); ok {
		return p, nil
	}
	if p, ok := classifyRun(groups, play); ok {
		return p, nil
	}
	if p, ok := classifyAirplane(groups, play); ok {
		return p, nil
	}
	if p, ok := classifyFourWithTwo(groups, play); ok {
		return p, nil
	}

	return Play{}, ErrUnclassifiable
}

func classifyTripleWithKicker(groups []rankGroup, play Play) (Play, bool) {
	if len(groups) != 2 {
		return Play{}, false
	}
	a, b := groups[0], groups[1]
	switch {
	case a.count == 3 && b.count == 1, a.count == 1 && b.count == 3:
		play.Type = TripleSingle
	case a.count == 3 && b.count == 2, a.count == 2 && b.count == 3:
		play.Type = TriplePair
	default:
		return Play{}, false
	}
	if a.count == 3 {
		play.Rank = a.rank
	} else {
		play.Rank = b.rank
	}
	return play, true
}

func classifyRun(groups []rankGroup, play Play) (Play, bool) {
	if !consecutive(groups) {
		return Play{}, false
	}
	uniform := groups[0].count
	for _, g := range groups {
		if g.count != uniform {
			return Play{}, false
		}
	}
	top := groups[len(groups)-1].rank

	switch {
	case uniform == 1 && len(groups) >= 5:
		play.Type = Straight
	case uniform == 2 && len(groups) >= 3:
		play.Type = PairStraight
	case uniform == 3 && len(groups) >= 2:
		play.Type = Airplane
	default:
		return Play{}, false
	}
	play.Rank = top
	return play, true
}

// classifyAirplane handles winged airplanes: k consecutive triples plus
// k single wings (4k cards) or k pair wings (5k cards). The pure
// airplane case is covered by classifyRun.
func classifyAirplane(groups []rankGroup, play Play) (Play, bool) {
	var triples, rest []rankGroup
	for _, g := range groups {
		if g.count == 3 {
			triples = append(triples, g)
		} else {
			rest = append(rest, g)
		}
	}
	if len(triples) < 2 || !consecutive(triples) {
		return Play{}, false
	}

	k := len(triples)
	wingCards := 0
	pairsOnly := true
	for _, g := range rest {
		wingCards += g.count
		if g.count != 2 {
			pairsOnly = false
		}
	}

	switch {
	case wingCards == k:
		// One wing card per triple; a same-rank pair counts as two singles.
		play.Type = AirplaneSingles
	case pairsOnly && wingCards == 2*k && len(rest) == k:
		play.Type = AirplanePairs
	default:
		return Play{}, false
	}
	play.Rank = triples[len(triples)-1].rank
	return play, true
}

func classifyFourWithTwo(groups []rankGroup, play Play) (Play, bool) {
	var four *rankGroup
	extras := 0
	for i, g := range groups {
		if g.count == 4 {
			if four != nil {
				return Play{}, false
			}
			four = &groups[i]
		} else {
			extras += g.count
		}
	}
	if four == nil || extras != 2 {
		return Play{}, false
	}
	play.Type = FourWithTwo
	play.Rank = four.rank
	return play, true
}
