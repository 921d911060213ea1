package autochess

import "github.com/google/uuid"

// FightOutcome is one entry in a player's rolling combat history.
type FightOutcome int

const (
	OutcomeDraw FightOutcome = iota
	OutcomeWin
	OutcomeLoss
)

// historyWindow caps the rolling combat-outcome history.
const historyWindow = 5

// Proposition is one pending offer: a species, an item, or both.
type Proposition struct {
	Species SpeciesID
	Item    ItemID
}

// Player is the economic and positional state of one seat.
type Player struct {
	ID    string
	Seat  int
	Agent bool // controlled by the external learner

	Life   int
	Money  int
	Level  int
	Exp    int
	Alive  bool
	Rank   int // 0 until placed, then final rank 1..NumPlayers
	Streak int // positive = win streak, negative = loss streak

	Units     map[UnitID]*Unit
	BoardSize int // derived, units on combat rows

	Shop        [NumShopSlots]SpeciesID
	ShopLocked  bool
	FreeRerolls int

	Propositions []Proposition
	FirstSpecies SpeciesID // first starter pick, tracked for stage events

	HeldItems []ItemID

	History []FightOutcome

	// Per-turn state, reset at every shop-phase open.
	ActionsThisTurn int
	TurnEnded       bool
	lockUsedTurn    bool
	moveStreak      int
	lastMoveFrom    int // cell vacated by the previous move, -1 if none

	// Per-round diagnostics surfaced in info.
	BuyCount    int
	SellCount   int
	RerollCount int
	GoldSpent   int
	KillsRound  int

	// Reward bookkeeping.
	pendingReward    float64
	rewardDelta      map[string]float64
	rewardTotals     map[string]float64
	synergyTiersPrev [NumSynergies + 1]int

	synergyCounts [NumSynergies + 1]int
}

// NewPlayer creates a seat in its starting state.
func NewPlayer(seat int, agent bool) *Player {
	return &Player{
		ID:           uuid.NewString(),
		Seat:         seat,
		Agent:        agent,
		Life:         StartingLife,
		Money:        StartingMoney,
		Level:        1,
		Alive:        true,
		Units:        make(map[UnitID]*Unit),
		lastMoveFrom: -1,
		rewardDelta:  make(map[string]float64),
		rewardTotals: make(map[string]float64),
	}
}

// UnitAtCell scans the arena for the unit occupying a cell. Callers on hot
// paths should use the cached grid instead.
func (p *Player) UnitAtCell(cell int) *Unit {
	for _, u := range p.Units {
		if u.Cell == cell {
			return u
		}
	}
	return nil
}

// BenchCount returns the number of benched units.
func (p *Player) BenchCount() int {
	n := 0
	for _, u := range p.Units {
		if !u.OnBoard() {
			n++
		}
	}
	return n
}

// FreeBenchCells returns the count of empty bench cells.
func (p *Player) FreeBenchCells() int {
	return BenchSize - p.BenchCount()
}

// firstFreeBenchCell returns the leftmost empty bench cell, or -1.
func (p *Player) firstFreeBenchCell() int {
	occupied := [BenchSize]bool{}
	for _, u := range p.Units {
		if !u.OnBoard() && u.Cell >= 0 {
			occupied[u.Cell] = true
		}
	}
	for c := 0; c < BenchSize; c++ {
		if !occupied[c] {
			return c
		}
	}
	return -1
}

// CopiesOwned counts owned units of a species at the given star level.
func (p *Player) CopiesOwned(id SpeciesID, stars int) int {
	n := 0
	for _, u := range p.Units {
		if u.Species == id && u.Stars == stars {
			n++
		}
	}
	return n
}

// RecomputeSynergies rebuilds synergy counts from current board contents.
// Counts are per unique species on the board, matching the live game. Every
// mutation that changes board contents must call this before the state is
// observed.
func (p *Player) RecomputeSynergies() {
	for i := range p.synergyCounts {
		p.synergyCounts[i] = 0
	}
	seen := make(map[SpeciesID]bool)
	boardSize := 0
	for _, u := range p.Units {
		if !u.OnBoard() {
			continue
		}
		boardSize++
		if seen[u.Species] {
			continue
		}
		seen[u.Species] = true
		for _, syn := range SpeciesByID(u.Species).Synergies {
			p.synergyCounts[syn]++
		}
	}
	p.BoardSize = boardSize
}

// SynergyCount returns the recomputed board count for a synergy.
func (p *Player) SynergyCount(id SynergyID) int {
	if id < 1 || int(id) > NumSynergies {
		return 0
	}
	return p.synergyCounts[id]
}

// ActiveSynergyTier returns the current activation tier for a synergy.
func (p *Player) ActiveSynergyTier(id SynergyID) int {
	return SynergyTier(id, p.SynergyCount(id))
}

// SnapshotSynergyTiers records activation tiers at the start of a shopping
// phase; the threshold-delta reward compares against this at the next combat.
func (p *Player) SnapshotSynergyTiers() {
	for id := SynergyID(1); int(id) <= NumSynergies; id++ {
		p.synergyTiersPrev[id] = p.ActiveSynergyTier(id)
	}
}

// recordOutcome appends to the rolling history and updates the streak.
func (p *Player) recordOutcome(o FightOutcome) {
	p.History = append(p.History, o)
	if len(p.History) > historyWindow {
		p.History = p.History[len(p.History)-historyWindow:]
	}
	switch o {
	case OutcomeWin:
		if p.Streak < 0 {
			p.Streak = 0
		}
		p.Streak++
	case OutcomeLoss:
		if p.Streak > 0 {
			p.Streak = 0
		}
		p.Streak--
	default:
		p.Streak = 0
	}
}

// addReward accumulates a shaped reward term and its diagnostic delta.
func (p *Player) addReward(source string, v float64) {
	if v == 0 {
		return
	}
	p.pendingReward += v
	p.rewardDelta[source] += v
	p.rewardTotals[source] += v
}

// RewardTotals returns a copy of the cumulative per-source reward totals.
func (p *Player) RewardTotals() map[string]float64 {
	out := make(map[string]float64, len(p.rewardTotals))
	for k, v := range p.rewardTotals {
		out[k] = v
	}
	return out
}

// drainReward returns and clears the pending per-call reward and deltas.
func (p *Player) drainReward() (float64, map[string]float64) {
	r := p.pendingReward
	d := p.rewardDelta
	p.pendingReward = 0
	p.rewardDelta = make(map[string]float64)
	return r, d
}

// resetTurn clears per-turn state at the start of a shopping phase.
func (p *Player) resetTurn() {
	p.ActionsThisTurn = 0
	p.TurnEnded = false
	p.lockUsedTurn = false
	p.moveStreak = 0
	p.lastMoveFrom = -1
	p.BuyCount = 0
	p.SellCount = 0
	p.RerollCount = 0
	p.GoldSpent = 0
	p.KillsRound = 0
}

// benchDeadWeightCount counts bench units whose species has no copy on the
// board. The low-life shaping pressures the agent to liquidate these.
func (p *Player) benchDeadWeightCount() int {
	onBoard := make(map[SpeciesID]bool)
	for _, u := range p.Units {
		if u.OnBoard() {
			onBoard[u.Species] = true
		}
	}
	n := 0
	for _, u := range p.Units {
		if !u.OnBoard() && !onBoard[u.Species] {
			n++
		}
	}
	return n
}
