package autochess

// TeamSnapshot captures one side of a matchup before combat starts. The core
// reads team sizes from the snapshot (not from post-combat state) so kill
// counting survives the engine's cleanup.
type TeamSnapshot struct {
	Seat      int // -1 for environment teams
	Strengths []int
}

// Size returns the unit count of the snapshot.
func (t *TeamSnapshot) Size() int { return len(t.Strengths) }

// CombatOutcome is the distillate the core needs from a finished simulation.
type CombatOutcome struct {
	// Winner is 0 for side A, 1 for side B, -1 for a draw.
	Winner     int
	SurvivorsA int
	SurvivorsB int
}

// CombatSim is one stepped battle simulation. Step advances one fixed-size
// tick and reports whether the battle has finished; Outcome is valid only
// after Step returns true or the caller forces a draw.
type CombatSim interface {
	Step() bool
	Outcome() CombatOutcome
}

// CombatEngine instantiates simulations. The real resolution engine is an
// external collaborator; the core treats it as opaque.
type CombatEngine interface {
	NewSim(a, b *TeamSnapshot, rng Rand) CombatSim
}

// snapshotTeam builds a TeamSnapshot from a player's current board, in cell
// order so the simulation sees a stable lineup.
func snapshotTeam(p *Player) *TeamSnapshot {
	t := &TeamSnapshot{Seat: p.Seat}
	byCell := make(map[int]*Unit, len(p.Units))
	for _, u := range p.Units {
		if u.OnBoard() {
			byCell[u.Cell] = u
		}
	}
	for cell := GridWidth; cell < NumCells; cell++ {
		if u, ok := byCell[cell]; ok {
			t.Strengths = append(t.Strengths, UnitStrength(u))
		}
	}
	return t
}

// environmentTeam builds the scripted PVE team for a stage.
func environmentTeam(stage int) *TeamSnapshot {
	size := 2 + stage/5
	if size > 8 {
		size = 8
	}
	strength := 1 + stage/3
	t := &TeamSnapshot{Seat: -1}
	for i := 0; i < size; i++ {
		t.Strengths = append(t.Strengths, strength)
	}
	return t
}

// simEngine is the default combat engine: an attrition model where each tick
// the stronger front unit trades down the weaker side, with a little rng
// jitter so equal boards do not always draw.
type simEngine struct{}

// NewSimEngine returns the built-in combat engine.
func NewSimEngine() CombatEngine { return simEngine{} }

func (simEngine) NewSim(a, b *TeamSnapshot, rng Rand) CombatSim {
	sa := append([]int(nil), a.Strengths...)
	sb := append([]int(nil), b.Strengths...)
	return &attritionSim{a: sa, b: sb, rng: rng}
}

type attritionSim struct {
	a, b []int
	rng  Rand
	done bool
}

// Step resolves one tick: each side's front unit damages the other's; a unit
// at or below zero strength is destroyed.
func (s *attritionSim) Step() bool {
	if s.done || len(s.a) == 0 || len(s.b) == 0 {
		s.done = true
		return true
	}
	dmgA := s.a[0] + s.rng.Intn(2)
	dmgB := s.b[0] + s.rng.Intn(2)
	s.b[0] -= dmgA
	s.a[0] -= dmgB
	if s.b[0] <= 0 {
		s.b = s.b[1:]
	}
	if s.a[0] <= 0 {
		s.a = s.a[1:]
	}
	if len(s.a) == 0 || len(s.b) == 0 {
		s.done = true
	}
	return s.done
}

func (s *attritionSim) Outcome() CombatOutcome {
	switch {
	case len(s.a) > 0 && len(s.b) == 0:
		return CombatOutcome{Winner: 0, SurvivorsA: len(s.a)}
	case len(s.b) > 0 && len(s.a) == 0:
		return CombatOutcome{Winner: 1, SurvivorsB: len(s.b)}
	default:
		return CombatOutcome{Winner: -1, SurvivorsA: len(s.a), SurvivorsB: len(s.b)}
	}
}
