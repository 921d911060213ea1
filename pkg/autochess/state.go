package autochess

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Phase is the top-level state of the episode state machine.
type Phase int

const (
	PhaseShop Phase = iota
	PhaseCombat
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseShop:
		return "shop"
	case PhaseCombat:
		return "combat"
	}
	return "done"
}

// Matchup pairs two seats for one combat. Ghost marks that seat B is a copy
// whose owner takes no damage; a seat of -1 on side B marks an environment
// (PVE) team.
type Matchup struct {
	A, B  int
	Ghost bool
}

// Matchmaker selects the round's matchups among non-agent and agent players
// alike. Delegated so opponent selection stays outside the core.
type Matchmaker func(alive []int, stage int, rng Rand) []Matchup

// OpponentDeveloper advances a scripted (non-agent) opponent between rounds:
// leveling, roster growth, item spread. Implementations live outside the
// core so the roster source (store, generator, policy) stays injectable.
type OpponentDeveloper interface {
	Develop(g *Game, p *Player, stage int)
}

// GameConfig configures one episode.
type GameConfig struct {
	SelfPlay  bool // all eight seats agent-controlled
	Seed      int64
	Rewards   *RewardConfig
	Combat    CombatEngine
	Matchmake Matchmaker
	Opponents OpponentDeveloper
	Logger    *zerolog.Logger // nil disables episode logging
}

// Game is one episode: the mutable root owning players, the shared shop pool,
// caches, and the in-flight combat simulations. Created at reset, discarded
// at termination.
type Game struct {
	ID      string
	Stage   int
	Phase   Phase
	Done    bool
	Players []*Player

	selfPlay bool
	pool     *ShopPool
	caches   *CacheSet
	rng      Rand
	rewards  *RewardConfig
	combat   CombatEngine
	match    Matchmaker
	bots     OpponentDeveloper
	log      zerolog.Logger

	nextUnitID UnitID
	sims       []*runningSim
}

// runningSim is one in-flight combat with the pre-combat context needed for
// kill counting and damage application after cleanup.
type runningSim struct {
	m           Matchup
	sim         CombatSim
	teamABefore int
	teamBBefore int
	forcedDraw  bool
}

// NewGame creates a fresh episode in the shop phase at stage 0, with every
// player holding starter propositions.
func NewGame(cfg GameConfig) *Game {
	if cfg.Rewards == nil {
		cfg.Rewards = DefaultRewardConfig()
	}
	if cfg.Combat == nil {
		cfg.Combat = NewSimEngine()
	}
	if cfg.Matchmake == nil {
		cfg.Matchmake = RandomMatchmaker
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	g := &Game{
		ID:       uuid.NewString(),
		Stage:    0,
		Phase:    PhaseShop,
		Players:  make([]*Player, NumPlayers),
		selfPlay: cfg.SelfPlay,
		pool:     NewShopPool(),
		caches:   NewCacheSet(),
		rng:      NewRand(cfg.Seed),
		rewards:  cfg.Rewards,
		combat:   cfg.Combat,
		match:    cfg.Matchmake,
		bots:     cfg.Opponents,
		log:      log,
	}

	for seat := 0; seat < NumPlayers; seat++ {
		agent := cfg.SelfPlay || seat == 0
		p := NewPlayer(seat, agent)
		p.Propositions = g.starterPropositions()
		g.Players[seat] = p
	}
	return g
}

// starterPropositions draws the stage-0 offers: three tier-1 species.
func (g *Game) starterPropositions() []Proposition {
	props := make([]Proposition, 0, StarterOffers)
	tier1 := speciesOfTier[1]
	perm := g.rng.Perm(len(tier1))
	for i := 0; i < StarterOffers && i < len(perm); i++ {
		props = append(props, Proposition{Species: tier1[perm[i]]})
	}
	return props
}

// AgentSeats returns the seats controlled by the external learner.
func (g *Game) AgentSeats() []int {
	seats := make([]int, 0, NumPlayers)
	for _, p := range g.Players {
		if p.Agent {
			seats = append(seats, p.Seat)
		}
	}
	return seats
}

// AliveSeats returns the seats still alive.
func (g *Game) AliveSeats() []int {
	seats := make([]int, 0, NumPlayers)
	for _, p := range g.Players {
		if p.Alive {
			seats = append(seats, p.Seat)
		}
	}
	return seats
}

// Caches exposes the episode cache set, used by tests to verify the
// invalidate protocol and by the encoder.
func (g *Game) Caches() *CacheSet { return g.caches }

// Pool exposes the shared shop pool.
func (g *Game) Pool() *ShopPool { return g.pool }

// Rewards exposes the active shaping coefficients.
func (g *Game) Rewards() *RewardConfig { return g.rewards }

// SelfPlay reports whether all eight seats are agent-controlled.
func (g *Game) SelfPlay() bool { return g.selfPlay }

// newUnit allocates a unit in the arena and assigns it to the given player.
func (g *Game) newUnit(p *Player, species SpeciesID, stars, cell int) *Unit {
	g.nextUnitID++
	u := &Unit{ID: g.nextUnitID, Species: species, Stars: stars, Cell: cell}
	p.Units[u.ID] = u
	return u
}

// PlaceUnit puts a unit directly into a player's arena, drawing the copies
// it represents from the shared pool so later eliminations do not inflate
// it. Used by scripted opponent development; agent units only enter through
// shop actions.
func (g *Game) PlaceUnit(p *Player, species SpeciesID, stars, cell int) *Unit {
	copies := 1
	for s := 1; s < stars; s++ {
		copies *= 3
	}
	for i := 0; i < copies; i++ {
		g.pool.Take(species)
	}
	u := g.newUnit(p, species, stars, cell)
	if u.OnBoard() {
		p.BoardSize++
	}
	return u
}

// RandomMatchmaker pairs alive seats from a seeded shuffle. An odd seat out
// fights a ghost copy of another alive player.
func RandomMatchmaker(alive []int, stage int, rng Rand) []Matchup {
	if IsPVEStage(stage) {
		ms := make([]Matchup, 0, len(alive))
		for _, s := range alive {
			ms = append(ms, Matchup{A: s, B: -1})
		}
		return ms
	}
	order := make([]int, len(alive))
	copy(order, alive)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	var ms []Matchup
	for i := 0; i+1 < len(order); i += 2 {
		ms = append(ms, Matchup{A: order[i], B: order[i+1]})
	}
	if len(order)%2 == 1 && len(order) > 1 {
		odd := order[len(order)-1]
		ghost := order[rng.Intn(len(order)-1)]
		ms = append(ms, Matchup{A: odd, B: ghost, Ghost: true})
	}
	return ms
}
