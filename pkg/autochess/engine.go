package autochess

import (
	"fmt"
	"sort"
	"time"
)

// combatWallClock bounds one full combat round in real time. A round that
// overruns has its remaining matchups forced to a draw.
const combatWallClock = 2 * time.Second

// StepResult is one environment transition for one seat.
type StepResult struct {
	Obs    []float32
	Reward float64
	Done   bool
	Info   map[string]any
}

// Step advances the single-agent episode by one action for seat 0. Ending
// the turn (or exhausting the action budget) resolves the whole round:
// scripted seats develop, combats run, damage and income apply, and the
// next shopping phase opens.
func (g *Game) Step(action int) (*StepResult, error) {
	if action < 0 || action >= NumActions {
		return nil, fmt.Errorf("action %d out of range [0,%d)", action, NumActions)
	}
	p := g.Players[0]
	if !g.Done {
		g.applyAction(p, action)
		if p.TurnEnded {
			g.resolveRound()
		}
	}
	return g.result(p), nil
}

// View builds the current observation, mask, and info for a seat without
// applying an action. Used by reset and the read-only observe endpoint.
func (g *Game) View(seat int) *StepResult {
	return g.result(g.Players[seat])
}

// applyAction runs one action through the executor plus the turn-budget
// bookkeeping shared by both control modes.
func (g *Game) applyAction(p *Player, action int) {
	a := DecodeAction(action)
	if g.Apply(p, a) {
		g.caches.InvalidateAllObs()
	}
	p.ActionsThisTurn++
	if a.Kind == ActionEndTurn || p.ActionsThisTurn >= TurnActionBudget {
		p.TurnEnded = true
	}
	// The action counter is part of the vector even when the action no-ops.
	g.caches.InvalidateObs(p.ID)
}

// resolveRound closes the shopping phase and runs one full round. Stage 0
// has no combat: the starter pick simply opens stage 1.
func (g *Game) resolveRound() {
	if g.Stage == 0 {
		for _, p := range g.Players {
			g.autoResolvePropositions(p)
		}
		g.advanceStage()
		return
	}

	g.Phase = PhaseCombat
	for _, p := range g.Players {
		if !p.Alive {
			continue
		}
		g.autoResolvePropositions(p)
		g.autoEquipItems(p)
		p.RecomputeSynergies()
		g.benchIdlePenalty(p)
		g.caches.Invalidate(p.ID)
	}

	g.runCombats()
	g.settleCombats()
	g.applyDeaths()

	if g.checkTermination() {
		return
	}
	g.advanceStage()
}

// autoResolvePropositions forces an outcome for offers the player left
// pending: a random feasible pick, or a discard when none fits.
func (g *Game) autoResolvePropositions(p *Player) {
	if len(p.Propositions) == 0 {
		return
	}
	for _, i := range g.rng.Perm(len(p.Propositions)) {
		if g.applyPick(p, i) {
			return
		}
	}
	p.Propositions = nil
	g.caches.InvalidateObs(p.ID)
}

// autoEquipItems hands held items to units before combat. Held basic pairs
// craft first, then each item goes to the unit with the fewest items, board
// units ahead of benched ones. Cell order breaks ties.
func (g *Game) autoEquipItems(p *Player) {
	if len(p.HeldItems) == 0 {
		return
	}
	changed := false
	for i := 0; i < len(p.HeldItems); i++ {
		if !IsBasicItem(p.HeldItems[i]) {
			continue
		}
		for j := i + 1; j < len(p.HeldItems); j++ {
			if !IsBasicItem(p.HeldItems[j]) {
				continue
			}
			result := CraftedResult(p.HeldItems[i], p.HeldItems[j])
			if result == ItemNone {
				continue
			}
			p.HeldItems[i] = result
			p.HeldItems = append(p.HeldItems[:j], p.HeldItems[j+1:]...)
			changed = true
			break
		}
	}
	grid := g.caches.Grid(p)
	for len(p.HeldItems) > 0 {
		pick := equipTarget(p, grid, GridWidth, NumCells)
		if pick == nil {
			pick = equipTarget(p, grid, 0, GridWidth)
		}
		if pick == nil {
			break
		}
		pick.Items = append(pick.Items, p.HeldItems[0])
		p.HeldItems = p.HeldItems[1:]
		changed = true
	}
	if changed {
		g.caches.Invalidate(p.ID)
	}
}

// equipTarget scans a cell range for the unit with the fewest items and room
// for one more.
func equipTarget(p *Player, grid *[NumCells]UnitID, lo, hi int) *Unit {
	var pick *Unit
	for cell := lo; cell < hi; cell++ {
		id := grid[cell]
		if id == 0 {
			continue
		}
		u := p.Units[id]
		if len(u.Items) >= MaxUnitItems {
			continue
		}
		if pick == nil || len(u.Items) < len(pick.Items) {
			pick = u
		}
	}
	return pick
}

// runCombats builds this round's matchups and steps every simulation to
// completion or to its budget.
func (g *Game) runCombats() {
	g.sims = g.sims[:0]
	for _, m := range g.match(g.AliveSeats(), g.Stage, g.rng) {
		a := snapshotTeam(g.Players[m.A])
		var b *TeamSnapshot
		if m.B < 0 {
			b = environmentTeam(g.Stage)
		} else {
			b = snapshotTeam(g.Players[m.B])
		}
		g.sims = append(g.sims, &runningSim{
			m:           m,
			sim:         g.combat.NewSim(a, b, g.rng),
			teamABefore: a.Size(),
			teamBBefore: b.Size(),
		})
	}

	deadline := time.Now().Add(combatWallClock)
	for _, rs := range g.sims {
		g.runSim(rs, deadline)
	}
}

// runSim steps one simulation within the step and wall-clock budgets. A
// panic inside the engine is contained to this matchup and forces a draw.
func (g *Game) runSim(rs *runningSim, deadline time.Time) {
	defer func() {
		if r := recover(); r != nil {
			rs.forcedDraw = true
			g.log.Error().
				Interface("panic", r).
				Int("seatA", rs.m.A).
				Int("seatB", rs.m.B).
				Msg("combat sim panicked, forcing draw")
		}
	}()
	for step := 0; step < MaxCombatSteps; step++ {
		if rs.sim.Step() {
			return
		}
		if step%32 == 0 && time.Now().After(deadline) {
			break
		}
	}
	rs.forcedDraw = true
}

// settleCombats converts finished simulations into outcomes, damage, and
// rewards for each real player involved.
func (g *Game) settleCombats() {
	for _, rs := range g.sims {
		out := CombatOutcome{Winner: -1, SurvivorsA: rs.teamABefore, SurvivorsB: rs.teamBBefore}
		if !rs.forcedDraw {
			out = rs.sim.Outcome()
		}

		g.log.Debug().
			Int("stage", g.Stage).
			Int("seatA", rs.m.A).
			Int("seatB", rs.m.B).
			Int("winner", out.Winner).
			Bool("forcedDraw", rs.forcedDraw).
			Msg("combat resolved")

		pa := g.Players[rs.m.A]
		g.settleSide(pa, sideOutcome(out.Winner, 0), rs.teamBBefore-out.SurvivorsB, out.SurvivorsB)
		if rs.m.B < 0 {
			if out.Winner == 0 {
				g.grantEnvironmentReward(pa)
			}
			continue
		}
		if rs.m.Ghost {
			continue
		}
		pb := g.Players[rs.m.B]
		g.settleSide(pb, sideOutcome(out.Winner, 1), rs.teamABefore-out.SurvivorsA, out.SurvivorsA)
	}
}

func sideOutcome(winner, side int) FightOutcome {
	switch winner {
	case side:
		return OutcomeWin
	case -1:
		return OutcomeDraw
	default:
		return OutcomeLoss
	}
}

// settleSide applies one player's outcome: streak history, damage on loss,
// and the full post-combat shaping pass.
func (g *Game) settleSide(p *Player, outcome FightOutcome, kills, enemySurvivors int) {
	p.KillsRound = kills
	p.recordOutcome(outcome)
	if outcome == OutcomeLoss {
		p.Life -= lossDamage(g.Stage, enemySurvivors)
	}
	g.combatShaping(p, outcome, kills)
	// Life and streaks feed every other seat's opponent block.
	g.caches.InvalidateAllObs()
}

// lossDamage is the life lost by the defeated side.
func lossDamage(stage, enemySurvivors int) int {
	d := 2 + stage/2 + 2*enemySurvivors
	if d < 3 {
		d = 3
	}
	if d > 40 {
		d = 40
	}
	return d
}

// grantEnvironmentReward pays out a won environment round: a basic component
// in the opening stages, an item proposition afterwards.
func (g *Game) grantEnvironmentReward(p *Player) {
	if g.Stage <= 3 {
		if len(p.HeldItems) < MaxHeldItems {
			p.HeldItems = append(p.HeldItems, g.randomBasicItem())
		}
	} else {
		p.Propositions = g.itemPropositions(3, false)
	}
	g.caches.Invalidate(p.ID)
}

// applyDeaths marks players at or below zero life, releases their roster to
// the pool, and assigns final ranks. Simultaneous deaths rank by how far
// below zero they fell.
func (g *Game) applyDeaths() {
	var dying []*Player
	for _, p := range g.Players {
		if p.Alive && p.Life <= 0 {
			dying = append(dying, p)
		}
	}
	if len(dying) == 0 {
		return
	}
	sort.Slice(dying, func(i, j int) bool {
		if dying[i].Life != dying[j].Life {
			return dying[i].Life < dying[j].Life
		}
		return dying[i].Seat > dying[j].Seat
	})

	rank := len(g.AliveSeats())
	for _, p := range dying {
		p.Alive = false
		p.Rank = rank
		rank--
		g.releaseRoster(p)
		g.placementReward(p)
		g.caches.Invalidate(p.ID)
		// Eliminations flip the alive flag in every opponent block.
		g.caches.InvalidateAllObs()
		g.log.Info().
			Int("seat", p.Seat).
			Int("rank", p.Rank).
			Int("stage", g.Stage).
			Msg("player eliminated")
	}
}

// releaseRoster returns a dead player's units and reserved shop back to the
// shared pool.
func (g *Game) releaseRoster(p *Player) {
	for id, u := range p.Units {
		copies := 1
		for s := 1; s < u.Stars; s++ {
			copies *= EvolutionCopies
		}
		g.pool.Release(u.Species, copies)
		delete(p.Units, id)
	}
	for slot, id := range p.Shop {
		g.pool.Release(id, 1)
		p.Shop[slot] = SpeciesNone
	}
	p.Propositions = nil
	p.BoardSize = 0
	p.RecomputeSynergies()
}

// checkTermination ends the episode when at most one player remains, or in
// single-agent mode when the agent is eliminated. Survivors are ranked by
// current standing.
func (g *Game) checkTermination() bool {
	alive := g.AliveSeats()
	agentOut := !g.selfPlay && !g.Players[0].Alive
	if len(alive) > 1 && !agentOut {
		return false
	}

	standing := make([]*Player, 0, len(alive))
	for _, seat := range alive {
		standing = append(standing, g.Players[seat])
	}
	sort.Slice(standing, func(i, j int) bool {
		if standing[i].Life != standing[j].Life {
			return standing[i].Life > standing[j].Life
		}
		if standing[i].BoardSize != standing[j].BoardSize {
			return standing[i].BoardSize > standing[j].BoardSize
		}
		return standing[i].Seat < standing[j].Seat
	})
	for i, p := range standing {
		p.Rank = i + 1
		g.placementReward(p)
	}
	g.caches.InvalidateAllObs()

	g.Done = true
	g.Phase = PhaseDone
	g.log.Info().
		Str("game", g.ID).
		Int("stage", g.Stage).
		Int("alive", len(alive)).
		Msg("episode finished")
	return true
}

// advanceStage opens the next shopping phase: income, passive experience,
// scripted development, shop refresh, and stage events.
func (g *Game) advanceStage() {
	g.Stage++
	g.Phase = PhaseShop

	for _, p := range g.Players {
		if !p.Alive {
			p.resetTurn()
			g.caches.InvalidateObs(p.ID)
			continue
		}
		if g.Stage > 1 {
			interest := Interest(p.Money)
			g.interestShaping(p, interest)
			p.Money += BaseIncome + interest + StreakBonus(p.Streak)
			g.gainExp(p, PassiveExp)
		}
		if g.bots != nil && !p.Agent {
			g.bots.Develop(g, p, g.Stage)
		}
		if p.ShopLocked {
			refillShop(p, g.pool, g.rng)
		} else {
			rollShop(p, g.pool, g.rng)
		}
		g.stageEvents(p)
		p.resetTurn()
		p.RecomputeSynergies()
		p.SnapshotSynergyTiers()
		g.caches.Invalidate(p.ID)
	}
}

// stageEvents hands out the scheduled propositions for the new stage.
func (g *Game) stageEvents(p *Player) {
	switch {
	case IsPortalStage(g.Stage):
		p.Propositions = g.itemPropositions(3, true)
	case IsCarouselStage(g.Stage):
		p.Propositions = g.itemPropositions(3, false)
		p.FreeRerolls += CarouselRerolls
	case IsAdditionalPickStage(g.Stage):
		p.Propositions = g.speciesPropositions(p, 3)
	}
}

func (g *Game) randomBasicItem() ItemID {
	return ItemID(1 + g.rng.Intn(NumBasicItems))
}

// itemPropositions draws n item offers, crafted ones for portal stages.
func (g *Game) itemPropositions(n int, crafted bool) []Proposition {
	props := make([]Proposition, 0, n)
	for i := 0; i < n; i++ {
		item := g.randomBasicItem()
		if crafted {
			item = CraftedResult(item, g.randomBasicItem())
		}
		props = append(props, Proposition{Item: item})
	}
	return props
}

// speciesPropositions draws n species offers at the player's shop odds, each
// sweetened with a basic component.
func (g *Game) speciesPropositions(p *Player, n int) []Proposition {
	props := make([]Proposition, 0, n)
	for i := 0; i < n; i++ {
		id := g.pool.draw(p.Level, g.rng)
		if id == SpeciesNone {
			continue
		}
		props = append(props, Proposition{Species: id, Item: g.randomBasicItem()})
	}
	return props
}

// result drains the seat's pending reward into one transition.
func (g *Game) result(p *Player) *StepResult {
	reward, delta := p.drainReward()
	return &StepResult{
		Obs:    g.Observe(p),
		Reward: reward,
		Done:   g.Done,
		Info:   g.buildInfo(p, delta),
	}
}

// buildInfo assembles the diagnostic side channel for one seat.
func (g *Game) buildInfo(p *Player, delta map[string]float64) map[string]any {
	grid := g.caches.Grid(p)
	var board, bench []map[string]any
	for cell := 0; cell < NumCells; cell++ {
		id := grid[cell]
		if id == 0 {
			continue
		}
		u := p.Units[id]
		entry := map[string]any{
			"species": SpeciesByID(u.Species).Name,
			"stars":   u.Stars,
			"cell":    u.Cell,
			"items":   len(u.Items),
		}
		if u.OnBoard() {
			board = append(board, entry)
		} else {
			bench = append(bench, entry)
		}
	}

	synergies := map[string]map[string]int{}
	for id := SynergyID(1); int(id) <= NumSynergies; id++ {
		count := p.SynergyCount(id)
		if count == 0 {
			continue
		}
		synergies[SynergyName(id)] = map[string]int{
			"count":     count,
			"threshold": nextSynergyThreshold(id, count),
		}
	}

	return map[string]any{
		"actionMask":           g.LegalActions(p),
		"stage":                g.Stage,
		"turn":                 p.ActionsThisTurn,
		"life":                 p.Life,
		"money":                p.Money,
		"level":                p.Level,
		"boardSize":            p.BoardSize,
		"maxTeamSize":          MaxTeamSize(p.Level),
		"rank":                 p.Rank,
		"alive":                p.Alive,
		"streak":               p.Streak,
		"buyCount":             p.BuyCount,
		"sellCount":            p.SellCount,
		"rerollCount":          p.RerollCount,
		"goldSpent":            p.GoldSpent,
		"benchDeadWeightCount": p.benchDeadWeightCount(),
		"board":                board,
		"bench":                bench,
		"synergies":            synergies,
		"rewardDelta":          delta,
	}
}

// nextSynergyThreshold returns the threshold the player is working toward,
// or the top threshold once fully activated.
func nextSynergyThreshold(id SynergyID, count int) int {
	ths := SynergyThresholds(id)
	for _, th := range ths {
		if count < th {
			return th
		}
	}
	if len(ths) == 0 {
		return 0
	}
	return ths[len(ths)-1]
}
