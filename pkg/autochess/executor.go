package autochess

import "sort"

// Apply validates one decoded action against a player's state and applies it.
// Returns true only when state actually changed. Illegal-but-well-formed
// actions are no-ops; request-level validation happens at the boundary.
// Every mutation invalidates the player's caches before returning.
func (g *Game) Apply(p *Player, a Action) bool {
	if g.Done || !p.Alive {
		return false
	}

	// While propositions are pending, only picks (and end turn) are live.
	if len(p.Propositions) > 0 && a.Kind != ActionPick && a.Kind != ActionEndTurn {
		return false
	}

	if a.Kind != ActionMove {
		p.moveStreak = 0
		p.lastMoveFrom = -1
	}

	switch a.Kind {
	case ActionBuy:
		return g.applyBuy(p, a.Target)
	case ActionReroll:
		return g.applyReroll(p)
	case ActionLevelUp:
		return g.applyLevelUp(p)
	case ActionLockShop:
		return g.applyLockShop(p)
	case ActionEndTurn:
		// Pure turn-completion signal; the phase engine owns the transition.
		return false
	case ActionMove:
		return g.applyMove(p, a.Target)
	case ActionSell:
		return g.applySell(p, a.Target)
	case ActionRemoveShop:
		return g.applyRemoveShop(p, a.Target)
	case ActionPick:
		return g.applyPick(p, a.Target)
	case ActionCombine:
		return g.applyCombine(p, a.Target)
	}
	return false
}

func (g *Game) applyBuy(p *Player, slot int) bool {
	id := p.Shop[slot]
	if id == SpeciesNone {
		return false
	}
	cost := SpeciesCost(id)
	if p.Money < cost {
		return false
	}
	copiesBefore := p.CopiesOwned(id, 1)
	cell := p.firstFreeBenchCell()
	mergeReady := copiesBefore >= EvolutionCopies-1
	if cell < 0 && !mergeReady {
		return false
	}

	// Duplicate shaping keys off pre-purchase copies: the third copy pays the
	// evolution reward, not the duplicate one.
	cfg := g.rewards
	boost := 1.0
	if g.Stage >= cfg.LateStage {
		boost = cfg.LateBuyBoost
	}
	switch copiesBefore {
	case 1:
		p.addReward("duplicateBuy", cfg.DuplicateBuy*boost)
	case 2:
		p.addReward("duplicateBuy", cfg.EvolutionBuy*boost)
	}

	p.Money -= cost
	p.GoldSpent += cost
	p.BuyCount++
	g.newUnit(p, id, 1, cell) // cell is -1 when the merge frees no space
	p.Shop[slot] = SpeciesNone
	g.checkEvolution(p, id)
	p.RecomputeSynergies()
	g.caches.Invalidate(p.ID)
	return true
}

func (g *Game) applySell(p *Player, cell int) bool {
	grid := g.caches.Grid(p)
	uid := grid[cell]
	if uid == 0 {
		return false
	}
	u := p.Units[uid]

	if u.Stars > 1 {
		p.addReward("sellPenalty", -g.rewards.SellHighStar*float64(u.Stars-1))
	}

	copies := 1
	for i := 1; i < u.Stars; i++ {
		copies *= EvolutionCopies
	}
	g.pool.Release(u.Species, copies)
	p.Money += SellPrice(u.Species, u.Stars)
	p.SellCount++
	for _, item := range u.Items {
		if len(p.HeldItems) < MaxHeldItems {
			p.HeldItems = append(p.HeldItems, item)
		}
	}
	delete(p.Units, uid)
	p.RecomputeSynergies()
	g.caches.Invalidate(p.ID)
	return true
}

func (g *Game) applyReroll(p *Player) bool {
	if p.FreeRerolls > 0 {
		p.FreeRerolls--
	} else if p.Money >= RerollCost {
		p.Money -= RerollCost
		p.GoldSpent += RerollCost
	} else {
		return false
	}
	p.RerollCount++
	p.addReward("reroll", g.rewards.RerollPerStage*float64(g.Stage))
	rollShop(p, g.pool, g.rng)
	g.caches.Invalidate(p.ID)
	return true
}

func (g *Game) applyLevelUp(p *Player) bool {
	if p.Level >= MaxLevel || p.Money < LevelUpCost {
		return false
	}
	boardFull := p.BoardSize >= MaxTeamSize(p.Level)
	p.Money -= LevelUpCost
	p.GoldSpent += LevelUpCost
	g.gainExp(p, LevelUpExp)
	if boardFull {
		p.addReward("levelUp", g.rewards.LevelUpBoardFull)
	}
	g.caches.Invalidate(p.ID)
	return true
}

func (g *Game) applyLockShop(p *Player) bool {
	p.ShopLocked = !p.ShopLocked
	p.lockUsedTurn = true
	g.caches.Invalidate(p.ID)
	return true
}

func (g *Game) applyMove(p *Player, target int) bool {
	grid := g.caches.Grid(p)
	if grid[target] != 0 {
		return false
	}
	src := -1
	for c := 0; c < NumCells; c++ {
		if grid[c] != 0 {
			src = c
			break
		}
	}
	if src < 0 {
		return false
	}
	u := p.Units[grid[src]]
	if !u.OnBoard() && IsBoardCell(target) && p.BoardSize >= MaxTeamSize(p.Level) {
		return false
	}

	p.moveStreak++
	if p.moveStreak > g.rewards.FidgetFreeMoves {
		p.addReward("fidget", -g.rewards.FidgetPerMove*float64(p.moveStreak-g.rewards.FidgetFreeMoves))
	}
	p.lastMoveFrom = src

	u.Cell = target
	p.RecomputeSynergies()
	g.caches.Invalidate(p.ID)
	return true
}

// applyRemoveShop discards a shop slot without spending gold: affordability
// is a legality gate only. The shop locks so the next refresh does not
// immediately refill the slot, and the species returns to the shared pool.
func (g *Game) applyRemoveShop(p *Player, slot int) bool {
	id := p.Shop[slot]
	if id == SpeciesNone || p.Money < SpeciesCost(id) {
		return false
	}
	p.Shop[slot] = SpeciesNone
	p.ShopLocked = true
	g.pool.Release(id, 1)
	g.caches.Invalidate(p.ID)
	return true
}

func (g *Game) applyCombine(p *Player, pairIdx int) bool {
	pairs := g.caches.Pairs(p)
	if pairIdx >= len(pairs) {
		return false
	}
	pair := pairs[pairIdx]
	result := CraftedResult(p.HeldItems[pair.A], p.HeldItems[pair.B])
	if result == ItemNone {
		return false
	}
	// Remove the higher index first so the lower one stays valid.
	p.HeldItems = append(p.HeldItems[:pair.B], p.HeldItems[pair.B+1:]...)
	p.HeldItems = append(p.HeldItems[:pair.A], p.HeldItems[pair.A+1:]...)
	p.HeldItems = append(p.HeldItems, result)
	g.caches.Invalidate(p.ID)
	return true
}

func (g *Game) applyPick(p *Player, idx int) bool {
	if idx >= len(p.Propositions) {
		return false
	}
	prop := p.Propositions[idx]

	if prop.Species != SpeciesNone {
		if !g.pickFeasible(p, prop.Species) {
			return false
		}
		cell := p.firstFreeBenchCell()
		g.newUnit(p, prop.Species, 1, cell)
		if duo := SpeciesByID(prop.Species).DuoWith; duo != SpeciesNone {
			g.newUnit(p, duo, 1, p.firstFreeBenchCell())
		}
		g.checkEvolution(p, prop.Species)
		if p.FirstSpecies == SpeciesNone {
			p.FirstSpecies = prop.Species
		}
	}
	if prop.Item != ItemNone && len(p.HeldItems) < MaxHeldItems {
		p.HeldItems = append(p.HeldItems, prop.Item)
	}

	// One pick resolves the whole pending set.
	p.Propositions = nil
	p.RecomputeSynergies()
	g.caches.Invalidate(p.ID)
	return true
}

// pickFeasible reports whether a species offer can be placed: enough free
// bench cells, or an automatic evolution-by-count that frees the space.
func (g *Game) pickFeasible(p *Player, id SpeciesID) bool {
	needed := 1
	if SpeciesByID(id).DuoWith != SpeciesNone {
		needed = 2
	}
	if p.FreeBenchCells() >= needed {
		return true
	}
	// The pick may complete a merge even with a full bench.
	return needed == 1 && p.CopiesOwned(id, 1) >= EvolutionCopies-1
}

// gainExp adds experience and applies any resulting level-ups.
func (g *Game) gainExp(p *Player, exp int) {
	p.Exp += exp
	for p.Level < MaxLevel && p.Exp >= ExpToNext(p.Level) {
		p.Exp -= ExpToNext(p.Level)
		p.Level++
	}
	if p.Level >= MaxLevel {
		p.Exp = 0
	}
}

// checkEvolution merges three same-star copies of a species into one unit of
// the next star level, cascading. The kept unit prefers a board position;
// items from merged-away copies transfer up to the item cap, overflowing to
// the held list.
func (g *Game) checkEvolution(p *Player, id SpeciesID) {
	for stars := 1; stars < MaxStars; stars++ {
		for p.CopiesOwned(id, stars) >= EvolutionCopies {
			var copies []*Unit
			for _, u := range p.Units {
				if u.Species == id && u.Stars == stars {
					copies = append(copies, u)
				}
			}
			// Deterministic survivor selection: board placement first, then
			// lowest cell, then unit ID. Map iteration order must not leak.
			sort.Slice(copies, func(i, j int) bool {
				a, b := copies[i], copies[j]
				if a.OnBoard() != b.OnBoard() {
					return a.OnBoard()
				}
				ca, cb := a.Cell, b.Cell
				if ca < 0 {
					ca = NumCells
				}
				if cb < 0 {
					cb = NumCells
				}
				if ca != cb {
					return ca < cb
				}
				return a.ID < b.ID
			})
			keep := copies[0]
			keep.Stars = stars + 1
			for _, m := range copies[1:EvolutionCopies] {
				for _, item := range m.Items {
					if len(keep.Items) < MaxUnitItems {
						keep.Items = append(keep.Items, item)
					} else if len(p.HeldItems) < MaxHeldItems {
						p.HeldItems = append(p.HeldItems, item)
					}
				}
				delete(p.Units, m.ID)
			}
		}
	}
}
