package autochess

// Observation encoding: projects one player's visible state into the fixed
// ObsSize float vector, block by block, normalizing every field against its
// declared scale and clamping into [0, 1]. The encoded vector is cached per
// player and reused until a mutation invalidates it.

// Observe returns the player's observation, reusing the cache when clean.
func (g *Game) Observe(p *Player) []float32 {
	if obs := g.caches.Observation(p.ID); obs != nil {
		return obs
	}
	obs := g.encode(p)
	g.caches.StoreObservation(p.ID, obs)
	return obs
}

func clamp01(v float64) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return float32(v)
}

func (g *Game) encode(p *Player) []float32 {
	obs := make([]float32, ObsSize)

	g.encodePlayerStats(obs, p)
	g.encodeShop(obs, p)
	g.encodeBoard(obs, p)
	g.encodeHeldItems(obs, p)
	g.encodeSynergies(obs, p)
	g.encodeGameInfo(obs, p)
	g.encodeOpponents(obs, p)
	g.encodePropositions(obs, p)

	return obs
}

func (g *Game) encodePlayerStats(obs []float32, p *Player) {
	base := OffPlayer
	obs[base+0] = clamp01(float64(p.Life) / ScaleLife)
	obs[base+1] = clamp01(float64(p.Money) / ScaleGold)
	obs[base+2] = clamp01(float64(p.Level) / ScaleLevel)
	if next := ExpToNext(p.Level); next > 0 {
		obs[base+3] = clamp01(float64(p.Exp) / float64(next))
	}
	obs[base+4] = clamp01(float64(p.Exp) / ScaleGold)
	obs[base+5] = historyScore(p.History)
	obs[base+6] = clamp01(float64(p.Rank) / float64(NumPlayers))
	obs[base+7] = clamp01(float64(p.BoardSize) / ScaleLevel)
	obs[base+8] = clamp01(float64(p.BenchCount()) / float64(BenchSize))
	obs[base+9] = clamp01(float64(len(p.HeldItems)) / float64(MaxHeldItems))
	if len(p.Propositions) > 0 {
		obs[base+10] = 1
	}
	if p.ShopLocked {
		obs[base+11] = 1
	}
	obs[base+12] = clamp01(float64(p.FreeRerolls) / 5.0)
	obs[base+13] = clamp01((float64(p.Streak) + ScaleStreak) / (2 * ScaleStreak))
}

// historyScore compresses the rolling outcome window into a single win-rate.
func historyScore(h []FightOutcome) float32 {
	if len(h) == 0 {
		return 0.5
	}
	wins := 0.0
	for _, o := range h {
		switch o {
		case OutcomeWin:
			wins += 1
		case OutcomeDraw:
			wins += 0.5
		}
	}
	return clamp01(wins / float64(len(h)))
}

func (g *Game) encodeShop(obs []float32, p *Player) {
	for slot := 0; slot < NumShopSlots; slot++ {
		base := OffShop + slot*ObsShopFeatures
		id := p.Shop[slot]
		if id == SpeciesNone {
			continue
		}
		sp := SpeciesByID(id)
		obs[base+0] = 1
		obs[base+1] = clamp01(float64(id) / float64(NumSpecies))
		obs[base+2] = clamp01(float64(sp.Tier) / 5.0)
		obs[base+3] = clamp01(float64(SpeciesCost(id)) / ScaleCost)
		obs[base+4] = synergyFeature(sp.Synergies, 0)
		obs[base+5] = synergyFeature(sp.Synergies, 1)
		if sp.DuoWith != SpeciesNone {
			obs[base+6] = 1
		}
		if p.Money >= SpeciesCost(id) {
			obs[base+7] = 1
		}
		obs[base+8] = clamp01(float64(p.CopiesOwned(id, 1)) / float64(EvolutionCopies))
	}
}

func synergyFeature(syns []SynergyID, idx int) float32 {
	if idx >= len(syns) {
		return 0
	}
	return clamp01(float64(syns[idx]) / float64(NumSynergies))
}

func (g *Game) encodeBoard(obs []float32, p *Player) {
	grid := g.caches.Grid(p)
	for cell := 0; cell < NumCells; cell++ {
		base := OffBoard + cell*ObsBoardFeatures
		uid := grid[cell]
		if uid == 0 {
			continue
		}
		u := p.Units[uid]
		sp := SpeciesByID(u.Species)
		obs[base+0] = 1
		obs[base+1] = clamp01(float64(u.Species) / float64(NumSpecies))
		obs[base+2] = clamp01(float64(u.Stars) / ScaleStars)
		obs[base+3] = clamp01(float64(sp.Tier) / 5.0)
		if IsBoardCell(cell) {
			obs[base+4] = 1
		}
		obs[base+5] = clamp01(float64(len(u.Items)) / float64(MaxUnitItems))
		for i := 0; i < MaxUnitItems; i++ {
			if i < len(u.Items) {
				obs[base+6+i] = clamp01(float64(u.Items[i]) / float64(NumItems))
			}
		}
		obs[base+9] = synergyFeature(sp.Synergies, 0)
		obs[base+10] = synergyFeature(sp.Synergies, 1)
		obs[base+11] = clamp01(float64(p.CopiesOwned(u.Species, u.Stars)) / float64(EvolutionCopies))
	}
}

func (g *Game) encodeHeldItems(obs []float32, p *Player) {
	for i := 0; i < MaxHeldItems; i++ {
		if i < len(p.HeldItems) {
			obs[OffItems+i] = clamp01(float64(p.HeldItems[i]) / float64(NumItems))
		}
	}
}

func (g *Game) encodeSynergies(obs []float32, p *Player) {
	for id := SynergyID(1); int(id) <= NumSynergies; id++ {
		ths := SynergyThresholds(id)
		last := ths[len(ths)-1]
		obs[OffSynergies+int(id)-1] = clamp01(float64(p.SynergyCount(id)) / float64(last))
	}
}

func (g *Game) encodeGameInfo(obs []float32, p *Player) {
	base := OffGame
	obs[base+0] = clamp01(float64(g.Stage) / ScaleStage)
	if len(p.Propositions) > 0 {
		obs[base+1] = 1
	}
	obs[base+2] = clamp01(float64(len(g.AliveSeats())) / float64(NumPlayers))
	if IsPVEStage(g.Stage) {
		obs[base+3] = 1
	}
	obs[base+4] = clamp01(float64(p.ActionsThisTurn) / ScaleActions)
	obs[base+5] = clamp01(float64(TurnActionBudget-p.ActionsThisTurn) / ScaleActions)
	obs[base+6] = clamp01(float64(MaxTeamSize(p.Level)) / ScaleLevel)
}

func (g *Game) encodeOpponents(obs []float32, p *Player) {
	i := 0
	for _, o := range g.Players {
		if o.Seat == p.Seat {
			continue
		}
		base := OffOpponents + i*ObsOpponentFeatures
		i++
		if o.Alive {
			obs[base+0] = 1
		}
		obs[base+1] = clamp01(float64(o.Life) / ScaleLife)
		obs[base+2] = clamp01(float64(o.Level) / ScaleLevel)
		obs[base+3] = clamp01(float64(o.BoardSize) / ScaleLevel)
		obs[base+4] = clamp01((float64(o.Streak) + ScaleStreak) / (2 * ScaleStreak))
		obs[base+5] = clamp01(float64(o.Rank) / float64(NumPlayers))
		obs[base+6] = clamp01(float64(o.Money) / ScaleGold)
		obs[base+7] = clamp01(float64(activeSynergyCount(o)) / float64(NumSynergies))
		obs[base+8] = avgBoardStars(o)
		obs[base+9] = historyScore(o.History)
	}
}

func activeSynergyCount(p *Player) int {
	n := 0
	for id := SynergyID(1); int(id) <= NumSynergies; id++ {
		if p.ActiveSynergyTier(id) > 0 {
			n++
		}
	}
	return n
}

func avgBoardStars(p *Player) float32 {
	total, n := 0, 0
	for _, u := range p.Units {
		if u.OnBoard() {
			total += u.Stars
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return clamp01(float64(total) / float64(n) / ScaleStars)
}

func (g *Game) encodePropositions(obs []float32, p *Player) {
	for i := 0; i < MaxPropositions; i++ {
		if i >= len(p.Propositions) {
			continue
		}
		base := OffPropositions + i*ObsPropositionFeatures
		prop := p.Propositions[i]
		if prop.Species != SpeciesNone {
			sp := SpeciesByID(prop.Species)
			obs[base+0] = clamp01(float64(prop.Species) / float64(NumSpecies))
			obs[base+1] = clamp01(float64(sp.Tier) / 5.0)
			if sp.DuoWith != SpeciesNone {
				obs[base+2] = 1
			}
			if g.pickFeasible(p, prop.Species) {
				obs[base+3] = 1
			}
			obs[base+4] = synergyFeature(sp.Synergies, 0)
			obs[base+5] = synergyFeature(sp.Synergies, 1)
		}
		if prop.Item != ItemNone {
			obs[base+6] = clamp01(float64(prop.Item) / float64(NumItems))
		}
	}
}
