package autochess

// LegalActions computes the 0/1 legality flags for every discrete action.
// Recomputed fresh on every request; only the position-grid cache is reused.
// End turn is always legal, so the mask is never all zeros.
func (g *Game) LegalActions(p *Player) []int8 {
	mask := make([]int8, NumActions)
	mask[ActEndTurn] = 1

	if g.Done || !p.Alive {
		return mask
	}

	// A pending proposition restricts legality to feasible pick slots.
	if len(p.Propositions) > 0 {
		for i, prop := range p.Propositions {
			if prop.Species == SpeciesNone || g.pickFeasible(p, prop.Species) {
				mask[ActPickBase+i] = 1
			}
		}
		return mask
	}

	grid := g.caches.Grid(p)

	// Buy: slot filled, affordable, and placeable.
	benchFree := p.FreeBenchCells() > 0
	for slot, id := range p.Shop {
		if id == SpeciesNone || p.Money < SpeciesCost(id) {
			continue
		}
		if benchFree || p.CopiesOwned(id, 1) >= EvolutionCopies-1 {
			mask[ActBuyBase+slot] = 1
		}
	}

	if p.FreeRerolls > 0 || p.Money >= RerollCost {
		mask[ActReroll] = 1
	}
	if p.Level < MaxLevel && p.Money >= LevelUpCost {
		mask[ActLevelUp] = 1
	}
	if !p.lockUsedTurn {
		mask[ActLockShop] = 1
	}

	// Move: any empty target cell, given a movable source unit. A bench
	// source cannot cross onto a full board, and once a fidget streak is
	// running the reverse of the last move is suppressed outright.
	src := -1
	for c := 0; c < NumCells; c++ {
		if grid[c] != 0 {
			src = c
			break
		}
	}
	if src >= 0 {
		srcOnBoard := IsBoardCell(src)
		boardFull := p.BoardSize >= MaxTeamSize(p.Level)
		for cell := 0; cell < NumCells; cell++ {
			if grid[cell] != 0 {
				continue
			}
			if !srcOnBoard && IsBoardCell(cell) && boardFull {
				continue
			}
			if p.moveStreak >= g.rewards.FidgetFreeMoves && cell == p.lastMoveFrom {
				continue
			}
			mask[ActMoveBase+cell] = 1
		}
	}

	// Sell: any occupied cell.
	for cell := 0; cell < NumCells; cell++ {
		if grid[cell] != 0 {
			mask[ActSellBase+cell] = 1
		}
	}

	// Remove from shop: affordability gates, gold is never spent.
	for slot, id := range p.Shop {
		if id != SpeciesNone && p.Money >= SpeciesCost(id) {
			mask[ActRemoveShopBase+slot] = 1
		}
	}

	// Combine: one flag per enumerated craftable pair.
	for i := range g.caches.Pairs(p) {
		mask[ActCombineBase+i] = 1
	}

	return mask
}
