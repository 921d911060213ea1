package autochess

import "testing"

func TestMaskEndTurnAlwaysLegal(t *testing.T) {
	g, p := testGame(1)
	if mask := g.LegalActions(p); mask[ActEndTurn] != 1 {
		t.Error("end turn should always be legal")
	}
	p.Alive = false
	if mask := g.LegalActions(p); mask[ActEndTurn] != 1 {
		t.Error("end turn should stay legal for a dead player")
	}
}

func TestMaskDeadPlayerEndTurnOnly(t *testing.T) {
	g, p := testGame(1)
	p.Money = 50
	p.Shop[0] = speciesOfTier[1][0]
	g.newUnit(p, speciesOfTier[1][1], 1, 0)
	p.Alive = false
	g.Caches().Invalidate(p.ID)

	mask := g.LegalActions(p)
	for i, m := range mask {
		want := int8(0)
		if i == ActEndTurn {
			want = 1
		}
		if m != want {
			t.Errorf("action %d: mask = %d, want %d", i, m, want)
		}
	}
}

func TestMaskPendingPropositionsRestrict(t *testing.T) {
	g, p := testGame(1)
	p.Money = 50
	p.Shop[0] = speciesOfTier[1][0]
	p.Propositions = []Proposition{
		{Species: speciesOfTier[2][0]},
		{Item: ItemMoonstone},
	}

	mask := g.LegalActions(p)
	if mask[ActPickBase] != 1 || mask[ActPickBase+1] != 1 {
		t.Error("feasible picks should be legal")
	}
	if mask[ActPickBase+2] != 0 {
		t.Error("absent proposition slot should be masked")
	}
	if mask[ActBuyBase] != 0 || mask[ActReroll] != 0 {
		t.Error("shop actions should be masked while propositions are pending")
	}
	if mask[ActEndTurn] != 1 {
		t.Error("end turn stays legal")
	}
}

func TestMaskBuyRequiresSpaceAndGold(t *testing.T) {
	g, p := testGame(1)
	id := speciesOfTier[4][0]
	p.Shop[0] = id
	p.Money = SpeciesCost(id) - 1
	if mask := g.LegalActions(p); mask[ActBuyBase] != 0 {
		t.Error("unaffordable buy should be masked")
	}

	p.Money = 50
	if mask := g.LegalActions(p); mask[ActBuyBase] != 1 {
		t.Error("affordable buy should be legal")
	}

	for c := 0; c < BenchSize; c++ {
		g.newUnit(p, speciesOfTier[1][c], 1, c)
	}
	g.Caches().Invalidate(p.ID)
	if mask := g.LegalActions(p); mask[ActBuyBase] != 0 {
		t.Error("buy with a full bench and no merge should be masked")
	}
}

func TestMaskSellOnlyOccupiedCells(t *testing.T) {
	g, p := testGame(1)
	g.newUnit(p, speciesOfTier[1][0], 1, 3)

	mask := g.LegalActions(p)
	for cell := 0; cell < NumCells; cell++ {
		want := int8(0)
		if cell == 3 {
			want = 1
		}
		if mask[ActSellBase+cell] != want {
			t.Errorf("sell cell %d: mask = %d, want %d", cell, mask[ActSellBase+cell], want)
		}
	}
}

func TestMaskSuppressesImmediateReverseMove(t *testing.T) {
	g, p := testGame(1)
	g.newUnit(p, speciesOfTier[1][0], 1, 0)
	p.moveStreak = g.Rewards().FidgetFreeMoves
	p.lastMoveFrom = 5

	mask := g.LegalActions(p)
	if mask[ActMoveBase+5] != 0 {
		t.Error("reverse of the previous move should be masked during a fidget streak")
	}
	if mask[ActMoveBase+6] != 1 {
		t.Error("other empty cells should stay legal")
	}
}

func TestMaskCombineFollowsCachedPairs(t *testing.T) {
	g, p := testGame(1)
	p.HeldItems = []ItemID{ItemEmberShard, ItemTidePearl, ItemGaleFeather}
	g.Caches().Invalidate(p.ID)

	pairs := g.Caches().Pairs(p)
	mask := g.LegalActions(p)
	for i := 0; i < MaxCombinePairs; i++ {
		want := int8(0)
		if i < len(pairs) {
			want = 1
		}
		if mask[ActCombineBase+i] != want {
			t.Errorf("combine %d: mask = %d, want %d", i, mask[ActCombineBase+i], want)
		}
	}
}
