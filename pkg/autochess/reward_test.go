package autochess

import (
	"math"
	"testing"
)

func nearF(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGoldShapingLateBrackets(t *testing.T) {
	g, p := testGame(1)
	g.Stage = 30
	p.Money = 70

	g.goldShaping(p)
	r, delta := p.drainReward()
	// 10 gold in the 50-60 bracket plus 10 in the 60-80 bracket.
	want := -(10*0.01 + 10*0.02)
	if !nearF(delta["goldExcess"], want) {
		t.Errorf("goldExcess = %v, want %v", delta["goldExcess"], want)
	}
	if !nearF(r, want) {
		t.Errorf("total = %v, want %v", r, want)
	}
}

func TestGoldShapingBracketsDoNotOverlap(t *testing.T) {
	g, p := testGame(1)
	g.Stage = 30
	p.Money = 100

	g.goldShaping(p)
	_, delta := p.drainReward()
	want := -(10*0.01 + 20*0.02 + 20*0.04)
	if !nearF(delta["goldExcess"], want) {
		t.Errorf("goldExcess = %v, want %v", delta["goldExcess"], want)
	}
}

func TestGoldShapingEarlyUsesPressureTiers(t *testing.T) {
	g, p := testGame(1)
	g.Stage = 10
	p.Life = 100 // plenty of lives, unlimited free gold
	p.Money = 80

	g.goldShaping(p)
	_, delta := p.drainReward()
	if delta["goldExcess"] != 0 {
		t.Errorf("goldExcess = %v, want 0 with 4+ lives", delta["goldExcess"])
	}

	p.Life = 20 // 2 lives at stage 10, allowance 30
	p.Money = 80
	g.goldShaping(p)
	_, delta = p.drainReward()
	if !nearF(delta["goldExcess"], -0.005*50) {
		t.Errorf("goldExcess = %v, want %v", delta["goldExcess"], -0.005*50)
	}
}

func TestGoldPressureBelowSavingsTarget(t *testing.T) {
	g, p := testGame(1)
	g.Stage = 10 // target min(50, 30) = 30
	p.Money = 5

	g.goldShaping(p)
	_, delta := p.drainReward()
	if !nearF(delta["goldPressure"], -0.004*25) {
		t.Errorf("goldPressure = %v, want %v", delta["goldPressure"], -0.004*25)
	}
}

func TestLowLifeShaping(t *testing.T) {
	g, p := testGame(1)
	g.Stage = 20 // avg damage 16
	p.Life = 15  // one life remaining
	p.Money = 12
	// One board unit and one unrelated bench unit.
	g.newUnit(p, speciesOfTier[1][0], 1, GridWidth)
	g.newUnit(p, speciesOfTier[1][1], 1, 0)
	p.RecomputeSynergies()

	g.lowLifeShaping(p)
	_, delta := p.drainReward()
	if !nearF(delta["goldAtLowLife"], -0.01*12) {
		t.Errorf("goldAtLowLife = %v, want %v", delta["goldAtLowLife"], -0.01*12)
	}
	if !nearF(delta["benchDeadWeight"], -0.05) {
		t.Errorf("benchDeadWeight = %v, want -0.05", delta["benchDeadWeight"])
	}
}

func TestCombatShapingWin(t *testing.T) {
	g, p := testGame(1)
	g.Stage = 4 // before any savings target or damage table
	p.Life = 80
	p.Money = 0
	p.SnapshotSynergyTiers()

	g.combatShaping(p, OutcomeWin, 2)
	r, delta := p.drainReward()
	if !nearF(delta["outcome"], 0.6) {
		t.Errorf("outcome = %v, want 0.6", delta["outcome"])
	}
	if !nearF(delta["hpPreserve"], 0.002*80) {
		t.Errorf("hpPreserve = %v, want %v", delta["hpPreserve"], 0.002*80)
	}
	if !nearF(delta["kills"], 0.06) {
		t.Errorf("kills = %v, want 0.06", delta["kills"])
	}
	if !nearF(delta["survival"], 0.12) {
		t.Errorf("survival = %v, want 0.12", delta["survival"])
	}
	want := 0.6 + 0.16 + 0.06 + 0.12
	if !nearF(r, want) {
		t.Errorf("total = %v, want %v", r, want)
	}
}

func TestCombatShapingLossHasNoHPBonus(t *testing.T) {
	g, p := testGame(1)
	g.Stage = 4
	p.Money = 0

	g.combatShaping(p, OutcomeLoss, 0)
	_, delta := p.drainReward()
	if !nearF(delta["outcome"], -0.5) {
		t.Errorf("outcome = %v, want -0.5", delta["outcome"])
	}
	if delta["hpPreserve"] != 0 {
		t.Errorf("hpPreserve = %v, want 0 on loss", delta["hpPreserve"])
	}
}

func TestSynergyDeltaPaysNewActivations(t *testing.T) {
	g, p := testGame(1)
	g.Stage = 4
	p.Money = 0
	p.SnapshotSynergyTiers() // all inactive

	// Place enough of one synergy to cross its first threshold.
	syn := SynergyID(1)
	placed := 0
	cell := GridWidth
	for id := SpeciesID(1); int(id) <= NumSpecies && placed < SynergyThresholds(syn)[0]; id++ {
		if !hasSynergy(id, syn) {
			continue
		}
		g.newUnit(p, id, 1, cell)
		cell++
		placed++
	}
	if placed < SynergyThresholds(syn)[0] {
		t.Skipf("catalog has only %d species with synergy %d", placed, syn)
	}
	p.Level = 9
	p.RecomputeSynergies()

	g.synergyShaping(p)
	_, delta := p.drainReward()
	if delta["synergyDelta"] < 0.15-1e-9 {
		t.Errorf("synergyDelta = %v, want at least 0.15", delta["synergyDelta"])
	}
	if delta["synergyDepth"] <= 0 {
		t.Errorf("synergyDepth = %v, want positive", delta["synergyDepth"])
	}
}

func hasSynergy(id SpeciesID, syn SynergyID) bool {
	for _, s := range SpeciesByID(id).Synergies {
		if s == syn {
			return true
		}
	}
	return false
}

func TestInterestShapingGatedOnBoard(t *testing.T) {
	g, p := testGame(1)
	p.Level = 2
	g.interestShaping(p, 5)
	if r, _ := p.drainReward(); r != 0 {
		t.Errorf("interest with an empty board = %v, want 0", r)
	}

	g.newUnit(p, speciesOfTier[1][0], 1, GridWidth)
	p.RecomputeSynergies()
	g.interestShaping(p, 5)
	r, delta := p.drainReward()
	if !nearF(delta["interest"], 0.05) {
		t.Errorf("interest = %v, want 0.05", delta["interest"])
	}
	if !nearF(r, 0.05) {
		t.Errorf("total = %v, want 0.05", r)
	}
}

func TestPlacementRewardTable(t *testing.T) {
	g, p := testGame(1)
	p.Rank = 1
	g.placementReward(p)
	if r, _ := p.drainReward(); !nearF(r, 3.0) {
		t.Errorf("rank 1 = %v, want 3.0", r)
	}

	p.Rank = 8
	g.placementReward(p)
	if r, _ := p.drainReward(); !nearF(r, -2.0) {
		t.Errorf("rank 8 = %v, want -2.0", r)
	}
}

func TestDuplicateBuyEscalatesToEvolution(t *testing.T) {
	g, p := testGame(1)
	id := speciesOfTier[1][0]
	p.Money = 10
	p.Shop[0], p.Shop[1], p.Shop[2] = id, id, id

	g.Apply(p, Action{Kind: ActionBuy, Target: 0})
	_, delta := p.drainReward()
	if delta["duplicateBuy"] != 0 {
		t.Errorf("first copy pays %v, want 0", delta["duplicateBuy"])
	}

	g.Apply(p, Action{Kind: ActionBuy, Target: 1})
	_, delta = p.drainReward()
	if !nearF(delta["duplicateBuy"], 0.05) {
		t.Errorf("second copy pays %v, want 0.05", delta["duplicateBuy"])
	}

	g.Apply(p, Action{Kind: ActionBuy, Target: 2})
	_, delta = p.drainReward()
	if !nearF(delta["duplicateBuy"], 0.15) {
		t.Errorf("merging copy pays %v, want 0.15", delta["duplicateBuy"])
	}
}
