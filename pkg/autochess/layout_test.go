package autochess

import "testing"

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for idx := 0; idx < NumActions; idx++ {
		a := DecodeAction(idx)
		if a.Kind == ActionInvalid {
			t.Fatalf("action %d decoded as invalid", idx)
		}
		if got := EncodeAction(a); got != idx {
			t.Errorf("action %d: round trip gave %d", idx, got)
		}
	}
}

func TestDecodeActionBoundaries(t *testing.T) {
	cases := []struct {
		idx    int
		kind   ActionKind
		target int
	}{
		{0, ActionBuy, 0},
		{5, ActionBuy, 5},
		{6, ActionReroll, 0},
		{7, ActionLevelUp, 0},
		{8, ActionLockShop, 0},
		{9, ActionEndTurn, 0},
		{10, ActionMove, 0},
		{41, ActionMove, 31},
		{42, ActionSell, 0},
		{73, ActionSell, 31},
		{74, ActionRemoveShop, 0},
		{79, ActionRemoveShop, 5},
		{80, ActionPick, 0},
		{85, ActionPick, 5},
		{86, ActionCombine, 0},
		{91, ActionCombine, 5},
	}
	for _, c := range cases {
		a := DecodeAction(c.idx)
		if a.Kind != c.kind || a.Target != c.target {
			t.Errorf("action %d: got %v/%d, want %v/%d", c.idx, a.Kind, a.Target, c.kind, c.target)
		}
	}
}

func TestDecodeActionOutOfRange(t *testing.T) {
	for _, idx := range []int{-1, NumActions, 1000} {
		if a := DecodeAction(idx); a.Kind != ActionInvalid {
			t.Errorf("action %d: got %v, want invalid", idx, a.Kind)
		}
	}
}

func TestObservationLayout(t *testing.T) {
	if ObsSize != 612 {
		t.Fatalf("ObsSize = %d, want 612", ObsSize)
	}
	if NumActions != 92 {
		t.Fatalf("NumActions = %d, want 92", NumActions)
	}
	offsets := []struct {
		name string
		got  int
		want int
	}{
		{"player", OffPlayer, 0},
		{"shop", OffShop, 14},
		{"board", OffBoard, 68},
		{"items", OffItems, 452},
		{"synergies", OffSynergies, 462},
		{"game", OffGame, 493},
		{"opponents", OffOpponents, 500},
		{"propositions", OffPropositions, 570},
	}
	for _, o := range offsets {
		if o.got != o.want {
			t.Errorf("offset %s = %d, want %d", o.name, o.got, o.want)
		}
	}
}

func TestSellPriceTiers(t *testing.T) {
	tier1 := speciesOfTier[1][0]
	tier3 := speciesOfTier[3][0]
	cases := []struct {
		id    SpeciesID
		stars int
		want  int
	}{
		{tier1, 1, 1},
		{tier1, 2, 3},
		{tier1, 3, 9},
		{tier3, 1, 3},
		{tier3, 2, 8},
		{tier3, 3, 23},
	}
	for _, c := range cases {
		if got := SellPrice(c.id, c.stars); got != c.want {
			t.Errorf("SellPrice(tier %d, %d stars) = %d, want %d",
				SpeciesByID(c.id).Tier, c.stars, got, c.want)
		}
	}
}

func TestInterestAndStreak(t *testing.T) {
	if got := Interest(47); got != 4 {
		t.Errorf("Interest(47) = %d, want 4", got)
	}
	if got := Interest(80); got != 5 {
		t.Errorf("Interest(80) = %d, want 5 (capped)", got)
	}
	streaks := map[int]int{0: 0, 1: 0, 2: 1, 3: 1, 4: 2, 5: 2, 6: 3, 9: 3, -4: 2, -6: 3}
	for s, want := range streaks {
		if got := StreakBonus(s); got != want {
			t.Errorf("StreakBonus(%d) = %d, want %d", s, got, want)
		}
	}
}

func TestGoldPressureTables(t *testing.T) {
	if got := AvgDamageByStage(7); got != 8 {
		t.Errorf("AvgDamageByStage(7) = %d, want 8", got)
	}
	if got := AvgDamageByStage(25); got != 18 {
		t.Errorf("AvgDamageByStage(25) = %d, want 18", got)
	}
	// 100 life at stage 12 survives many average hits.
	if lives := LivesRemaining(100, 12); lives < 4 {
		t.Errorf("LivesRemaining(100, 12) = %d, want >= 4", lives)
	}
	if got := FreeGoldForLives(3); got != 50 {
		t.Errorf("FreeGoldForLives(3) = %d, want 50", got)
	}
	if got := FreeGoldForLives(1); got != 10 {
		t.Errorf("FreeGoldForLives(1) = %d, want 10", got)
	}
	if got := SavingsTarget(4); got != 0 {
		t.Errorf("SavingsTarget(4) = %d, want 0 before stage 5", got)
	}
	if got := SavingsTarget(10); got != 30 {
		t.Errorf("SavingsTarget(10) = %d, want 30", got)
	}
	if got := SavingsTarget(40); got != 50 {
		t.Errorf("SavingsTarget(40) = %d, want 50 (capped)", got)
	}
}

func TestCraftedRecipes(t *testing.T) {
	r := CraftedResult(ItemEmberShard, ItemTidePearl)
	if r == ItemNone {
		t.Fatal("basic pair should craft")
	}
	if IsBasicItem(r) {
		t.Errorf("crafted item %d should not be basic", r)
	}
	if got := CraftedResult(ItemTidePearl, ItemEmberShard); got != r {
		t.Errorf("recipe should be order independent: %d vs %d", got, r)
	}
	if got := CraftedResult(r, ItemEmberShard); got != ItemNone {
		t.Errorf("crafted input should not craft again, got %d", got)
	}
}
