package autochess

import "testing"

func TestGridRebuildsOnInvalidate(t *testing.T) {
	g, p := testGame(1)
	u := g.newUnit(p, speciesOfTier[1][0], 1, 4)

	grid := g.Caches().Grid(p)
	if grid[4] != u.ID {
		t.Fatalf("grid[4] = %d, want %d", grid[4], u.ID)
	}

	// A raw mutation leaves the cached grid stale until invalidated.
	u.Cell = 9
	grid = g.Caches().Grid(p)
	if grid[4] != u.ID {
		t.Error("grid should stay stale without an invalidate")
	}

	g.Caches().Invalidate(p.ID)
	grid = g.Caches().Grid(p)
	if grid[4] != 0 || grid[9] != u.ID {
		t.Errorf("grid after invalidate: [4]=%d [9]=%d, want 0 and %d", grid[4], grid[9], u.ID)
	}
}

func TestPairsEnumeratesOnlyRecipes(t *testing.T) {
	g, p := testGame(1)
	crafted := CraftedResult(ItemEmberShard, ItemEmberShard)
	p.HeldItems = []ItemID{ItemEmberShard, crafted, ItemTidePearl}
	g.Caches().Invalidate(p.ID)

	pairs := g.Caches().Pairs(p)
	if len(pairs) != 1 {
		t.Fatalf("pairs = %d, want 1 (crafted items never pair)", len(pairs))
	}
	if pairs[0].A != 0 || pairs[0].B != 2 {
		t.Errorf("pair indices = %d/%d, want 0/2", pairs[0].A, pairs[0].B)
	}
	if want := CraftedResult(ItemEmberShard, ItemTidePearl); pairs[0].Result != want {
		t.Errorf("pair result = %d, want %d", pairs[0].Result, want)
	}
}

func TestPairsCappedAtActionSlots(t *testing.T) {
	g, p := testGame(1)
	for i := 0; i < 6; i++ {
		p.HeldItems = append(p.HeldItems, ItemEmberShard)
	}
	g.Caches().Invalidate(p.ID)

	// Six identical basics give 15 raw pairs; the action space holds six.
	pairs := g.Caches().Pairs(p)
	if len(pairs) != MaxCombinePairs {
		t.Errorf("pairs = %d, want cap %d", len(pairs), MaxCombinePairs)
	}
}

func TestObservationCacheProtocol(t *testing.T) {
	g, p := testGame(1)
	if got := g.Caches().Observation(p.ID); got != nil {
		t.Fatal("dirty cache should report nil")
	}

	obs := make([]float32, ObsSize)
	obs[0] = 0.25
	g.Caches().StoreObservation(p.ID, obs)
	if got := g.Caches().Observation(p.ID); got == nil || got[0] != 0.25 {
		t.Fatal("stored observation should be returned while clean")
	}

	g.Caches().InvalidateObs(p.ID)
	if got := g.Caches().Observation(p.ID); got != nil {
		t.Fatal("invalidate should drop the cached observation")
	}
}

func TestInvalidateIsPerPlayer(t *testing.T) {
	g, _ := testGame(1)
	a, b := g.Players[0], g.Players[1]
	g.Caches().StoreObservation(a.ID, make([]float32, ObsSize))
	g.Caches().StoreObservation(b.ID, make([]float32, ObsSize))

	g.Caches().Invalidate(a.ID)
	if g.Caches().Observation(a.ID) != nil {
		t.Error("player A cache should be dropped")
	}
	if g.Caches().Observation(b.ID) == nil {
		t.Error("player B cache should survive")
	}
}
