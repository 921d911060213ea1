package autochess

// ItemPair is one combinable held-item pair: indices into the held-item list
// plus the crafted result. Pairs are unordered and capped at MaxCombinePairs.
type ItemPair struct {
	A, B   int // held-item list indices, A < B
	Result ItemID
}

// playerCache holds the derived state for one player. Each entry carries its
// own dirty flag so mutations can invalidate only what they touched.
type playerCache struct {
	grid      [NumCells]UnitID
	gridValid bool

	pairs      []ItemPair
	pairsValid bool

	obs      []float32
	obsValid bool
}

// CacheSet owns the per-player derived-state caches for one episode. It is
// created at reset and discarded with the episode; entries are keyed by
// player ID and never shared across episodes.
type CacheSet struct {
	entries map[string]*playerCache
}

// NewCacheSet returns an empty cache set.
func NewCacheSet() *CacheSet {
	return &CacheSet{entries: make(map[string]*playerCache)}
}

func (c *CacheSet) entry(id string) *playerCache {
	e, ok := c.entries[id]
	if !ok {
		e = &playerCache{}
		c.entries[id] = e
	}
	return e
}

// Invalidate marks every cached projection for a player dirty. Called after
// any state-changing operation on that player.
func (c *CacheSet) Invalidate(id string) {
	e := c.entry(id)
	e.gridValid = false
	e.pairsValid = false
	e.obsValid = false
}

// InvalidateObs marks only the encoded observation dirty, for mutations that
// cannot have moved units or changed held items (e.g. money-only changes).
func (c *CacheSet) InvalidateObs(id string) {
	c.entry(id).obsValid = false
}

// InvalidateAllObs marks every player's encoded observation dirty. Each
// vector carries opponent summaries and shared game state, so any mutation
// anywhere dirties all of them; grids and pairs stay per-player.
func (c *CacheSet) InvalidateAllObs() {
	for _, e := range c.entries {
		e.obsValid = false
	}
}

// InvalidateAll marks every player dirty, used when shared game state (stage,
// opponent summaries) changes.
func (c *CacheSet) InvalidateAll() {
	for _, e := range c.entries {
		e.gridValid = false
		e.pairsValid = false
		e.obsValid = false
	}
}

// Clear drops all entries. Reset must call this so no cache survives into the
// next episode.
func (c *CacheSet) Clear() {
	c.entries = make(map[string]*playerCache)
}

// Grid returns the cell-to-unit lookup for a player, rebuilding it from the
// unit arena when dirty.
func (c *CacheSet) Grid(p *Player) *[NumCells]UnitID {
	e := c.entry(p.ID)
	if !e.gridValid {
		e.grid = [NumCells]UnitID{}
		for _, u := range p.Units {
			if u.Cell >= 0 && u.Cell < NumCells {
				e.grid[u.Cell] = u.ID
			}
		}
		e.gridValid = true
	}
	return &e.grid
}

// Pairs returns the enumerated combinable held-item pairs for a player,
// rebuilding when dirty. Only pairs matching a crafting recipe are listed.
func (c *CacheSet) Pairs(p *Player) []ItemPair {
	e := c.entry(p.ID)
	if !e.pairsValid {
		e.pairs = e.pairs[:0]
	enumerate:
		for i := 0; i < len(p.HeldItems); i++ {
			for j := i + 1; j < len(p.HeldItems); j++ {
				result := CraftedResult(p.HeldItems[i], p.HeldItems[j])
				if result == ItemNone {
					continue
				}
				e.pairs = append(e.pairs, ItemPair{A: i, B: j, Result: result})
				if len(e.pairs) >= MaxCombinePairs {
					break enumerate
				}
			}
		}
		e.pairsValid = true
	}
	return e.pairs
}

// Observation returns the cached encoded vector, or nil when dirty. The
// encoder stores a fresh vector via StoreObservation.
func (c *CacheSet) Observation(id string) []float32 {
	e := c.entry(id)
	if !e.obsValid {
		return nil
	}
	return e.obs
}

// StoreObservation caches a freshly encoded vector for a player.
func (c *CacheSet) StoreObservation(id string, obs []float32) {
	e := c.entry(id)
	e.obs = obs
	e.obsValid = true
}
