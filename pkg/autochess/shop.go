package autochess

// ShopPool is the shared pool of species copies all eight shops draw from.
// Buying removes copies; selling and discarding return them.
type ShopPool struct {
	counts map[SpeciesID]int
}

// NewShopPool returns a full pool with per-tier copy counts.
func NewShopPool() *ShopPool {
	p := &ShopPool{counts: make(map[SpeciesID]int, NumSpecies)}
	for id := 1; id <= NumSpecies; id++ {
		sid := SpeciesID(id)
		p.counts[sid] = poolCopiesByTier[SpeciesByID(sid).Tier]
	}
	return p
}

// Take removes one copy of a species. Reports false when exhausted.
func (p *ShopPool) Take(id SpeciesID) bool {
	if p.counts[id] <= 0 {
		return false
	}
	p.counts[id]--
	return true
}

// Release returns n copies of a species to the pool.
func (p *ShopPool) Release(id SpeciesID, n int) {
	if id == SpeciesNone || n <= 0 {
		return
	}
	p.counts[id] += n
}

// Remaining returns the copies left for a species.
func (p *ShopPool) Remaining(id SpeciesID) int {
	return p.counts[id]
}

// draw picks one species for a shop slot: tier by the level odds table, then
// weighted by remaining pool copies within the tier. Returns SpeciesNone when
// the rolled tier is exhausted.
func (p *ShopPool) draw(level int, rng Rand) SpeciesID {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	roll := rng.Intn(100)
	tier := 1
	acc := 0
	for t := 0; t < 5; t++ {
		acc += shopOddsByLevel[level][t]
		if roll < acc {
			tier = t + 1
			break
		}
	}

	total := 0
	for _, id := range speciesOfTier[tier] {
		total += p.counts[id]
	}
	if total == 0 {
		return SpeciesNone
	}
	pick := rng.Intn(total)
	for _, id := range speciesOfTier[tier] {
		pick -= p.counts[id]
		if pick < 0 {
			return id
		}
	}
	return SpeciesNone
}

// rollShop replaces a player's entire shop, releasing unbought contents back
// to the pool first. Drawn species are reserved (taken) until bought back or
// released by the next roll.
func rollShop(p *Player, pool *ShopPool, rng Rand) {
	for slot, id := range p.Shop {
		pool.Release(id, 1)
		p.Shop[slot] = SpeciesNone
	}
	for slot := 0; slot < NumShopSlots; slot++ {
		id := pool.draw(p.Level, rng)
		if id != SpeciesNone {
			pool.Take(id)
		}
		p.Shop[slot] = id
	}
}

// refillShop fills only empty slots, preserving the rest. Used when the shop
// was locked before the refresh.
func refillShop(p *Player, pool *ShopPool, rng Rand) {
	for slot, id := range p.Shop {
		if id != SpeciesNone {
			continue
		}
		drawn := pool.draw(p.Level, rng)
		if drawn != SpeciesNone {
			pool.Take(drawn)
		}
		p.Shop[slot] = drawn
	}
}
