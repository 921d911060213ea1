package autochess

// Static game data: species, synergies, items, prices, stage schedule. The
// tables are a training subset of the live game's catalog; layout code treats
// them as opaque and only depends on the counts declared here.

// SynergyID indexes the synergy tables. Zero is not a valid synergy.
type SynergyID int

// The 31 synergy categories, in observation-block order.
const (
	SynNormal SynergyID = iota + 1
	SynGrass
	SynFire
	SynWater
	SynElectric
	SynFighting
	SynPsychic
	SynDark
	SynSteel
	SynGround
	SynPoison
	SynDragon
	SynField
	SynMonster
	SynHuman
	SynAquatic
	SynBug
	SynFlying
	SynFlora
	SynRock
	SynGhost
	SynFairy
	SynIce
	SynFossil
	SynSound
	SynArtificial
	SynLight
	SynWild
	SynAmorphous
	SynGourmet
	SynBaby
)

// NumSynergies is the number of synergy categories.
const NumSynergies = 31

var synergyNames = [NumSynergies + 1]string{
	"", "normal", "grass", "fire", "water", "electric", "fighting", "psychic",
	"dark", "steel", "ground", "poison", "dragon", "field", "monster", "human",
	"aquatic", "bug", "flying", "flora", "rock", "ghost", "fairy", "ice",
	"fossil", "sound", "artificial", "light", "wild", "amorphous", "gourmet",
	"baby",
}

// SynergyName returns the display name for a synergy.
func SynergyName(id SynergyID) string {
	if id < 1 || int(id) > NumSynergies {
		return ""
	}
	return synergyNames[id]
}

// synergyThresholds lists the activation tiers per synergy. Crossing
// thresholds[0] activates tier one.
var synergyThresholds = [NumSynergies + 1][]int{
	SynNormal:     {3, 6, 9},
	SynGrass:      {3, 5, 7},
	SynFire:       {2, 4, 6},
	SynWater:      {3, 6, 9},
	SynElectric:   {2, 4, 6},
	SynFighting:   {2, 4, 6},
	SynPsychic:    {2, 4, 6},
	SynDark:       {2, 4, 6},
	SynSteel:      {2, 4, 6},
	SynGround:     {2, 4, 6},
	SynPoison:     {3, 6, 9},
	SynDragon:     {2, 4, 6},
	SynField:      {3, 6, 9},
	SynMonster:    {2, 4, 6},
	SynHuman:      {2, 4, 6},
	SynAquatic:    {2, 4, 6},
	SynBug:        {2, 4, 6},
	SynFlying:     {2, 4, 6},
	SynFlora:      {2, 3, 4},
	SynRock:       {2, 4, 6},
	SynGhost:      {2, 4, 6},
	SynFairy:      {2, 4, 6},
	SynIce:        {2, 4, 6},
	SynFossil:     {2, 4, 6},
	SynSound:      {2, 4, 6},
	SynArtificial: {2, 4, 6},
	SynLight:      {2, 3, 4},
	SynWild:       {2, 4, 6},
	SynAmorphous:  {2, 4, 6},
	SynGourmet:    {2, 4, 6},
	SynBaby:       {2, 4, 6},
}

// SynergyThresholds returns the activation thresholds for a synergy.
func SynergyThresholds(id SynergyID) []int {
	if id < 1 || int(id) > NumSynergies {
		return nil
	}
	return synergyThresholds[id]
}

// SynergyTier returns the activation tier (0 = inactive) for a count.
func SynergyTier(id SynergyID, count int) int {
	tier := 0
	for _, th := range SynergyThresholds(id) {
		if count >= th {
			tier++
		}
	}
	return tier
}

// SpeciesID indexes the species catalog. Zero is the empty-slot sentinel.
type SpeciesID int

// SpeciesNone marks an empty shop slot or proposition.
const SpeciesNone SpeciesID = 0

// Species is one entry in the species catalog.
type Species struct {
	Name      string
	Tier      int // 1-5, also the buy price in gold
	Synergies []SynergyID
	DuoWith   SpeciesID // paired species obtained together, 0 for none
}

// speciesCatalog is the training roster. Index = SpeciesID.
var speciesCatalog = []Species{
	{}, // 0: none
	// Tier 1
	{Name: "Embercub", Tier: 1, Synergies: []SynergyID{SynFire, SynField, SynBaby}},
	{Name: "Tidelet", Tier: 1, Synergies: []SynergyID{SynWater, SynAquatic, SynBaby}},
	{Name: "Sproutle", Tier: 1, Synergies: []SynergyID{SynGrass, SynFlora}},
	{Name: "Zapling", Tier: 1, Synergies: []SynergyID{SynElectric, SynWild}},
	{Name: "Pebblit", Tier: 1, Synergies: []SynergyID{SynRock, SynGround}},
	{Name: "Gustwing", Tier: 1, Synergies: []SynergyID{SynFlying, SynNormal}},
	{Name: "Mossmite", Tier: 1, Synergies: []SynergyID{SynBug, SynGrass}},
	{Name: "Pugilat", Tier: 1, Synergies: []SynergyID{SynFighting, SynHuman}},
	{Name: "Glimmite", Tier: 1, Synergies: []SynergyID{SynLight, SynFairy}},
	{Name: "Murkit", Tier: 1, Synergies: []SynergyID{SynDark, SynPoison}},
	{Name: "Chillip", Tier: 1, Synergies: []SynergyID{SynIce, SynAquatic}},
	{Name: "Cogling", Tier: 1, Synergies: []SynergyID{SynSteel, SynArtificial}},
	{Name: "Dozer", Tier: 1, Synergies: []SynergyID{SynNormal, SynField}},
	{Name: "Nibbolt", Tier: 1, Synergies: []SynergyID{SynElectric, SynSound, SynBaby}},
	// Tier 2
	{Name: "Flarelion", Tier: 2, Synergies: []SynergyID{SynFire, SynField}},
	{Name: "Brookfin", Tier: 2, Synergies: []SynergyID{SynWater, SynSound}},
	{Name: "Thornstag", Tier: 2, Synergies: []SynergyID{SynGrass, SynField, SynWild}},
	{Name: "Voltvole", Tier: 2, Synergies: []SynergyID{SynElectric, SynWild}},
	{Name: "Craghorn", Tier: 2, Synergies: []SynergyID{SynRock, SynFighting}},
	{Name: "Mirewisp", Tier: 2, Synergies: []SynergyID{SynGhost, SynAmorphous}},
	{Name: "Bloomfox", Tier: 2, Synergies: []SynergyID{SynFlora, SynFairy}},
	{Name: "Stingrove", Tier: 2, Synergies: []SynergyID{SynBug, SynPoison}},
	{Name: "Shalefin", Tier: 2, Synergies: []SynergyID{SynFossil, SynAquatic}},
	{Name: "Monkarch", Tier: 2, Synergies: []SynergyID{SynFighting, SynHuman, SynPsychic}},
	{Name: "Snackaroo", Tier: 2, Synergies: []SynergyID{SynGourmet, SynNormal}},
	{Name: "Frostooth", Tier: 2, Synergies: []SynergyID{SynIce, SynDark}},
	// Tier 3
	{Name: "Pyrelith", Tier: 3, Synergies: []SynergyID{SynFire, SynRock, SynMonster}},
	{Name: "Maelstrome", Tier: 3, Synergies: []SynergyID{SynWater, SynAmorphous}},
	{Name: "Verdantyr", Tier: 3, Synergies: []SynergyID{SynGrass, SynMonster}},
	{Name: "Stormroc", Tier: 3, Synergies: []SynergyID{SynElectric, SynFlying}},
	{Name: "Gloomveil", Tier: 3, Synergies: []SynergyID{SynGhost, SynDark}},
	{Name: "Ferrogaunt", Tier: 3, Synergies: []SynergyID{SynSteel, SynMonster}},
	{Name: "Mindrune", Tier: 3, Synergies: []SynergyID{SynPsychic, SynHuman, SynLight}},
	{Name: "Dunewyrm", Tier: 3, Synergies: []SynergyID{SynGround, SynDragon}},
	{Name: "Chimehollow", Tier: 3, Synergies: []SynergyID{SynSound, SynGhost}},
	{Name: "Broilphant", Tier: 3, Synergies: []SynergyID{SynGourmet, SynField, SynFire}},
	// Tier 4
	{Name: "Cindervane", Tier: 4, Synergies: []SynergyID{SynFire, SynDragon}},
	{Name: "Abyssarch", Tier: 4, Synergies: []SynergyID{SynWater, SynDark, SynAquatic}},
	{Name: "Sylvanox", Tier: 4, Synergies: []SynergyID{SynGrass, SynWild}},
	{Name: "Ionhowl", Tier: 4, Synergies: []SynergyID{SynElectric, SynSound, SynWild}},
	{Name: "Palerook", Tier: 4, Synergies: []SynergyID{SynFossil, SynRock}},
	{Name: "Automaton-7", Tier: 4, Synergies: []SynergyID{SynArtificial, SynSteel, SynLight}},
	{Name: "Solastra", Tier: 4, Synergies: []SynergyID{SynLight, SynPsychic, SynFlying}, DuoWith: 44},
	{Name: "Lunastra", Tier: 4, Synergies: []SynergyID{SynDark, SynPsychic, SynFlying}, DuoWith: 43},
	// Tier 5
	{Name: "Tyrranoth", Tier: 5, Synergies: []SynergyID{SynDragon, SynMonster}},
	{Name: "Gaiavore", Tier: 5, Synergies: []SynergyID{SynGround, SynGourmet, SynMonster}},
	{Name: "Nullwarden", Tier: 5, Synergies: []SynergyID{SynArtificial, SynAmorphous, SynSteel}},
	{Name: "Aurorix", Tier: 5, Synergies: []SynergyID{SynIce, SynLight, SynDragon}},
}

// NumSpecies is the number of species in the catalog, excluding the sentinel.
var NumSpecies = len(speciesCatalog) - 1

// SpeciesByID returns the catalog entry for an ID, or the zero entry.
func SpeciesByID(id SpeciesID) Species {
	if id < 1 || int(id) >= len(speciesCatalog) {
		return Species{}
	}
	return speciesCatalog[id]
}

// SpeciesOfTier returns a copy of the species IDs at a tier, catalog order.
func SpeciesOfTier(tier int) []SpeciesID {
	if tier < 1 || tier >= len(speciesOfTier) {
		return nil
	}
	out := make([]SpeciesID, len(speciesOfTier[tier]))
	copy(out, speciesOfTier[tier])
	return out
}

// SpeciesCost returns the buy price for one copy.
func SpeciesCost(id SpeciesID) int {
	return SpeciesByID(id).Tier
}

// SellPrice returns the gold credited when a unit is sold.
func SellPrice(id SpeciesID, stars int) int {
	tier := SpeciesByID(id).Tier
	if tier == 0 {
		return 0
	}
	switch {
	case stars <= 1:
		return tier
	case stars == 2:
		if tier == 1 {
			return 3
		}
		return tier*3 - 1
	default:
		if tier == 1 {
			return 9
		}
		return tier*9 - 4
	}
}

// speciesOfTier is built once from the catalog.
var speciesOfTier [6][]SpeciesID

func init() {
	for id := 1; id < len(speciesCatalog); id++ {
		t := speciesCatalog[id].Tier
		speciesOfTier[t] = append(speciesOfTier[t], SpeciesID(id))
	}
}

// poolCopiesByTier is the shared-pool copy count per species, by tier.
var poolCopiesByTier = [6]int{0, 18, 13, 10, 7, 4}

// shopOddsByLevel gives the percentage chance of each tier appearing in a
// shop slot, by player level. Rows sum to 100.
var shopOddsByLevel = [10][5]int{
	{},
	{100, 0, 0, 0, 0},
	{100, 0, 0, 0, 0},
	{75, 25, 0, 0, 0},
	{55, 30, 15, 0, 0},
	{45, 33, 20, 2, 0},
	{30, 40, 25, 5, 0},
	{19, 30, 35, 15, 1},
	{16, 20, 35, 25, 4},
	{9, 15, 30, 30, 16},
}

// Experience and levels.
const (
	MaxLevel    = 9
	LevelUpCost = 4
	LevelUpExp  = 4
	PassiveExp  = 2
)

// expToNext[level] is the experience needed to advance from that level.
var expToNext = [MaxLevel]int{0, 2, 2, 6, 10, 20, 32, 50, 70}

// ExpToNext returns the experience required to leave the given level.
func ExpToNext(level int) int {
	if level < 1 || level >= MaxLevel {
		return 0
	}
	return expToNext[level]
}

// MaxTeamSize returns the board-unit cap for a level.
func MaxTeamSize(level int) int {
	if level < 1 {
		return 1
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Economy constants.
const (
	StartingLife    = 100
	StartingMoney   = 5
	BaseIncome      = 5
	MaxInterest     = 5
	RerollCost      = 1
	CarouselRerolls = 2
	StarterOffers   = 3
	EvolutionCopies = 3
)

// StreakBonus returns the extra income for a win or loss streak.
func StreakBonus(streak int) int {
	if streak < 0 {
		streak = -streak
	}
	switch {
	case streak >= 6:
		return 3
	case streak >= 4:
		return 2
	case streak >= 2:
		return 1
	}
	return 0
}

// Interest returns capped passive interest for a gold balance.
func Interest(money int) int {
	i := money / 10
	if i > MaxInterest {
		i = MaxInterest
	}
	return i
}

// Stage schedule. Stage 0 is the starter-proposition stage.
var (
	pveStages            = map[int]bool{1: true, 2: true, 3: true, 10: true, 15: true, 20: true, 24: true, 28: true}
	portalStages         = map[int]bool{4: true}
	carouselStages       = map[int]bool{6: true, 12: true, 18: true, 25: true}
	additionalPickStages = map[int]bool{8: true, 14: true, 21: true}
)

// IsPVEStage reports whether the stage fights the environment instead of
// another player.
func IsPVEStage(stage int) bool { return pveStages[stage] }

// IsPortalStage reports whether the stage opens with a portal proposition.
func IsPortalStage(stage int) bool { return portalStages[stage] }

// IsCarouselStage reports whether the stage opens with an item carousel.
func IsCarouselStage(stage int) bool { return carouselStages[stage] }

// IsAdditionalPickStage reports whether the stage opens with an extra
// species pick.
func IsAdditionalPickStage(stage int) bool { return additionalPickStages[stage] }

// AvgDamageByStage estimates the life lost per combat loss at a stage, used
// by the gold-pressure shaping to convert life into "lives remaining".
func AvgDamageByStage(stage int) int {
	switch {
	case stage >= 23:
		return 18
	case stage >= 17:
		return 16
	case stage >= 11:
		return 12
	case stage >= 5:
		return 8
	}
	return 0
}

// LivesRemaining converts life into an estimated number of losses survivable
// at the given stage. Early stages report an effectively infinite count.
func LivesRemaining(life, stage int) int {
	avg := AvgDamageByStage(stage)
	if avg <= 0 {
		return 99
	}
	return life / avg
}

// FreeGoldForLives is the excess-gold allowance by estimated lives remaining.
func FreeGoldForLives(lives int) int {
	switch {
	case lives >= 4:
		return 1 << 30
	case lives == 3:
		return 50
	case lives == 2:
		return 30
	}
	return 10
}

// SavingsTarget is the stage-indexed gold floor under which the low-gold
// penalty applies. No target before stage 5.
func SavingsTarget(stage int) int {
	if stage < 5 {
		return 0
	}
	t := 10 + 2*stage
	if t > 50 {
		t = 50
	}
	return t
}

// ItemID indexes the item catalog. Zero is the empty sentinel.
type ItemID int

// ItemNone marks an empty item slot.
const ItemNone ItemID = 0

// Basic components. Two basics combine into a crafted item.
const (
	ItemEmberShard ItemID = iota + 1
	ItemTidePearl
	ItemGaleFeather
	ItemIronScrap
	ItemStormCore
	ItemMoonstone

	NumBasicItems = 6
)

// itemNames covers basics then crafted items in recipe order.
var itemNames = []string{
	"", "ember shard", "tide pearl", "gale feather", "iron scrap",
	"storm core", "moonstone",
	// crafted (pairs in (a,b) order, a <= b)
	"sun blade", "steam gauntlet", "wildfire quill", "forge hammer",
	"flare conduit", "eclipse brand", "deep mirror", "mist cloak",
	"anchor plate", "tide capacitor", "pearl diadem", "zephyr bow",
	"sky piercer", "tempest horn", "drift talisman", "bulwark core",
	"magnet crown", "iron sigil", "storm heart", "aurora lens",
	"lunar aegis",
}

// ItemName returns the display name for an item.
func ItemName(id ItemID) string {
	if id < 1 || int(id) >= len(itemNames) {
		return ""
	}
	return itemNames[id]
}

// NumItems is the catalog size excluding the sentinel.
var NumItems = len(itemNames) - 1

// craftedRecipes maps an unordered basic pair to its crafted result.
var craftedRecipes = map[[2]ItemID]ItemID{}

func init() {
	// Crafted IDs follow the basics, enumerating pairs (a,b) with a <= b.
	next := ItemID(NumBasicItems + 1)
	for a := ItemID(1); a <= NumBasicItems; a++ {
		for b := a; b <= NumBasicItems; b++ {
			craftedRecipes[[2]ItemID{a, b}] = next
			next++
		}
	}
}

// CraftedResult returns the crafted item for two basic components, or
// ItemNone when the pair is not a recipe (either part already crafted).
func CraftedResult(a, b ItemID) ItemID {
	if a < 1 || b < 1 || a > NumBasicItems || b > NumBasicItems {
		return ItemNone
	}
	if a > b {
		a, b = b, a
	}
	return craftedRecipes[[2]ItemID{a, b}]
}

// IsBasicItem reports whether an item is an uncrafted component.
func IsBasicItem(id ItemID) bool {
	return id >= 1 && id <= NumBasicItems
}
