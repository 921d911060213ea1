package autochess

// Board geometry. The position grid is 8 cells wide and 4 rows tall. Row 0 is
// the bench; rows 1-3 are the combat board.
const (
	GridWidth = 8
	GridRows  = 4
	NumCells  = GridWidth * GridRows
	BenchRow  = 0
	BenchSize = GridWidth
)

// Fixed sizes shared with the external controller.
const (
	NumPlayers      = 8
	NumOpponents    = NumPlayers - 1
	NumShopSlots    = 6
	MaxHeldItems    = 10
	MaxPropositions = 6
	MaxCombinePairs = 6
	MaxUnitItems    = 3
	MaxStars        = 3
)

// Discrete action space. The index-to-operation mapping is a contract with the
// external controller and must never change.
const (
	ActBuyBase        = 0  // 0-5: buy shop slot
	ActReroll         = 6  // reroll shop
	ActLevelUp        = 7  // spend 4 gold for +4 exp
	ActLockShop       = 8  // toggle shop lock
	ActEndTurn        = 9  // end turn, fight phase runs
	ActMoveBase       = 10 // 10-41: move first-available unit to cell
	ActSellBase       = 42 // 42-73: sell unit at cell
	ActRemoveShopBase = 74 // 74-79: discard shop slot (non-destructive reservation)
	ActPickBase       = 80 // 80-85: pick pending proposition
	ActCombineBase    = 86 // 86-91: combine held-item pair

	NumActions = 92
)

// ActionKind is the closed set of action categories.
type ActionKind int

const (
	ActionBuy ActionKind = iota
	ActionReroll
	ActionLevelUp
	ActionLockShop
	ActionEndTurn
	ActionMove
	ActionSell
	ActionRemoveShop
	ActionPick
	ActionCombine
	ActionInvalid
)

func (k ActionKind) String() string {
	switch k {
	case ActionBuy:
		return "buy"
	case ActionReroll:
		return "reroll"
	case ActionLevelUp:
		return "level_up"
	case ActionLockShop:
		return "lock_shop"
	case ActionEndTurn:
		return "end_turn"
	case ActionMove:
		return "move"
	case ActionSell:
		return "sell"
	case ActionRemoveShop:
		return "remove_shop"
	case ActionPick:
		return "pick"
	case ActionCombine:
		return "combine"
	}
	return "invalid"
}

// Action is a decoded discrete action. Target is the sub-range offset: a shop
// slot for buy/remove, a grid cell for move/sell, a proposition slot for pick,
// a pair index for combine, and unused otherwise.
type Action struct {
	Kind   ActionKind
	Target int
}

// DecodeAction translates a raw action index into its category and target.
// Indices outside [0, NumActions) decode to ActionInvalid; the request
// boundary is expected to reject those before they reach the executor.
func DecodeAction(idx int) Action {
	switch {
	case idx >= ActBuyBase && idx < ActBuyBase+NumShopSlots:
		return Action{Kind: ActionBuy, Target: idx - ActBuyBase}
	case idx == ActReroll:
		return Action{Kind: ActionReroll}
	case idx == ActLevelUp:
		return Action{Kind: ActionLevelUp}
	case idx == ActLockShop:
		return Action{Kind: ActionLockShop}
	case idx == ActEndTurn:
		return Action{Kind: ActionEndTurn}
	case idx >= ActMoveBase && idx < ActMoveBase+NumCells:
		return Action{Kind: ActionMove, Target: idx - ActMoveBase}
	case idx >= ActSellBase && idx < ActSellBase+NumCells:
		return Action{Kind: ActionSell, Target: idx - ActSellBase}
	case idx >= ActRemoveShopBase && idx < ActRemoveShopBase+NumShopSlots:
		return Action{Kind: ActionRemoveShop, Target: idx - ActRemoveShopBase}
	case idx >= ActPickBase && idx < ActPickBase+MaxPropositions:
		return Action{Kind: ActionPick, Target: idx - ActPickBase}
	case idx >= ActCombineBase && idx < ActCombineBase+MaxCombinePairs:
		return Action{Kind: ActionCombine, Target: idx - ActCombineBase}
	}
	return Action{Kind: ActionInvalid, Target: -1}
}

// EncodeAction is the inverse of DecodeAction. Returns -1 for invalid input.
func EncodeAction(a Action) int {
	switch a.Kind {
	case ActionBuy:
		return ActBuyBase + a.Target
	case ActionReroll:
		return ActReroll
	case ActionLevelUp:
		return ActLevelUp
	case ActionLockShop:
		return ActLockShop
	case ActionEndTurn:
		return ActEndTurn
	case ActionMove:
		return ActMoveBase + a.Target
	case ActionSell:
		return ActSellBase + a.Target
	case ActionRemoveShop:
		return ActRemoveShopBase + a.Target
	case ActionPick:
		return ActPickBase + a.Target
	case ActionCombine:
		return ActCombineBase + a.Target
	}
	return -1
}

// Observation layout. Block order and per-block field counts are part of the
// external contract; offsets are derived, never hand-written elsewhere.
const (
	ObsPlayerStats         = 14
	ObsShopFeatures        = 9
	ObsBoardFeatures       = 12
	ObsHeldItems           = MaxHeldItems
	ObsSynergies           = NumSynergies
	ObsGameInfo            = 7
	ObsOpponentFeatures    = 10
	ObsPropositionFeatures = 7

	OffPlayer       = 0
	OffShop         = OffPlayer + ObsPlayerStats
	OffBoard        = OffShop + NumShopSlots*ObsShopFeatures
	OffItems        = OffBoard + NumCells*ObsBoardFeatures
	OffSynergies    = OffItems + ObsHeldItems
	OffGame         = OffSynergies + ObsSynergies
	OffOpponents    = OffGame + ObsGameInfo
	OffPropositions = OffOpponents + NumOpponents*ObsOpponentFeatures

	ObsSize = OffPropositions + MaxPropositions*ObsPropositionFeatures
)

// Normalization scale constants for the observation encoder. Every encoded
// field is divided by its scale and clamped into [0, 1].
const (
	ScaleLife    = 100.0
	ScaleGold    = 100.0
	ScaleLevel   = 9.0
	ScaleStage   = 50.0
	ScaleStars   = 3.0
	ScaleCost    = 10.0
	ScaleStreak  = 10.0
	ScaleActions = 30.0
)

// RewardConfig holds every shaping coefficient. Each source is independently
// toggleable by zeroing its coefficient.
type RewardConfig struct {
	Win      float64
	Loss     float64
	Draw     float64
	Survival float64

	// Placement is indexed by final rank - 1 and applied only at termination.
	Placement [NumPlayers]float64

	KillPerUnit   float64
	HPPreserve    float64 // per remaining life point, win only
	SynergyDelta  float64 // per synergy newly crossing its first threshold
	SynergyDepth  float64 // per held activation tier
	DepthBonusPer float64 // bonus factor growth per tier-2+ synergy
	DepthBonusCap float64

	GoldExcessPerUnit  float64
	GoldDeficitPerUnit float64
	GoldAtLowLife      float64 // per gold held at critically low life
	BenchDeadWeight    float64 // per unbound bench unit at critically low life
	InterestPerGold    float64 // gated on a nearly full board

	LevelUpBoardFull float64
	RerollPerStage   float64
	DuplicateBuy     float64 // one copy already held
	EvolutionBuy     float64 // two copies held, purchase completes the merge
	LateBuyBoost     float64 // multiplier on buy shaping after LateStage
	SellHighStar     float64 // per star above one
	FidgetPerMove    float64 // per consecutive move beyond the free allowance
	RareOnBoard      float64 // per tier-4+ board unit, per combat
	BenchIdle        float64 // per benched unit while board slots stay open

	FidgetFreeMoves int
	LateStage       int
}

// DefaultRewardConfig returns the shaping coefficients used for training.
func DefaultRewardConfig() *RewardConfig {
	return &RewardConfig{
		Win:      0.6,
		Loss:     -0.5,
		Draw:     0.0,
		Survival: 0.12,

		Placement: [NumPlayers]float64{3.0, 1.5, 0.75, 0.25, -0.25, -0.75, -1.5, -2.0},

		KillPerUnit:   0.03,
		HPPreserve:    0.002,
		SynergyDelta:  0.15,
		SynergyDepth:  0.01,
		DepthBonusPer: 0.25,
		DepthBonusCap: 2.0,

		GoldExcessPerUnit:  0.005,
		GoldDeficitPerUnit: 0.004,
		GoldAtLowLife:      0.01,
		BenchDeadWeight:    0.05,
		InterestPerGold:    0.01,

		LevelUpBoardFull: 0.05,
		RerollPerStage:   0.002,
		DuplicateBuy:     0.05,
		EvolutionBuy:     0.15,
		LateBuyBoost:     2.0,
		SellHighStar:     0.1,
		FidgetPerMove:    0.02,
		RareOnBoard:      0.002,
		BenchIdle:        0.01,

		FidgetFreeMoves: 3,
		LateStage:       23,
	}
}

// lateGoldBrackets are the stricter excess-gold penalty brackets applied after
// RewardConfig.LateStage. Each bracket penalizes only the gold inside it.
var lateGoldBrackets = []struct {
	From, To int // [From, To) in gold
	PerGold  float64
}{
	{50, 60, 0.01},
	{60, 80, 0.02},
	{80, 1 << 30, 0.04},
}

// Per-turn and combat budgets.
const (
	TurnActionBudget = 30
	MaxCombatSteps   = 300
)
