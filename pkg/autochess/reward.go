package autochess

// Reward shaping: the per-combat and per-transition terms. Per-action terms
// (buy/sell/move/reroll/level shaping) live in the executor next to the
// mutations they observe; everything here runs when a round resolves.

// combatShaping applies every post-combat reward source for one player.
// kills is the enemy-unit count destroyed this round, computed from pre/post
// team sizes before the engine's cleanup.
func (g *Game) combatShaping(p *Player, outcome FightOutcome, kills int) {
	cfg := g.rewards

	switch outcome {
	case OutcomeWin:
		p.addReward("outcome", cfg.Win)
		p.addReward("hpPreserve", cfg.HPPreserve*float64(p.Life))
	case OutcomeLoss:
		p.addReward("outcome", cfg.Loss)
	default:
		p.addReward("outcome", cfg.Draw)
	}

	if kills > 0 {
		p.addReward("kills", cfg.KillPerUnit*float64(kills))
	}
	if p.Alive {
		p.addReward("survival", cfg.Survival)
	}

	g.synergyShaping(p)
	g.goldShaping(p)
	g.lowLifeShaping(p)
	g.unitQualityShaping(p)
}

// synergyShaping rewards newly crossed first thresholds against the shop
// phase snapshot, plus the sustained-depth term.
func (g *Game) synergyShaping(p *Player) {
	cfg := g.rewards

	newlyActive := 0
	tierSum := 0
	tierTwoPlus := 0
	for id := SynergyID(1); int(id) <= NumSynergies; id++ {
		tier := p.ActiveSynergyTier(id)
		if tier > 0 && p.synergyTiersPrev[id] == 0 {
			newlyActive++
		}
		tierSum += tier
		if tier >= 2 {
			tierTwoPlus++
		}
	}
	if newlyActive > 0 {
		p.addReward("synergyDelta", cfg.SynergyDelta*float64(newlyActive))
	}
	if tierSum > 0 {
		bonus := 1.0 + cfg.DepthBonusPer*float64(tierTwoPlus)
		if bonus > cfg.DepthBonusCap {
			bonus = cfg.DepthBonusCap
		}
		p.addReward("synergyDepth", cfg.SynergyDepth*float64(tierSum)*bonus)
	}
}

// goldShaping penalizes hoarding above the pressure-tier allowance and
// under-saving below the stage target. After the late-game boundary the
// excess penalty switches to strict brackets, each charging only the gold
// inside its own range.
func (g *Game) goldShaping(p *Player) {
	cfg := g.rewards

	if g.Stage >= cfg.LateStage {
		penalty := 0.0
		for _, b := range lateGoldBrackets {
			if p.Money <= b.From {
				continue
			}
			in := p.Money - b.From
			if p.Money > b.To {
				in = b.To - b.From
			}
			penalty += float64(in) * b.PerGold
		}
		if penalty > 0 {
			p.addReward("goldExcess", -penalty)
		}
	} else {
		lives := LivesRemaining(p.Life, g.Stage)
		free := FreeGoldForLives(lives)
		if p.Money > free {
			p.addReward("goldExcess", -cfg.GoldExcessPerUnit*float64(p.Money-free))
		}
	}

	if target := SavingsTarget(g.Stage); p.Money < target {
		p.addReward("goldPressure", -cfg.GoldDeficitPerUnit*float64(target-p.Money))
	}
}

// lowLifeShaping forces liquidation at critically low life: any held gold
// and any bench unit unrelated to an on-board family are penalized.
func (g *Game) lowLifeShaping(p *Player) {
	cfg := g.rewards
	if LivesRemaining(p.Life, g.Stage) > 1 {
		return
	}
	if p.Money > 0 {
		p.addReward("goldAtLowLife", -cfg.GoldAtLowLife*float64(p.Money))
	}
	if dw := p.benchDeadWeightCount(); dw > 0 {
		p.addReward("benchDeadWeight", -cfg.BenchDeadWeight*float64(dw))
	}
}

// unitQualityShaping pays a small per-combat bonus for rare-tier units on
// the combat rows.
func (g *Game) unitQualityShaping(p *Player) {
	rare := 0
	for _, u := range p.Units {
		if u.OnBoard() && SpeciesByID(u.Species).Tier >= 4 {
			rare++
		}
	}
	if rare > 0 {
		p.addReward("unitQuality", g.rewards.RareOnBoard*float64(rare))
	}
}

// interestShaping pays the interest bonus, gated on a nearly full board so
// an empty-board bank strategy earns nothing.
func (g *Game) interestShaping(p *Player, interest int) {
	if interest <= 0 {
		return
	}
	if p.BoardSize >= MaxTeamSize(p.Level)-1 {
		p.addReward("interest", g.rewards.InterestPerGold*float64(interest))
	}
}

// placementReward applies the terminal rank table.
func (g *Game) placementReward(p *Player) {
	if p.Rank < 1 || p.Rank > NumPlayers {
		return
	}
	p.addReward("placement", g.rewards.Placement[p.Rank-1])
}

// benchIdlePenalty charges benched units while board slots stay open at the
// shop-to-combat transition. Only applies when auto-placement is off.
func (g *Game) benchIdlePenalty(p *Player) {
	open := MaxTeamSize(p.Level) - p.BoardSize
	if open <= 0 {
		return
	}
	benched := p.BenchCount()
	idle := benched
	if idle > open {
		idle = open
	}
	if idle > 0 {
		p.addReward("benchIdle", -g.rewards.BenchIdle*float64(idle))
	}
}
