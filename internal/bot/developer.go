// Package bot develops scripted (non-agent) opponents between rounds.
// Rosters come from Postgres when available; otherwise a synthetic
// generator keeps opponents progressing at a plausible pace.
package bot

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/autochess-gym/internal/repository"
	"github.com/freeeve/autochess-gym/pkg/autochess"
)

const rosterFetchTimeout = 2 * time.Second

// Developer implements autochess.OpponentDeveloper. Between rounds it
// levels scripted seats and grows their boards, replaying stored rosters
// when a store is configured and falling back to synthetic growth.
type Developer struct {
	rosters repository.RosterStore
	policy  *Policy
	rng     *rand.Rand
	log     zerolog.Logger

	rosterCache map[int][]repository.RosterRow
	degraded    bool
}

// NewDeveloper creates a Developer. rosters and policy may be nil.
func NewDeveloper(rosters repository.RosterStore, policy *Policy, seed int64, log zerolog.Logger) *Developer {
	return &Developer{
		rosters:     rosters,
		policy:      policy,
		rng:         rand.New(rand.NewSource(seed)),
		log:         log,
		rosterCache: make(map[int][]repository.RosterRow),
	}
}

// Develop advances one scripted seat for the new stage.
func (d *Developer) Develop(g *autochess.Game, p *autochess.Player, stage int) {
	if d.policy != nil {
		d.developByPolicy(g, p)
		return
	}

	target := targetLevel(stage)
	for p.Level < target {
		p.Level++
		p.Exp = 0
	}

	if row, ok := d.rosterFor(p.Seat, stage); ok {
		d.applyRoster(g, p, row)
		return
	}
	d.developSynthetic(g, p, stage)
}

// targetLevel is the level curve scripted opponents follow.
func targetLevel(stage int) int {
	lvl := 3 + stage/3
	if lvl > autochess.MaxLevel {
		lvl = autochess.MaxLevel
	}
	return lvl
}

// rosterFor picks a stored roster for the seat at this stage. Any store
// error flips the developer into degraded (synthetic) mode for good.
func (d *Developer) rosterFor(seat, stage int) (repository.RosterRow, bool) {
	if d.rosters == nil || d.degraded {
		return repository.RosterRow{}, false
	}
	rows, ok := d.rosterCache[stage]
	if !ok {
		ctx, cancel := context.WithTimeout(context.Background(), rosterFetchTimeout)
		defer cancel()
		var err error
		rows, err = d.rosters.ListByStage(ctx, stage)
		if err != nil {
			d.degraded = true
			d.log.Warn().Err(err).Int("stage", stage).Msg("roster store unavailable, using synthetic opponents")
			return repository.RosterRow{}, false
		}
		d.rosterCache[stage] = rows
	}
	if len(rows) == 0 {
		return repository.RosterRow{}, false
	}
	for _, row := range rows {
		if row.Seat == seat {
			return row, true
		}
	}
	return rows[d.rng.Intn(len(rows))], true
}

// applyRoster replays a stored board onto the player, adding only the
// units missing from the currently occupied cells.
func (d *Developer) applyRoster(g *autochess.Game, p *autochess.Player, row repository.RosterRow) {
	if row.Level > p.Level {
		p.Level = row.Level
		p.Exp = 0
	}
	for _, e := range row.Board {
		if p.BoardSize >= autochess.MaxTeamSize(p.Level) {
			break
		}
		if !autochess.IsBoardCell(e.Cell) || p.UnitAtCell(e.Cell) != nil {
			continue
		}
		stars := e.Stars
		if stars < 1 {
			stars = 1
		}
		if stars > autochess.MaxStars {
			stars = autochess.MaxStars
		}
		g.PlaceUnit(p, autochess.SpeciesID(e.Species), stars, e.Cell)
	}
}

// developSynthetic grows the board with stage-appropriate units: higher
// tiers and star counts unlock as the game goes on.
func (d *Developer) developSynthetic(g *autochess.Game, p *autochess.Player, stage int) {
	maxTier := 1 + stage/6
	if maxTier > 5 {
		maxTier = 5
	}
	maxStars := 1 + stage/10
	if maxStars > autochess.MaxStars {
		maxStars = autochess.MaxStars
	}

	for p.BoardSize < autochess.MaxTeamSize(p.Level) {
		cell := d.freeBoardCell(p)
		if cell < 0 {
			return
		}
		tier := 1 + d.rng.Intn(maxTier)
		pool := autochess.SpeciesOfTier(tier)
		if len(pool) == 0 {
			return
		}
		species := pool[d.rng.Intn(len(pool))]
		stars := 1 + d.rng.Intn(maxStars)
		g.PlaceUnit(p, species, stars, cell)
	}
}

func (d *Developer) freeBoardCell(p *autochess.Player) int {
	for cell := autochess.GridWidth; cell < autochess.NumCells; cell++ {
		if p.UnitAtCell(cell) == nil {
			return cell
		}
	}
	return -1
}

// developByPolicy plays a shopping turn with the loaded policy network,
// the same action surface the learner sees.
func (d *Developer) developByPolicy(g *autochess.Game, p *autochess.Player) {
	for i := 0; i < autochess.TurnActionBudget; i++ {
		obs := g.Observe(p)
		mask := g.LegalActions(p)
		idx, err := d.policy.ChooseAction(obs, mask)
		if err != nil {
			d.log.Warn().Err(err).Int("seat", p.Seat).Msg("policy inference failed, using random action")
			idx = randomLegal(mask, d.rng)
		}
		a := autochess.DecodeAction(idx)
		if a.Kind == autochess.ActionEndTurn {
			return
		}
		g.Apply(p, a)
		g.Caches().Invalidate(p.ID)
	}
}

// randomLegal picks a uniform legal action from a mask.
func randomLegal(mask []int8, rng *rand.Rand) int {
	n := 0
	for _, m := range mask {
		if m != 0 {
			n++
		}
	}
	if n == 0 {
		return autochess.EncodeAction(autochess.Action{Kind: autochess.ActionEndTurn})
	}
	k := rng.Intn(n)
	for i, m := range mask {
		if m != 0 {
			if k == 0 {
				return i
			}
			k--
		}
	}
	return autochess.EncodeAction(autochess.Action{Kind: autochess.ActionEndTurn})
}
