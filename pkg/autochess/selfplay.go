package autochess

import "fmt"

// StepMulti advances all eight seats by one action each. Seats that already
// ended their turn hold at the barrier and their action is ignored; dead
// seats ignore everything but keep reporting observations. The round
// resolves only when every alive seat has ended its turn, and every result
// reports done=true together at termination.
func (g *Game) StepMulti(actions []int) ([]*StepResult, error) {
	if len(actions) != NumPlayers {
		return nil, fmt.Errorf("want %d actions, got %d", NumPlayers, len(actions))
	}
	for seat, a := range actions {
		if a < 0 || a >= NumActions {
			return nil, fmt.Errorf("seat %d: action %d out of range [0,%d)", seat, a, NumActions)
		}
	}

	if !g.Done {
		for seat, a := range actions {
			p := g.Players[seat]
			if !p.Alive {
				p.TurnEnded = true
				continue
			}
			if p.TurnEnded {
				continue
			}
			g.applyAction(p, a)
		}
		if g.allTurnsEnded() {
			g.resolveRound()
		}
	}

	results := make([]*StepResult, NumPlayers)
	for seat, p := range g.Players {
		results[seat] = g.result(p)
	}
	return results, nil
}

func (g *Game) allTurnsEnded() bool {
	for _, p := range g.Players {
		if p.Alive && !p.TurnEnded {
			return false
		}
	}
	return true
}
