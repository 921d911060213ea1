package bot

import (
	"fmt"
	"math"
	"sync"

	gonnx "github.com/advancedclimatesystems/gonnx"
	"gorgonia.org/tensor"

	"github.com/freeeve/autochess-gym/pkg/autochess"
)

// Policy runs a trained policy network (pure Go ONNX runtime) to choose
// opponent actions. The model takes the flat observation vector and
// returns one logit per action; illegal actions are masked before argmax.
type Policy struct {
	model *gonnx.Model
	mu    sync.Mutex
}

// LoadPolicy loads an ONNX policy model from disk.
func LoadPolicy(path string) (*Policy, error) {
	model, err := gonnx.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load policy model: %w", err)
	}
	return &Policy{model: model}, nil
}

// ChooseAction runs inference and returns the highest-logit legal action.
func (p *Policy) ChooseAction(obs []float32, mask []int8) (int, error) {
	if len(obs) != autochess.ObsSize {
		return 0, fmt.Errorf("observation length %d, want %d", len(obs), autochess.ObsSize)
	}

	backing := make([]float32, len(obs))
	copy(backing, obs)
	obsTensor := tensor.New(
		tensor.WithShape(1, autochess.ObsSize),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(backing),
	)

	p.mu.Lock()
	outputs, err := p.model.Run(gonnx.Tensors{"observation": obsTensor})
	p.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("policy run: %w", err)
	}

	out, ok := outputs["action_logits"]
	if !ok {
		return 0, fmt.Errorf("output 'action_logits' not found")
	}
	logits, err := toFloat32(out.Data())
	if err != nil {
		return 0, err
	}
	if len(logits) < autochess.NumActions {
		return 0, fmt.Errorf("got %d logits, want %d", len(logits), autochess.NumActions)
	}

	best, bestLogit := -1, float32(math.Inf(-1))
	for i := 0; i < autochess.NumActions; i++ {
		if mask[i] == 0 {
			continue
		}
		if best < 0 || logits[i] > bestLogit {
			best, bestLogit = i, logits[i]
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("mask has no legal action")
	}
	return best, nil
}

func toFloat32(data any) ([]float32, error) {
	switch d := data.(type) {
	case []float32:
		return d, nil
	case []float64:
		f32 := make([]float32, len(d))
		for i, v := range d {
			f32[i] = float32(v)
		}
		return f32, nil
	default:
		return nil, fmt.Errorf("unexpected output type %T", data)
	}
}
