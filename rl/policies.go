package rl

import (
	"fmt"
	"time"

	"github.com/dmklee/rl-in-dmlab/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Policy picks the next action of an episode. Policies in this package do
// not learn, Update is the hook for ones that do.
type Policy interface {
	NextAction(int, types.Observations, []types.Action) (types.Action, bool)
	Update(int, types.Observations, types.Action, float64, types.Observations)
	Reset()
}

// RandomPolicy picks uniformly among the available actions
type RandomPolicy struct {
	seed uint64
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

// NewRandomPolicy seeded with seed, zero seeds from the clock
func NewRandomPolicy(seed uint64) *RandomPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomPolicy{
		seed: seed,
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomPolicy) Reset() {
	r.rand.Seed(r.seed)
}

func (r *RandomPolicy) NextAction(_ int, _ types.Observations, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return 0, false
	}
	return actions[r.rand.Intn(len(actions))], true
}

func (r *RandomPolicy) Update(_ int, _ types.Observations, _ types.Action, _ float64, _ types.Observations) {}

// WeightedPolicy samples actions by fixed weights, keyed by action.
// Actions without a weight are never picked.
type WeightedPolicy struct {
	weights map[types.Action]float64
	seed    uint64
	src     rand.Source
}

var _ Policy = &WeightedPolicy{}

func NewWeightedPolicy(weights map[types.Action]float64, seed uint64) (*WeightedPolicy, error) {
	total := 0.0
	for a, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("negative weight %f for action %s", w, a)
		}
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("weights sum to zero")
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &WeightedPolicy{
		weights: weights,
		seed:    seed,
		src:     rand.NewSource(seed),
	}, nil
}

// ForwardBiasedWeights favour moving forward so a walk covers more ground
// than a uniform one.
func ForwardBiasedWeights() map[types.Action]float64 {
	return map[types.Action]float64{
		types.LookLeft:  0.2,
		types.LookRight: 0.2,
		types.Forward:   0.5,
		types.Backward:  0.1,
	}
}

func (w *WeightedPolicy) Reset() {
	w.src.Seed(w.seed)
}

func (w *WeightedPolicy) NextAction(_ int, _ types.Observations, actions []types.Action) (types.Action, bool) {
	weights := make([]float64, len(actions))
	for i, a := range actions {
		weights[i] = w.weights[a]
	}
	i, ok := sampleuv.NewWeighted(weights, w.src).Take()
	if !ok {
		return 0, false
	}
	return actions[i], true
}

func (w *WeightedPolicy) Update(_ int, _ types.Observations, _ types.Action, _ float64, _ types.Observations) {
}
