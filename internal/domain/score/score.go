// Package score defines the scoring components, the versioned weight set
// and the per-candidate breakdown.
package score

import (
	"errors"
	"fmt"
	"math"
)

// Component names one factor of the composite score.
type Component string

// Score components.
const (
	Semantic       Component = "semantic"
	Skills         Component = "skills"
	Experience     Component = "experience"
	Education      Component = "education"
	Languages      Component = "languages"
	Certifications Component = "certifications"
)

// Components lists every component in reason order.
var Components = []Component{Semantic, Skills, Experience, Education, Languages, Certifications}

// IsValid checks if the component is one of the known names.
func (c Component) IsValid() bool {
	for _, k := range Components {
		if c == k {
			return true
		}
	}
	return false
}

// MaxReasons bounds the number of match reasons per candidate.
const MaxReasons = 3

// Weights is a versioned mapping of component to weight.
// Components absent from Values weigh 0.
type Weights struct {
	Version string                `json:"version" yaml:"version"`
	Values  map[Component]float64 `json:"values" yaml:"values"`
}

// DefaultWeights returns the v2 weight set.
func DefaultWeights() Weights {
	return Weights{
		Version: "v2",
		Values: map[Component]float64{
			Semantic:       0.40,
			Skills:         0.25,
			Experience:     0.15,
			Education:      0.10,
			Languages:      0.05,
			Certifications: 0.05,
		},
	}
}

// ErrInvalidWeights signals a malformed weight set.
var ErrInvalidWeights = errors.New("invalid weights")

// Validate rejects unknown components and negative or non-finite weights.
func (w Weights) Validate() error {
	if len(w.Values) == 0 {
		return fmt.Errorf("%w: no components", ErrInvalidWeights)
	}
	var sum float64
	for c, v := range w.Values {
		if !c.IsValid() {
			return fmt.Errorf("%w: unknown component %q", ErrInvalidWeights, c)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidWeights, c, v)
		}
		sum += v
	}
	if sum == 0 {
		return fmt.Errorf("%w: all weights are zero", ErrInvalidWeights)
	}
	return nil
}

// Normalized rescales the weights of the active components to sum to 1.
// Inactive components are left out. When every active weight is zero the
// result is all zeros.
func (w Weights) Normalized(active []Component) map[Component]float64 {
	out := make(map[Component]float64, len(active))
	var sum float64
	for _, c := range active {
		v := w.Values[c]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[c] = v
		sum += v
	}
	if sum == 0 {
		return out
	}
	for c := range out {
		out[c] /= sum
	}
	return out
}

// Breakdown is the explainable score of one candidate.
type Breakdown struct {
	Components     map[Component]float64 `json:"components"`
	Weights        map[Component]float64 `json:"weights"`
	WeightsVersion string                `json:"weights_version"`
	Composite      float64               `json:"composite"`
	Reasons        []string              `json:"reasons"`
}
