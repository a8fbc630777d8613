// Package scoring computes explainable per-candidate scores against a job
// requirement.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kailas-cloud/shortlist/internal/domain"
	"github.com/kailas-cloud/shortlist/internal/domain/candidate"
	"github.com/kailas-cloud/shortlist/internal/domain/requirement"
	"github.com/kailas-cloud/shortlist/internal/domain/score"
	"github.com/kailas-cloud/shortlist/internal/domain/vector"
)

// DefaultExperienceCap is the over-qualification ceiling of the experience ratio.
const DefaultExperienceCap = 1.5

// Engine scores candidates. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	weights       score.Weights
	experienceCap float64
	now           func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock fixes the time used for open-ended experience entries.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithExperienceCap overrides DefaultExperienceCap. Values below 1 are ignored.
func WithExperienceCap(c float64) Option {
	return func(e *Engine) {
		if c >= 1 && !math.IsInf(c, 0) {
			e.experienceCap = c
		}
	}
}

// NewEngine creates an engine with a validated weight set.
func NewEngine(weights score.Weights, opts ...Option) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("scoring weights: %w", err)
	}
	e := &Engine{
		weights:       weights,
		experienceCap: DefaultExperienceCap,
		now:           time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Weights returns the engine's weight set.
func (e *Engine) Weights() score.Weights { return e.weights }

// Score computes the breakdown of cand against req. jobVec must be a valid
// vector and cand must carry a usable embedding.
func (e *Engine) Score(req requirement.JobRequirement, jobVec []float32, cand candidate.Record) (score.Breakdown, error) {
	candVec, ok := cand.UsableEmbedding()
	if !ok {
		return score.Breakdown{}, fmt.Errorf("candidate %q: %w", cand.ID, domain.ErrMissingEmbedding)
	}
	if !vector.Valid(jobVec) {
		return score.Breakdown{}, fmt.Errorf("job vector has %d dimensions: %w", len(jobVec), domain.ErrVectorDimMismatch)
	}

	components := map[score.Component]float64{
		score.Semantic: clamp01(vector.Cosine(jobVec, candVec)),
	}
	var r reasons

	skillRatio, matchedSkills := matchSkills(req.Skills, cand.Skills)
	if len(req.Skills) > 0 {
		components[score.Skills] = skillRatio
	}
	r.skills(matchedSkills)

	years := cand.TotalYears(e.now())
	components[score.Experience] = e.experienceRatio(years, req.YearsExperience)
	r.experience(years, req.YearsExperience)

	candLevel := cand.EducationLevel()
	if req.EducationMentioned {
		components[score.Education] = educationRatio(candLevel, req.EducationLevel)
		r.education(candLevel, req.EducationLevel)
	}

	if len(req.Languages) > 0 {
		ratio, matched := matchSet(req.Languages, cand.Languages, equalFold)
		components[score.Languages] = ratio
		r.languages(matched)
	}

	if len(req.Certifications) > 0 {
		ratio, matched := matchSet(req.Certifications, cand.Certifications, certMatches)
		components[score.Certifications] = ratio
		r.certifications(matched)
	}

	active := make([]score.Component, 0, len(components))
	for _, c := range score.Components {
		if _, ok := components[c]; ok {
			active = append(active, c)
		}
	}
	weights := e.weights.Normalized(active)

	var composite float64
	for _, c := range active {
		composite += weights[c] * components[c]
	}

	return score.Breakdown{
		Components:     components,
		Weights:        weights,
		WeightsVersion: e.weights.Version,
		Composite:      composite,
		Reasons:        r.list(),
	}, nil
}

// experienceRatio compares candidate years to the requirement. Without a
// requirement, one year of experience is full credit.
func (e *Engine) experienceRatio(years float64, required int) float64 {
	if years < 0 || math.IsNaN(years) {
		years = 0
	}
	if required > 0 {
		return math.Min(years/float64(required), e.experienceCap)
	}
	return math.Min(years, 1.0)
}

func educationRatio(cand, required requirement.Level) float64 {
	switch {
	case cand >= required:
		return 1.0
	case cand > requirement.LevelNone:
		return float64(cand) / float64(required)
	default:
		return 0
	}
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// matchSkills counts distinct candidate skills that contain, or are contained
// in, any required skill (case-insensitive). The ratio is capped at 1.
func matchSkills(required, cand []string) (float64, []string) {
	req := normalizeList(required)
	var matched []string
	for _, cs := range normalizeList(cand) {
		lc := strings.ToLower(cs)
		for _, rs := range req {
			lr := strings.ToLower(rs)
			if strings.Contains(lc, lr) || strings.Contains(lr, lc) {
				matched = append(matched, cs)
				break
			}
		}
	}
	return math.Min(float64(len(matched))/math.Max(1, float64(len(req))), 1), matched
}

// matchSet returns |required ∩ cand| / |required| under match, plus the
// matched required entries.
func matchSet(required, cand []string, match func(req, cand string) bool) (float64, []string) {
	req := normalizeList(required)
	if len(req) == 0 {
		return 0, nil
	}
	have := normalizeList(cand)
	var matched []string
	for _, r := range req {
		for _, c := range have {
			if match(r, c) {
				matched = append(matched, r)
				break
			}
		}
	}
	return float64(len(matched)) / float64(len(req)), matched
}

func equalFold(a, b string) bool { return strings.EqualFold(a, b) }

// certMatches accepts an exact match or the required name appearing as whole
// words inside the candidate's certification ("AWS" in "AWS Solutions Architect").
func certMatches(required, cand string) bool {
	r, c := strings.ToLower(required), strings.ToLower(cand)
	if r == c {
		return true
	}
	for i := strings.Index(c, r); i >= 0; {
		end := i + len(r)
		if (i == 0 || !isWordByte(c[i-1])) && (end == len(c) || !isWordByte(c[end])) {
			return true
		}
		next := strings.Index(c[i+1:], r)
		if next < 0 {
			break
		}
		i += next + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 0x80
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}
