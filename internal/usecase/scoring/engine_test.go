package scoring

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/shortlist/internal/domain"
	"github.com/kailas-cloud/shortlist/internal/domain/candidate"
	"github.com/kailas-cloud/shortlist/internal/domain/requirement"
	"github.com/kailas-cloud/shortlist/internal/domain/score"
	"github.com/kailas-cloud/shortlist/internal/domain/vector"
)

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func unitVec(axis int) []float32 {
	v := make([]float32, vector.Dimensions)
	v[axis] = 1
	return v
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(score.DefaultWeights(), append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func baseCandidate() candidate.Record {
	return candidate.Record{
		ID:        "c1",
		Skills:    []string{"Python", "PostgreSQL", "Docker"},
		Embedding: unitVec(0),
	}
}

func TestScore_MissingEmbedding(t *testing.T) {
	e := newTestEngine(t)
	c := baseCandidate()
	c.Embedding = nil

	_, err := e.Score(requirement.Empty(), unitVec(0), c)
	if !errors.Is(err, domain.ErrMissingEmbedding) {
		t.Fatalf("expected ErrMissingEmbedding, got %v", err)
	}

	c.Embedding = []float32{1, 2, 3}
	if _, err := e.Score(requirement.Empty(), unitVec(0), c); !errors.Is(err, domain.ErrMissingEmbedding) {
		t.Fatalf("wrong-sized embedding must count as missing, got %v", err)
	}
}

func TestScore_InvalidJobVector(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Score(requirement.Empty(), []float32{1}, baseCandidate())
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestScore_Semantic(t *testing.T) {
	e := newTestEngine(t)
	c := baseCandidate()

	b, err := e.Score(requirement.Empty(), unitVec(0), c)
	if err != nil {
		t.Fatal(err)
	}
	if b.Components[score.Semantic] != 1 {
		t.Errorf("identical vectors: semantic = %v, want 1", b.Components[score.Semantic])
	}

	b, _ = e.Score(requirement.Empty(), unitVec(1), c)
	if b.Components[score.Semantic] != 0 {
		t.Errorf("orthogonal vectors: semantic = %v, want 0", b.Components[score.Semantic])
	}

	opposite := unitVec(0)
	opposite[0] = -1
	b, _ = e.Score(requirement.Empty(), opposite, c)
	if b.Components[score.Semantic] != 0 {
		t.Errorf("opposite vectors: semantic = %v, want 0", b.Components[score.Semantic])
	}
}

func TestScore_SkillMatchBidirectionalSubstring(t *testing.T) {
	e := newTestEngine(t)
	req := requirement.Empty()
	req.Skills = []string{"python", "postgres", "kubernetes", "go"}
	c := baseCandidate()
	c.Skills = []string{"Python 3", "PostgreSQL", "Docker", "python 3"}

	b, err := e.Score(req, unitVec(0), c)
	if err != nil {
		t.Fatal(err)
	}
	// "Python 3" contains "python", "PostgreSQL" contains "postgres"; duplicates count once
	if got := b.Components[score.Skills]; got != 0.5 {
		t.Errorf("skills = %v, want 0.5", got)
	}
	if len(b.Reasons) == 0 || !strings.Contains(b.Reasons[0], "Python 3") || !strings.Contains(b.Reasons[0], "PostgreSQL") {
		t.Errorf("unexpected reasons %q", b.Reasons)
	}
}

func TestScore_SkillRatioCapped(t *testing.T) {
	e := newTestEngine(t)
	req := requirement.Empty()
	req.Skills = []string{"sql"}
	c := baseCandidate()
	c.Skills = []string{"MySQL", "PostgreSQL", "SQL Server"}

	b, _ := e.Score(req, unitVec(0), c)
	if b.Components[score.Skills] != 1 {
		t.Errorf("skills = %v, want 1", b.Components[score.Skills])
	}
	if !strings.Contains(b.Reasons[0], "MySQL, PostgreSQL, SQL Server") {
		t.Errorf("expected up to 3 matched skills, got %q", b.Reasons[0])
	}
}

func TestScore_ExperienceScenario(t *testing.T) {
	e := newTestEngine(t)
	req := requirement.Empty()
	req.YearsExperience = 5
	c := baseCandidate()
	c.Experience = []candidate.Experience{{StartDate: "2018-01-01", EndDate: "2023-01-01"}}

	b, err := e.Score(req, unitVec(0), c)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Components[score.Experience]; got != 1.0 {
		t.Errorf("experience = %v, want exactly 1.0", got)
	}
	var found bool
	for _, r := range b.Reasons {
		if strings.Contains(r, "5+ required") {
			found = true
		}
	}
	if !found {
		t.Errorf("five calendar years must meet a 5-year requirement, reasons = %q", b.Reasons)
	}
}

func TestScore_ExperienceRatios(t *testing.T) {
	tests := []struct {
		name     string
		years    float64
		required int
		cap      float64
		want     float64
	}{
		{"partial", 2, 4, 0, 0.5},
		{"bonus", 6, 4, 0, 1.5},
		{"bonus capped", 20, 4, 0, 1.5},
		{"custom cap", 20, 4, 1.0, 1.0},
		{"no requirement", 0.5, 0, 0, 0.5},
		{"no requirement capped at 1", 10, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.cap > 0 {
				opts = append(opts, WithExperienceCap(tt.cap))
			}
			e := newTestEngine(t, opts...)
			req := requirement.Empty()
			req.YearsExperience = tt.required
			c := baseCandidate()
			c.Experience = []candidate.Experience{{Years: tt.years}}

			b, _ := e.Score(req, unitVec(0), c)
			if got := b.Components[score.Experience]; math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("experience = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_OpenEndedExperienceUsesClock(t *testing.T) {
	e := newTestEngine(t)
	req := requirement.Empty()
	req.YearsExperience = 2
	c := baseCandidate()
	c.Experience = []candidate.Experience{{StartDate: "2022-06-01", EndDate: "present"}}

	b, _ := e.Score(req, unitVec(0), c)
	if got := b.Components[score.Experience]; math.Abs(got-1.0) > 0.01 {
		t.Errorf("experience = %v, want ~1.0", got)
	}
	if len(b.Reasons) == 0 || !strings.Contains(b.Reasons[len(b.Reasons)-1], "2+ required") {
		t.Errorf("expected experience reason, got %q", b.Reasons)
	}
}

func TestScore_ExperienceReasonOnlyWhenMet(t *testing.T) {
	e := newTestEngine(t)
	req := requirement.Empty()
	req.YearsExperience = 5
	c := baseCandidate()
	c.Skills = nil
	c.Experience = []candidate.Experience{{Years: 4.9}}

	b, _ := e.Score(req, unitVec(0), c)
	for _, r := range b.Reasons {
		if strings.Contains(r, "experience") {
			t.Errorf("partial experience must not produce a reason: %q", r)
		}
	}
}

func TestScore_Education(t *testing.T) {
	tests := []struct {
		name       string
		degree     string
		required   requirement.Level
		mentioned  bool
		want       float64
		applicable bool
		reason     bool
	}{
		{"meets", "MSc Computer Science", requirement.LevelBachelors, true, 1, true, true},
		{"partial", "Associate of Science", requirement.LevelMasters, true, 0.5, true, false},
		{"none", "", requirement.LevelBachelors, true, 0, true, false},
		{"not mentioned", "PhD Physics", requirement.LevelNone, false, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			req := requirement.Empty()
			req.SetEducation(tt.mentioned, tt.required)
			c := baseCandidate()
			c.Skills = nil
			if tt.degree != "" {
				c.Education = []candidate.Education{{Degree: tt.degree}}
			}

			b, _ := e.Score(req, unitVec(0), c)
			got, ok := b.Components[score.Education]
			if ok != tt.applicable {
				t.Fatalf("education applicable = %v, want %v", ok, tt.applicable)
			}
			if got != tt.want {
				t.Errorf("education = %v, want %v", got, tt.want)
			}
			hasReason := false
			for _, r := range b.Reasons {
				if strings.Contains(r, "education") {
					hasReason = true
				}
			}
			if hasReason != tt.reason {
				t.Errorf("education reason = %v, want %v (%q)", hasReason, tt.reason, b.Reasons)
			}
		})
	}
}

func TestScore_LanguagesAndCertifications(t *testing.T) {
	e := newTestEngine(t)
	req := requirement.Empty()
	req.Languages = []string{"English", "German"}
	req.Certifications = []string{"AWS", "CKA"}
	c := baseCandidate()
	c.Skills = nil
	c.Languages = []string{"english", "French"}
	c.Certifications = []string{"AWS Solutions Architect", "Lawson"}

	b, _ := e.Score(req, unitVec(0), c)
	if b.Components[score.Languages] != 0.5 {
		t.Errorf("languages = %v, want 0.5", b.Components[score.Languages])
	}
	if b.Components[score.Certifications] != 0.5 {
		t.Errorf("certifications = %v, want 0.5", b.Components[score.Certifications])
	}
	want := []string{"Speaks English", "Holds certification: AWS"}
	if len(b.Reasons) != 2 || b.Reasons[0] != want[0] || b.Reasons[1] != want[1] {
		t.Errorf("reasons = %q, want %q", b.Reasons, want)
	}
}

func TestCertMatches(t *testing.T) {
	tests := []struct {
		req, cand string
		want      bool
	}{
		{"PMP", "pmp", true},
		{"AWS", "AWS Certified Developer", true},
		{"CKA", "CKAD", false},
		{"ITIL", "ITIL v4 Foundation", true},
		{"aws", "Lawson", false},
	}
	for _, tt := range tests {
		if got := certMatches(tt.req, tt.cand); got != tt.want {
			t.Errorf("certMatches(%q, %q) = %v, want %v", tt.req, tt.cand, got, tt.want)
		}
	}
}

func TestScore_CompositeUsesActiveWeightsOnly(t *testing.T) {
	e := newTestEngine(t)
	c := baseCandidate()
	c.Experience = []candidate.Experience{{Years: 1}}

	// only semantic and experience are active: weights .40 and .15 renormalized
	b, _ := e.Score(requirement.Empty(), unitVec(0), c)
	if len(b.Weights) != 2 {
		t.Fatalf("expected 2 active weights, got %v", b.Weights)
	}
	if math.Abs(b.Weights[score.Semantic]+b.Weights[score.Experience]-1) > 1e-9 {
		t.Errorf("weights do not sum to 1: %v", b.Weights)
	}
	if math.Abs(b.Composite-1) > 1e-9 {
		t.Errorf("composite = %v, want 1", b.Composite)
	}
	if b.WeightsVersion != "v2" {
		t.Errorf("weights version = %q", b.WeightsVersion)
	}
}

func TestScore_ComponentsWithinBounds(t *testing.T) {
	e := newTestEngine(t)
	req := requirement.Empty()
	req.Skills = []string{"go", "sql"}
	req.YearsExperience = 3
	req.SetEducation(true, requirement.LevelBachelors)
	req.Languages = []string{"English"}
	req.Certifications = []string{"CKA"}
	c := baseCandidate()
	c.Skills = []string{"Go", "golang", "MySQL", "SQLite"}
	c.Experience = []candidate.Experience{{Years: 2}}
	c.Education = []candidate.Education{{Degree: "BSc"}}
	c.Languages = []string{"English"}
	c.Certifications = []string{"CKA"}

	b, _ := e.Score(req, unitVec(0), c)
	for comp, v := range b.Components {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v outside [0,1]", comp, v)
		}
	}
	if len(b.Reasons) > score.MaxReasons {
		t.Errorf("too many reasons: %q", b.Reasons)
	}
}

func TestNewEngine_RejectsInvalidWeights(t *testing.T) {
	_, err := NewEngine(score.Weights{Values: map[score.Component]float64{score.Semantic: -1}})
	if !errors.Is(err, score.ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights, got %v", err)
	}
}
