package requirement

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	domreq "github.com/kailas-cloud/shortlist/internal/domain/requirement"
	"github.com/kailas-cloud/shortlist/internal/nlp"
)

// --- Mocks ---

type stubAnalyzer struct {
	doc   nlp.Document
	err   error
	panic bool
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ string) (nlp.Document, error) {
	if s.panic {
		panic("tagger exploded")
	}
	return s.doc, s.err
}

type countingFailures struct {
	steps []string
}

func (c *countingFailures) Inc(step string) { c.steps = append(c.steps, step) }

func newTestService(t *testing.T, a Analyzer, failures FailureCounter) *Service {
	t.Helper()
	svc, err := New(a, nlp.NewStopWords(nil), DefaultRules(), failures, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func newPipelineService(t *testing.T) *Service {
	t.Helper()
	p := nlp.New("en", nil)
	svc, err := New(p, p.StopWords(), DefaultRules(), nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.Contains(strings.ToLower(v), strings.ToLower(want)) {
			return true
		}
	}
	return false
}

// --- Tests ---

func TestExtract_SeniorEngineerScenario(t *testing.T) {
	svc := newPipelineService(t)

	req := svc.Extract(context.Background(),
		"Senior engineer, 5+ years experience, bachelor's degree required, Python")

	if req.YearsExperience != 5 {
		t.Errorf("YearsExperience = %d, want 5", req.YearsExperience)
	}
	if req.EducationLevel != domreq.LevelBachelors {
		t.Errorf("EducationLevel = %v, want bachelors", req.EducationLevel)
	}
	if !req.EducationMentioned {
		t.Error("EducationMentioned = false, want true")
	}
	if !containsFold(req.Skills, "python") {
		t.Errorf("skills %q lack a Python-derived term", req.Skills)
	}
}

func TestExtract_NoEducationTerms(t *testing.T) {
	svc := newPipelineService(t)

	req := svc.Extract(context.Background(),
		"We need a backend engineer comfortable with Go and Kafka. Remote team, flexible hours.")

	if req.EducationMentioned {
		t.Error("EducationMentioned = true, want false")
	}
	if req.EducationLevel != domreq.LevelNone {
		t.Errorf("EducationLevel = %v, want none", req.EducationLevel)
	}
	if req.YearsExperience != 0 {
		t.Errorf("YearsExperience = %d, want 0", req.YearsExperience)
	}
}

func TestExtract_Years(t *testing.T) {
	svc := newTestService(t, &stubAnalyzer{}, nil)
	tests := []struct {
		text string
		want int
	}{
		{"3+ years of experience with Go", 3},
		{"2 years Python, 7 yrs overall", 7},
		{"at least 4 years in fintech", 4},
		{"minimum of 6 years", 6},
		{"Experiencia de 5 años", 5},
		{"no numbers here", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := svc.years(strings.ToLower(tt.text)); got != tt.want {
				t.Errorf("years(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtract_AnchorSkillsFromTaggedTokens(t *testing.T) {
	text := "Experience with distributed databases and Kubernetes. Nice office."
	doc := nlp.Document{
		Language:  "en",
		Sentences: []string{"Experience with distributed databases and Kubernetes.", "Nice office."},
		Tokens: []nlp.Token{
			{Text: "Experience", Tag: "NN", Lemma: "experi"},
			{Text: "with", Tag: "IN", Lemma: "with"},
			{Text: "distributed", Tag: "JJ", Lemma: "distribut"},
			{Text: "databases", Tag: "NNS", Lemma: "databas"},
			{Text: "and", Tag: "CC", Lemma: "and"},
			{Text: "Kubernetes", Tag: "NNP", Lemma: "kubernet"},
			{Text: ".", Tag: ".", Lemma: "."},
			{Text: "Nice", Tag: "JJ", Lemma: "nice"},
			{Text: "office", Tag: "NN", Lemma: "offic"},
			{Text: ".", Tag: ".", Lemma: "."},
		},
	}
	svc := newTestService(t, &stubAnalyzer{doc: doc}, nil)

	req := svc.Extract(context.Background(), text)

	if len(req.Skills) < 2 || req.Skills[0] != "distributed databases" || req.Skills[1] != "Kubernetes" {
		t.Fatalf("expected anchor phrases first, got %q", req.Skills)
	}
	if containsFold(req.Skills[:2], "office") {
		t.Error("phrase outside the anchor sentence leaked into anchor skills")
	}
	// keyword supplement must not duplicate anchor skills
	count := 0
	for _, s := range req.Skills {
		if strings.EqualFold(s, "kubernetes") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("kubernetes appears %d times in %q", count, req.Skills)
	}
}

func TestRankTerms_FrequencyThenFirstSeen(t *testing.T) {
	svc := newTestService(t, &stubAnalyzer{}, nil)
	doc := fallbackDocument("golang services. kafka streams. golang tooling. kafka", "en")

	ranked := svc.rankTerms(doc)
	if len(ranked) < 2 || ranked[0] != "golang" || ranked[1] != "kafka" {
		t.Fatalf("unexpected ranking %q", ranked)
	}
	for _, term := range ranked {
		if len([]rune(term)) < 4 {
			t.Errorf("term %q shorter than 4 chars", term)
		}
	}
}

func TestExtract_KeywordsCappedAtTopK(t *testing.T) {
	words := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		words = append(words, "term"+string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	svc := newTestService(t, &stubAnalyzer{err: errors.New("no pipeline")}, nil)

	req := svc.Extract(context.Background(), strings.Join(words, ". "))
	if len(req.Keywords) != 20 {
		t.Errorf("expected 20 keywords, got %d", len(req.Keywords))
	}
	if len(req.Skills) != 20 {
		t.Errorf("expected 20 keyword skills, got %d", len(req.Skills))
	}
}

func TestExtract_Education(t *testing.T) {
	svc := newTestService(t, &stubAnalyzer{err: errors.New("down")}, nil)
	tests := []struct {
		text      string
		mentioned bool
		level     domreq.Level
	}{
		{"Master's degree or PhD in statistics", true, domreq.LevelPhD},
		{"BSc in Computer Science", true, domreq.LevelBachelors},
		{"University degree in a technical field", true, domreq.LevelOther},
		{"Hands-on with Terraform", false, domreq.LevelNone},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			req := svc.Extract(context.Background(), tt.text)
			if req.EducationMentioned != tt.mentioned || req.EducationLevel != tt.level {
				t.Errorf("got mentioned=%v level=%v, want %v %v",
					req.EducationMentioned, req.EducationLevel, tt.mentioned, tt.level)
			}
		})
	}
}

func TestExtract_LanguagesFromEntitiesAndTokens(t *testing.T) {
	doc := nlp.Document{
		Language: "en",
		Tokens: []nlp.Token{
			{Text: "Fluent", Tag: "JJ"}, {Text: "English", Tag: "NNP"},
			{Text: "and", Tag: "CC"}, {Text: "German", Tag: "NNP"},
		},
		Entities: []nlp.Entity{{Text: "German", Label: "GPE"}},
	}
	svc := newTestService(t, &stubAnalyzer{doc: doc}, nil)

	req := svc.Extract(context.Background(), "Fluent English and German")
	if strings.Join(req.Languages, ",") != "German,English" {
		t.Errorf("languages = %q", req.Languages)
	}
}

func TestExtract_Certifications(t *testing.T) {
	svc := newTestService(t, &stubAnalyzer{err: errors.New("down")}, nil)

	req := svc.Extract(context.Background(),
		"The AWS Certified Solutions Architect is a plus. Certification in Scrum or ITIL preferred. CKA welcome.")

	for _, want := range []string{"AWS Certified Solutions Architect", "Scrum", "ITIL", "CKA"} {
		if !containsFold(req.Certifications, want) {
			t.Errorf("certifications %q missing %q", req.Certifications, want)
		}
	}
	for _, c := range req.Certifications {
		if strings.HasPrefix(c, "The ") {
			t.Errorf("leading stop word kept: %q", c)
		}
	}
}

func TestExtract_AnalyzerFailureDegrades(t *testing.T) {
	failures := &countingFailures{}
	svc := newTestService(t, &stubAnalyzer{err: errors.New("model missing")}, failures)

	req := svc.Extract(context.Background(), "5+ years with Python and PostgreSQL")

	if req.YearsExperience != 5 {
		t.Errorf("YearsExperience = %d, want 5", req.YearsExperience)
	}
	if !containsFold(req.Skills, "python") {
		t.Errorf("fallback tokens should still yield keywords, got %q", req.Skills)
	}
	if len(failures.steps) != 1 || failures.steps[0] != "analyze" {
		t.Errorf("expected one analyze failure, got %v", failures.steps)
	}
}

func TestExtract_AnalyzerPanicIsRecovered(t *testing.T) {
	failures := &countingFailures{}
	svc := newTestService(t, &stubAnalyzer{panic: true}, failures)

	req := svc.Extract(context.Background(), "3 years Go")
	if req.YearsExperience != 3 {
		t.Errorf("YearsExperience = %d, want 3", req.YearsExperience)
	}
	if req.Skills == nil || req.Languages == nil || req.Certifications == nil || req.Keywords == nil {
		t.Errorf("expected non-nil lists, got %+v", req)
	}
	if len(failures.steps) != 1 {
		t.Errorf("expected one recorded failure, got %v", failures.steps)
	}
}

func TestExtract_HTMLInput(t *testing.T) {
	svc := newTestService(t, &stubAnalyzer{err: errors.New("down")}, nil)

	req := svc.Extract(context.Background(), "<ul><li>4+ years</li><li>Master's degree</li></ul>")
	if req.YearsExperience != 4 || req.EducationLevel != domreq.LevelMasters {
		t.Errorf("unexpected requirement %+v", req)
	}
}

func TestRules_MergeAndCompile(t *testing.T) {
	r := DefaultRules().Merge(Rules{YearsPatterns: []string{`(\d+) jahre`}, KeywordTopK: 5})
	if len(r.YearsPatterns) != 1 || r.KeywordTopK != 5 || r.AnchorWindow != 100 {
		t.Errorf("unexpected merge %+v", r)
	}

	if _, err := (Rules{YearsPatterns: []string{`\d+ years`}}).compile(); err == nil {
		t.Error("expected error for pattern without capture group")
	}
	if _, err := New(&stubAnalyzer{}, nil, Rules{YearsPatterns: []string{`(`}}, nil, zap.NewNop()); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
