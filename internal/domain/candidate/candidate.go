// Package candidate holds the candidate record consumed by the ranking core
// and the canonical profile text used as embedding input.
package candidate

import (
	"github.com/kailas-cloud/shortlist/internal/domain/requirement"
	"github.com/kailas-cloud/shortlist/internal/domain/vector"
)

// Contact is carried through ranking untouched and never scored.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Experience is one position held by the candidate.
// Years is used only when the dates are absent or unparseable.
type Experience struct {
	Position    string  `json:"position,omitempty"`
	Company     string  `json:"company,omitempty"`
	StartDate   string  `json:"start_date,omitempty"`
	EndDate     string  `json:"end_date,omitempty"`
	Years       float64 `json:"years,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Education is one degree entry.
type Education struct {
	Degree      string `json:"degree,omitempty"`
	Institution string `json:"institution,omitempty"`
}

// Record is a candidate profile as supplied by the store.
type Record struct {
	ID             string       `json:"id"`
	Contact        Contact      `json:"contact"`
	Skills         []string     `json:"skills"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Certifications []string     `json:"certifications"`
	Languages      []string     `json:"languages"`
	Embedding      []float32    `json:"embedding,omitempty"`
	EmbeddingText  string       `json:"embedding_text,omitempty"`
}

// UsableEmbedding returns the embedding when it has the fixed dimensionality.
// A wrong-sized vector counts as absent.
func (r Record) UsableEmbedding() ([]float32, bool) {
	if !vector.Valid(r.Embedding) {
		return nil, false
	}
	return r.Embedding, true
}

// WithEmbedding returns a copy of r carrying vec and the text it was computed from.
func (r Record) WithEmbedding(vec []float32, text string) Record {
	r.Embedding = vec
	r.EmbeddingText = text
	return r
}

// EducationLevel returns the highest level implied by the candidate's degrees.
// A degree entry that names no recognizable level still counts as LevelOther.
func (r Record) EducationLevel() requirement.Level {
	best := requirement.LevelNone
	for _, e := range r.Education {
		l := requirement.LevelFromText(e.Degree)
		if l == requirement.LevelNone && (e.Degree != "" || e.Institution != "") {
			l = requirement.LevelOther
		}
		if l > best {
			best = l
		}
	}
	return best
}

// normalize replaces nil containers with empty ones.
func (r *Record) normalize() {
	if r.Skills == nil {
		r.Skills = []string{}
	}
	if r.Experience == nil {
		r.Experience = []Experience{}
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
	if r.Certifications == nil {
		r.Certifications = []string{}
	}
	if r.Languages == nil {
		r.Languages = []string{}
	}
}
