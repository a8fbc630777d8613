// Package requirement holds the structured hiring requirements derived from
// a job description.
package requirement

// JobRequirement is recomputed per request and never persisted.
// EducationLevel is above LevelNone only when EducationMentioned is set.
type JobRequirement struct {
	Skills             []string `json:"skills"`
	YearsExperience    int      `json:"years_experience"`
	EducationLevel     Level    `json:"education_level"`
	EducationMentioned bool     `json:"education_mentioned"`
	Certifications     []string `json:"certifications"`
	Languages          []string `json:"languages"`
	Keywords           []string `json:"keywords"`
	// Language is the ISO 639-1 code of the job text.
	Language string `json:"language"`
}

// Empty returns a requirement with non-nil lists, the zero value of extraction.
func Empty() JobRequirement {
	return JobRequirement{
		Skills:         []string{},
		Certifications: []string{},
		Languages:      []string{},
		Keywords:       []string{},
	}
}

// SetEducation records a detected education requirement, keeping the
// level/mentioned invariant.
func (r *JobRequirement) SetEducation(mentioned bool, level Level) {
	r.EducationMentioned = mentioned
	if !mentioned {
		r.EducationLevel = LevelNone
		return
	}
	r.EducationLevel = level
}
