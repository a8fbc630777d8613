package candidate

import (
	"fmt"
	"strings"
	"time"
)

// CanonicalText renders the record as section-tagged text for embedding.
// Output depends only on the record and now; empty sections are omitted.
func (r Record) CanonicalText(now time.Time) string {
	var sections []string

	if len(r.Skills) > 0 {
		sections = append(sections, "Skills: "+strings.Join(r.Skills, ", ")+".")
	}

	var jobs []string
	for _, e := range r.Experience {
		if s := experienceSentence(e, now); s != "" {
			jobs = append(jobs, s)
		}
	}
	if len(jobs) > 0 {
		sections = append(sections, "Experience: "+strings.Join(jobs, " "))
	}

	var studies []string
	for _, e := range r.Education {
		if s := educationSentence(e); s != "" {
			studies = append(studies, s)
		}
	}
	if len(studies) > 0 {
		sections = append(sections, "Education: "+strings.Join(studies, " "))
	}

	if len(r.Languages) > 0 {
		sections = append(sections, "Languages: "+strings.Join(r.Languages, ", ")+".")
	}
	if len(r.Certifications) > 0 {
		sections = append(sections, "Certifications: "+strings.Join(r.Certifications, ", ")+".")
	}

	return strings.Join(sections, "\n")
}

func experienceSentence(e Experience, now time.Time) string {
	var b strings.Builder
	b.WriteString("Worked")
	if e.Position != "" {
		b.WriteString(" as " + e.Position)
	}
	if e.Company != "" {
		b.WriteString(" at " + e.Company)
	}
	if years := e.Duration(now); years > 0 {
		fmt.Fprintf(&b, " for %.1f years", years)
	}
	if d := strings.TrimRight(strings.TrimSpace(e.Description), "."); d != "" {
		b.WriteString(" with focus on " + d)
	}
	if b.Len() == len("Worked") {
		return ""
	}
	b.WriteString(".")
	return b.String()
}

func educationSentence(e Education) string {
	switch {
	case e.Degree != "" && e.Institution != "":
		return "Studied " + e.Degree + " at " + e.Institution + "."
	case e.Degree != "":
		return "Studied " + e.Degree + "."
	case e.Institution != "":
		return "Studied at " + e.Institution + "."
	}
	return ""
}
