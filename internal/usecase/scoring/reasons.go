package scoring

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/shortlist/internal/domain/requirement"
	"github.com/kailas-cloud/shortlist/internal/domain/score"
)

// reasons collects match explanations in component order. Only claims that
// hold in full are added.
type reasons struct {
	items []string
}

func (r *reasons) add(format string, args ...any) {
	if len(r.items) < score.MaxReasons {
		r.items = append(r.items, fmt.Sprintf(format, args...))
	}
}

func (r *reasons) list() []string {
	if r.items == nil {
		return []string{}
	}
	return r.items
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func (r *reasons) skills(matched []string) {
	if len(matched) == 0 {
		return
	}
	r.add("Matching skills: %s", strings.Join(firstN(matched, score.MaxReasons), ", "))
}

func (r *reasons) experience(years float64, required int) {
	if required <= 0 || years < float64(required) {
		return
	}
	r.add("%.1f years of experience (%d+ required)", years, required)
}

func (r *reasons) education(cand, required requirement.Level) {
	if required <= requirement.LevelNone || cand < required {
		return
	}
	r.add("Meets education requirement (%s)", required)
}

func (r *reasons) languages(matched []string) {
	if len(matched) == 0 {
		return
	}
	r.add("Speaks %s", strings.Join(matched, ", "))
}

func (r *reasons) certifications(matched []string) {
	if len(matched) == 0 {
		return
	}
	r.add("Holds certification: %s", strings.Join(matched, ", "))
}
