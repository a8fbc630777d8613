package requirement

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Level is the ordinal education level. Higher values dominate lower ones.
type Level int

// Education levels, totally ordered.
const (
	LevelNone Level = iota
	LevelOther
	LevelAssociate
	LevelBachelors
	LevelMasters
	LevelPhD
)

var levelNames = [...]string{"none", "other", "associate", "bachelors", "masters", "phd"}

func (l Level) String() string {
	if l < LevelNone || l > LevelPhD {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// IsValid checks if the level is one of the defined constants.
func (l Level) IsValid() bool {
	return l >= LevelNone && l <= LevelPhD
}

// ParseLevel converts a level name back into a Level.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return LevelNone, fmt.Errorf("unknown education level %q", s)
}

// MarshalJSON renders the level as its lowercase name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts either the name or the ordinal.
func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParseLevel(name)
		if err != nil {
			return err
		}
		*l = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("education level must be a string or integer: %w", err)
	}
	if !Level(n).IsValid() {
		return fmt.Errorf("education level %d out of range", n)
	}
	*l = Level(n)
	return nil
}

// Checked from the highest level down; the first hit wins.
var levelPatterns = []struct {
	level Level
	re    *regexp.Regexp
}{
	{LevelPhD, regexp.MustCompile(`\bph\.?\s?d\b|\bdoctorate\b|\bdoctoral\b|\bdoctor of\b`)},
	{LevelMasters, regexp.MustCompile(`\bmaster'?s?\b|\bm\.?sc\b|\bmba\b|\bm\.s\.|\bm\.eng\b|\bmeng\b`)},
	{LevelBachelors, regexp.MustCompile(
		`\bbachelor|\bb\.?sc\b|\bb\.s\.|\bbs\b|\bb\.a\.|\bba\b|\bb\.?eng\b|\bbtech\b|\bb\.tech\b|\bundergraduate\b`)},
	{LevelAssociate, regexp.MustCompile(`\bassociate'?s?\s+(degree|of)\b`)},
	{LevelOther, regexp.MustCompile(`\bdegree\b|\bdiploma\b|\bhigh school\b|\bgraduat|\buniversity\b|\bcollege\b`)},
}

// LevelFromText returns the highest level implied by degree phrases in s.
func LevelFromText(s string) Level {
	s = strings.ToLower(s)
	for _, p := range levelPatterns {
		if p.re.MatchString(s) {
			return p.level
		}
	}
	return LevelNone
}
