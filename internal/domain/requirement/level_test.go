package requirement

import (
	"encoding/json"
	"testing"
)

func TestLevelFromText(t *testing.T) {
	tests := []struct {
		text string
		want Level
	}{
		{"", LevelNone},
		{"Senior engineer, Python", LevelNone},
		{"bachelor's degree required", LevelBachelors},
		{"BSc in Computer Science", LevelBachelors},
		{"B.S. or equivalent", LevelBachelors},
		{"Master of Science", LevelMasters},
		{"MBA preferred", LevelMasters},
		{"mastery of Go", LevelNone},
		{"PhD in machine learning", LevelPhD},
		{"Ph.D. or Master's", LevelPhD},
		{"doctorate", LevelPhD},
		{"associate degree in IT", LevelAssociate},
		{"Associate Engineer", LevelNone},
		{"university diploma", LevelOther},
		{"degree required", LevelOther},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := LevelFromText(tt.text); got != tt.want {
				t.Errorf("LevelFromText(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestLevelOrdering(t *testing.T) {
	order := []Level{LevelNone, LevelOther, LevelAssociate, LevelBachelors, LevelMasters, LevelPhD}
	for i := 1; i < len(order); i++ {
		if order[i] <= order[i-1] {
			t.Errorf("%v should rank above %v", order[i], order[i-1])
		}
	}
	if LevelNone != 0 || LevelPhD != 5 {
		t.Errorf("unexpected ordinals: none=%d phd=%d", LevelNone, LevelPhD)
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"none", "other", "associate", "bachelors", "masters", "phd"} {
		l, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if l.String() != name {
			t.Errorf("round trip %q -> %q", name, l.String())
		}
	}
	if _, err := ParseLevel("bootcamp"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevelJSON(t *testing.T) {
	data, err := json.Marshal(LevelMasters)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"masters"` {
		t.Errorf("got %s", data)
	}

	var l Level
	if err := json.Unmarshal([]byte(`"phd"`), &l); err != nil || l != LevelPhD {
		t.Errorf("unmarshal name: %v %v", l, err)
	}
	if err := json.Unmarshal([]byte(`3`), &l); err != nil || l != LevelBachelors {
		t.Errorf("unmarshal ordinal: %v %v", l, err)
	}
	if err := json.Unmarshal([]byte(`9`), &l); err == nil {
		t.Error("expected error for out-of-range ordinal")
	}
}

func TestSetEducation_KeepsInvariant(t *testing.T) {
	r := Empty()
	r.SetEducation(false, LevelMasters)
	if r.EducationLevel != LevelNone {
		t.Errorf("level must stay none when not mentioned, got %v", r.EducationLevel)
	}
	r.SetEducation(true, LevelMasters)
	if r.EducationLevel != LevelMasters || !r.EducationMentioned {
		t.Errorf("unexpected state %+v", r)
	}
}
