package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shortlist/internal/domain"
	domcand "github.com/kailas-cloud/shortlist/internal/domain/candidate"
)

type mockWriter struct {
	existing map[string]bool
	failFor  map[string]bool
	embeds   []bool
}

func (m *mockWriter) Upsert(_ context.Context, rec domcand.Record, embed bool) (domcand.Record, bool, error) {
	m.embeds = append(m.embeds, embed)
	if m.failFor[rec.ID] {
		return domcand.Record{}, false, errors.New("store down")
	}
	return rec, !m.existing[rec.ID], nil
}

const validDoc = `[
	{"id": "c-1", "name": "Ada", "skills": ["Go", "SQL"], "experience": [{"position": "Engineer", "years": 4}]},
	{"id": 2, "contact": {"email": "b@example.com"}, "languages": ["English"]}
]`

func TestParse_Valid(t *testing.T) {
	recs, err := Parse([]byte(validDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Contact.Name != "Ada" || len(recs[0].Skills) != 2 {
		t.Errorf("unexpected first record: %+v", recs[0])
	}
	if recs[1].ID != "2" {
		t.Errorf("expected numeric id to become %q, got %q", "2", recs[1].ID)
	}
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"not an array", `{"id": "c-1"}`, "(root)"},
		{"missing id", `[{"skills": ["Go"]}]`, "0"},
		{"blank id", `[{"id": "  "}]`, "0.id"},
		{"skills not a list", `[{"id": "c-1", "skills": "Go, SQL"}]`, "0.skills"},
		{"embedding of strings", `[{"id": "c-1", "embedding": ["a"]}]`, "0.embedding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Error("validation errors must match ErrInvalidRequest")
			}
			found := false
			for _, fe := range verr.Errors {
				if strings.HasPrefix(fe.Field, tt.field) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected violation at %q, got %+v", tt.field, verr.Errors)
			}
		})
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`[{`)); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestParse_DuplicateIDs(t *testing.T) {
	_, err := Parse([]byte(`[{"id": "a"}, {"id": "a"}]`))
	if !errors.Is(err, domain.ErrInvalidRequest) || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestImport(t *testing.T) {
	w := &mockWriter{existing: map[string]bool{"2": true}}
	svc := New(w, zap.NewNop())

	rep, err := svc.Import(context.Background(), []byte(validDoc), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Created != 1 || rep.Updated != 1 || len(rep.Failed) != 0 {
		t.Errorf("unexpected report: %+v", rep)
	}
	for _, e := range w.embeds {
		if !e {
			t.Error("embed flag must be passed through")
		}
	}
}

func TestImport_FailedRecordsReported(t *testing.T) {
	w := &mockWriter{failFor: map[string]bool{"c-1": true}}
	svc := New(w, zap.NewNop())

	rep, err := svc.Import(context.Background(), []byte(validDoc), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Created != 1 || len(rep.Failed) != 1 || rep.Failed[0] != "c-1" {
		t.Errorf("unexpected report: %+v", rep)
	}
}

func TestImport_InvalidDocumentStoresNothing(t *testing.T) {
	w := &mockWriter{}
	svc := New(w, zap.NewNop())

	if _, err := svc.Import(context.Background(), []byte(`[{"name": "x"}]`), false); err == nil {
		t.Fatal("expected error")
	}
	if len(w.embeds) != 0 {
		t.Error("nothing must be written")
	}
}
