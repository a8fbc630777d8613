package candidate

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kailas-cloud/shortlist/internal/domain/vector"
)

// rawRecord mirrors Record with every shape-sensitive field left raw.
// Legacy records carry name/email/phone at the top level.
type rawRecord struct {
	ID             json.RawMessage `json:"id"`
	Contact        json.RawMessage `json:"contact"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Skills         json.RawMessage `json:"skills"`
	Experience     json.RawMessage `json:"experience"`
	Education      json.RawMessage `json:"education"`
	Certifications json.RawMessage `json:"certifications"`
	Languages      json.RawMessage `json:"languages"`
	Embedding      json.RawMessage `json:"embedding"`
	EmbeddingText  string          `json:"embedding_text"`
}

// UnmarshalJSON decodes leniently: malformed optional fields degrade to
// empty values instead of failing the record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rec := Record{
		ID:             decodeID(raw.ID),
		Skills:         decodeStrings(raw.Skills),
		Experience:     decodeExperience(raw.Experience),
		Education:      decodeEducation(raw.Education),
		Certifications: decodeStrings(raw.Certifications),
		Languages:      decodeStrings(raw.Languages),
		Embedding:      decodeEmbedding(raw.Embedding),
		EmbeddingText:  raw.EmbeddingText,
	}
	if !isNull(raw.Contact) {
		_ = json.Unmarshal(raw.Contact, &rec.Contact)
	}
	if rec.Contact.Name == "" {
		rec.Contact.Name = raw.Name
	}
	if rec.Contact.Email == "" {
		rec.Contact.Email = raw.Email
	}
	if rec.Contact.Phone == "" {
		rec.Contact.Phone = raw.Phone
	}
	rec.normalize()

	*r = rec
	return nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func decodeID(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// decodeStrings keeps the string elements of a JSON array. Anything that is
// not an array yields an empty list.
func decodeStrings(raw json.RawMessage) []string {
	var items []any
	if isNull(raw) || json.Unmarshal(raw, &items) != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func decodeExperience(raw json.RawMessage) []Experience {
	var loose []any
	if isNull(raw) || json.Unmarshal(raw, &loose) != nil {
		return []Experience{}
	}
	out := make([]Experience, 0, len(loose))
	for _, it := range loose {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Experience{
			Position:    stringField(m, "position", "title", "role"),
			Company:     stringField(m, "company", "employer"),
			StartDate:   stringField(m, "start_date"),
			EndDate:     stringField(m, "end_date"),
			Years:       numberField(m, "years"),
			Description: stringField(m, "description"),
		})
	}
	return out
}

// decodeEducation accepts a list of {degree, institution} objects, a list of
// strings, or a single legacy string.
func decodeEducation(raw json.RawMessage) []Education {
	if isNull(raw) {
		return []Education{}
	}
	var single string
	if json.Unmarshal(raw, &single) == nil {
		if single = strings.TrimSpace(single); single == "" {
			return []Education{}
		}
		return []Education{{Degree: single}}
	}
	var loose []any
	if json.Unmarshal(raw, &loose) != nil {
		return []Education{}
	}
	out := make([]Education, 0, len(loose))
	for _, it := range loose {
		switch v := it.(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, Education{Degree: v})
			}
		case map[string]any:
			e := Education{
				Degree:      stringField(v, "degree"),
				Institution: stringField(v, "institution", "school", "university"),
			}
			if e.Degree != "" || e.Institution != "" {
				out = append(out, e)
			}
		}
	}
	return out
}

// decodeEmbedding accepts a float array or a base64 LE float32 blob.
// Undecodable input yields nil and the record is treated as unembedded.
func decodeEmbedding(raw json.RawMessage) []float32 {
	if isNull(raw) {
		return nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		v, err := vector.DecodeBase64(s)
		if err != nil {
			return nil
		}
		return v
	}
	var v []float32
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return v
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func numberField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		if v > 0 {
			return v
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil && f > 0 {
			return f
		}
	}
	return 0
}
