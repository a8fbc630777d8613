package candidate

import (
	"encoding/json"
	"fmt"

	domcand "github.com/kailas-cloud/shortlist/internal/domain/candidate"
	"github.com/kailas-cloud/shortlist/internal/domain/vector"
)

// storedRecord is the JSON document persisted per candidate.
// The embedding is kept as a base64 blob of little-endian float32 values.
type storedRecord struct {
	ID             string               `json:"id"`
	Contact        domcand.Contact      `json:"contact"`
	Skills         []string             `json:"skills"`
	Experience     []domcand.Experience `json:"experience"`
	Education      []domcand.Education  `json:"education"`
	Certifications []string             `json:"certifications"`
	Languages      []string             `json:"languages"`
	Embedding      string               `json:"embedding,omitempty"`
	EmbeddingText  string               `json:"embedding_text,omitempty"`
}

func toStored(r domcand.Record) storedRecord {
	s := storedRecord{
		ID:             r.ID,
		Contact:        r.Contact,
		Skills:         r.Skills,
		Experience:     r.Experience,
		Education:      r.Education,
		Certifications: r.Certifications,
		Languages:      r.Languages,
		EmbeddingText:  r.EmbeddingText,
	}
	if len(r.Embedding) > 0 {
		s.Embedding = vector.EncodeBase64(r.Embedding)
	}
	return s
}

func marshalRecord(r domcand.Record) ([]byte, error) {
	data, err := json.Marshal(toStored(r))
	if err != nil {
		return nil, fmt.Errorf("marshal candidate %s: %w", r.ID, err)
	}
	return data, nil
}

// parseRecord decodes a stored document. The record decoder accepts the
// base64 embedding form and degrades malformed fields to empty values.
// fallbackID is used when the document lost its id.
func parseRecord(fallbackID string, raw []byte) (domcand.Record, error) {
	var r domcand.Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return domcand.Record{}, fmt.Errorf("unmarshal candidate %s: %w", fallbackID, err)
	}
	if r.ID == "" {
		r.ID = fallbackID
	}
	return r, nil
}
