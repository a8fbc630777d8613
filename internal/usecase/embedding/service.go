// Package embedding exposes text embedding to the rest of the application
// on top of the decorated provider chain.
package embedding

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/shortlist/internal/domain"
)

// Embedder is the consumer interface for the decorated chain.
type Embedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

// Service embeds job descriptions (query side) and candidate profile
// texts (document side). The two sides differ only when the model uses
// instruction prefixes.
type Service struct {
	query    Embedder
	document Embedder
}

// NewService creates the embedding service. document defaults to query.
func NewService(query, document Embedder) *Service {
	if document == nil {
		document = query
	}
	return &Service{query: query, document: document}
}

// EmbedText returns the query-side vector for text. Repeated calls with the
// same text return bit-identical vectors.
func (s *Service) EmbedText(ctx context.Context, text string) ([]float32, error) {
	res, err := s.query.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	return res.Embedding, nil
}

// EmbedProfile returns the document-side vector for a candidate profile text.
func (s *Service) EmbedProfile(ctx context.Context, text string) ([]float32, error) {
	res, err := s.document.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed profile: %w", err)
	}
	return res.Embedding, nil
}

// EmbedProfiles returns one document-side vector per text, in input order.
func (s *Service) EmbedProfiles(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	res, err := s.document.BatchEmbed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed profiles: %w", err)
	}
	return res.Embeddings, nil
}
