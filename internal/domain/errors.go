package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrCandidateNotFound signals a missing candidate record.
	ErrCandidateNotFound = errors.New("candidate not found")
	// ErrInvalidRequest signals malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMissingEmbedding signals a candidate without a usable embedding.
	ErrMissingEmbedding = errors.New("missing embedding")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrFeedbackDisabled signals that no feedback store is configured.
	ErrFeedbackDisabled = errors.New("feedback store not configured")
)
