package candidate

import (
	"context"

	domcand "github.com/kailas-cloud/shortlist/internal/domain/candidate"
)

// Repository defines the storage contract for candidates.
type Repository interface {
	Upsert(ctx context.Context, rec domcand.Record) (created bool, err error)
	Get(ctx context.Context, id string) (domcand.Record, error)
	GetMany(ctx context.Context, ids []string) (recs []domcand.Record, missing []string, err error)
	List(ctx context.Context, limit int) ([]domcand.Record, error)
	Delete(ctx context.Context, id string) error
	SetEmbedding(ctx context.Context, id string, vec []float32, text string) error
}

// ProfileEmbedder vectorizes candidate profile texts.
type ProfileEmbedder interface {
	EmbedProfile(ctx context.Context, text string) ([]float32, error)
	EmbedProfiles(ctx context.Context, texts []string) ([][]float32, error)
}
