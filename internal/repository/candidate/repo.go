// Package candidate persists candidate records as JSON documents in Valkey.
package candidate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/shortlist/internal/db"
	"github.com/kailas-cloud/shortlist/internal/domain"
	domcand "github.com/kailas-cloud/shortlist/internal/domain/candidate"
	"github.com/kailas-cloud/shortlist/internal/domain/vector"
)

// store is the consumer interface for candidates (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/candidate.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a candidate repository. Keys are prefix+"candidate:"+id.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Upsert creates or replaces a candidate. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, rec domcand.Record) (bool, error) {
	key := r.key(rec.ID)
	data, err := marshalRecord(rec)
	if err != nil {
		return false, err
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return !exists, nil
}

// Get returns a candidate by ID.
func (r *Repo) Get(ctx context.Context, id string) (domcand.Record, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcand.Record{}, domain.ErrCandidateNotFound
		}
		return domcand.Record{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseRecord(id, raw)
}

// GetMany returns the candidates found for ids, in ids order, and the ids
// that do not exist.
func (r *Repo) GetMany(ctx context.Context, ids []string) ([]domcand.Record, []string, error) {
	if len(ids) == 0 {
		return []domcand.Record{}, nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}

	raws, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, nil, fmt.Errorf("json.get multi: %w", err)
	}

	recs := make([]domcand.Record, 0, len(ids))
	var missing []string
	for i, raw := range raws {
		if raw == nil {
			missing = append(missing, ids[i])
			continue
		}
		rec, err := parseRecord(ids[i], raw)
		if err != nil {
			return nil, nil, err
		}
		recs = append(recs, rec)
	}
	return recs, missing, nil
}

// List returns up to limit candidates ordered by ID. limit <= 0 returns all.
func (r *Repo) List(ctx context.Context, limit int) ([]domcand.Record, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"candidate:*")
	if err != nil {
		return nil, fmt.Errorf("scan candidates: %w", err)
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	if len(keys) == 0 {
		return []domcand.Record{}, nil
	}

	raws, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("json.get multi: %w", err)
	}

	recs := make([]domcand.Record, 0, len(keys))
	for i, raw := range raws {
		// deleted between SCAN and JSON.GET
		if raw == nil {
			continue
		}
		rec, err := parseRecord(r.idFromKey(keys[i]), raw)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Delete removes a candidate.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrCandidateNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// SetEmbedding updates only the embedding fields of an existing candidate.
func (r *Repo) SetEmbedding(ctx context.Context, id string, vec []float32, text string) error {
	key := r.key(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrCandidateNotFound
	}

	encVec, err := json.Marshal(vector.EncodeBase64(vec))
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}
	encText, err := json.Marshal(text)
	if err != nil {
		return fmt.Errorf("marshal embedding text: %w", err)
	}

	items := []db.JSONSetItem{
		{Key: key, Path: "$.embedding", Data: encVec},
		{Key: key, Path: "$.embedding_text", Data: encText},
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json.set embedding %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return r.prefix + "candidate:" + id
}

func (r *Repo) idFromKey(key string) string {
	return strings.TrimPrefix(key, r.prefix+"candidate:")
}
