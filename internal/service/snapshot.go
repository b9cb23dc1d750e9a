package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"gw2vault-api/internal/cache"
	"gw2vault-api/internal/codec"
	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/index"
	"gw2vault-api/internal/model"
	"gw2vault-api/internal/repository"
	"gw2vault-api/internal/transform"
	"gw2vault-api/pkg/uid"
)

// ErrSnapshotNotFound is returned when nothing is stored for a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrMissingKey is returned when no API key was supplied.
var ErrMissingKey = errors.New("API key is required")

// Collector builds a full snapshot. *collector.Collector implements it.
type Collector interface {
	Collect(ctx context.Context) (*model.Snapshot, error)
}

// CollectorFactory creates a collector bound to one API key.
type CollectorFactory func(apiKey string) Collector

// SnapshotService collects, slims and stores snapshots. Concurrent requests
// for the same key share one collection.
type SnapshotService struct {
	repo         repository.SnapshotRepository
	cache        cache.Cache
	cacheTTL     time.Duration
	newCollector CollectorFactory
	group        singleflight.Group
	now          func() time.Time
}

// NewSnapshotService creates a snapshot service. c may be nil.
func NewSnapshotService(repo repository.SnapshotRepository, c cache.Cache, cacheTTL time.Duration, newCollector CollectorFactory) *SnapshotService {
	return &SnapshotService{
		repo:         repo,
		cache:        c,
		cacheTTL:     cacheTTL,
		newCollector: newCollector,
		now:          time.Now,
	}
}

// Get returns the stored snapshot for apiKey, collecting one when none exists.
func (s *SnapshotService) Get(ctx context.Context, apiKey string) (*model.SlimSnapshot, error) {
	apiKey = NormalizeKey(apiKey)
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	hash := KeyHash(apiKey)

	blob, err := s.load(ctx, hash)
	if err != nil {
		return nil, err
	}
	if blob != nil {
		return codec.Decode(blob)
	}

	return s.collectShared(ctx, apiKey, hash)
}

// Refresh always collects and replaces the stored snapshot. A failed
// collection leaves the previous snapshot in place.
func (s *SnapshotService) Refresh(ctx context.Context, apiKey string) (*model.SlimSnapshot, error) {
	apiKey = NormalizeKey(apiKey)
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	return s.collectShared(ctx, apiKey, KeyHash(apiKey))
}

// Meta describes the stored snapshot without decoding it.
func (s *SnapshotService) Meta(ctx context.Context, apiKey string) (*model.SnapshotMeta, error) {
	apiKey = NormalizeKey(apiKey)
	if apiKey == "" {
		return nil, ErrMissingKey
	}

	stored, err := s.repo.Get(ctx, KeyHash(apiKey))
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrSnapshotNotFound
	}

	return &model.SnapshotMeta{
		AccountName: stored.AccountName,
		FetchedAt:   stored.FetchedAt,
		SizeBytes:   len(stored.Data),
	}, nil
}

// Forget deletes the stored snapshot for apiKey.
func (s *SnapshotService) Forget(ctx context.Context, apiKey string) (bool, error) {
	apiKey = NormalizeKey(apiKey)
	if apiKey == "" {
		return false, ErrMissingKey
	}
	hash := KeyHash(apiKey)

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.SnapshotPrefix+hash); err != nil {
			log.Printf("[SnapshotService] Cache delete failed: %v", err)
		}
	}

	return s.repo.Delete(ctx, hash)
}

// Locations finds every stack of items of type t in the stored snapshot.
func (s *SnapshotService) Locations(ctx context.Context, apiKey string, t gw2.ItemType, includeMaterials bool) (*index.ItemLocations, error) {
	snap, err := s.Get(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return index.New(snap).ItemsOfType(t, includeMaterials), nil
}

// ListRuns returns the collection log, newest first.
func (s *SnapshotService) ListRuns(ctx context.Context, limit, offset int) ([]model.CollectionRun, int64, error) {
	return s.repo.ListRuns(ctx, limit, offset)
}

// Stats returns store statistics.
func (s *SnapshotService) Stats(ctx context.Context) (map[string]interface{}, error) {
	return s.repo.GetStats(ctx)
}

func (s *SnapshotService) load(ctx context.Context, hash string) ([]byte, error) {
	if s.cache != nil {
		if blob, err := s.cache.Get(ctx, cache.SnapshotPrefix+hash); err == nil {
			return blob, nil
		}
	}

	stored, err := s.repo.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}

	s.cacheBlob(ctx, hash, stored.Data)
	return stored.Data, nil
}

func (s *SnapshotService) collectShared(ctx context.Context, apiKey, hash string) (*model.SlimSnapshot, error) {
	v, err, shared := s.group.Do(hash, func() (interface{}, error) {
		return s.collect(ctx, apiKey, hash)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("[SnapshotService] Joined running collection %s", shortHash(hash))
	}
	return v.(*model.SlimSnapshot), nil
}

func (s *SnapshotService) collect(ctx context.Context, apiKey, hash string) (*model.SlimSnapshot, error) {
	start := s.now()
	run := &model.CollectionRun{
		ID:        uid.NewOrdered(),
		KeyHash:   hash,
		CreatedAt: start.UTC(),
	}

	snap, err := s.newCollector(apiKey).Collect(ctx)
	run.DurationMs = s.now().Sub(start).Milliseconds()
	if err != nil {
		run.Status = model.RunStatusFailed
		run.Error = err.Error()
		s.recordRun(run)
		log.Printf("[SnapshotService] Collection %s failed after %dms: %v", shortHash(hash), run.DurationMs, err)
		return nil, err
	}

	slim := transform.Slim(snap)
	blob, err := codec.Encode(slim)
	if err != nil {
		return nil, err
	}

	stored := &model.StoredSnapshot{
		KeyHash:     hash,
		AccountName: slim.Account.Name,
		Data:        blob,
		FetchedAt:   slim.FetchedAt,
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.repo.Save(ctx, stored); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	s.cacheBlob(ctx, hash, blob)

	run.Status = model.RunStatusSuccess
	run.AccountName = slim.Account.Name
	run.Characters = len(slim.Characters)
	run.Items = len(slim.Items)
	run.Itemstats = len(slim.Itemstats)
	s.recordRun(run)

	log.Printf("[SnapshotService] Stored snapshot for %s (%d bytes, %dms)", slim.Account.Name, len(blob), run.DurationMs)
	return slim, nil
}

func (s *SnapshotService) cacheBlob(ctx context.Context, hash string, blob []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cache.SnapshotPrefix+hash, blob, s.cacheTTL); err != nil {
		log.Printf("[SnapshotService] Cache set failed: %v", err)
	}
}

// recordRun uses its own context so a canceled request is still logged.
func (s *SnapshotService) recordRun(run *model.CollectionRun) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.repo.InsertRun(ctx, run); err != nil {
		log.Printf("[SnapshotService] Failed to record run %s: %v", run.ID, err)
	}
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
