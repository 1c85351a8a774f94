package cache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tobikareem/desola-flights/internal/background"
	"github.com/tobikareem/desola-flights/internal/metrics"
	"github.com/tobikareem/desola-flights/internal/models"
)

const (
	defaultMemorySize = 512
	defaultMemoryTTL  = 6 * time.Hour
	defaultBlobTTL    = 12 * time.Hour
)

// TwoTier is an in-process cache in front of a durable blob tier. Reads check
// memory first, then the blob tier (repopulating memory on a hit). Writes
// land in memory synchronously; the blob write happens in the background and
// is skipped entirely for empty responses so "no availability" never becomes
// durable.
type TwoTier struct {
	memory  *expirable.LRU[string, *models.SearchResponse]
	blob    BlobStore
	writer  *background.Writer
	blobTTL time.Duration
}

type TwoTierConfig struct {
	Blob       BlobStore
	Writer     *background.Writer
	MemorySize int
	MemoryTTL  time.Duration
	BlobTTL    time.Duration
}

func NewTwoTier(cfg TwoTierConfig) *TwoTier {
	if cfg.MemorySize <= 0 {
		cfg.MemorySize = defaultMemorySize
	}
	if cfg.MemoryTTL <= 0 {
		cfg.MemoryTTL = defaultMemoryTTL
	}
	if cfg.BlobTTL <= 0 {
		cfg.BlobTTL = defaultBlobTTL
	}
	blob := cfg.Blob
	if blob == nil {
		blob = NewNoOpStore()
	}
	writer := cfg.Writer
	if writer == nil {
		writer = background.NewWriter(0, 0)
	}
	return &TwoTier{
		memory:  expirable.NewLRU[string, *models.SearchResponse](cfg.MemorySize, nil, cfg.MemoryTTL),
		blob:    blob,
		writer:  writer,
		blobTTL: cfg.BlobTTL,
	}
}

// SearchKey derives the cache key for one provider search. Scope is
// deliberately provider+origin+destination only, pinning the behavior of the
// system this replaces; widen here when date-scoped keys land.
func SearchKey(provider, origin, destination string) string {
	return "search:" + provider + ":" + strings.ToUpper(origin) + ":" + strings.ToUpper(destination)
}

func (t *TwoTier) Get(ctx context.Context, key string) (*models.SearchResponse, bool) {
	if resp, ok := t.memory.Get(key); ok {
		metrics.CacheHitsTotal.WithLabelValues("memory").Inc()
		return resp, true
	}

	data, ok, err := t.blob.Get(ctx, key)
	if err != nil {
		log.Printf("cache: durable read for %s failed: %v", key, err)
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	if !ok {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		log.Printf("cache: corrupt durable entry for %s: %v", key, err)
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}

	t.memory.Add(key, &resp)
	metrics.CacheHitsTotal.WithLabelValues("durable").Inc()
	return &resp, true
}

func (t *TwoTier) Put(key string, resp *models.SearchResponse) {
	if resp == nil {
		return
	}
	t.memory.Add(key, resp)

	if resp.Total == 0 {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("cache: marshal for %s failed: %v", key, err)
		return
	}
	t.writer.Submit("cache-write:"+key, func(ctx context.Context) error {
		return t.blob.Set(ctx, key, data, t.blobTTL)
	})
}

// StoreRaw persists a raw provider payload next to the unified entry. It is
// best effort and never blocks the caller; providers.RawSink is satisfied.
func (t *TwoTier) StoreRaw(key string, payload []byte) {
	if len(payload) == 0 {
		return
	}
	t.writer.Submit("raw-write:"+key, func(ctx context.Context) error {
		return t.blob.Set(ctx, key, payload, t.blobTTL)
	})
}

// Flush waits for pending background writes; intended for tests and
// shutdown.
func (t *TwoTier) Flush() {
	t.writer.Wait()
}

func (t *TwoTier) Close() error {
	t.writer.Wait()
	return t.blob.Close()
}
