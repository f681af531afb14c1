package views

import (
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/thyrotrack-server/internal/domain"
)

// Cache memoizes derived-view computations keyed by the store revision and the
// query shape. Correctness never depends on it: a miss just recomputes, and a
// revision bump naturally orphans stale entries.
type Cache struct {
	cache *lru.Cache[string, any]
	log   *logrus.Logger

	statsMu sync.Mutex
	hits    int64
	misses  int64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Items  int   `json:"items"`
}

// NewCache creates a derived-view cache holding up to maxItems entries.
func NewCache(maxItems int, logger *logrus.Logger) (*Cache, error) {
	c, err := lru.New[string, any](maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create view cache: %w", err)
	}
	return &Cache{cache: c, log: logger}, nil
}

func (c *Cache) lookup(key string, compute func() any) any {
	if v, ok := c.cache.Get(key); ok {
		c.statsMu.Lock()
		c.hits++
		c.statsMu.Unlock()
		return v
	}

	v := compute()
	c.cache.Add(key, v)
	c.statsMu.Lock()
	c.misses++
	c.statsMu.Unlock()
	return v
}

// Timeline is the cached form of views.Timeline.
func (c *Cache) Timeline(revision uint64, records []domain.MedicalRecord, filter Filter) []domain.MedicalRecord {
	key := fmt.Sprintf("timeline:%d:%s", revision, filter)
	return c.lookup(key, func() any {
		return Timeline(records, filter)
	}).([]domain.MedicalRecord)
}

// Markers is the cached form of views.DiscoverMarkers.
func (c *Cache) Markers(revision uint64, records []domain.MedicalRecord) []string {
	key := fmt.Sprintf("markers:%d", revision)
	return c.lookup(key, func() any {
		return DiscoverMarkers(records)
	}).([]string)
}

// PivotTable is the cached form of views.PivotTable.
func (c *Cache) PivotTable(revision uint64, records []domain.MedicalRecord, selectedMarkers []string) []PivotRow {
	key := fmt.Sprintf("pivot:%d:%s", revision, strings.Join(selectedMarkers, ","))
	return c.lookup(key, func() any {
		return PivotTable(records, selectedMarkers)
	}).([]PivotRow)
}

// MarkerTimeSeries is the cached form of views.MarkerTimeSeries.
func (c *Cache) MarkerTimeSeries(revision uint64, records []domain.MedicalRecord, marker string) []SeriesPoint {
	key := fmt.Sprintf("series:%d:%s", revision, marker)
	return c.lookup(key, func() any {
		return MarkerTimeSeries(records, marker)
	}).([]SeriesPoint)
}

// Stats returns current hit/miss counters.
func (c *Cache) Stats() CacheStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Items: c.cache.Len()}
}
