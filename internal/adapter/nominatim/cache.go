package nominatim

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/quake-proximity-service/internal/domain"
	"github.com/couchcryptid/quake-proximity-service/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, place string) (domain.GeoPoint, error) {
	key := "fwd:" + place
	if v, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("forward", "hit").Inc()
		return v.point, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("forward", "miss").Inc()

	point, err := c.inner.ForwardGeocode(ctx, place)
	if err != nil {
		// Misses and upstream failures are not cached so they can be retried.
		return point, err
	}
	c.cache.put(key, cachedValue{point: point})
	return point, nil
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, point domain.GeoPoint) (string, error) {
	key := fmt.Sprintf("rev:%.6f,%.6f", point.Lat, point.Lon)
	if v, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("reverse", "hit").Inc()
		return v.label, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("reverse", "miss").Inc()

	label, err := c.inner.ReverseGeocode(ctx, point)
	if err != nil {
		return label, err
	}
	// Only cache real addresses so a transient "Unknown location" can be retried.
	if label != domain.UnknownLocation {
		c.cache.put(key, cachedValue{label: label})
	}
	return label, nil
}

// cachedValue holds either a forward result (point) or a reverse result (label).
type cachedValue struct {
	point domain.GeoPoint
	label string
}

// lruCache is a simple thread-safe LRU cache for geocoding results.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value cachedValue
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (cachedValue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return cachedValue{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value cachedValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
