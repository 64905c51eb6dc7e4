package ipa

// Key identifies one transcription result. Equal keys resolve to equal
// transcriptions within a run, so the exact triple is the lookup key.
type Key struct {
	Voice          string
	StripZeroWidth bool
	Text           string
}

// Cache memoizes transcriptions for the duration of one run. It never
// evicts; the key space is bounded by the distinct vocabulary of the run.
// Not safe for concurrent use.
type Cache struct {
	entries map[Key]string
	hits    int
	misses  int
}

// NewCache returns an empty run-scoped cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]string)}
}

// GetOrCompute returns the cached value for key, invoking compute exactly
// once on a miss. A compute error is returned unstored so the failure stays
// fatal to the caller rather than being cached.
func (c *Cache) GetOrCompute(key Key, compute func() (string, error)) (string, error) {
	if value, ok := c.entries[key]; ok {
		c.hits++
		return value, nil
	}
	value, err := compute()
	if err != nil {
		return "", err
	}
	c.misses++
	c.entries[key] = value
	return value, nil
}

// Len reports the number of distinct cached items.
func (c *Cache) Len() int { return len(c.entries) }

// Hits reports how many lookups were served from the cache.
func (c *Cache) Hits() int { return c.hits }

// Misses reports how many lookups required a compute.
func (c *Cache) Misses() int { return c.misses }
