package labelcache

const defaultMaxSize = 1024

// Option applies a configuration option to the cache.
type Option func(*lruCache)

// WithMaxSize sets the maximum number of labels to keep. Values below one
// are ignored.
func WithMaxSize(maxSize int) Option {
	return func(c *lruCache) {
		if maxSize > 0 {
			c.maxSize = maxSize
		}
	}
}
