package pipeline

import "github.com/avendel/chunkscribe/internal/media"

// WithCleanup overrides the chunk cleanup function, for tests.
func WithCleanup(fn func(chunks []media.ChunkSpec, warn media.WarnFunc)) Option {
	return func(p *Pipeline) { p.cleanup = fn }
}

// Merge exposes merge for tests.
var Merge = merge

// Normalize exposes Config.normalize for tests.
func (c *Config) Normalize() { c.normalize() }
