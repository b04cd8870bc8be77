package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hybrid-rag-be/internal/pkg/logger"
	"hybrid-rag-be/pkg/engine"
)

// HandleCache memoizes the engine handle for the whole process. Setup runs
// at most once per cached generation: concurrent first callers share one
// initialization, a failed initialization caches nothing, and Invalidate
// atomically drops the handle so the next Get builds a fresh one.
type HandleCache struct {
	mu     sync.Mutex
	handle engine.Handle

	eng    engine.Engine
	logger logger.ILogger
}

func NewHandleCache(eng engine.Engine, log logger.ILogger) *HandleCache {
	return &HandleCache{
		eng:    eng,
		logger: log,
	}
}

// Get returns the cached handle, running Setup first when none is live.
// The lock is held across Setup so duplicate initializations cannot start;
// late callers wake up to the cached handle.
func (c *HandleCache) Get(ctx context.Context) (engine.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		return c.handle, nil
	}

	c.logger.Info("PIPELINE", "Booting up the hybrid RAG pipeline", nil)
	start := time.Now()

	handle, err := c.eng.Setup(ctx)
	if err != nil {
		c.logger.Error("PIPELINE", "Pipeline initialization failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("pipeline setup: %w", err)
	}

	c.handle = handle
	c.logger.Info("PIPELINE", "Pipeline ready", map[string]interface{}{
		"elapsed": time.Since(start).String(),
	})
	return handle, nil
}

// Invalidate drops the cached handle. There is no teardown contract; the
// old handle is simply released for the next Get to replace.
func (c *HandleCache) Invalidate() {
	c.mu.Lock()
	c.handle = nil
	c.mu.Unlock()
}

// Ready reports whether a handle is currently cached. It never triggers
// initialization.
func (c *HandleCache) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}
