// Package fonts resolves the display-font tokens used by text layers to parsed
// fonts. Custom faces load in the background; until they arrive, or if they
// never do, every token resolves to the bundled Go Bold face.
package fonts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/sync/errgroup"

	"thumb-studio/internal/layer"
)

// DefaultReadyTimeout bounds how long a render waits for custom fonts.
const DefaultReadyTimeout = 3 * time.Second

// Registry maps font tokens to fonts. It is safe for concurrent use.
type Registry struct {
	logger   *slog.Logger
	fallback *sfnt.Font

	mu    sync.RWMutex
	fonts map[string]*sfnt.Font

	once  sync.Once
	ready chan struct{}
}

// NewRegistry creates a registry holding only the fallback face.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	fallback, err := sfnt.Parse(gobold.TTF)
	if err != nil {
		// gobold is compiled in; this cannot fail short of a broken build.
		panic(fmt.Sprintf("fonts: parse fallback: %v", err))
	}
	return &Registry{
		logger:   logger,
		fallback: fallback,
		fonts:    make(map[string]*sfnt.Font),
		ready:    make(chan struct{}),
	}
}

// Fallback returns the bundled face.
func (r *Registry) Fallback() *sfnt.Font {
	return r.fallback
}

// Register adds a parsed font under token.
func (r *Registry) Register(token string, f *sfnt.Font) {
	r.mu.Lock()
	r.fonts[token] = f
	r.mu.Unlock()
}

// RegisterTTF parses raw TrueType/OpenType bytes and registers them.
func (r *Registry) RegisterTTF(token string, data []byte) error {
	f, err := sfnt.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", token, err)
	}
	r.Register(token, f)
	return nil
}

// Font returns the face for token, or the fallback if it is unknown or not
// loaded yet.
func (r *Registry) Font(token string) *sfnt.Font {
	r.mu.RLock()
	f, ok := r.fonts[token]
	r.mu.RUnlock()
	if ok {
		return f
	}
	return r.fallback
}

// Loaded reports whether token has its own face.
func (r *Registry) Loaded(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fonts[token]
	return ok
}

// LoadAsync reads the font files in paths (token to file) in the background.
// Unknown tokens are ignored and a failing file is logged and skipped. Ready
// unblocks once every file has been tried.
func (r *Registry) LoadAsync(ctx context.Context, paths map[string]string) {
	known := make(map[string]bool)
	for _, t := range layer.FontTokens() {
		known[t] = true
	}

	go func() {
		defer r.markReady()
		g, _ := errgroup.WithContext(ctx)
		for token, path := range paths {
			if !known[token] {
				r.logger.Warn("ignoring unknown font token", "token", token)
				continue
			}
			g.Go(func() error {
				data, err := os.ReadFile(path)
				if err != nil {
					r.logger.Warn("font load failed", "token", token, "path", path, "err", err)
					return nil
				}
				if err := r.RegisterTTF(token, data); err != nil {
					r.logger.Warn("font parse failed", "token", token, "err", err)
					return nil
				}
				r.logger.Debug("font loaded", "token", token)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// MarkReady unblocks Ready without loading anything. Used when no custom
// fonts are configured.
func (r *Registry) MarkReady() {
	r.markReady()
}

func (r *Registry) markReady() {
	r.once.Do(func() { close(r.ready) })
}

// Ready waits up to timeout for background loading to finish. It returns
// false on timeout, in which case callers render with whatever is loaded.
func (r *Registry) Ready(ctx context.Context, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-r.ready:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}
