// Package assets fetches and decodes the rasters referenced by a document.
//
// Sources are URIs: data: URIs, http(s) URLs, file:// URLs or plain paths.
// Every load is bounded by a timeout and cached by URI, so a slow or broken
// asset only ever costs the layer that references it.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/h2non/filetype"
	"golang.org/x/sync/errgroup"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultTimeout bounds a single asset load.
const DefaultTimeout = 10 * time.Second

// maxAssetBytes caps how much is read from any source.
const maxAssetBytes = 64 << 20

var (
	// ErrUnsupported is returned for content that is not a decodable raster.
	ErrUnsupported = errors.New("unsupported asset")
	// ErrTimeout is returned when a load does not finish within its timeout.
	ErrTimeout = errors.New("asset load timed out")
	// ErrEmptyURI is returned for an empty source.
	ErrEmptyURI = errors.New("empty asset uri")
)

// Observer is notified of each finished load. Used for metrics.
type Observer func(uri string, d time.Duration, err error)

// Loader loads and caches images by URI. It is safe for concurrent use.
type Loader struct {
	Timeout time.Duration
	Client  *http.Client
	Logger  *slog.Logger
	Observe Observer

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	done chan struct{}
	img  image.Image
	err  error
}

// NewLoader creates a Loader with the default timeout.
func NewLoader() *Loader {
	return &Loader{
		Timeout: DefaultTimeout,
		Client:  &http.Client{},
		Logger:  slog.Default(),
		entries: make(map[string]*entry),
	}
}

// Load returns the decoded image for uri. Concurrent callers for the same URI
// share one fetch. Failed loads are not cached, so a later call retries.
func (l *Loader) Load(ctx context.Context, uri string) (image.Image, error) {
	if uri == "" {
		return nil, ErrEmptyURI
	}

	l.mu.Lock()
	if l.entries == nil {
		l.entries = make(map[string]*entry)
	}
	e, ok := l.entries[uri]
	if !ok {
		e = &entry{done: make(chan struct{})}
		l.entries[uri] = e
		go l.fill(uri, e)
	}
	l.mu.Unlock()

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-e.done:
		return e.img, e.err
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s", ErrTimeout, shortURI(uri))
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cached returns the image for uri if it has already loaded successfully.
func (l *Loader) Cached(uri string) (image.Image, bool) {
	l.mu.Lock()
	e, ok := l.entries[uri]
	l.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-e.done:
		return e.img, e.err == nil
	default:
		return nil, false
	}
}

// Prefetch starts loads for all uris in parallel and waits for them. It never
// fails; individual errors surface again on the next Load.
func (l *Loader) Prefetch(ctx context.Context, uris []string) {
	g, gctx := errgroup.WithContext(ctx)
	for _, uri := range uris {
		if uri == "" {
			continue
		}
		g.Go(func() error {
			if _, err := l.Load(gctx, uri); err != nil {
				l.logger().Debug("prefetch failed", "uri", shortURI(uri), "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Forget drops uri from the cache.
func (l *Loader) Forget(uri string) {
	l.mu.Lock()
	delete(l.entries, uri)
	l.mu.Unlock()
}

func (l *Loader) fill(uri string, e *entry) {
	start := time.Now()
	// The fetch itself is bounded independently of any one caller, so a
	// caller giving up does not poison the shared entry.
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	data, err := l.read(ctx, uri)
	if err == nil {
		e.img, err = Decode(data)
	}
	e.err = err

	if err != nil {
		l.mu.Lock()
		if l.entries[uri] == e {
			delete(l.entries, uri)
		}
		l.mu.Unlock()
		l.logger().Warn("asset load failed", "uri", shortURI(uri), "err", err)
	}
	if l.Observe != nil {
		l.Observe(uri, time.Since(start), err)
	}
	close(e.done)
}

func (l *Loader) read(ctx context.Context, uri string) ([]byte, error) {
	switch {
	case strings.HasPrefix(uri, "data:"):
		return decodeDataURI(uri)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return l.fetch(ctx, uri)
	case strings.HasPrefix(uri, "file://"):
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("parse file uri: %w", err)
		}
		return readFile(u.Path)
	default:
		return readFile(uri)
	}
}

func (l *Loader) fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, uri)
		}
		return nil, fmt.Errorf("fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", uri, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset: %w", err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxAssetBytes))
}

// Decode sniffs and decodes raster bytes.
func Decode(data []byte) (image.Image, error) {
	if !filetype.IsImage(data) {
		return nil, ErrUnsupported
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return img, nil
}

// decodeDataURI handles data:[<mediatype>][;base64],<data>.
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data uri")
	}
	meta, payload := uri[len("data:"):comma], uri[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data uri: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data uri: %w", err)
	}
	return []byte(s), nil
}

// DataURI encodes raw bytes as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func shortURI(uri string) string {
	if len(uri) > 64 {
		return uri[:64] + "..."
	}
	return uri
}
