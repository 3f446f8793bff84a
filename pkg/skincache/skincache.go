// Package skincache runs the skin-image-fetch worker: it reads a
// request channel and writes a reply channel. Both channels are
// unbuffered, so a send blocks until the other side receives; neither
// queues pending requests or replies. Fetched images are cached as PNG files on disk
// keyed by hash, under baseDir/<hh>/<hash>.png (spec §6 "Persisted
// state").
//
// Grounded on nickheyer-discopanel/internal/proxy/mapper.go's
// errgroup.WithContext usage, generalized from "fan out once" to "run
// N long-lived workers draining a channel until it closes".
package skincache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Request asks for the skin image at URL, identified by Hash (the
// cache key; callers derive it from the texture property, e.g. the
// trailing path segment of a Mojang session-server texture URL).
type Request struct {
	Hash string
	URL  string
}

// Reply carries back the fetched (or cached) PNG bytes, or Err if the
// fetch failed.
type Reply struct {
	Hash string
	PNG  []byte
	Err  error
}

// Worker owns the request/reply channel pair and the disk cache
// directory. Zero value is not usable; construct with New.
type Worker struct {
	baseDir string
	client  *http.Client
	workers int

	Requests chan Request
	Replies  chan Reply
}

// New builds a Worker caching under baseDir. workers <= 0 derives a
// count from runtime.GOMAXPROCS(0), matching this repo's other worker
// pool (pkg/meshpool).
func New(baseDir string, client *http.Client, workers int) *Worker {
	if client == nil {
		client = http.DefaultClient
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Worker{
		baseDir:  baseDir,
		client:   client,
		workers:  workers,
		Requests: make(chan Request),
		Replies:  make(chan Reply),
	}
}

// Run drains Requests with Worker's configured concurrency until
// Requests is closed or ctx is canceled, publishing one Reply per
// Request consumed. Run closes Replies before returning. It returns
// the first error from a worker goroutine's own machinery (channel
// plumbing), not individual fetch failures, which are reported inline
// on each Reply.
func (w *Worker) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(w.workers)

	defer close(w.Replies)

	for {
		select {
		case req, ok := <-w.Requests:
			if !ok {
				return group.Wait()
			}
			group.Go(func() error {
				reply := w.fetch(ctx, req)
				select {
				case w.Replies <- reply:
				case <-ctx.Done():
				}
				return nil
			})
		case <-ctx.Done():
			return group.Wait()
		}
	}
}

func (w *Worker) fetch(ctx context.Context, req Request) Reply {
	if png, err := w.readCached(req.Hash); err == nil {
		return Reply{Hash: req.Hash, PNG: png}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return Reply{Hash: req.Hash, Err: err}
	}
	resp, err := w.client.Do(httpReq)
	if err != nil {
		return Reply{Hash: req.Hash, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Reply{Hash: req.Hash, Err: fmt.Errorf("skincache: fetch %s: status %d", req.URL, resp.StatusCode)}
	}

	png, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{Hash: req.Hash, Err: err}
	}
	if err := w.writeCached(req.Hash, png); err != nil {
		return Reply{Hash: req.Hash, Err: err}
	}
	return Reply{Hash: req.Hash, PNG: png}
}

func (w *Worker) cachePath(hash string) (string, error) {
	if len(hash) < 2 {
		return "", fmt.Errorf("skincache: hash %q too short to shard", hash)
	}
	return filepath.Join(w.baseDir, hash[:2], hash+".png"), nil
}

func (w *Worker) readCached(hash string) ([]byte, error) {
	path, err := w.cachePath(hash)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (w *Worker) writeCached(hash string, png []byte) error {
	path, err := w.cachePath(hash)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, png, 0o644)
}
