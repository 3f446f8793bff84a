// Package meshpool drains the chunk store's dirty-section list and
// hands each one to a Renderer collaborator to rebuild, bounded by a
// worker pool per spec §5's "mesh-building worker pool".
//
// Grounded on nickheyer-discopanel/internal/proxy/mapper.go's
// TryMapper, the pack's one directly-grounded errgroup usage: spawn a
// bounded set of goroutines under errgroup.WithContext, collect
// whatever each produces, and let the group propagate the first error.
package meshpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/voxelkiln/mccore/pkg/block"
	"github.com/voxelkiln/mccore/pkg/collab"
	"github.com/voxelkiln/mccore/pkg/world"
)

// Pool rebuilds dirty section meshes concurrently through a Renderer.
type Pool struct {
	store    *world.Store
	registry *block.Registry
	renderer collab.Renderer
	workers  int
}

// New builds a Pool. workers <= 0 derives a worker count from
// runtime.GOMAXPROCS(0), matching the teacher pack's GOMAXPROCS-bounded
// concurrency idiom (SPEC_FULL.md §5).
func New(store *world.Store, registry *block.Registry, renderer collab.Renderer, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{store: store, registry: registry, renderer: renderer, workers: workers}
}

// RebuildDirty captures a snapshot of every currently-dirty section
// across all loaded chunks and submits each to the Renderer, clearing
// the dirty flag only once that section's CreateMesh call returns.
// It returns the first error encountered, if any, and aborts remaining
// work via ctx cancellation.
func (p *Pool) RebuildDirty(ctx context.Context) error {
	dirty := p.store.DirtySections()
	if len(dirty) == 0 {
		return nil
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(p.workers)

	for _, d := range dirty {
		d := d
		group.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return p.rebuildOne(d)
		})
	}
	return group.Wait()
}

func (p *Pool) rebuildOne(d world.DirtySection) error {
	snap, err := p.store.CaptureSnapshot(d.Chunk, d.Section, d.Section)
	if err != nil {
		return err
	}
	sec, ok := snap.Sections[d.Section]
	if !ok {
		p.store.ClearDirty(d.Chunk, d.Section)
		return nil
	}

	blocks := make([]block.Block, world.BlocksPerSection)
	blockLight := make([]byte, world.BlocksPerSection)
	skyLight := make([]byte, world.BlocksPerSection)
	for i := 0; i < world.BlocksPerSection; i++ {
		blocks[i] = p.registry.FromInternalID(sec.Blocks.Get(i))
		blockLight[i] = sec.BlockLight.Get(i)
		skyLight[i] = sec.SkyLight.Get(i)
	}

	p.renderer.CreateMesh(collab.SectionSnapshot{
		Blocks:     blocks,
		BlockLight: blockLight,
		SkyLight:   skyLight,
	})
	p.store.ClearDirty(d.Chunk, d.Section)
	return nil
}
