// Package light implements spec component E: an incremental FIFO
// relaxation engine that keeps block- and sky-light levels consistent
// as the chunk store changes, time-budgeted per tick.
//
// Grounded on original_source/src/world/mod.rs's do_light_update/tick:
// same two-channel queue, same max-of-neighbors-minus-absorption
// relaxation with block-emission override and "sky light doesn't
// decrease going down at full brightness" rule, same batched budget
// check every 4096 updates.
package light

import (
	"github.com/voxelkiln/mccore/pkg/block"
)

// Kind distinguishes the two independent light channels a position
// carries, per spec §3 Section ("block_light", "sky_light").
type Kind int

const (
	Block Kind = iota
	Sky
)

// Update is one FIFO entry: recompute channel Kind's value at Pos.
type Update struct {
	Kind Kind
	Pos  block.Position
}

// World is the subset of *world.Store the engine needs. Declared here
// rather than imported from pkg/world so pkg/world can hold an Engine
// behind the narrower LightQueue interface (pkg/world/queues.go)
// without an import cycle; *world.Store satisfies this interface
// structurally.
type World interface {
	GetBlock(pos block.Position) block.Block
	GetBlockLight(pos block.Position) byte
	GetSkyLight(pos block.Position) byte
	SetBlockLight(pos block.Position, level byte)
	SetSkyLight(pos block.Position, level byte)
	InBounds(pos block.Position) bool
	MarkSectionDirty(pos block.Position)
}

// Engine is the lighting engine of spec §4.E.
type Engine struct {
	world    World
	registry *block.Registry
	queue    []Update
}

// NewEngine builds an Engine over world, using registry to look up
// each block's emitted/absorbed light (pkg/block's Material).
func NewEngine(world World, registry *block.Registry) *Engine {
	return &Engine{world: world, registry: registry}
}

// Enqueue implements world.LightQueue: pushes both channels for pos.
// Store itself is channel-agnostic (it just knows a position's light
// may need recomputing); the engine is what distinguishes Block from
// Sky, matching the original's set_block calling update_light(pos,
// Block) and update_light(pos, Sky) for every touched position.
func (e *Engine) Enqueue(pos block.Position) {
	e.queue = append(e.queue, Update{Kind: Block, Pos: pos}, Update{Kind: Sky, Pos: pos})
}

// EnqueueKind pushes a single channel's update for pos, used internally
// to re-enqueue a specific channel after a neighbor shift.
func (e *Engine) EnqueueKind(kind Kind, pos block.Position) {
	e.queue = append(e.queue, Update{Kind: kind, Pos: pos})
}

// QueueLen reports the number of pending updates, for diagnostics and
// tests.
func (e *Engine) QueueLen() int { return len(e.queue) }

var neighborDirs = [6]block.Position{
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: -1, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: -1, Y: 0, Z: 0},
	{X: 0, Y: 0, Z: 1},
	{X: 0, Y: 0, Z: -1},
}

func add(p, d block.Position) block.Position {
	return block.Position{X: p.X + d.X, Y: p.Y + d.Y, Z: p.Z + d.Z}
}

func up(p block.Position) block.Position { return block.Position{X: p.X, Y: p.Y + 1, Z: p.Z} }

func (e *Engine) light(kind Kind, pos block.Position) byte {
	if kind == Sky {
		return e.world.GetSkyLight(pos)
	}
	return e.world.GetBlockLight(pos)
}

func (e *Engine) setLight(kind Kind, pos block.Position, level byte) {
	if kind == Sky {
		e.world.SetSkyLight(pos, level)
		return
	}
	e.world.SetBlockLight(pos, level)
}

// Tick drains the queue, relaxing one update at a time, until it is
// empty or elapsedNs() has consumed budgetNs — checked every 4096
// updates, per spec §4.E ("measured after every 4096 updates") and the
// original's `updates_performed & 0xFFF == 0` batching.
func (e *Engine) Tick(budgetNs int64, elapsedNs func() int64) {
	performed := 0
	for len(e.queue) > 0 {
		u := e.queue[0]
		e.queue = e.queue[1:]
		performed++
		e.doUpdate(u)
		if performed&0xFFF == 0 && elapsedNs() >= budgetNs {
			break
		}
	}
}

func (e *Engine) doUpdate(u Update) {
	if !e.world.InBounds(u.Pos) {
		return
	}

	material := e.registry.Material(e.world.GetBlock(u.Pos))

	old := e.light(u.Kind, u.Pos)
	best := old
	for _, d := range neighborDirs {
		if l := e.light(u.Kind, add(u.Pos, d)); l > best {
			best = l
		}
	}

	absorbed := material.AbsorbedLight
	if absorbed < 1 {
		absorbed = 1
	}
	if best > absorbed {
		best -= absorbed
	} else {
		best = 0
	}

	if u.Kind == Block && material.EmittedLight != 0 {
		if material.EmittedLight > best {
			best = material.EmittedLight
		}
	}
	if u.Kind == Sky && material.AbsorbedLight == 0 && e.light(Sky, up(u.Pos)) == 15 {
		best = 15
	}

	if best == old {
		return
	}
	e.setLight(u.Kind, u.Pos, best)

	for dy := int32(-1); dy <= 1; dy++ {
		for dz := int32(-1); dz <= 1; dz++ {
			for dx := int32(-1); dx <= 1; dx++ {
				e.world.MarkSectionDirty(add(u.Pos, block.Position{X: dx * 16, Y: dy * 16, Z: dz * 16}))
			}
		}
	}

	for _, d := range neighborDirs {
		e.EnqueueKind(u.Kind, add(u.Pos, d))
	}
}
