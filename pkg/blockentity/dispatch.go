// Package blockentity implements spec component F: an action queue
// that keeps ECS-backed block entities (signs, etc.) in sync with the
// chunk store's block changes.
//
// Grounded on original_source/src/world/mod.rs's BlockEntityAction enum
// and its drain loop in World::tick: Create replaces any existing
// entity at a position, Remove releases it, and UpdateSignText pushes
// new line text into the ECS's sign component.
package blockentity

import (
	"github.com/voxelkiln/mccore/pkg/block"
	"github.com/voxelkiln/mccore/pkg/collab"
)

// Action is one queued block-entity lifecycle event, per spec §4.F.
type Action struct {
	Kind ActionKind
	Pos  block.Position

	// CreateBlock is set for Kind == Create: the block whose kind
	// determines what entity to spawn.
	CreateBlock block.Block

	// Sign fields are set for Kind == UpdateSignText.
	Line1, Line2, Line3, Line4 string
}

type ActionKind int

const (
	Create ActionKind = iota
	Remove
	UpdateSignText
)

// Dispatcher drains queued Actions against an ECS, tracking which
// entity handle backs each position. It implements world.BlockEntityQueue.
type Dispatcher struct {
	ecs      collab.ECS
	registry *block.Registry
	entities map[block.Position]collab.EntityHandle
	queue    []Action
}

// NewDispatcher builds a Dispatcher over ecs, using registry to decide
// which blocks carry an entity (spec §4.A's per-kind metadata).
func NewDispatcher(ecs collab.ECS, registry *block.Registry) *Dispatcher {
	return &Dispatcher{
		ecs:      ecs,
		registry: registry,
		entities: make(map[block.Position]collab.EntityHandle),
	}
}

// EnqueueCreate implements world.BlockEntityQueue.
func (d *Dispatcher) EnqueueCreate(pos block.Position, b block.Block) {
	d.queue = append(d.queue, Action{Kind: Create, Pos: pos, CreateBlock: b})
}

// EnqueueRemove implements world.BlockEntityQueue.
func (d *Dispatcher) EnqueueRemove(pos block.Position) {
	d.queue = append(d.queue, Action{Kind: Remove, Pos: pos})
}

// EnqueueUpdateSignText queues a sign-text update for pos, per spec
// §4.F's UpdateSignText(pos, l1, l2, l3, l4).
func (d *Dispatcher) EnqueueUpdateSignText(pos block.Position, l1, l2, l3, l4 string) {
	d.queue = append(d.queue, Action{Kind: UpdateSignText, Pos: pos, Line1: l1, Line2: l2, Line3: l3, Line4: l4})
}

// QueueLen reports the number of pending actions, for diagnostics and
// tests.
func (d *Dispatcher) QueueLen() int { return len(d.queue) }

// EntityKind names the ECS entity type to spawn for a block, or ""
// if the block carries no entity. A real catalog would flag this per
// KindDef; DefaultCatalog has no such kind, so this always returns ""
// against it (documented in DESIGN.md, mirroring world.hasBlockEntity).
func EntityKind(b block.Block) string {
	return ""
}

// Drain processes every queued action against the ECS, in FIFO order,
// per spec §4.F "Drained each world tick".
func (d *Dispatcher) Drain() {
	for len(d.queue) > 0 {
		a := d.queue[0]
		d.queue = d.queue[1:]
		d.apply(a)
	}
}

func (d *Dispatcher) apply(a Action) {
	switch a.Kind {
	case Remove:
		if h, ok := d.entities[a.Pos]; ok {
			d.ecs.Despawn(h)
			delete(d.entities, a.Pos)
		}
	case Create:
		if h, ok := d.entities[a.Pos]; ok {
			d.ecs.Despawn(h)
			delete(d.entities, a.Pos)
		}
		kind := EntityKind(a.CreateBlock)
		if kind == "" {
			return
		}
		d.entities[a.Pos] = d.ecs.SpawnBlockEntity(kind, a.Pos)
	case UpdateSignText:
		h, ok := d.entities[a.Pos]
		if !ok {
			return
		}
		sign, ok := d.ecs.SignComponent(h)
		if !ok {
			return
		}
		sign.Lines = [4]string{a.Line1, a.Line2, a.Line3, a.Line4}
		sign.Dirty = true
	}
}
