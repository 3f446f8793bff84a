package blockentity

import (
	"testing"

	"github.com/voxelkiln/mccore/pkg/block"
	"github.com/voxelkiln/mccore/pkg/collab"
)

type fakeECS struct {
	next     collab.EntityHandle
	spawned  map[collab.EntityHandle]string
	signs    map[collab.EntityHandle]*collab.SignComponent
	despawns []collab.EntityHandle
}

func newFakeECS() *fakeECS {
	return &fakeECS{
		spawned: make(map[collab.EntityHandle]string),
		signs:   make(map[collab.EntityHandle]*collab.SignComponent),
	}
}

func (f *fakeECS) SpawnBlockEntity(kind string, pos block.Position) collab.EntityHandle {
	f.next++
	h := f.next
	f.spawned[h] = kind
	f.signs[h] = &collab.SignComponent{}
	return h
}

func (f *fakeECS) Despawn(h collab.EntityHandle) {
	f.despawns = append(f.despawns, h)
	delete(f.spawned, h)
	delete(f.signs, h)
}

func (f *fakeECS) SignComponent(h collab.EntityHandle) (*collab.SignComponent, bool) {
	s, ok := f.signs[h]
	return s, ok
}

func TestDispatcherCreateSpawnsOnlyForEntityBlocks(t *testing.T) {
	ecs := newFakeECS()
	d := NewDispatcher(ecs, nil)
	pos := block.Position{X: 1, Y: 2, Z: 3}

	d.EnqueueCreate(pos, block.Block{})
	d.Drain()

	if len(ecs.spawned) != 0 {
		t.Errorf("spawned = %v, want none (EntityKind returns \"\" for this catalog)", ecs.spawned)
	}
}

func TestDispatcherRemoveDespawnsTrackedEntity(t *testing.T) {
	ecs := newFakeECS()
	d := NewDispatcher(ecs, nil)
	pos := block.Position{X: 1, Y: 2, Z: 3}

	h := ecs.SpawnBlockEntity("sign", pos)
	d.entities[pos] = h

	d.EnqueueRemove(pos)
	d.Drain()

	if len(ecs.despawns) != 1 || ecs.despawns[0] != h {
		t.Errorf("despawns = %v, want [%d]", ecs.despawns, h)
	}
	if _, ok := d.entities[pos]; ok {
		t.Errorf("entities still tracks %v after remove", pos)
	}
}

func TestDispatcherUpdateSignTextWritesThroughComponent(t *testing.T) {
	ecs := newFakeECS()
	d := NewDispatcher(ecs, nil)
	pos := block.Position{X: 1, Y: 2, Z: 3}

	h := ecs.SpawnBlockEntity("sign", pos)
	d.entities[pos] = h

	d.EnqueueUpdateSignText(pos, "a", "b", "c", "d")
	d.Drain()

	sign, ok := ecs.SignComponent(h)
	if !ok {
		t.Fatalf("sign component missing")
	}
	if sign.Lines != [4]string{"a", "b", "c", "d"} {
		t.Errorf("Lines = %v, want [a b c d]", sign.Lines)
	}
	if !sign.Dirty {
		t.Errorf("Dirty = false, want true")
	}
}

func TestDispatcherUpdateSignTextIgnoresUntrackedPosition(t *testing.T) {
	ecs := newFakeECS()
	d := NewDispatcher(ecs, nil)

	d.EnqueueUpdateSignText(block.Position{X: 9, Y: 9, Z: 9}, "x", "", "", "")
	d.Drain() // must not panic despite no tracked entity

	if len(ecs.spawned) != 0 {
		t.Errorf("spawned = %v, want none", ecs.spawned)
	}
}

func TestDispatcherQueueLenAndDrainOrder(t *testing.T) {
	ecs := newFakeECS()
	d := NewDispatcher(ecs, nil)
	pos := block.Position{X: 0, Y: 0, Z: 0}

	d.EnqueueCreate(pos, block.Block{})
	d.EnqueueRemove(pos)
	if got := d.QueueLen(); got != 2 {
		t.Fatalf("QueueLen() = %d, want 2", got)
	}
	d.Drain()
	if got := d.QueueLen(); got != 0 {
		t.Errorf("QueueLen() after Drain = %d, want 0", got)
	}
}
