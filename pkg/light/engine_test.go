package light

import (
	"testing"

	"github.com/voxelkiln/mccore/pkg/block"
	"github.com/voxelkiln/mccore/pkg/world"
)

// lampKindIdx is moddedLampKind's position, the last entry in
// block.DefaultCatalog(). opaqueWallKindIdx is the custom kind
// appended right after it in testCatalog.
var (
	lampKindIdx      = block.KindID(len(block.DefaultCatalog()) - 1)
	opaqueWallKindIdx = block.KindID(len(block.DefaultCatalog()))
)

func testCatalog() []block.KindDef {
	catalog := append([]block.KindDef{}, block.DefaultCatalog()...)
	catalog = append(catalog,
		block.KindDef{
			Name: "opaque_wall",
			Material: func(idx []int) block.Material {
				return block.Material{AbsorbedLight: 15}
			},
		},
	)
	return catalog
}

func newTestStore(t *testing.T) (*world.Store, *block.Registry) {
	t.Helper()
	reg := block.NewRegistry(testCatalog())
	store := world.NewStore(reg)
	store.Configure(0, 256)
	store.LoadChunk(world.ChunkPos{X: 0, Z: 0})
	return store, reg
}

func opaqueWallBlock(reg *block.Registry) block.Block {
	return block.Block{Kind: opaqueWallKindIdx}
}

func zeroElapsed() int64 { return 0 }

func TestEngineEnqueuePushesBothChannels(t *testing.T) {
	store, reg := newTestStore(t)
	e := NewEngine(store, reg)
	e.Enqueue(block.Position{X: 0, Y: 10, Z: 0})
	if got := e.QueueLen(); got != 2 {
		t.Fatalf("QueueLen() = %d, want 2", got)
	}
}

func TestEnginePropagatesFromLitNeighbor(t *testing.T) {
	store, reg := newTestStore(t)
	e := NewEngine(store, reg)

	src := block.Position{X: 0, Y: 10, Z: 0}
	dst := block.Position{X: 1, Y: 10, Z: 0}
	store.SetBlock(src, lampBlock(t, reg, true))

	e.EnqueueKind(Block, src)
	e.Tick(1<<62, zeroElapsed)

	if got := store.GetBlockLight(dst); got != 14 {
		t.Errorf("GetBlockLight(dst) = %d, want 14 (15 emitted - floor absorption of 1)", got)
	}
}

func TestEngineEmissionOverridesPassedThroughLight(t *testing.T) {
	store, reg := newTestStore(t)
	e := NewEngine(store, reg)

	lamp := lampBlock(t, reg, true)
	pos := block.Position{X: 5, Y: 10, Z: 5}
	store.SetBlock(pos, lamp)

	e.EnqueueKind(Block, pos)
	e.Tick(1<<62, zeroElapsed)

	if got := store.GetBlockLight(pos); got != 15 {
		t.Errorf("GetBlockLight(lamp) = %d, want 15 (emitted overrides)", got)
	}
}

func TestEngineSkyLightFullBrightnessFromAbove(t *testing.T) {
	store, reg := newTestStore(t)
	e := NewEngine(store, reg)

	above := block.Position{X: 0, Y: 11, Z: 0}
	pos := block.Position{X: 0, Y: 10, Z: 0}
	store.SetSkyLight(above, 15)
	store.SetSkyLight(pos, 0)

	e.EnqueueKind(Sky, pos)
	e.Tick(1<<62, zeroElapsed)

	if got := store.GetSkyLight(pos); got != 15 {
		t.Errorf("GetSkyLight(pos) = %d, want 15 (full brightness passes straight down)", got)
	}
}

func TestEngineAbsorptionThroughOpaqueBlock(t *testing.T) {
	store, reg := newTestStore(t)
	e := NewEngine(store, reg)

	wall := opaqueWallBlock(reg)
	pos := block.Position{X: 0, Y: 10, Z: 0}
	neighbor := block.Position{X: 1, Y: 10, Z: 0}
	store.SetBlock(pos, wall)
	store.SetBlockLight(pos, 5) // stale value, should be recomputed down to 0
	store.SetBlockLight(neighbor, 10)

	e.EnqueueKind(Block, pos)
	e.Tick(1<<62, zeroElapsed)

	if got := store.GetBlockLight(pos); got != 0 {
		t.Errorf("GetBlockLight(wall) = %d, want 0 (10 - absorption of 15, floored at 0)", got)
	}
}

func TestEngineSkipsOutOfBoundsAndUnloadedPositions(t *testing.T) {
	store, reg := newTestStore(t)
	e := NewEngine(store, reg)

	e.EnqueueKind(Block, block.Position{X: 0, Y: -1, Z: 0})    // below configured range
	e.EnqueueKind(Block, block.Position{X: 100, Y: 10, Z: 100}) // unloaded chunk
	e.Tick(1<<62, zeroElapsed)

	if store.GetBlockLight(block.Position{X: 100, Y: 10, Z: 100}) != 0 {
		t.Errorf("unloaded position should be left untouched")
	}
}

func TestEngineTickStopsAtBudget(t *testing.T) {
	store, reg := newTestStore(t)
	e := NewEngine(store, reg)

	for i := int32(0); i < 5000; i++ {
		e.EnqueueKind(Block, block.Position{X: i, Y: 10, Z: 0})
	}
	before := e.QueueLen()

	calls := 0
	elapsed := func() int64 {
		calls++
		return 1 << 62 // budget always exhausted once checked
	}
	e.Tick(1, elapsed)

	if e.QueueLen() >= before {
		t.Errorf("Tick did not drain any updates")
	}
	if calls == 0 {
		t.Errorf("budget probe never invoked")
	}
}

func lampBlock(t *testing.T, reg *block.Registry, lit bool) block.Block {
	t.Helper()
	b := block.Block{Kind: lampKindIdx}
	if lit {
		b.Attrs[0] = 1
	}
	return b
}
