package world

import "github.com/voxelkiln/mccore/pkg/block"

// LightQueue receives positions whose light needs recomputation.
// pkg/light.Engine implements this; Store holds it as an injected
// collaborator rather than importing pkg/light directly, avoiding an
// import cycle (light needs to read Store through the LightWorld
// interface it declares, structurally satisfied by *Store).
type LightQueue interface {
	Enqueue(pos block.Position)
}

// BlockEntityQueue receives block-entity lifecycle events as blocks
// change; pkg/blockentity.Dispatcher implements this.
type BlockEntityQueue interface {
	EnqueueCreate(pos block.Position, b block.Block)
	EnqueueRemove(pos block.Position)
}

// hasBlockEntity reports whether kind name conventionally carries a
// block-entity payload. A real catalog would flag this per KindDef;
// this representative catalog has none, so Store's create/remove
// enqueueing is exercised via the BlockEntityQueue interface but never
// fires from the current DefaultCatalog (documented in DESIGN.md).
func hasBlockEntity(b block.Block) bool { return false }
