// Package collab declares the external collaborator interfaces spec
// §6 lists as "consumed from collaborators": a mesh renderer, an ECS
// for block-entity components, and a monotonic clock. None of them
// are implemented in this repo by design — the core world/protocol
// layer only needs to call through these handles.
package collab

import "github.com/voxelkiln/mccore/pkg/block"

// MeshHandle opaquely identifies a built section mesh, owned by the
// Renderer and only ever passed back through the core.
type MeshHandle uint64

// SectionSnapshot is the immutable per-section data a Renderer needs
// to build a mesh: the block storage plus both light channels, laid
// out for the renderer to read without holding the store's lock.
type SectionSnapshot struct {
	Blocks     []block.Block
	BlockLight []byte
	SkyLight   []byte
}

// Renderer is the mesh-building/drawing collaborator of spec §6.
type Renderer interface {
	CreateMesh(snapshot SectionSnapshot) MeshHandle
	DropMesh(handle MeshHandle)
	Draw(list []DrawItem, camera Camera)
}

// DrawItem pairs a section coordinate with its built mesh, the unit
// Renderer.Draw's list is made of.
type DrawItem struct {
	X, Y, Z int32
	Mesh    MeshHandle
}

// Camera is the pose Visibility enumeration and drawing both need:
// position, orientation, and perspective.
type Camera struct {
	X, Y, Z       float64
	Yaw, Pitch    float64
	FOVDegrees    float64
	AspectRatio   float64
	NearZ, FarZ   float64
}

// EntityHandle opaquely identifies an ECS entity backing a block
// entity (e.g. a sign), owned by the ECS and only passed back through
// block-entity dispatch.
type EntityHandle uint64

// SignComponent is the one block-entity payload this core actually
// updates through the ECS (spec §4.F "UpdateSignText").
type SignComponent struct {
	Lines [4]string
	Dirty bool
}

// ECS is the entity/component store collaborator of spec §6.
type ECS interface {
	SpawnBlockEntity(kind string, pos block.Position) EntityHandle
	Despawn(handle EntityHandle)
	SignComponent(handle EntityHandle) (*SignComponent, bool)
}

// Clock is the monotonic time source spec §6 names ("Clock::now() →
// instant"); pkg/light's Tick takes an elapsed-nanoseconds reader
// directly rather than this interface, since it only ever needs a
// duration relative to tick start, not an absolute instant.
type Clock interface {
	Now() int64 // nanoseconds, monotonic, unit-less epoch
}
