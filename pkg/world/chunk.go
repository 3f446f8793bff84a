// Package world implements the Chunk Store (component C): the
// CPos->Chunk map, section dirty/render tracking, and the
// get_block/set_block/capture_snapshot operations the lighting
// engine, visibility enumerator, and mesh builder all read from.
//
// Grounded on the teacher's pkg/world/world.go and chunk.go for the
// RWMutex + double-checked-locking realization pattern (here without
// the teacher's terrain generator, which has no home under this
// spec's Non-goals) and on original_source/src/world/mod.rs for
// Section/Chunk shape, dirty propagation, and capture_snapshot.
package world

import (
	"github.com/voxelkiln/mccore/pkg/bitstore"
	"github.com/voxelkiln/mccore/pkg/block"
)

// BlocksPerSection is the entry count of one 16x16x16 section.
const BlocksPerSection = 16 * 16 * 16

// ChunkPos is a chunk-column coordinate.
type ChunkPos struct {
	X, Z int32
}

// sectionIndex converts a world Y coordinate to its section index,
// which may be negative in a negative-Y world (protocol 757+).
func sectionIndex(y int32) int32 {
	if y < 0 {
		return (y+1)/16 - 1
	}
	return y / 16
}

// Section is a 16x16x16 cube of block storage, lighting nibbles, and
// the bookkeeping the visibility enumerator and mesh builder need.
type Section struct {
	Blocks     *bitstore.BlockStorage
	BlockLight *bitstore.NibbleArray
	SkyLight   *bitstore.NibbleArray

	// CullInfo is a direction-pair bitset of intra-section visibility,
	// set through Store.SetSectionCullInfo and read by the visibility
	// enumerator (component G).
	CullInfo uint64

	Dirty    bool
	Building bool
}

// NewSection allocates a section filled with fill (normally air's
// internal ID), block light 0, and sky light per skyLightFill (15 for
// sections above any previously decoded section in the column, 0
// otherwise, per spec §4.C's section-creation policy).
func NewSection(fill int32, skyLightFill byte) *Section {
	s := &Section{
		Blocks:     bitstore.NewBlockStorage(BlocksPerSection, fill),
		BlockLight: bitstore.NewNibbleArray(BlocksPerSection),
		SkyLight:   bitstore.NewNibbleArray(BlocksPerSection),
	}
	if skyLightFill != 0 {
		s.SkyLight.Fill(skyLightFill)
	}
	return s
}

func localIndex(lx, ly, lz int32) int {
	return int((ly*16+lz)*16 + lx)
}

// Chunk is a column at ChunkPos: sparse sections, biomes, heightmap,
// and block-entity positions.
type Chunk struct {
	Pos ChunkPos

	Sections           map[int32]*Section
	SectionsRenderedOn map[int32]uint64

	Biomes    [256]byte
	Heightmap [256]uint8
	HeightmapDirty bool

	// BlockEntities holds opaque per-position payloads; pkg/blockentity
	// owns interpreting and dispatching them, this is just the spatial
	// index spec §3 calls out on Chunk.
	BlockEntities map[block.Position]any
}

func newChunk(pos ChunkPos) *Chunk {
	return &Chunk{
		Pos:                pos,
		Sections:           make(map[int32]*Section),
		SectionsRenderedOn: make(map[int32]uint64),
		BlockEntities:      make(map[block.Position]any),
		HeightmapDirty:     true,
	}
}

// HighestDecodedSection returns the greatest section index this chunk
// has ever held a Section for, or false if none.
func (c *Chunk) HighestDecodedSection() (int32, bool) {
	has := false
	var max int32
	for idx := range c.Sections {
		if !has || idx > max {
			max = idx
			has = true
		}
	}
	return max, has
}
