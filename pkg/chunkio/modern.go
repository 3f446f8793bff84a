package chunkio

import (
	"bytes"
	"io"

	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/voxelkiln/mccore/pkg/block"
	"github.com/voxelkiln/mccore/pkg/mcerr"
	"github.com/voxelkiln/mccore/pkg/protocol"
	"github.com/voxelkiln/mccore/pkg/world"
)

// DimensionCodec is the subset of the login-time dimension-type NBT
// record this core needs, per spec §4.D.1: the vertical extent a 1.18+
// world's sections span.
type DimensionCodec struct {
	MinY   int32
	Height int32
}

type dimensionNBT struct {
	MinY   int32 `nbt:"min_y"`
	Height int32 `nbt:"height"`
}

// DecodeDimensionCodec parses the big-endian NBT dimension-type record
// Java Edition sends at login into a DimensionCodec.
func DecodeDimensionCodec(r io.Reader) (*DimensionCodec, error) {
	dec := nbt.NewDecoderWithEncoding(r, nbt.BigEndian)
	var data dimensionNBT
	if err := dec.Decode(&data); err != nil {
		return nil, mcerr.Newf(mcerr.WireFormat, "decode dimension nbt: %v", err)
	}
	return &DimensionCodec{MinY: data.MinY, Height: data.Height}, nil
}

// decode118Column implements spec §4.D's 1.18+ (protocol >= 757)
// layout: a fixed run of (height>>4) sections (no bitmask — every
// section in a dimension's vertical range is always present), each a
// non-air count, a block-state palette, then a biome palette with its
// own (narrower) bit ranges.
func decode118Column(data []byte, meta ColumnMeta, protocolVersion int32, registry *block.Registry, moddedIDs map[int32]string, dim *DimensionCodec) (*DecodedColumn, error) {
	if dim == nil {
		return nil, mcerr.New(mcerr.ChunkShape, "decode118Column: dimension codec required for protocol >= 757")
	}
	r := bytes.NewReader(data)

	sectionCount := int(dim.Height >> 4)
	minSection := dim.MinY >> 4

	out := &DecodedColumn{Pos: meta.Pos, Sections: make(map[int32]*world.Section, sectionCount)}

	for s := 0; s < sectionCount; s++ {
		if _, err := protocol.ReadInt16(r); err != nil { // non-air count
			return nil, mcerr.Newf(mcerr.WireFormat, "read non-air count: %v", err)
		}

		blockPal, err := decodePalettedContainer(r, world.BlocksPerSection, blockBitRange, true, true)
		if err != nil {
			return nil, err
		}
		// Biome palette covers 4x4x4 per section (64 entries); decoded
		// but not retained per-section since pkg/world.Chunk models
		// biomes as one flat per-column array (see decodeTrailingBiomes
		// for the pre-1.18 shape this mirrors).
		if _, err := decodePalettedContainer(r, 64, biomeBitRange, true, true); err != nil {
			return nil, err
		}

		sec := world.NewSection(registry.InternalID(registry.AirBlock()), 0)
		for i, id := range blockPal.ids {
			b := registry.ByVanillaID(id, protocolVersion, moddedIDs)
			sec.Blocks.Set(i, registry.InternalID(b))
		}
		out.Sections[minSection+int32(s)] = sec
	}

	if err := verifyReaderExhausted(r); err != nil {
		return nil, err
	}
	return out, nil
}
