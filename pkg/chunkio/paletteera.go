package chunkio

import (
	"bytes"
	"io"

	"github.com/voxelkiln/mccore/pkg/bitstore"
	"github.com/voxelkiln/mccore/pkg/block"
	"github.com/voxelkiln/mccore/pkg/mcerr"
	"github.com/voxelkiln/mccore/pkg/protocol"
	"github.com/voxelkiln/mccore/pkg/world"
)

// decodePaletteEraColumn implements spec §4.D's 1.9-1.17 (protocol
// 107-756) "palette-with-varying-bpe" section format: for each section
// in mask, an optional non-air count, a block-state paletted container,
// and — before light moved to its own packet at protocol 451 — inline
// block/sky light nibble arrays.
func decodePaletteEraColumn(data []byte, meta ColumnMeta, protocolVersion int32, registry *block.Registry, moddedIDs map[int32]string) (*DecodedColumn, error) {
	r := bytes.NewReader(data)
	padded := protocolVersion >= PaddedLayoutProtocol
	hasNonAirCount := protocolVersion >= NonAirCountProtocol
	inlineLight := protocolVersion < SeparateLightProtocol

	indices := maskIndices(meta.PrimaryMask)
	out := &DecodedColumn{Pos: meta.Pos, Sections: make(map[int32]*world.Section, len(indices))}

	for _, idx := range indices {
		if hasNonAirCount {
			if _, err := protocol.ReadInt16(r); err != nil {
				return nil, mcerr.Newf(mcerr.WireFormat, "read non-air count: %v", err)
			}
		}

		pal, err := decodePalettedContainer(r, world.BlocksPerSection, blockBitRange, padded, false)
		if err != nil {
			return nil, err
		}

		sec := world.NewSection(registry.InternalID(registry.AirBlock()), 0)
		for i, id := range pal.ids {
			b := registry.ByVanillaID(id, protocolVersion, moddedIDs)
			sec.Blocks.Set(i, registry.InternalID(b))
		}

		if inlineLight {
			blockLight, err := readInlineNibbles(r, world.BlocksPerSection)
			if err != nil {
				return nil, err
			}
			sec.BlockLight = blockLight
			if meta.SkyLightPresent {
				skyLight, err := readInlineNibbles(r, world.BlocksPerSection)
				if err != nil {
					return nil, err
				}
				sec.SkyLight = skyLight
			}
		}

		out.Sections[idx] = sec
	}

	if meta.GroundUpContinuous {
		if err := decodeTrailingBiomes(r, protocolVersion, out); err != nil {
			return nil, err
		}
	}

	if err := verifyReaderExhausted(r); err != nil {
		return nil, err
	}
	return out, nil
}

func readInlineNibbles(r *bytes.Reader, count int) (*bitstore.NibbleArray, error) {
	buf := make([]byte, count/2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, mcerr.Newf(mcerr.WireFormat, "read nibble array: %v", err)
	}
	return bitstore.NibbleArrayFrom(buf, count), nil
}

// decodeTrailingBiomes implements spec §4.D's biome tail: pre-1.14, a
// 256-byte array (handled by the legacy decoders, not here); 1.14-1.17,
// 1024 big-endian i32 entries per new chunk, collapsed to a 256-byte
// representative sample since pkg/world.Chunk.Biomes is a flat byte
// array matching the pre-1.14 shape.
func decodeTrailingBiomes(r *bytes.Reader, protocolVersion int32, out *DecodedColumn) error {
	ids := make([]int32, 1024)
	for i := range ids {
		v, err := protocol.ReadInt32(r)
		if err != nil {
			return mcerr.Newf(mcerr.WireFormat, "read biome id %d: %v", i, err)
		}
		ids[i] = v
	}
	for i := 0; i < 256; i++ {
		out.Biomes[i] = byte(ids[i*4])
	}
	return nil
}

func verifyReaderExhausted(r *bytes.Reader) error {
	if r.Len() == 0 {
		return nil
	}
	rest := make([]byte, r.Len())
	_, _ = r.Read(rest)
	for _, b := range rest {
		if b != 0 {
			return mcerr.Newf(mcerr.ChunkShape, "non-zero residual byte after chunk decode")
		}
	}
	return nil
}
