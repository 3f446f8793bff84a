package chunkio

import (
	"encoding/binary"

	"github.com/voxelkiln/mccore/pkg/bitstore"
	"github.com/voxelkiln/mccore/pkg/block"
	"github.com/voxelkiln/mccore/pkg/mcerr"
	"github.com/voxelkiln/mccore/pkg/world"
)

// byteCursor is a minimal position-tracking view over an already fully
// received, possibly decompressed chunk blob. Pre-1.13 formats are
// fixed-size and component-grouped (every section's block array, then
// every section's light array, ...), so a plain offset cursor over the
// whole blob is simpler than threading io.Reader through each array.
type byteCursor struct {
	data []byte
	pos  int
}

func (c *byteCursor) take(n int) ([]byte, error) {
	if c.pos+n > len(c.data) {
		return nil, mcerr.Newf(mcerr.ChunkShape, "chunk blob truncated: need %d bytes at offset %d, have %d", n, c.pos, len(c.data))
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// decodeLegacySeparateArrays implements spec §4.D's pre-1.8 (protocol
// <= 5) layout: a byte/block type array, 4-bit metadata, 4-bit block
// light, optional 4-bit sky light, and an optional 4-bit "add" high
// nibble guarded by a secondary mask — each grouped across every
// section in mask before the next component starts.
func decodeLegacySeparateArrays(data []byte, meta ColumnMeta, protocolVersion int32, registry *block.Registry, moddedIDs map[int32]string) (*DecodedColumn, error) {
	indices := maskIndices(meta.PrimaryMask)
	cur := &byteCursor{data: data}

	types := make(map[int32][]byte, len(indices))
	for _, idx := range indices {
		b, err := cur.take(world.BlocksPerSection)
		if err != nil {
			return nil, err
		}
		types[idx] = b
	}

	metaNibbles := make(map[int32]*bitstore.NibbleArray, len(indices))
	for _, idx := range indices {
		b, err := cur.take(world.BlocksPerSection / 2)
		if err != nil {
			return nil, err
		}
		metaNibbles[idx] = bitstore.NibbleArrayFrom(append([]byte(nil), b...), world.BlocksPerSection)
	}

	blockLight := make(map[int32]*bitstore.NibbleArray, len(indices))
	for _, idx := range indices {
		b, err := cur.take(world.BlocksPerSection / 2)
		if err != nil {
			return nil, err
		}
		blockLight[idx] = bitstore.NibbleArrayFrom(append([]byte(nil), b...), world.BlocksPerSection)
	}

	skyLight := make(map[int32]*bitstore.NibbleArray, len(indices))
	if meta.SkyLightPresent {
		for _, idx := range indices {
			b, err := cur.take(world.BlocksPerSection / 2)
			if err != nil {
				return nil, err
			}
			skyLight[idx] = bitstore.NibbleArrayFrom(append([]byte(nil), b...), world.BlocksPerSection)
		}
	}

	addNibbles := make(map[int32]*bitstore.NibbleArray, len(indices))
	if meta.AddMask != 0 {
		for _, idx := range indices {
			if meta.AddMask&(1<<uint(idx)) == 0 {
				continue
			}
			b, err := cur.take(world.BlocksPerSection / 2)
			if err != nil {
				return nil, err
			}
			addNibbles[idx] = bitstore.NibbleArrayFrom(append([]byte(nil), b...), world.BlocksPerSection)
		}
	}

	out := &DecodedColumn{Pos: meta.Pos, Sections: make(map[int32]*world.Section, len(indices))}
	for _, idx := range indices {
		sec := world.NewSection(registry.InternalID(registry.AirBlock()), 0)
		for i := 0; i < world.BlocksPerSection; i++ {
			typ := int32(types[idx][i])
			if add, ok := addNibbles[idx]; ok {
				typ |= int32(add.Get(i)) << 8
			}
			m := int32(metaNibbles[idx].Get(i))
			id := (typ << 4) | m
			b := registry.ByVanillaID(id, protocolVersion, moddedIDs)
			sec.Blocks.Set(i, registry.InternalID(b))
		}
		sec.BlockLight = blockLight[idx]
		if sl, ok := skyLight[idx]; ok {
			sec.SkyLight = sl
		}
		out.Sections[idx] = sec
	}

	if meta.GroundUpContinuous {
		biomes, err := cur.take(256)
		if err != nil {
			return nil, err
		}
		copy(out.Biomes[:], biomes)
	}

	if err := verifyExhausted(cur); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeLegacyDenseU16 implements spec §4.D's 1.8 (protocol < 404,
// non-flat, non-paletted) layout: per-section a little-endian u16[4096]
// of combined (id<<4|meta) state values, then block light, then sky
// light, grouped across sections the same way as the pre-1.8 format.
func decodeLegacyDenseU16(data []byte, meta ColumnMeta, protocolVersion int32, registry *block.Registry, moddedIDs map[int32]string) (*DecodedColumn, error) {
	indices := maskIndices(meta.PrimaryMask)
	cur := &byteCursor{data: data}

	states := make(map[int32][]uint16, len(indices))
	for _, idx := range indices {
		raw, err := cur.take(world.BlocksPerSection * 2)
		if err != nil {
			return nil, err
		}
		vals := make([]uint16, world.BlocksPerSection)
		for i := range vals {
			vals[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}
		states[idx] = vals
	}

	blockLight := make(map[int32]*bitstore.NibbleArray, len(indices))
	for _, idx := range indices {
		b, err := cur.take(world.BlocksPerSection / 2)
		if err != nil {
			return nil, err
		}
		blockLight[idx] = bitstore.NibbleArrayFrom(append([]byte(nil), b...), world.BlocksPerSection)
	}

	skyLight := make(map[int32]*bitstore.NibbleArray, len(indices))
	if meta.SkyLightPresent {
		for _, idx := range indices {
			b, err := cur.take(world.BlocksPerSection / 2)
			if err != nil {
				return nil, err
			}
			skyLight[idx] = bitstore.NibbleArrayFrom(append([]byte(nil), b...), world.BlocksPerSection)
		}
	}

	out := &DecodedColumn{Pos: meta.Pos, Sections: make(map[int32]*world.Section, len(indices))}
	for _, idx := range indices {
		sec := world.NewSection(registry.InternalID(registry.AirBlock()), 0)
		for i, id := range states[idx] {
			b := registry.ByVanillaID(int32(id), protocolVersion, moddedIDs)
			sec.Blocks.Set(i, registry.InternalID(b))
		}
		sec.BlockLight = blockLight[idx]
		if sl, ok := skyLight[idx]; ok {
			sec.SkyLight = sl
		}
		out.Sections[idx] = sec
	}

	if meta.GroundUpContinuous {
		biomes, err := cur.take(256)
		if err != nil {
			return nil, err
		}
		copy(out.Biomes[:], biomes)
	}

	if err := verifyExhausted(cur); err != nil {
		return nil, err
	}
	return out, nil
}

// verifyExhausted enforces spec §4.D's "residual bytes must be all
// zero; otherwise the parse fails".
func verifyExhausted(cur *byteCursor) error {
	for i, b := range cur.data[cur.pos:] {
		if b != 0 {
			return mcerr.Newf(mcerr.ChunkShape, "non-zero residual byte at offset %d", cur.pos+i)
		}
	}
	return nil
}
