package chunkio

import (
	"io"

	"github.com/voxelkiln/mccore/pkg/bitstore"
	"github.com/voxelkiln/mccore/pkg/mcerr"
	"github.com/voxelkiln/mccore/pkg/protocol"
)

// paletteBitRange names the indirect/direct bit boundaries for one kind
// of paletted container. Block and biome palettes share the same
// decode shape but different ranges (spec §4.D "biome bit ranges
// differ"); values match the real protocol constants also used by
// other_examples/go-mclib-client's parsePalettedContainer(4,8,15) for
// blocks and (1,3,6) for biomes.
type paletteBitRange struct {
	indirectMin int
	indirectMax int
	directBits  int
}

var blockBitRange = paletteBitRange{indirectMin: 4, indirectMax: 8, directBits: 15}
var biomeBitRange = paletteBitRange{indirectMin: 1, indirectMax: 3, directBits: 6}

// decodedPalette holds the raw state/biome IDs for one container,
// expanded out of its palette indirection so callers need not keep the
// palette table around.
type decodedPalette struct {
	ids []int32
}

// decodePalettedContainer implements spec §4.D steps 1-5 for one
// block-state or biome container: read bpe, dispatch to single-value,
// indirect, or direct decode, then expand the packed entries to raw
// IDs. zeroMeansSingleValue selects the 1.18+ meaning of bpe=0 (a lone
// VarInt value, no bit array); pre-1.18 bpe=0 instead means "indirect
// at the range's minimum bits" (spec: "bpe = 0 pre-1.18 means... four
// bits per entry").
func decodePalettedContainer(r io.Reader, count int, rng paletteBitRange, padded bool, zeroMeansSingleValue bool) (*decodedPalette, error) {
	bpeByte, err := protocol.ReadByte(r)
	if err != nil {
		return nil, mcerr.Newf(mcerr.WireFormat, "read palette bpe: %v", err)
	}
	bpe := int(bpeByte)

	if bpe == 0 {
		if zeroMeansSingleValue {
			value, _, err := protocol.ReadVarInt(r)
			if err != nil {
				return nil, mcerr.Newf(mcerr.WireFormat, "read single-value palette entry: %v", err)
			}
			dataLen, _, err := protocol.ReadVarInt(r)
			if err != nil {
				return nil, mcerr.Newf(mcerr.WireFormat, "read single-value palette data length: %v", err)
			}
			for i := int32(0); i < dataLen; i++ {
				if _, _, err := protocol.ReadVarLong(r); err != nil {
					return nil, mcerr.Newf(mcerr.WireFormat, "skip single-value palette data: %v", err)
				}
			}
			ids := make([]int32, count)
			for i := range ids {
				ids[i] = value
			}
			return &decodedPalette{ids: ids}, nil
		}
		bpe = rng.indirectMin
	}

	switch {
	case bpe <= rng.indirectMax:
		return decodeIndirectPalette(r, count, bpe, padded)
	default:
		return decodeDirectPalette(r, count, rng.directBits, padded)
	}
}

func decodeIndirectPalette(r io.Reader, count, bpe int, padded bool) (*decodedPalette, error) {
	if bpe < 1 {
		bpe = 1
	}
	paletteLen, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return nil, mcerr.Newf(mcerr.WireFormat, "read palette length: %v", err)
	}
	palette := make([]int32, paletteLen)
	for i := range palette {
		v, _, err := protocol.ReadVarInt(r)
		if err != nil {
			return nil, mcerr.Newf(mcerr.WireFormat, "read palette entry %d: %v", i, err)
		}
		palette[i] = v
	}

	words, err := readPackedLongs(r)
	if err != nil {
		return nil, err
	}
	layout := bitstore.Unpadded
	if padded {
		layout = bitstore.Padded
	}
	bm := bitstore.BitMapFrom(words, bpe, count, layout)

	ids := make([]int32, count)
	for i := range ids {
		idx := bm.Get(i)
		if idx < 0 || idx >= len(palette) {
			return nil, mcerr.Newf(mcerr.ChunkShape, "palette index %d out of range (palette size %d)", idx, len(palette))
		}
		ids[i] = palette[idx]
	}
	return &decodedPalette{ids: ids}, nil
}

func decodeDirectPalette(r io.Reader, count, directBits int, padded bool) (*decodedPalette, error) {
	words, err := readPackedLongs(r)
	if err != nil {
		return nil, err
	}
	layout := bitstore.Unpadded
	if padded {
		layout = bitstore.Padded
	}
	bm := bitstore.BitMapFrom(words, directBits, count, layout)

	ids := make([]int32, count)
	for i := range ids {
		ids[i] = int32(bm.Get(i))
	}
	return &decodedPalette{ids: ids}, nil
}

func readPackedLongs(r io.Reader) ([]uint64, error) {
	n, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return nil, mcerr.Newf(mcerr.WireFormat, "read packed-longs length: %v", err)
	}
	words := make([]uint64, n)
	for i := range words {
		v, err := protocol.ReadInt64(r)
		if err != nil {
			return nil, mcerr.Newf(mcerr.WireFormat, "read packed long %d: %v", i, err)
		}
		words[i] = uint64(v)
	}
	return words, nil
}
