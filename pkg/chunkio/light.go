package chunkio

import (
	"bytes"
	"io"

	"github.com/voxelkiln/mccore/pkg/bitstore"
	"github.com/voxelkiln/mccore/pkg/mcerr"
	"github.com/voxelkiln/mccore/pkg/protocol"
	"github.com/voxelkiln/mccore/pkg/world"
)

// LightUpdate is the decoded "update light" message body: the set of
// sections whose block/sky light this update carries or clears, per
// spec §4.D "Light packets". Section indices are absolute (already
// offset by the dimension's minimum section), matching world.Section
// indexing.
type LightUpdate struct {
	ChunkPos world.ChunkPos

	BlockLight map[int32]*bitstore.NibbleArray // present sections
	SkyLight   map[int32]*bitstore.NibbleArray

	ClearedBlockLight []int32 // sections reset to "no light data"
	ClearedSkyLight   []int32
}

// maskBits decodes a light-update section mask into absolute section
// indices. Protocol < 755 (pre-1.17) ships two fixed 18-bit masks
// biased by +1 (an extra bit below/above the classic 0..15 section
// range for the always-adjacent sections above/below a chunk); 1.17+
// ships one 64-bit mask aligned directly to minSection.
func maskBits(mask int64, minSection int32, legacyBias bool) []int32 {
	var out []int32
	for i := 0; i < 64; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		idx := int32(i)
		if legacyBias {
			idx += minSection - 1
		} else {
			idx += minSection
		}
		out = append(out, idx)
	}
	return out
}

// DecodeLightUpdate parses one "update light" packet body, per spec
// §4.D: a mask of sections carrying light data, a mask of sections
// whose light is cleared, then length-prefixed 2048-byte nibble
// payloads for sky light followed by block light, consumed in mask bit
// order.
func DecodeLightUpdate(data []byte, pos world.ChunkPos, protocolVersion int32, minSection int32) (*LightUpdate, error) {
	r := bytes.NewReader(data)
	legacy := protocolVersion < 755 // 1.17 (protocol 755) switched to VarLong masks

	if protocolVersion >= 107 {
		if _, err := protocol.ReadBool(r); err != nil { // trust edges
			return nil, mcerr.Newf(mcerr.WireFormat, "read trust-edges flag: %v", err)
		}
	}

	skyMask, err := readMask(r, legacy)
	if err != nil {
		return nil, err
	}
	blockMask, err := readMask(r, legacy)
	if err != nil {
		return nil, err
	}
	emptySkyMask, err := readMask(r, legacy)
	if err != nil {
		return nil, err
	}
	emptyBlockMask, err := readMask(r, legacy)
	if err != nil {
		return nil, err
	}

	out := &LightUpdate{
		ChunkPos:          pos,
		SkyLight:          make(map[int32]*bitstore.NibbleArray),
		BlockLight:        make(map[int32]*bitstore.NibbleArray),
		ClearedSkyLight:   maskBits(emptySkyMask, minSection, legacy),
		ClearedBlockLight: maskBits(emptyBlockMask, minSection, legacy),
	}

	for _, idx := range maskBits(skyMask, minSection, legacy) {
		arr, err := readLightPayload(r)
		if err != nil {
			return nil, err
		}
		out.SkyLight[idx] = arr
	}
	for _, idx := range maskBits(blockMask, minSection, legacy) {
		arr, err := readLightPayload(r)
		if err != nil {
			return nil, err
		}
		out.BlockLight[idx] = arr
	}

	return out, nil
}

func readMask(r io.Reader, legacy bool) (int64, error) {
	if legacy {
		v, err := protocol.ReadInt32(r)
		return int64(v), err
	}
	v, _, err := protocol.ReadVarLong(r)
	return v, err
}

func readLightPayload(r io.Reader) (*bitstore.NibbleArray, error) {
	length, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return nil, mcerr.Newf(mcerr.WireFormat, "read light payload length: %v", err)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, mcerr.Newf(mcerr.WireFormat, "read light payload: %v", err)
	}
	return bitstore.NibbleArrayFrom(buf, world.BlocksPerSection), nil
}

// Apply writes the decoded light data into store.
func (lu *LightUpdate) Apply(store *world.Store) {
	for idx, arr := range lu.BlockLight {
		store.SetSectionLight(lu.ChunkPos, idx, arr, nil)
	}
	for idx, arr := range lu.SkyLight {
		store.SetSectionLight(lu.ChunkPos, idx, nil, arr)
	}
	for _, idx := range lu.ClearedBlockLight {
		store.SetSectionLight(lu.ChunkPos, idx, bitstore.NewNibbleArray(world.BlocksPerSection), nil)
	}
	for _, idx := range lu.ClearedSkyLight {
		store.SetSectionLight(lu.ChunkPos, idx, nil, bitstore.NewNibbleArray(world.BlocksPerSection))
	}
}
