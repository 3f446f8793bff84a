package chunkio

import (
	"bytes"
	"testing"

	"github.com/voxelkiln/mccore/pkg/bitstore"
	"github.com/voxelkiln/mccore/pkg/protocol"
)

// writeIndirectPalette builds the wire bytes for an indirect-palette
// container: bpe byte, VarInt palette length + entries, then packed longs.
func writeIndirectPalette(t *testing.T, buf *bytes.Buffer, bpe int, palette []int32, indices []int, padded bool) {
	t.Helper()
	if err := protocol.WriteByte(buf, byte(bpe)); err != nil {
		t.Fatalf("write bpe: %v", err)
	}
	if _, err := protocol.WriteVarInt(buf, int32(len(palette))); err != nil {
		t.Fatalf("write palette len: %v", err)
	}
	for _, v := range palette {
		if _, err := protocol.WriteVarInt(buf, v); err != nil {
			t.Fatalf("write palette entry: %v", err)
		}
	}
	layout := bitstore.Unpadded
	if padded {
		layout = bitstore.Padded
	}
	bm := bitstore.NewBitMap(bpe, len(indices), layout)
	for i, v := range indices {
		bm.Set(i, v)
	}
	words := bm.Words()
	if _, err := protocol.WriteVarInt(buf, int32(len(words))); err != nil {
		t.Fatalf("write words len: %v", err)
	}
	for _, w := range words {
		if err := protocol.WriteInt64(buf, int64(w)); err != nil {
			t.Fatalf("write word: %v", err)
		}
	}
}

func TestDecodePalettedContainerIndirect(t *testing.T) {
	var buf bytes.Buffer
	palette := []int32{0, 7, 42}
	indices := []int{0, 1, 2, 1, 0, 0, 2, 2}
	writeIndirectPalette(t, &buf, 4, palette, indices, true)

	got, err := decodePalettedContainer(&buf, len(indices), blockBitRange, true, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, idx := range indices {
		if got.ids[i] != palette[idx] {
			t.Errorf("ids[%d] = %d, want %d", i, got.ids[i], palette[idx])
		}
	}
}

func TestDecodePalettedContainerDirect(t *testing.T) {
	var buf bytes.Buffer
	count := 6
	values := []int32{0, 1000, 4000, 32000, 1, 2}

	if err := protocol.WriteByte(&buf, byte(blockBitRange.directBits+1)); err != nil {
		t.Fatalf("write bpe: %v", err)
	}
	bm := bitstore.NewBitMap(blockBitRange.directBits, count, bitstore.Unpadded)
	for i, v := range values {
		bm.Set(i, int(v))
	}
	words := bm.Words()
	if _, err := protocol.WriteVarInt(&buf, int32(len(words))); err != nil {
		t.Fatalf("write words len: %v", err)
	}
	for _, w := range words {
		if err := protocol.WriteInt64(&buf, int64(w)); err != nil {
			t.Fatalf("write word: %v", err)
		}
	}

	got, err := decodePalettedContainer(&buf, count, blockBitRange, false, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, v := range values {
		if got.ids[i] != v {
			t.Errorf("ids[%d] = %d, want %d", i, got.ids[i], v)
		}
	}
}

func TestDecodePalettedContainerSingleValue(t *testing.T) {
	var buf bytes.Buffer
	if err := protocol.WriteByte(&buf, 0); err != nil {
		t.Fatalf("write bpe: %v", err)
	}
	if _, err := protocol.WriteVarInt(&buf, 9); err != nil {
		t.Fatalf("write value: %v", err)
	}
	if _, err := protocol.WriteVarInt(&buf, 0); err != nil { // data length = 0 longs follow
		t.Fatalf("write data length: %v", err)
	}

	got, err := decodePalettedContainer(&buf, 10, blockBitRange, true, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.ids) != 10 {
		t.Fatalf("got %d ids, want 10", len(got.ids))
	}
	for i, v := range got.ids {
		if v != 9 {
			t.Errorf("ids[%d] = %d, want 9", i, v)
		}
	}
}

func TestDecodePalettedContainerZeroBpeIndirectMeansMinBits(t *testing.T) {
	var buf bytes.Buffer
	palette := []int32{0, 1}
	indices := []int{0, 1, 0, 1}
	// bpe=0 written directly: pre-1.18 callers treat this as indirectMin bits.
	writeIndirectPalette(t, &buf, blockBitRange.indirectMin, palette, indices, false)
	// Overwrite the first byte (bpe) with 0 to exercise the fallback path.
	raw := buf.Bytes()
	raw[0] = 0

	got, err := decodePalettedContainer(bytes.NewReader(raw), len(indices), blockBitRange, false, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, idx := range indices {
		if got.ids[i] != palette[idx] {
			t.Errorf("ids[%d] = %d, want %d", i, got.ids[i], palette[idx])
		}
	}
}
