package chunkio

import (
	"testing"

	"github.com/voxelkiln/mccore/pkg/world"
)

func TestMaskIndicesAscending(t *testing.T) {
	got := maskIndices((1 << 0) | (1 << 5) | (1 << 10))
	want := []int32{0, 5, 10}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDecodeColumnDispatchesByProtocolVersion(t *testing.T) {
	reg := testRegistry(t)
	meta := ColumnMeta{Pos: world.ChunkPos{X: 0, Z: 0}, PrimaryMask: 1}

	cases := []struct {
		name    string
		version int32
		data    []byte
	}{
		{"pre-beta", PreBetaFlatteningProtocol, make([]byte, world.BlocksPerSection+2*(world.BlocksPerSection/2))},
		{"dense-u16", PaletteEraStart - 1, make([]byte, world.BlocksPerSection*2+world.BlocksPerSection/2)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := DecodeColumn(c.data, meta, c.version, reg, nil, nil)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, ok := out.Sections[0]; !ok {
				t.Errorf("expected section 0 decoded")
			}
		})
	}
}

func TestDecodeColumnRejectsModernWithoutDimension(t *testing.T) {
	reg := testRegistry(t)
	meta := ColumnMeta{Pos: world.ChunkPos{X: 0, Z: 0}}
	if _, err := DecodeColumn(nil, meta, NewSectionFormatProtocol, reg, nil, nil); err == nil {
		t.Errorf("expected error dispatching to 1.18+ decoder without a dimension codec")
	}
}
