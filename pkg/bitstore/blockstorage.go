package bitstore

import "math/bits"

type storageMode int

const (
	modeSingle storageMode = iota
	modePalette
	modeDirect
)

// directBitsPerEntry is the bpe at which BlockStorage abandons its
// palette and stores raw state IDs directly, per spec §4.B.
const directBitsPerEntry = 15

// BlockStorage is a palette-indexed array of size entries (4096 for a
// 16×16×16 section), growing from a single repeated value through an
// indirect palette to a direct encoding as distinct values accumulate.
type BlockStorage struct {
	size int

	mode        storageMode
	singleValue int32

	palette      []int32
	paletteIndex map[int32]int
	bits         *BitMap
}

// NewBlockStorage creates storage for size entries, all initially
// equal to fill.
func NewBlockStorage(size int, fill int32) *BlockStorage {
	return &BlockStorage{size: size, mode: modeSingle, singleValue: fill}
}

// bitsNeeded returns the minimum bpe able to index n distinct values.
func bitsNeeded(n int) int {
	if n <= 1 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// Get returns the state ID stored at index i.
func (s *BlockStorage) Get(i int) int32 {
	switch s.mode {
	case modeSingle:
		return s.singleValue
	case modeDirect:
		return int32(s.bits.Get(i))
	default:
		idx := s.bits.Get(i)
		return s.palette[idx]
	}
}

// Set stores state at index i, returning whether the value changed.
func (s *BlockStorage) Set(i int, state int32) bool {
	switch s.mode {
	case modeSingle:
		if state == s.singleValue {
			return false
		}
		s.promoteToPalette()
		return s.Set(i, state)
	case modeDirect:
		if int32(s.bits.Get(i)) == state {
			return false
		}
		s.bits.Set(i, int(state))
		return true
	default:
		return s.setPalette(i, state)
	}
}

func (s *BlockStorage) promoteToPalette() {
	s.palette = []int32{s.singleValue}
	s.paletteIndex = map[int32]int{s.singleValue: 0}
	bm := NewBitMap(bitsNeeded(1), s.size, Padded)
	s.bits = bm
	s.mode = modePalette
}

func (s *BlockStorage) setPalette(i int, state int32) bool {
	idx, ok := s.paletteIndex[state]
	if ok {
		if s.bits.Get(i) == idx {
			return false
		}
		s.bits.Set(i, idx)
		return true
	}

	newIdx := len(s.palette)
	newBpe := bitsNeeded(newIdx + 1)
	if newBpe >= directBitsPerEntry {
		s.promoteToDirect()
		s.bits.Set(i, int(state))
		return true
	}

	if newBpe > s.bits.BitsPerEntry() {
		s.growBits(newBpe)
	}
	s.palette = append(s.palette, state)
	s.paletteIndex[state] = newIdx
	s.bits.Set(i, newIdx)
	return true
}

func (s *BlockStorage) growBits(newBpe int) {
	grown := NewBitMap(newBpe, s.size, Padded)
	for i := 0; i < s.size; i++ {
		grown.Set(i, s.bits.Get(i))
	}
	s.bits = grown
}

func (s *BlockStorage) promoteToDirect() {
	direct := NewBitMap(directBitsPerEntry, s.size, Padded)
	for i := 0; i < s.size; i++ {
		direct.Set(i, int(s.palette[s.bits.Get(i)]))
	}
	s.bits = direct
	s.palette = nil
	s.paletteIndex = nil
	s.mode = modeDirect
}

// Len returns the number of entries.
func (s *BlockStorage) Len() int { return s.size }

// BitsPerEntry reports the current bpe (0 while in single-value mode).
func (s *BlockStorage) BitsPerEntry() int {
	if s.bits == nil {
		return 0
	}
	return s.bits.BitsPerEntry()
}

// IsDirect reports whether storage has promoted past the palette into
// direct state-ID encoding.
func (s *BlockStorage) IsDirect() bool { return s.mode == modeDirect }
