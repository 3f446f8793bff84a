package bitstore

// Layout selects how entries are packed into the 64-bit word stream.
type Layout int

const (
	// Unpadded is the pre-1.16 layout: entry i starts at bit i*bpe of
	// the stream and may span two adjacent words.
	Unpadded Layout = iota
	// Padded is the 1.16+ layout: each word holds exactly
	// ⌊64/bpe⌋ entries; low-order bits left over in a word are unused
	// and no entry crosses a word boundary.
	Padded
)

// BitMap is a dense sequence of bitsPerEntry-bit entries packed into
// 64-bit words, per one of the two layouts vanilla has used.
type BitMap struct {
	words     []uint64
	bpe       int
	layout    Layout
	count     int
	perWord   int // Padded only: entries per word
}

// NewBitMap allocates a BitMap for count entries of bpe bits each.
func NewBitMap(bpe, count int, layout Layout) *BitMap {
	bm := &BitMap{bpe: bpe, layout: layout, count: count}
	switch layout {
	case Padded:
		bm.perWord = 64 / bpe
		numWords := (count + bm.perWord - 1) / bm.perWord
		bm.words = make([]uint64, numWords)
	default:
		totalBits := count * bpe
		numWords := (totalBits + 63) / 64
		bm.words = make([]uint64, numWords)
	}
	return bm
}

// BitMapFrom wraps existing word storage (e.g. decoded off the wire).
func BitMapFrom(words []uint64, bpe, count int, layout Layout) *BitMap {
	bm := &BitMap{words: words, bpe: bpe, layout: layout, count: count}
	if layout == Padded {
		bm.perWord = 64 / bpe
	}
	return bm
}

func (bm *BitMap) mask() uint64 {
	return (uint64(1) << uint(bm.bpe)) - 1
}

// Get returns the entry at index i.
func (bm *BitMap) Get(i int) int {
	mask := bm.mask()
	if bm.layout == Padded {
		word := i / bm.perWord
		offset := uint((i % bm.perWord) * bm.bpe)
		return int((bm.words[word] >> offset) & mask)
	}

	bitIndex := i * bm.bpe
	wordIndex := bitIndex / 64
	bitOffset := uint(bitIndex % 64)

	value := bm.words[wordIndex] >> bitOffset
	if bitOffset+uint(bm.bpe) > 64 && wordIndex+1 < len(bm.words) {
		value |= bm.words[wordIndex+1] << (64 - bitOffset)
	}
	return int(value & mask)
}

// Set stores v (masked to bpe bits) at index i.
func (bm *BitMap) Set(i int, v int) {
	mask := bm.mask()
	uv := uint64(v) & mask

	if bm.layout == Padded {
		word := i / bm.perWord
		offset := uint((i % bm.perWord) * bm.bpe)
		bm.words[word] = (bm.words[word] &^ (mask << offset)) | (uv << offset)
		return
	}

	bitIndex := i * bm.bpe
	wordIndex := bitIndex / 64
	bitOffset := uint(bitIndex % 64)

	bm.words[wordIndex] = (bm.words[wordIndex] &^ (mask << bitOffset)) | (uv << bitOffset)
	if bitOffset+uint(bm.bpe) > 64 && wordIndex+1 < len(bm.words) {
		remaining := uint(bm.bpe) - (64 - bitOffset)
		upperMask := (uint64(1) << remaining) - 1
		bm.words[wordIndex+1] = (bm.words[wordIndex+1] &^ upperMask) | (uv >> (64 - bitOffset))
	}
}

// Len returns the number of entries.
func (bm *BitMap) Len() int { return bm.count }

// BitsPerEntry returns bpe.
func (bm *BitMap) BitsPerEntry() int { return bm.bpe }

// Words returns the backing word storage.
func (bm *BitMap) Words() []uint64 { return bm.words }
