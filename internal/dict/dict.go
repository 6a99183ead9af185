// Package dict builds the reference-side block index used for relocated
// matches. Every block-sized window of the reference maps to its
// preferred offset, with block-aligned offsets taking priority over
// unaligned ones.
package dict

// MaxOffset is the largest offset storable in a 3-byte patch record.
// Windows beyond it are never indexed.
const MaxOffset = 0xFFFFFF

// Index maps each block-sized window of a reference to the offset the
// encoder should emit for it.
type Index struct {
	blockSize int
	offsets   map[string]int
}

// Build indexes every blockSize-byte window of ref below the 24-bit
// offset cap. Aligned windows (offsets that are multiples of blockSize)
// are inserted first, so an aligned occurrence wins over any unaligned
// one regardless of position; within an alignment class the lowest
// offset wins.
func Build(ref []byte, blockSize int) *Index {
	limit := len(ref)
	if limit > MaxOffset+1 {
		limit = MaxOffset + 1
	}

	idx := &Index{
		blockSize: blockSize,
		offsets:   make(map[string]int),
	}

	// Pass 1: aligned windows.
	for j := 0; j+blockSize <= limit; j += blockSize {
		key := string(ref[j : j+blockSize])
		if _, ok := idx.offsets[key]; !ok {
			idx.offsets[key] = j
		}
	}

	// Pass 2: unaligned windows.
	for j := 0; j+blockSize <= limit; j++ {
		if j%blockSize == 0 {
			continue
		}
		key := string(ref[j : j+blockSize])
		if _, ok := idx.offsets[key]; !ok {
			idx.offsets[key] = j
		}
	}

	return idx
}

// Lookup returns the preferred offset for block, if it occurs anywhere
// in the indexed portion of the reference.
func (idx *Index) Lookup(block []byte) (int, bool) {
	off, ok := idx.offsets[string(block)]
	return off, ok
}

// Len returns the number of distinct windows indexed.
func (idx *Index) Len() int {
	return len(idx.offsets)
}
