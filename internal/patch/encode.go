package patch

import (
	"bytes"

	"github.com/zissis-pap/zipper/internal/dict"
	"github.com/zissis-pap/zipper/internal/rle"
)

// Stats summarises how the encoder classified the target.
type Stats struct {
	Blocks    int // full blocks examined
	Matches   int // same-offset matches (before run collapsing)
	Relocated int // dictionary hits at a different offset
	Deltas    int // XOR-delta records
	Inserts   int // raw block inserts
	TailBytes int // length of the trailing partial block, 0 if none
	RawBytes  int // size of the emitted raw patch, header included
}

// classified is one full target block's classification before the
// run-collapsing emit pass.
type classified struct {
	tag  byte
	data []byte
}

// Encode compares target against ref in blockSize-byte blocks and
// returns the raw patch stream: one header byte carrying the block
// size, followed by the record stream. Encoding never fails for any
// finite inputs once the block size is accepted.
func Encode(ref, target []byte, blockSize int) ([]byte, *Stats, error) {
	if err := CheckBlockSize(blockSize); err != nil {
		return nil, nil, err
	}

	index := dict.Build(ref, blockSize)

	numFull := len(target) / blockSize
	stats := &Stats{Blocks: numFull}

	records := make([]classified, 0, numFull)
	for k := 0; k < numFull; k++ {
		pos := k * blockSize
		block := target[pos : pos+blockSize]
		records = append(records, classify(ref, index, block, pos, blockSize, stats))
	}

	out := make([]byte, 1, 1+numFull)
	out[0] = byte(blockSize)
	out = emit(out, records)

	// Trailing partial block, raw.
	if rem := len(target) % blockSize; rem != 0 {
		tail := target[numFull*blockSize:]
		out = append(out, TagTail, byte(rem))
		out = append(out, tail...)
		stats.TailBytes = rem
	}

	stats.RawBytes = len(out)
	return out, stats, nil
}

// classify picks exactly one record for the full block at pos,
// preferring exact > relocated > delta > raw.
func classify(ref []byte, index *dict.Index, block []byte, pos, blockSize int, stats *Stats) classified {
	if pos+blockSize <= len(ref) && bytes.Equal(ref[pos:pos+blockSize], block) {
		stats.Matches++
		return classified{tag: TagMatch}
	}

	if off, ok := index.Lookup(block); ok {
		stats.Relocated++
		data := []byte{byte(off >> 16), byte(off >> 8), byte(off)}
		return classified{tag: TagRelocate, data: data}
	}

	if pos+blockSize <= len(ref) {
		delta := make([]byte, blockSize)
		for i := range delta {
			delta[i] = block[i] ^ ref[pos+i]
		}
		if enc := rle.Encode(delta); len(enc) < blockSize {
			stats.Deltas++
			return classified{tag: TagDelta, data: enc}
		}
	}

	stats.Inserts++
	return classified{tag: TagInsert, data: block}
}

// emit serialises the classified records, collapsing maximal runs of
// two or more same-position matches into run records of up to 256
// copies each. A remainder of exactly one match after chunking falls
// through to a single plain match record.
func emit(out []byte, records []classified) []byte {
	for i := 0; i < len(records); {
		rec := records[i]

		if rec.tag != TagMatch {
			out = append(out, rec.tag)
			if rec.tag == TagDelta {
				out = append(out, byte(len(rec.data)))
			}
			out = append(out, rec.data...)
			i++
			continue
		}

		run := 1
		for i+run < len(records) && records[i+run].tag == TagMatch {
			run++
		}
		i += run

		if run == 1 {
			out = append(out, TagMatch)
			continue
		}
		for run > 1 {
			n := run
			if n > maxRunLength {
				n = maxRunLength
			}
			out = append(out, TagRun, byte(n-1))
			run -= n
		}
		if run == 1 {
			out = append(out, TagMatch)
		}
	}
	return out
}
