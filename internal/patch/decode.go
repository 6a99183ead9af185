package patch

import (
	"fmt"
	"hash/crc32"

	"github.com/zissis-pap/zipper/internal/rle"
)

// Apply parses the raw patch stream and reconstructs the target from
// ref. Reference reads past the end of ref yield zero bytes, whatever
// the offset, so matches near the tail degrade gracefully instead of
// failing.
func Apply(raw, ref []byte) ([]byte, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("%w: missing block size byte", ErrInvalidHeader)
	}
	blockSize := int(raw[0])
	if blockSize == 0 || blockSize%8 != 0 {
		return nil, fmt.Errorf("%w: block size %d is not a positive multiple of 8", ErrInvalidHeader, blockSize)
	}

	out := make([]byte, 0, len(ref))
	w := 0 // write position; reference-relative reads track it
	r := 1 // read position in raw, past the header byte

	for r < len(raw) {
		tag := raw[r]

		switch tag {
		case TagPad:
			// Trailing chunk padding; the stream is complete.
			return out, nil

		case TagMatch:
			out = appendRefWindow(out, ref, w, blockSize)
			w += blockSize
			r++

		case TagRun:
			if r+2 > len(raw) {
				return nil, truncated(TagRun, r)
			}
			count := int(raw[r+1]) + 1
			for i := 0; i < count; i++ {
				out = appendRefWindow(out, ref, w, blockSize)
				w += blockSize
			}
			r += 2

		case TagRelocate:
			if r+4 > len(raw) {
				return nil, truncated(TagRelocate, r)
			}
			off := int(raw[r+1])<<16 | int(raw[r+2])<<8 | int(raw[r+3])
			out = appendRefWindow(out, ref, off, blockSize)
			w += blockSize
			r += 4

		case TagInsert:
			if r+1+blockSize > len(raw) {
				return nil, truncated(TagInsert, r)
			}
			out = append(out, raw[r+1:r+1+blockSize]...)
			w += blockSize
			r += 1 + blockSize

		case TagDelta:
			if r+2 > len(raw) {
				return nil, truncated(TagDelta, r)
			}
			encLen := int(raw[r+1])
			if r+2+encLen > len(raw) {
				return nil, truncated(TagDelta, r)
			}
			delta, err := rle.Decode(raw[r+2 : r+2+encLen])
			if err != nil {
				return nil, fmt.Errorf("%w: record at offset %d: %v", ErrDeltaLength, r, err)
			}
			if len(delta) != blockSize {
				return nil, fmt.Errorf("%w: record at offset %d decodes to %d bytes, want %d",
					ErrDeltaLength, r, len(delta), blockSize)
			}
			refBlock := appendRefWindow(nil, ref, w, blockSize)
			for i := range delta {
				delta[i] ^= refBlock[i]
			}
			out = append(out, delta...)
			w += blockSize
			r += 2 + encLen

		case TagTail:
			if r+2 > len(raw) {
				return nil, truncated(TagTail, r)
			}
			tailLen := int(raw[r+1])
			if r+2+tailLen > len(raw) {
				return nil, truncated(TagTail, r)
			}
			out = append(out, raw[r+2:r+2+tailLen]...)
			r += 2 + tailLen

		default:
			return nil, fmt.Errorf("%w: 0x%02X at patch offset %d", ErrUnknownTag, tag, r)
		}
	}

	return out, nil
}

// ApplyVerified reconstructs the target and checks it against the
// stored CRC-32 from the patch container.
func ApplyVerified(raw, ref []byte, wantCRC uint32) ([]byte, error) {
	out, err := Apply(raw, ref)
	if err != nil {
		return nil, err
	}
	if got := crc32.ChecksumIEEE(out); got != wantCRC {
		return nil, fmt.Errorf("%w: stored 0x%08X, reconstructed 0x%08X", ErrChecksumMismatch, wantCRC, got)
	}
	return out, nil
}

// appendRefWindow appends n bytes of ref starting at off, zero-filling
// any portion past the end of the reference.
func appendRefWindow(dst, ref []byte, off, n int) []byte {
	if off < len(ref) {
		avail := len(ref) - off
		if avail >= n {
			return append(dst, ref[off:off+n]...)
		}
		dst = append(dst, ref[off:]...)
		n -= avail
	}
	for i := 0; i < n; i++ {
		dst = append(dst, 0)
	}
	return dst
}

func truncated(tag byte, offset int) error {
	return fmt.Errorf("%w: 0x%02X at patch offset %d", ErrTruncatedRecord, tag, offset)
}
