// Package container frames a raw patch stream into the on-disk patch
// file format: the raw bytes followed by a 4-byte big-endian CRC-32 of
// the target file the patch reconstructs.
package container

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// trailerSize is the CRC-32 trailer length in bytes.
const trailerSize = 4

// ErrTooShort indicates a patch file too small to hold the checksum trailer.
var ErrTooShort = errors.New("container: patch file too short")

// Wrap frames raw patch bytes with the CRC-32 of target. The checksum
// covers the reconstructed file, not the patch itself, so the applier
// can verify the final output in one pass.
func Wrap(raw []byte, target []byte) []byte {
	out := make([]byte, len(raw)+trailerSize)
	copy(out, raw)
	binary.BigEndian.PutUint32(out[len(raw):], crc32.ChecksumIEEE(target))
	return out
}

// Split separates a patch file into the raw patch bytes and the stored
// target CRC-32. Files shorter than five bytes cannot hold a header
// byte plus the trailer and are rejected.
func Split(file []byte) ([]byte, uint32, error) {
	if len(file) < trailerSize+1 {
		return nil, 0, ErrTooShort
	}
	raw := file[:len(file)-trailerSize]
	crc := binary.BigEndian.Uint32(file[len(file)-trailerSize:])
	return raw, crc, nil
}
