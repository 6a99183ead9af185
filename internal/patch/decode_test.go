package patch

import (
	"bytes"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_MatchRecord(t *testing.T) {
	ref := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	out, err := Apply([]byte{0x08, TagMatch}, ref)
	require.NoError(t, err)
	assert.Equal(t, ref, out)
}

func TestApply_RunRecord(t *testing.T) {
	ref := append([]byte{1, 1, 1, 1, 1, 1, 1, 1}, []byte{2, 2, 2, 2, 2, 2, 2, 2}...)
	out, err := Apply([]byte{0x08, TagRun, 0x01}, ref)
	require.NoError(t, err)
	assert.Equal(t, ref, out)
}

func TestApply_RelocateRecord(t *testing.T) {
	ref := make([]byte, 24)
	q := []byte{9, 8, 7, 6, 5, 4, 3, 2}
	copy(ref[16:], q)

	out, err := Apply([]byte{0x08, TagRelocate, 0x00, 0x00, 0x10}, ref)
	require.NoError(t, err)
	assert.Equal(t, q, out)
}

func TestApply_RelocatePastReferenceZeroFills(t *testing.T) {
	// Offsets beyond the reference read the zero-padded extension.
	ref := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	out, err := Apply([]byte{0x08, TagRelocate, 0x00, 0x00, 0x02}, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0, 0, 0, 0, 0, 0}, out)
}

func TestApply_InsertRecord(t *testing.T) {
	data := []byte{10, 20, 30, 40, 50, 60, 70, 80}
	raw := append([]byte{0x08, TagInsert}, data...)
	out, err := Apply(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestApply_DeltaRecord(t *testing.T) {
	ref := bytes.Repeat([]byte{0x0F}, 8)
	// Delta of eight 0xF0 bytes: one repeat run.
	raw := []byte{0x08, TagDelta, 0x02, 0x80 | 6, 0xF0}
	out, err := Apply(raw, ref)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 8), out)
}

func TestApply_TailRecord(t *testing.T) {
	raw := []byte{0x08, TagTail, 0x03, 0xBB, 0xBB, 0xBB}
	out, err := Apply(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xBB, 0xBB, 0xBB}, out)
}

func TestApply_PaddingTerminates(t *testing.T) {
	ref := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	// Zero padding after the first record ends the stream; the garbage
	// beyond it is never parsed.
	raw := []byte{0x08, TagMatch, 0x00, 0x00, 0xEE}
	out, err := Apply(raw, ref)
	require.NoError(t, err)
	assert.Equal(t, ref, out)
}

func TestApply_EmptyStream(t *testing.T) {
	out, err := Apply([]byte{0x08}, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestApply_InvalidHeader(t *testing.T) {
	cases := map[string][]byte{
		"empty":          {},
		"zero":           {0x00, TagMatch},
		"not multiple 8": {0x0A, TagMatch},
	}
	for name, raw := range cases {
		_, err := Apply(raw, nil)
		assert.ErrorIs(t, err, ErrInvalidHeader, name)
	}
}

func TestApply_UnknownTag(t *testing.T) {
	_, err := Apply([]byte{0x08, 0x7A}, nil)
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestApply_TruncatedRecords(t *testing.T) {
	cases := map[string][]byte{
		"run without count":    {0x08, TagRun},
		"relocate short":       {0x08, TagRelocate, 0x00, 0x01},
		"insert short":         {0x08, TagInsert, 1, 2, 3},
		"delta without length": {0x08, TagDelta},
		"delta short payload":  {0x08, TagDelta, 0x05, 0x01},
		"tail short payload":   {0x08, TagTail, 0x04, 0xAA},
	}
	for name, raw := range cases {
		_, err := Apply(raw, make([]byte, 64))
		assert.ErrorIs(t, err, ErrTruncatedRecord, name)
	}
}

func TestApply_DeltaLengthMismatch(t *testing.T) {
	// RLE decodes cleanly but to 4 bytes, not the 8-byte block size.
	raw := []byte{0x08, TagDelta, 0x02, 0x80 | 2, 0xAA}
	_, err := Apply(raw, make([]byte, 8))
	assert.ErrorIs(t, err, ErrDeltaLength)
}

func TestApply_DeltaBadRLE(t *testing.T) {
	// The declared payload is present but ends inside a literal run.
	raw := []byte{0x08, TagDelta, 0x02, 0x05, 0xAA}
	_, err := Apply(raw, make([]byte, 8))
	assert.ErrorIs(t, err, ErrDeltaLength)
}

func TestApplyVerified_OK(t *testing.T) {
	ref := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	out, err := ApplyVerified([]byte{0x08, TagMatch}, ref, crc32.ChecksumIEEE(ref))
	require.NoError(t, err)
	assert.Equal(t, ref, out)
}

func TestApplyVerified_ChecksumMismatch(t *testing.T) {
	ref := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	want := crc32.ChecksumIEEE(ref) ^ 0x01
	_, err := ApplyVerified([]byte{0x08, TagMatch}, ref, want)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestApply_MatchPastReferenceZeroFills(t *testing.T) {
	// A match at a write position beyond the reference reads zeros.
	raw := []byte{0x08, TagMatch, TagMatch}
	ref := []byte{5, 5, 5, 5, 5, 5, 5, 5}
	out, err := Apply(raw, ref)
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, ref...), make([]byte, 8)...), out)
}
