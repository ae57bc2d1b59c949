package media

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHashes_KnownVectors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		md5    string
		sha1   string
		sha256 string
	}{
		{
			name:   "empty input",
			input:  "",
			md5:    "d41d8cd98f00b204e9800998ecf8427e",
			sha1:   "da39a3ee5e6b4b0d3255bfef95601890afd80709",
			sha256: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:   "abc",
			input:  "abc",
			md5:    "900150983cd24fb0d6963f7d28e17f72",
			sha1:   "a9993e364706816aba3e25717850c26c9cd0d89d",
			sha256: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeHashes(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.md5, got.MD5)
			assert.Equal(t, tt.sha1, got.SHA1)
			assert.Equal(t, tt.sha256, got.SHA256)
		})
	}
}

func TestComputeHashes_LowercaseHex(t *testing.T) {
	got, err := ComputeHashes(strings.NewReader("Forensic"))
	require.NoError(t, err)
	for _, h := range []string{got.MD5, got.SHA1, got.SHA256} {
		assert.Equal(t, strings.ToLower(h), h)
	}
	assert.Len(t, got.MD5, 32)
	assert.Len(t, got.SHA1, 40)
	assert.Len(t, got.SHA256, 64)
}

func TestComputeHashes_BufferSizeIndependent(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB, 0x01, 0xFF, 0x42}, 1111)

	want, err := computeHashes(bytes.NewReader(payload), 8192)
	require.NoError(t, err)

	for _, size := range []int{1, 7, 64, 4096} {
		got, err := computeHashes(bytes.NewReader(payload), size)
		require.NoError(t, err)
		assert.Equal(t, want, got, "buffer size %d", size)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, assert.AnError }

func TestComputeHashes_ReaderError(t *testing.T) {
	_, err := ComputeHashes(failingReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
