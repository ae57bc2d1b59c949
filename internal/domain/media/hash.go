package media

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// HashSet holds the three content digests computed in one pass.
type HashSet struct {
	MD5    string
	SHA1   string
	SHA256 string
}

const hashBufferSize = 8192

// ComputeHashes streams r once and returns lowercase hex MD5, SHA-1 and
// SHA-256. The reader is consumed in fixed-size chunks so arbitrarily large
// objects never load into memory.
func ComputeHashes(r io.Reader) (HashSet, error) {
	return computeHashes(r, hashBufferSize)
}

func computeHashes(r io.Reader, bufSize int) (HashSet, error) {
	h5 := md5.New()
	h1 := sha1.New()
	h256 := sha256.New()

	buf := make([]byte, bufSize)
	if _, err := io.CopyBuffer(io.MultiWriter(h5, h1, h256), r, buf); err != nil {
		return HashSet{}, fmt.Errorf("hashing stream: %w", err)
	}

	return HashSet{
		MD5:    hex.EncodeToString(h5.Sum(nil)),
		SHA1:   hex.EncodeToString(h1.Sum(nil)),
		SHA256: hex.EncodeToString(h256.Sum(nil)),
	}, nil
}
