package update

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"strings"
)

// chunkSize bounds every read so memory use does not grow with the artifact.
const chunkSize = 4 * 1024

// HashVerifyingReader computes the SHA-1 digest and byte count of everything
// read through it.
type HashVerifyingReader struct {
	r     io.Reader
	h     hash.Hash
	count int64
}

// NewHashVerifyingReader wraps r.
func NewHashVerifyingReader(r io.Reader) *HashVerifyingReader {
	return &HashVerifyingReader{r: r, h: sha1.New()}
}

// Read reads at most one chunk from the underlying reader.
func (hr *HashVerifyingReader) Read(p []byte) (int, error) {
	if len(p) > chunkSize {
		p = p[:chunkSize]
	}
	n, err := hr.r.Read(p)
	if n > 0 {
		hr.h.Write(p[:n])
		hr.count += int64(n)
	}
	return n, err
}

// Drain reads the source until EOF and returns the total byte count.
func (hr *HashVerifyingReader) Drain() (int64, error) {
	buf := make([]byte, chunkSize)
	for {
		_, err := hr.Read(buf)
		if errors.Is(err, io.EOF) {
			return hr.count, nil
		}
		if err != nil {
			return hr.count, err
		}
	}
}

// Count returns the number of bytes read so far.
func (hr *HashVerifyingReader) Count() int64 {
	return hr.count
}

// Sum returns the lowercase hex SHA-1 of the bytes read so far.
func (hr *HashVerifyingReader) Sum() string {
	return hex.EncodeToString(hr.h.Sum(nil))
}

// Verify reports whether the digest matches expected, ignoring case.
func (hr *HashVerifyingReader) Verify(expected string) bool {
	return strings.EqualFold(hr.Sum(), expected)
}
