package ecsver

import (
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"math/big"
	"os"
	"sort"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// HashFunc returns a fresh digest state.
type HashFunc func() hash.Hash

// Supported digests. SHA1 matches existing signature files and is the
// default.
var (
	SHA1    HashFunc = sha1.New
	SHA256  HashFunc = sha256.New
	SHA3256 HashFunc = sha3.New256
	BLAKE3  HashFunc = func() hash.Hash { return blake3.New() }
)

var hashes = map[string]HashFunc{
	"sha1":     SHA1,
	"sha256":   SHA256,
	"sha3-256": SHA3256,
	"blake3":   BLAKE3,
}

// LookupHash returns the digest registered under name.
func LookupHash(name string) (HashFunc, error) {
	h, ok := hashes[name]
	if !ok {
		return nil, fmt.Errorf("unknown hash %q (supported: %v)", name, HashNames())
	}
	return h, nil
}

// HashNames lists the registered digest names in sorted order.
func HashNames() []string {
	names := make([]string, 0, len(hashes))
	for name := range hashes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HashReader digests everything read from r and returns the digest as a
// big-endian integer. The input is streamed, not buffered.
func HashReader(r io.Reader, newHash HashFunc) (*big.Int, error) {
	if newHash == nil {
		newHash = SHA1
	}
	h := newHash()
	if _, err := io.Copy(h, r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return new(big.Int).SetBytes(h.Sum(nil)), nil
}

// HashFile digests the file at path.
func HashFile(path string, newHash HashFunc) (*big.Int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()
	return HashReader(f, newHash)
}
