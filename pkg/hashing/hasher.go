// Package hashing computes content digests for duplicate detection.
//
// Two digests are involved: a cryptographic sha256 digest that decides
// duplicate identity, and a cheap xxhash64 quick-sum used to thin out
// same-size candidate buckets before the full digest is paid for. Files
// stream through a bounded buffer and are never loaded whole.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/arthur-debert/tidy/pkg/errors"
	"github.com/arthur-debert/tidy/pkg/logging"
	"github.com/arthur-debert/tidy/pkg/types"
)

const copyBufferSize = 256 * 1024

// Hasher computes file content digests through a types.FS.
type Hasher struct {
	fs types.FS
}

// NewHasher creates a hasher over fs.
func NewHasher(fs types.FS) *Hasher {
	return &Hasher{fs: fs}
}

// Sum returns the hex-encoded sha256 digest of the file's content.
// Byte-identical files produce identical digests regardless of name,
// location or timestamps.
func (h *Hasher) Sum(path string) (string, error) {
	f, err := h.fs.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileRead, "cannot open %s", path)
	}
	defer func() { _ = f.Close() }()

	digest := sha256.New()
	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(digest, f, buf); err != nil {
		return "", errors.Wrapf(err, errors.ErrHash, "hashing %s failed", path)
	}

	sum := hex.EncodeToString(digest.Sum(nil))
	logger := logging.GetLogger("hashing")
	logger.Trace().Str("path", path).Str("sha256", sum).Msg("Hashed file")
	return sum, nil
}

// QuickSum returns the xxhash64 of the file's content. It is not
// collision-safe and only ever narrows candidate sets; equality is
// always confirmed with Sum.
func (h *Hasher) QuickSum(path string) (uint64, error) {
	f, err := h.fs.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileRead, "cannot open %s", path)
	}
	defer func() { _ = f.Close() }()

	digest := xxhash.New()
	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(digest, f, buf); err != nil {
		return 0, errors.Wrapf(err, errors.ErrHash, "quick-hashing %s failed", path)
	}
	return digest.Sum64(), nil
}
