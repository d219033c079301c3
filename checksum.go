package gcsfs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/cespare/xxhash/v2"
)

// ChecksumAlgorithm selects a digest for Checksum/Checksums. Trimmed to the
// two algorithms the domain stack actually wires in: SHA-256 for integrity
// verification against the backend's own content digest, and XXHash for a
// fast non-cryptographic digest suited to cache-key generation.
type ChecksumAlgorithm string

const (
	ChecksumSHA256 ChecksumAlgorithm = "sha256"
	ChecksumXXHash ChecksumAlgorithm = "xxhash"
)

func newHasher(algorithm ChecksumAlgorithm) (hash.Hash, error) {
	switch algorithm {
	case ChecksumSHA256:
		return sha256.New(), nil
	case ChecksumXXHash:
		return xxhash.New(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported checksum algorithm %q", ErrUnsupported, algorithm)
	}
}

// Checksum reads the whole file at p and returns its hex-encoded digest.
func Checksum(ctx context.Context, fs *Filesystem, p Path, algorithm ChecksumAlgorithm) (string, error) {
	sums, err := Checksums(ctx, fs, p, []ChecksumAlgorithm{algorithm})
	if err != nil {
		return "", err
	}
	return sums[algorithm], nil
}

// Checksums computes multiple digests of p's content in a single read pass,
// the same multi-writer fan-out shape the teacher's CalculateChecksums uses.
func Checksums(ctx context.Context, fs *Filesystem, p Path, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error) {
	if len(algorithms) == 0 {
		return nil, newPathError("checksum", p.String(), ErrIllegalArgument)
	}

	r, err := fs.NewReadableByteChannel(ctx, p)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	hashers := make(map[ChecksumAlgorithm]hash.Hash, len(algorithms))
	writers := make([]io.Writer, 0, len(algorithms))
	for _, algo := range algorithms {
		h, err := newHasher(algo)
		if err != nil {
			return nil, newPathError("checksum", p.String(), err)
		}
		hashers[algo] = h
		writers = append(writers, h)
	}

	if _, err := io.Copy(io.MultiWriter(writers...), r); err != nil {
		return nil, newPathError("checksum", p.String(), err)
	}

	out := make(map[ChecksumAlgorithm]string, len(algorithms))
	for algo, h := range hashers {
		out[algo] = hex.EncodeToString(h.Sum(nil))
	}
	return out, nil
}
