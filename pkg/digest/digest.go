// Package digest provides the canonical content identifier used
// throughout the node: a SHA-256 hash paired with the exact,
// uncompressed size of the blob it identifies.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Digest identifies a blob stored in the Content Addressable Storage by
// the SHA-256 hash of its contents and its exact byte length.
//
// Digest is a value type: it may be freely copied and compared with
// ==. The zero value is not a valid digest; use BadDigest or check
// IsZero() when a degenerate value is needed as a placeholder.
type Digest struct {
	hash      string
	sizeBytes int64
}

// BadDigest is the zero value of Digest. It is used as a return value
// in error paths where no meaningful digest can be produced.
var BadDigest Digest

// IsZero returns true if d is the zero value.
func (d Digest) IsZero() bool {
	return d == BadDigest
}

// New constructs a Digest from a hash and size that have already been
// validated by the caller (e.g., because they were just computed by a
// Generator). It does not re-validate its arguments.
func New(hash string, sizeBytes int64) Digest {
	return Digest{hash: hash, sizeBytes: sizeBytes}
}

// NewDigest validates hash and sizeBytes and, if they form a
// well-formed digest, constructs a Digest from them. The hash must be
// a non-empty lowercase hexadecimal string; the size must be
// non-negative. The length of the hash is deliberately not validated
// here: clients are permitted to ask for blobs that could never have
// been produced by SHA-256, and simply observe them as absent.
func NewDigest(hash string, sizeBytes int64) (Digest, error) {
	if len(hash) == 0 {
		return BadDigest, status.Error(codes.InvalidArgument, "digest hash is empty")
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return BadDigest, status.Errorf(codes.InvalidArgument, "digest hash contains non-hexadecimal character %#U", c)
		}
	}
	if sizeBytes < 0 {
		return BadDigest, status.Errorf(codes.InvalidArgument, "digest has negative size %d", sizeBytes)
	}
	return Digest{hash: hash, sizeBytes: sizeBytes}, nil
}

// MustNewDigest is identical to NewDigest, except that it panics when
// the digest is malformed. Useful in unit tests and for constructing
// package-level constants.
func MustNewDigest(hash string, sizeBytes int64) Digest {
	d, err := NewDigest(hash, sizeBytes)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDigestFromPartialDigest converts a protocol-level Digest message
// into a Digest, validating its fields in the process.
func NewDigestFromPartialDigest(partialDigest *remoteexecution.Digest) (Digest, error) {
	if partialDigest == nil {
		return BadDigest, status.Error(codes.InvalidArgument, "no digest provided")
	}
	return NewDigest(partialDigest.Hash, partialDigest.SizeBytes)
}

// Parse parses the canonical textual form "<hash>:<size>" of a digest,
// as used in logs and in the subject field of PreconditionFailure
// violations. It is the inverse of Digest.String().
func Parse(s string) (Digest, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return BadDigest, status.Errorf(codes.InvalidArgument, "digest %#v does not have the form \"<hash>:<size>\"", s)
	}
	sizeBytes, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil {
		return BadDigest, status.Errorf(codes.InvalidArgument, "digest %#v has a non-numeric size", s)
	}
	return NewDigest(s[:i], sizeBytes)
}

// GetPartialDigest encodes the digest into the protocol-level message
// used by the remote execution API.
func (d Digest) GetPartialDigest() *remoteexecution.Digest {
	return &remoteexecution.Digest{
		Hash:      d.hash,
		SizeBytes: d.sizeBytes,
	}
}

// GetHashString returns the hexadecimal hash of the blob.
func (d Digest) GetHashString() string {
	return d.hash
}

// GetHashBytes returns the hash of the blob as raw bytes.
func (d Digest) GetHashBytes() []byte {
	b, err := hex.DecodeString(d.hash)
	if err != nil {
		panic("failed to decode digest hash, even though its contents were already validated")
	}
	return b
}

// GetSizeBytes returns the exact, uncompressed size of the blob.
func (d Digest) GetSizeBytes() int64 {
	return d.sizeBytes
}

// String returns the canonical textual form "<hash>:<size>" of the
// digest.
func (d Digest) String() string {
	return fmt.Sprintf("%s:%d", d.hash, d.sizeBytes)
}

// GetByteStreamSubject returns the "blobs/<hash>/<size>" form used both
// as the subject of a PreconditionFailure violation and as the
// resource name prefix of the ByteStream service.
func (d Digest) GetByteStreamSubject() string {
	return fmt.Sprintf("blobs/%s/%d", d.hash, d.sizeBytes)
}

// NewHasher creates a hash.Hash that computes the same algorithm used
// to derive this digest (SHA-256). It may be used to validate data
// against the digest as it streams in.
func (d Digest) NewHasher() hash.Hash {
	return sha256.New()
}

// NewGenerator creates a Generator that may be used to compute the
// digest of data as it is written out (e.g., to a new file in the
// CAS).
func NewGenerator() *Generator {
	return &Generator{partialHash: sha256.New()}
}

// Generator is an io.Writer that computes a Digest over the bytes
// written into it.
type Generator struct {
	partialHash hash.Hash
	sizeBytes   int64
}

// Write feeds a chunk of data into the generator's running hash.
func (g *Generator) Write(p []byte) (int, error) {
	n, err := g.partialHash.Write(p)
	g.sizeBytes += int64(n)
	return n, err
}

// Sum returns the Digest of all of the data written into the
// Generator so far.
func (g *Generator) Sum() Digest {
	return Digest{
		hash:      hex.EncodeToString(g.partialHash.Sum(nil)),
		sizeBytes: g.sizeBytes,
	}
}
