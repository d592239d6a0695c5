// Package blobstore provides the untyped blob store backing the
// Content Addressable Storage: a map from Digest to raw bytes with an
// integrity check performed at write time.
package blobstore

import (
	"context"

	"github.com/buildbarn/bb-remote-node/pkg/digest"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// BlobAccess is a content-addressed store of blobs. Implementations
// must be safe for concurrent use by multiple goroutines.
//
// BlobAccess is a function from Digest to bytes: two successful Put
// calls using the same Digest are guaranteed to have stored identical
// data, because Put validates the data it is given against the digest
// before inserting it.
type BlobAccess interface {
	// Get returns the bytes stored under digest. It fails with
	// codes.NotFound if no blob is stored under that digest.
	Get(ctx context.Context, blobDigest digest.Digest) ([]byte, error)

	// Put computes the digest of data and inserts it into the store
	// under that digest. If expectedDigest is non-zero, the computed
	// digest is compared against it; a mismatch fails with
	// codes.InvalidArgument and leaves the store unmodified. On
	// success, the actual (computed) digest is returned.
	Put(ctx context.Context, expectedDigest digest.Digest, data []byte) (digest.Digest, error)

	// Has reports whether a blob is stored under digest.
	Has(ctx context.Context, blobDigest digest.Digest) (bool, error)

	// FindMissing returns the subset of digests that are not present
	// in the store.
	FindMissing(ctx context.Context, digests []digest.Digest) ([]digest.Digest, error)
}

// NotFoundError constructs the error returned by Get when a blob isn't
// present in the store.
func NotFoundError(blobDigest digest.Digest) error {
	return status.Errorf(codes.NotFound, "blob %s not found", blobDigest)
}
