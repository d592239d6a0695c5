package blobstore

import (
	"bytes"
	"context"
	"sync"

	"github.com/buildbarn/bb-remote-node/pkg/digest"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewInMemoryBlobAccess creates a BlobAccess that stores blobs in a
// regular Go map, protected by a single mutex. Blobs live for the
// remainder of the process; nothing is ever evicted. A persistent
// store (e.g., files on disk named by digest) would be a drop-in
// replacement behind the same interface.
func NewInMemoryBlobAccess() BlobAccess {
	return &inMemoryBlobAccess{
		blobs: map[string][]byte{},
	}
}

type inMemoryBlobAccess struct {
	lock  sync.Mutex
	blobs map[string][]byte
}

func (ba *inMemoryBlobAccess) Get(ctx context.Context, blobDigest digest.Digest) ([]byte, error) {
	ba.lock.Lock()
	data, ok := ba.blobs[blobDigest.String()]
	ba.lock.Unlock()
	if !ok {
		return nil, NotFoundError(blobDigest)
	}
	return data, nil
}

func (ba *inMemoryBlobAccess) Put(ctx context.Context, expectedDigest digest.Digest, data []byte) (digest.Digest, error) {
	generator := digest.NewGenerator()
	if _, err := generator.Write(data); err != nil {
		return digest.BadDigest, status.Errorf(codes.Internal, "failed to hash blob: %s", err)
	}
	actualDigest := generator.Sum()
	if !expectedDigest.IsZero() && expectedDigest != actualDigest {
		return digest.BadDigest, status.Errorf(codes.InvalidArgument, "blob has digest %s, but %s was expected", actualDigest, expectedDigest)
	}

	ba.lock.Lock()
	defer ba.lock.Unlock()
	key := actualDigest.String()
	if existing, ok := ba.blobs[key]; ok {
		// Idempotent: the invariant that two writes under the
		// same digest store identical bytes already holds by
		// construction, but cheaply confirm it rather than
		// silently trusting a caller that bypassed Put.
		if !bytes.Equal(existing, data) {
			panic("digest collision: stored blob does not match data sharing its digest")
		}
		return actualDigest, nil
	}
	ba.blobs[key] = data
	return actualDigest, nil
}

func (ba *inMemoryBlobAccess) Has(ctx context.Context, blobDigest digest.Digest) (bool, error) {
	ba.lock.Lock()
	_, ok := ba.blobs[blobDigest.String()]
	ba.lock.Unlock()
	return ok, nil
}

func (ba *inMemoryBlobAccess) FindMissing(ctx context.Context, digests []digest.Digest) ([]digest.Digest, error) {
	var missing []digest.Digest
	ba.lock.Lock()
	for _, d := range digests {
		if _, ok := ba.blobs[d.String()]; !ok {
			missing = append(missing, d)
		}
	}
	ba.lock.Unlock()
	return missing, nil
}
