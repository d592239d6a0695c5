// Package cas implements the node's Content Addressable Storage: typed
// access to Action, Command, Directory and Tree messages on top of an
// untyped blobstore.BlobAccess, plus the gRPC façades (CAS,
// ByteStream) that expose it to clients.
package cas

import (
	"context"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"google.golang.org/protobuf/proto"

	"github.com/buildbarn/bb-remote-node/pkg/blobstore"
	"github.com/buildbarn/bb-remote-node/pkg/digest"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ContentAddressableStorage provides typed access to the blobs stored
// in a Bazel Content Addressable Storage: it decodes the Directory,
// Command, Action and Tree messages that the Execution service and
// Tree Resolver need, on top of the raw byte access offered by
// blobstore.BlobAccess.
type ContentAddressableStorage interface {
	blobstore.BlobAccess

	GetAction(ctx context.Context, blobDigest digest.Digest) (*remoteexecution.Action, error)
	GetCommand(ctx context.Context, blobDigest digest.Digest) (*remoteexecution.Command, error)
	GetDirectory(ctx context.Context, blobDigest digest.Digest) (*remoteexecution.Directory, error)
	GetTree(ctx context.Context, blobDigest digest.Digest) (*remoteexecution.Tree, error)

	PutDirectory(ctx context.Context, dir *remoteexecution.Directory) (digest.Digest, error)
	PutTree(ctx context.Context, tree *remoteexecution.Tree) (digest.Digest, error)
}

// NewContentAddressableStorage wraps a blobstore.BlobAccess with the
// typed proto accessors used by the rest of the node.
func NewContentAddressableStorage(blobAccess blobstore.BlobAccess) ContentAddressableStorage {
	return &contentAddressableStorage{BlobAccess: blobAccess}
}

type contentAddressableStorage struct {
	blobstore.BlobAccess
}

func (cas *contentAddressableStorage) getMessage(ctx context.Context, blobDigest digest.Digest, m proto.Message) error {
	data, err := cas.Get(ctx, blobDigest)
	if err != nil {
		return err
	}
	if err := proto.Unmarshal(data, m); err != nil {
		return status.Errorf(codes.InvalidArgument, "failed to unmarshal blob %s: %s", blobDigest, err)
	}
	return nil
}

func (cas *contentAddressableStorage) GetAction(ctx context.Context, blobDigest digest.Digest) (*remoteexecution.Action, error) {
	var action remoteexecution.Action
	if err := cas.getMessage(ctx, blobDigest, &action); err != nil {
		return nil, err
	}
	return &action, nil
}

func (cas *contentAddressableStorage) GetCommand(ctx context.Context, blobDigest digest.Digest) (*remoteexecution.Command, error) {
	var command remoteexecution.Command
	if err := cas.getMessage(ctx, blobDigest, &command); err != nil {
		return nil, err
	}
	return &command, nil
}

func (cas *contentAddressableStorage) GetDirectory(ctx context.Context, blobDigest digest.Digest) (*remoteexecution.Directory, error) {
	var dir remoteexecution.Directory
	if err := cas.getMessage(ctx, blobDigest, &dir); err != nil {
		return nil, err
	}
	return &dir, nil
}

func (cas *contentAddressableStorage) GetTree(ctx context.Context, blobDigest digest.Digest) (*remoteexecution.Tree, error) {
	var tree remoteexecution.Tree
	if err := cas.getMessage(ctx, blobDigest, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

func (cas *contentAddressableStorage) putMessage(ctx context.Context, m proto.Message) (digest.Digest, error) {
	data, err := proto.Marshal(m)
	if err != nil {
		return digest.BadDigest, status.Errorf(codes.Internal, "failed to marshal blob: %s", err)
	}
	return cas.Put(ctx, digest.BadDigest, data)
}

func (cas *contentAddressableStorage) PutDirectory(ctx context.Context, dir *remoteexecution.Directory) (digest.Digest, error) {
	return cas.putMessage(ctx, dir)
}

func (cas *contentAddressableStorage) PutTree(ctx context.Context, tree *remoteexecution.Tree) (digest.Digest, error) {
	return cas.putMessage(ctx, tree)
}
