package tree_test

import (
	"context"
	"testing"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/stretchr/testify/require"

	"github.com/buildbarn/bb-remote-node/pkg/blobstore"
	"github.com/buildbarn/bb-remote-node/pkg/cas"
	"github.com/buildbarn/bb-remote-node/pkg/digest"
	"github.com/buildbarn/bb-remote-node/pkg/execution"
	"github.com/buildbarn/bb-remote-node/pkg/tree"
)

func TestResolveEmptyDirectory(t *testing.T) {
	ctx := context.Background()
	store := cas.NewContentAddressableStorage(blobstore.NewInMemoryBlobAccess())

	rootDigest, err := store.PutDirectory(ctx, &remoteexecution.Directory{})
	require.NoError(t, err)

	layout, execErr := tree.Resolve(ctx, store, rootDigest)
	require.Nil(t, execErr)
	require.Empty(t, layout.Entries)
}

func TestResolveNestedDirectory(t *testing.T) {
	ctx := context.Background()
	store := cas.NewContentAddressableStorage(blobstore.NewInMemoryBlobAccess())

	fileDigest, err := store.Put(ctx, digest.BadDigest, []byte("hello"))
	require.NoError(t, err)

	childDigest, err := store.PutDirectory(ctx, &remoteexecution.Directory{
		Files: []*remoteexecution.FileNode{
			{Name: "hello.txt", Digest: fileDigest.GetPartialDigest()},
		},
		Symlinks: []*remoteexecution.SymlinkNode{
			{Name: "link", Target: "/somewhere"},
		},
	})
	require.NoError(t, err)

	rootDigest, err := store.PutDirectory(ctx, &remoteexecution.Directory{
		Directories: []*remoteexecution.DirectoryNode{
			{Name: "sub", Digest: childDigest.GetPartialDigest()},
		},
	})
	require.NoError(t, err)

	layout, execErr := tree.Resolve(ctx, store, rootDigest)
	require.Nil(t, execErr)
	require.Len(t, layout.Entries, 3)

	byPath := map[string]execution.Entry{}
	for _, e := range layout.Entries {
		byPath[e.Path] = e
	}
	require.Contains(t, byPath, "sub")
	require.Equal(t, execution.EntryDirectory, byPath["sub"].Kind)
	require.Contains(t, byPath, "sub/hello.txt")
	require.Equal(t, fileDigest, byPath["sub/hello.txt"].Digest)
	require.Contains(t, byPath, "sub/link")
	require.Equal(t, "/somewhere", byPath["sub/link"].Target)
}

func TestResolveMissingDirectory(t *testing.T) {
	ctx := context.Background()
	store := cas.NewContentAddressableStorage(blobstore.NewInMemoryBlobAccess())

	missing := digest.MustNewDigest("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 5)
	_, execErr := tree.Resolve(ctx, store, missing)
	require.NotNil(t, execErr)
	require.Equal(t, execution.KindBlobNotFound, execErr.Kind)
	require.Equal(t, missing, execErr.Digest)
}

func TestResolveDirectoryNodeMissingDigest(t *testing.T) {
	ctx := context.Background()
	store := cas.NewContentAddressableStorage(blobstore.NewInMemoryBlobAccess())

	rootDigest, err := store.PutDirectory(ctx, &remoteexecution.Directory{
		Directories: []*remoteexecution.DirectoryNode{
			{Name: "sub"},
		},
	})
	require.NoError(t, err)

	_, execErr := tree.Resolve(ctx, store, rootDigest)
	require.NotNil(t, execErr)
	require.Equal(t, execution.KindInvalidArgument, execErr.Kind)
}
