package execution_test

import (
	"context"
	"testing"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/stretchr/testify/require"

	"github.com/buildbarn/bb-remote-node/pkg/blobstore"
	"github.com/buildbarn/bb-remote-node/pkg/cas"
	"github.com/buildbarn/bb-remote-node/pkg/digest"
	"github.com/buildbarn/bb-remote-node/pkg/execution"
	"github.com/buildbarn/bb-remote-node/pkg/filesystem"
)

func newTestBackend(t *testing.T, store cas.ContentAddressableStorage) *execution.InsecureBackend {
	buildDirectoryPath := t.TempDir()
	buildDirectory, err := filesystem.NewLocalDirectory(buildDirectoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { buildDirectory.Close() })
	return execution.NewInsecureBackend(store, buildDirectory, buildDirectoryPath, false)
}

func TestInsecureBackendProducesFile(t *testing.T) {
	ctx := context.Background()
	store := cas.NewContentAddressableStorage(blobstore.NewInMemoryBlobAccess())
	backend := newTestBackend(t, store)

	resp, execErr := backend.RunCommand(ctx, execution.Command{
		Arguments:   []string{"/bin/sh", "-c", "echo magic > out.txt"},
		OutputPaths: []string{"out.txt"},
	}, execution.DirectoryLayout{OutputPaths: []string{"out.txt"}})
	require.Nil(t, execErr)
	require.Equal(t, int32(0), resp.ExitCode)
	require.Len(t, resp.OutputPaths, 1)

	out := resp.OutputPaths[0]
	require.Equal(t, execution.EntryFile, out.Kind)
	require.Equal(t, "out.txt", out.Path)

	data, err := store.Get(ctx, out.Digest)
	require.NoError(t, err)
	require.Equal(t, []byte("magic\n"), data)
}

func TestInsecureBackendMaterializesInputs(t *testing.T) {
	ctx := context.Background()
	store := cas.NewContentAddressableStorage(blobstore.NewInMemoryBlobAccess())
	backend := newTestBackend(t, store)

	inputDigest, err := store.Put(ctx, digest.BadDigest, []byte("tool contents\n"))
	require.NoError(t, err)

	resp, execErr := backend.RunCommand(ctx, execution.Command{
		Arguments:   []string{"/bin/sh", "-c", "cat bin/tool.txt link.txt > out.txt; test -d empty"},
		OutputPaths: []string{"out.txt"},
	}, execution.DirectoryLayout{
		Entries: []execution.Entry{
			{Kind: execution.EntryDirectory, Path: "bin"},
			{Kind: execution.EntryFile, Path: "bin/tool.txt", Digest: inputDigest},
			{Kind: execution.EntrySymlink, Path: "link.txt", Target: "bin/tool.txt"},
			{Kind: execution.EntryDirectory, Path: "empty"},
		},
		OutputPaths: []string{"out.txt"},
	})
	require.Nil(t, execErr)
	require.Equal(t, int32(0), resp.ExitCode)
	require.Len(t, resp.OutputPaths, 1)

	data, err := store.Get(ctx, resp.OutputPaths[0].Digest)
	require.NoError(t, err)
	require.Equal(t, []byte("tool contents\ntool contents\n"), data)
}

func TestInsecureBackendProducesDirectoryTree(t *testing.T) {
	ctx := context.Background()
	store := cas.NewContentAddressableStorage(blobstore.NewInMemoryBlobAccess())
	backend := newTestBackend(t, store)

	script := `
set -e
mkdir -p a/b/dir/foo
echo -n "bar bar bar
" > a/b/dir/bar
echo -n "baz baz baz
" > a/b/dir/foo/baz
`
	resp, execErr := backend.RunCommand(ctx, execution.Command{
		Arguments:   []string{"/bin/sh", "-c", script},
		OutputPaths: []string{"a/b/dir"},
	}, execution.DirectoryLayout{OutputPaths: []string{"a/b/dir"}})
	require.Nil(t, execErr)
	require.Equal(t, int32(0), resp.ExitCode)
	require.Len(t, resp.OutputPaths, 1)

	out := resp.OutputPaths[0]
	require.Equal(t, execution.EntryDirectory, out.Kind)
	require.Equal(t, "a/b/dir", out.Path)

	tree, err := store.GetTree(ctx, out.Digest)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)

	contents := map[string]string{}
	readFile := func(dir *remoteexecution.Directory, prefix string) {
		for _, f := range dir.Files {
			d, err := digest.NewDigestFromPartialDigest(f.Digest)
			require.NoError(t, err)
			data, err := store.Get(ctx, d)
			require.NoError(t, err)
			contents[prefix+f.Name] = string(data)
		}
	}
	readFile(tree.Root, "")
	require.Len(t, tree.Root.Directories, 1)
	require.Equal(t, "foo", tree.Root.Directories[0].Name)
	readFile(tree.Children[0], "foo/")

	require.Equal(t, map[string]string{
		"bar":     "bar bar bar\n",
		"foo/baz": "baz baz baz\n",
	}, contents)
}

func TestInsecureBackendMissingOutputIsOmitted(t *testing.T) {
	ctx := context.Background()
	store := cas.NewContentAddressableStorage(blobstore.NewInMemoryBlobAccess())
	backend := newTestBackend(t, store)

	resp, execErr := backend.RunCommand(ctx, execution.Command{
		Arguments:   []string{"/bin/sh", "-c", "true"},
		OutputPaths: []string{"never-created.txt"},
	}, execution.DirectoryLayout{OutputPaths: []string{"never-created.txt"}})
	require.Nil(t, execErr)
	require.Equal(t, int32(0), resp.ExitCode)
	require.Empty(t, resp.OutputPaths)
}

func TestInsecureBackendNonZeroExitIsNotAnError(t *testing.T) {
	ctx := context.Background()
	store := cas.NewContentAddressableStorage(blobstore.NewInMemoryBlobAccess())
	backend := newTestBackend(t, store)

	resp, execErr := backend.RunCommand(ctx, execution.Command{
		Arguments: []string{"/bin/sh", "-c", "exit 7"},
	}, execution.DirectoryLayout{})
	require.Nil(t, execErr)
	require.Equal(t, int32(7), resp.ExitCode)
}

func TestInsecureBackendMissingInputBlob(t *testing.T) {
	ctx := context.Background()
	store := cas.NewContentAddressableStorage(blobstore.NewInMemoryBlobAccess())
	backend := newTestBackend(t, store)

	missing := digest.MustNewDigest("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 5)
	_, execErr := backend.RunCommand(ctx, execution.Command{
		Arguments: []string{"/bin/true"},
	}, execution.DirectoryLayout{
		Entries: []execution.Entry{
			{Kind: execution.EntryFile, Path: "input.txt", Digest: missing},
		},
	})
	require.NotNil(t, execErr)
	require.Equal(t, execution.KindBlobNotFound, execErr.Kind)
	require.Equal(t, missing, execErr.Digest)
}

func TestInsecureBackendRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	store := cas.NewContentAddressableStorage(blobstore.NewInMemoryBlobAccess())
	backend := newTestBackend(t, store)

	inputDigest, err := store.Put(ctx, digest.BadDigest, []byte("data"))
	require.NoError(t, err)

	_, execErr := backend.RunCommand(ctx, execution.Command{
		Arguments: []string{"/bin/true"},
	}, execution.DirectoryLayout{
		Entries: []execution.Entry{
			{Kind: execution.EntryFile, Path: "../escape.txt", Digest: inputDigest},
		},
	})
	require.NotNil(t, execErr)
	require.Equal(t, execution.KindInvalidArgument, execErr.Kind)
}
