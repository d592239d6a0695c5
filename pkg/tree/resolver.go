// Package tree implements the recursive expansion of a root Directory
// digest into a flat execution.DirectoryLayout, by walking the Merkle
// DAG of Directory messages stored in the CAS.
package tree

import (
	"context"
	"path"

	"github.com/buildbarn/bb-remote-node/pkg/cas"
	"github.com/buildbarn/bb-remote-node/pkg/digest"
	"github.com/buildbarn/bb-remote-node/pkg/execution"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Resolve expands the Directory message identified by rootDigest into
// a DirectoryLayout whose entry paths are relative to the sandbox
// root. The walk is depth-first: every child-directory node is
// dereferenced through the CAS and recursed into before moving on to
// its siblings. Order of the resulting entries is unspecified.
func Resolve(ctx context.Context, contentAddressableStorage cas.ContentAddressableStorage, rootDigest digest.Digest) (execution.DirectoryLayout, *execution.Error) {
	var layout execution.DirectoryLayout
	if execErr := resolveInto(ctx, contentAddressableStorage, rootDigest, "", &layout); execErr != nil {
		return execution.DirectoryLayout{}, execErr
	}
	return layout, nil
}

func resolveInto(ctx context.Context, contentAddressableStorage cas.ContentAddressableStorage, dirDigest digest.Digest, prefix string, layout *execution.DirectoryLayout) *execution.Error {
	dir, err := contentAddressableStorage.GetDirectory(ctx, dirDigest)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return execution.NewBlobNotFoundError(dirDigest)
		}
		return execution.NewInternalError("failed to fetch directory %s: %s", dirDigest, err)
	}

	for _, file := range dir.Files {
		fileDigest, err := digest.NewDigestFromPartialDigest(file.Digest)
		if err != nil {
			return execution.NewInvalidArgumentError("file %s has invalid digest: %s", file.Name, err)
		}
		layout.Entries = append(layout.Entries, execution.Entry{
			Kind:       execution.EntryFile,
			Path:       path.Join(prefix, file.Name),
			Digest:     fileDigest,
			Executable: file.IsExecutable,
		})
	}

	for _, symlink := range dir.Symlinks {
		layout.Entries = append(layout.Entries, execution.Entry{
			Kind:   execution.EntrySymlink,
			Path:   path.Join(prefix, symlink.Name),
			Target: symlink.Target,
		})
	}

	for _, child := range dir.Directories {
		childPath := path.Join(prefix, child.Name)
		layout.Entries = append(layout.Entries, execution.Entry{
			Kind: execution.EntryDirectory,
			Path: childPath,
		})
		if child.Digest == nil {
			return execution.NewInvalidArgumentError("directory node %s has no digest", childPath)
		}
		childDigest, err := digest.NewDigestFromPartialDigest(child.Digest)
		if err != nil {
			return execution.NewInvalidArgumentError("directory node %s has invalid digest: %s", childPath, err)
		}
		if execErr := resolveInto(ctx, contentAddressableStorage, childDigest, childPath, layout); execErr != nil {
			return execErr
		}
	}

	return nil
}
