package execution

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/buildbarn/bb-remote-node/pkg/cas"
	"github.com/buildbarn/bb-remote-node/pkg/digest"
	"github.com/buildbarn/bb-remote-node/pkg/filesystem"
	"github.com/buildbarn/bb-remote-node/pkg/filesystem/path"
	"github.com/buildbarn/bb-remote-node/pkg/random"
)

// InsecureBackend is the reference Backend: it provides no isolation
// beyond a private sandbox directory. Inputs are materialized as plain
// files on the local file system and the command is run as a direct
// child process of the node.
type InsecureBackend struct {
	cas                cas.ContentAddressableStorage
	buildDirectory     filesystem.Directory
	buildDirectoryPath string
	keepSandbox        bool
}

// NewInsecureBackend creates an InsecureBackend backed by the given
// CAS. Sandboxes are created as subdirectories of buildDirectory,
// whose location on the local file system is buildDirectoryPath. When
// keepSandbox is true the sandbox directory is left on disk after the
// execution completes, to aid debugging; this is a test-only
// affordance and must not be enabled in production.
func NewInsecureBackend(contentAddressableStorage cas.ContentAddressableStorage, buildDirectory filesystem.Directory, buildDirectoryPath string, keepSandbox bool) *InsecureBackend {
	return &InsecureBackend{
		cas:                contentAddressableStorage,
		buildDirectory:     buildDirectory,
		buildDirectoryPath: buildDirectoryPath,
		keepSandbox:        keepSandbox,
	}
}

// RunCommand implements Backend.
func (b *InsecureBackend) RunCommand(ctx context.Context, command Command, layout DirectoryLayout) (Response, *Error) {
	if len(command.Arguments) == 0 {
		return Response{}, NewInvalidArgumentError("command has no arguments")
	}

	sandboxName := path.MustNewComponent(fmt.Sprintf("sandbox.%016x", random.FastThreadSafeGenerator.Uint64()))
	if err := b.buildDirectory.Mkdir(sandboxName, 0o777); err != nil {
		return Response{}, NewIOError(err)
	}
	root, err := b.buildDirectory.EnterDirectory(sandboxName)
	if err != nil {
		return Response{}, NewIOError(err)
	}
	defer func() {
		root.Close()
		if !b.keepSandbox {
			b.buildDirectory.RemoveAll(sandboxName)
		}
	}()

	if execErr := b.materialize(ctx, root, layout); execErr != nil {
		return Response{}, execErr
	}

	cmd := exec.CommandContext(ctx, command.Arguments[0], command.Arguments[1:]...)
	cmd.Dir = filepath.Join(b.buildDirectoryPath, sandboxName.String())
	cmd.Env = make([]string, 0, len(command.EnvVars))
	for name, value := range command.EnvVars {
		cmd.Env = append(cmd.Env, name+"="+value)
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	exitCode, runErr := runAndCaptureExitCode(cmd)
	if runErr != nil {
		return Response{}, NewIOError(runErr)
	}

	outputEntries, execErr := b.collectOutputs(ctx, root, layout.OutputPaths)
	if execErr != nil {
		return Response{}, execErr
	}

	return Response{
		ExitCode:    exitCode,
		Stdout:      outBuf.Bytes(),
		Stderr:      errBuf.Bytes(),
		OutputPaths: outputEntries,
	}, nil
}

// runAndCaptureExitCode runs cmd and returns its exit code. A non-zero
// exit is not an error: only a failure to start or wait on the process
// (not attributable to the command itself) is returned as err.
func runAndCaptureExitCode(cmd *exec.Cmd) (int32, error) {
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return int32(exitErr.ExitCode()), nil
	}
	return 0, err
}

// splitPath converts a slash-separated relative path received over the
// wire into a list of pathname components. Empty components, "." and
// ".." are rejected, so that neither inputs nor declared outputs can
// escape the sandbox.
func splitPath(p string) ([]path.Component, *Error) {
	parts := strings.Split(p, "/")
	components := make([]path.Component, 0, len(parts))
	for _, part := range parts {
		component, ok := path.NewComponent(part)
		if !ok {
			return nil, NewInvalidArgumentError("path %#v contains invalid component %#v", p, part)
		}
		components = append(components, component)
	}
	return components, nil
}

// enterCreatingParents walks to the directory that holds the final
// component of components, creating intermediate directories along the
// way. The caller must close the returned handle.
func enterCreatingParents(root filesystem.Directory, components []path.Component) (filesystem.DirectoryCloser, *Error) {
	d := filesystem.NopDirectoryCloser(root)
	for _, component := range components[:len(components)-1] {
		if err := d.Mkdir(component, 0o777); err != nil && !os.IsExist(err) {
			d.Close()
			return nil, NewIOError(err)
		}
		child, err := d.EnterDirectory(component)
		d.Close()
		if err != nil {
			return nil, NewIOError(err)
		}
		d = child
	}
	return d, nil
}

func (b *InsecureBackend) materialize(ctx context.Context, root filesystem.Directory, layout DirectoryLayout) *Error {
	for _, entry := range layout.Entries {
		components, execErr := splitPath(entry.Path)
		if execErr != nil {
			return execErr
		}
		d, execErr := enterCreatingParents(root, components)
		if execErr != nil {
			return execErr
		}
		leaf := components[len(components)-1]

		switch entry.Kind {
		case EntryDirectory:
			if err := d.Mkdir(leaf, 0o777); err != nil && !os.IsExist(err) {
				d.Close()
				return NewIOError(err)
			}
		case EntryFile:
			data, err := b.cas.Get(ctx, entry.Digest)
			if err != nil {
				d.Close()
				if status.Code(err) == codes.NotFound {
					return NewBlobNotFoundError(entry.Digest)
				}
				return NewIOError(err)
			}
			mode := os.FileMode(0o666)
			if entry.Executable {
				mode = 0o777
			}
			if err := writeFileContents(d, leaf, mode, data); err != nil {
				d.Close()
				return NewIOError(err)
			}
		case EntrySymlink:
			if err := d.Symlink(entry.Target, leaf); err != nil {
				d.Close()
				return NewIOError(err)
			}
		}
		d.Close()
	}

	// Directories leading up to the declared output paths are
	// created by the worker even when they are not part of the
	// input root.
	for _, outputPath := range layout.OutputPaths {
		components, execErr := splitPath(outputPath)
		if execErr != nil {
			return execErr
		}
		d, execErr := enterCreatingParents(root, components)
		if execErr != nil {
			return execErr
		}
		d.Close()
	}
	return nil
}

func writeFileContents(d filesystem.Directory, name path.Component, mode os.FileMode, data []byte) error {
	f, err := d.OpenWrite(name, filesystem.CreateExcl(mode))
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readFileContents(d filesystem.Directory, name path.Component) ([]byte, error) {
	f, err := d.OpenRead(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var data []byte
	buf := make([]byte, 64*1024)
	for offset := int64(0); ; {
		n, err := f.ReadAt(buf, offset)
		data = append(data, buf[:n]...)
		offset += int64(n)
		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// collectOutputs inspects each declared output path under root and
// re-ingests it into the CAS. A missing declared output is silently
// omitted, per the lenient default permitted by the protocol.
func (b *InsecureBackend) collectOutputs(ctx context.Context, root filesystem.Directory, outputPaths []string) ([]Entry, *Error) {
	var entries []Entry
	for _, outputPath := range outputPaths {
		components, execErr := splitPath(outputPath)
		if execErr != nil {
			return nil, execErr
		}
		d, execErr := enterCreatingParents(root, components)
		if execErr != nil {
			return nil, execErr
		}
		leaf := components[len(components)-1]

		info, err := d.Lstat(leaf)
		if err != nil {
			d.Close()
			if os.IsNotExist(err) {
				continue
			}
			return nil, NewIOError(err)
		}

		switch info.Type() {
		case filesystem.FileTypeSymlink:
			target, err := d.Readlink(leaf)
			d.Close()
			if err != nil {
				return nil, NewIOError(err)
			}
			entries = append(entries, Entry{Kind: EntrySymlink, Path: outputPath, Target: target})
		case filesystem.FileTypeDirectory:
			outputDirectory, err := d.EnterDirectory(leaf)
			d.Close()
			if err != nil {
				return nil, NewIOError(err)
			}
			treeDigest, execErr := b.uploadDirectoryTree(ctx, outputDirectory)
			outputDirectory.Close()
			if execErr != nil {
				return nil, execErr
			}
			entries = append(entries, Entry{Kind: EntryDirectory, Path: outputPath, Digest: treeDigest})
		case filesystem.FileTypeRegularFile:
			data, err := readFileContents(d, leaf)
			d.Close()
			if err != nil {
				return nil, NewIOError(err)
			}
			blobDigest, err := b.cas.Put(ctx, digest.BadDigest, data)
			if err != nil {
				return nil, NewInternalError("failed to upload output file %s: %s", outputPath, err)
			}
			entries = append(entries, Entry{
				Kind:       EntryFile,
				Path:       outputPath,
				Digest:     blobDigest,
				Executable: info.IsExecutable(),
			})
		default:
			d.Close()
			return nil, NewInvalidArgumentError("output path %#v is not a regular file, directory or symbolic link", outputPath)
		}
	}
	return entries, nil
}

// uploadDirectoryTree walks an output directory, uploading a Directory
// message per level and assembling a Tree message covering the whole
// subtree. It returns the digest of the uploaded Tree.
func (b *InsecureBackend) uploadDirectoryTree(ctx context.Context, d filesystem.Directory) (digest.Digest, *Error) {
	root, children, execErr := b.collectDirectory(ctx, d)
	if execErr != nil {
		return digest.BadDigest, execErr
	}
	treeDigest, err := b.cas.PutTree(ctx, &remoteexecution.Tree{
		Root:     root,
		Children: children,
	})
	if err != nil {
		return digest.BadDigest, NewInternalError("failed to upload output tree: %s", err)
	}
	return treeDigest, nil
}

// collectDirectory recursively encodes one file system level as a
// Directory message, uploading every descendant level's blob along the
// way, and returns the root level plus the flattened list of all
// descendant Directory messages (for embedding in a Tree).
func (b *InsecureBackend) collectDirectory(ctx context.Context, d filesystem.Directory) (*remoteexecution.Directory, []*remoteexecution.Directory, *Error) {
	infos, err := d.ReadDir()
	if err != nil {
		return nil, nil, NewIOError(err)
	}

	dir := &remoteexecution.Directory{}
	var children []*remoteexecution.Directory
	for _, info := range infos {
		name := info.Name()
		switch info.Type() {
		case filesystem.FileTypeSymlink:
			target, err := d.Readlink(name)
			if err != nil {
				return nil, nil, NewIOError(err)
			}
			dir.Symlinks = append(dir.Symlinks, &remoteexecution.SymlinkNode{
				Name:   name.String(),
				Target: target,
			})
		case filesystem.FileTypeDirectory:
			child, err := d.EnterDirectory(name)
			if err != nil {
				return nil, nil, NewIOError(err)
			}
			childDir, grandchildren, execErr := b.collectDirectory(ctx, child)
			child.Close()
			if execErr != nil {
				return nil, nil, execErr
			}
			childDigest, err := b.cas.PutDirectory(ctx, childDir)
			if err != nil {
				return nil, nil, NewInternalError("failed to upload directory %s: %s", name, err)
			}
			dir.Directories = append(dir.Directories, &remoteexecution.DirectoryNode{
				Name:   name.String(),
				Digest: childDigest.GetPartialDigest(),
			})
			children = append(children, childDir)
			children = append(children, grandchildren...)
		case filesystem.FileTypeRegularFile:
			data, err := readFileContents(d, name)
			if err != nil {
				return nil, nil, NewIOError(err)
			}
			blobDigest, err := b.cas.Put(ctx, digest.BadDigest, data)
			if err != nil {
				return nil, nil, NewInternalError("failed to upload file %s: %s", name, err)
			}
			dir.Files = append(dir.Files, &remoteexecution.FileNode{
				Name:         name.String(),
				Digest:       blobDigest.GetPartialDigest(),
				IsExecutable: info.IsExecutable(),
			})
		}
	}
	return dir, children, nil
}
