package filesystem

import (
	"io"
	"os"

	"github.com/buildbarn/bb-remote-node/pkg/filesystem/path"
)

// CreationMode specifies whether and how Directory.Open*() should
// create new files.
type CreationMode struct {
	flags       int
	permissions os.FileMode
}

// DontCreate indicates that opening should fail in case the target file
// does not exist.
var DontCreate = CreationMode{}

// CreateExcl indicates that a new file should be created. If the target
// file already exists, opening shall fail.
func CreateExcl(perm os.FileMode) CreationMode {
	return CreationMode{flags: os.O_CREATE | os.O_EXCL, permissions: perm}
}

// Directory is an abstraction for accessing a subtree of the file
// system. Each of the functions should be implemented in such a way
// that they reject access to data stored outside of the subtree. This
// allows for safe, race-free traversal of the file system.
//
// By placing this in a separate interface, it's easier to stub out file
// system handling as part of unit tests entirely.
type Directory interface {
	// EnterDirectory creates a derived directory handle for a
	// subdirectory of the current subtree.
	EnterDirectory(name path.Component) (DirectoryCloser, error)

	// Open a file contained within the directory for reading. The
	// CreationMode is assumed to be equal to DontCreate.
	OpenRead(name path.Component) (FileReader, error)
	// Open a file contained within the current directory for writing.
	OpenWrite(name path.Component, creationMode CreationMode) (FileWriter, error)

	// Lstat is the equivalent of os.Lstat().
	Lstat(name path.Component) (FileInfo, error)
	// Mkdir is the equivalent of os.Mkdir().
	Mkdir(name path.Component, perm os.FileMode) error
	// ReadDir is the equivalent of os.ReadDir().
	ReadDir() ([]FileInfo, error)
	// Readlink is the equivalent of os.Readlink().
	Readlink(name path.Component) (string, error)
	// RemoveAll is the equivalent of os.RemoveAll().
	RemoveAll(name path.Component) error
	// Symlink is the equivalent of os.Symlink().
	Symlink(oldName string, newName path.Component) error
}

// DirectoryCloser is a Directory handle that can be released.
type DirectoryCloser interface {
	Directory
	io.Closer
}

type nopDirectoryCloser struct {
	Directory
}

// NopDirectoryCloser adds a no-op Close method to a Directory object,
// similar to how io.NopCloser() adds a Close method to a Reader.
func NopDirectoryCloser(d Directory) DirectoryCloser {
	return nopDirectoryCloser{
		Directory: d,
	}
}

func (d nopDirectoryCloser) Close() error {
	return nil
}
