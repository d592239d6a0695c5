// Package execution defines the types shared by the tree resolver, the
// execution engine, and the execution backends: the reduced Command
// and DirectoryLayout the engine hands to a backend, and the
// ExecuteResponse/ExecuteError it gets back.
package execution

import (
	"github.com/buildbarn/bb-remote-node/pkg/digest"
)

// Command is the reduced form of a remoteexecution.Command that a
// Backend needs to spawn a child process.
type Command struct {
	Arguments   []string
	EnvVars     map[string]string
	OutputPaths []string
}

// EntryKind distinguishes the three kinds of filesystem object a
// DirectoryLayout entry may describe.
type EntryKind int

const (
	// EntryFile is a regular file backed by a CAS blob.
	EntryFile EntryKind = iota
	// EntryDirectory is an empty directory to create.
	EntryDirectory
	// EntrySymlink is a symbolic link.
	EntrySymlink
)

// Entry is one object to materialize in (or collect from) a sandbox.
// Path is always relative to the sandbox root. For EntryFile, Digest
// and Executable apply. For EntrySymlink, Target holds the literal,
// unresolved link target.
type Entry struct {
	Kind       EntryKind
	Path       string
	Digest     digest.Digest
	Executable bool
	Target     string
}

// DirectoryLayout is the flattened form of an input root: every file,
// directory, and symlink that must exist in the sandbox before the
// command runs, plus the set of paths to collect afterwards.
type DirectoryLayout struct {
	Entries     []Entry
	OutputPaths []string
}

// Response is the outcome of successfully running a command, prior to
// being wrapped into an RBE ActionResult by the service layer.
type Response struct {
	ExitCode    int32
	Stdout      []byte
	Stderr      []byte
	OutputPaths []Entry
}
