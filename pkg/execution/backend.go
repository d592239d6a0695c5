package execution

import "context"

// Backend is an execution variant: given a command and the resolved
// input layout, materialize a sandbox, run the command, and collect
// its declared outputs back into the CAS. The insecure backend is the
// only variant implemented today; a hermetic backend is future work
// with an identical interface.
type Backend interface {
	RunCommand(ctx context.Context, command Command, layout DirectoryLayout) (Response, *Error)
}
