package capabilities

import (
	"context"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
)

type staticProvider struct {
	capabilities *remoteexecution.ServerCapabilities
}

// NewStaticProvider creates a capabilities provider that returns a
// fixed response, independent of the instance name requested.
func NewStaticProvider(capabilities *remoteexecution.ServerCapabilities) Provider {
	return &staticProvider{
		capabilities: capabilities,
	}
}

func (p *staticProvider) GetCapabilities(ctx context.Context, instanceName string) (*remoteexecution.ServerCapabilities, error) {
	return p.capabilities, nil
}
