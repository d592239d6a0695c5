// Package capabilities implements the REv2 Capabilities service: a
// single static response describing the digest function, execution,
// and action-cache support offered by this node.
package capabilities

import (
	"context"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
)

// Provider of a ServerCapabilities message for a given instance name.
type Provider interface {
	GetCapabilities(ctx context.Context, instanceName string) (*remoteexecution.ServerCapabilities, error)
}
