package capabilities_test

import (
	"context"
	"testing"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/bazelbuild/remote-apis/build/bazel/semver"
	"github.com/stretchr/testify/require"

	"github.com/buildbarn/bb-remote-node/pkg/capabilities"
)

func TestStaticProviderReturnsFixedCapabilities(t *testing.T) {
	want := &remoteexecution.ServerCapabilities{
		CacheCapabilities: &remoteexecution.CacheCapabilities{
			DigestFunctions: []remoteexecution.DigestFunction_Value{remoteexecution.DigestFunction_SHA256},
		},
		ExecutionCapabilities: &remoteexecution.ExecutionCapabilities{
			DigestFunction: remoteexecution.DigestFunction_SHA256,
			ExecEnabled:    true,
		},
		LowApiVersion:  &semver.SemVer{Major: 2},
		HighApiVersion: &semver.SemVer{Major: 2},
	}

	provider := capabilities.NewStaticProvider(want)
	got, err := provider.GetCapabilities(context.Background(), "main")
	require.NoError(t, err)
	require.Same(t, want, got)

	got, err = provider.GetCapabilities(context.Background(), "some-other-instance")
	require.NoError(t, err)
	require.Same(t, want, got)
}
