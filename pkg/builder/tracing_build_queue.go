package builder

import (
	"context"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracingBuildQueue struct {
	remoteexecution.UnimplementedExecutionServer

	base BuildQueue
}

// NewTracingBuildQueue annotates the active trace span with the
// instance name and, where applicable, the action digest of every
// request handled by base.
func NewTracingBuildQueue(base BuildQueue) BuildQueue {
	return &tracingBuildQueue{
		base: base,
	}
}

func (bq *tracingBuildQueue) GetCapabilities(ctx context.Context, instanceName string) (*remoteexecution.ServerCapabilities, error) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("instance", instanceName))
	return bq.base.GetCapabilities(ctx, instanceName)
}

func (bq *tracingBuildQueue) Execute(in *remoteexecution.ExecuteRequest, out remoteexecution.Execution_ExecuteServer) error {
	trace.SpanFromContext(out.Context()).SetAttributes(
		attribute.String("instance", in.InstanceName),
		attribute.String("digest", in.ActionDigest.GetHash()))
	return bq.base.Execute(in, out)
}

func (bq *tracingBuildQueue) WaitExecution(in *remoteexecution.WaitExecutionRequest, out remoteexecution.Execution_WaitExecutionServer) error {
	trace.SpanFromContext(out.Context()).SetAttributes(
		attribute.String("name", in.Name))
	return bq.base.WaitExecution(in, out)
}
