// Package ac implements the REv2 ActionCache service. This node does
// not carry a persistent result table, so both operations are stubs:
// lookups always miss, and updates are rejected with NotFound.
package ac

import (
	"context"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type actionCacheServer struct {
	remoteexecution.UnimplementedActionCacheServer
}

// NewActionCacheServer creates a gRPC service for the REv2 ActionCache
// service. Results are never cached, so GetActionResult always
// reports a miss and UpdateActionResult never persists anything.
func NewActionCacheServer() remoteexecution.ActionCacheServer {
	return &actionCacheServer{}
}

func (s *actionCacheServer) GetActionResult(ctx context.Context, in *remoteexecution.GetActionResultRequest) (*remoteexecution.ActionResult, error) {
	return nil, status.Error(codes.NotFound, "action result not found")
}

func (s *actionCacheServer) UpdateActionResult(ctx context.Context, in *remoteexecution.UpdateActionResultRequest) (*remoteexecution.ActionResult, error) {
	return nil, status.Error(codes.NotFound, "action cache updates are not supported by this node")
}
