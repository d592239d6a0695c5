package builder

import (
	"context"

	"google.golang.org/genproto/googleapis/longrunning"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type operationsServer struct {
	longrunning.UnimplementedOperationsServer
}

// NewOperationsServer creates a gRPC service for the long-running
// Operations protocol. The node only reports the progress of an
// execution on the Execute() response stream itself; operations cannot
// be looked up, listed or cancelled out of band. GetOperation,
// CancelOperation and DeleteOperation report the operation as unknown
// (NotFound); ListOperations and WaitOperation report Unimplemented.
func NewOperationsServer() longrunning.OperationsServer {
	return &operationsServer{}
}

func (s *operationsServer) GetOperation(ctx context.Context, in *longrunning.GetOperationRequest) (*longrunning.Operation, error) {
	return nil, status.Errorf(codes.NotFound, "operation %#v not found", in.Name)
}

func (s *operationsServer) ListOperations(ctx context.Context, in *longrunning.ListOperationsRequest) (*longrunning.ListOperationsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "listing operations is not supported by this node")
}

func (s *operationsServer) CancelOperation(ctx context.Context, in *longrunning.CancelOperationRequest) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.NotFound, "operation %#v not found", in.Name)
}

func (s *operationsServer) DeleteOperation(ctx context.Context, in *longrunning.DeleteOperationRequest) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.NotFound, "operation %#v not found", in.Name)
}

func (s *operationsServer) WaitOperation(ctx context.Context, in *longrunning.WaitOperationRequest) (*longrunning.Operation, error) {
	return nil, status.Error(codes.Unimplemented, "waiting for operations is not supported by this node")
}
