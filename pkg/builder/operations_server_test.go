package builder_test

import (
	"context"
	"testing"

	"github.com/buildbarn/bb-remote-node/pkg/builder"
	"github.com/stretchr/testify/require"

	"google.golang.org/genproto/googleapis/longrunning"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestOperationsServerReportsOperationsAsUnknown(t *testing.T) {
	ctx := context.Background()
	server := builder.NewOperationsServer()

	_, err := server.GetOperation(ctx, &longrunning.GetOperationRequest{
		Name: "operations/df4ac881-04f1-4e61-a29c-9a99bcbc4839",
	})
	require.Equal(t, codes.NotFound, status.Code(err))

	_, err = server.CancelOperation(ctx, &longrunning.CancelOperationRequest{
		Name: "operations/df4ac881-04f1-4e61-a29c-9a99bcbc4839",
	})
	require.Equal(t, codes.NotFound, status.Code(err))

	_, err = server.ListOperations(ctx, &longrunning.ListOperationsRequest{})
	require.Equal(t, codes.Unimplemented, status.Code(err))
}
