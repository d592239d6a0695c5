package cas

import (
	"context"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"

	"github.com/buildbarn/bb-remote-node/pkg/digest"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type contentAddressableStorageServer struct {
	remoteexecution.UnimplementedContentAddressableStorageServer

	instanceName string
	cas          ContentAddressableStorage
}

// NewContentAddressableStorageServer creates a gRPC service for the
// REv2 ContentAddressableStorage service: FindMissingBlobs,
// BatchUpdateBlobs and BatchReadBlobs. GetTree responds with
// codes.Unimplemented; clients can expand trees themselves using
// BatchReadBlobs.
func NewContentAddressableStorageServer(instanceName string, cas ContentAddressableStorage) remoteexecution.ContentAddressableStorageServer {
	return &contentAddressableStorageServer{
		instanceName: instanceName,
		cas:          cas,
	}
}

func (s *contentAddressableStorageServer) checkInstance(instanceName string) error {
	if instanceName != s.instanceName {
		return status.Errorf(codes.PermissionDenied, "request sent to invalid instance %#v", instanceName)
	}
	return nil
}

func (s *contentAddressableStorageServer) FindMissingBlobs(ctx context.Context, in *remoteexecution.FindMissingBlobsRequest) (*remoteexecution.FindMissingBlobsResponse, error) {
	if err := s.checkInstance(in.InstanceName); err != nil {
		return nil, err
	}

	digests := make([]digest.Digest, 0, len(in.BlobDigests))
	for _, partialDigest := range in.BlobDigests {
		d, err := digest.NewDigestFromPartialDigest(partialDigest)
		if err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}

	missing, err := s.cas.FindMissing(ctx, digests)
	if err != nil {
		return nil, err
	}

	partialDigests := make([]*remoteexecution.Digest, 0, len(missing))
	for _, d := range missing {
		partialDigests = append(partialDigests, d.GetPartialDigest())
	}
	return &remoteexecution.FindMissingBlobsResponse{
		MissingBlobDigests: partialDigests,
	}, nil
}

func (s *contentAddressableStorageServer) BatchUpdateBlobs(ctx context.Context, in *remoteexecution.BatchUpdateBlobsRequest) (*remoteexecution.BatchUpdateBlobsResponse, error) {
	if err := s.checkInstance(in.InstanceName); err != nil {
		return nil, err
	}

	response := &remoteexecution.BatchUpdateBlobsResponse{
		Responses: make([]*remoteexecution.BatchUpdateBlobsResponse_Response, 0, len(in.Requests)),
	}
	for _, request := range in.Requests {
		expectedDigest, err := digest.NewDigestFromPartialDigest(request.Digest)
		if err == nil {
			_, err = s.cas.Put(ctx, expectedDigest, request.Data)
		}
		entryStatus := status.New(codes.OK, "")
		if err != nil {
			entryStatus = status.Convert(err)
		}
		response.Responses = append(response.Responses, &remoteexecution.BatchUpdateBlobsResponse_Response{
			Digest: request.Digest,
			Status: entryStatus.Proto(),
		})
	}
	return response, nil
}

func (s *contentAddressableStorageServer) BatchReadBlobs(ctx context.Context, in *remoteexecution.BatchReadBlobsRequest) (*remoteexecution.BatchReadBlobsResponse, error) {
	if err := s.checkInstance(in.InstanceName); err != nil {
		return nil, err
	}

	response := &remoteexecution.BatchReadBlobsResponse{
		Responses: make([]*remoteexecution.BatchReadBlobsResponse_Response, 0, len(in.Digests)),
	}
	for _, partialDigest := range in.Digests {
		d, err := digest.NewDigestFromPartialDigest(partialDigest)
		var data []byte
		if err == nil {
			data, err = s.cas.Get(ctx, d)
		}
		entryStatus := status.New(codes.OK, "")
		if err != nil {
			entryStatus = status.Convert(err)
		}
		response.Responses = append(response.Responses, &remoteexecution.BatchReadBlobsResponse_Response{
			Digest:     partialDigest,
			Data:       data,
			Compressor: remoteexecution.Compressor_IDENTITY,
			Status:     entryStatus.Proto(),
		})
	}
	return response, nil
}

func (s *contentAddressableStorageServer) GetTree(in *remoteexecution.GetTreeRequest, stream remoteexecution.ContentAddressableStorage_GetTreeServer) error {
	return status.Error(codes.Unimplemented, "GetTree is not supported by this node")
}
