package cas

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/buildbarn/bb-remote-node/pkg/digest"

	"google.golang.org/genproto/googleapis/bytestream"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const byteStreamReadChunkSizeBytes = 64 * 1024

type byteStreamServer struct {
	bytestream.UnimplementedByteStreamServer

	cas ContentAddressableStorage
}

// NewByteStreamServer creates a gRPC service implementing the subset of
// the Google ByteStream protocol needed by REv2 clients to read and
// write CAS blobs: full-file Read and single-shot Write.
// QueryWriteStatus is not supported, since this node never needs to
// resume an interrupted upload.
func NewByteStreamServer(cas ContentAddressableStorage) bytestream.ByteStreamServer {
	return &byteStreamServer{cas: cas}
}

// parseReadResourceName parses resource names of the form
// "[<instance>/]blobs/<hash>/<size>".
func parseReadResourceName(resourceName string) (digest.Digest, error) {
	fields := strings.Split(resourceName, "/")
	l := len(fields)
	if l < 3 || fields[l-3] != "blobs" {
		return digest.BadDigest, status.Error(codes.InvalidArgument, "invalid resource naming scheme")
	}
	sizeBytes, err := strconv.ParseInt(fields[l-1], 10, 64)
	if err != nil {
		return digest.BadDigest, status.Error(codes.InvalidArgument, "invalid resource naming scheme")
	}
	return digest.NewDigest(fields[l-2], sizeBytes)
}

// parseWriteResourceName parses resource names of the form
// "[<instance>/]uploads/<uuid>/blobs/<hash>/<size>".
func parseWriteResourceName(resourceName string) (digest.Digest, error) {
	fields := strings.Split(resourceName, "/")
	l := len(fields)
	if l < 5 || fields[l-5] != "uploads" || fields[l-3] != "blobs" {
		return digest.BadDigest, status.Error(codes.InvalidArgument, "invalid resource naming scheme")
	}
	sizeBytes, err := strconv.ParseInt(fields[l-1], 10, 64)
	if err != nil {
		return digest.BadDigest, status.Error(codes.InvalidArgument, "invalid resource naming scheme")
	}
	return digest.NewDigest(fields[l-2], sizeBytes)
}

func (s *byteStreamServer) Read(in *bytestream.ReadRequest, out bytestream.ByteStream_ReadServer) error {
	if in.ReadOffset != 0 || in.ReadLimit != 0 {
		return status.Error(codes.Unimplemented, "this service does not support partial reads")
	}

	d, err := parseReadResourceName(in.ResourceName)
	if err != nil {
		return err
	}
	data, err := s.cas.Get(out.Context(), d)
	if err != nil {
		return err
	}

	for len(data) > 0 {
		n := byteStreamReadChunkSizeBytes
		if n > len(data) {
			n = len(data)
		}
		if err := out.Send(&bytestream.ReadResponse{Data: data[:n]}); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func (s *byteStreamServer) Write(stream bytestream.ByteStream_WriteServer) error {
	var expectedDigest digest.Digest
	var data []byte
	for {
		request, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				return status.Error(codes.InvalidArgument, "client closed stream without finishing write")
			}
			return err
		}
		if expectedDigest.IsZero() {
			expectedDigest, err = parseWriteResourceName(request.ResourceName)
			if err != nil {
				return err
			}
		}
		if request.WriteOffset != int64(len(data)) {
			return status.Errorf(codes.InvalidArgument, "attempted to write at offset %d, while %d was expected", request.WriteOffset, len(data))
		}
		data = append(data, request.Data...)
		if request.FinishWrite {
			actualDigest, err := s.cas.Put(stream.Context(), expectedDigest, data)
			if err != nil {
				return err
			}
			return stream.SendAndClose(&bytestream.WriteResponse{
				CommittedSize: actualDigest.GetSizeBytes(),
			})
		}
	}
}

func (s *byteStreamServer) QueryWriteStatus(ctx context.Context, in *bytestream.QueryWriteStatusRequest) (*bytestream.QueryWriteStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "this service does not support resumable writes")
}
