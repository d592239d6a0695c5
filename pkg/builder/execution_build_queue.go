// Package builder implements the RBE Execution service: it translates
// ExecuteRequest messages into engine.Engine calls and converts the
// resulting lifecycle events into a stream of Operation messages.
package builder

import (
	"context"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"google.golang.org/genproto/googleapis/longrunning"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/buildbarn/bb-remote-node/pkg/capabilities"
	"github.com/buildbarn/bb-remote-node/pkg/cas"
	"github.com/buildbarn/bb-remote-node/pkg/digest"
	"github.com/buildbarn/bb-remote-node/pkg/engine"
	"github.com/buildbarn/bb-remote-node/pkg/execution"
	"github.com/buildbarn/bb-remote-node/pkg/tree"
)

type executionBuildQueue struct {
	remoteexecution.UnimplementedExecutionServer

	instanceName string
	cas          cas.ContentAddressableStorage
	engine       *engine.Engine
	capabilities capabilities.Provider
}

// NewExecutionBuildQueue creates a BuildQueue that accepts
// ExecuteRequests for a single instance name, resolves them into
// engine calls against cas, and streams the resulting lifecycle events
// back as Operation messages.
func NewExecutionBuildQueue(instanceName string, contentAddressableStorage cas.ContentAddressableStorage, executionEngine *engine.Engine, capabilitiesProvider capabilities.Provider) BuildQueue {
	return &executionBuildQueue{
		instanceName: instanceName,
		cas:          contentAddressableStorage,
		engine:       executionEngine,
		capabilities: capabilitiesProvider,
	}
}

func (bq *executionBuildQueue) GetCapabilities(ctx context.Context, instanceName string) (*remoteexecution.ServerCapabilities, error) {
	return bq.capabilities.GetCapabilities(ctx, instanceName)
}

func (bq *executionBuildQueue) Execute(in *remoteexecution.ExecuteRequest, out remoteexecution.Execution_ExecuteServer) error {
	if in.InstanceName != bq.instanceName {
		return status.Errorf(codes.PermissionDenied, "request sent to invalid instance %#v", in.InstanceName)
	}

	ctx := out.Context()
	events := bq.engine.Execute(ctx, bq.setup(in))
	for evt := range events {
		op, err := eventToOperation(evt)
		if err != nil {
			return err
		}
		if err := out.Send(op); err != nil {
			return err
		}
	}
	return nil
}

func (bq *executionBuildQueue) WaitExecution(in *remoteexecution.WaitExecutionRequest, out remoteexecution.Execution_WaitExecutionServer) error {
	return status.Error(codes.NotFound, "reattaching to a running operation is not supported by this node")
}

// setup returns the engine.SetupFunc that resolves an ExecuteRequest
// into the (action digest, Command, DirectoryLayout) triple the engine
// needs to drive an execution, per the REv2 Execute contract.
func (bq *executionBuildQueue) setup(in *remoteexecution.ExecuteRequest) engine.SetupFunc {
	return func(ctx context.Context) (digest.Digest, execution.Command, execution.DirectoryLayout, *execution.Error) {
		actionDigest, err := digest.NewDigestFromPartialDigest(in.ActionDigest)
		if err != nil {
			return digest.BadDigest, execution.Command{}, execution.DirectoryLayout{}, execution.NewInvalidArgumentError("invalid action digest: %s", err)
		}

		action, execErr := bq.getAction(ctx, actionDigest)
		if execErr != nil {
			return actionDigest, execution.Command{}, execution.DirectoryLayout{}, execErr
		}

		commandDigest, err := digest.NewDigestFromPartialDigest(action.CommandDigest)
		if err != nil {
			return actionDigest, execution.Command{}, execution.DirectoryLayout{}, execution.NewInvalidArgumentError("action has invalid command digest: %s", err)
		}
		command, execErr := bq.getCommand(ctx, commandDigest)
		if execErr != nil {
			return actionDigest, execution.Command{}, execution.DirectoryLayout{}, execErr
		}

		if len(command.OutputFiles) > 0 || len(command.OutputDirectories) > 0 {
			return actionDigest, execution.Command{}, execution.DirectoryLayout{}, execution.NewInvalidArgumentError(
				"command uses the deprecated output_files/output_directories fields; only output_paths is supported")
		}
		if len(command.OutputPaths) == 0 {
			return actionDigest, execution.Command{}, execution.DirectoryLayout{}, execution.NewInvalidArgumentError("command declares no output_paths")
		}

		rootDigest, err := digest.NewDigestFromPartialDigest(action.InputRootDigest)
		if err != nil {
			return actionDigest, execution.Command{}, execution.DirectoryLayout{}, execution.NewInvalidArgumentError("action has invalid input root digest: %s", err)
		}
		layout, execErr := tree.Resolve(ctx, bq.cas, rootDigest)
		if execErr != nil {
			return actionDigest, execution.Command{}, execution.DirectoryLayout{}, execErr
		}
		layout.OutputPaths = command.OutputPaths

		envVars := make(map[string]string, len(command.EnvironmentVariables))
		for _, v := range command.EnvironmentVariables {
			envVars[v.Name] = v.Value
		}

		return actionDigest, execution.Command{
			Arguments:   command.Arguments,
			EnvVars:     envVars,
			OutputPaths: command.OutputPaths,
		}, layout, nil
	}
}

func (bq *executionBuildQueue) getAction(ctx context.Context, d digest.Digest) (*remoteexecution.Action, *execution.Error) {
	action, err := bq.cas.GetAction(ctx, d)
	if err != nil {
		return nil, blobNotFoundOrInternal(err, d)
	}
	return action, nil
}

func (bq *executionBuildQueue) getCommand(ctx context.Context, d digest.Digest) (*remoteexecution.Command, *execution.Error) {
	command, err := bq.cas.GetCommand(ctx, d)
	if err != nil {
		return nil, blobNotFoundOrInternal(err, d)
	}
	return command, nil
}

func blobNotFoundOrInternal(err error, d digest.Digest) *execution.Error {
	if status.Code(err) == codes.NotFound {
		return execution.NewBlobNotFoundError(d)
	}
	return execution.NewInternalError("failed to fetch %s: %s", d, err)
}

const (
	typeURLExecuteOperationMetadata = "type.googleapis.com/build.bazel.remote.execution.v2.ExecuteOperationMetadata"
	typeURLExecuteResponse          = "type.googleapis.com/build.bazel.remote.execution.v2.ExecuteResponse"
	typeURLPreconditionFailure      = "type.googleapis.com/com.google.rpc.PreconditionFailure"
)

// eventToOperation converts a single engine.Status event into the
// Operation message sent over the Execute response stream.
func eventToOperation(evt engine.Status) (*longrunning.Operation, error) {
	var stage remoteexecution.ExecutionStage_Value
	var done bool
	var executeResponse *remoteexecution.ExecuteResponse

	switch evt.Stage {
	case engine.StageQueued:
		stage = remoteexecution.ExecutionStage_QUEUED
	case engine.StageRunning:
		stage = remoteexecution.ExecutionStage_EXECUTING
	case engine.StageDone:
		stage = remoteexecution.ExecutionStage_COMPLETED
		done = true
		executeResponse = &remoteexecution.ExecuteResponse{
			Result:       actionResultFromResponse(evt.Response),
			CachedResult: false,
			Status:       &spb.Status{Code: int32(codes.OK)},
		}
	case engine.StageError:
		stage = remoteexecution.ExecutionStage_UNKNOWN
		done = true
		executeResponse = &remoteexecution.ExecuteResponse{
			CachedResult: false,
			Status:       statusFromExecutionError(evt.Err),
		}
	}

	metadata, err := anypb.New(&remoteexecution.ExecuteOperationMetadata{
		Stage:        stage,
		ActionDigest: evt.ActionDigest.GetPartialDigest(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to marshal execute operation metadata: %s", err)
	}
	metadata.TypeUrl = typeURLExecuteOperationMetadata

	op := &longrunning.Operation{
		Name:     "operations/" + evt.UUID.String(),
		Done:     done,
		Metadata: metadata,
	}
	if executeResponse != nil {
		result, err := anypb.New(executeResponse)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "failed to marshal execute response: %s", err)
		}
		result.TypeUrl = typeURLExecuteResponse
		op.Result = &longrunning.Operation_Response{Response: result}
	}
	return op, nil
}

// statusFromExecutionError maps an execution.Error discovered after
// the engine has accepted a request onto the embedded status of a
// terminal ExecuteResponse. This is distinct from RPC-level errors,
// which are only used for rejections before acceptance (instance name
// mismatch).
func statusFromExecutionError(err *execution.Error) *spb.Status {
	if err == nil {
		return &spb.Status{Code: int32(codes.Internal), Message: "missing error detail"}
	}
	switch err.Kind {
	case execution.KindInvalidArgument:
		return &spb.Status{Code: int32(codes.InvalidArgument), Message: err.Error()}
	case execution.KindBlobNotFound:
		violation, marshalErr := anypb.New(&errdetails.PreconditionFailure{
			Violations: []*errdetails.PreconditionFailure_Violation{
				{
					Type:    "MISSING",
					Subject: err.Digest.GetByteStreamSubject(),
				},
			},
		})
		s := &spb.Status{Code: int32(codes.FailedPrecondition), Message: err.Error()}
		if marshalErr == nil {
			violation.TypeUrl = typeURLPreconditionFailure
			s.Details = []*anypb.Any{violation}
		}
		return s
	default:
		return &spb.Status{Code: int32(codes.Internal), Message: err.Error()}
	}
}

// actionResultFromResponse converts an execution.Response's output
// paths into an ActionResult. Output paths are routed to OutputFiles,
// OutputDirectories, or OutputSymlinks according to the kind recorded
// by the backend.
func actionResultFromResponse(response execution.Response) *remoteexecution.ActionResult {
	result := &remoteexecution.ActionResult{
		ExitCode:  response.ExitCode,
		StdoutRaw: response.Stdout,
		StderrRaw: response.Stderr,
	}
	for _, entry := range response.OutputPaths {
		switch entry.Kind {
		case execution.EntryFile:
			result.OutputFiles = append(result.OutputFiles, &remoteexecution.OutputFile{
				Path:         entry.Path,
				Digest:       entry.Digest.GetPartialDigest(),
				IsExecutable: entry.Executable,
			})
		case execution.EntryDirectory:
			result.OutputDirectories = append(result.OutputDirectories, &remoteexecution.OutputDirectory{
				Path:       entry.Path,
				TreeDigest: entry.Digest.GetPartialDigest(),
			})
		case execution.EntrySymlink:
			result.OutputSymlinks = append(result.OutputSymlinks, &remoteexecution.OutputSymlink{
				Path:   entry.Path,
				Target: entry.Target,
			})
		}
	}
	return result
}
