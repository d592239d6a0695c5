package main

import (
	"log"
	"os"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/bazelbuild/remote-apis/build/bazel/semver"
	"github.com/buildbarn/bb-remote-node/pkg/ac"
	"github.com/buildbarn/bb-remote-node/pkg/blobstore"
	"github.com/buildbarn/bb-remote-node/pkg/builder"
	"github.com/buildbarn/bb-remote-node/pkg/capabilities"
	"github.com/buildbarn/bb-remote-node/pkg/cas"
	"github.com/buildbarn/bb-remote-node/pkg/configuration"
	"github.com/buildbarn/bb-remote-node/pkg/engine"
	"github.com/buildbarn/bb-remote-node/pkg/execution"
	"github.com/buildbarn/bb-remote-node/pkg/filesystem"
	"github.com/buildbarn/bb-remote-node/pkg/global"
	bb_grpc "github.com/buildbarn/bb-remote-node/pkg/grpc"
	"github.com/buildbarn/bb-remote-node/pkg/util"
	"github.com/google/uuid"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genproto/googleapis/bytestream"
	"google.golang.org/genproto/googleapis/longrunning"
	"google.golang.org/grpc"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("Usage: bb_remote_node bb_remote_node.jsonnet")
	}
	var config configuration.ApplicationConfiguration
	if err := util.UnmarshalConfigurationFromFile(os.Args[1], &config); err != nil {
		log.Fatalf("Failed to read configuration from %s: %s", os.Args[1], err)
	}
	diagnosticsServer, err := global.ApplyConfiguration(config.Global)
	if err != nil {
		log.Fatal("Failed to apply global configuration options: ", err)
	}
	signalContext := global.InstallTerminationSignalHandler()
	terminationGroup, terminationContext := errgroup.WithContext(signalContext)
	global.ServeDiagnostics(terminationContext, terminationGroup, diagnosticsServer)

	// Content Addressable Storage (CAS).
	var blobAccess blobstore.BlobAccess
	switch config.ContentAddressableStorage.Backend {
	case "", "memory":
		blobAccess = blobstore.NewInMemoryBlobAccess()
	default:
		log.Fatalf("Unknown storage backend %#v", config.ContentAddressableStorage.Backend)
	}
	contentAddressableStorage := cas.NewContentAddressableStorage(blobAccess)

	// Execution backend.
	var backend execution.Backend
	switch config.Execution.Backend {
	case "", "insecure":
		buildDirectoryPath := config.Execution.BuildDirectoryPath
		if buildDirectoryPath == "" {
			buildDirectoryPath = os.TempDir()
		}
		buildDirectory, err := filesystem.NewLocalDirectory(buildDirectoryPath)
		if err != nil {
			log.Fatalf("Failed to open build directory %#v: %s", buildDirectoryPath, err)
		}
		backend = execution.NewInsecureBackend(
			contentAddressableStorage,
			buildDirectory,
			buildDirectoryPath,
			config.Execution.KeepSandbox)
	case "hermetic":
		log.Fatal("The hermetic execution backend is not implemented yet")
	default:
		log.Fatalf("Unknown execution backend %#v", config.Execution.Backend)
	}

	maximumConcurrentExecutions := config.Execution.MaximumConcurrentExecutions
	if maximumConcurrentExecutions < 1 {
		maximumConcurrentExecutions = 1
	}
	executionEngine := engine.New(backend, maximumConcurrentExecutions, uuid.NewRandom)

	capabilitiesProvider := capabilities.NewStaticProvider(&remoteexecution.ServerCapabilities{
		CacheCapabilities: &remoteexecution.CacheCapabilities{
			DigestFunctions: []remoteexecution.DigestFunction_Value{
				remoteexecution.DigestFunction_SHA256,
			},
			ActionCacheUpdateCapabilities: &remoteexecution.ActionCacheUpdateCapabilities{
				UpdateEnabled: true,
			},
		},
		ExecutionCapabilities: &remoteexecution.ExecutionCapabilities{
			DigestFunction: remoteexecution.DigestFunction_SHA256,
			ExecEnabled:    true,
		},
		LowApiVersion:  &semver.SemVer{Major: 2},
		HighApiVersion: &semver.SemVer{Major: 2},
	})

	buildQueue := builder.NewTracingBuildQueue(
		builder.NewExecutionBuildQueue(
			config.InstanceName,
			contentAddressableStorage,
			executionEngine,
			capabilitiesProvider))

	if err := bb_grpc.NewServersFromConfigurationAndServe(
		config.GrpcServers,
		config.MaximumMessageSizeBytes,
		func(s grpc.ServiceRegistrar) {
			remoteexecution.RegisterCapabilitiesServer(s, capabilities.NewServer(buildQueue))
			remoteexecution.RegisterContentAddressableStorageServer(s, cas.NewContentAddressableStorageServer(config.InstanceName, contentAddressableStorage))
			remoteexecution.RegisterActionCacheServer(s, ac.NewActionCacheServer())
			remoteexecution.RegisterExecutionServer(s, buildQueue)
			bytestream.RegisterByteStreamServer(s.(*grpc.Server), cas.NewByteStreamServer(contentAddressableStorage))
			longrunning.RegisterOperationsServer(s.(*grpc.Server), builder.NewOperationsServer())
		},
		terminationGroup); err != nil {
		log.Fatal("Failed to start gRPC servers: ", err)
	}

	diagnosticsServer.SetReady()
	if err := terminationGroup.Wait(); err != nil {
		log.Fatal("Fatal error: ", err)
	}
}
