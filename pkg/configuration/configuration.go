// Package configuration defines the plain Go structures that describe
// how a node is wired together. Unlike the Protobuf-based
// configuration messages used elsewhere in the Buildbarn ecosystem,
// these structures are unmarshalled directly from jsonnet-evaluated
// JSON via util.UnmarshalConfigurationFromFile, using ordinary
// encoding/json struct tags.
package configuration

// ApplicationConfiguration is the top-level configuration message
// consumed by the node's main binary.
type ApplicationConfiguration struct {
	// Global options shared by all Buildbarn binaries: logging,
	// diagnostics and tracing.
	Global *GlobalConfiguration `json:"global,omitempty"`

	// InstanceName is the instance name this node serves. Requests
	// addressed to any other instance name are rejected with
	// PermissionDenied.
	InstanceName string `json:"instanceName"`

	// GrpcServers describes the network endpoints on which the
	// CAS, Execution, ActionCache, ByteStream, Capabilities and
	// Operations services are exposed.
	GrpcServers []GRPCServerConfiguration `json:"grpcServers"`

	// ContentAddressableStorage selects and configures the CAS
	// backend used to store Action, Command, Directory, Tree and
	// plain-blob data.
	ContentAddressableStorage BlobAccessConfiguration `json:"contentAddressableStorage"`

	// Execution configures the backend used to run Actions.
	Execution ExecutionConfiguration `json:"execution"`

	// MaximumMessageSizeBytes bounds the size of any single gRPC
	// message received by the servers, which also caps the blobs in
	// one BatchUpdateBlobs request. ByteStream writes span many
	// messages, so the size of a blob they upload is not bounded by
	// it. Zero means the gRPC default is used.
	MaximumMessageSizeBytes int `json:"maximumMessageSizeBytes,omitempty"`
}

// GRPCServerConfiguration describes a single network endpoint that the
// node's gRPC services are exposed on.
type GRPCServerConfiguration struct {
	// ListenAddresses are TCP addresses (e.g. ":8980") to listen
	// on.
	ListenAddresses []string `json:"listenAddresses,omitempty"`

	// ListenPaths are UNIX socket paths to listen on.
	ListenPaths []string `json:"listenPaths,omitempty"`
}

// BlobAccessConfiguration selects one of the storage backends
// implemented by the blobstore package.
type BlobAccessConfiguration struct {
	// Backend is the storage backend kind. Currently only "memory"
	// is supported. Blobs are retained for the lifetime of the
	// process; nothing is evicted.
	Backend string `json:"backend"`
}

// ExecutionConfiguration selects and configures an execution.Backend
// implementation.
type ExecutionConfiguration struct {
	// Backend is the execution backend kind. Currently only
	// "insecure" is supported.
	Backend string `json:"backend"`

	// BuildDirectoryPath is the directory underneath which
	// per-action sandbox directories are created. When empty, the
	// operating system's directory for temporary files is used.
	BuildDirectoryPath string `json:"buildDirectoryPath,omitempty"`

	// MaximumConcurrentExecutions bounds the number of actions
	// running at the same time. Accepted actions above this limit
	// remain queued. Defaults to 1 when not set.
	MaximumConcurrentExecutions int64 `json:"maximumConcurrentExecutions,omitempty"`

	// KeepSandbox causes the sandbox directory used to run Actions
	// to be left on disk after execution, for debugging. Must not
	// be enabled in production.
	KeepSandbox bool `json:"keepSandbox,omitempty"`
}

// GlobalConfiguration holds options that apply irrespective of which
// Buildbarn binary is being run.
type GlobalConfiguration struct {
	// SetUmask, if non-nil, sets the process' umask at startup.
	SetUmask *uint32 `json:"setUmask,omitempty"`

	// SetResourceLimits adjusts resource limits (setrlimit) of the
	// process at startup, keyed by resource name (e.g. "NOFILE").
	SetResourceLimits map[string]ResourceLimitConfiguration `json:"setResourceLimits,omitempty"`

	// LogPaths are additional files log output should be copied
	// to, on top of standard error.
	LogPaths []string `json:"logPaths,omitempty"`

	// DiagnosticsHTTPServer configures a HTTP server exposing
	// Prometheus metrics, health/readiness probes and pprof
	// endpoints.
	DiagnosticsHTTPServer *DiagnosticsHTTPServerConfiguration `json:"diagnosticsHttpServer,omitempty"`

	// Tracing configures OpenTelemetry distributed tracing.
	Tracing *TracingConfiguration `json:"tracing,omitempty"`

	// MutexProfileFraction is forwarded to
	// runtime.SetMutexProfileFraction.
	MutexProfileFraction int `json:"mutexProfileFraction,omitempty"`
}

// ResourceLimitConfiguration holds the soft and hard limit of a single
// resource. A nil value means infinity.
type ResourceLimitConfiguration struct {
	SoftLimit *uint64 `json:"softLimit,omitempty"`
	HardLimit *uint64 `json:"hardLimit,omitempty"`
}

// DiagnosticsHTTPServerConfiguration configures the diagnostics HTTP
// server started by global.ApplyConfiguration.
type DiagnosticsHTTPServerConfiguration struct {
	ListenAddress     string `json:"listenAddress"`
	EnablePrometheus  bool   `json:"enablePrometheus,omitempty"`
	EnablePprof       bool   `json:"enablePprof,omitempty"`
	EnableActiveSpans bool   `json:"enableActiveSpans,omitempty"`

	// AdditionalScrapeTargets lists HTTP endpoints of sidecar
	// processes whose metrics should be aggregated into this
	// process' /metrics page.
	AdditionalScrapeTargets []PrometheusScrapeTargetConfiguration `json:"additionalScrapeTargets,omitempty"`
}

// PrometheusScrapeTargetConfiguration describes one additional HTTP
// endpoint to scrape for Prometheus metrics.
type PrometheusScrapeTargetConfiguration struct {
	// URL of the metrics page, using the text-based exposition
	// format.
	URL string `json:"url"`

	// MetricNamePattern optionally restricts which metrics are
	// copied from the target, using an RE2 regular expression
	// matched against the metric family name.
	MetricNamePattern string `json:"metricNamePattern,omitempty"`
}

// TracingConfiguration configures the OpenTelemetry tracer provider
// used by the node. Spans are always shipped over OTLP/gRPC; other
// exporters (Jaeger, stdout) are not supported, since every deployment
// already depends on an OTLP-compatible collector.
type TracingConfiguration struct {
	// OtlpEndpoint is the gRPC target (host:port) of the OTLP trace
	// collector.
	OtlpEndpoint string `json:"otlpEndpoint"`

	// ServiceName is recorded as a resource attribute on every
	// emitted span.
	ServiceName string `json:"serviceName,omitempty"`

	// Sampler selects the sampling policy. One of: "always",
	// "never", "ratio", "maximumRate". Defaults to "always" when
	// omitted.
	Sampler string `json:"sampler,omitempty"`

	// Ratio is consulted when Sampler is "ratio".
	Ratio float64 `json:"ratio,omitempty"`

	// MaximumSamplesPerSecond is consulted when Sampler is
	// "maximumRate": at most this many traces are sampled per
	// second, regardless of the request rate.
	MaximumSamplesPerSecond int `json:"maximumSamplesPerSecond,omitempty"`
}
