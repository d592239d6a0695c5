package global

import (
	"context"
	"html/template"
	"io"
	"log"
	"net/http"
	"os/signal"
	"regexp"
	"syscall"

	// The pprof package does not provide a function for registering
	// its endpoints against an arbitrary mux. Load it to force
	// registration against the default mux, so we can forward
	// traffic to that mux instead.
	_ "net/http/pprof"
	"os"
	"runtime"
	"time"

	bb_atomic "github.com/buildbarn/bb-remote-node/pkg/atomic"
	"github.com/buildbarn/bb-remote-node/pkg/clock"
	"github.com/buildbarn/bb-remote-node/pkg/configuration"
	"github.com/buildbarn/bb-remote-node/pkg/logo"
	bb_otel "github.com/buildbarn/bb-remote-node/pkg/otel"
	bb_prometheus "github.com/buildbarn/bb-remote-node/pkg/prometheus"
	"github.com/buildbarn/bb-remote-node/pkg/util"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	stateNotServing int32 = iota
	stateServing
)

// DiagnosticsServer is returned by ApplyConfiguration. It can be used by
// the caller to report whether the application has started up
// successfully.
type DiagnosticsServer struct {
	config                          *configuration.DiagnosticsHTTPServerConfiguration
	activeSpansReportingHTTPHandler *bb_otel.ActiveSpansReportingHTTPHandler
	metricsGatherer                 prometheus.Gatherer
	state                           bb_atomic.Int32
	server                          *http.Server
}

var rootPageTemplate = template.Must(template.New("RootPage").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>Buildbarn Remote Execution Node</title>
    <link href="{{.FaviconURL}}" rel="icon" type="image/svg+xml"/>
  </head>
  <body>
    <h1>Buildbarn Remote Execution Node</h1>
    <ul>
      <li><a href="/-/healthy">Liveness probe</a></li>
      <li><a href="/-/ready">Readiness probe</a></li>{{if .EnablePrometheus}}
      <li><a href="/metrics">Prometheus metrics</a></li>{{end}}{{if .EnablePprof}}
      <li><a href="/debug/pprof/">Profiling</a></li>{{end}}{{if .EnableActiveSpans}}
      <li><a href="/active_spans">Active trace spans</a></li>{{end}}
    </ul>
  </body>
</html>
`))

// Serve runs the diagnostics HTTP server, if one is configured, until
// terminationContext is cancelled. The server reports the application
// as healthy right away; it reports it as ready only after SetReady has
// been called.
func (ds *DiagnosticsServer) Serve(terminationContext context.Context) error {
	// Start a diagnostics web server that exposes Prometheus
	// metrics and provides a health check endpoint.
	if ds.config != nil {
		router := mux.NewRouter()
		router.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			rootPageTemplate.Execute(w, struct {
				FaviconURL        template.URL
				EnablePrometheus  bool
				EnablePprof       bool
				EnableActiveSpans bool
			}{
				FaviconURL:        logo.EmbeddedFaviconURL,
				EnablePrometheus:  ds.config.EnablePrometheus,
				EnablePprof:       ds.config.EnablePprof,
				EnableActiveSpans: ds.config.EnableActiveSpans,
			})
		})
		router.HandleFunc("/-/healthy", func(http.ResponseWriter, *http.Request) {})
		router.HandleFunc("/-/ready", func(w http.ResponseWriter, _ *http.Request) {
			if ds.state.Load() == stateServing {
				w.WriteHeader(http.StatusOK)
			} else {
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			}
		})
		if ds.config.EnablePrometheus {
			router.Handle("/metrics", promhttp.HandlerFor(ds.metricsGatherer, promhttp.HandlerOpts{}))
		}
		if ds.config.EnablePprof {
			router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
		}
		if httpHandler := ds.activeSpansReportingHTTPHandler; httpHandler != nil {
			router.Handle("/active_spans", httpHandler)
		}

		ds.server = &http.Server{
			Addr:    ds.config.ListenAddress,
			Handler: router,
		}
		go func() {
			<-terminationContext.Done()
			ds.SetNotServing()
			ds.server.Shutdown(terminationContext)
		}()
		if err := ds.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
	} else {
		<-terminationContext.Done()
	}
	return nil
}

// SetReady updates the health probe to report healthy and ready.
func (ds *DiagnosticsServer) SetReady() {
	ds.state.Store(stateServing)
}

// SetNotServing updates the health probe to report healthy but not ready.
func (ds *DiagnosticsServer) SetNotServing() {
	ds.state.Store(stateNotServing)
}

// ServeDiagnostics is a wrapper that calls DiagnosticsServer.Serve inside
// a goroutine, managed by the provided errgroup.Group, and returns
// immediately.
func ServeDiagnostics(terminationContext context.Context, terminationGroup *errgroup.Group, diagnosticsServer *DiagnosticsServer) {
	terminationGroup.Go(func() error {
		if err := diagnosticsServer.Serve(terminationContext); err != nil {
			return util.StatusWrap(err, "Diagnostics server")
		}
		return nil
	})
}

// ApplyConfiguration applies configuration options to the running
// process. These configuration options are global, in that they apply
// to all of the node's binaries, regardless of their purpose.
func ApplyConfiguration(config *configuration.GlobalConfiguration) (*DiagnosticsServer, error) {
	if config == nil {
		return &DiagnosticsServer{}, nil
	}

	// Set the umask, if requested.
	if config.SetUmask != nil {
		if err := setUmask(*config.SetUmask); err != nil {
			return nil, util.StatusWrap(err, "Failed to set umask")
		}
	}

	// Adjust resource limits, if requested.
	for name, limit := range config.SetResourceLimits {
		if err := setResourceLimit(name, limit.SoftLimit, limit.HardLimit); err != nil {
			return nil, util.StatusWrapf(err, "Failed to set resource limit %#v", name)
		}
	}

	// Logging.
	logWriters := append(make([]io.Writer, 0, len(config.LogPaths)+1), os.Stderr)
	for _, logPath := range config.LogPaths {
		w, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			return nil, util.StatusWrapf(err, "Failed to open log path %#v", logPath)
		}
		logWriters = append(logWriters, w)
	}
	log.SetOutput(io.MultiWriter(logWriters...))

	// Perform tracing using OpenTelemetry. Spans are always shipped
	// over a plain gRPC connection to an OTLP collector.
	var activeSpansReportingHTTPHandler *bb_otel.ActiveSpansReportingHTTPHandler
	enableActiveSpans := getEnableActiveSpans(config.DiagnosticsHTTPServer)
	if tracingConfig := config.Tracing; tracingConfig != nil || enableActiveSpans {
		tracerProvider := trace.NewNoopTracerProvider()
		if tracingConfig != nil {
			conn, err := grpc.NewClient(tracingConfig.OtlpEndpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return nil, util.StatusWrap(err, "Failed to create OTLP gRPC client")
			}
			spanExporter, err := otlptrace.New(context.Background(), bb_otel.NewGRPCOTLPTraceClient(conn))
			if err != nil {
				return nil, util.StatusWrap(err, "Failed to create OTLP span exporter")
			}

			sampler, err := newSamplerFromConfiguration(tracingConfig)
			if err != nil {
				return nil, util.StatusWrap(err, "Failed to create sampler")
			}

			serviceName := tracingConfig.ServiceName
			if serviceName == "" {
				serviceName = "bb_remote_node"
			}
			tracerProvider = sdktrace.NewTracerProvider(
				sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(spanExporter)),
				sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attribute.String("service.name", serviceName))),
				sdktrace.WithSampler(sampler))
		}

		if enableActiveSpans {
			activeSpansReportingHTTPHandler = bb_otel.NewActiveSpansReportingHTTPHandler(clock.SystemClock)
			tracerProvider = activeSpansReportingHTTPHandler.NewTracerProvider(tracerProvider)
		}

		otel.SetTracerProvider(tracerProvider)
		otel.SetTextMapPropagator(propagation.TraceContext{})
	}

	// Enable mutex profiling.
	runtime.SetMutexProfileFraction(config.MutexProfileFraction)

	// Metrics exposed over /metrics. On top of this process' own
	// metrics, additional HTTP targets may be scraped and
	// aggregated, so that sidecar processes don't need to be
	// exposed separately.
	metricsGatherer, err := newMetricsGathererFromConfiguration(config.DiagnosticsHTTPServer)
	if err != nil {
		return nil, err
	}

	return &DiagnosticsServer{
		config:                          config.DiagnosticsHTTPServer,
		activeSpansReportingHTTPHandler: activeSpansReportingHTTPHandler,
		metricsGatherer:                 metricsGatherer,
	}, nil
}

// newMetricsGathererFromConfiguration combines this process' default
// Prometheus registry with gatherers for any additional scrape targets
// listed in the configuration.
func newMetricsGathererFromConfiguration(config *configuration.DiagnosticsHTTPServerConfiguration) (prometheus.Gatherer, error) {
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer}
	if config != nil {
		for _, target := range config.AdditionalScrapeTargets {
			gatherer := bb_prometheus.NewHTTPGatherer(http.DefaultClient, target.URL)
			if target.MetricNamePattern != "" {
				pattern, err := regexp.Compile(target.MetricNamePattern)
				if err != nil {
					return nil, util.StatusWrapf(err, "Invalid metric name pattern for scrape target %#v", target.URL)
				}
				gatherer = bb_prometheus.NewNameFilteringGatherer(gatherer, pattern)
			}
			gatherers = append(gatherers, gatherer)
		}
	}
	return gatherers, nil
}

// getEnableActiveSpans reads EnableActiveSpans off a possibly-nil
// configuration.
func getEnableActiveSpans(config *configuration.DiagnosticsHTTPServerConfiguration) bool {
	return config != nil && config.EnableActiveSpans
}

// newSamplerFromConfiguration creates an OpenTelemetry Sampler based on
// a configuration file.
func newSamplerFromConfiguration(config *configuration.TracingConfiguration) (sdktrace.Sampler, error) {
	switch config.Sampler {
	case "", "always":
		return sdktrace.AlwaysSample(), nil
	case "never":
		return sdktrace.NeverSample(), nil
	case "ratio":
		return sdktrace.TraceIDRatioBased(config.Ratio), nil
	case "maximumRate":
		if config.MaximumSamplesPerSecond < 1 {
			return nil, util.StatusWrap(os.ErrInvalid, "Maximum rate sampling requires a positive maximumSamplesPerSecond")
		}
		return bb_otel.NewMaximumRateSampler(clock.SystemClock, config.MaximumSamplesPerSecond, time.Second), nil
	default:
		return nil, util.StatusWrapf(os.ErrInvalid, "Unknown sampling policy %#v", config.Sampler)
	}
}

// InstallTerminationSignalHandler starts watching for SIGTERM and SIGINT. The
// first signal received will cancel the returned context. If a second signal
// is received, the program will exit immediately.
func InstallTerminationSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Catch SIGINT and SIGTERM to gracefully shutdown.
	c := make(chan os.Signal, 1)
	signalsToCapture := []os.Signal{os.Interrupt, syscall.SIGTERM}
	signal.Notify(c, signalsToCapture...)
	go func() {
		sig := <-c
		log.Printf("Caught signal %q, shutting down", sig)
		cancel()
		// A second signal means immediate termination.
		signal.Reset(signalsToCapture...)
	}()
	return ctx
}
