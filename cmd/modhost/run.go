package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/randalmurphal/modhost/pkg/modhost"
	"github.com/randalmurphal/modhost/pkg/modhost/config"
	"github.com/randalmurphal/modhost/pkg/modhost/journal"
	"github.com/randalmurphal/modhost/pkg/modhost/modules"
	"github.com/randalmurphal/modhost/pkg/modhost/observability"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a session script against the built-in modules",
	Long: `Run loads the built-in modules and replays a session script of host
events against them, printing whether each suppressible event was blocked.

Script lines (blank lines and # comments are skipped):
  load | unload | reload | ready
  loop | join | exit | draw | automap | oog
  key <up|down> <code> [param]
  click <left|right> <up|down> <x> <y>
  mouse <x> <y>
  packet <chat|realm|game> <byte...>
  chat <game|oog> <user> <message...>
  input <module> <message...>
  modules
  faults [module]

Numbers accept decimal, 0x hex and 0 octal forms.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		opts := runOptions{
			configPath:  viper.GetString("config"),
			scriptPath:  viper.GetString("script"),
			journalPath: viper.GetString("journal"),
			faultLimit:  viper.GetInt("fault_limit"),
			telemetry:   viper.GetBool("telemetry"),
			otlpURL:     viper.GetString("otlp_endpoint"),
		}

		script := cmd.InOrStdin()
		if opts.scriptPath != "" && opts.scriptPath != "-" {
			f, err := os.Open(opts.scriptPath)
			if err != nil {
				return fmt.Errorf("open script: %w", err)
			}
			defer f.Close()
			script = f
		}

		return runSession(cmd.Context(), opts, script, cmd.OutOrStdout(), logger)
	},
}

func init() {
	runCmd.Flags().String("config", "", "Module settings file (YAML or JSON)")
	runCmd.Flags().String("script", "-", "Session script file, - for stdin")
	runCmd.Flags().String("journal", "", "SQLite fault journal path (in-memory when empty)")
	runCmd.Flags().Int("fault-limit", 0, "Quarantine a module after this many handler faults (0 disables)")
	runCmd.Flags().Bool("telemetry", false, "Collect metrics and traces and print a summary")
	runCmd.Flags().String("otlp-endpoint", "", "Export session spans to this OTLP/HTTP URL (implies --telemetry)")

	_ = viper.BindPFlag("config", runCmd.Flags().Lookup("config"))
	_ = viper.BindPFlag("script", runCmd.Flags().Lookup("script"))
	_ = viper.BindPFlag("journal", runCmd.Flags().Lookup("journal"))
	_ = viper.BindPFlag("fault_limit", runCmd.Flags().Lookup("fault-limit"))
	_ = viper.BindPFlag("telemetry", runCmd.Flags().Lookup("telemetry"))
	_ = viper.BindPFlag("otlp_endpoint", runCmd.Flags().Lookup("otlp-endpoint"))
}

type runOptions struct {
	configPath  string
	scriptPath  string
	journalPath string
	faultLimit  int
	telemetry   bool
	otlpURL     string
}

// runSession parses script, builds a host session and replays the script
// against it. Modules are unloaded before it returns.
func runSession(ctx context.Context, opts runOptions, script io.Reader, out io.Writer, logger *slog.Logger) error {
	cmds, err := parseScript(script)
	if err != nil {
		return err
	}

	var store journal.Store
	if opts.journalPath != "" {
		sqlite, err := journal.NewSQLiteStore(opts.journalPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		store = sqlite
	} else {
		store = journal.NewMemoryStore()
	}
	defer store.Close()

	settings := config.Static(config.New(nil))
	if opts.configPath != "" {
		settings = config.FileSource(opts.configPath)
	}

	hostOpts := []modhost.Option{
		modhost.WithLogger(logger),
		modhost.WithSettings(settings),
		modhost.WithJournal(store),
	}
	if opts.faultLimit > 0 {
		hostOpts = append(hostOpts, modhost.WithFaultLimit(opts.faultLimit))
	}

	var tel *telemetry
	if opts.telemetry || opts.otlpURL != "" {
		tel, err = newTelemetry(ctx, opts.otlpURL)
		if err != nil {
			return err
		}
		defer tel.shutdown(context.WithoutCancel(ctx))
		hostOpts = append(hostOpts, tel.options...)
	}

	screen := &consoleRenderer{out: out}
	host := modhost.New(modules.Defaults(screen, logger), hostOpts...)
	s := &session{host: host, screen: screen, journal: store, out: out}

	runErr := execute(ctx, s, cmds)
	host.Controller.UnloadModules(context.WithoutCancel(ctx))

	if tel != nil {
		if err := tel.summarize(ctx, out); err != nil {
			return err
		}
	}
	return runErr
}

// telemetry holds session-local otel providers so nothing global is touched.
type telemetry struct {
	reader  *sdkmetric.ManualReader
	meters  *sdkmetric.MeterProvider
	tracer  *sdktrace.TracerProvider
	spans   int
	options []modhost.Option
}

// newTelemetry builds the session providers. With an endpoint, spans are
// also batched to an OTLP/HTTP collector.
func newTelemetry(ctx context.Context, endpoint string) (*telemetry, error) {
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName("modhost")))
	if err != nil {
		return nil, fmt.Errorf("resource: %w", err)
	}

	t := &telemetry{reader: sdkmetric.NewManualReader()}
	t.meters = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(t.reader),
		sdkmetric.WithResource(res),
	)

	traceOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(&spanCounter{n: &t.spans}),
	}
	if endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		if err != nil {
			return nil, fmt.Errorf("otlp exporter: %w", err)
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(exporter))
	}
	t.tracer = sdktrace.NewTracerProvider(traceOpts...)

	metrics, err := observability.NewMetricsRecorderFor(t.meters)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	t.options = []modhost.Option{
		modhost.WithMetrics(metrics),
		modhost.WithTracing(observability.NewSpanManagerFor(t.tracer)),
	}
	return t, nil
}

// summarize prints every counter total collected during the session.
func (t *telemetry) summarize(ctx context.Context, out io.Writer) error {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err != nil {
		return fmt.Errorf("collect metrics: %w", err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "telemetry:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s %d\n", name, totals[name])
	}
	fmt.Fprintf(out, "  spans %d\n", t.spans)
	return nil
}

func (t *telemetry) shutdown(ctx context.Context) {
	_ = t.tracer.Shutdown(ctx)
	_ = t.meters.Shutdown(ctx)
}

// spanCounter counts finished spans. The host is single threaded, so a
// plain int is enough.
type spanCounter struct {
	n *int
}

func (c *spanCounter) OnStart(context.Context, sdktrace.ReadWriteSpan) {}
func (c *spanCounter) OnEnd(sdktrace.ReadOnlySpan)                     { *c.n++ }
func (c *spanCounter) Shutdown(context.Context) error                  { return nil }
func (c *spanCounter) ForceFlush(context.Context) error                { return nil }
