// Command rowcat converts row files between formats, reading from and writing to local paths or
// bucket URLs. Each input is converted concurrently into the output directory.
//
//	rowcat -in 'logs/*.tsv.gz' -in s3://bucket/logs/rows.tsv -from tsv -to jsonl -out converted/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-sif/rowstream/compression"
	"github.com/go-sif/rowstream/logging"
	"github.com/go-sif/rowstream/origin/file"
	"github.com/go-sif/rowstream/registry"
	"github.com/go-sif/rowstream/stats"
	"github.com/go-sif/rowstream/stream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"
	"golang.org/x/sync/errgroup"
)

type arrayFlags []string

func (a *arrayFlags) String() string {
	return strings.Join(*a, ",")
}

func (a *arrayFlags) Set(value string) error {
	*a = append(*a, value)
	return nil
}

func main() {
	var (
		inputs        arrayFlags
		from          string
		to            string
		out           string
		strict        bool
		flushInterval int
		logLevel      string
		metricsListen string
		parallelism   int
	)

	flag.Var(&inputs, "in", "Input location: a local path, glob, or bucket URL (repeatable)")
	flag.StringVar(&from, "from", "tsv", "Input format")
	flag.StringVar(&to, "to", "jsonl", "Output format")
	flag.StringVar(&out, "out", ".", "Output directory")
	flag.BoolVar(&strict, "strict", false, "Fail on malformed rows and unexpected columns instead of skipping them")
	flag.IntVar(&flushInterval, "flush", 1000, "Number of rows written between flushes")
	flag.StringVar(&logLevel, "log.level", "info", "Log level: "+strings.Join(logging.LevelNames(), ", "))
	flag.StringVar(&metricsListen, "metrics.listen", "", "Address on which to serve /metrics, e.g. :9100. Disabled if empty.")
	flag.IntVar(&parallelism, "parallelism", 4, "Maximum number of inputs converted at once")
	flag.Parse()

	filter, err := logging.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(os.Stderr, filter)

	formats := registry.Default()
	if len(inputs) == 0 {
		fmt.Fprintf(os.Stderr, "error: at least one -in must be specified\n")
		flag.Usage()
		os.Exit(1)
	}
	for _, f := range []string{from, to} {
		if !contains(formats.Formats(), f) {
			fmt.Fprintf(os.Stderr, "error: unknown format %q, expected one of %s\n", f, strings.Join(formats.Formats(), ", "))
			os.Exit(1)
		}
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		level.Error(logger).Log("msg", "failed to create output directory", "dir", out, "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		level.Info(logger).Log("msg", "received shutdown signal")
		cancel()
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := stats.NewMetrics(reg)
	if metricsListen != "" {
		srv := &http.Server{Addr: metricsListen, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				level.Error(logger).Log("msg", "metrics server failed", "err", err)
			}
		}()
		defer srv.Close()
		level.Info(logger).Log("msg", "serving metrics", "addr", metricsListen)
	}

	locations, err := expand(inputs)
	if err != nil {
		level.Error(logger).Log("msg", "failed to resolve inputs", "err", err)
		os.Exit(1)
	}

	targets, err := outputPaths(locations, out, to)
	if err != nil {
		level.Error(logger).Log("msg", "failed to plan outputs", "err", err)
		os.Exit(1)
	}

	conf := &stream.Conf{
		FlushInterval: flushInterval,
		Logger:        logger,
		Metrics:       metrics,
	}
	if strict {
		conf.ErrorPolicy = stream.Strict
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, loc := range locations {
		loc, target := loc, targets[i]
		g.Go(func() error {
			return convert(gctx, formats, loc, target, from, to, conf, logger)
		})
	}
	if err := g.Wait(); err != nil {
		level.Error(logger).Log("msg", "conversion failed", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "done", "inputs", len(locations))
}

// convert copies one input to one output. Per-row errors are logged; only stream failures
// and strict-mode row errors fail the conversion.
func convert(ctx context.Context, formats *registry.Registry, in string, out string, from string, to string, conf *stream.Conf, logger log.Logger) (err error) {
	src, err := formats.NewSource(ctx, from, in, conf)
	if err != nil {
		return err
	}
	defer src.Close()
	sink, err := formats.NewSink(ctx, to, out, conf)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	n, err := stream.Copy(src, sink)
	if err != nil && conf.ErrorPolicy == stream.Lenient {
		level.Warn(logger).Log("msg", "rows were not converted", "in", in, "err", err)
		err = nil
	}
	level.Info(logger).Log("msg", "converted", "in", in, "out", out, "rows", n, "skipped", src.SkipCount())
	return err
}

// expand resolves local globs into paths. Bucket URLs are passed through as is.
func expand(inputs []string) ([]string, error) {
	var locations []string
	for _, in := range inputs {
		if strings.Contains(in, "://") || !strings.ContainsAny(in, "*?[") {
			locations = append(locations, in)
			continue
		}
		origins, err := file.Glob(in)
		if err != nil {
			return nil, err
		}
		for _, o := range origins {
			locations = append(locations, o.Name())
		}
	}
	return locations, nil
}

// outputName swaps the format extension of a location's base name, keeping any compression
// suffix: "s3://b/logs/rows.tsv.gz" becomes "rows.jsonl.gz"
func outputName(location string, format string) string {
	base := path.Base(filepath.ToSlash(location))
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	suffix := ""
	if c, ok := compression.ForName(base); ok {
		suffix = c.Suffix()
		base = compression.TrimSuffix(base)
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	return base + "." + format + suffix
}

// outputPaths maps each location to its file in dir. Two inputs sharing a base name would
// truncate each other's output, so they are refused.
func outputPaths(locations []string, dir string, format string) ([]string, error) {
	targets := make([]string, len(locations))
	claimed := make(map[string]string, len(locations))
	for i, loc := range locations {
		target := filepath.Join(dir, outputName(loc, format))
		if prev, ok := claimed[target]; ok {
			return nil, fmt.Errorf("inputs %s and %s would both be written to %s", prev, loc, target)
		}
		claimed[target] = loc
		targets[i] = target
	}
	return targets, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
