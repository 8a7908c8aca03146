// Package main provides the lpio CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/born-ml/lpio/internal/blob"
	"github.com/born-ml/lpio/internal/blob/s3"
	"github.com/born-ml/lpio/internal/lpfile"
	"github.com/born-ml/lpio/internal/metrics"
	"github.com/born-ml/lpio/internal/model"
	"github.com/born-ml/lpio/internal/parallel"
	"github.com/born-ml/lpio/internal/snapshot"
)

const version = "v0.1.0"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return 0
	}

	var err error
	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "lpio %s\n", version)
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "convert":
		err = runConvert(ctx, args[1:], stdout, stderr)
	case "inspect":
		err = runInspect(ctx, args[1:], stdout, stderr)
	case "sample":
		err = runSample(ctx, args[1:], stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintf(stderr, "lpio %s: %v\n", args[0], err)
		return 1
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "lpio %s - LP export and snapshots for linear optimization models\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version                      Show version")
	fmt.Fprintln(w, "  convert [flags] <snap> <lp>  Load a snapshot and write it as an LP file")
	fmt.Fprintln(w, "  inspect [flags] <snap>       Print snapshot header and tables")
	fmt.Fprintln(w, "  sample [flags] <snap>        Write a small example model snapshot")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Snapshots are file paths unless -store is set. With -store s3 the bucket")
	fmt.Fprintln(w, "is read from LPIO_BLOB_S3_BUCKET, LPIO_BLOB_S3_REGION, LPIO_BLOB_S3_PREFIX,")
	fmt.Fprintln(w, "LPIO_BLOB_S3_ENDPOINT and LPIO_BLOB_S3_PATH_STYLE.")
}

var errUsage = errors.New("usage error")

// storeFlags selects where snapshot keys are resolved.
type storeFlags struct {
	kind string
	root string
}

func (s *storeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.kind, "store", "", `snapshot store: "" (plain file paths), "local" or "s3"`)
	fs.StringVar(&s.root, "root", ".", "root directory of the local store")
}

// open returns nil when keys are plain file paths.
func (s *storeFlags) open(ctx context.Context) (blob.Store, error) {
	switch s.kind {
	case "":
		return nil, nil
	case "local":
		return blob.NewLocalStore(s.root)
	case "s3":
		return s3.OpenFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unknown store %q", s.kind)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parse(fs *flag.FlagSet, args []string, nargs int, stderr io.Writer) ([]string, error) {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != nargs {
		fmt.Fprintf(stderr, "%s: expected %d arguments, got %d\n", fs.Name(), nargs, fs.NArg())
		fs.Usage()
		return nil, errUsage
	}
	return fs.Args(), nil
}

func runConvert(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	var store storeFlags
	store.register(fs)
	workers := fs.Int("workers", 0, "formatting workers (0 = all CPUs, 1 = sequential)")
	showMetrics := fs.Bool("metrics", false, "print Prometheus section metrics after the export")
	verbose := fs.Bool("v", false, "log every section")
	rest, err := parse(fs, args, 2, stderr)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, *verbose)

	m, err := loadModel(ctx, &store, rest[0])
	if err != nil {
		return err
	}

	opts := lpfile.DefaultOptions()
	opts.Logger = logger
	switch {
	case *workers == 1:
		opts.Parallel = parallel.Sequential()
	case *workers > 1:
		opts.Parallel.Enabled = true
		opts.Parallel.NumWorkers = *workers
	}

	observers := []lpfile.Observer{lpfile.LogObserver{Logger: logger}}
	reg := prometheus.NewRegistry()
	if *showMetrics {
		obs, err := metrics.NewObserver(reg)
		if err != nil {
			return err
		}
		observers = append(observers, obs)
	}
	opts.Observer = lpfile.Observers(observers...)

	if err := lpfile.WriteFile(rest[1], m, opts); err != nil {
		return err
	}

	if *showMetrics {
		return writeMetrics(stdout, reg)
	}
	return nil
}

func loadModel(ctx context.Context, sf *storeFlags, key string) (*model.Model, error) {
	store, err := sf.open(ctx)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return snapshot.ReadModel(key, snapshot.DefaultReaderOptions())
	}
	return snapshot.LoadModel(ctx, store, key, snapshot.DefaultReaderOptions())
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func runInspect(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	var sf storeFlags
	sf.register(fs)
	rest, err := parse(fs, args, 1, stderr)
	if err != nil {
		return err
	}

	store, err := sf.open(ctx)
	if err != nil {
		return err
	}
	var info *snapshot.Info
	if store == nil {
		info, err = snapshot.ReadFileInfo(rest[0])
	} else {
		var rc io.ReadCloser
		rc, err = store.Get(ctx, rest[0])
		if err == nil {
			info, err = snapshot.ReadInfo(rc)
			_ = rc.Close()
		}
	}
	if err != nil {
		return err
	}
	return printInfo(stdout, info)
}

func printInfo(w io.Writer, info *snapshot.Info) error {
	h := info.Header
	fmt.Fprintf(w, "format:      %s v%d\n", snapshot.MagicBytes, info.Version)
	fmt.Fprintf(w, "lpio:        %s\n", h.LpioVersion)
	fmt.Fprintf(w, "created:     %s\n", h.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(w, "compression: %s\n", info.Compression)
	fmt.Fprintf(w, "data bytes:  %d\n", info.DataSize)

	fmt.Fprintln(w, "attrs:")
	for _, name := range append(model.Attributes(), model.CategoriesAttr) {
		if v, ok := h.Attrs[name]; ok {
			fmt.Fprintf(w, "  %s = %s\n", name, v)
		}
	}

	fmt.Fprintln(w, "tables:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tDTYPE\tDIMS\tSHAPE\tSTORED\tRAW")
	for _, t := range h.Tables {
		fmt.Fprintf(tw, "  %s\t%s\t(%s)\t%v\t%d\t%d\n", t.Name, t.DType, strings.Join(t.Dims, ", "), t.Shape, t.Size, t.RawSize)
	}
	return tw.Flush()
}

func runSample(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	var sf storeFlags
	sf.register(fs)
	compression := fs.String("compression", "zstd", `table compression: "none", "lz4" or "zstd"`)
	rest, err := parse(fs, args, 1, stderr)
	if err != nil {
		return err
	}

	c, err := snapshot.ParseCompression(*compression)
	if err != nil {
		return err
	}
	opts := snapshot.DefaultWriterOptions()
	opts.Compression = c
	opts.Logger = newLogger(stderr, false)

	store, err := sf.open(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return snapshot.WriteModel(rest[0], model.Sample(), opts)
	}
	return snapshot.SaveModel(ctx, store, rest[0], model.Sample(), opts)
}
