// veloxts generates type declarations from a schema snapshot.
//
// Usage:
//
//	veloxts -snapshot snapshot.json -out types/schema.ts
//	veloxts -driver postgres -dsn "postgres://localhost/cms" -cache .veloxts/snapshot.msgpack
//	veloxts -url https://cms.example.com -token "$VELOXTS_TOKEN" -feature no-reference-unions
//	veloxts -snapshot snapshot.yaml -out schema.ts -watch
//
// Settings are taken from the defaults, then the -config file, then flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "modernc.org/sqlite"

	"github.com/syssam/veloxts/compiler"
	"github.com/syssam/veloxts/compiler/gen"
	"github.com/syssam/veloxts/compiler/load"
	"github.com/syssam/veloxts/dialect"
	"github.com/syssam/veloxts/dialect/rest"
	"github.com/syssam/veloxts/dialect/sql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "veloxts: %v\n", err)
		os.Exit(1)
	}
}

// options holds the command line flags.
type options struct {
	config   string
	snapshot string
	driver   string
	dsn      string
	dbSchema string
	url      string
	token    string
	out      string
	cache    string
	root     string
	features stringList
	timeout  time.Duration
	watch    bool
	verbose  bool
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("veloxts", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.config, "config", "", "path to a YAML config file")
	fs.StringVar(&o.snapshot, "snapshot", "", "snapshot file (.json, .yaml or .msgpack)")
	fs.StringVar(&o.driver, "driver", "", "database dialect for -dsn: postgres, mysql or sqlite")
	fs.StringVar(&o.dsn, "dsn", "", "database connection string")
	fs.StringVar(&o.dbSchema, "schema", "", "database schema to read (postgres schema or mysql database)")
	fs.StringVar(&o.url, "url", "", "base URL of the platform's REST API")
	fs.StringVar(&o.token, "token", os.Getenv("VELOXTS_TOKEN"), "API token for -url (default $VELOXTS_TOKEN)")
	fs.StringVar(&o.out, "out", "", "output file; stdout when neither this nor the config target is set")
	fs.StringVar(&o.cache, "cache", "", "save the fetched snapshot to this file")
	fs.StringVar(&o.root, "root", "", "name of the root aggregate type")
	fs.Var(&o.features, "feature", "enable a feature, or disable it with a no- prefix (repeatable)")
	fs.DurationVar(&o.timeout, "timeout", 30*time.Second, "timeout for fetching the snapshot")
	fs.BoolVar(&o.watch, "watch", false, "regenerate when the -snapshot file changes")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: veloxts [flags]")
		fs.PrintDefaults()
		fmt.Fprintln(stderr, "\nfeatures:")
		for _, f := range gen.AllFeatures {
			fmt.Fprintf(stderr, "  %-18s %s (default %t)\n", f.Name, f.Description, f.Default)
		}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return &o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if o.watch && o.snapshot == "" {
		return errors.New("-watch requires a -snapshot file")
	}
	log := newLogger(o.verbose, stderr)
	defer func() { _ = log.Sync() }()

	cfg, err := o.genConfig(log)
	if err != nil {
		return err
	}
	src, closeSrc, err := o.source(log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSrc(); err != nil {
			log.Warn("close snapshot source", zap.Error(err))
		}
	}()

	regen := func() error {
		return generate(ctx, src, cfg, o.timeout, stdout, log)
	}
	if !o.watch {
		return regen()
	}
	if err := regen(); err != nil {
		log.Error("generate", zap.Error(err))
	}
	return watch(ctx, o.snapshot, regen, log)
}

// newLogger builds the development logger when verbose is set, and the
// production one otherwise. Both write to w.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	cfg := zap.NewProductionConfig()
	enc := zapcore.NewJSONEncoder(cfg.EncoderConfig)
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		enc = zapcore.NewConsoleEncoder(cfg.EncoderConfig)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), cfg.Level))
}

// genConfig loads the generator config: defaults, then the config file,
// then flags.
func (o *options) genConfig(log *zap.Logger) (*gen.Config, error) {
	opts := []gen.Option{gen.WithLogger(log.Named("gen"))}
	if o.root != "" {
		opts = append(opts, gen.WithRootTypeName(o.root))
	}
	if o.out != "" {
		opts = append(opts, gen.WithTarget(o.out))
	}
	if len(o.features) > 0 {
		opts = append(opts, gen.WithFeatures(o.features...))
	}
	if o.config != "" {
		return gen.LoadConfig(o.config, opts...)
	}
	return gen.NewConfig(opts...)
}

// source returns the snapshot source selected by the flags, and a
// function releasing it.
func (o *options) source(log *zap.Logger) (compiler.Source, func() error, error) {
	var (
		srcs    []compiler.Source
		closers []func() error
	)
	if o.snapshot != "" {
		srcs = append(srcs, &load.File{Path: o.snapshot})
	}
	if o.dsn != "" {
		if !dialect.Supported(o.driver) {
			return nil, nil, fmt.Errorf("-dsn requires -driver to be one of %s, %s or %s", dialect.Postgres, dialect.MySQL, dialect.SQLite)
		}
		// Aliases like "pgx" or "sqlite3" open the driver registered for
		// their dialect.
		drv, err := sql.Open(dialect.Normalize(o.driver), o.dsn, sql.WithLogger(log.Named("sql")))
		if err != nil {
			return nil, nil, gen.NewSourceError("sql", o.driver, "open", err)
		}
		r := sql.NewReader(drv)
		r.Schema = o.dbSchema
		srcs = append(srcs, r)
		closers = append(closers, func() error {
			log.Debug("sql source closed", zap.Stringer("stats", drv.QueryStats().Stats()))
			return drv.Close()
		})
	}
	if o.url != "" {
		srcs = append(srcs, &rest.Client{
			BaseURL: o.url,
			Token:   o.token,
			HTTP:    &http.Client{Timeout: o.timeout},
		})
	}
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}
	switch len(srcs) {
	case 0:
		return nil, nil, errors.New("no snapshot source: set one of -snapshot, -dsn or -url")
	case 1:
	default:
		return nil, nil, errors.Join(errors.New("conflicting snapshot sources: set only one of -snapshot, -dsn or -url"), closeAll())
	}
	src := srcs[0]
	if o.cache != "" {
		src = compiler.Cached(src, o.cache)
	}
	return src, closeAll, nil
}

// generate runs one generation and writes the output to the configured
// target, or to stdout when there is none.
func generate(ctx context.Context, src compiler.Source, cfg *gen.Config, timeout time.Duration, stdout io.Writer, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	g, err := compiler.Generate(ctx, src, cfg)
	if err != nil {
		return err
	}
	for _, d := range g.Diagnostics.Infos {
		log.Debug(d.String())
	}
	if cfg.Target == "" {
		_, err := stdout.Write(g.Gen())
		return err
	}
	w := gen.NewWriter(g, "")
	if err := w.Write(); err != nil {
		return err
	}
	log.Info("types generated",
		zap.String("target", cfg.Target),
		zap.Int("entities", len(g.Entities)),
		zap.Int("warnings", len(g.Diagnostics.Warnings)),
		zap.Bool("changed", !w.Metrics().Unchanged),
	)
	return nil
}

// debounce groups the bursts of events editors emit on save.
const debounce = 100 * time.Millisecond

// watch calls regen whenever the file at path is written or replaced,
// until the context is done. Failed runs are logged and watching goes on.
func watch(ctx context.Context, path string, regen func() error, log *zap.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Watch the directory, as editors often replace the file on save.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	log.Info("watching snapshot", zap.String("path", path))
	var (
		name  = filepath.Clean(path)
		timer = time.NewTimer(time.Hour)
	)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) == name && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch", zap.Error(err))
		case <-timer.C:
			log.Debug("snapshot changed", zap.String("path", path))
			if err := regen(); err != nil {
				log.Error("generate", zap.Error(err))
			}
		}
	}
}
