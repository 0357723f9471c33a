// Package compiler runs the type generator over a schema snapshot source.
//
//	g, err := compiler.GenerateFile(ctx, &load.File{Path: "snapshot.json"}, cfg, "types/schema.ts")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, d := range g.Diagnostics.Warnings {
//		log.Println(d)
//	}
package compiler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/syssam/veloxts/compiler/gen"
	"github.com/syssam/veloxts/compiler/load"
	"github.com/syssam/veloxts/schema"
)

// Source provides a schema snapshot.
type Source interface {
	Snapshot(context.Context) (*schema.Snapshot, error)
}

// The SourceFunc type is an adapter to allow the use of ordinary
// functions as a Source.
type SourceFunc func(context.Context) (*schema.Snapshot, error)

// Snapshot calls f(ctx).
func (f SourceFunc) Snapshot(ctx context.Context) (*schema.Snapshot, error) {
	return f(ctx)
}

// Generate fetches the snapshot once and runs the pipeline over it. The
// context is checked before and after the fetch; the pipeline itself is
// not cancellable. A nil config uses the defaults.
func Generate(ctx context.Context, src Source, cfg *gen.Config) (*gen.Graph, error) {
	if src == nil {
		return nil, gen.NewConfigError("Source", nil, "no snapshot source")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := src.Snapshot(ctx)
	switch {
	case err == nil:
	case gen.IsSourceError(err), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, gen.NewSourceError("", name(src), "", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g := gen.NewGraph(cfg, snap)
	g.Logger.Debug("snapshot compiled",
		zap.String("source", name(src)),
		zap.Int("entities", len(g.Entities)),
		zap.Int("warnings", len(g.Diagnostics.Warnings)),
	)
	return g, nil
}

// GenerateFile runs Generate and writes the output to path. An empty
// path uses the configured target.
func GenerateFile(ctx context.Context, src Source, cfg *gen.Config, path string) (*gen.Graph, error) {
	g, err := Generate(ctx, src, cfg)
	if err != nil {
		return nil, err
	}
	if err := g.WriteFile(path); err != nil {
		return g, err
	}
	return g, nil
}

// Cached wraps src so that every snapshot it returns is also saved to
// path, for later offline runs with a file source.
func Cached(src Source, path string) Source {
	return SourceFunc(func(ctx context.Context) (*schema.Snapshot, error) {
		snap, err := src.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		if err := load.Save(path, snap); err != nil {
			return nil, fmt.Errorf("cache snapshot: %w", err)
		}
		return snap, nil
	})
}

// name describes a source in errors and log lines.
func name(src Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}
