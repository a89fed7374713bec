// Command departctl drives the partitioning engine end-to-end against an
// in-memory instance store, exercising the deferred-execution API the same
// way an embedding application would: build field data, submit operators,
// wait on completion events, read back the resulting index spaces.
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l7mp/depart/internal/buildinfo"
	"github.com/l7mp/depart/pkg/accessor"
	"github.com/l7mp/depart/pkg/accessor/meminstance"
	"github.com/l7mp/depart/pkg/engine"
	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/partition"
	"github.com/l7mp/depart/pkg/space"
)

var info = buildinfo.BuildInfo{Version: "dev", CommitHash: "none", BuildDate: "unknown"}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sub, args := os.Args[1], os.Args[2:]
	if sub == "version" {
		fmt.Println(info.String())
		return
	}

	var err error
	switch sub {
	case "equal-split":
		err = runEqualSplit(args)
	case "weighted-split":
		err = runWeightedSplit(args)
	case "by-field":
		err = runByField(args)
	case "chain":
		err = runChain(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "departctl:", err)
		os.Exit(1)
	}
}

// newFlagSet builds a subcommand's flag set, pre-registering the logging
// flag every subcommand shares.
func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	development := fs.Bool("development", false, "use a human-readable, non-JSON log encoding")
	return fs, development
}

func usage() {
	fmt.Fprintln(os.Stderr, `departctl: drive the partitioning engine against an in-memory instance store

Usage:
  departctl version
  departctl equal-split [-lo N] [-hi N] [-n N] [-granularity N]
  departctl weighted-split [-lo N] [-hi N] [-weights 1,2,1] [-granularity N]
  departctl by-field [-colors 0,1,2]
  departctl chain`)
}

// newLogger builds a zap-backed logr.Logger, development mode trading JSON
// structured output for a console encoder with nanosecond RFC3339
// timestamps, the same tradeoff a reconciler binary makes between
// production log aggregation and a readable local console.
func newLogger(development bool) logr.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoder := zapcore.NewJSONEncoder(cfg)
	level := zapcore.InfoLevel
	if development {
		encoder = zapcore.NewConsoleEncoder(cfg)
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level)
	zl := zap.New(core, zap.AddCaller())
	return zapr.NewLogger(zl)
}

func rect1(lo, hi int64) geometry.Rect[int64] {
	return geometry.NewRect(geometry.NewPoint(lo), geometry.NewPoint(hi))
}

func runEqualSplit(args []string) error {
	fs, development := newFlagSet("equal-split")
	lo := fs.Int64("lo", 0, "lower bound of the domain")
	hi := fs.Int64("hi", 99, "upper bound of the domain, inclusive")
	n := fs.Int("n", 4, "number of equal pieces")
	gran := fs.Int64("granularity", 1, "granularity unit")
	fs.Parse(args)

	ctx := engine.New(1, newLogger(*development), 4)
	defer ctx.Shutdown()

	parent := space.Dense(rect1(*lo, *hi))
	outs, done := partition.CreateEqualSubspaces(ctx, parent, *n, *gran, event.NoEvent)
	if err := ctx.Events.Wait(done); err != nil {
		return err
	}
	for i, o := range outs {
		fmt.Printf("piece %d: bounds=%s volume=%d\n", i, o.Bounds, o.Volume())
	}
	return nil
}

func runWeightedSplit(args []string) error {
	fs, development := newFlagSet("weighted-split")
	lo := fs.Int64("lo", 0, "lower bound of the domain")
	hi := fs.Int64("hi", 9, "upper bound of the domain, inclusive")
	weightsFlag := fs.String("weights", "1,2,1", "comma-separated weights")
	gran := fs.Int64("granularity", 1, "granularity unit")
	fs.Parse(args)

	weights, err := parseInt64List(*weightsFlag)
	if err != nil {
		return fmt.Errorf("departctl: invalid -weights: %w", err)
	}

	ctx := engine.New(2, newLogger(*development), 4)
	defer ctx.Shutdown()

	parent := space.Dense(rect1(*lo, *hi))
	outs, done := partition.CreateWeightedSubspaces(ctx, parent, weights, *gran, event.NoEvent)
	if err := ctx.Events.Wait(done); err != nil {
		return err
	}
	for i, o := range outs {
		fmt.Printf("piece %d: bounds=%s volume=%d\n", i, o.Bounds, o.Volume())
	}
	return nil
}

func runByField(args []string) error {
	fs, development := newFlagSet("by-field")
	colorsFlag := fs.String("colors", "0,1,2", "comma-separated colors to bucket into")
	fs.Parse(args)

	colors, err := parseInt64List(*colorsFlag)
	if err != nil {
		return fmt.Errorf("departctl: invalid -colors: %w", err)
	}

	values := []int32{0, 0, 1, 1, 2, 2, 0, 1}
	ctx := engine.New(3, newLogger(*development), 4)
	defer ctx.Shutdown()

	parent := space.Dense(rect1(0, int64(len(values)-1)))
	field := []accessor.Descriptor[int64, int64]{scalarField(values)}
	outs, done := partition.ByField(ctx, parent, field, colors, event.NoEvent)
	if err := ctx.Events.Wait(done); err != nil {
		return err
	}
	for i, o := range outs {
		fmt.Printf("color %d: points=%v\n", colors[i], points1D(o))
	}
	return nil
}

// runChain reproduces the by-field/by-preimage chain: bucket nodes by
// color, then partition edges by which color their source node landed in.
func runChain(args []string) error {
	fs, development := newFlagSet("chain")
	fs.Parse(args)

	ctx := engine.New(4, newLogger(*development), 4)
	defer ctx.Shutdown()

	nodeColors := []int32{0, 0, 1, 1, 2, 2, 0, 1}
	nodes := space.Dense(rect1(0, int64(len(nodeColors)-1)))
	colorField := []accessor.Descriptor[int64, int64]{scalarField(nodeColors)}
	nodesByColor, colorDone := partition.ByField(ctx, nodes, colorField, []int64{0, 1, 2}, event.NoEvent)

	edgeSrc := []int32{0, 2, 5, 7}
	edges := space.Dense(rect1(0, int64(len(edgeSrc)-1)))
	srcField := []accessor.Descriptor[int64, geometry.Point[int64]]{pointField(edgeSrc)}
	edgesBySource, preimageDone := partition.ByPreimage(ctx, edges, srcField, nodesByColor, colorDone)

	if err := ctx.Events.Wait(preimageDone); err != nil {
		return err
	}
	for i, o := range nodesByColor {
		fmt.Printf("nodes colored %d: %v\n", i, points1D(o))
	}
	for i, o := range edgesBySource {
		fmt.Printf("edges whose source is colored %d: %v\n", i, points1D(o))
	}
	return nil
}

func int32Instance(values []int32) *meminstance.Instance {
	inst := meminstance.New(int64(len(values)) * 4)
	buf := make([]byte, 4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf, uint32(v))
		if err := inst.Write(int64(i)*4, buf); err != nil {
			panic(err)
		}
	}
	return inst
}

func scalarField(values []int32) accessor.Descriptor[int64, int64] {
	return accessor.Descriptor[int64, int64]{
		Instance:   int32Instance(values),
		IndexSpace: space.Dense(geometry.NewRect(geometry.NewPoint[int64](0), geometry.NewPoint(int64(len(values)-1)))),
		Layout:     accessor.LayoutDescriptor{PerDimStride: []int64{4}, ElementSize: 4},
		Decode:     accessor.ScalarDecoder[int64](4),
	}
}

func pointField(values []int32) accessor.Descriptor[int64, geometry.Point[int64]] {
	return accessor.Descriptor[int64, geometry.Point[int64]]{
		Instance:   int32Instance(values),
		IndexSpace: space.Dense(geometry.NewRect(geometry.NewPoint[int64](0), geometry.NewPoint(int64(len(values)-1)))),
		Layout:     accessor.LayoutDescriptor{PerDimStride: []int64{4}, ElementSize: 4},
		Decode:     accessor.PointDecoder[int64](1, 4),
	}
}

func points1D(s space.IndexSpace[int64]) []int64 {
	var out []int64
	it := s.Iterator()
	for r, ok := it.Next(); ok; r, ok = it.Next() {
		rit := r.Iterator()
		for p, ok := rit.Next(); ok; p, ok = rit.Next() {
			out = append(out, p[0])
		}
	}
	return out
}

func parseInt64List(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	out := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, errors.New("expected a comma-separated list of integers")
		}
		out[i] = v
	}
	return out, nil
}
