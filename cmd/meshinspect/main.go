// meshinspect runs the MeshLens analysis on scene files without a window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/meshlens/internal/analysis"
	"github.com/Faultbox/meshlens/internal/loader"
	"github.com/Faultbox/meshlens/internal/logger"
	"github.com/Faultbox/meshlens/internal/picking"
	"github.com/Faultbox/meshlens/internal/pipeline"
	"github.com/Faultbox/meshlens/internal/scene"
	"github.com/Faultbox/meshlens/internal/store"
	"github.com/Faultbox/meshlens/pkg/math"
	"github.com/Faultbox/meshlens/pkg/volume"
)

var errUsage = errors.New("invalid usage")

func main() {
	err := run(context.Background(), os.Args[1:], os.Stdout)
	if errors.Is(err, errUsage) {
		printUsage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshinspect - scene bounding volume analysis

Usage:
  meshinspect [-v] <command> [options]

Commands:
  info <file>...                          List meshes with their bounds
  bounds <file>...                        Print the cumulative bounds of all files
  octree [-depth N] [-root] <file>...     List octree markers of the cumulative bounds
  classify <file> <mesh>                  Split the scene into meshes inside/outside <mesh>
  pick <file> <ox> <oy> <oz> <dx> <dy> <dz>
                                          Cast a ray and classify against the hit mesh

Examples:
  meshinspect info warehouse.glb
  meshinspect octree -depth 3 warehouse.glb
  meshinspect classify warehouse.glb Shelf
  meshinspect pick warehouse.glb 0 1 10 0 0 -1`)
}

func run(ctx context.Context, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("meshinspect", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	verbose := fs.Bool("v", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil || fs.NArg() < 1 {
		return errUsage
	}
	if *verbose {
		if err := logger.Init("debug", ""); err != nil {
			return err
		}
		defer logger.Sync()
	}

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "info":
		return cmdInfo(ctx, rest, w)
	case "bounds":
		return cmdBounds(ctx, rest, w)
	case "octree":
		return cmdOctree(ctx, rest, w)
	case "classify":
		return cmdClassify(ctx, rest, w)
	case "pick":
		return cmdPick(ctx, rest, w)
	case "help", "-h", "--help":
		printUsage(w)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

// openScene loads every file into a fresh in-memory pipeline and commits
// the results in argument order.
func openScene(ctx context.Context, opts pipeline.Options, paths []string) (*pipeline.Pipeline, []*pipeline.Result, error) {
	p, err := pipeline.New(store.NewMemory(), scene.New(), nil, opts)
	if err != nil {
		return nil, nil, err
	}

	results := make([]*pipeline.Result, 0, len(paths))
	for _, path := range paths {
		res, err := p.LoadFile(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		if err := p.Commit(res); err != nil {
			return nil, nil, err
		}
		results = append(results, res)
	}
	return p, results, nil
}

func cmdInfo(ctx context.Context, args []string, w io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		meshes, err := loader.Decode(path, data)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "File:    %s\n", path)
		fmt.Fprintf(w, "Format:  %s\n", loader.Detect(path, data))
		fmt.Fprintf(w, "Meshes:  %d\n", len(meshes))
		for _, m := range meshes {
			fmt.Fprintf(w, "  %-24s %6d tris  %s\n", m.Name(), m.TriangleCount(), m.WorldAABB())
		}
		fmt.Fprintln(w)
	}
	return nil
}

func cmdBounds(ctx context.Context, args []string, w io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	_, results, err := openScene(ctx, pipeline.DefaultOptions(), args)
	if err != nil {
		return err
	}

	var acc volume.Accumulator
	for _, res := range results {
		if res.BoundsErr != nil {
			fmt.Fprintf(w, "%-24s (no geometry)\n", res.Name)
			continue
		}
		acc.Add(res.Bounds)
		fmt.Fprintf(w, "%-24s %s\n", res.Name, res.Bounds)
	}

	total, err := acc.Bounds()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%-24s %s\n", "total", total)
	fmt.Fprintf(w, "%-24s center %s size %s volume %.2f\n", "", total.Center(), total.Size(), total.Volume())
	return nil
}

func cmdOctree(ctx context.Context, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("octree", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	depth := fs.Int("depth", 2, "Subdivision depth")
	root := fs.Bool("root", false, "Also emit the cumulative box itself")
	if err := fs.Parse(args); err != nil || fs.NArg() < 1 {
		return errUsage
	}

	opts := pipeline.DefaultOptions()
	opts.Subdivide = analysis.SubdivideOptions{MaxDepth: *depth, EmitRoot: *root}

	_, results, err := openScene(ctx, opts, fs.Args())
	if err != nil {
		return err
	}

	for _, res := range results {
		fmt.Fprintf(w, "%s: %d markers\n", res.Name, len(res.Markers))
		for _, m := range res.Markers {
			fmt.Fprintf(w, "  %sdepth %d center %s extents %s\n",
				strings.Repeat("  ", m.Depth), m.Depth, m.Center, m.HalfExtents())
		}
	}
	return nil
}

func cmdClassify(ctx context.Context, args []string, w io.Writer) error {
	if len(args) != 2 {
		return errUsage
	}

	p, _, err := openScene(ctx, pipeline.DefaultOptions(), args[:1])
	if err != nil {
		return err
	}

	ref, ok := p.Scene().FindMesh(args[1])
	if !ok {
		return fmt.Errorf("mesh %q not found in %s", args[1], args[0])
	}
	printPartition(w, ref, analysis.ClassifyMesh(ref, p.Scene().Proxies()))
	return nil
}

func cmdPick(ctx context.Context, args []string, w io.Writer) error {
	if len(args) != 7 {
		return errUsage
	}

	var v [6]float32
	for i, s := range args[1:] {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return fmt.Errorf("%w: bad coordinate %q", errUsage, s)
		}
		v[i] = float32(f)
	}
	ray := picking.NewRay(math.Vec3{X: v[0], Y: v[1], Z: v[2]}, math.Vec3{X: v[3], Y: v[4], Z: v[5]})
	if !ray.Valid() {
		return fmt.Errorf("%w: zero ray direction", errUsage)
	}

	p, _, err := openScene(ctx, pipeline.DefaultOptions(), args[:1])
	if err != nil {
		return err
	}

	ev := p.Tick(ray)
	if ev.Current == nil {
		fmt.Fprintln(w, "no hit")
		return nil
	}
	printPartition(w, ev.Current, ev.Partition)
	return nil
}

func printPartition(w io.Writer, ref analysis.MeshProxy, part analysis.Partition) {
	inside, outside := part.Names()
	fmt.Fprintf(w, "Mesh:    %s at %s %s\n", ref.Name(), ref.Position(), ref.WorldAABB())
	fmt.Fprintf(w, "Inside:  %d %s\n", len(inside), strings.Join(inside, ", "))
	fmt.Fprintf(w, "Outside: %d %s\n", len(outside), strings.Join(outside, ", "))
}
