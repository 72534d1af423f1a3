// Package pipeline turns uploaded scene files into analyzed scene batches
// and drives the per-frame hover selection.
//
// A load runs store, decode, cumulative bounds and octree subdivision off
// the render thread and produces a Result. Results are applied to the
// scene with Commit on the render thread; results produced before a Reset
// are rejected there.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/meshlens/internal/analysis"
	"github.com/Faultbox/meshlens/internal/loader"
	"github.com/Faultbox/meshlens/internal/logger"
	"github.com/Faultbox/meshlens/internal/picking"
	"github.com/Faultbox/meshlens/internal/scene"
	"github.com/Faultbox/meshlens/internal/store"
	"github.com/Faultbox/meshlens/internal/telemetry"
	"github.com/Faultbox/meshlens/pkg/volume"
)

// Options configures analysis for every load.
type Options struct {
	Subdivide analysis.SubdivideOptions
	Selector  analysis.SelectorOptions
}

// DefaultOptions subdivides two levels below the cumulative box.
func DefaultOptions() Options {
	return Options{
		Subdivide: analysis.SubdivideOptions{MaxDepth: 2},
		Selector:  analysis.DefaultSelectorOptions(),
	}
}

// Result is the analyzed output of one load.
type Result struct {
	LoadID  uuid.UUID
	StoreID store.ID
	Name    string
	Meshes  []*scene.Mesh

	// Bounds is the cumulative box of Meshes. BoundsErr is
	// volume.ErrEmptyInput when no mesh had valid bounds; Bounds is then
	// volume.Empty() and Markers is nil.
	Bounds    volume.AABB
	BoundsErr error
	Markers   []analysis.Marker

	// Generation is the scene generation the load started in.
	Generation uint64
	Duration   time.Duration
}

// Batch converts the result for scene.Commit.
func (r *Result) Batch() scene.Batch {
	return scene.Batch{
		Generation: r.Generation,
		Source:     r.Name,
		Meshes:     r.Meshes,
		Bounds:     r.Bounds,
		HasBounds:  r.BoundsErr == nil,
		Markers:    r.Markers,
	}
}

// Outcome is the result of loading one file from disk.
type Outcome struct {
	Path   string
	Result *Result
	Err    error
}

// Stats is a display snapshot of the scene and selection.
type Stats struct {
	scene.Stats
	Selected string
	Inside   int
	Outside  int
}

// Pipeline owns the load path and the hover selector.
type Pipeline struct {
	store    store.Store
	scene    *scene.Scene
	selector *analysis.Selector
	metrics  *telemetry.Metrics
	opts     Options
	log      *zap.Logger
}

// New creates a pipeline. metrics may be nil.
func New(st store.Store, sc *scene.Scene, metrics *telemetry.Metrics, opts Options) (*Pipeline, error) {
	if d := opts.Subdivide.MaxDepth; d < 1 || d > analysis.MaxDepthLimit {
		return nil, fmt.Errorf("%w: %d (limit %d)", analysis.ErrDepthLimit, d, analysis.MaxDepthLimit)
	}
	return &Pipeline{
		store:    st,
		scene:    sc,
		selector: analysis.NewSelector(sc, sc, opts.Selector),
		metrics:  metrics,
		opts:     opts,
		log:      logger.Named("pipeline"),
	}, nil
}

// Scene returns the scene the pipeline commits to.
func (p *Pipeline) Scene() *scene.Scene {
	return p.scene
}

// Load stores data, reads it back, decodes it and analyzes the meshes.
// A failure at any step returns an error and no result; nothing is
// committed either way.
func (p *Pipeline) Load(ctx context.Context, name string, data []byte) (*Result, error) {
	start := time.Now()
	res := &Result{
		LoadID:     uuid.New(),
		Name:       name,
		Generation: p.scene.Generation(),
	}
	log := logger.ForLoad(res.LoadID, name)
	log.Debug("load started", zap.Int("bytes", len(data)))

	id, err := p.store.Put(ctx, name, data)
	if err != nil {
		p.metrics.ObserveLoad(telemetry.ResultStoreError, time.Since(start))
		log.Warn("storing scene failed", zap.Error(err))
		return nil, fmt.Errorf("storing %s: %w", name, err)
	}
	res.StoreID = id

	rec, err := p.store.Get(ctx, id)
	if err != nil {
		p.metrics.ObserveLoad(telemetry.ResultStoreError, time.Since(start))
		log.Warn("reading stored scene failed", zap.Stringer("store_id", id), zap.Error(err))
		return nil, fmt.Errorf("reading %s back: %w", name, err)
	}

	meshes, err := loader.Decode(rec.Name, rec.Data)
	if err != nil {
		p.metrics.ObserveLoad(telemetry.ResultDecodeError, time.Since(start))
		log.Warn("decoding scene failed", zap.Error(err))
		return nil, err
	}
	res.Meshes = meshes

	res.Bounds, res.BoundsErr = volume.Cumulative(meshes)
	if res.BoundsErr != nil {
		res.Duration = time.Since(start)
		p.metrics.ObserveLoad(telemetry.ResultEmpty, res.Duration)
		log.Info("scene has no bounded meshes, skipping subdivision", zap.Int("meshes", len(meshes)))
		return res, nil
	}

	res.Markers, err = analysis.Collect(res.Bounds, p.opts.Subdivide)
	switch {
	case errors.Is(err, analysis.ErrDegenerateVolume):
		log.Warn("cumulative bounds are degenerate, skipping subdivision", zap.Stringer("bounds", res.Bounds))
	case err != nil:
		return nil, err
	}

	res.Duration = time.Since(start)
	p.metrics.ObserveLoad(telemetry.ResultOK, res.Duration)
	log.Info("scene analyzed",
		zap.Stringer("store_id", id),
		zap.Int("meshes", len(meshes)),
		zap.Stringer("bounds", res.Bounds),
		zap.Int("markers", len(res.Markers)),
		zap.Duration("took", res.Duration))
	return res, nil
}

// LoadFiles reads and loads each path on its own goroutine. Outcomes are
// delivered in completion order; the channel is closed when all are done.
func (p *Pipeline) LoadFiles(ctx context.Context, paths []string) <-chan Outcome {
	out := make(chan Outcome, len(paths))

	var wg sync.WaitGroup
	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			res, err := p.LoadFile(ctx, path)
			out <- Outcome{Path: path, Result: res, Err: err}
		}(path)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// LoadFile reads path and loads it under its base name.
func (p *Pipeline) LoadFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.metrics.ObserveLoad(telemetry.ResultStoreError, 0)
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.Load(ctx, filepath.Base(path), data)
}

// Commit adds a result to the scene. It returns scene.ErrStaleGeneration
// for results that started before the last Reset.
func (p *Pipeline) Commit(res *Result) error {
	if err := p.scene.Commit(res.Batch()); err != nil {
		if errors.Is(err, scene.ErrStaleGeneration) {
			p.metrics.ObserveLoad(telemetry.ResultStale, 0)
			p.log.Debug("discarding load from before reset",
				zap.Stringer("load_id", res.LoadID), zap.String("file", res.Name))
		}
		return err
	}

	st := p.scene.Stats()
	p.metrics.SetSceneSize(st.Meshes, st.Markers)
	return nil
}

// Reset empties the scene and the blob store and forgets the selection.
// The scene is reset even when clearing the store fails.
func (p *Pipeline) Reset(ctx context.Context) error {
	gen := p.scene.Reset()
	p.selector.Reset()
	p.metrics.SetSceneSize(0, 0)
	p.log.Info("scene reset", zap.Uint64("generation", gen))

	if err := p.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	return nil
}

// Tick runs one frame of hover selection along r.
func (p *Pipeline) Tick(r picking.Ray) analysis.Event {
	ev := p.selector.Tick(r, p.scene.Proxies())
	if !ev.Changed {
		return ev
	}

	p.metrics.ObserveSelection(len(ev.Partition.Inside), len(ev.Partition.Outside))
	if ev.Current == nil {
		p.log.Debug("selection cleared")
		return ev
	}
	if ce := p.log.Check(zap.DebugLevel, "selection changed"); ce != nil {
		inside, outside := ev.Partition.Names()
		ce.Write(
			zap.String("mesh", ev.Current.Name()),
			zap.Stringer("position", ev.Current.Position()),
			zap.Stringer("bounds", ev.Current.WorldAABB()),
			zap.Strings("inside", inside),
			zap.Strings("outside", outside))
	}
	return ev
}

// Selected returns the currently selected mesh, or nil.
func (p *Pipeline) Selected() analysis.MeshProxy {
	return p.selector.Current()
}

// Stats returns a display snapshot.
func (p *Pipeline) Stats() Stats {
	st := Stats{Stats: p.scene.Stats()}
	if cur := p.selector.Current(); cur != nil {
		part := p.selector.Partition()
		st.Selected = cur.Name()
		st.Inside = len(part.Inside)
		st.Outside = len(part.Outside)
	}
	return st
}
