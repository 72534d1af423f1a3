package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/meshlens/internal/analysis"
	"github.com/Faultbox/meshlens/internal/loader"
	"github.com/Faultbox/meshlens/internal/logger"
	"github.com/Faultbox/meshlens/internal/picking"
	"github.com/Faultbox/meshlens/internal/scene"
	"github.com/Faultbox/meshlens/internal/store"
	"github.com/Faultbox/meshlens/internal/telemetry"
	"github.com/Faultbox/meshlens/pkg/math"
	"github.com/Faultbox/meshlens/pkg/volume"
)

// objCube writes a closed box as an OBJ group using relative vertex indices.
func objCube(name string, lo, hi float32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "o %s\n", name)
	for _, v := range [][3]float32{
		{lo, lo, lo}, {hi, lo, lo}, {hi, hi, lo}, {lo, hi, lo},
		{lo, lo, hi}, {hi, lo, hi}, {hi, hi, hi}, {lo, hi, hi},
	} {
		fmt.Fprintf(&b, "v %g %g %g\n", v[0], v[1], v[2])
	}
	for _, f := range [][4]int{
		{1, 2, 3, 4}, {5, 6, 7, 8}, {1, 2, 6, 5},
		{4, 3, 7, 8}, {1, 4, 8, 5}, {2, 3, 7, 6},
	} {
		fmt.Fprintf(&b, "f %d %d %d %d\n", f[0]-9, f[1]-9, f[2]-9, f[3]-9)
	}
	return b.String()
}

// nestedScene has Outer enclosing Inner and a separate Far box.
func nestedScene() []byte {
	return []byte(objCube("Outer", 0, 4) + objCube("Inner", 1, 2) + objCube("Far", 10, 11))
}

func newTestPipeline(t *testing.T, opts Options) (*Pipeline, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	p, err := New(store.NewMemory(), scene.New(), telemetry.New(reg), opts)
	require.NoError(t, err)
	return p, reg
}

func TestLoadAnalyzesScene(t *testing.T) {
	p, _ := newTestPipeline(t, DefaultOptions())

	res, err := p.Load(context.Background(), "nested.obj", nestedScene())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.LoadID)
	assert.Equal(t, "nested.obj", res.Name)
	require.Len(t, res.Meshes, 3)
	require.NoError(t, res.BoundsErr)
	assert.Equal(t, volume.AABB{Max: math.Splat(11)}, res.Bounds)
	assert.Len(t, res.Markers, 72)

	// Analysis alone does not touch the scene.
	assert.Equal(t, scene.Stats{}, p.Scene().Stats())

	require.NoError(t, p.Commit(res))
	assert.Equal(t, scene.Stats{Meshes: 3, Markers: 72, Loads: 1}, p.Scene().Stats())
}

func TestLoadHugeBoundsSkipsSubdivision(t *testing.T) {
	p, _ := newTestPipeline(t, DefaultOptions())

	obj := "o Low\nv -3e38 -3e38 -3e38\nv -2e38 -3e38 -3e38\nv -3e38 -2e38 -3e38\nf 1 2 3\n" +
		"o High\nv 3e38 3e38 3e38\nv 2e38 3e38 3e38\nv 3e38 2e38 3e38\nf 4 5 6\n"

	res, err := p.Load(context.Background(), "huge.obj", []byte(obj))
	require.NoError(t, err)
	require.Len(t, res.Meshes, 2)
	require.NoError(t, res.BoundsErr)
	assert.True(t, res.Bounds.Valid())
	assert.Empty(t, res.Markers)
}

func TestLoadEmitRoot(t *testing.T) {
	opts := DefaultOptions()
	opts.Subdivide = analysis.SubdivideOptions{MaxDepth: 1, EmitRoot: true}
	p, _ := newTestPipeline(t, opts)

	res, err := p.Load(context.Background(), "box.obj", []byte(objCube("Box", 0, 2)))
	require.NoError(t, err)
	require.Len(t, res.Markers, 9)
	assert.Equal(t, res.Bounds, res.Markers[0].Box)
}

func TestLoadEmptyScene(t *testing.T) {
	p, _ := newTestPipeline(t, DefaultOptions())

	res, err := p.Load(context.Background(), "empty.babylon", []byte(`{"meshes":[]}`))
	require.NoError(t, err)
	require.ErrorIs(t, res.BoundsErr, volume.ErrEmptyInput)
	assert.Equal(t, volume.Empty(), res.Bounds)
	assert.Empty(t, res.Markers)

	require.NoError(t, p.Commit(res))
	assert.Equal(t, scene.Stats{}, p.Scene().Stats())
	assert.Empty(t, p.Scene().Bounds())
}

func TestLoadDecodeErrorLeavesSceneUntouched(t *testing.T) {
	p, reg := newTestPipeline(t, DefaultOptions())

	_, err := p.Load(context.Background(), "broken.obj", []byte("v 1 2\n"))
	var de *loader.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "broken.obj", de.Name)
	assert.Equal(t, scene.Stats{}, p.Scene().Stats())

	expected := `
# HELP meshlens_loads_total The total number of scene loads by result.
# TYPE meshlens_loads_total counter
meshlens_loads_total{result="decode_error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "meshlens_loads_total"))
}

type failingStore struct {
	store.Store
	putErr error
}

func (s failingStore) Put(ctx context.Context, name string, data []byte) (store.ID, error) {
	return 0, &store.Error{Op: "put", Err: s.putErr}
}

func TestLoadStoreError(t *testing.T) {
	boom := errors.New("disk full")
	p, err := New(failingStore{putErr: boom}, scene.New(), nil, DefaultOptions())
	require.NoError(t, err)

	_, err = p.Load(context.Background(), "a.obj", []byte(objCube("A", 0, 1)))
	require.ErrorIs(t, err, boom)
	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "put", se.Op)
}

func TestCommitAfterResetIsStale(t *testing.T) {
	p, _ := newTestPipeline(t, DefaultOptions())
	ctx := context.Background()

	res, err := p.Load(ctx, "nested.obj", nestedScene())
	require.NoError(t, err)

	require.NoError(t, p.Reset(ctx))
	require.ErrorIs(t, p.Commit(res), scene.ErrStaleGeneration)
	assert.Equal(t, scene.Stats{}, p.Scene().Stats())

	// The blob was cleared with the scene.
	_, err = p.store.Get(ctx, res.StoreID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestTickClassifiesOnChange(t *testing.T) {
	p, _ := newTestPipeline(t, DefaultOptions())
	res, err := p.Load(context.Background(), "nested.obj", nestedScene())
	require.NoError(t, err)
	require.NoError(t, p.Commit(res))

	ray := picking.NewRay(math.Vec3{X: 2, Y: 2, Z: -10}, math.Vec3{Z: 1})

	ev := p.Tick(ray)
	require.True(t, ev.Changed)
	require.NotNil(t, ev.Current)
	assert.Equal(t, "Outer", ev.Current.Name())
	inside, outside := ev.Partition.Names()
	assert.Equal(t, []string{"Inner"}, inside)
	assert.Equal(t, []string{"Far"}, outside)

	outer, ok := p.Scene().FindMesh("Outer")
	require.True(t, ok)
	assert.True(t, outer.Highlight().Enabled)

	// Same mesh next frame: no reclassification.
	ev = p.Tick(ray)
	assert.True(t, ev.Hit)
	assert.False(t, ev.Changed)

	st := p.Stats()
	assert.Equal(t, "Outer", st.Selected)
	assert.Equal(t, 1, st.Inside)
	assert.Equal(t, 1, st.Outside)

	// A miss keeps the selection by default.
	ev = p.Tick(picking.NewRay(math.Vec3{X: 2, Y: 2, Z: -10}, math.Vec3{Z: -1}))
	assert.False(t, ev.Hit)
	assert.False(t, ev.Changed)
	assert.Equal(t, "Outer", p.Stats().Selected)
}

func TestTickLogsSelectedMesh(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := logger.Log
	logger.Replace(zap.New(core))
	defer logger.Replace(prev)

	p, _ := newTestPipeline(t, DefaultOptions())
	res, err := p.Load(context.Background(), "nested.obj", nestedScene())
	require.NoError(t, err)
	require.NoError(t, p.Commit(res))

	ev := p.Tick(picking.NewRay(math.Vec3{X: 2, Y: 2, Z: -10}, math.Vec3{Z: 1}))
	require.True(t, ev.Changed)

	entries := logs.FilterMessage("selection changed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Outer", fields["mesh"])
	assert.Equal(t, ev.Current.Position().String(), fields["position"])
	assert.Equal(t, ev.Current.WorldAABB().String(), fields["bounds"])
	assert.Equal(t, "min(0.00, 0.00, 0.00) max(4.00, 4.00, 4.00)", fields["bounds"])
}

func TestResetForgetsSelection(t *testing.T) {
	p, _ := newTestPipeline(t, DefaultOptions())
	ctx := context.Background()
	res, err := p.Load(ctx, "nested.obj", nestedScene())
	require.NoError(t, err)
	require.NoError(t, p.Commit(res))

	p.Tick(picking.NewRay(math.Vec3{X: 2, Y: 2, Z: -10}, math.Vec3{Z: 1}))
	require.NotNil(t, p.Selected())

	require.NoError(t, p.Reset(ctx))
	assert.Nil(t, p.Selected())
	assert.Equal(t, Stats{}, p.Stats())
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.obj")
	b := filepath.Join(dir, "b.obj")
	require.NoError(t, os.WriteFile(a, []byte(objCube("A", 0, 1)), 0644))
	require.NoError(t, os.WriteFile(b, []byte(objCube("B", 5, 6)), 0644))
	missing := filepath.Join(dir, "missing.obj")

	p, _ := newTestPipeline(t, DefaultOptions())

	got := make(map[string]Outcome)
	for o := range p.LoadFiles(context.Background(), []string{a, b, missing}) {
		got[o.Path] = o
	}
	require.Len(t, got, 3)

	require.NoError(t, got[a].Err)
	require.NoError(t, got[b].Err)
	require.ErrorIs(t, got[missing].Err, os.ErrNotExist)

	require.NoError(t, p.Commit(got[a].Result))
	require.NoError(t, p.Commit(got[b].Result))
	assert.Equal(t, 2, p.Scene().Stats().Meshes)
	assert.Len(t, p.Scene().Bounds(), 2)

	m, ok := p.Scene().FindMesh("B")
	require.True(t, ok)
	assert.Equal(t, "b.obj", m.Source())
}

func TestNewRejectsDepth(t *testing.T) {
	for _, depth := range []int{0, analysis.MaxDepthLimit + 1} {
		opts := DefaultOptions()
		opts.Subdivide.MaxDepth = depth
		_, err := New(store.NewMemory(), scene.New(), nil, opts)
		require.ErrorIs(t, err, analysis.ErrDepthLimit, "depth %d", depth)
	}
}
