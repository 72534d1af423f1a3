package viewer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/meshlens/internal/pipeline"
	"github.com/Faultbox/meshlens/internal/scene"
)

func TestLoadQueuePoll(t *testing.T) {
	done := make(chan pipeline.Outcome, 2)
	done <- pipeline.Outcome{Path: "a.obj"}
	done <- pipeline.Outcome{Path: "b.obj", Err: errors.New("boom")}
	close(done)

	running := make(chan pipeline.Outcome, 2)
	running <- pipeline.Outcome{Path: "c.obj"}

	var q loadQueue
	q.add(done)
	q.add(running)

	var got []string
	collect := func(o pipeline.Outcome) { got = append(got, o.Path) }

	q.poll(collect)
	assert.Equal(t, []string{"a.obj", "b.obj", "c.obj"}, got)
	assert.Equal(t, 1, q.len(), "closed batch dropped, open batch kept")

	got = nil
	q.poll(collect)
	assert.Empty(t, got)
	assert.Equal(t, 1, q.len())

	running <- pipeline.Outcome{Path: "d.obj"}
	close(running)
	q.poll(collect)
	assert.Equal(t, []string{"d.obj"}, got)
	assert.Zero(t, q.len())
}

func TestReceiveAll(t *testing.T) {
	ch := make(chan string, 4)
	assert.Empty(t, receiveAll(ch))

	ch <- "a.obj"
	ch <- "b.glb"
	assert.Equal(t, []string{"a.obj", "b.glb"}, receiveAll(ch))
	assert.Empty(t, receiveAll(ch))
}

func TestMergePaths(t *testing.T) {
	got := mergePaths([]string{"a.obj", "b.glb", "a.obj"}, []string{"c.babylon", "b.glb"})
	assert.Equal(t, []string{"a.obj", "b.glb", "c.babylon"}, got)
	assert.Empty(t, mergePaths(nil, nil))
}

func TestReloadGivesUpOnCancel(t *testing.T) {
	v := &Viewer{reloads: make(chan string, 1)}

	assert.True(t, v.Reload(context.Background(), "a.obj"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, v.Reload(ctx, "b.obj"), "full queue and cancelled context")
	assert.Equal(t, []string{"a.obj"}, receiveAll(v.reloads))
}

func TestFormatTitle(t *testing.T) {
	tests := []struct {
		name    string
		stats   pipeline.Stats
		fps     int
		loading int
		want    string
	}{
		{
			name: "empty",
			fps:  60,
			want: "MeshLens - 0 meshes, 0 markers | 60 FPS",
		},
		{
			name: "selection",
			stats: pipeline.Stats{
				Stats:    scene.Stats{Meshes: 3, Markers: 72, Loads: 1},
				Selected: "Outer",
				Inside:   1,
				Outside:  1,
			},
			fps:  59,
			want: "MeshLens - 3 meshes, 72 markers | Outer: 1 inside, 1 outside | 59 FPS",
		},
		{
			name:    "loading",
			stats:   pipeline.Stats{Stats: scene.Stats{Meshes: 1}},
			fps:     30,
			loading: 2,
			want:    "MeshLens - 1 meshes, 0 markers | loading 2 | 30 FPS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatTitle(tt.stats, tt.fps, tt.loading))
		})
	}
}
