package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	b, err := OpenBolt(filepath.Join(t.TempDir(), "data", "scenes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"bolt":   b,
	}
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			id1, err := s.Put(ctx, "a.obj", []byte("v 0 0 0"))
			require.NoError(t, err)
			id2, err := s.Put(ctx, "b.glb", []byte{0x67, 0x6c, 0x54, 0x46})
			require.NoError(t, err)
			assert.NotEqual(t, id1, id2)

			rec, err := s.Get(ctx, id1)
			require.NoError(t, err)
			assert.Equal(t, id1, rec.ID)
			assert.Equal(t, "a.obj", rec.Name)
			assert.Equal(t, []byte("v 0 0 0"), rec.Data)

			rec, err = s.Get(ctx, id2)
			require.NoError(t, err)
			assert.Equal(t, []byte{0x67, 0x6c, 0x54, 0x46}, rec.Data)
		})
	}
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			id, err := s.Put(ctx, "a.obj", []byte("v 0 0 0"))
			require.NoError(t, err)

			rec, err := s.Get(ctx, id)
			require.NoError(t, err)
			rec.Data[0] = 'x'

			rec, err = s.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, []byte("v 0 0 0"), rec.Data)
		})
	}
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, 42)
			require.ErrorIs(t, err, ErrNotFound)

			var se *Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "get", se.Op)
		})
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			id, err := s.Put(ctx, "a.obj", []byte("x"))
			require.NoError(t, err)

			require.NoError(t, s.Clear(ctx))
			_, err = s.Get(ctx, id)
			require.ErrorIs(t, err, ErrNotFound)

			next, err := s.Put(ctx, "b.obj", []byte("y"))
			require.NoError(t, err)
			assert.Greater(t, next, id)
		})
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Put(ctx, "a.obj", nil)
			require.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestBoltReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scenes.db")

	s, err := OpenBolt(path)
	require.NoError(t, err)
	id, err := s.Put(ctx, "kept.babylon", []byte(`{"meshes":[]}`))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "kept.babylon", rec.Name)
}

func TestMemoryClosed(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Close())

	_, err := s.Put(context.Background(), "a", nil)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "put", se.Op)
}
