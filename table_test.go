//go:build !windows

package subprocess

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTableTracksHandles(t *testing.T) {
	table := NewTable(WithTableLogger(zaptest.NewLogger(t)))

	p, err := table.Spawn("sh", []string{"-c", "sleep 30"})
	require.NoError(t, err)
	defer func() {
		_ = p.Kill()
		p.Wait(testWait)
		_ = p.Release()
	}()

	assert.Equal(t, 1, table.Len())

	got, ok := table.Get(p.ID())
	require.True(t, ok)
	assert.Same(t, p, got)

	require.Len(t, table.Handles(), 1)
}

func TestTableReleaseRemovesHandle(t *testing.T) {
	table := NewTable()

	p, err := table.Spawn("sh", []string{"-c", "exit 0"})
	require.NoError(t, err)
	p.Wait(testWait)

	require.NoError(t, table.Release(p.ID()))
	assert.Equal(t, 0, table.Len())

	_, ok := table.Get(p.ID())
	assert.False(t, ok)
}

func TestTableReleaseUnknownID(t *testing.T) {
	table := NewTable()

	err := table.Release("not-a-handle")
	var handleErr *HandleError
	require.ErrorAs(t, err, &handleErr)
	assert.ErrorIs(t, err, ErrHandleReleased)
}

func TestTableReleaseAll(t *testing.T) {
	table := NewTable()

	for i := 0; i < 3; i++ {
		_, err := table.Spawn("sh", []string{"-c", "exit 0"})
		require.NoError(t, err)
	}
	for _, p := range table.Handles() {
		p.Wait(testWait)
	}

	require.NoError(t, table.ReleaseAll())
	assert.Equal(t, 0, table.Len())
}

func TestTableExitCallback(t *testing.T) {
	exited := make(chan *Process, 1)
	table := NewTable(WithExitCallback(func(p *Process) {
		exited <- p
	}))

	p, err := table.Spawn("sh", []string{"-c", "exit 0"})
	require.NoError(t, err)
	defer p.Release()

	select {
	case got := <-exited:
		assert.Same(t, p, got)
	case <-time.After(testWait):
		t.Fatal("exit callback never fired")
	}
}
