package progress_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-builder/internal/progress"
)

func TestTracker_Lifecycle(t *testing.T) {
	tr := progress.NewTracker(3)
	assert.Equal(t, progress.StatusIdle, tr.Snapshot().Status)

	require.NoError(t, tr.Begin("r1", 3))
	tr.SetIteration(2)
	tr.SetOutput("partial")

	s := tr.Snapshot()
	assert.Equal(t, progress.StatusRunning, s.Status)
	assert.Equal(t, 2, s.Iteration)
	assert.Equal(t, "partial", s.Output)
	assert.False(t, s.Completed)

	tr.Complete("done")
	s = tr.Snapshot()
	assert.Equal(t, progress.StatusCompleted, s.Status)
	assert.True(t, s.Completed)
	assert.Equal(t, "done", s.Output)
}

func TestTracker_SecondBeginWhileRunning(t *testing.T) {
	tr := progress.NewTracker(1)
	require.NoError(t, tr.Begin("r1", 1))
	assert.ErrorIs(t, tr.Begin("r2", 1), progress.ErrRunActive)

	tr.Complete("")
	assert.NoError(t, tr.Begin("r2", 1))
	assert.Equal(t, "r2", tr.Snapshot().RunID)
}

func TestTracker_IterationNeverExceedsCeiling(t *testing.T) {
	tr := progress.NewTracker(2)
	require.NoError(t, tr.Begin("r", 2))
	tr.SetIteration(5)
	assert.Equal(t, 2, tr.Snapshot().Iteration)
}

func TestTracker_FailReportsError(t *testing.T) {
	tr := progress.NewTracker(2)
	require.NoError(t, tr.Begin("r", 2))
	tr.Fail("Model does not support function calling.")
	s := tr.Snapshot()
	assert.Equal(t, progress.StatusError, s.Status)
	assert.True(t, s.Completed)
}

func TestTracker_ConcurrentReaders(t *testing.T) {
	tr := progress.NewTracker(100)
	require.NoError(t, tr.Begin("r", 100))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= 100; i++ {
			tr.SetIteration(i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s := tr.Snapshot()
			assert.LessOrEqual(t, s.Iteration, s.MaxIterations)
		}
	}()
	wg.Wait()
}
