package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	masonerrors "github.com/masonbuild/mason/internal/errors"
	"github.com/masonbuild/mason/internal/task"
)

func TestCoordinator_RegistrationOrder(t *testing.T) {
	t.Parallel()

	coord, _ := newTestCoordinator()
	conf := fetchOnlyConf()

	task.New(coord, conf, nil, "zlib")
	task.New(coord, conf, nil, "libffi")
	task.New(coord, conf, nil, "boost-di", "boostdi")

	names := []string{}
	for _, tk := range coord.Tasks() {
		names = append(names, tk.Name())
	}
	assert.Equal(t, []string{"zlib", "libffi", "boost-di"}, names)
}

func TestCoordinator_Find(t *testing.T) {
	t.Parallel()

	coord, _ := newTestCoordinator()
	conf := fetchOnlyConf()
	task.New(coord, conf, nil, "libffi")
	task.New(coord, conf, nil, "libloot")
	task.New(coord, conf, nil, "boost-di", "boostdi")

	t.Run("exact", func(t *testing.T) {
		t.Parallel()
		matched, err := coord.Find("LIBFFI")
		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, "libffi", matched[0].Name())
	})

	t.Run("alias", func(t *testing.T) {
		t.Parallel()
		matched, err := coord.Find("boost_di")
		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, "boost-di", matched[0].Name())
	})

	t.Run("glob", func(t *testing.T) {
		t.Parallel()
		matched, err := coord.Find("lib*")
		require.NoError(t, err)
		require.Len(t, matched, 2)
	})

	t.Run("invalid glob aborts", func(t *testing.T) {
		t.Parallel()
		_, err := coord.Find("lib[*")
		assert.ErrorIs(t, err, masonerrors.ErrInvalidPattern)
	})

	t.Run("no match is empty, not an error", func(t *testing.T) {
		t.Parallel()
		matched, err := coord.Find("python")
		require.NoError(t, err)
		assert.Empty(t, matched)
	})
}

func TestCoordinator_InterruptAll(t *testing.T) {
	t.Parallel()

	coord, _ := newTestCoordinator()
	conf := fetchOnlyConf()
	a := task.New(coord, conf, nil, "a")
	b := task.New(coord, conf, nil, "b")
	hiddenChild := task.New(coord, conf, nil, "c")
	task.NewParallel(coord, conf, hiddenChild)

	coord.InterruptAll()

	assert.True(t, a.Interrupted())
	assert.True(t, b.Interrupted())
	assert.True(t, hiddenChild.Interrupted(), "hidden tasks must still receive the broadcast")
	assert.True(t, coord.Interrupted())
	assert.Equal(t, 1, coord.Interruptions())
}

func TestRunAll(t *testing.T) {
	t.Parallel()

	t.Run("runs selected tasks in registration order", func(t *testing.T) {
		t.Parallel()
		coord, _ := newTestCoordinator()
		conf := fetchOnlyConf()
		h1, h2, h3 := &hookRecorder{}, &hookRecorder{}, &hookRecorder{}
		task.New(coord, conf, h1, "libffi")
		task.New(coord, conf, h2, "spdlog")
		task.New(coord, conf, h3, "libbsarch")

		require.NoError(t, coord.RunAll(context.Background(), []string{"lib*"}))

		assert.Equal(t, []string{"fetch"}, h1.Calls())
		assert.Empty(t, h2.Calls())
		assert.Equal(t, []string{"fetch"}, h3.Calls())
	})

	t.Run("no patterns runs everything", func(t *testing.T) {
		t.Parallel()
		coord, _ := newTestCoordinator()
		conf := fetchOnlyConf()
		h1, h2 := &hookRecorder{}, &hookRecorder{}
		task.New(coord, conf, h1, "a")
		task.New(coord, conf, h2, "b")

		require.NoError(t, coord.RunAll(context.Background(), nil))
		assert.Equal(t, []string{"fetch"}, h1.Calls())
		assert.Equal(t, []string{"fetch"}, h2.Calls())
	})

	t.Run("duplicate selections run once", func(t *testing.T) {
		t.Parallel()
		coord, _ := newTestCoordinator()
		conf := fetchOnlyConf()
		h := &hookRecorder{}
		task.New(coord, conf, h, "libffi")

		require.NoError(t, coord.RunAll(context.Background(), []string{"libffi", "lib*"}))
		assert.Equal(t, []string{"fetch"}, h.Calls())
	})

	t.Run("unmatched pattern aborts", func(t *testing.T) {
		t.Parallel()
		coord, _ := newTestCoordinator()
		task.New(coord, fetchOnlyConf(), nil, "libffi")

		err := coord.RunAll(context.Background(), []string{"nosuchtask"})
		assert.ErrorIs(t, err, masonerrors.ErrNoTasksMatched)
	})

	t.Run("invalid pattern aborts", func(t *testing.T) {
		t.Parallel()
		coord, _ := newTestCoordinator()
		task.New(coord, fetchOnlyConf(), nil, "libffi")

		err := coord.RunAll(context.Background(), []string{"lib[*"})
		assert.ErrorIs(t, err, masonerrors.ErrInvalidPattern)
	})

	t.Run("bail-out stops later tasks and fails the build", func(t *testing.T) {
		t.Parallel()
		coord, _ := newTestCoordinator()
		conf := fetchOnlyConf()
		bad := &hookRecorder{fetchErr: masonerrors.ErrBailedOut}
		after := &hookRecorder{}
		task.New(coord, conf, bad, "bad")
		task.New(coord, conf, after, "after")

		err := coord.RunAll(context.Background(), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, masonerrors.ErrInterrupted)
		assert.Empty(t, after.Calls(), "tasks after a bail-out must not start")
	})
}

func TestStats(t *testing.T) {
	t.Parallel()

	s := task.NewStats()
	s.Record("libffi", "fetch", 3*time.Second)
	s.Record("libffi", "build", 2*time.Second)
	s.Record("zlib", "fetch", time.Second)

	timings := s.Timings()
	require.Len(t, timings, 3)
	assert.Equal(t, "libffi", timings[0].Task)
	assert.Equal(t, "fetch", timings[0].Phase)

	assert.Equal(t, 5*time.Second, s.TotalFor("libffi"))
	assert.Equal(t, time.Second, s.TotalFor("zlib"))
	assert.Zero(t, s.TotalFor("unknown"))
}

func TestRunAll_RecordsPhaseTimings(t *testing.T) {
	t.Parallel()

	coord, _ := newTestCoordinator()
	conf := &fakeConf{fetch: true, build: true}
	task.New(coord, conf, &hookRecorder{}, "libffi")

	require.NoError(t, coord.RunAll(context.Background(), nil))

	phases := []string{}
	for _, pt := range coord.Stats().Timings() {
		phases = append(phases, pt.Phase)
	}
	assert.Equal(t, []string{"fetch", "build"}, phases)
}
