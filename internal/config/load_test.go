package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masonbuild/mason/internal/config"
	masonerrors "github.com/masonbuild/mason/internal/errors"
	"github.com/masonbuild/mason/internal/task"
)

// Settings must satisfy the engine's configuration contract.
var _ task.Conf = (*config.Settings)(nil)

func loadForTest(t *testing.T) *config.Settings {
	t.Helper()

	// Run inside an empty directory so no real project or global
	// config file leaks into the test.
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	s, err := config.Load()
	require.NoError(t, err)
	return s
}

func TestLoad_Defaults(t *testing.T) {
	s := loadForTest(t)

	assert.False(t, s.Clean())
	assert.True(t, s.Fetch())
	assert.True(t, s.Build())
	assert.False(t, s.Redownload())
	assert.False(t, s.Reextract())
	assert.False(t, s.Reconfigure())
	assert.False(t, s.Rebuild())

	assert.Equal(t, "git", s.GitBinary())
	assert.True(t, s.Shallow())
	assert.False(t, s.NoPull())
	assert.Equal(t, "build", s.BuildDir())
	assert.Equal(t, "patches", s.PatchesDir())
	assert.Equal(t, "install", s.PrefixDir())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MASON_GLOBAL_CLEAN", "true")
	t.Setenv("MASON_TOOLS_GIT", "/usr/local/bin/git")
	s := loadForTest(t)

	assert.True(t, s.Clean())
	assert.Equal(t, "/usr/local/bin/git", s.GitBinary())
}

func TestSettings_SetOverridesEverything(t *testing.T) {
	s := loadForTest(t)

	s.Set("global.build", false)
	s.Set("global.rebuild", true)

	assert.False(t, s.Build())
	assert.True(t, s.Rebuild())
}

func TestSettings_TaskEnabled(t *testing.T) {
	s := loadForTest(t)

	t.Run("defaults to enabled", func(t *testing.T) {
		assert.True(t, s.TaskEnabled([]string{"libffi"}))
	})

	t.Run("explicit disable", func(t *testing.T) {
		s.Set("tasks.libffi.enabled", false)
		assert.False(t, s.TaskEnabled([]string{"libffi"}))
	})

	t.Run("alias lookup", func(t *testing.T) {
		s.Set("tasks.boostdi.enabled", false)
		assert.False(t, s.TaskEnabled([]string{"boost-di", "boostdi"}))
	})

	t.Run("read fresh, not snapshotted", func(t *testing.T) {
		s.Set("tasks.zlib.enabled", true)
		assert.True(t, s.TaskEnabled([]string{"zlib"}))
		s.Set("tasks.zlib.enabled", false)
		assert.False(t, s.TaskEnabled([]string{"zlib"}))
	})
}

func TestSnapshot(t *testing.T) {
	s := loadForTest(t)
	s.Set("tools.timeout", "30s")

	cfg, err := s.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Tools.GracePeriod)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *config.Config {
		return &config.Config{
			Tools: config.ToolsConfig{Git: "git"},
			Paths: config.PathsConfig{Build: "build"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		wantOK bool
	}{
		{"valid", func(*config.Config) {}, true},
		{"missing git", func(c *config.Config) { c.Tools.Git = "" }, false},
		{"negative timeout", func(c *config.Config) { c.Tools.Timeout = -time.Second }, false},
		{"negative grace period", func(c *config.Config) { c.Tools.GracePeriod = -1 }, false},
		{"missing build dir", func(c *config.Config) { c.Paths.Build = "" }, false},
		{"negative rotation", func(c *config.Config) { c.Log.MaxBackups = -1 }, false},
		{"negative parallelism", func(c *config.Config) { c.Global.Parallelism = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			err := config.Validate(cfg)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, masonerrors.ErrConfigInvalid)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, config.Validate(nil), masonerrors.ErrConfigNil)
}
