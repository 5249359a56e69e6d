package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	masonerrors "github.com/masonbuild/mason/internal/errors"
)

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "all set",
			info: BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"},
			want: "1.2.3 (commit: abc123, built: 2026-01-01)",
		},
		{
			name: "all empty",
			info: BuildInfo{},
			want: "dev (commit: none, built: unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, formatVersion(tt.info))
		})
	}
}

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("xml"))
	assert.False(t, IsValidOutputFormat(""))
}

func TestRootCmd_RejectsInvalidOutputFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	a := &app{flags: &GlobalFlags{}}
	cmd := newRootCmd(a, BuildInfo{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--output", "xml", "list"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, masonerrors.ErrInvalidOutputFormat)
}

func TestRootCmd_ListsTasks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	a := &app{flags: &GlobalFlags{}}
	cmd := newRootCmd(a, BuildInfo{})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"list"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "libffi")
	assert.Contains(t, out.String(), "boost-di (boostdi, boost_di)")
}

func TestRootCmd_ListsTasksJSON(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	a := &app{flags: &GlobalFlags{}}
	cmd := newRootCmd(a, BuildInfo{})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--output", "json", "list"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), `"name": "libffi"`)
	assert.Contains(t, out.String(), `"enabled": true`)
}

func TestRootCmd_ListFilterByPattern(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	a := &app{flags: &GlobalFlags{}}
	cmd := newRootCmd(a, BuildInfo{})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"list", "boost*"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "boost-di")
	assert.NotContains(t, out.String(), "libffi")
}

func TestRootCmd_ConfigShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	a := &app{flags: &GlobalFlags{}}
	cmd := newRootCmd(a, BuildInfo{})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "show"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "git: git")
	assert.Contains(t, out.String(), "fetch: true")
}
