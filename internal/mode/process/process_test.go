package process

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actiondriver/internal/model"
)

func TestSanitize_ReplacesPathSeparatorsAndHash(t *testing.T) {
	assert.Equal(t, "pkg_a_TestFoo.bin", sanitize("pkg/a#TestFoo"))
}

func TestSplitLines_HandlesTrailingPartialLine(t *testing.T) {
	assert.Equal(t, []string{"one", "two", "three"}, splitLines("one\ntwo\nthree"))
	assert.Equal(t, []string{"one", "two"}, splitLines("one\ntwo\n"))
}

func TestMode_PrepareCreatesWorkDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "workspace")
	m := New(Config{WorkDir: dir})

	require.NoError(t, m.Prepare(context.Background()))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMode_BuildAndInstall_UnsupportedWithoutSource(t *testing.T) {
	m := New(Config{WorkDir: t.TempDir()})
	action := model.Action{Name: "bare.ClassName"}

	outcome, err := m.BuildAndInstall(context.Background(), action)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, model.ResultUnsupported, outcome.Result)
}

func TestMode_CleanupIsIdempotentWhenBinaryAbsent(t *testing.T) {
	m := New(Config{WorkDir: t.TempDir()})
	action := model.Action{Name: "pkg.Ghost", SourcePath: "pkg/ghost_test.go"}

	assert.NoError(t, m.Cleanup(context.Background(), action))
}

func TestMode_GetClasspathFallsBackToGOPATH(t *testing.T) {
	t.Setenv("GOMODCACHE", "")
	t.Setenv("GOPATH", "/gopath")
	m := New(Config{WorkDir: t.TempDir()})
	cp := m.GetClasspath()
	require.Len(t, cp, 1)
	assert.Equal(t, filepath.Join("/gopath", "pkg", "mod"), cp[0])
}
