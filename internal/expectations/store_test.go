package expectations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actiondriver/internal/model"
)

func TestStore_ExactMatch(t *testing.T) {
	s := New()
	s.Set(model.Expectation{Name: "pkg.A", Result: model.ResultCompileFailed})

	got := s.Get("pkg.A")
	assert.Equal(t, model.ResultCompileFailed, got.Result)
}

func TestStore_SuitePrefixFallback(t *testing.T) {
	s := New()
	s.Set(model.Expectation{Name: "pkg.Suite", Result: model.ResultUnsupported})

	got := s.Get("pkg.Suite#testMethod")
	assert.Equal(t, model.ResultUnsupported, got.Result)
}

func TestStore_DefaultsToImplicitSuccess(t *testing.T) {
	s := New()
	got := s.Get("pkg.Unknown")
	assert.Equal(t, model.ResultSuccess, got.Result)
	assert.False(t, got.HasTag("large"))
}

func TestLoad_ParsesYAMLWithTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expectations.yaml")
	content := `
expectations:
  - name: pkg.SlowTest
    result: SUCCESS
    tags: [large]
  - name: pkg.Broken
    result: COMPILE_FAILED
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Load(path)
	require.NoError(t, err)

	slow := s.Get("pkg.SlowTest")
	assert.Equal(t, model.ResultSuccess, slow.Result)
	assert.True(t, slow.HasTag("large"))

	broken := s.Get("pkg.Broken")
	assert.Equal(t, model.ResultCompileFailed, broken.Result)
}
