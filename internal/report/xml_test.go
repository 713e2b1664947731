package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actiondriver/internal/model"
)

func TestWriteXML_GroupsSuiteMethods(t *testing.T) {
	outcomes := []model.Outcome{
		model.NewOutcome("pkg.Suite#one", model.ResultSuccess),
		model.NewOutcome("pkg.Suite#two", model.ResultExecFailed, "boom"),
		model.NewOutcome("pkg.Solo", model.ResultSuccess),
	}
	evaluations := map[string]model.ResultValue{
		"pkg.Suite#one": model.ResultValueOK,
		"pkg.Suite#two": model.ResultValueFail,
		"pkg.Solo":      model.ResultValueOK,
	}

	var buf strings.Builder
	require.NoError(t, WriteXML(&buf, outcomes, evaluations))

	out := buf.String()
	assert.Contains(t, out, `name="pkg.Suite"`)
	assert.Contains(t, out, `tests="2"`)
	assert.Contains(t, out, `failures="1"`)
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, `name="pkg.Solo"`)
}

func TestClassFileIndex_SuggestsMissingPackage(t *testing.T) {
	idx := NewClassFileIndex(map[string][]string{
		"github.com/example/quux": {"Quux", "NewQuux"},
	})

	suggestions := idx.Suggest([]string{"./main.go:10: undefined: Quux"}, nil)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "github.com/example/quux", suggestions[0])
}

func TestClassFileIndex_SkipsAlreadyOnClasspath(t *testing.T) {
	idx := NewClassFileIndex(map[string][]string{
		"github.com/example/quux": {"Quux"},
	})

	suggestions := idx.Suggest([]string{"undefined: Quux"}, []string{"github.com/example/quux"})
	assert.Empty(t, suggestions)
}
