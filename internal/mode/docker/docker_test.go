package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"actiondriver/internal/model"
)

func TestSanitize_ReplacesPathSeparatorsHashAndColon(t *testing.T) {
	assert.Equal(t, "pkg_a_TestFoo", sanitize("pkg/a#TestFoo"))
	assert.Equal(t, "host_port", sanitize("host:port"))
}

func TestContainerName_IsPrefixedAndSanitized(t *testing.T) {
	action := model.Action{Name: "pkg/a#TestFoo"}
	assert.Equal(t, "actiondriver-pkg_a_TestFoo", containerName(action))
}

func TestSplitLines_HandlesTrailingPartialLine(t *testing.T) {
	assert.Equal(t, []string{"one", "two", "three"}, splitLines("one\ntwo\nthree"))
	assert.Equal(t, []string{"one", "two"}, splitLines("one\ntwo\n"))
}
