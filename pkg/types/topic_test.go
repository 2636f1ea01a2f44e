package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPrefixOf(t *testing.T) {
	cases := []struct {
		prefix, topic string
		want          bool
	}{
		{"a/b", "a/b/c", true},
		{"a/b", "a/b", true},
		{"a/b", "a/bc", false},
		{"", "anything", true},
		{"a/b/c", "a/b", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsPrefixOf(c.prefix, c.topic), "prefix=%q topic=%q", c.prefix, c.topic)
	}
}
