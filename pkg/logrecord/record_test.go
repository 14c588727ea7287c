package logrecord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomain(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"example.com/path/to/thing", "example.com"},
		{"example.com", "example.com"},
		{"example.com/", "example.com"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Domain(c.url), "url=%q", c.url)
	}
}

func TestPath(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"example.com/path/to/thing", "path/to/thing"},
		{"example.com", ""},
		{"example.com/", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Path(c.url), "url=%q", c.url)
	}
}
