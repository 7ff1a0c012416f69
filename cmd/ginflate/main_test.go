package main

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestDestPath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"data.zz", "data"},
		{"data.zlib", "data"},
		{"data.z", "data"},
		{"data.bin", "data.bin.out"},
		{".zz", ".zz.out"},
	}
	for _, tc := range cases {
		assert.Equal(t, destPath(tc.in), tc.want)
	}
}
