package fixer_test

import (
	"linkfixer/internal/fixer"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		name string
		in   string
		slug string
		ok   bool
	}{
		{name: "zippy over http", in: "http://zippy.gfycat.com/example.gif", slug: "example", ok: true},
		{name: "fat over https", in: "https://fat.gfycat.com/happydog.gif", slug: "happydog", ok: true},
		{name: "giant", in: "https://giant.gfycat.com/abc.gif", slug: "abc", ok: true},
		{name: "uppercase scheme and host", in: "HTTPS://Giant.GfyCat.COM/abc.gif", slug: "abc", ok: true},
		{name: "uppercase slug", in: "https://fat.gfycat.com/Example.gif"},
		{name: "uppercase extension", in: "https://fat.gfycat.com/example.GIF", slug: "example", ok: true},
		{name: "mixed case extension", in: "https://zippy.gfycat.com/example.Gif", slug: "example", ok: true},
		{name: "other subdomain", in: "https://thumbs.gfycat.com/example.gif"},
		{name: "bare domain", in: "https://gfycat.com/example"},
		{name: "missing extension", in: "https://fat.gfycat.com/example"},
		{name: "webm", in: "https://fat.gfycat.com/example.webm"},
		{name: "extra path segment", in: "https://fat.gfycat.com/a/example.gif"},
		{name: "digits in slug", in: "https://fat.gfycat.com/example1.gif"},
		{name: "query string", in: "https://fat.gfycat.com/example.gif?x=1"},
		{name: "lookalike domain", in: "https://fat.gfycat.com.evil.net/example.gif"},
		{name: "other scheme", in: "ftp://fat.gfycat.com/example.gif"},
		{name: "empty", in: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slug, ok := fixer.Match(tc.in)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.slug, slug)
		})
	}
}
