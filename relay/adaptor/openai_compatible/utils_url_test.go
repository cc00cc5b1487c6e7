package openai_compatible

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildAPIURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		base   string
		path   string
		expect string
	}{
		{
			name:   "trailing-slash-default-version",
			base:   "https://api.x.com/",
			path:   "/models",
			expect: "https://api.x.com/v1/models",
		},
		{
			name:   "explicit-version-respected",
			base:   "https://api.x.com/v4",
			path:   "/models",
			expect: "https://api.x.com/v4/models",
		},
		{
			name:   "explicit-version-with-trailing-slash",
			base:   "https://proxy.example.com/v1/",
			path:   "/chat/completions",
			expect: "https://proxy.example.com/v1/chat/completions",
		},
		{
			name:   "nested-path-without-version",
			base:   "https://gateway.example.com/openai",
			path:   "/chat/completions",
			expect: "https://gateway.example.com/openai/v1/chat/completions",
		},
		{
			name:   "version-like-but-not-final-segment",
			base:   "https://gateway.example.com/v2/openai",
			path:   "/models",
			expect: "https://gateway.example.com/v2/openai/v1/models",
		},
		{
			name:   "version-word-not-digits",
			base:   "https://api.example.com/vbeta",
			path:   "/models",
			expect: "https://api.example.com/vbeta/v1/models",
		},
		{
			name:   "only-one-trailing-slash-removed",
			base:   "https://api.example.com//",
			path:   "/models",
			expect: "https://api.example.com//v1/models",
		},
		{
			name:   "malformed-endpoint-passthrough",
			base:   "not a url",
			path:   "/models",
			expect: "not a url/v1/models",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.expect, BuildAPIURL(tc.base, tc.path))
		})
	}
}
