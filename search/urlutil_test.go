package search

import "testing"

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain https", "https://example.com/path", "example.com"},
		{"uppercase host is lowered", "https://Example.COM/path", "example.com"},
		{"port is kept", "http://example.com:8080/x", "example.com:8080"},
		{"subdomain", "https://docs.example.com", "docs.example.com"},
		{"no scheme yields empty host", "example.com/path", ""},
		{"garbage", "://not a url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDomain(tt.url); got != tt.want {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestResolveRedirect(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{
			"duckduckgo redirect is unwrapped",
			"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage&rut=abc",
			"https://example.com/page",
		},
		{
			"relative redirect path",
			"/l/?uddg=https%3A%2F%2Fexample.org%2F",
			"https://example.org/",
		},
		{
			"direct url passes through",
			"https://example.com/direct",
			"https://example.com/direct",
		},
		{
			"empty stays empty",
			"",
			"",
		},
		{
			"uddg mentioned but not a parameter",
			"https://example.com/?q=uddg",
			"https://example.com/?q=uddg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRedirect(tt.href); got != tt.want {
				t.Errorf("ResolveRedirect(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}
