package urlhandler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/metascope/internal/common/errorwrapper"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "already absolute", input: "https://example.com/page", want: "https://example.com/page"},
		{name: "missing scheme", input: "example.com/page", want: "http://example.com/page"},
		{name: "whitespace trimmed", input: "  https://example.com  ", want: "https://example.com"},
		{name: "empty", input: "", wantErr: true},
		{name: "only whitespace", input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveURL(t *testing.T) {
	base, err := url.Parse("https://example.com/articles/post")
	require.NoError(t, err)

	tests := []struct {
		name    string
		href    string
		want    string
		wantErr bool
	}{
		{name: "absolute href", href: "https://cdn.example.com/img.png", want: "https://cdn.example.com/img.png"},
		{name: "root relative", href: "/favicon.ico", want: "https://example.com/favicon.ico"},
		{name: "relative", href: "icons/apple.png", want: "https://example.com/articles/icons/apple.png"},
		{name: "protocol relative", href: "//static.example.com/og.jpg", want: "https://static.example.com/og.jpg"},
		{name: "empty href", href: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveURL(tt.href, base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveURL_NoBaseRequiresAbsolute(t *testing.T) {
	_, err := ResolveURL("/favicon.ico", nil)
	assert.Error(t, err)

	got, err := ResolveURL("https://example.com/favicon.ico", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/favicon.ico", got)
}

func TestHostWithoutWWW(t *testing.T) {
	assert.Equal(t, "example.com", HostWithoutWWW("https://www.example.com/page"))
	assert.Equal(t, "example.com", HostWithoutWWW("https://example.com"))
	assert.Equal(t, "blog.example.com", HostWithoutWWW("https://blog.example.com"))
	assert.Equal(t, "", HostWithoutWWW("://bad"))
}

func TestOrigin(t *testing.T) {
	got, err := Origin("https://example.com:8443/deep/path?q=1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com:8443", got)

	_, err = Origin("/relative/only")
	assert.Error(t, err)
}

func TestValidateImageURL(t *testing.T) {
	assert.NoError(t, ValidateImageURL("https://example.com/og.png"))
	assert.Error(t, ValidateImageURL(""))
	assert.Error(t, ValidateImageURL("not a url\x7f"))
	assert.Error(t, ValidateImageURL("ftp://example.com/og.png"))
	assert.Error(t, ValidateImageURL("/og.png"))
}

func TestValidateImageURL_FailuresAreMalformed(t *testing.T) {
	for _, raw := range []string{"", "not a url\x7f", "ftp://example.com/og.png", "/og.png"} {
		err := ValidateImageURL(raw)
		require.Error(t, err)
		assert.True(t, errorwrapper.IsMalformedURL(err), "input %q must classify as malformed", raw)
	}
}
