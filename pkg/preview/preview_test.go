package preview_test

import (
	"linkexpander/pkg/preview"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScreenshotURL(t *testing.T) {
	b, err := preview.New("")
	require.NoError(t, err)

	got := b.ScreenshotURL("https://example.com/a?b=c&d=e")
	require.Equal(t, "https://api.microlink.io/?url=https%3A%2F%2Fexample.com%2Fa%3Fb%3Dc%26d%3De"+
		"&screenshot=true&meta=false&embed=screenshot.url&colorScheme=dark"+
		"&viewport.isMobile=true&viewport.deviceScaleFactor=1&viewport.width=1280&viewport.height=720", got)

	u, err := url.Parse(got)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/a?b=c&d=e", u.Query().Get("url"))
}

func TestNew_CustomBase(t *testing.T) {
	b, err := preview.New("http://localhost:3000/render?ignored=1")
	require.NoError(t, err)

	u, err := url.Parse(b.ScreenshotURL("https://example.com"))
	require.NoError(t, err)
	require.Equal(t, "localhost:3000", u.Host)
	require.Equal(t, "/render", u.Path)
	require.Empty(t, u.Query().Get("ignored"))
	require.Equal(t, "dark", u.Query().Get("colorScheme"))
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := preview.New("/render")
	require.Error(t, err)
}
