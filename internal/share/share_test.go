package share

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://encorelando.com"

func TestResolveURL(t *testing.T) {
	abs, err := ResolveURL(base, "/concerts/42")
	require.NoError(t, err)
	assert.Equal(t, "https://encorelando.com/concerts/42", abs)

	abs, err = ResolveURL(base, "https://other.example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com/x", abs)
}

func TestBuildCopyTargetCarriesAbsoluteURL(t *testing.T) {
	p, err := Build(base, "Test Band at Main Stage", "Catch them live!", "/concerts/42")
	require.NoError(t, err)

	assert.Equal(t, "https://encorelando.com/concerts/42", p.URL)

	// exactly one copy target, holding the resolved absolute URL untouched
	var copies []Target
	for _, tg := range p.Targets {
		if tg.Name == "copy" {
			copies = append(copies, tg)
		}
	}
	require.Len(t, copies, 1)
	assert.Equal(t, p.URL, copies[0].URL)
}

func TestBuildTargetEncoding(t *testing.T) {
	p, err := Build(base, "Rock & Roll: 100%", "see you there?", "/concerts/42")
	require.NoError(t, err)

	names := map[string]string{}
	for _, tg := range p.Targets {
		names[tg.Name] = tg.URL
	}
	require.Contains(t, names, "twitter")
	require.Contains(t, names, "facebook")
	require.Contains(t, names, "email")

	tw, err := url.Parse(names["twitter"])
	require.NoError(t, err)
	assert.Equal(t, "Rock & Roll: 100%", tw.Query().Get("text"))
	assert.Equal(t, p.URL, tw.Query().Get("url"))

	fb, err := url.Parse(names["facebook"])
	require.NoError(t, err)
	assert.Equal(t, p.URL, fb.Query().Get("u"))

	// mailto body uses %20 for spaces and embeds the absolute link
	mail := names["email"]
	assert.Contains(t, mail, "mailto:?subject=")
	assert.NotContains(t, mail, "+")
	assert.Contains(t, mail, url.QueryEscape(p.URL))
}

func TestBuildRequiresLink(t *testing.T) {
	_, err := Build(base, "title", "text", "")
	assert.Error(t, err)
}
