package share

import (
	"fmt"
	"net/url"
	"strings"
)

// Target is one manual share venue offered when the client has no native
// share capability. The "copy" target carries the resolved absolute URL so
// a clipboard write needs no further processing.
type Target struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Payload is what the client feeds to navigator.share, plus the fallback
// chooser targets.
type Payload struct {
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	URL     string   `json:"url"`
	Targets []Target `json:"targets"`
}

// ResolveURL resolves a deep link against the site origin. Absolute links
// pass through untouched; site-relative paths ("/concerts/42") are joined
// onto base.
func ResolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

// Build assembles the share payload for {title, text, url}. Every
// interpolated field is percent-encoded; nothing here may reach a target
// URL raw.
func Build(base, title, text, link string) (Payload, error) {
	if link == "" {
		return Payload{}, fmt.Errorf("share link is required")
	}
	abs, err := ResolveURL(base, link)
	if err != nil {
		return Payload{}, err
	}

	tweet := url.Values{}
	tweet.Set("text", title)
	tweet.Set("url", abs)

	fb := url.Values{}
	fb.Set("u", abs)

	body := text
	if body != "" {
		body += "\n\n"
	}
	body += abs
	// Mail clients don't all decode '+' as space, so use %20 form here.
	mailQ := "subject=" + queryEscape(title) + "&body=" + queryEscape(body)

	return Payload{
		Title: title,
		Text:  text,
		URL:   abs,
		Targets: []Target{
			{Name: "twitter", URL: "https://twitter.com/intent/tweet?" + tweet.Encode()},
			{Name: "facebook", URL: "https://www.facebook.com/sharer/sharer.php?" + fb.Encode()},
			{Name: "email", URL: "mailto:?" + mailQ},
			{Name: "copy", URL: abs},
		},
	}, nil
}

func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
