package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphs(t *testing.T) {
	body := []byte(`<html><head><title> Demo </title></head><body>
<p>The quick brown fox jumps.</p>
<div>not a paragraph</div>
<p>Hello <a href="/x">link text</a> world</p>
<p>   </p>
<p>Sample&nbsp;text!</p>
</body></html>`)

	got, err := Paragraphs(body)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"The quick brown fox jumps.",
		"Hello ",
		" world",
		"Sample text!",
	}, got)
	assert.Equal(t, "Demo", Title(body))
}

func TestParagraphs_NoParagraphs(t *testing.T) {
	got, err := Paragraphs([]byte(`<html><body><div>only divs</div></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Paragraphs(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com", "https://example.com/"},
		{"  http://Example.COM/a/b#frag  ", "http://example.com/a/b"},
		{"example.com/page?q=1", "https://example.com/page?q=1"},
		{"HTTPS://example.com/x", "https://example.com/x"},
		{"localhost:8080/docs", "https://localhost:8080/docs"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURL_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "#comment", "mailto:a@b.c", "javascript:void(0)", "ftp://example.com/f", "https://", "http://[::1"} {
		t.Run(in, func(t *testing.T) {
			_, err := NormalizeURL(in)
			assert.ErrorIs(t, err, ErrInvalidURL)
		})
	}
}
