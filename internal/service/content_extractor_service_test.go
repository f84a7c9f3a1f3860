package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhducng/certprep/internal/errs"
)

func servePage(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

const longParagraph = "This study guide covers the fundamental concepts you will need to pass the certification exam, including services, pricing and support."

func TestExtractTextPrefersMainRegion(t *testing.T) {
	html := `<html><body>
		<nav>Home | About | Contact navigation junk that should never appear</nav>
		<main><p>` + longParagraph + `</p></main>
		<footer>Copyright footer junk</footer>
	</body></html>`
	server := servePage(t, html)

	extractor := NewContentExtractorService()
	text, err := extractor.ExtractText(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, text, "fundamental concepts")
	assert.NotContains(t, text, "navigation junk")
	assert.NotContains(t, text, "footer junk")
}

func TestExtractTextFallsBackToBody(t *testing.T) {
	html := `<html><body><div><p>` + longParagraph + `</p></div></body></html>`
	server := servePage(t, html)

	extractor := NewContentExtractorService()
	text, err := extractor.ExtractText(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, text, "fundamental concepts")
}

func TestExtractTextStripsScriptsAndStyles(t *testing.T) {
	html := `<html><body><main>
		<script>var secret = "script junk";</script>
		<style>.hidden { display: none }</style>
		<p>` + longParagraph + `</p>
	</main></body></html>`
	server := servePage(t, html)

	extractor := NewContentExtractorService()
	text, err := extractor.ExtractText(context.Background(), server.URL)

	require.NoError(t, err)
	assert.NotContains(t, text, "script junk")
	assert.NotContains(t, text, "display: none")
}

func TestExtractTextCollapsesWhitespace(t *testing.T) {
	html := `<html><body><main><p>` + longParagraph + `</p>
		<p>Spaced      out       words</p></main></body></html>`
	server := servePage(t, html)

	extractor := NewContentExtractorService()
	text, err := extractor.ExtractText(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, text, "Spaced out words")
	assert.NotContains(t, text, "\n\n\n")
}

func TestExtractTextTooShortIsEmptyContent(t *testing.T) {
	server := servePage(t, `<html><body><main><p>tiny</p></main></body></html>`)

	extractor := NewContentExtractorService()
	_, err := extractor.ExtractText(context.Background(), server.URL)

	assert.ErrorIs(t, err, errs.ErrEmptyContent)
}

func TestExtractTextNon2xxIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	extractor := NewContentExtractorService()
	_, err := extractor.ExtractText(context.Background(), server.URL)

	assert.ErrorIs(t, err, errs.ErrFetch)
}

func TestExtractTextUnreachableHostIsFetchError(t *testing.T) {
	extractor := NewContentExtractorService()
	_, err := extractor.ExtractText(context.Background(), "http://127.0.0.1:1")

	assert.ErrorIs(t, err, errs.ErrFetch)
}

func TestExtractStructured(t *testing.T) {
	html := `<html><head><title>AZ-900 Study Guide</title></head><body><main>
		<h1>Cloud Concepts</h1>
		<h2>Azure Architecture</h2>
		<p>` + longParagraph + `</p>
		<p>short noise</p>
		<ul><li>Describe virtual machines</li><li>Describe containers</li></ul>
	</main></body></html>`
	server := servePage(t, html)

	extractor := NewContentExtractorService()
	content, err := extractor.ExtractStructured(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "AZ-900 Study Guide", content.Title)
	assert.Equal(t, []string{"Cloud Concepts", "Azure Architecture"}, content.Headings)
	require.Len(t, content.Paragraphs, 1)
	assert.Contains(t, content.Paragraphs[0], "fundamental concepts")
	assert.Equal(t, []string{"Describe virtual machines", "Describe containers"}, content.ListItems)
}

func TestExtractStructuredEmptyPage(t *testing.T) {
	server := servePage(t, `<html><body></body></html>`)

	extractor := NewContentExtractorService()
	_, err := extractor.ExtractStructured(context.Background(), server.URL)

	assert.ErrorIs(t, err, errs.ErrEmptyContent)
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "First   line\n\n\n\nSecond\tline\n\n"
	assert.Equal(t, "First line\n\nSecond line", normalizeWhitespace(in))

	assert.Equal(t, "", normalizeWhitespace("   \n \t \n"))
	assert.Equal(t, strings.TrimSpace("word"), normalizeWhitespace(" word "))
}
