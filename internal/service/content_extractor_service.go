package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/vhducng/certprep/internal/errs"
)

// minContentLength is the threshold below which extracted text is considered
// unusable and reported as errs.ErrEmptyContent.
const minContentLength = 100

// minParagraphLength filters out navigation crumbs and other short noise from
// structured extraction.
const minParagraphLength = 30

// contentSelectors are tried most-specific first; the first selector yielding
// non-empty text wins. "body" is the whole-document fallback.
var contentSelectors = []string{"main", "article", "#main-content", ".content", "#content", "body"}

// chromeSelectors match non-content markup stripped before extraction.
const chromeSelectors = "script, style, nav, footer, header, aside"

// ExtractedContent is the structured view of a fetched page.
type ExtractedContent struct {
	Title      string
	Headings   []string
	Paragraphs []string
	ListItems  []string
}

// ContentExtractorService fetches a document by URL and returns cleaned plain
// text, or a structured breakdown of it.
type ContentExtractorService interface {
	ExtractText(ctx context.Context, pageURL string) (string, error)
	ExtractStructured(ctx context.Context, pageURL string) (*ExtractedContent, error)
}

type contentExtractorService struct {
	client *http.Client
}

func NewContentExtractorService() ContentExtractorService {
	return &contentExtractorService{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *contentExtractorService) ExtractText(ctx context.Context, pageURL string) (string, error) {
	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return "", err
	}

	doc.Find(chromeSelectors).Remove()

	for _, selector := range contentSelectors {
		region := doc.Find(selector).First()
		if region.Length() == 0 {
			continue
		}
		text := normalizeWhitespace(region.Text())
		if len(text) >= minContentLength {
			log.Debug().Str("url", pageURL).Str("selector", selector).Int("chars", len(text)).Msg("Extracted page text")
			return text, nil
		}
	}

	return "", fmt.Errorf("%w: no content region in %s yielded at least %d characters", errs.ErrEmptyContent, pageURL, minContentLength)
}

func (s *contentExtractorService) ExtractStructured(ctx context.Context, pageURL string) (*ExtractedContent, error) {
	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc.Find(chromeSelectors).Remove()

	content := &ExtractedContent{}

	content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if content.Title == "" {
		content.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find("h1, h2, h3, h4").Each(func(_ int, sel *goquery.Selection) {
		if h := normalizeWhitespace(sel.Text()); h != "" {
			content.Headings = append(content.Headings, h)
		}
	})
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if p := normalizeWhitespace(sel.Text()); len(p) >= minParagraphLength {
			content.Paragraphs = append(content.Paragraphs, p)
		}
	})
	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		if li := normalizeWhitespace(sel.Text()); li != "" {
			content.ListItems = append(content.ListItems, li)
		}
	})

	if len(content.Headings) == 0 && len(content.Paragraphs) == 0 && len(content.ListItems) == 0 {
		return nil, fmt.Errorf("%w: %s has no headings, paragraphs or list items", errs.ErrEmptyContent, pageURL)
	}
	return content, nil
}

func (s *contentExtractorService) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %s: %v", errs.ErrFetch, pageURL, err)
	}
	req.Header.Set("User-Agent", "certprep/1.0 (+study guide extractor)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", errs.ErrFetch, pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", errs.ErrFetch, pageURL, err)
	}
	return doc, nil
}

// classifyTransportError keeps timeouts distinguishable from other transport
// failures.
func classifyTransportError(err error, target string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s: %v", errs.ErrTimeout, target, err)
	}
	return fmt.Errorf("%w: %s: %v", errs.ErrFetch, target, err)
}

// normalizeWhitespace collapses runs of spaces inside lines and runs of blank
// lines between them.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
