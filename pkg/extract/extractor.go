package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"dailybrief/pkg/domain"
)

// FallbackText is the sentinel sent when the page has no region for today.
// A visible "no data" message is preferable to an empty or missing send.
const FallbackText = "no data found for today"

// ErrMissingArtifact reports that the renderer claimed success but the
// expected output file is absent. Unlike text, an image cannot degrade to a
// sentinel.
var ErrMissingArtifact = errors.New("expected image file is missing")

const (
	// DefaultWindow is the number of markup nodes scanned after the date match
	DefaultWindow = 40
	// DefaultMaxLines caps the extracted snippet
	DefaultMaxLines = 20
)

// months are the lowercase month names used to build date tokens.
// The default matches the Italian source site.
var defaultMonths = []string{
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
	"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre",
}

// Extractor turns raw content into a normalized artifact.
// Text extraction never fails: it degrades to FallbackText, because the
// downstream obligation is "always produce something sendable for today".
type Extractor struct {
	window   int
	maxLines int
	months   []string
}

// Option configures an Extractor
type Option func(*Extractor)

// WithWindow overrides the node window scanned after the date match
func WithWindow(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.window = n
		}
	}
}

// WithMaxLines overrides the snippet line cap
func WithMaxLines(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxLines = n
		}
	}
}

// WithMonths overrides the month names used to build date tokens
// (index 0 = January)
func WithMonths(months []string) Option {
	return func(e *Extractor) {
		if len(months) == 12 {
			e.months = months
		}
	}
}

// NewExtractor creates an extractor with the default window and line cap
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		window:   DefaultWindow,
		maxLines: DefaultMaxLines,
		months:   defaultMonths,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract produces the artifact for a request.
// Text requests always yield an artifact; image requests fail with
// ErrMissingArtifact when the renderer output is absent.
func (e *Extractor) Extract(raw *domain.RawContent, req domain.RequestDescriptor) (*domain.Artifact, error) {
	switch req.Kind {
	case domain.RenderedImage:
		return e.extractImage(raw, req)
	default:
		return e.extractText(raw, req), nil
	}
}

// extractImage verifies the renderer output exists. The payload is simply
// the path the renderer was instructed to write to; the image itself is
// never re-parsed.
func (e *Extractor) extractImage(raw *domain.RawContent, req domain.RequestDescriptor) (*domain.Artifact, error) {
	path := string(raw.Body)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingArtifact, path)
	}

	return &domain.Artifact{
		Type:        domain.ImageArtifact,
		Payload:     path,
		ProducedFor: req,
		ProducedAt:  time.Now(),
	}, nil
}

// extractText locates the region of the page matching the requested
// day/month and collects the marked-up list/heading items that follow it.
// When the structural pass finds nothing, a readability pass over the plain
// text gets a second chance before the sentinel.
func (e *Extractor) extractText(raw *domain.RawContent, req domain.RequestDescriptor) *domain.Artifact {
	tokens := e.dateTokens(req)

	text := e.structuralPass(raw.Body, tokens)
	if text == "" {
		text = e.readabilityPass(raw.Body, tokens)
	}
	if text == "" {
		text = FallbackText
	}

	return &domain.Artifact{
		Type:        domain.TextArtifact,
		Payload:     text,
		ProducedFor: req,
		ProducedAt:  time.Now(),
	}
}

// dateTokens builds the candidate date strings for containment matching,
// most specific first: "19 gennaio", "19/1", "19 1". All lowercase.
func (e *Extractor) dateTokens(req domain.RequestDescriptor) []string {
	day := req.Parameters[domain.ParamDay]
	month := req.Parameters[domain.ParamMonth]

	var tokens []string
	if m, err := strconv.Atoi(month); err == nil && m >= 1 && m <= 12 {
		tokens = append(tokens, day+" "+e.months[m-1])
	}
	tokens = append(tokens, day+"/"+month, day+" "+month)
	return tokens
}

// structuralPass walks the tag-stripped node stream of the parsed document:
// find the first node containing a date token, then keep list/heading items
// within the bounded window that follows.
func (e *Extractor) structuralPass(body []byte, tokens []string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	type node struct {
		tag  string
		text string
	}
	var nodes []node
	doc.Find("h1, h2, h3, h4, li, p, td").Each(func(_ int, s *goquery.Selection) {
		text := cleanText(s.Text())
		if text != "" {
			nodes = append(nodes, node{tag: goquery.NodeName(s), text: text})
		}
	})

	matchIdx := -1
	for i, n := range nodes {
		if containsAny(strings.ToLower(n.text), tokens) {
			matchIdx = i
			break
		}
	}
	if matchIdx == -1 {
		return ""
	}

	var lines []string
	end := matchIdx + e.window
	if end > len(nodes) {
		end = len(nodes)
	}
	for _, n := range nodes[matchIdx:end] {
		if !isItem(n.tag) {
			continue
		}
		lines = append(lines, n.text)
		if len(lines) >= e.maxLines {
			break
		}
	}

	return strings.Join(lines, "\n")
}

// readabilityPass extracts the main article text and windows it around the
// first line containing a date token. Used when the page structure defeats
// the node walk.
func (e *Extractor) readabilityPass(body []byte, tokens []string) string {
	article, err := readability.FromReader(bytes.NewReader(body), nil)
	if err != nil {
		return ""
	}

	lines := collapseLines(article.TextContent)
	for i, line := range lines {
		if containsAny(strings.ToLower(line), tokens) {
			end := i + e.maxLines
			if end > len(lines) {
				end = len(lines)
			}
			return strings.Join(lines[i:end], "\n")
		}
	}
	return ""
}

// isItem reports whether a tag counts as a list/heading item worth keeping
func isItem(tag string) bool {
	switch tag {
	case "li", "h1", "h2", "h3", "h4":
		return true
	}
	return false
}

// containsAny reports whether text contains any of the tokens
func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

// cleanText decodes the small fixed set of entities the source is known to
// emit and normalizes whitespace within a single item
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return strings.Join(strings.Fields(text), " ")
}

// collapseLines splits text into trimmed lines with blank runs removed
func collapseLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = cleanText(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
