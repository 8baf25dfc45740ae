package normalize

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/local/lessonplanner/internal/outcome"
	"github.com/local/lessonplanner/internal/pdftext"
	"github.com/local/lessonplanner/internal/source"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubPDF struct {
	ext pdftext.Extraction
	err error
}

func (s stubPDF) Extract([]byte) (pdftext.Extraction, error) { return s.ext, s.err }

type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	fail  map[string]bool
	delay map[string]time.Duration
	calls []string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if d := f.delay[url]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.fail[url] {
		return "", errors.New("connection refused")
	}
	return f.pages[url], nil
}

func TestClean(t *testing.T) {
	in := "  The ﬁrst\t\tline   here  \r\n\r\n\r\n\r\nNext   para\xff\n"
	assert.Equal(t, "The first line here\n\nNext para�", Clean(in, 0))
	assert.Equal(t, "\u00e9t\u00e9", Clean("e\u0301te\u0301", 0))
	assert.Equal(t, "abc", Clean("abcdef", 3))
}

func TestNormalizeText(t *testing.T) {
	n := New(nil, nil, Options{})
	res := n.Normalize(context.Background(), source.FromText("Resources:  pencil\r\nHomework: read"))
	assert.Equal(t, outcome.OK, res.Branch)
	assert.Equal(t, "Resources: pencil\nHomework: read", res.Value)
}

func TestNormalizePDF(t *testing.T) {
	n := New(stubPDF{ext: pdftext.Extraction{Text: "Page one.\nPage two.", Pages: 3, SkippedPages: 1}}, nil, Options{})
	res := n.Normalize(context.Background(), source.FromPDF([]byte("%PDF")))
	assert.Equal(t, outcome.OK, res.Branch)
	assert.Equal(t, "Page one.\nPage two.", res.Value)
}

func TestNormalizePDFFailureIsFatal(t *testing.T) {
	n := New(stubPDF{err: errors.New("broken xref")}, nil, Options{})
	res := n.Normalize(context.Background(), source.FromPDF([]byte("junk")))
	require.True(t, res.IsFatal())
	assert.True(t, outcome.IsIngestion(res.Err))
}

func TestNormalizeScannedPDFIsDegraded(t *testing.T) {
	n := New(stubPDF{ext: pdftext.Extraction{Pages: 2}}, nil, Options{})
	res := n.Normalize(context.Background(), source.FromPDF([]byte("%PDF")))
	assert.Equal(t, outcome.Degraded, res.Branch)
	assert.Equal(t, outcome.NoExtractableText, res.Reason)
	assert.Empty(t, res.Value)
}

func TestNormalizeWebKeepsRankOrder(t *testing.T) {
	f := &stubFetcher{
		pages: map[string]string{"https://a": "First page.", "https://b": "Second page.", "https://d": "never"},
		delay: map[string]time.Duration{"https://a": 30 * time.Millisecond},
	}
	hits := []source.WebSource{
		{URL: "https://a"},
		{URL: "https://b"},
		{Title: "no url", Excerpt: "Excerpt only."},
		{URL: "https://d"},
	}
	res := New(nil, f, Options{}).Normalize(context.Background(), source.FromWeb(hits))
	assert.Equal(t, outcome.OK, res.Branch)
	assert.Equal(t, "First page.\n\nSecond page.\n\nExcerpt only.", res.Value)
	assert.NotContains(t, f.calls, "https://d")
}

func TestNormalizeWebFetchFailureDegrades(t *testing.T) {
	f := &stubFetcher{
		pages: map[string]string{"https://b": "Second page."},
		fail:  map[string]bool{"https://a": true},
	}
	hits := []source.WebSource{{URL: "https://a", Excerpt: "ignored"}, {URL: "https://b"}}
	res := New(nil, f, Options{}).Normalize(context.Background(), source.FromWeb(hits))
	assert.Equal(t, outcome.Degraded, res.Branch)
	assert.Equal(t, outcome.FetchDegradation, res.Reason)
	assert.Equal(t, "Second page.", res.Value)
}

func TestNormalizeWebFallsBackToExcerpts(t *testing.T) {
	f := &stubFetcher{fail: map[string]bool{"https://a": true, "https://b": true}}
	hits := []source.WebSource{
		{URL: "https://a", Excerpt: "Plants grow."},
		{URL: "https://b", Excerpt: "Leaves feed them."},
		{URL: "https://c", Excerpt: "Roots drink."},
		{URL: "https://d", Excerpt: "Fourth."},
	}
	f.fail["https://c"] = true
	res := New(nil, f, Options{}).Normalize(context.Background(), source.FromWeb(hits))
	assert.Equal(t, outcome.Degraded, res.Branch)
	assert.Equal(t, "Plants grow. Leaves feed them. Roots drink. Fourth.", res.Value)
}

func TestNormalizeWebEmpty(t *testing.T) {
	res := New(nil, &stubFetcher{}, Options{}).Normalize(context.Background(), source.FromWeb(nil))
	assert.Equal(t, outcome.Degraded, res.Branch)
	assert.Equal(t, outcome.NoWebContent, res.Reason)
	assert.Equal(t, "", res.Value)
}

func TestNormalizeWebCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &stubFetcher{delay: map[string]time.Duration{"https://a": time.Second}}
	res := New(nil, f, Options{}).Normalize(ctx, source.FromWeb([]source.WebSource{{URL: "https://a", Excerpt: "kept"}}))
	assert.Equal(t, "kept", res.Value)
}

func TestNormalizeCapsLength(t *testing.T) {
	res := New(nil, nil, Options{MaxChars: 10}).Normalize(context.Background(), source.FromText(strings.Repeat("word ", 10)))
	assert.Equal(t, "word word ", res.Value)
}
