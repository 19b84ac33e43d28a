package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInPages(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)

	assert.Equal(t, []string{"faq", "privacy", "rentals", "returns", "terms", "warranty"}, s.Slugs())

	page, err := s.Page("faq")
	require.NoError(t, err)
	assert.Equal(t, "Frequently Asked Questions", page.Title)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), page.UpdatedAt)
	assert.NotEmpty(t, page.Description)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page.Body)))
	require.NoError(t, err)
	assert.Equal(t, "What is MACC India?", doc.Find("h2").First().Text())
	assert.Equal(t, 4, doc.Find("ul li").Length())
}

func TestUnknownOrInvalidSlug(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)

	for _, slug := range []string{"missing", "../go.mod", "", "FAQ/.."} {
		_, err := s.Page(slug)
		assert.ErrorIs(t, err, ErrNotFound, slug)
	}
}

func TestOverrideDirAndSanitising(t *testing.T) {
	dir := t.TempDir()
	page := "---\ntitle: Warranty Terms\n---\n\nCovered for **6 months**.\n\n<script>alert(1)</script>\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "warranty.md"), []byte(page), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exchange.md"), []byte("Trade in your laptop."), 0o600))

	s, err := NewStore(dir)
	require.NoError(t, err)

	got, err := s.Page("warranty")
	require.NoError(t, err)
	assert.Equal(t, "Warranty Terms", got.Title)
	assert.Contains(t, string(got.Body), "<strong>6 months</strong>")
	assert.NotContains(t, string(got.Body), "<script>")

	extra, err := s.Page("exchange")
	require.NoError(t, err)
	assert.Equal(t, "Exchange", extra.Title)
	assert.Contains(t, s.Slugs(), "exchange")
}

func TestMissingOverrideDir(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
