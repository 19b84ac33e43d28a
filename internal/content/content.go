// Package content serves the static information pages written in markdown.
package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed pages/*.md
var embedded embed.FS

var ErrNotFound = errors.New("content page not found")

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

type Page struct {
	Slug        string
	Title       string
	Summary     string
	Description string
	UpdatedAt   time.Time
	Body        template.HTML
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
	SEO       struct {
		Description string `yaml:"description"`
	} `yaml:"seo"`
}

// Store renders pages on first request and keeps the result.
type Store struct {
	sources []fs.FS
	md      goldmark.Markdown
	policy  *bluemonday.Policy

	mu    sync.RWMutex
	pages map[string]Page
}

// NewStore serves the built-in pages. A non-empty dir is consulted first, so a
// file there replaces the built-in page with the same slug.
func NewStore(dir string) (*Store, error) {
	builtIn, err := fs.Sub(embedded, "pages")
	if err != nil {
		return nil, err
	}
	sources := []fs.FS{builtIn}
	if dir = strings.TrimSpace(dir); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("content dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("content dir %s is not a directory", dir)
		}
		sources = append([]fs.FS{os.DirFS(dir)}, sources...)
	}

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(false)

	return &Store{
		sources: sources,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:  policy,
		pages:   map[string]Page{},
	}, nil
}

// Page returns the rendered page for slug.
func (s *Store) Page(slug string) (Page, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return Page{}, ErrNotFound
	}

	s.mu.RLock()
	page, ok := s.pages[slug]
	s.mu.RUnlock()
	if ok {
		return page, nil
	}

	raw, err := s.read(slug)
	if err != nil {
		return Page{}, err
	}
	page, err = s.render(slug, raw)
	if err != nil {
		return Page{}, err
	}

	s.mu.Lock()
	s.pages[slug] = page
	s.mu.Unlock()
	return page, nil
}

// Slugs lists every available page.
func (s *Store) Slugs() []string {
	seen := map[string]struct{}{}
	for _, src := range s.sources {
		matches, _ := fs.Glob(src, "*.md")
		for _, m := range matches {
			slug := strings.TrimSuffix(m, ".md")
			if slugPattern.MatchString(slug) {
				seen[slug] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for slug := range seen {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

func (s *Store) read(slug string) ([]byte, error) {
	for _, src := range s.sources {
		data, err := fs.ReadFile(src, slug+".md")
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read page %s: %w", slug, err)
		}
	}
	return nil, ErrNotFound
}

func (s *Store) render(slug string, raw []byte) (Page, error) {
	fmRaw, body := splitFrontMatter(string(raw))

	var fm frontMatter
	if fmRaw != "" {
		if err := yaml.Unmarshal([]byte(fmRaw), &fm); err != nil {
			return Page{}, fmt.Errorf("page %s front matter: %w", slug, err)
		}
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("page %s markdown: %w", slug, err)
	}

	page := Page{
		Slug:        slug,
		Title:       fm.Title,
		Summary:     fm.Summary,
		Description: fm.SEO.Description,
		UpdatedAt:   parseDate(fm.UpdatedAt),
		Body:        template.HTML(s.policy.SanitizeBytes(buf.Bytes())),
	}
	if page.Title == "" {
		page.Title = strings.ToUpper(slug[:1]) + slug[1:]
	}
	if page.Description == "" {
		page.Description = page.Summary
	}
	return page, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
