package blog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a slug does not resolve to a post.
var ErrNotFound = errors.New("post not found")

// Slugs may only be alphanumeric with hyphens/underscores and must start with
// an alphanumeric character. This rejects path traversal, dots and spaces
// before any filename is built from user input.
var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidSlug reports whether slug is safe to resolve against the content dir.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

const (
	postExtension  = ".mdx"
	defaultAuthor  = "David Braun"
	wordsPerMinute = 200
)

// PostMeta is a post's frontmatter plus derived fields.
type PostMeta struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	Image       string    `json:"image,omitempty"`
	ReadingTime string    `json:"readingTime"`
}

// Post is a full post including its body.
type Post struct {
	PostMeta
	Content string `json:"content"`
}

// frontmatter is the raw YAML header of a post file.
type frontmatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
	Image       string   `yaml:"image"`
}

// Store reads posts from a directory of .mdx files with YAML frontmatter.
// Files whose name is not a valid slug are skipped, never served.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a Store over dir. A missing directory is not an error;
// the store just lists nothing.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Slugs returns the slugs of every servable post.
func (s *Store) Slugs() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	var slugs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, postExtension) {
			continue
		}
		slug := strings.TrimSuffix(name, postExtension)
		if !ValidSlug(slug) {
			s.logger.Warn("skipping blog file with invalid slug", slog.String("file", name))
			continue
		}
		slugs = append(slugs, slug)
	}
	return slugs
}

// List returns metadata for every servable post, newest first.
func (s *Store) List() []PostMeta {
	var posts []PostMeta
	for _, slug := range s.Slugs() {
		post, err := s.Get(slug)
		if err != nil {
			s.logger.Warn("skipping unreadable post", slog.String("slug", slug), slog.Any("error", err))
			continue
		}
		posts = append(posts, post.PostMeta)
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
	return posts
}

// Get loads a single post by slug. Invalid slugs and missing files both
// return ErrNotFound; the caller cannot distinguish probing from absence.
func (s *Store) Get(slug string) (*Post, error) {
	if !ValidSlug(slug) {
		return nil, ErrNotFound
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, slug+postExtension))
	if err != nil {
		return nil, ErrNotFound
	}

	meta, content, err := parseFrontmatter(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", slug, err)
	}

	post := &Post{
		PostMeta: PostMeta{
			Slug:        slug,
			Title:       meta.Title,
			Description: meta.Description,
			Author:      meta.Author,
			Tags:        meta.Tags,
			Image:       meta.Image,
			ReadingTime: readingTime(content),
		},
		Content: content,
	}
	if post.Title == "" {
		post.Title = "Untitled"
	}
	if post.Author == "" {
		post.Author = defaultAuthor
	}
	post.Date = parseDate(meta.Date)

	return post, nil
}

// parseFrontmatter splits a "---" delimited YAML header from the body.
// A file without a header is all body.
func parseFrontmatter(raw string) (frontmatter, string, error) {
	var meta frontmatter

	if !strings.HasPrefix(raw, "---\n") && !strings.HasPrefix(raw, "---\r\n") {
		return meta, raw, nil
	}

	rest := raw[strings.Index(raw, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return meta, "", errors.New("unterminated frontmatter")
	}

	header := rest[:end]
	body := rest[end+len("\n---"):]
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}

	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return meta, "", fmt.Errorf("invalid frontmatter: %w", err)
	}
	return meta, body, nil
}

// parseDate accepts RFC 3339 or plain dates; anything else falls back to now
// so an undated post still sorts somewhere sensible.
func parseDate(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Now()
}

func readingTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
