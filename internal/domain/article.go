package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultMinTitleLength is the title length (in runes) an article must exceed to be postable.
const DefaultMinTitleLength = 10

var unicodeEscapeExpr = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)

// Article is a news item considered for posting.
type Article struct {
	Title       string
	Description string
	Body        string
	URL         string
	Source      string
	PublishedAt time.Time
	Fingerprint string

	// Summary is an optional pre-generated summary; it is not part of the fingerprint.
	Summary string
}

// RawArticle carries provider fields before normalization. Any of them may be empty.
type RawArticle struct {
	Title       string
	Description string
	Body        string
	URL         string
	Source      string
	PublishedAt time.Time
}

// NewArticle trims provider fields, decodes the URL once and computes the fingerprint.
func NewArticle(raw RawArticle) Article {
	article := Article{
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		Body:        strings.TrimSpace(raw.Body),
		URL:         DecodeURL(raw.URL),
		Source:      strings.TrimSpace(raw.Source),
		PublishedAt: raw.PublishedAt,
	}
	article.Fingerprint = Fingerprint(article.Title, article.Description, article.Body)
	return article
}

// Eligible reports whether the article passes the quality filter.
// Deduplication against history is checked separately.
func (a Article) Eligible(minTitleLength int) bool {
	if minTitleLength <= 0 {
		minTitleLength = DefaultMinTitleLength
	}
	return a.URL != "" && utf8.RuneCountInString(a.Title) > minTitleLength
}

// FullText returns the concatenated text used for summarizing and hashtag extraction.
func (a Article) FullText() string {
	return strings.TrimSpace(a.Title + ". " + a.Description + " " + a.Body)
}

// DecodeURL expands literal \uXXXX escapes and percent-decodes the value once.
// The raw (trimmed) value is kept when it cannot be decoded.
func DecodeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	expanded := unicodeEscapeExpr.ReplaceAllStringFunc(raw, func(m string) string {
		code, err := strconv.ParseUint(m[2:], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(code))
	})

	decoded, err := url.PathUnescape(expanded)
	if err != nil {
		return expanded
	}
	return decoded
}

// Fingerprint hashes the normalized concatenation of title, description and body.
func Fingerprint(title, description, body string) string {
	normalized := normalizeText(title) + "\n" + normalizeText(description) + "\n" + normalizeText(body)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
