package composer

import (
	"fmt"
	"strings"

	"NewsPoster/internal/domain"
)

const (
	ellipsis      = "..."
	minimalLayout = "{title}\n{url}"
)

// Composer turns an article into a post that fits the platform limit.
// It performs no I/O; all randomness comes from the injected Rand.
// A Composer is not safe for concurrent use.
type Composer struct {
	opts Options
	rng  Rand
}

// New builds a composer; a nil rng is replaced with a clock-seeded one.
func New(opts Options, rng Rand) *Composer {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Composer{opts: opts.normalized(), rng: rng}
}

// Limit returns the platform limit used when Compose is called without one.
func (c *Composer) Limit() int {
	return c.opts.Limit
}

// Compose builds the post for article. A non-positive limit uses the configured one.
func (c *Composer) Compose(article domain.Article, limit int) (domain.ComposedPost, error) {
	if limit <= 0 {
		limit = c.opts.Limit
	}
	if article.URL == "" {
		return domain.ComposedPost{}, fmt.Errorf("%w: article has no url", domain.ErrComposeFailure)
	}
	if runeLen(article.URL) > limit {
		return domain.ComposedPost{}, fmt.Errorf("%w: url alone exceeds limit %d", domain.ErrComposeFailure, limit)
	}

	sentences := summarize(article, c.opts)
	tags := hashtags(article.FullText(), c.opts, c.rng)
	tpl := c.opts.Templates[c.rng.Intn(len(c.opts.Templates))]

	return c.fit(article, sentences, tags, tpl, limit), nil
}

// fit drops trailing sentences first, then truncates the last sentence at a word
// boundary, then sheds hashtags, and finally falls back to the minimal layout.
func (c *Composer) fit(article domain.Article, sentences []string, tags []hashtag, tpl Template, limit int) domain.ComposedPost {
	for {
		body := c.render(tpl, strings.Join(sentences, " "), article.URL, tags)
		if runeLen(body) <= limit {
			return c.post(body, tags, tpl.Name, false)
		}

		if len(sentences) > 1 {
			sentences = sentences[:len(sentences)-1]
			continue
		}

		if len(sentences) == 1 {
			// Rendering a one-rune summary measures the layout overhead.
			room := limit - (runeLen(c.render(tpl, "x", article.URL, tags)) - 1)
			if room >= c.opts.MinSummaryLength {
				if cut, truncated := truncateWords(sentences[0], room); cut != "" {
					body = c.render(tpl, cut, article.URL, tags)
					if runeLen(body) <= limit {
						return c.post(body, tags, tpl.Name, truncated)
					}
				}
			}
		}

		if len(tags) > 0 {
			tags = dropTag(tags)
			continue
		}

		return c.minimal(article, limit)
	}
}

func (c *Composer) minimal(article domain.Article, limit int) domain.ComposedPost {
	room := limit - runeLen(article.URL) - 1
	title, truncated := truncateWords(strings.TrimSpace(article.Title), room)

	body := article.URL
	if title != "" {
		body = strings.NewReplacer("{title}", title, "{url}", article.URL).Replace(minimalLayout)
	}

	return domain.ComposedPost{
		Body:      body,
		Template:  "minimal",
		Truncated: truncated,
		Minimal:   true,
	}
}

func (c *Composer) render(tpl Template, summary, url string, tags []hashtag) string {
	r := strings.NewReplacer(
		"{summary}", summary,
		"{label}", c.opts.ReadMoreLabel,
		"{url}", url,
		"{tags}", strings.Join(tagTexts(tags), " "),
	)
	return strings.TrimSpace(r.Replace(tpl.Layout))
}

func (c *Composer) post(body string, tags []hashtag, template string, truncated bool) domain.ComposedPost {
	return domain.ComposedPost{
		Body:      body,
		Hashtags:  tagTexts(tags),
		Template:  template,
		Truncated: truncated,
	}
}
