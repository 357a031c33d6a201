package feed

import (
	"context"
	"time"

	"NewsPoster/internal/domain"
)

const fixtureName = "fixture"

// FixtureScanner returns canned articles; it backs the offline-fixture mode.
type FixtureScanner struct {
	now func() time.Time
}

// NewFixtureScanner builds the offline scanner.
func NewFixtureScanner() *FixtureScanner {
	return &FixtureScanner{now: time.Now}
}

// Name identifies the strategy inside the registry.
func (f *FixtureScanner) Name() string {
	return fixtureName
}

// Scan ignores the variant and returns the fixture set.
func (f *FixtureScanner) Scan(ctx context.Context, _ domain.QueryVariant) ([]domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := f.now().UTC()
	return []domain.Article{
		domain.NewArticle(domain.RawArticle{
			Title:       "Tech Innovation Surges Globally",
			Description: "Companies push AI and sustainability.",
			Body: "Tech firms invest heavily in AI. Green tech drives growth. Efficiency improves with new tools. " +
				"Industries adopt eco-solutions. Global markets evolve rapidly. Updates are ongoing. Stay informed.",
			URL:         "https://example.com/tech-news",
			Source:      fixtureName,
			PublishedAt: now,
		}),
		domain.NewArticle(domain.RawArticle{
			Title:       "Climate Summit Sets New Goals",
			Description: "Leaders pledge carbon cuts.",
			Body: "Summit agreements reduce emissions. Countries boost green projects. Funding increases for sustainability. " +
				"Climate action is key. Progress is tracked globally. More details to come. Stay updated.",
			URL:         "https://example.com/climate-news",
			Source:      fixtureName,
			PublishedAt: now,
		}),
	}, nil
}
