package composer

import (
	"fmt"
	"math/rand"
	"time"

	"NewsPoster/internal/config"
)

// Rand is the single source of randomness used while composing.
// *math/rand.Rand satisfies it; tests inject a seeded generator.
type Rand interface {
	Intn(n int) int
}

// NewRand returns a seeded generator; seed 0 seeds from the clock.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Template is a post layout. Placeholders: {summary}, {label}, {url}, {tags}.
type Template struct {
	Name   string
	Layout string
}

// DefaultTemplates differ only in decoration; all carry summary, link and tags.
var DefaultTemplates = []Template{
	{Name: "classic", Layout: "{summary}\n{label}{url}\n{tags}"},
	{Name: "headline", Layout: "📰 {summary}\n🔗 {label}{url}\n{tags}"},
	{Name: "pointer", Layout: "{summary}\n\n👉 {label}{url}\n\n{tags}"},
}

// DefaultFiller pads summaries that have too few usable sentences.
var DefaultFiller = []string{
	"Follow the link for the full story.",
	"More details are available in the original report.",
}

var defaultStopWords = []string{
	"the", "and", "that", "this", "with", "from", "they", "have", "been", "said",
	"will", "would", "could", "should", "news", "more", "than", "when", "where",
	"what", "which", "their", "there", "these", "those", "about", "after", "before",
	"being", "other", "while", "today", "years", "first", "still", "since", "against",
	"between", "during", "under", "into", "over", "says", "also", "just", "some",
	"people", "report", "reports", "according", "including", "because", "however",
}

// Options tunes summarizing, hashtag generation and fitting.
type Options struct {
	Limit             int
	MaxSentences      int
	MinSentences      int
	MinSentenceLength int
	SoftBudget        int
	MinSummaryLength  int
	ContentTags       int
	TrendingTags      int
	MaxHashtags       int
	TrendingPool      []string
	BrandTags         []string
	ReadMoreLabel     string
	Templates         []Template
	Filler            []string
	StopWords         map[string]struct{}
}

// DefaultOptions mirrors the defaults of the config layer.
func DefaultOptions() Options {
	return Options{
		Limit:             280,
		MaxSentences:      6,
		MinSentences:      2,
		MinSentenceLength: 15,
		SoftBudget:        200,
		MinSummaryLength:  40,
		ContentTags:       1,
		TrendingTags:      2,
		MaxHashtags:       4,
		TrendingPool:      []string{"#BreakingNews", "#GlobalNews", "#Headlines", "#TechUpdate", "#SpaceNews"},
		BrandTags:         []string{"#verixanews", "#verixa"},
		ReadMoreLabel:     "Read full article - ",
		Templates:         DefaultTemplates,
		Filler:            DefaultFiller,
		StopWords:         stopWordSet(defaultStopWords),
	}
}

// OptionsFromConfig maps the YAML composer section onto Options.
func OptionsFromConfig(cfg config.ComposerConfig) Options {
	opts := DefaultOptions()
	setInt(&opts.Limit, cfg.Limit)
	setInt(&opts.MaxSentences, cfg.MaxSentences)
	setInt(&opts.MinSentences, cfg.MinSentences)
	setInt(&opts.MinSentenceLength, cfg.MinSentenceLength)
	setInt(&opts.SoftBudget, cfg.SoftBudget)
	setInt(&opts.MinSummaryLength, cfg.MinSummaryLength)
	opts.ContentTags = cfg.ContentTags
	opts.TrendingTags = cfg.TrendingTags
	setInt(&opts.MaxHashtags, cfg.MaxHashtags)
	if cfg.TrendingPool != nil {
		opts.TrendingPool = cfg.TrendingPool
	}
	if cfg.BrandTags != nil {
		opts.BrandTags = cfg.BrandTags
	}
	if cfg.ReadMoreLabel != "" {
		opts.ReadMoreLabel = cfg.ReadMoreLabel
	}
	if len(cfg.Templates) > 0 {
		opts.Templates = make([]Template, 0, len(cfg.Templates))
		for i, layout := range cfg.Templates {
			opts.Templates = append(opts.Templates, Template{Name: fmt.Sprintf("custom-%d", i+1), Layout: layout})
		}
	}
	return opts
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Limit <= 0 {
		o.Limit = def.Limit
	}
	if o.MaxSentences <= 0 {
		o.MaxSentences = def.MaxSentences
	}
	if o.MinSentences < 0 {
		o.MinSentences = 0
	}
	if o.MinSentences > o.MaxSentences {
		o.MinSentences = o.MaxSentences
	}
	if o.SoftBudget <= 0 {
		o.SoftBudget = o.Limit
	}
	if o.MaxHashtags < 0 {
		o.MaxHashtags = 0
	}
	if len(o.Templates) == 0 {
		o.Templates = DefaultTemplates
	}
	if o.StopWords == nil {
		o.StopWords = def.StopWords
	}
	return o
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func stopWordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
