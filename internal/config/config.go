package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	// ModeLive queries the configured feeds.
	ModeLive = "live"
	// ModeOfflineFixture replaces every feed with canned fixture articles.
	ModeOfflineFixture = "offline-fixture"

	configPathEnv           = "NEWSPOSTER_CONFIG"
	modeEnv                 = "NEWSPOSTER_MODE"
	logLevelEnv             = "LOG_LEVEL"
	newsAPIKeyEnv           = "NEWS_API_KEY"
	twitterAPIKeyEnv        = "TWITTER_API_KEY"
	twitterAPISecretEnv     = "TWITTER_API_SECRET"
	twitterAccessTokenEnv   = "TWITTER_ACCESS_TOKEN"
	twitterAccessSecretEnv  = "TWITTER_ACCESS_TOKEN_SECRET"
	telegramTokenEnv        = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv       = "TELEGRAM_CHAT_ID"
	chatGPTAPIKeyEnv        = "CHATGPT_API_KEY"
	chatGPTModelEnv         = "CHATGPT_MODEL"
	databaseDSNEnv          = "DATABASE_DSN"
	redisAddrEnv            = "REDIS_ADDR"
	metricsTextfilePathEnv  = "METRICS_TEXTFILE"
	historyPathEnv          = "HISTORY_PATH"
	publisherKindEnv        = "PUBLISHER_KIND"
	defaultNewsAPIBaseURL   = "https://newsapi.org/v2"
	defaultTwitterEndpoint  = "https://api.twitter.com/2/tweets"
	defaultTelegramEndpoint = "https://api.telegram.org"
)

// ErrInvalidConfig marks configuration-level failures; the CLI exits non-zero on them.
var ErrInvalidConfig = errors.New("invalid configuration")

var (
	defaultCountries = []string{"us", "gb", "ca", "au", "in", "fr", "de", "jp", "cn", "br"}
	defaultOutlets   = []string{"bbc-news", "al-jazeera-english", "reuters", "cnn", "the-guardian-uk"}
)

// Config holds every setting the poster needs; it is built once at startup.
type Config struct {
	Mode      string          `yaml:"mode"`
	Logging   LoggingConfig   `yaml:"logging"`
	Feed      FeedConfig      `yaml:"feed"`
	History   HistoryConfig   `yaml:"history"`
	Lock      LockConfig      `yaml:"lock"`
	Composer  ComposerConfig  `yaml:"composer"`
	Publisher PublisherConfig `yaml:"publisher"`
	ChatGPT   ChatGPTConfig   `yaml:"chatgpt"`
	Run       RunConfig       `yaml:"run"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// LoggingConfig selects the level and an optional rotated log file.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// FeedConfig describes the article feed collaborator and the ordered query variants.
type FeedConfig struct {
	NewsAPIKey     string          `yaml:"newsApiKey"`
	NewsAPIBaseURL string          `yaml:"newsApiBaseUrl"`
	Timeout        time.Duration   `yaml:"timeout"`
	Retries        int             `yaml:"retries"`
	MinTitleLength int             `yaml:"minTitleLength"`
	Variants       []VariantConfig `yaml:"variants"`
}

// VariantConfig is one query variant with its scanner strategy.
type VariantConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	Params  map[string]string `yaml:"params"`
}

// HistoryConfig selects the history backend.
type HistoryConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Limit   int    `yaml:"limit"`
	DSN     string `yaml:"dsn"`
	Table   string `yaml:"table"`
}

// LockConfig selects how single-instance execution is enforced.
type LockConfig struct {
	Backend   string        `yaml:"backend"`
	Path      string        `yaml:"path"`
	TTL       time.Duration `yaml:"ttl"`
	RedisAddr string        `yaml:"redisAddr"`
	RedisKey  string        `yaml:"redisKey"`
}

// ComposerConfig tunes post composition.
type ComposerConfig struct {
	Limit             int      `yaml:"limit"`
	MaxSentences      int      `yaml:"maxSentences"`
	MinSentences      int      `yaml:"minSentences"`
	MinSentenceLength int      `yaml:"minSentenceLength"`
	SoftBudget        int      `yaml:"softBudget"`
	MinSummaryLength  int      `yaml:"minSummaryLength"`
	ContentTags       int      `yaml:"contentTags"`
	TrendingTags      int      `yaml:"trendingTags"`
	MaxHashtags       int      `yaml:"maxHashtags"`
	TrendingPool      []string `yaml:"trendingPool"`
	BrandTags         []string `yaml:"brandTags"`
	ReadMoreLabel     string   `yaml:"readMoreLabel"`
	Templates         []string `yaml:"templates"`
	Seed              int64    `yaml:"seed"`
}

// PublisherConfig selects the posting collaborator.
type PublisherConfig struct {
	Kind     string         `yaml:"kind"`
	Timeout  time.Duration  `yaml:"timeout"`
	X        XConfig        `yaml:"x"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// XConfig carries OAuth1 credentials for the short-post API.
type XConfig struct {
	Endpoint          string `yaml:"endpoint"`
	ConsumerKey       string `yaml:"consumerKey"`
	ConsumerSecret    string `yaml:"consumerSecret"`
	AccessToken       string `yaml:"accessToken"`
	AccessTokenSecret string `yaml:"accessTokenSecret"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	Endpoint string `yaml:"endpoint"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// ChatGPTConfig defines how to contact an OpenAI-compatible API for summaries.
type ChatGPTConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// RunConfig bounds the orchestrator loop.
type RunConfig struct {
	MaxAttempts      int           `yaml:"maxAttempts"`
	Budget           time.Duration `yaml:"budget"`
	RecordDuplicates bool          `yaml:"recordDuplicates"`
}

// SchedulerConfig defines how often `serve` triggers a run.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// MetricsConfig points at a node-exporter textfile; empty disables the flush.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath"`
}

// Load reads .env files, the YAML file (path argument or NEWSPOSTER_CONFIG) and
// environment overrides on top of defaults, then validates the result.
func Load(path string) (Config, error) {
	loadDotEnv()

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Feed.Variants) == 0 {
		cfg.Feed.Variants = DefaultVariants()
	}
	if cfg.Mode == ModeOfflineFixture {
		cfg.Feed.Variants = []VariantConfig{{Name: "fixture", Scanner: "fixture"}}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the credentials required by the selected collaborators are present.
func (c Config) Validate() error {
	var problems []string

	switch c.Mode {
	case ModeLive, ModeOfflineFixture:
	default:
		problems = append(problems, fmt.Sprintf("unknown mode %q", c.Mode))
	}

	if c.Mode == ModeLive && c.Feed.NewsAPIKey == "" {
		for _, v := range c.Feed.Variants {
			if v.Scanner == "newsapi" {
				problems = append(problems, newsAPIKeyEnv+" is required for newsapi variants (or use mode "+ModeOfflineFixture+")")
				break
			}
		}
	}

	switch c.Publisher.Kind {
	case "x":
		x := c.Publisher.X
		if x.ConsumerKey == "" || x.ConsumerSecret == "" || x.AccessToken == "" || x.AccessTokenSecret == "" {
			problems = append(problems, "x publisher requires consumer key/secret and access token/secret")
		}
	case "telegram":
		if c.Publisher.Telegram.BotToken == "" || c.Publisher.Telegram.ChatID == "" {
			problems = append(problems, "telegram publisher requires bot token and chat id")
		}
	case "stdout":
	default:
		problems = append(problems, fmt.Sprintf("unknown publisher kind %q", c.Publisher.Kind))
	}

	switch c.History.Backend {
	case "file":
		if c.History.Path == "" {
			problems = append(problems, "history path is required for the file backend")
		}
	case "postgres":
		if c.History.DSN == "" {
			problems = append(problems, databaseDSNEnv+" is required for the postgres history backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown history backend %q", c.History.Backend))
	}

	switch c.Lock.Backend {
	case "none", "file":
	case "redis":
		if c.Lock.RedisAddr == "" {
			problems = append(problems, redisAddrEnv+" is required for the redis lock backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown lock backend %q", c.Lock.Backend))
	}

	if c.Composer.Limit <= 0 {
		problems = append(problems, "composer limit must be positive")
	}
	if c.Run.MaxAttempts < 1 {
		problems = append(problems, "run maxAttempts must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// DefaultVariants lists the query order: general headlines, headlines per country,
// a broad search, then named outlets.
func DefaultVariants() []VariantConfig {
	variants := []VariantConfig{{
		Name:    "general",
		Scanner: "newsapi",
		Params:  map[string]string{"endpoint": "top-headlines", "category": "general", "language": "en"},
	}}
	for _, country := range defaultCountries {
		variants = append(variants, VariantConfig{
			Name:    "general-" + country,
			Scanner: "newsapi",
			Params:  map[string]string{"endpoint": "top-headlines", "category": "general", "language": "en", "country": country},
		})
	}
	variants = append(variants, VariantConfig{
		Name:    "everything",
		Scanner: "newsapi",
		Params:  map[string]string{"endpoint": "everything", "q": "news", "language": "en", "sortBy": "publishedAt"},
	})
	for _, outlet := range defaultOutlets {
		variants = append(variants, VariantConfig{
			Name:    "source-" + outlet,
			Scanner: "newsapi",
			Params:  map[string]string{"endpoint": "top-headlines", "sources": outlet},
		})
	}
	return variants
}

func loadDotEnv() {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		// Values already present in the process environment win.
		_ = godotenv.Load(file)
	}
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env string
		dst *string
	}{
		{modeEnv, &c.Mode},
		{logLevelEnv, &c.Logging.Level},
		{newsAPIKeyEnv, &c.Feed.NewsAPIKey},
		{twitterAPIKeyEnv, &c.Publisher.X.ConsumerKey},
		{twitterAPISecretEnv, &c.Publisher.X.ConsumerSecret},
		{twitterAccessTokenEnv, &c.Publisher.X.AccessToken},
		{twitterAccessSecretEnv, &c.Publisher.X.AccessTokenSecret},
		{telegramTokenEnv, &c.Publisher.Telegram.BotToken},
		{telegramChatIDEnv, &c.Publisher.Telegram.ChatID},
		{chatGPTAPIKeyEnv, &c.ChatGPT.APIKey},
		{chatGPTModelEnv, &c.ChatGPT.Model},
		{databaseDSNEnv, &c.History.DSN},
		{redisAddrEnv, &c.Lock.RedisAddr},
		{metricsTextfilePathEnv, &c.Metrics.TextfilePath},
		{historyPathEnv, &c.History.Path},
		{publisherKindEnv, &c.Publisher.Kind},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Mode:    ModeLive,
		Logging: LoggingConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28},
		Feed: FeedConfig{
			NewsAPIBaseURL: defaultNewsAPIBaseURL,
			Timeout:        10 * time.Second,
			Retries:        1,
			MinTitleLength: 10,
		},
		History: HistoryConfig{
			Backend: "file",
			Path:    "posted_articles.json",
			Limit:   100,
			Table:   "posted_articles",
		},
		Lock: LockConfig{
			Backend:  "file",
			Path:     "newsposter.lock",
			TTL:      10 * time.Minute,
			RedisKey: "newsposter:run-lock",
		},
		Composer: ComposerConfig{
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
		},
		Publisher: PublisherConfig{
			Kind:     "x",
			Timeout:  15 * time.Second,
			X:        XConfig{Endpoint: defaultTwitterEndpoint},
			Telegram: TelegramConfig{Endpoint: defaultTelegramEndpoint},
		},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You write short, factual news summaries for social media.",
			Timeout:      20 * time.Second,
		},
		Run:       RunConfig{MaxAttempts: 5, Budget: 2 * time.Minute},
		Scheduler: SchedulerConfig{Interval: time.Hour, Timezone: defaultTimezone, location: tz},
	}
}
