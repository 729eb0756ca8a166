package config

import "time"

// StoreConfig holds event store connection settings.
type StoreConfig struct {
	Driver            string        `env:"STORE_DRIVER" envDefault:"postgres"`
	PostgresDSN       string        `env:"POSTGRES_DSN"`
	SQLitePath        string        `env:"SQLITE_PATH" envDefault:"./events.db"`
	MaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	MinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	DeleteBatchSize   int           `env:"DELETE_BATCH_SIZE" envDefault:"50"`
}

// DedupConfig holds rule-based matcher settings.
type DedupConfig struct {
	Strictness           string `env:"DEDUP_STRICTNESS" envDefault:"strict"`
	Workers              int    `env:"DEDUP_WORKERS" envDefault:"4"`
	StrictMinSharedWords int    `env:"DEDUP_STRICT_MIN_SHARED_WORDS" envDefault:"1"`
	GradedMinSharedWords int    `env:"DEDUP_GRADED_MIN_SHARED_WORDS" envDefault:"2"`
}

// AIConfig holds settings for the AI confirmation pass.
type AIConfig struct {
	Enabled             bool          `env:"AI_ENABLED" envDefault:"true"`
	DayDelay            time.Duration `env:"AI_DAY_DELAY" envDefault:"500ms"`
	MaxDays             int           `env:"AI_MAX_DAYS" envDefault:"0"`
	DescriptionMaxChars int           `env:"AI_DESCRIPTION_MAX_CHARS" envDefault:"300"`
}

// LLMConfig holds reasoning service provider settings.
type LLMConfig struct {
	OpenAIAPIKey     string        `env:"LLM_API_KEY"`
	OpenAIModel      string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL    string        `env:"LLM_BASE_URL"`
	AnthropicAPIKey  string        `env:"ANTHROPIC_API_KEY"`
	AnthropicModel   string        `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku-4-5"`
	GoogleAPIKey     string        `env:"GOOGLE_API_KEY"`
	GoogleModel      string        `env:"GOOGLE_MODEL" envDefault:"gemini-2.5-flash-lite"`
	OpenRouterAPIKey string        `env:"OPENROUTER_API_KEY"`
	OpenRouterModel  string        `env:"OPENROUTER_MODEL" envDefault:"meta-llama/llama-3.1-8b-instruct"`
	MockResponse     string        `env:"LLM_MOCK_RESPONSE"`
	MaxTokens        int           `env:"LLM_MAX_TOKENS" envDefault:"2048"`
	RateLimitRPS     float64       `env:"RATE_LIMIT_RPS" envDefault:"1"`
	CircuitThreshold int           `env:"LLM_CIRCUIT_THRESHOLD" envDefault:"5"`
	CircuitTimeout   time.Duration `env:"LLM_CIRCUIT_TIMEOUT" envDefault:"1m"`
	DailyTokenBudget int64         `env:"LLM_DAILY_TOKEN_BUDGET" envDefault:"0"`
}

// FilterConfig holds settings for the default low-quality listing filter.
type FilterConfig struct {
	MinTitleLength int      `env:"FILTER_MIN_TITLE_LENGTH" envDefault:"4"`
	DenyKeywords   []string `env:"FILTER_DENY_KEYWORDS" envSeparator:","`
}
