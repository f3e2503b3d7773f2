package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Persistence for the sentiment cache and call budget
	Store StoreConfig `yaml:"store"`

	// Commentary model configuration
	LLM     LLMConfig     `yaml:"llm"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Bedrock BedrockConfig `yaml:"bedrock"`

	// External service configurations
	Alpaca       AlpacaConfig       `yaml:"alpaca"`
	AlphaVantage AlphaVantageConfig `yaml:"alphavantage"`
	NewsAPI      NewsAPIConfig      `yaml:"newsapi"`
	FMP          FMPConfig          `yaml:"fmp"`
	Binance      BinanceConfig      `yaml:"binance"`
	Classifier   ClassifierConfig   `yaml:"classifier"`
	MarketData   MarketDataConfig   `yaml:"market_data"`

	// Sentiment fusion, cache and budget
	Sentiment SentimentConfig `yaml:"sentiment"`

	// Signal rules and per-asset-class indicator windows
	Strategy StrategyConfig `yaml:"strategy"`

	// Recommendation ranker
	Ranker RankerConfig `yaml:"ranker"`

	// Background jobs
	Jobs JobsConfig `yaml:"jobs"`

	// HTTP configuration
	HTTP HTTPConfig `yaml:"http"`

	// Logging
	Log LogConfig `yaml:"log"`
}

// StoreConfig selects where cache entries and the call budget are persisted
type StoreConfig struct {
	Backend     string `yaml:"backend"` // file, sqlite or postgres
	FilePath    string `yaml:"file_path"`
	SQLitePath  string `yaml:"sqlite_path"`
	DatabaseURL string `yaml:"-"`
}

// LLMConfig selects the commentary provider
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, bedrock or none
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey      string  `yaml:"-"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// BedrockConfig holds AWS Bedrock configuration
type BedrockConfig struct {
	Region    string `yaml:"region"`
	ModelID   string `yaml:"model_id"`
	MaxTokens int    `yaml:"max_tokens"`
}

// AlpacaConfig holds Alpaca API configuration
type AlpacaConfig struct {
	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`
	BaseURL   string `yaml:"base_url"`
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey string `yaml:"-"`
}

// NewsAPIConfig holds NewsAPI configuration
type NewsAPIConfig struct {
	APIKey string `yaml:"-"`
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	APIKey string `yaml:"-"`
}

// BinanceConfig holds the public Binance market data endpoint
type BinanceConfig struct {
	BaseURL string `yaml:"base_url"`
}

// ClassifierConfig holds the text sentiment classification endpoint
type ClassifierConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"-"`
}

// MarketDataConfig selects data providers and universe sources
type MarketDataConfig struct {
	StockProvider        string `yaml:"stock_provider"`         // alpaca or alphavantage
	StockUniverseSource  string `yaml:"stock_universe_source"`  // list or fmp
	CryptoUniverseSource string `yaml:"crypto_universe_source"` // list or binance
	CryptoUniverseLimit  int    `yaml:"crypto_universe_limit"`
	UpstreamTimeoutSec   int    `yaml:"upstream_timeout_seconds"`
}

// SentimentConfig holds sentiment fusion, cache and budget settings
type SentimentConfig struct {
	ArticlesPerSymbol     int    `yaml:"articles_per_symbol"`
	HeadlinesLimit        int    `yaml:"headlines_limit"`
	BundleTTLMinutes      int    `yaml:"bundle_ttl_minutes"`
	CommentaryTTLMinutes  int    `yaml:"commentary_ttl_minutes"` // 0 keeps entries in memory until restart
	AmbiguousLabel        string `yaml:"ambiguous_label"`        // positive or neutral
	CooldownSeconds       int    `yaml:"cooldown_seconds"`
	MaxCallsPerDay        int    `yaml:"max_calls_per_day"`
	BudgetTimezone        string `yaml:"budget_timezone"`
	ClassifierBatchSize   int    `yaml:"classifier_batch_size"`
	CommentaryMaxArticles int    `yaml:"commentary_max_articles"`
}

// AssetProfileConfig holds indicator windows and RSI bands for one asset class
type AssetProfileConfig struct {
	RSIPeriod     int     `yaml:"rsi_period"`
	ShortMAWindow int     `yaml:"short_ma_window"`
	LongMAWindow  int     `yaml:"long_ma_window"`
	VolumeWindow  int     `yaml:"volume_window"`
	LookbackDays  int     `yaml:"lookback_days"`
	Oversold      float64 `yaml:"oversold"`
	Overbought    float64 `yaml:"overbought"`
}

// StrategyConfig holds signal rule parameters
type StrategyConfig struct {
	SentimentThreshold    float64            `yaml:"sentiment_threshold"`
	VolumeSpikeMultiplier float64            `yaml:"volume_spike_multiplier"`
	Stock                 AssetProfileConfig `yaml:"stock"`
	Crypto                AssetProfileConfig `yaml:"crypto"`
}

// RankerConfig holds recommendation ranker settings
type RankerConfig struct {
	DefaultCount     int      `yaml:"default_count"`
	MaxConcurrent    int      `yaml:"max_concurrent"`
	SymbolTimeoutSec int      `yaml:"symbol_timeout_seconds"`
	StockUniverse    []string `yaml:"stock_universe"`
	CryptoUniverse   []string `yaml:"crypto_universe"`
	StockFallback    []string `yaml:"stock_fallback"`
	CryptoFallback   []string `yaml:"crypto_fallback"`
	StockIndices     []string `yaml:"stock_indices"`
	CryptoMajors     []string `yaml:"crypto_majors"`
}

// JobsConfig holds cron schedules
type JobsConfig struct {
	CachePruneSchedule string `yaml:"cache_prune_schedule"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               int    `yaml:"port"`
	CORSAllowedOrigins string `yaml:"cors_allowed_origins"`
	RequestTimeoutSec  int    `yaml:"request_timeout_seconds"`
	// Signal requests beyond this many in flight are rejected
	MaxConcurrentSignals int `yaml:"max_concurrent_signals"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Production bool   `yaml:"production"`
	Level      string `yaml:"level"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Store.Backend = getEnvString("STORE_BACKEND", c.Store.Backend)
	c.Store.FilePath = getEnvString("STORE_FILE_PATH", c.Store.FilePath)
	c.Store.SQLitePath = getEnvString("STORE_SQLITE_PATH", c.Store.SQLitePath)
	c.Store.DatabaseURL = getEnvString("DATABASE_URL", c.Store.DatabaseURL)

	c.LLM.Provider = getEnvString("LLM_PROVIDER", c.LLM.Provider)
	c.OpenAI.APIKey = getEnvString("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.BaseURL = getEnvString("OPENAI_BASE_URL", c.OpenAI.BaseURL)
	c.OpenAI.Model = getEnvString("OPENAI_MODEL", c.OpenAI.Model)
	c.OpenAI.MaxTokens = getEnvInt("OPENAI_MAX_TOKENS", c.OpenAI.MaxTokens)
	c.OpenAI.Temperature = getEnvFloatRange("OPENAI_TEMPERATURE", c.OpenAI.Temperature, 0, 2)
	c.Bedrock.Region = getEnvString("AWS_REGION", c.Bedrock.Region)
	c.Bedrock.ModelID = getEnvString("BEDROCK_MODEL_ID", c.Bedrock.ModelID)
	c.Bedrock.MaxTokens = getEnvInt("BEDROCK_MAX_TOKENS", c.Bedrock.MaxTokens)

	c.Alpaca.APIKey = getEnvString("ALPACA_API_KEY", c.Alpaca.APIKey)
	c.Alpaca.APISecret = getEnvString("ALPACA_API_SECRET", c.Alpaca.APISecret)
	c.Alpaca.BaseURL = getEnvString("ALPACA_BASE_URL", c.Alpaca.BaseURL)
	c.AlphaVantage.APIKey = getEnvString("ALPHA_VANTAGE_API_KEY", c.AlphaVantage.APIKey)
	c.NewsAPI.APIKey = getEnvString("NEWS_API_KEY", c.NewsAPI.APIKey)
	c.FMP.APIKey = getEnvString("FMP_API_KEY", c.FMP.APIKey)
	c.Binance.BaseURL = getEnvString("BINANCE_BASE_URL", c.Binance.BaseURL)
	c.Classifier.Endpoint = getEnvString("SENTIMENT_ENDPOINT", c.Classifier.Endpoint)
	c.Classifier.APIKey = getEnvString("SENTIMENT_API_KEY", c.Classifier.APIKey)

	c.MarketData.StockProvider = getEnvString("STOCK_DATA_PROVIDER", c.MarketData.StockProvider)
	c.MarketData.StockUniverseSource = getEnvString("STOCK_UNIVERSE_SOURCE", c.MarketData.StockUniverseSource)
	c.MarketData.CryptoUniverseSource = getEnvString("CRYPTO_UNIVERSE_SOURCE", c.MarketData.CryptoUniverseSource)
	c.MarketData.CryptoUniverseLimit = getEnvInt("CRYPTO_UNIVERSE_LIMIT", c.MarketData.CryptoUniverseLimit)
	c.MarketData.UpstreamTimeoutSec = getEnvInt("UPSTREAM_TIMEOUT_SECONDS", c.MarketData.UpstreamTimeoutSec)

	c.Sentiment.ArticlesPerSymbol = getEnvInt("NEWS_ARTICLES_PER_SYMBOL", c.Sentiment.ArticlesPerSymbol)
	c.Sentiment.HeadlinesLimit = getEnvInt("NEWS_HEADLINES_LIMIT", c.Sentiment.HeadlinesLimit)
	c.Sentiment.BundleTTLMinutes = getEnvInt("SENTIMENT_CACHE_TTL_MINUTES", c.Sentiment.BundleTTLMinutes)
	c.Sentiment.CommentaryTTLMinutes = getEnvIntAllowZero("COMMENTARY_CACHE_TTL_MINUTES", c.Sentiment.CommentaryTTLMinutes)
	c.Sentiment.AmbiguousLabel = getEnvString("SENTIMENT_AMBIGUOUS_LABEL", c.Sentiment.AmbiguousLabel)
	c.Sentiment.CooldownSeconds = getEnvIntAllowZero("COMMENTARY_COOLDOWN_SECONDS", c.Sentiment.CooldownSeconds)
	c.Sentiment.MaxCallsPerDay = getEnvInt("COMMENTARY_MAX_CALLS_PER_DAY", c.Sentiment.MaxCallsPerDay)
	c.Sentiment.BudgetTimezone = getEnvString("BUDGET_TIMEZONE", c.Sentiment.BudgetTimezone)

	c.Strategy.SentimentThreshold = getEnvFloat("STRATEGY_SENTIMENT_THRESHOLD", c.Strategy.SentimentThreshold)
	c.Strategy.VolumeSpikeMultiplier = getEnvFloatUnbounded("STRATEGY_VOLUME_SPIKE_MULTIPLIER", c.Strategy.VolumeSpikeMultiplier)
	c.Strategy.Stock.LookbackDays = getEnvInt("STOCK_LOOKBACK_DAYS", c.Strategy.Stock.LookbackDays)
	c.Strategy.Crypto.LookbackDays = getEnvInt("CRYPTO_LOOKBACK_DAYS", c.Strategy.Crypto.LookbackDays)

	c.Ranker.DefaultCount = getEnvInt("RANKER_DEFAULT_COUNT", c.Ranker.DefaultCount)
	c.Ranker.MaxConcurrent = getEnvInt("RANKER_MAX_CONCURRENT", c.Ranker.MaxConcurrent)
	c.Ranker.SymbolTimeoutSec = getEnvInt("RANKER_SYMBOL_TIMEOUT_SECONDS", c.Ranker.SymbolTimeoutSec)
	c.Ranker.StockUniverse = getEnvList("STOCK_UNIVERSE", c.Ranker.StockUniverse)
	c.Ranker.CryptoUniverse = getEnvList("CRYPTO_UNIVERSE", c.Ranker.CryptoUniverse)

	c.Jobs.CachePruneSchedule = getEnvString("CACHE_PRUNE_SCHEDULE", c.Jobs.CachePruneSchedule)

	c.HTTP.Port = getEnvInt("PORT", c.HTTP.Port)
	c.HTTP.CORSAllowedOrigins = getEnvString("CORS_ALLOWED_ORIGINS", c.HTTP.CORSAllowedOrigins)
	c.HTTP.RequestTimeoutSec = getEnvInt("HTTP_REQUEST_TIMEOUT_SECONDS", c.HTTP.RequestTimeoutSec)
	c.HTTP.MaxConcurrentSignals = getEnvInt("MAX_CONCURRENT_SIGNALS", c.HTTP.MaxConcurrentSignals)

	c.Log.Production = getEnvString("APP_ENV", "") == "production" || c.Log.Production
	c.Log.Level = getEnvString("LOG_LEVEL", c.Log.Level)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "file", "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be file, sqlite or postgres, got %q", c.Store.Backend)
	}

	switch c.LLM.Provider {
	case "openai", "bedrock", "none":
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai, bedrock or none, got %q", c.LLM.Provider)
	}

	switch c.MarketData.StockProvider {
	case "alpaca", "alphavantage":
	default:
		return fmt.Errorf("STOCK_DATA_PROVIDER must be alpaca or alphavantage, got %q", c.MarketData.StockProvider)
	}

	switch c.Sentiment.AmbiguousLabel {
	case "positive", "neutral":
	default:
		return fmt.Errorf("SENTIMENT_AMBIGUOUS_LABEL must be positive or neutral, got %q", c.Sentiment.AmbiguousLabel)
	}

	if _, err := time.LoadLocation(c.Sentiment.BudgetTimezone); err != nil {
		return fmt.Errorf("BUDGET_TIMEZONE %q is not a valid zone: %w", c.Sentiment.BudgetTimezone, err)
	}

	if c.Sentiment.MaxCallsPerDay <= 0 {
		return fmt.Errorf("COMMENTARY_MAX_CALLS_PER_DAY must be positive, got %d", c.Sentiment.MaxCallsPerDay)
	}
	if c.Sentiment.ClassifierBatchSize <= 0 || c.Sentiment.ClassifierBatchSize > 10 {
		return fmt.Errorf("classifier batch size must be between 1 and 10, got %d", c.Sentiment.ClassifierBatchSize)
	}

	if c.Strategy.SentimentThreshold <= 0 || c.Strategy.SentimentThreshold >= 1 {
		return fmt.Errorf("STRATEGY_SENTIMENT_THRESHOLD must be between 0 and 1, got %.2f", c.Strategy.SentimentThreshold)
	}
	if c.Strategy.VolumeSpikeMultiplier <= 0 {
		return fmt.Errorf("STRATEGY_VOLUME_SPIKE_MULTIPLIER must be positive, got %.2f", c.Strategy.VolumeSpikeMultiplier)
	}
	for name, p := range map[string]AssetProfileConfig{"stock": c.Strategy.Stock, "crypto": c.Strategy.Crypto} {
		if err := p.validate(name); err != nil {
			return err
		}
	}

	if c.Ranker.MaxConcurrent <= 0 {
		return fmt.Errorf("RANKER_MAX_CONCURRENT must be positive, got %d", c.Ranker.MaxConcurrent)
	}
	if len(c.Ranker.StockUniverse) == 0 || len(c.Ranker.CryptoUniverse) == 0 {
		return fmt.Errorf("stock and crypto universes must not be empty")
	}
	if c.MarketData.UpstreamTimeoutSec <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT_SECONDS must be positive, got %d", c.MarketData.UpstreamTimeoutSec)
	}

	return nil
}

func (p AssetProfileConfig) validate(name string) error {
	if p.RSIPeriod <= 0 || p.ShortMAWindow <= 0 || p.LongMAWindow <= 0 || p.VolumeWindow <= 0 || p.LookbackDays <= 0 {
		return fmt.Errorf("%s profile windows must be positive: %+v", name, p)
	}
	if p.Oversold < 0 || p.Overbought > 100 || p.Oversold >= p.Overbought {
		return fmt.Errorf("%s profile needs 0 <= oversold < overbought <= 100, got %.1f/%.1f", name, p.Oversold, p.Overbought)
	}
	return nil
}

// Location returns the zone used for daily budget resets
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Sentiment.BudgetTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// UpstreamTimeout returns the per-call timeout for external services
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.MarketData.UpstreamTimeoutSec) * time.Second
}

// HasOpenAI returns true if OpenAI configuration is available
func (c *Config) HasOpenAI() bool {
	return c.OpenAI.APIKey != ""
}

// HasAlpaca returns true if Alpaca configuration is available
func (c *Config) HasAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}

// HasAlphaVantage returns true if Alpha Vantage configuration is available
func (c *Config) HasAlphaVantage() bool {
	return c.AlphaVantage.APIKey != ""
}

// HasNewsAPI returns true if NewsAPI configuration is available
func (c *Config) HasNewsAPI() bool {
	return c.NewsAPI.APIKey != ""
}

// HasFMP returns true if Financial Modeling Prep configuration is available
func (c *Config) HasFMP() bool {
	return c.FMP.APIKey != ""
}

// HasClassifier returns true if a sentiment endpoint is configured
func (c *Config) HasClassifier() bool {
	return c.Classifier.Endpoint != "" && c.Classifier.APIKey != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvIntAllowZero(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= 0 && parsed <= 1 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatRange(key string, defaultValue, minVal, maxVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= minVal && parsed <= maxVal {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatUnbounded(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if s := strings.ToUpper(strings.TrimSpace(part)); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Defaults returns the built-in configuration before file and env overrides
func Defaults() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:    "file",
			FilePath:   "data/sentiment_cache.json",
			SQLitePath: "data/trade_signals.db",
		},
		LLM: LLMConfig{
			Provider: "openai",
		},
		OpenAI: OpenAIConfig{
			BaseURL:     "https://models.github.ai/inference",
			Model:       "openai/gpt-4.1",
			MaxTokens:   600,
			Temperature: 0.7,
		},
		Bedrock: BedrockConfig{
			Region:    "us-east-1",
			ModelID:   "anthropic.claude-3-haiku-20240307-v1:0",
			MaxTokens: 600,
		},
		Alpaca: AlpacaConfig{
			BaseURL: "https://data.alpaca.markets",
		},
		Binance: BinanceConfig{
			BaseURL: "https://api.binance.com",
		},
		MarketData: MarketDataConfig{
			StockProvider:        "alpaca",
			StockUniverseSource:  "fmp",
			CryptoUniverseSource: "list",
			CryptoUniverseLimit:  30,
			UpstreamTimeoutSec:   30,
		},
		Sentiment: SentimentConfig{
			ArticlesPerSymbol:     5,
			HeadlinesLimit:        10,
			BundleTTLMinutes:      360,
			CommentaryTTLMinutes:  0,
			AmbiguousLabel:        "positive",
			CooldownSeconds:       60,
			MaxCallsPerDay:        40,
			BudgetTimezone:        "UTC",
			ClassifierBatchSize:   10,
			CommentaryMaxArticles: 10,
		},
		Strategy: StrategyConfig{
			SentimentThreshold:    0.6,
			VolumeSpikeMultiplier: 1.5,
			Stock: AssetProfileConfig{
				RSIPeriod:     14,
				ShortMAWindow: 20,
				LongMAWindow:  50,
				VolumeWindow:  20,
				LookbackDays:  180,
				Oversold:      30,
				Overbought:    70,
			},
			Crypto: AssetProfileConfig{
				RSIPeriod:     14,
				ShortMAWindow: 20,
				LongMAWindow:  120,
				VolumeWindow:  20,
				LookbackDays:  120,
				Oversold:      30,
				Overbought:    70,
			},
		},
		Ranker: RankerConfig{
			DefaultCount:     10,
			MaxConcurrent:    3,
			SymbolTimeoutSec: 60,
			StockUniverse:    []string{"AAPL", "MSFT", "GOOG", "AMZN", "TSLA", "NVDA", "META", "SPY", "AMD", "NFLX"},
			CryptoUniverse:   []string{"BTC", "ETH", "BNB", "ADA", "SOL", "XRP", "DOGE", "DOT", "LTC", "MATIC"},
			StockFallback:    []string{"AAPL", "MSFT", "NVDA", "GOOGL", "AMZN", "TSLA", "META", "JPM", "V", "WMT"},
			CryptoFallback:   []string{"BTC", "ETH", "BNB", "SOL", "XRP", "ADA", "DOGE", "DOT", "LTC", "AVAX"},
			StockIndices:     []string{"SPY", "QQQ", "DIA"},
			CryptoMajors:     []string{"BTC", "ETH", "BNB", "SOL", "DOGE"},
		},
		Jobs: JobsConfig{
			CachePruneSchedule: "@every 30m",
		},
		HTTP: HTTPConfig{
			Port:                 8080,
			CORSAllowedOrigins:   "http://localhost:5173",
			RequestTimeoutSec:    120,
			MaxConcurrentSignals: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	cfg := Defaults()
	cfg.LLM.Provider = "none"
	cfg.Store.FilePath = ""
	cfg.Sentiment.CooldownSeconds = 0
	cfg.HTTP.CORSAllowedOrigins = "*"
	return cfg
}
