package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "TRENDSAGENT_CONFIG"

	openRouterKeyEnv  = "OPENROUTER_API_KEY"
	llmAPIKeyEnv      = "LLM_API_KEY"
	llmProviderEnv    = "LLM_PROVIDER"
	llmModelEnv       = "LLM_MODEL"
	llmBaseURLEnv     = "LLM_BASE_URL"
	databaseDSNEnv    = "DATABASE_DSN"
	databaseDriverEnv = "DATABASE_DRIVER"
	csvFileEnv        = "CSV_FILE"
	redisURLEnv       = "REDIS_URL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	portEnv           = "PORT"
	logLevelEnv       = "LOG_LEVEL"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	SourceStatic = "static"
	SourceRSS    = "rss"
	SourceHTML   = "html"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	LLM           LLMConfig          `yaml:"llm"`
	Classifier    GenerationConfig   `yaml:"classifier"`
	Synthesizer   SynthesizerConfig  `yaml:"synthesizer"`
	Retry         RetryConfig        `yaml:"retry"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Sources       []SourceConfig     `yaml:"sources"`
	Storage       StorageConfig      `yaml:"storage"`
	Redis         RedisConfig        `yaml:"redis"`
	Server        ServerConfig       `yaml:"server"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LLMConfig defines how to contact the completion provider.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"baseUrl"`
	APIKey      string        `yaml:"apiKey"`
	Model       string        `yaml:"model"`
	AppName     string        `yaml:"appName"`
	AppURL      string        `yaml:"appUrl"`
	CallTimeout time.Duration `yaml:"callTimeout"`
}

// GenerationConfig carries sampling parameters for one completion use.
type GenerationConfig struct {
	MaxTokens   int      `yaml:"maxTokens"`
	Temperature *float64 `yaml:"temperature"`
}

// SynthesizerConfig adds branding to the generation parameters.
type SynthesizerConfig struct {
	GenerationConfig `yaml:",inline"`
	Brand            string `yaml:"brand"`
	BrandURL         string `yaml:"brandUrl"`
}

// RetryConfig shapes the backoff of completion calls.
type RetryConfig struct {
	Attempts  int           `yaml:"attempts"`
	BaseDelay time.Duration `yaml:"baseDelay"`
}

// PipelineConfig bounds a single run.
type PipelineConfig struct {
	BatchSize int           `yaml:"batchSize"`
	ItemDelay time.Duration `yaml:"itemDelay"`
}

// SourceConfig describes one trend source and the strategy that reads it.
type SourceConfig struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	URL      string   `yaml:"url"`
	Selector string   `yaml:"selector"`
	Items    []string `yaml:"items"`
	Limit    int      `yaml:"limit"`
	Filter   bool     `yaml:"filter"`
}

// StorageConfig selects the record stores; CSV is always primary.
type StorageConfig struct {
	CSVPath    string `yaml:"csvPath"`
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	ExportPath string `yaml:"exportPath"`
}

// RedisConfig enables the distributed run lock when URL is set.
type RedisConfig struct {
	URL     string        `yaml:"url"`
	LockKey string        `yaml:"lockKey"`
	LockTTL time.Duration `yaml:"lockTtl"`
}

// ServerConfig configures the HTTP trigger.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// SchedulerConfig defines unattended runs; a zero interval disables them.
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

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIURL   string `yaml:"apiUrl"`
}

// Load reads .env, YAML configuration (if present) and applies environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot read .env: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := ReadFile(path)
		if err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// ReadFile parses a YAML configuration file without applying defaults.
func ReadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return fileCfg, nil
}

// Validate reports blocking errors and non-blocking warnings.
func (c Config) Validate() (errs []string, warnings []string) {
	if c.LLM.APIKey == "" {
		warnings = append(warnings, "LLM API key is not set (OPENROUTER_API_KEY or LLM_API_KEY) - keyword and template fallbacks will be used")
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Sprintf("unknown llm provider %q", c.LLM.Provider))
	}
	if c.Storage.CSVPath == "" && c.Storage.DSN == "" {
		errs = append(errs, "no record store configured (storage.csvPath or storage.dsn)")
	}
	if c.Storage.DSN == "" {
		warnings = append(warnings, "storage.dsn is not set - using CSV storage only")
	}
	if c.Storage.DSN != "" && c.Storage.Driver != DriverPostgres && c.Storage.Driver != DriverSQLite {
		errs = append(errs, fmt.Sprintf("unknown storage driver %q", c.Storage.Driver))
	}
	for _, src := range c.Sources {
		switch src.Kind {
		case SourceStatic, SourceRSS, SourceHTML:
		default:
			errs = append(errs, fmt.Sprintf("source %s: unknown kind %q", src.Name, src.Kind))
		}
	}
	if c.Pipeline.BatchSize > 20 {
		warnings = append(warnings, "pipeline.batchSize above 20 may exhaust provider rate limits")
	}
	return errs, warnings
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openRouterKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(llmBaseURLEnv); v != "" {
		c.LLM.BaseURL = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv(csvFileEnv); v != "" {
		c.Storage.CSVPath = v
	}

	if v := os.Getenv(redisURLEnv); v != "" {
		c.Redis.URL = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(portEnv); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			c.Server.Addr = ":" + v
		} else {
			log.Printf("config: ignoring invalid %s=%q", portEnv, v)
		}
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = strings.ToLower(override.LLM.Provider)
	}
	if override.LLM.BaseURL != "" {
		base.LLM.BaseURL = override.LLM.BaseURL
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.AppName != "" {
		base.LLM.AppName = override.LLM.AppName
	}
	if override.LLM.AppURL != "" {
		base.LLM.AppURL = override.LLM.AppURL
	}
	if override.LLM.CallTimeout > 0 {
		base.LLM.CallTimeout = override.LLM.CallTimeout
	}

	base.Classifier = mergeGeneration(base.Classifier, override.Classifier)
	base.Synthesizer.GenerationConfig = mergeGeneration(base.Synthesizer.GenerationConfig, override.Synthesizer.GenerationConfig)
	if override.Synthesizer.Brand != "" {
		base.Synthesizer.Brand = override.Synthesizer.Brand
	}
	if override.Synthesizer.BrandURL != "" {
		base.Synthesizer.BrandURL = override.Synthesizer.BrandURL
	}

	if override.Retry.Attempts > 0 {
		base.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.BaseDelay > 0 {
		base.Retry.BaseDelay = override.Retry.BaseDelay
	}

	if override.Pipeline.BatchSize > 0 {
		base.Pipeline.BatchSize = override.Pipeline.BatchSize
	}
	if override.Pipeline.ItemDelay > 0 {
		base.Pipeline.ItemDelay = override.Pipeline.ItemDelay
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	if override.Storage.CSVPath != "" {
		base.Storage.CSVPath = override.Storage.CSVPath
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}
	if override.Storage.Driver != "" {
		base.Storage.Driver = strings.ToLower(override.Storage.Driver)
	}
	if override.Storage.ExportPath != "" {
		base.Storage.ExportPath = override.Storage.ExportPath
	}

	if override.Redis.URL != "" {
		base.Redis.URL = override.Redis.URL
	}
	if override.Redis.LockKey != "" {
		base.Redis.LockKey = override.Redis.LockKey
	}
	if override.Redis.LockTTL > 0 {
		base.Redis.LockTTL = override.Redis.LockTTL
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if len(override.Server.AllowedOrigins) > 0 {
		base.Server.AllowedOrigins = override.Server.AllowedOrigins
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.APIURL != "" {
		base.Notifications.Telegram.APIURL = override.Notifications.Telegram.APIURL
	}

	return base
}

func mergeGeneration(base, override GenerationConfig) GenerationConfig {
	if override.MaxTokens > 0 {
		base.MaxTokens = override.MaxTokens
	}
	if override.Temperature != nil {
		t := *override.Temperature
		base.Temperature = &t
	}
	return base
}

// TemperatureOr returns the configured temperature or fallback.
func (g GenerationConfig) TemperatureOr(fallback float64) float64 {
	if g.Temperature == nil {
		return fallback
	}
	return *g.Temperature
}

func floatPtr(v float64) *float64 {
	return &v
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			BaseURL:     "https://openrouter.ai/api/v1",
			Model:       "deepseek/deepseek-r1:free",
			AppName:     "JobYaari AI Agent",
			AppURL:      "https://jobyaari.com",
			CallTimeout: 60 * time.Second,
		},
		Classifier: GenerationConfig{MaxTokens: 50, Temperature: floatPtr(0.1)},
		Synthesizer: SynthesizerConfig{
			GenerationConfig: GenerationConfig{MaxTokens: 1000, Temperature: floatPtr(0.7)},
			Brand:            "JobYaari",
			BrandURL:         "https://jobyaari.com",
		},
		Retry:    RetryConfig{Attempts: 3, BaseDelay: 2 * time.Second},
		Pipeline: PipelineConfig{BatchSize: 5, ItemDelay: time.Second},
		Storage: StorageConfig{
			CSVPath:    "job_trends_data.csv",
			Driver:     DriverPostgres,
			ExportPath: "export.json",
		},
		Redis:     RedisConfig{LockKey: "trendsagent:run-lock", LockTTL: 10 * time.Minute},
		Server:    ServerConfig{Addr: ":5000", AllowedOrigins: []string{"http://localhost:3000"}},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		Sources: []SourceConfig{
			{
				Name:   "job-trends",
				Kind:   SourceStatic,
				Filter: true,
				Items: []string{
					"SBI PO admit card 2025 release date",
					"UPSC Civil Services Preliminary Results 2025",
					"SSC CGL 2025 notification out - apply online",
					"RRB NTPC vacancy 2025 - 10,000+ posts",
					"IBPS Clerk recruitment 2025 last date extended",
					"Indian Army technical graduate course 2025 notification",
					"AIIMS nursing officer recruitment - 500 vacancies",
					"ISRO scientist engineer vacancy - apply before Dec 2025",
					"LIC AAO admit card 2025 download link active",
					"Delhi Police constable result 2025 declared",
					"RBI Assistant recruitment 2025 - 1000 vacancies",
					"NABARD grade A officer notification 2025",
					"IBPS SO specialist officer recruitment",
					"SSC JE junior engineer vacancy 2025",
					"Railway group d recruitment 2025 latest news",
				},
			},
		},
	}
}
