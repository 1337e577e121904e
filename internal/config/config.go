package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Image    ImageConfig    `mapstructure:"image"`
	Hashtags HashtagConfig  `mapstructure:"hashtags"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Session  SessionConfig  `mapstructure:"session"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// DatabaseConfig backs the durable session store.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite or postgres
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the driver specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

// StorageConfig selects and configures the blob store.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // r2, s3, s3compatible or memory
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
	Prefix    string `mapstructure:"prefix"`
}

// LLMConfig configures the chat completion provider.
type LLMConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Models  ModelConfig   `mapstructure:"models"`
}

// ModelConfig names the model used by each text stage.
type ModelConfig struct {
	Style       string `mapstructure:"style"`
	Variation   string `mapstructure:"variation"`
	Selection   string `mapstructure:"selection"`
	Features    string `mapstructure:"features"`
	Arbitration string `mapstructure:"arbitration"`
	Metadata    string `mapstructure:"metadata"`
}

// ImageConfig configures the image generation provider.
type ImageConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	CharacterModel string        `mapstructure:"character_model"`
	Size           string        `mapstructure:"size"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// HashtagConfig configures the hashtag ranking scraper.
type HashtagConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// PipelineConfig tunes a generation run.
type PipelineConfig struct {
	VariationConcurrency int           `mapstructure:"variation_concurrency"`
	CallTimeout          time.Duration `mapstructure:"call_timeout"`
	Platform             string        `mapstructure:"platform"`
	Timezone             string        `mapstructure:"timezone"`
	ScratchDir           string        `mapstructure:"scratch_dir"`
}

// SessionConfig selects the session store backend.
type SessionConfig struct {
	Store string `mapstructure:"store"` // memory or database
}

// Load reads configuration from configPath (or ./configs/config.yaml), .env and
// the environment, in increasing priority.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.BindEnv("server.port", "PORT")
	v.BindEnv("llm.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.base_url", "OPENAI_BASE_URL")
	v.BindEnv("image.api_key", "OPENAI_API_KEY")
	v.BindEnv("image.base_url", "OPENAI_BASE_URL")
	v.BindEnv("storage.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.access_key", "S3_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "S3_SECRET_KEY")
	v.BindEnv("storage.bucket", "S3_BUCKET")
	v.BindEnv("storage.public_url", "S3_PUBLIC_URL")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("llm.models.arbitration", "ARBITRATION_MODEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/sessions.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.bucket", "viralpost")
	v.SetDefault("storage.prefix", "viralpost")

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.models.style", "gpt-4o-mini")
	v.SetDefault("llm.models.variation", "gpt-4o-mini")
	v.SetDefault("llm.models.selection", "gpt-4o-mini")
	v.SetDefault("llm.models.features", "gpt-4o")
	v.SetDefault("llm.models.arbitration", "gpt-4o")
	v.SetDefault("llm.models.metadata", "gpt-4o-mini")

	v.SetDefault("image.base_url", "https://api.openai.com/v1")
	v.SetDefault("image.model", "gpt-image-1")
	v.SetDefault("image.character_model", "dall-e-3")
	v.SetDefault("image.size", "1024x1024")
	v.SetDefault("image.timeout", 180*time.Second)

	v.SetDefault("hashtags.base_url", "https://best-hashtags.com/hashtag")
	v.SetDefault("hashtags.user_agent", "Mozilla/5.0 (compatible; HashtagScraper/1.0)")
	v.SetDefault("hashtags.timeout", 10*time.Second)
	v.SetDefault("hashtags.cache_size", 100)
	v.SetDefault("hashtags.cache_ttl", 6*time.Hour)

	v.SetDefault("pipeline.variation_concurrency", 5)
	v.SetDefault("pipeline.call_timeout", 90*time.Second)
	v.SetDefault("pipeline.platform", "Twitter")
	v.SetDefault("pipeline.timezone", "Asia/Kolkata")
	v.SetDefault("pipeline.scratch_dir", "./tmp")

	v.SetDefault("session.store", "memory")
}
