package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModelEndpoint = "https://api.openai.com/v1/responses"
	DefaultModel         = "gpt-5-mini"
	DefaultPort          = "8765"
	DefaultDatabasePath  = "data/reports.db"
)

// DefaultAllowedOrigins are the Vite dev server and the local preview port.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:8080",
}

// Config is the full service configuration. It is read once at startup and
// handed to constructors by value; nothing mutates it afterwards.
type Config struct {
	Server ServerConfig `yaml:"server"`
	LLM    LLMConfig    `yaml:"llm"`
	DB     DBConfig     `yaml:"db"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
	Enrich EnrichConfig `yaml:"enrich"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LLMConfig describes the single model endpoint every report is generated with.
type LLMConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	Dialect        string `yaml:"dialect"` // "responses" | "chat"
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RPM            int    `yaml:"rpm"` // 0 disables limiting
	Burst          int    `yaml:"burst"`
}

func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type DBConfig struct {
	URL  string `yaml:"url"`  // postgres://... selects PostgreSQL
	Path string `yaml:"path"` // SQLite file otherwise
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	SupabaseURL     string `yaml:"supabase_url"`
	SupabaseAnonKey string `yaml:"supabase_anon_key"`
	AppEnv          string `yaml:"app_env"`
	DevBypassToken  string `yaml:"dev_bypass_token"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type EnrichConfig struct {
	Website        bool `yaml:"website"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
	CacheTTLHours  int  `yaml:"cache_ttl_hours"`
}

// Load reads the optional YAML file at path, applies environment overrides
// and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Server.Port, "PORT")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	setString(&c.LLM.APIKey, "AI_API_KEY")
	setString(&c.LLM.Endpoint, "AI_API_URL")
	setString(&c.LLM.Model, "AI_MODEL")
	setString(&c.LLM.Dialect, "AI_API_DIALECT")
	setInt(&c.LLM.TimeoutSeconds, "AI_TIMEOUT_SECONDS")
	setInt(&c.LLM.RPM, "AI_RPM")
	setInt(&c.LLM.Burst, "AI_BURST")

	setString(&c.DB.URL, "DATABASE_URL")
	setString(&c.DB.Path, "DATABASE_PATH")

	setString(&c.Auth.JWTSecret, "SUPABASE_JWT_SECRET")
	setString(&c.Auth.SupabaseURL, "SUPABASE_URL")
	setString(&c.Auth.SupabaseAnonKey, "SUPABASE_ANON_KEY")
	setString(&c.Auth.AppEnv, "APP_ENV")
	setString(&c.Auth.DevBypassToken, "DEV_BYPASS_TOKEN")

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.File, "LOG_FILE")

	if v := os.Getenv("ENRICH_WEBSITE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enrich.Website = b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = DefaultModelEndpoint
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.Dialect == "" {
		c.LLM.Dialect = "responses"
	}
	if c.LLM.RPM > 0 && c.LLM.Burst <= 0 {
		c.LLM.Burst = 1
	}
	if c.DB.URL == "" && c.DB.Path == "" {
		c.DB.Path = DefaultDatabasePath
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Enrich.TimeoutSeconds <= 0 {
		c.Enrich.TimeoutSeconds = 10
	}
	if c.Enrich.CacheTTLHours <= 0 {
		c.Enrich.CacheTTLHours = 24
	}
}

// IsDev reports whether the dev bypass token may be honoured.
func (c AuthConfig) IsDev() bool {
	return c.AppEnv == "dev" && c.DevBypassToken != ""
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
