package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`

	DatabaseURL      string        `env:"DATABASE_URL"`
	DBMaxConns       int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns       int           `env:"DB_MIN_CONNS" envDefault:"1"`
	DBConnectTimeout time.Duration `env:"DATABASE_CONNECTION_TIMEOUT" envDefault:"5s"`
	DBQueryTimeout   time.Duration `env:"DATABASE_QUERY_TIMEOUT" envDefault:"30s"`
	DBAuthTimeout    time.Duration `env:"DATABASE_AUTH_TIMEOUT" envDefault:"10s"`

	GeminiAPIKey    string   `env:"GEMINI_API_KEY"`
	GeminiModels    []string `env:"GEMINI_MODELS" envSeparator:","`
	OpenAIAPIKey    string   `env:"OPENAI_API_KEY"`
	OpenAIModel     string   `env:"OPENAI_MODEL"`
	AnthropicAPIKey string   `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string   `env:"ANTHROPIC_MODEL"`

	JWTSecret      string        `env:"JWT_SECRET,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTTL     time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`

	QuotaPerDay  int `env:"GENERATION_QUOTA_PER_DAY" envDefault:"10"`
	QuotaPerHour int `env:"GENERATION_QUOTA_PER_HOUR" envDefault:"2"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.applyAliases()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyAliases acepta los nombres historicos de algunas variables; el
// nombre nuevo siempre gana si ambos estan presentes.
func (c *Config) applyAliases() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("SUPABASE_URL")
	}
	if _, ok := os.LookupEnv("HTTP_PORT"); !ok {
		for _, alias := range []string{"PORT", "API_PORT"} {
			if v := os.Getenv(alias); v != "" {
				c.HTTPPort = v
				break
			}
		}
	}
	if _, ok := os.LookupEnv("APP_ENV"); !ok {
		if v := os.Getenv("ENVIRONMENT"); v != "" {
			c.Environment = v
		}
	}
	if len(c.CORSOrigins) == 0 {
		if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
			for _, origin := range strings.Split(v, ",") {
				if origin = strings.TrimSpace(origin); origin != "" {
					c.CORSOrigins = append(c.CORSOrigins, origin)
				}
			}
		}
	}
	if len(c.GeminiModels) == 0 {
		if v := os.Getenv("DEFAULT_GEMINI_MODEL"); v != "" {
			c.GeminiModels = []string{v}
		}
	}
}

// Validate revisa coherencia mas alla de lo que cubren los tags required.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL (or SUPABASE_URL) is required")
	}
	if c.DBMaxConns < c.DBMinConns {
		return fmt.Errorf("config: DB_MAX_CONNS (%d) < DB_MIN_CONNS (%d)", c.DBMaxConns, c.DBMinConns)
	}
	if c.GeminiAPIKey == "" && c.OpenAIAPIKey == "" && c.AnthropicAPIKey == "" {
		return errors.New("config: at least one LLM API key must be set")
	}
	if c.IsProduction() && len(c.CORSOrigins) == 0 {
		return errors.New("config: CORS_ORIGINS is required in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// AllowedOrigins devuelve los origenes CORS: los configurados, o localhost
// para desarrollo.
func (c *Config) AllowedOrigins() []string {
	if len(c.CORSOrigins) > 0 {
		return c.CORSOrigins
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}
