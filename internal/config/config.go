package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"5000"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	RunMigrations   bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	JWTSecret       string        `env:"JWT_SECRET,required"`
	JWTTTL          time.Duration `env:"JWT_TTL" envDefault:"24h"`
	LLMAPIKey       string        `env:"LLM_API_KEY"`
	LLMBaseURL      string        `env:"LLM_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	LLMModel        string        `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"0s"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	LoginRateMax    int           `env:"LOGIN_RATE_LIMIT_MAX" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_LIMIT_WINDOW" envDefault:"10m"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	ChatRequireAuth bool          `env:"CHAT_REQUIRE_AUTH" envDefault:"true"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"0"`
	OTelEndpoint    string        `env:"OTEL_EXPORTER_ENDPOINT"`
}

// ClientConfig configura el cliente de terminal.
type ClientConfig struct {
	APIURL    string `env:"HEALTHMATE_API_URL" envDefault:"http://localhost:5000"`
	TokenFile string `env:"HEALTHMATE_TOKEN_FILE"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClientConfig carga la configuración del cliente desde variables de entorno.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
