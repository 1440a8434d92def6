package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Keys      KeysConfig
	Upstream  UpstreamConfig
	RateLimit RateLimitConfig
	Demo      DemoConfig
	Admin     AdminConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	PublicBaseURL  string        `mapstructure:"publicBaseUrl"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	ShutdownPeriod time.Duration `mapstructure:"shutdownPeriod"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwtSecret"`
	Issuer    string `mapstructure:"issuer"`
}

// KeysConfig carries the server-side pepper mixed into stored key hashes.
type KeysConfig struct {
	Pepper string `mapstructure:"pepper"`
}

type UpstreamConfig struct {
	BaseURL        string        `mapstructure:"baseUrl"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"maxRetries"`
	RetryBackoff   time.Duration `mapstructure:"retryBackoff"`
	SnapshotMaxAge time.Duration `mapstructure:"snapshotMaxAge"`
}

type RateLimitConfig struct {
	// Requests within a window are counted against the plan's rpm_limit.
	// The window is fixed at 60 seconds.
	CounterTTL time.Duration `mapstructure:"counterTtl"`
}

type DemoConfig struct {
	// Enabled exposes the unauthenticated /purchase endpoint. No billing
	// happens on that path; it exists for demo deployments only.
	Enabled bool `mapstructure:"enabled"`
}

type AdminConfig struct {
	Token string `mapstructure:"token"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig(configPath string) (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables and config file")
	}

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.publicBaseUrl", "http://localhost:8080/api")
	viper.SetDefault("server.readTimeout", 5*time.Second)
	viper.SetDefault("server.writeTimeout", 30*time.Second)
	viper.SetDefault("server.idleTimeout", 120*time.Second)
	viper.SetDefault("server.shutdownPeriod", 15*time.Second)

	viper.SetDefault("database.maxOpenConns", 25)
	viper.SetDefault("database.maxIdleConns", 25)
	viper.SetDefault("database.connMaxLifetime", 5*time.Minute)

	viper.SetDefault("redis.db", "0")

	viper.SetDefault("auth.issuer", "")

	viper.SetDefault("upstream.timeout", 10*time.Second)
	viper.SetDefault("upstream.maxRetries", 3)
	viper.SetDefault("upstream.retryBackoff", 250*time.Millisecond)
	viper.SetDefault("upstream.snapshotMaxAge", 2*time.Minute)

	viper.SetDefault("ratelimit.counterTtl", 2*time.Minute)

	viper.SetDefault("demo.enabled", false)

	viper.SetDefault("log.level", "info")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AllowEmptyEnv(true)

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			log.Printf("Warning: could not read config file: %s. Error: %v\n", configPath, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
