package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	filePath := os.Getenv(envKey + "_FILE")
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	R2        R2Config
	OIDC      OIDCConfig
	Songbook  SongbookConfig
	Gateway   GatewayConfig
}

type ServerConfig struct {
	Port     string
	LogLevel string
	// PublicURL is where clients reach this server; memory-backed exports
	// are served under PublicURL/files.
	PublicURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type RateLimitConfig struct {
	DiagramPerMin   int
	ExportPerHour   int
	SongbookPerHour int
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

// OIDCConfig points at the identity provider whose JWKS signs access tokens.
type OIDCConfig struct {
	Issuer   string
	ClientID string
}

type SongbookConfig struct {
	// Concurrency bounds the diagrams generated in parallel inside one job.
	Concurrency int
	// WorkerConcurrency is the number of songbook jobs processed at once.
	WorkerConcurrency int
}

type GatewayConfig struct {
	Enabled bool
}

var bindings = map[string]string{
	"server.port":                 "SERVER_PORT",
	"server.log_level":            "LOG_LEVEL",
	"server.public_url":           "PUBLIC_URL",
	"redis.addr":                  "REDIS_ADDR",
	"redis.password":              "REDIS_PASSWORD",
	"redis.db":                    "REDIS_DB",
	"jwt.secret":                  "JWT_SECRET",
	"ratelimit.diagram_per_min":   "RATELIMIT_DIAGRAM_PER_MIN",
	"ratelimit.export_per_hour":   "RATELIMIT_EXPORT_PER_HOUR",
	"ratelimit.songbook_per_hour": "RATELIMIT_SONGBOOK_PER_HOUR",
	"r2.account_id":               "R2_ACCOUNT_ID",
	"r2.access_key_id":            "R2_ACCESS_KEY_ID",
	"r2.secret_access_key":        "R2_SECRET_ACCESS_KEY",
	"r2.bucket_name":              "R2_BUCKET_NAME",
	"r2.public_url":               "R2_PUBLIC_URL",
	"oidc.issuer":                 "OIDC_ISSUER",
	"oidc.client_id":              "OIDC_CLIENT_ID",
	"songbook.concurrency":        "SONGBOOK_CONCURRENCY",
	"songbook.worker_concurrency": "SONGBOOK_WORKER_CONCURRENCY",
	"gateway.enabled":             "GATEWAY_ENABLED",
}

func Load() (*Config, error) {
	// Docker Swarm secrets must land in the environment before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")
	readSecret("OIDC_CLIENT_ID")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}

	v.SetDefault("server.port", "8000")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("ratelimit.diagram_per_min", 120)
	v.SetDefault("ratelimit.export_per_hour", 60)
	v.SetDefault("ratelimit.songbook_per_hour", 10)
	v.SetDefault("songbook.concurrency", 4)
	v.SetDefault("songbook.worker_concurrency", 5)
	v.SetDefault("gateway.enabled", false)

	// Optional
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      v.GetString("server.port"),
			LogLevel:  v.GetString("server.log_level"),
			PublicURL: strings.TrimRight(v.GetString("server.public_url"), "/"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
		},
		RateLimit: RateLimitConfig{
			DiagramPerMin:   v.GetInt("ratelimit.diagram_per_min"),
			ExportPerHour:   v.GetInt("ratelimit.export_per_hour"),
			SongbookPerHour: v.GetInt("ratelimit.songbook_per_hour"),
		},
		R2: R2Config{
			AccountID:       v.GetString("r2.account_id"),
			AccessKeyID:     v.GetString("r2.access_key_id"),
			SecretAccessKey: v.GetString("r2.secret_access_key"),
			BucketName:      v.GetString("r2.bucket_name"),
			PublicURL:       v.GetString("r2.public_url"),
		},
		OIDC: OIDCConfig{
			Issuer:   v.GetString("oidc.issuer"),
			ClientID: v.GetString("oidc.client_id"),
		},
		Songbook: SongbookConfig{
			Concurrency:       v.GetInt("songbook.concurrency"),
			WorkerConcurrency: v.GetInt("songbook.worker_concurrency"),
		},
		Gateway: GatewayConfig{
			Enabled: v.GetBool("gateway.enabled"),
		},
	}

	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost:" + cfg.Server.Port
	}
	if cfg.Songbook.Concurrency < 1 {
		cfg.Songbook.Concurrency = 1
	}
	if cfg.Songbook.WorkerConcurrency < 1 {
		cfg.Songbook.WorkerConcurrency = 1
	}

	return cfg, nil
}
