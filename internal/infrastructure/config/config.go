package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"giftkeeper-server/internal/domain/ratelimit"
)

const (
	StoreDriverMySQL  = "mysql"
	StoreDriverMemory = "memory"

	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config アプリケーション全体の設定
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	OpenTelemetry OpenTelemetryConfig
	RateLimit     RateLimitConfig
	Export        ExportConfig
	Store         StoreConfig
	Log           LogConfig
	Timezone      string
	Location      *time.Location
	Environment   string
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port            int
	GRPCPort        int // 0の場合はPort+1
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig Redis設定
type RedisConfig struct {
	URL      string // redis://形式。設定されている場合はHost/Portより優先
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig JWT設定
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// OpenTelemetryConfig OpenTelemetry設定
type OpenTelemetryConfig struct {
	Enabled         bool
	ServiceName     string
	ServiceVersion  string
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceExporter   string // "otlp", "stdout"
	MetricsExporter string // "otlp", "stdout"
}

// RateLimitConfig レート制限設定
type RateLimitConfig struct {
	Backend       string // "memory", "redis"
	MaxKeys       int
	SweepInterval time.Duration
	KeyPrefix     string
	PolicyFile    string
	Policies      map[ratelimit.Operation]ratelimit.Policy
}

// ExportConfig CSV出力設定
type ExportConfig struct {
	FilenamePrefix string
}

// StoreConfig 保存先設定
type StoreConfig struct {
	Driver string // "mysql", "memory"
}

// LogConfig ログ設定
type LogConfig struct {
	Level string // 空の場合は環境から決める
}

// Load 設定を読み込む
func Load() (*Config, error) {
	// .envファイルを読み込む（存在しない場合は無視）
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Environment: env,
		Timezone:    getEnv("APP_TIMEZONE", ""),
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			GRPCPort:        getEnvAsInt("GRPC_PORT", 0),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 3306),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "giftkeeper"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Expiration: getEnvAsDuration("JWT_EXPIRATION", 24*time.Hour),
			Issuer:     getEnv("JWT_ISSUER", "giftkeeper-server"),
		},
		OpenTelemetry: OpenTelemetryConfig{
			Enabled:         getEnvAsBool("OTEL_ENABLED", true),
			ServiceName:     getEnv("OTEL_SERVICE_NAME", "giftkeeper-server"),
			ServiceVersion:  getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
			OTLPInsecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			TraceExporter:   getEnv("OTEL_TRACES_EXPORTER", "otlp"),
			MetricsExporter: getEnv("OTEL_METRICS_EXPORTER", "otlp"),
		},
		RateLimit: RateLimitConfig{
			Backend:       strings.ToLower(getEnv("RATE_LIMIT_BACKEND", RateLimitBackendMemory)),
			MaxKeys:       getEnvAsInt("RATE_LIMIT_MAX_KEYS", 10000),
			SweepInterval: getEnvAsDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
			KeyPrefix:     getEnv("RATE_LIMIT_KEY_PREFIX", "giftkeeper:ratelimit:"),
			PolicyFile:    getEnv("RATE_LIMIT_POLICY_FILE", ""),
		},
		Export: ExportConfig{
			FilenamePrefix: getEnv("EXPORT_FILENAME_PREFIX", "giftkeeper_export"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverMySQL)),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "")),
		},
	}

	// レート制限ポリシー: 既定値 → YAMLファイル → 環境変数
	policies := ratelimit.DefaultPolicies()
	if cfg.RateLimit.PolicyFile != "" {
		filePolicies, err := LoadPolicyFile(cfg.RateLimit.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rate limit policy file: %w", err)
		}
		for op, p := range filePolicies {
			policies[op] = p
		}
	}
	applyPolicyEnv(policies)
	cfg.RateLimit.Policies = policies

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	cfg.Location = loc

	// 必須設定の検証
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate 設定の検証
func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverMySQL:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER: %s", c.Store.Driver)
	}

	switch c.RateLimit.Backend {
	case RateLimitBackendMemory, RateLimitBackendRedis:
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND: %s", c.RateLimit.Backend)
	}

	for op, p := range c.RateLimit.Policies {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid rate limit policy for %s: %w", op, err)
		}
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// IsDevelopment 開発環境かどうか
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// EffectiveGRPCPort gRPCサーバーのポートを返す
func (c *ServerConfig) EffectiveGRPCPort() int {
	if c.GRPCPort != 0 {
		return c.GRPCPort
	}
	return c.Port + 1
}

// DSN データベース接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address Redis接続アドレスを返す（URLが設定されていればURL）
func (c *RedisConfig) Address() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// applyPolicyEnv RATE_LIMIT_<OP>_MAX / RATE_LIMIT_<OP>_WINDOW で上書きする
func applyPolicyEnv(policies map[ratelimit.Operation]ratelimit.Policy) {
	for _, op := range ratelimit.Operations {
		name := strings.ToUpper(op.String())
		p := policies[op]
		p.MaxRequests = getEnvAsInt("RATE_LIMIT_"+name+"_MAX", p.MaxRequests)
		p.Window = getEnvAsDuration("RATE_LIMIT_"+name+"_WINDOW", p.Window)
		policies[op] = p
	}
}

// getEnv 環境変数を取得（デフォルト値付き）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool 環境変数を真偽値として取得
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration 環境変数を時間として取得
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
