package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configはアプリ全体の設定
type Config struct {
	Port     string `mapstructure:"PORT"`      // サーバーポート（8080）
	GoEnv    string `mapstructure:"GO_ENV"`    // dev/prod
	LogLevel string `mapstructure:"LOG_LEVEL"` // debug/info/warn/error

	APIDomain string `mapstructure:"API_DOMAIN"` // メール内リンクの組み立てに使う
	FEURL     string `mapstructure:"FE_URL"`     // フロントURL（CORS・リダイレクト）

	// DATABASE_URL があれば最優先
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB       string `mapstructure:"POSTGRES_DB"`
	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     int    `mapstructure:"POSTGRES_PORT"`
	PostgresSSLMode  string `mapstructure:"POSTGRES_SSLMODE"`

	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	AccessTokenTTL time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`

	Cookie  CookieConfig  `mapstructure:",squash"`
	Mail    MailConfig    `mapstructure:",squash"`
	SMS     SMSConfig     `mapstructure:",squash"`
	Payment PaymentConfig `mapstructure:",squash"`
	Redis   RedisConfig   `mapstructure:",squash"`
	Mongo   MongoConfig   `mapstructure:",squash"`
	Kafka   KafkaConfig   `mapstructure:",squash"`
}

type CookieConfig struct {
	CookieSecure bool   `mapstructure:"COOKIE_SECURE"`
	CookieDomain string `mapstructure:"COOKIE_DOMAIN"`
}

// SMTP。Hostが空ならログ出力だけ
type MailConfig struct {
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
	AdminEmail   string `mapstructure:"ADMIN_EMAIL"` // お問い合わせの送り先
}

type SMSConfig struct {
	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `mapstructure:"TWILIO_FROM_NUMBER"`
}

type PaymentConfig struct {
	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY"`
	Currency        string `mapstructure:"PAYMENT_CURRENCY"`
}

// Addrが空なら rate limit は無効
type RedisConfig struct {
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	RateLimitMax    int           `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
}

// URIが空ならアクセスログはzerologのみ
type MongoConfig struct {
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
}

// Brokersが空ならイベントは送らない
type KafkaConfig struct {
	KafkaBrokers    []string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string   `mapstructure:"KAFKA_ORDER_TOPIC"`
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

// Loadは .env（あれば）と環境変数から設定を読む
func Load() (Config, error) {
	// .envは任意。本番は環境変数だけで動かす
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config unmarshal: %w", err)
	}

	// "a, b" 形式の env を許す
	cfg.Kafka.KafkaBrokers = splitList(strings.Join(cfg.Kafka.KafkaBrokers, ","))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GO_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("API_DOMAIN", "http://localhost:8080")
	v.SetDefault("FE_URL", "http://localhost:3000")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("POSTGRES_USER", "")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_DB", "")
	v.SetDefault("POSTGRES_HOST", "")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL", time.Hour)

	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("COOKIE_DOMAIN", "")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("MAIL_FROM", "no-reply@uptech.local")
	v.SetDefault("ADMIN_EMAIL", "")

	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_FROM_NUMBER", "")

	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("PAYMENT_CURRENCY", "usd")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_MAX", 20)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)

	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "uptech")

	v.SetDefault("KAFKA_BROKERS", []string{})
	v.SetDefault("KAFKA_ORDER_TOPIC", "order-events")
}

// 必須チェック
func (c Config) validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		if c.PostgresHost == "" {
			return errors.New("POSTGRES_HOST is required")
		}
		if c.PostgresUser == "" {
			return errors.New("POSTGRES_USER is required")
		}
		if c.PostgresDB == "" {
			return errors.New("POSTGRES_DB is required")
		}
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if c.IsProd() && !c.Cookie.CookieSecure {
		return errors.New("COOKIE_SECURE must be true in prod")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
