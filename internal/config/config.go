package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/logger"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Session   SessionConfig
	MinIO     MinIOConfig
	OIDC      OIDCConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Avatar    AvatarConfig
	Policy    PolicyConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string `validate:"required"`
	Host         string
	Environment  string `validate:"oneof=development test production"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// ProviderTimeout bounds every store/auth/object-store call made while serving a request.
	ProviderTimeout time.Duration `validate:"gt=0"`
}

type MongoDBConfig struct {
	// URI may be empty outside production; the service then runs on in-memory stores.
	URI      string
	Database string `validate:"required"`
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return r.Host + ":" + port
}

type JWTConfig struct {
	Secret          string `validate:"required,min=32"`
	Issuer          string
	AccessTokenTTL  time.Duration `validate:"gt=0"`
	RefreshTokenTTL time.Duration `validate:"gt=0"`
}

// SessionConfig controls the cookies that carry the access and refresh tokens.
type SessionConfig struct {
	AccessCookie  string `validate:"required"`
	RefreshCookie string `validate:"required"`
	CookieDomain  string
	CookiePath    string
	CookieSecure  bool
	// RotationGrace keeps a rotated refresh token resolving to its successor; zero disables it.
	RotationGrace time.Duration `validate:"gte=0,lte=1m"`
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

type OIDCConfig struct {
	Issuer   string
	ClientID string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// CORSConfig lists browser origins allowed to call the API with cookies.
// Empty means any origin, without credentials.
type CORSConfig struct {
	AllowedOrigins []string
}

type AvatarConfig struct {
	UploadURLTTL time.Duration `validate:"gt=0"`
}

// PolicyConfig optionally points at a role policy CSV overriding the built-in catalogue.
type PolicyConfig struct {
	File string
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("PROVIDER_TIMEOUT", 5)
	v.SetDefault("MONGODB_DATABASE", "src_portal")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_ISSUER", "src-portal")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	v.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)
	v.SetDefault("SESSION_ACCESS_COOKIE", "src_access_token")
	v.SetDefault("SESSION_REFRESH_COOKIE", "src_refresh_token")
	v.SetDefault("SESSION_COOKIE_PATH", "/")
	v.SetDefault("SESSION_COOKIE_SECURE", true)
	v.SetDefault("SESSION_ROTATION_GRACE_SECONDS", 10)
	v.SetDefault("MINIO_BUCKET", "avatars")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("AVATAR_UPLOAD_URL_TTL", 300)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			Environment:     strings.ToLower(v.GetString("SERVER_ENVIRONMENT")),
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ProviderTimeout: time.Duration(v.GetInt("PROVIDER_TIMEOUT")) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			Issuer:          v.GetString("JWT_ISSUER"),
			AccessTokenTTL:  time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(v.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
		},
		Session: SessionConfig{
			AccessCookie:  v.GetString("SESSION_ACCESS_COOKIE"),
			RefreshCookie: v.GetString("SESSION_REFRESH_COOKIE"),
			CookieDomain:  v.GetString("SESSION_COOKIE_DOMAIN"),
			CookiePath:    v.GetString("SESSION_COOKIE_PATH"),
			CookieSecure:  v.GetBool("SESSION_COOKIE_SECURE"),
			RotationGrace: time.Duration(v.GetInt("SESSION_ROTATION_GRACE_SECONDS")) * time.Second,
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			Region:    v.GetString("MINIO_REGION"),
		},
		OIDC: OIDCConfig{
			Issuer:   v.GetString("OIDC_ISSUER"),
			ClientID: v.GetString("OIDC_CLIENT_ID"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Avatar: AvatarConfig{
			UploadURLTTL: time.Duration(v.GetInt("AVATAR_UPLOAD_URL_TTL")) * time.Second,
		},
		Policy: PolicyConfig{
			File: v.GetString("POLICY_FILE"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Server.Environment == "production" && cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("invalid configuration: MONGODB_URI is required in production")
	}
	if !cfg.Session.CookieSecure {
		logger.Warnf("session cookies are not marked Secure (environment=%s)", cfg.Server.Environment)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks struct constraints and reports the first failing field by its env-style name.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid configuration: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
