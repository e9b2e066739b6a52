// Package config handles configuration loading for the voting portal.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// minSecretLength is the minimum HS256 key size accepted for verification tokens.
const minSecretLength = 32

// Config holds all configuration for the voting portal.
type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	Port        string
	Environment string
	SiteURL     string
	LogLevel    string
	LogFile     string

	AllowedOrigins []string
	Cookie         CookieConfig
	SessionTTL     time.Duration

	UploadDir      string
	UploadMaxBytes int64

	SMTP SMTPConfig

	VerificationSecret string
	VerificationExpiry time.Duration

	// RegistrationTTL expires pending registration requests; zero keeps them forever.
	RegistrationTTL time.Duration
	PurgeInterval   time.Duration

	LoginRateLimit  int
	LoginRateWindow time.Duration

	Admin AdminSeed
}

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Name     string
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// SMTPConfig holds outgoing mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// Configured reports whether enough settings are present to send mail.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.From != ""
}

// AdminSeed describes an administrator account created on startup when missing.
type AdminSeed struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Enabled reports whether an admin account should be seeded.
func (a AdminSeed) Enabled() bool {
	return a.Username != "" && a.Password != "" && a.Email != ""
}

var requiredKeys = []string{
	"DB_HOST",
	"DB_PORT",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
	"REDIS_HOST",
	"REDIS_PORT",
	"VERIFICATION_SECRET",
}

// Load reads configuration from an optional .env file, an optional YAML file
// named by CONFIG_FILE, and environment variables. Environment wins.
func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:8080")
	v.SetDefault("COOKIE_NAME", "evoting_session")
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_PATH", "/")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("COOKIE_SAMESITE", "lax")
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "E-Voting Portal")
	v.SetDefault("VERIFICATION_EXPIRY", "48h")
	v.SetDefault("REGISTRATION_TTL", "0")
	v.SetDefault("PURGE_INTERVAL", "1h")
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", "15m")
	v.SetDefault("ADMIN_FULL_NAME", "Administrator")
}

func fromViper(v *viper.Viper) (*Config, error) {
	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		SiteURL:     strings.TrimSuffix(v.GetString("SITE_URL"), "/"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFile:     v.GetString("LOG_FILE"),

		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		Cookie: CookieConfig{
			Name:     v.GetString("COOKIE_NAME"),
			Domain:   v.GetString("COOKIE_DOMAIN"),
			Path:     v.GetString("COOKIE_PATH"),
			Secure:   v.GetBool("COOKIE_SECURE"),
			SameSite: parseSameSite(v.GetString("COOKIE_SAMESITE")),
		},
		SessionTTL: parseDuration(v.GetString("SESSION_TTL"), 2*time.Hour),

		UploadDir:      v.GetString("UPLOAD_DIR"),
		UploadMaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),

		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
			FromName: v.GetString("SMTP_FROM_NAME"),
		},

		VerificationSecret: v.GetString("VERIFICATION_SECRET"),
		VerificationExpiry: parseDuration(v.GetString("VERIFICATION_EXPIRY"), 48*time.Hour),

		RegistrationTTL: parseDuration(v.GetString("REGISTRATION_TTL"), 0),
		PurgeInterval:   parseDuration(v.GetString("PURGE_INTERVAL"), time.Hour),

		LoginRateLimit:  v.GetInt("LOGIN_RATE_LIMIT"),
		LoginRateWindow: parseDuration(v.GetString("LOGIN_RATE_WINDOW"), 15*time.Minute),

		Admin: AdminSeed{
			Username: v.GetString("ADMIN_USERNAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
			FullName: v.GetString("ADMIN_FULL_NAME"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func (c *Config) Validate() error {
	var errs []error
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverMySQL {
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if len(c.VerificationSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("VERIFICATION_SECRET must be at least %d bytes", minSecretLength))
	}
	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// DatabaseDSN returns the driver-specific connection string.
func (c *Config) DatabaseDSN() string {
	if c.DBDriver == DriverMySQL {
		mc := mysql.NewConfig()
		mc.User = c.DBUser
		mc.Passwd = c.DBPassword
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%s", c.DBHost, c.DBPort)
		mc.DBName = c.DBName
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN()
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "0" {
		return 0
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
