package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddress      string
	DatabaseURL      string
	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTIssuer        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	PasswordPepper   string
	RedisAddress     string
	RedisPassword    string
	RedisDB          int
	AllowedOrigins   []string
	CookieDomain     string
	Environment      string
}

var envKeys = []string{
	"HTTP_ADDRESS",
	"DATABASE_URL",
	"JWT_ACCESS_SECRET",
	"JWT_REFRESH_SECRET",
	"JWT_ISSUER",
	"ACCESS_TOKEN_TTL",
	"REFRESH_TOKEN_TTL",
	"PASSWORD_PEPPER",
	"REDIS_ADDRESS",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"ALLOWED_ORIGINS",
	"COOKIE_DOMAIN",
	"ENVIRONMENT",
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h") // 7 days
	v.SetDefault("ENVIRONMENT", "development")

	cfg := &Config{
		HTTPAddress:      v.GetString("HTTP_ADDRESS"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		JWTAccessSecret:  v.GetString("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		AccessTokenTTL:   v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:  v.GetDuration("REFRESH_TOKEN_TTL"),
		PasswordPepper:   v.GetString("PASSWORD_PEPPER"),
		RedisAddress:     v.GetString("REDIS_ADDRESS"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		AllowedOrigins:   v.GetStringSlice("ALLOWED_ORIGINS"),
		CookieDomain:     v.GetString("COOKIE_DOMAIN"),
		Environment:      v.GetString("ENVIRONMENT"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.JWTRefreshSecret == "" {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
