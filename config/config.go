package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	TrustedProxies []string
	AllowedOrigins []string

	// Хранилище: "postgres" или "memory" (для разработки и тестов)
	StoreBackend string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret        string
	JWTRefreshSecret string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Экономика майнинга
	TRXAddress          string          // адрес приёма платежей
	SignupBonus         decimal.Decimal // бонус на mine-баланс при регистрации
	ReferralReward      decimal.Decimal // награда рефереру за первую покупку приглашённого
	MinWithdrawMine     decimal.Decimal // минимальный вывод с mine-баланса
	MinWithdrawReferral decimal.Decimal // минимальный вывод с referral-баланса

	// Лимит попыток логина/регистрации с одного IP
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8001"),
		Env:            getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		TrustedProxies: []string{},
		AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		StoreBackend: getEnv("STORE_BACKEND", "postgres"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "trx_mining"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_ACCESS_SECRET", "your-secret-key-here"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "your-refresh-secret-here"),
		JWTAccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 7*24*time.Hour),
		JWTRefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 30*24*time.Hour),

		TRXAddress:          getEnv("TRX_RECEIVE_ADDRESS", "TFNHcYdhEq5sgjaWPdR1Gnxgzu3RUKncwu"),
		SignupBonus:         getEnvAsDecimal("SIGNUP_BONUS", "25"),
		ReferralReward:      getEnvAsDecimal("REFERRAL_REWARD", "50"),
		MinWithdrawMine:     getEnvAsDecimal("MIN_WITHDRAW_MINE", "25"),
		MinWithdrawReferral: getEnvAsDecimal("MIN_WITHDRAW_REFERRAL", "50"),

		AuthRateLimit:  getEnvAsInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: getEnvAsDuration("AUTH_RATE_WINDOW", time.Minute),
	}

	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		cfg.TrustedProxies = strings.Split(proxies, ",")
	}

	log.Printf("📋 Конфигурация загружена: порт=%s, режим=%s, хранилище=%s, БД=%s",
		cfg.Port, cfg.Env, cfg.StoreBackend, cfg.DBName)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strVal := getEnv(key, "")
	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strVal := getEnv(key, "")
	if val, err := time.ParseDuration(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	if val, err := decimal.NewFromString(getEnv(key, "")); err == nil {
		return val
	}
	return decimal.RequireFromString(defaultValue)
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue
	}
	parts := strings.Split(val, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
