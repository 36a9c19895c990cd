// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek bir yerde toplar, böylece
// her yerde ayrı ayrı os.Getenv() çağırmak yerine tek bir Config nesnesi taşırız.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Development fallback secret'ları — HERKESÇE BİLİNEN değerler.
// Secret'lar env'den gelmezse bunlar kullanılır ve startup'ta uyarı basılır.
// Production'da ASLA bu değerlerle çalışılmamalı.
const (
	InsecureAccessSecret  = "access_secret_key_should_be_set_in_env"
	InsecureRefreshSecret = "refresh_secret_key_should_be_set_in_env"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — Single Responsibility: her struct tek bir concern'ü temsil eder.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Email     EmailConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/kimlik.db)
}

// JWTConfig, JWT token ayarları.
//
// İki AYRI secret var — key separation:
// Access secret sızarsa refresh token üretilemez, tersi de geçerli.
// Tek secret kullanılsaydı bir sızıntı her iki token türünü de düşürürdü.
type JWTConfig struct {
	AccessSecret       string // Access token imzalama anahtarı — GİZLİ TUTULMALI
	RefreshSecret      string // Refresh token imzalama anahtarı — GİZLİ TUTULMALI
	AccessTokenExpiry  int    // Saniye cinsinden (varsayılan: 1800 = 30dk)
	RefreshTokenExpiry int    // Saniye cinsinden (varsayılan: 604800 = 7 gün)
}

// RateLimitConfig, login brute-force koruması ayarları.
type RateLimitConfig struct {
	LoginMaxAttempts  int // Pencere başına izin verilen deneme (varsayılan: 5)
	LoginWindowMinute int // Pencere süresi, dakika (varsayılan: 60)
}

// EmailConfig, şifre sıfırlama emaili için Resend ayarları.
// Üçü birden doluysa email özelliği aktif olur, aksi halde kapalıdır.
type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	AppURL       string
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// .env dosyasını yükle — dosya yoksa hata vermez, sessizce devam eder.
	// Production'da bu dosya olmaz, gerçek env variable'lar kullanılır.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	accessExpiry, err := strconv.Atoi(getEnv("JWT_ACCESS_EXPIRY_SECONDS", "1800"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRY_SECONDS: %w", err)
	}

	refreshExpiry, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRY_SECONDS", "604800"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRY_SECONDS: %w", err)
	}

	maxAttempts, err := strconv.Atoi(getEnv("LOGIN_RATE_LIMIT_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT_ATTEMPTS: %w", err)
	}

	windowMinutes, err := strconv.Atoi(getEnv("LOGIN_RATE_LIMIT_WINDOW_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT_WINDOW_MINUTES: %w", err)
	}

	// Secret'lar env'den gelmeli. Gelmezse insecure placeholder'a düşülür —
	// SADECE local development için kabul edilebilir, startup'ta bağıra bağıra uyarılır.
	accessSecret := getEnv("ACCESS_TOKEN_SECRET", InsecureAccessSecret)
	refreshSecret := getEnv("REFRESH_TOKEN_SECRET", InsecureRefreshSecret)
	if accessSecret == InsecureAccessSecret {
		log.Println("[config] WARNING: ACCESS_TOKEN_SECRET is not set — using the insecure development default. DO NOT run this in production.")
	}
	if refreshSecret == InsecureRefreshSecret {
		log.Println("[config] WARNING: REFRESH_TOKEN_SECRET is not set — using the insecure development default. DO NOT run this in production.")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/kimlik.db"),
		},
		JWT: JWTConfig{
			AccessSecret:       accessSecret,
			RefreshSecret:      refreshSecret,
			AccessTokenExpiry:  accessExpiry,
			RefreshTokenExpiry: refreshExpiry,
		},
		RateLimit: RateLimitConfig{
			LoginMaxAttempts:  maxAttempts,
			LoginWindowMinute: windowMinutes,
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("EMAIL_FROM", ""),
			AppURL:       getEnv("APP_URL", ""),
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
