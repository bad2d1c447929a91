package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string

	// Read cache for catalog lookups. When LowCache is off the redis
	// settings are ignored entirely.
	LowCache      bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      int // seconds

	// Verification mail.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	DomainName   string // base URL embedded in the verify link

	ActivationHours int // how long an activation key stays valid
}

func Load() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTL, _ := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "60"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	actHours, _ := strconv.Atoi(getEnv("ACTIVATION_HOURS", "48"))
	if actHours <= 0 {
		actHours = 48
	}

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		DBDSN:           getEnv("DB_DSN", "geekshop.db"),
		LogFile:         getEnv("LOG_FILE", "./geekshop.log"),
		LowCache:        getEnv("LOW_CACHE", "") == "1" || getEnv("LOW_CACHE", "") == "true",
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         redisDB,
		CacheTTL:        cacheTTL,
		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        smtpPort,
		SMTPUser:        getEnv("SMTP_USER", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		MailFrom:        getEnv("MAIL_FROM", "shop@geekshop.local"),
		DomainName:      getEnv("DOMAIN_NAME", "http://localhost:8080"),
		ActivationHours: actHours,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOW_CACHE=%v DOMAIN_NAME=%s", cfg.Port, cfg.DBDSN, cfg.LowCache, cfg.DomainName)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
