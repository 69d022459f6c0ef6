package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Jira
	JiraURL        string
	JiraEmail      string
	JiraAPIKey     string
	JiraProjectKey string
	JiraDiagnostic bool

	// Microsoft Graph
	MSTenantID     string
	MSClientID     string
	MSClientSecret string
	GraphUserEmail string

	// Calendar write service
	CalendarWebhookURL string

	// Cache / Retry
	UserCacheTTL    time.Duration
	RetryDelay      time.Duration
	UpstreamTimeout time.Duration

	// Headlines (optional RSS source)
	HeadlinesFeedURL string

	// Demo
	DemoMode bool

	// Rate Limit
	RateLimitGeneral int
	RateLimitCreate  int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// DATABASE_URLのみ必須。連携サービスの認証情報は未設定なら
// 該当機能が縮退するだけで、起動エラーにはしない。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("required environment variable is not set: DATABASE_URL")
	}

	// Jira
	cfg.JiraURL = os.Getenv("JIRA_URL")
	cfg.JiraEmail = os.Getenv("JIRA_EMAIL")
	cfg.JiraAPIKey = os.Getenv("JIRA_API_KEY")
	cfg.JiraProjectKey = os.Getenv("JIRA_PROJECT_KEY")
	cfg.JiraDiagnostic = getEnvBool("JIRA_DIAGNOSTIC", false)

	// Microsoft Graph
	cfg.MSTenantID = os.Getenv("TENANT_ID")
	cfg.MSClientID = os.Getenv("CLIENT_ID")
	cfg.MSClientSecret = os.Getenv("CLIENT_SECRET")
	cfg.GraphUserEmail = os.Getenv("GRAPH_USER_EMAIL")

	// Calendar write service
	cfg.CalendarWebhookURL = os.Getenv("CALENDAR_WEBHOOK_URL")

	// Optional fields with defaults
	cfg.UserCacheTTL = getEnvDuration("USER_CACHE_TTL", 300*time.Second)
	cfg.RetryDelay = getEnvDuration("RETRY_DELAY", 2*time.Second)
	cfg.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second)
	cfg.HeadlinesFeedURL = os.Getenv("HEADLINES_FEED_URL")
	cfg.DemoMode = getEnvBool("DEMO_MODE", false)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitCreate = getEnvInt("RATE_LIMIT_CREATE", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
