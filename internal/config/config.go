package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	DBPath string

	CRMImportURL string
	CRMAPIKey    string
	HTTPTimeout  time.Duration
	Workers      int
	MaxAttempts  int // 0 = retry until success
	CRMRateLimit float64

	SMTPServer      string
	SMTPPort        int
	EmailAddress    string
	EmailPassword   string
	EmailRecipients []string
	ReportDelay     time.Duration

	FuzzyEngine string
}

func Load() Config {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	timeout, _ := strconv.Atoi(getenv("HTTP_TIMEOUT_SECONDS", "30"))
	workers, _ := strconv.Atoi(getenv("WORKERS", "4"))
	attempts, _ := strconv.Atoi(getenv("MAX_ATTEMPTS", "0"))
	rateLimit, _ := strconv.ParseFloat(getenv("CRM_RATE_LIMIT", "5"), 64)
	smtpPort, _ := strconv.Atoi(getenv("SMTP_PORT", "587"))
	reportDelay, _ := strconv.Atoi(getenv("REPORT_DELAY_MINUTES", "10"))

	var recipients []string
	for _, r := range strings.Split(getenv("EMAIL_RECIPIENTS", ""), ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}

	return Config{
		Host:            getenv("HOST", "127.0.0.1"),
		Port:            port,
		AllowOrigins:    origins,
		LogLevel:        getenv("LOG_LEVEL", "info"),
		MaxUploadMB:     mb,
		LogFile:         getenv("LOG_FILE", "logs/restate-server.log"),
		DBPath:          getenv("DB_PATH", "orders.db"),
		CRMImportURL:    getenv("CRM_IMPORT_URL", ""),
		CRMAPIKey:       getenv("CRM_API_KEY", ""),
		HTTPTimeout:     time.Duration(timeout) * time.Second,
		Workers:         workers,
		MaxAttempts:     attempts,
		CRMRateLimit:    rateLimit,
		SMTPServer:      getenv("SMTP_SERVER", ""),
		SMTPPort:        smtpPort,
		EmailAddress:    getenv("EMAIL_ADDRESS", ""),
		EmailPassword:   getenv("EMAIL_PASSWORD", ""),
		EmailRecipients: recipients,
		ReportDelay:     time.Duration(reportDelay) * time.Minute,
		FuzzyEngine:     getenv("FUZZY_ENGINE", "levenshtein"),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
