package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ore/internal/core"
	"ore/internal/log"
	"ore/internal/sheets"
)

// Data backends
const (
	BackendXLSX   = "xlsx"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
	BackendMemory = "memory"
)

var validBackends = []string{BackendXLSX, BackendSQLite, BackendSheets, BackendMemory}

type Config struct {
	// Storage selection
	DataBackend string
	ReportPath  string

	// Hours calculation
	StandardDay time.Duration

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleOAuthClientFile    string
	GoogleOAuthTokenFile     string
	GoogleOAuthClientJSON    string
	GoogleOAuthTokenJSON     string

	// Worker
	SyncBatchSize int
	SyncInterval  time.Duration

	LogLevel string

	// Colour overrides, applied on top of sheets.DefaultStyle.
	StyleOverrides sheets.Style
}

func Load() *Config {
	cfg := &Config{
		DataBackend: getEnv("DATA_BACKEND", BackendXLSX),
		ReportPath:  getEnv("REPORT_PATH", "work_hours_history.xlsx"),
		StandardDay: getEnvDuration("STANDARD_DAY", 8*time.Hour),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ore.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ore"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_months"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleOAuthClientFile:    getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenFile:     getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		GoogleOAuthClientJSON:    getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthTokenJSON:     getEnv("GOOGLE_OAUTH_TOKEN_JSON", ""),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		StyleOverrides: sheets.Style{
			Weekday:      getEnv("STYLE_WEEKDAY", ""),
			Weekend:      getEnv("STYLE_WEEKEND", ""),
			MonthlyTotal: getEnv("STYLE_MONTHLY_TOTAL", ""),
			Overtime:     getEnv("STYLE_OVERTIME", ""),
			Header:       getEnv("STYLE_HEADER", ""),
		},
	}

	return cfg
}

// Style returns the report palette with the configured overrides applied.
func (c *Config) Style() sheets.Style {
	return sheets.DefaultStyle().WithOverrides(c.StyleOverrides)
}

// StandardMinutes returns the standard working day in whole minutes.
func (c *Config) StandardMinutes() core.Minutes {
	return core.Minutes(c.StandardDay / time.Minute)
}

// Validate validates the configuration of the interactive binary and returns
// every problem found.
func (c *Config) Validate() error {
	var errors []string

	if !contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.StandardDay <= 0 || c.StandardDay > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid standard day %v: must be between 1m and 24h", c.StandardDay))
	} else if c.StandardDay%time.Minute != 0 {
		errors = append(errors, fmt.Sprintf("invalid standard day %v: must be a whole number of minutes", c.StandardDay))
	}

	switch c.DataBackend {
	case BackendXLSX:
		if strings.TrimSpace(c.ReportPath) == "" {
			errors = append(errors, "report path cannot be empty when using xlsx backend")
		} else if ext := strings.ToLower(filepath.Ext(c.ReportPath)); ext != ".xlsx" {
			errors = append(errors, fmt.Sprintf("invalid report path '%s': must end in .xlsx", c.ReportPath))
		}
	case BackendSQLite:
		errors = append(errors, c.validateSQLite()...)
	case BackendSheets:
		errors = append(errors, c.validateGoogle()...)
	}

	errors = append(errors, c.validateAMQP()...)

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if err := c.Style().Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid style: %v", err))
	}

	return combine(errors)
}

// ValidateWorker validates what the sheets sync worker needs: the SQLite
// database it reads from, the queue it consumes and the spreadsheet it writes.
func (c *Config) ValidateWorker() error {
	var errors []string

	errors = append(errors, c.validateSQLite()...)
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the sync worker")
	}
	errors = append(errors, c.validateAMQP()...)
	errors = append(errors, c.validateGoogle()...)

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if err := c.Style().Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid style: %v", err))
	}

	return combine(errors)
}

func (c *Config) validateSQLite() []string {
	if c.SQLiteDBPath == "" {
		return []string{"SQLite database path cannot be empty when using sqlite backend"}
	}
	// Check if directory exists or can be created
	dir := filepath.Dir(c.SQLiteDBPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return []string{fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err)}
			}
		}
	}
	return nil
}

func (c *Config) validateAMQP() []string {
	if c.AMQPURL == "" {
		return nil
	}
	var errors []string
	if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
	} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
	}
	if c.AMQPExchange == "" {
		errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
	}
	if c.AMQPQueue == "" {
		errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
	}
	return errors
}

// validateGoogle requires a spreadsheet and either a service account or an
// OAuth client plus token.
func (c *Config) validateGoogle() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
	}

	hasSA := c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != ""
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	if hasSA {
		return errors
	}

	hasClientFile := c.GoogleOAuthClientFile != ""
	hasClientJSON := c.GoogleOAuthClientJSON != ""
	if !hasClientFile && !hasClientJSON {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON/FILE or GOOGLE_OAUTH_CLIENT_FILE/JSON must be provided for sheets backend")
	}
	hasTokenFile := c.GoogleOAuthTokenFile != ""
	hasTokenJSON := c.GoogleOAuthTokenJSON != ""
	if !hasTokenFile && !hasTokenJSON {
		errors = append(errors, "either GOOGLE_OAUTH_TOKEN_FILE or GOOGLE_OAUTH_TOKEN_JSON must be provided for sheets backend")
	}
	if hasClientFile {
		if _, err := os.Stat(c.GoogleOAuthClientFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google OAuth client file does not exist: %s", c.GoogleOAuthClientFile))
		}
	}
	if hasTokenFile {
		if _, err := os.Stat(c.GoogleOAuthTokenFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google OAuth token file does not exist: %s", c.GoogleOAuthTokenFile))
		}
	}
	return errors
}

func combine(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
