// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Notifications NotificationsConfig     `mapstructure:"notifications"`
	Banner        BannerConfig            `mapstructure:"banner"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// --- Notification Engine Config ---

// NotificationsConfig holds settings for the dispatch engine: transports,
// phone normalization and fallback toggle values.
type NotificationsConfig struct {
	// CountryCallingCode is prepended by the phone normalizer to national
	// numbers (no leading "+").
	CountryCallingCode string `mapstructure:"country_calling_code"`
	DefaultParentName  string `mapstructure:"default_parent_name"`
	DeliveryLogIndex   string `mapstructure:"delivery_log_index"`

	// DefaultToggles are applied when the settings store is unreachable.
	DefaultToggles struct {
		ParentEmails bool `mapstructure:"parent_emails"`
		SMS          bool `mapstructure:"sms"`
		WhatsApp     bool `mapstructure:"whatsapp"`
	} `mapstructure:"default_toggles"`

	Email struct {
		FromEmail string `mapstructure:"from_email"`
		AWSRegion string `mapstructure:"aws_region"`
	} `mapstructure:"email"`

	SMS struct {
		SenderID  string `mapstructure:"sender_id"`
		AWSRegion string `mapstructure:"aws_region"`
	} `mapstructure:"sms"`

	WhatsApp struct {
		AccountSID string `mapstructure:"account_sid"`
		AuthToken  string `mapstructure:"auth_token"`
		FromNumber string `mapstructure:"from_number"`
		BaseURL    string `mapstructure:"base_url"`
	} `mapstructure:"whatsapp"`
}

// BannerConfig holds settings for the approval banner sub-pipeline.
type BannerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	TemplateImageURL string `mapstructure:"template_image_url"`
	Timeout          int    `mapstructure:"timeout"` // milliseconds

	Vision struct {
		BaseURL       string `mapstructure:"base_url"`
		Model         string `mapstructure:"model"`
		MaxTokens     int    `mapstructure:"max_tokens"`
		SigningSecret string `mapstructure:"signing_secret"`
	} `mapstructure:"vision"`

	Storage struct {
		Bucket        string `mapstructure:"bucket"`
		AWSRegion     string `mapstructure:"aws_region"`
		PublicBaseURL string `mapstructure:"public_base_url"`
	} `mapstructure:"storage"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
