package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	DocumentStore DocumentStoreConfig `mapstructure:"document_store"`
	Broker        BrokerConfig        `mapstructure:"broker"`
	MobileMoney   MobileMoneyConfig   `mapstructure:"mobile_money"`
	SMS           SMSConfig           `mapstructure:"sms"`
	Email         EmailConfig         `mapstructure:"email"`
	Reconciler    ReconcilerConfig    `mapstructure:"reconciler"`
	Fees          FeesConfig          `mapstructure:"fees"`
	Reimbursement ReimbursementConfig `mapstructure:"reimbursement"`
	Notification  NotificationConfig  `mapstructure:"notification"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	OpenAPIPath       string        `mapstructure:"openapi_path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

// DocumentStoreConfig points at the MongoDB database holding in-app admin
// notifications. An empty URI disables the inbox.
type DocumentStoreConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type BrokerConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type MobileMoneyConfig struct {
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	APIKey      string        `mapstructure:"api_key"`
	SiteID      string        `mapstructure:"site_id"`
	AccountType string        `mapstructure:"account_type"`
	Currency    string        `mapstructure:"currency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SMSConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	ServiceID  string        `mapstructure:"service_id"`
	Secret     string        `mapstructure:"secret"`
	SenderName string        `mapstructure:"sender_name"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type EmailConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	From    string        `mapstructure:"from"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ReconcilerConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	Interval      time.Duration `mapstructure:"interval"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

type FeesConfig struct {
	ServiceFeeRate string `mapstructure:"service_fee_rate"`
}

type ReimbursementConfig struct {
	DueAfterDays    int    `mapstructure:"due_after_days"`
	OverdueSchedule string `mapstructure:"overdue_schedule"`
}

type NotificationConfig struct {
	CountryCode   string `mapstructure:"country_code"`
	CurrencyLabel string `mapstructure:"currency_label"`
	AdminRoles    string `mapstructure:"admin_roles"`
	PlatformName  string `mapstructure:"platform_name"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ApplyDefaults fills values the business rules rely on when the config file
// leaves them out.
func (c *Config) ApplyDefaults() {
	if c.Reconciler.MaxAttempts <= 0 {
		c.Reconciler.MaxAttempts = 10
	}
	if c.Reconciler.Interval <= 0 {
		c.Reconciler.Interval = 2 * time.Second
	}
	if c.Reconciler.SweepSchedule == "" {
		c.Reconciler.SweepSchedule = "@every 1m"
	}
	if c.Fees.ServiceFeeRate == "" {
		c.Fees.ServiceFeeRate = "0.065"
	}
	if c.Reimbursement.DueAfterDays <= 0 {
		c.Reimbursement.DueAfterDays = 30
	}
	if c.Reimbursement.OverdueSchedule == "" {
		c.Reimbursement.OverdueSchedule = "@daily"
	}
	if c.Notification.CountryCode == "" {
		c.Notification.CountryCode = "224"
	}
	if c.Notification.CurrencyLabel == "" {
		c.Notification.CurrencyLabel = "GNF"
	}
	if c.Notification.AdminRoles == "" {
		c.Notification.AdminRoles = "admin,rh,responsable"
	}
	if c.Notification.PlatformName == "" {
		c.Notification.PlatformName = "Avance Salaire"
	}
	if c.MobileMoney.Currency == "" {
		c.MobileMoney.Currency = "GNF"
	}
	if c.MobileMoney.AccountType == "" {
		c.MobileMoney.AccountType = "lp-om-gn"
	}
	if c.MobileMoney.Timeout <= 0 {
		c.MobileMoney.Timeout = 30 * time.Second
	}
	if c.SMS.Timeout <= 0 {
		c.SMS.Timeout = 15 * time.Second
	}
	if c.Email.Timeout <= 0 {
		c.Email.Timeout = 15 * time.Second
	}
	if c.DocumentStore.Collection == "" {
		c.DocumentStore.Collection = "admin_notifications"
	}
	if c.DocumentStore.Timeout <= 0 {
		c.DocumentStore.Timeout = 5 * time.Second
	}
	if c.Broker.Exchange == "" {
		c.Broker.Exchange = "salary_advance.events"
	}
	if c.Server.OpenAPIPath == "" {
		c.Server.OpenAPIPath = "./api/openapi.yml"
	}
}

// AdminRoleList splits the comma separated notification.admin_roles value.
func (c *NotificationConfig) AdminRoleList() []string {
	var roles []string
	for _, role := range strings.Split(c.AdminRoles, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

func (c *FeesConfig) Rate() (decimal.Decimal, error) {
	return decimal.NewFromString(c.ServiceFeeRate)
}

// ----------------- ENVIRONMENT -----------------

// LoadConfigFromEnv builds the config from plain environment variables, used
// by container deployments where no config.yml is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("HTTP_BASE_URL", ""),
			AllowedOrigins:    getEnv("HTTP_ALLOWED_ORIGINS", "*"),
			OpenAPIPath:       getEnv("HTTP_OPENAPI_PATH", "./api/openapi.yml"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DB_SOURCE", ""),
		},
		DocumentStore: DocumentStoreConfig{
			URI:        getEnv("MONGO_URI", ""),
			Database:   getEnv("MONGO_DATABASE", "salary_advance"),
			Collection: getEnv("MONGO_COLLECTION", "admin_notifications"),
		},
		Broker: BrokerConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "salary_advance.events"),
		},
		MobileMoney: MobileMoneyConfig{
			BaseURL:     getEnv("MOBILE_MONEY_BASE_URL", ""),
			APIKey:      getEnv("MOBILE_MONEY_API_KEY", ""),
			SiteID:      getEnv("MOBILE_MONEY_SITE_ID", ""),
			AccountType: getEnv("MOBILE_MONEY_ACCOUNT_TYPE", "lp-om-gn"),
			Currency:    getEnv("MOBILE_MONEY_CURRENCY", "GNF"),
			Timeout:     getEnvAsDuration("MOBILE_MONEY_TIMEOUT", 30*time.Second),
		},
		SMS: SMSConfig{
			BaseURL:    getEnv("SMS_BASE_URL", ""),
			ServiceID:  getEnv("SMS_SERVICE_ID", ""),
			Secret:     getEnv("SMS_SECRET", ""),
			SenderName: getEnv("SMS_SENDER_NAME", ""),
			Timeout:    getEnvAsDuration("SMS_TIMEOUT", 15*time.Second),
		},
		Email: EmailConfig{
			BaseURL: getEnv("EMAIL_BASE_URL", ""),
			APIKey:  getEnv("EMAIL_API_KEY", ""),
			From:    getEnv("EMAIL_FROM", ""),
			Timeout: getEnvAsDuration("EMAIL_TIMEOUT", 15*time.Second),
		},
		Reconciler: ReconcilerConfig{
			MaxAttempts:   getEnvAsInt("RECONCILER_MAX_ATTEMPTS", 10),
			Interval:      getEnvAsDuration("RECONCILER_INTERVAL", 2*time.Second),
			SweepSchedule: getEnv("RECONCILER_SWEEP_SCHEDULE", "@every 1m"),
		},
		Fees: FeesConfig{
			ServiceFeeRate: getEnv("SERVICE_FEE_RATE", "0.065"),
		},
		Reimbursement: ReimbursementConfig{
			DueAfterDays:    getEnvAsInt("REIMBURSEMENT_DUE_AFTER_DAYS", 30),
			OverdueSchedule: getEnv("REIMBURSEMENT_OVERDUE_SCHEDULE", "@daily"),
		},
		Notification: NotificationConfig{
			CountryCode:   getEnv("NOTIFICATION_COUNTRY_CODE", "224"),
			CurrencyLabel: getEnv("NOTIFICATION_CURRENCY_LABEL", "GNF"),
			AdminRoles:    getEnv("NOTIFICATION_ADMIN_ROLES", "admin,rh,responsable"),
			PlatformName:  getEnv("NOTIFICATION_PLATFORM_NAME", "Avance Salaire"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.MobileMoney.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("mobile money config: %v", err))
	}

	if err := c.Reconciler.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("reconciler config: %v", err))
	}

	if err := c.Fees.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("fees config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *MobileMoneyConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	return nil
}

func (c *ReconcilerConfig) Validate() error {
	if c.MaxAttempts < 1 {
		return errors.New("max_attempts must be at least 1")
	}
	if c.Interval < 0 {
		return errors.New("interval cannot be negative")
	}
	return nil
}

func (c *FeesConfig) Validate() error {
	rate, err := c.Rate()
	if err != nil {
		return fmt.Errorf("invalid service_fee_rate: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.New("service_fee_rate must be in [0, 1)")
	}
	return nil
}
