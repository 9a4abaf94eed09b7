package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/dunning/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Email      EmailConfig      `mapstructure:"email"`
	Reminder   ReminderConfig   `mapstructure:"reminder" validate:"required"`
	Quota      QuotaConfig      `mapstructure:"quota" validate:"required"`
	Temporal   TemporalConfig   `mapstructure:"temporal"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Events     EventsConfig     `mapstructure:"events"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromAddress  string `mapstructure:"from_address" validate:"omitempty,email"`
	ReplyTo      string `mapstructure:"reply_to" validate:"omitempty,email"`
}

// ReminderConfig controls the dunning engine
type ReminderConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// SendInterval is the minimum delay between two sends in batch mode
	SendInterval time.Duration `mapstructure:"send_interval"`
	// SendTimeout bounds a single call to the notification sender
	SendTimeout       time.Duration      `mapstructure:"send_timeout" validate:"gt=0"`
	OutcomeMaxRetries uint64             `mapstructure:"outcome_max_retries"`
	Thresholds        ReminderThresholds `mapstructure:"thresholds"`
}

// ReminderThresholds holds the days overdue at which each kind becomes due
type ReminderThresholds struct {
	Friendly int `mapstructure:"friendly" validate:"gte=0"`
	Polite   int `mapstructure:"polite" validate:"gtefield=Friendly"`
	Firm     int `mapstructure:"firm" validate:"gtefield=Polite"`
	Urgent   int `mapstructure:"urgent" validate:"gtefield=Firm"`
}

// For returns the threshold for kind
func (t ReminderThresholds) For(kind types.ReminderKind) int {
	switch kind {
	case types.ReminderKindFriendly:
		return t.Friendly
	case types.ReminderKindPolite:
		return t.Polite
	case types.ReminderKindFirm:
		return t.Firm
	default:
		return t.Urgent
	}
}

type QuotaConfig struct {
	// Period is the usage window for max_per_period, one of daily or monthly
	Period string                       `mapstructure:"period" validate:"oneof=daily monthly"`
	Plans  map[types.PlanTier]PlanQuota `mapstructure:"plans"`
}

// PlanQuota limits reminders for one plan tier. Zero means unlimited.
type PlanQuota struct {
	MaxPerInvoice int `mapstructure:"max_per_invoice" validate:"gte=0"`
	MaxPerPeriod  int `mapstructure:"max_per_period" validate:"gte=0"`
}

type TemporalConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Address      string `mapstructure:"address"`
	Namespace    string `mapstructure:"namespace"`
	TaskQueue    string `mapstructure:"task_queue"`
	CronSchedule string `mapstructure:"cron_schedule"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// EventsConfig controls the audit event stream and its consumer router
type EventsConfig struct {
	Topic           string        `mapstructure:"topic"`
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dunning")

	v.SetEnvPrefix("DUNNING")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("redis.key_prefix", "dunning")
	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.send_interval", "600ms")
	v.SetDefault("reminder.send_timeout", "10s")
	v.SetDefault("reminder.outcome_max_retries", 3)
	v.SetDefault("reminder.thresholds.friendly", 1)
	v.SetDefault("reminder.thresholds.polite", 7)
	v.SetDefault("reminder.thresholds.firm", 14)
	v.SetDefault("reminder.thresholds.urgent", 30)
	v.SetDefault("quota.period", "monthly")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "dunning")
	v.SetDefault("temporal.cron_schedule", "0 6 * * *")
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("events.topic", "dunning.audit")
	v.SetDefault("events.max_retries", 3)
	v.SetDefault("events.initial_interval", "1s")
	v.SetDefault("events.max_interval", "10s")
	v.SetDefault("events.multiplier", 2.0)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts, tests or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Reminder: ReminderConfig{
			Enabled:           true,
			SendInterval:      600 * time.Millisecond,
			SendTimeout:       10 * time.Second,
			OutcomeMaxRetries: 3,
			Thresholds: ReminderThresholds{
				Friendly: 1,
				Polite:   7,
				Firm:     14,
				Urgent:   30,
			},
		},
		Quota: QuotaConfig{
			Period: "monthly",
			Plans: map[types.PlanTier]PlanQuota{
				types.PlanTierFree:     {MaxPerInvoice: 2, MaxPerPeriod: 20},
				types.PlanTierStarter:  {MaxPerInvoice: 4, MaxPerPeriod: 500},
				types.PlanTierBusiness: {},
			},
		},
		Cache: CacheConfig{Enabled: true, TTL: 5 * time.Minute},
		Events: EventsConfig{
			Topic:           "dunning.audit",
			MaxRetries:      3,
			InitialInterval: time.Second,
			MaxInterval:     10 * time.Second,
			Multiplier:      2,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
