package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Timesheet     TimesheetConfig     `mapstructure:"timesheet"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	AccessTokenSecret    string        `mapstructure:"access_token_secret"`
	RefreshTokenSecret   string        `mapstructure:"refresh_token_secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	BCryptCost           int           `mapstructure:"bcrypt_cost"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TimesheetConfig holds the policy values used to seed the settings row on
// first run. After seeding, the database copy is authoritative and is
// editable by administrators at runtime.
type TimesheetConfig struct {
	MaxDailyHours        float64 `mapstructure:"max_daily_hours"`
	MaxWeeklyHours       float64 `mapstructure:"max_weekly_hours"`
	MinLunchDuration     int     `mapstructure:"min_lunch_duration"`
	MaxLunchDuration     int     `mapstructure:"max_lunch_duration"`
	OvertimeThreshold    float64 `mapstructure:"overtime_threshold"`
	DoubleTimeThreshold  float64 `mapstructure:"double_time_threshold"`
	MinStartTime         string  `mapstructure:"min_start_time"`
	MaxEndTime           string  `mapstructure:"max_end_time"`
	HolidayHoursDefault  float64 `mapstructure:"holiday_hours_default"`
	HolidayPayMultiplier float64 `mapstructure:"holiday_pay_multiplier"`
	AllowFutureTimeEntry bool    `mapstructure:"allow_future_time_entry"`
	AllowPastTimeEntry   bool    `mapstructure:"allow_past_time_entry"`
	PastTimeEntryLimit   int     `mapstructure:"past_time_entry_limit"`
	PayPeriodLength      int     `mapstructure:"pay_period_length"`
}

// ----------------- ENV FALLBACK -----------------

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

// LoadConfigFromEnv builds a Config from environment variables for container
// deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_SERVER_PORT", 8080),
			BaseURL:           getEnv("HTTP_SERVER_BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("HTTP_SERVER_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          getEnv("DATABASE_SOURCE", ""),
		},
		Security: SecurityConfig{
			AccessTokenSecret:    getEnv("SECURITY_ACCESS_TOKEN_SECRET", ""),
			RefreshTokenSecret:   getEnv("SECURITY_REFRESH_TOKEN_SECRET", ""),
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
			BCryptCost:           getEnvAsInt("SECURITY_BCRYPT_COST", 10),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOGGING_LEVEL", "info"),
				Format: getEnv("LOGGING_FORMAT", "json"),
			},
		},
		Timesheet: DefaultTimesheetConfig(),
	}
}

// DefaultTimesheetConfig mirrors a conventional 8-hour, Monday-to-Friday
// company policy.
func DefaultTimesheetConfig() TimesheetConfig {
	return TimesheetConfig{
		MaxDailyHours:        12,
		MaxWeeklyHours:       60,
		MinLunchDuration:     30,
		MaxLunchDuration:     120,
		OvertimeThreshold:    40,
		DoubleTimeThreshold:  50,
		MinStartTime:         "05:00",
		MaxEndTime:           "23:00",
		HolidayHoursDefault:  8,
		HolidayPayMultiplier: 1.5,
		AllowFutureTimeEntry: false,
		AllowPastTimeEntry:   true,
		PastTimeEntryLimit:   30,
		PayPeriodLength:      14,
	}
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

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Timesheet.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("timesheet config: %v", err))
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
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.AccessTokenSecret) < 32 {
		return errors.New("access token secret must be at least 32 characters")
	}
	if len(c.RefreshTokenSecret) < 32 {
		return errors.New("refresh token secret must be at least 32 characters")
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return errors.New("bcrypt cost must be between 10 and 15")
	}
	return nil
}

func (c *TimesheetConfig) Validate() error {
	if c.MaxDailyHours <= 0 || c.MaxDailyHours > 24 {
		return errors.New("max_daily_hours must be between 0 and 24")
	}
	if c.MaxWeeklyHours <= 0 || c.MaxWeeklyHours > 7*24 {
		return errors.New("max_weekly_hours must be between 0 and 168")
	}
	if c.OvertimeThreshold > c.DoubleTimeThreshold {
		return errors.New("overtime_threshold cannot exceed double_time_threshold")
	}
	if c.PayPeriodLength != 14 {
		return errors.New("pay_period_length must be 14 days")
	}
	if c.PastTimeEntryLimit < 0 {
		return errors.New("past_time_entry_limit cannot be negative")
	}
	return nil
}
