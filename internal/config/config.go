package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Notify   NotifyConfig   `mapstructure:"notify" validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains the settings for validating bearer tokens.
// The engine only validates tokens; issuing them is an external concern.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// SMTPConfig contains the settings for the email delivery gateway.
// An empty host disables outbound email entirely; notifications then exist
// in-app only.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"      validate:"omitempty,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"      validate:"required_with=Host,omitempty,email"`
	FromName string `mapstructure:"from_name"`
}

// NotifyConfig tunes the notification dispatcher. The two On* switches keep
// deliberately ambiguous behaviors configurable: work logs are low-signal
// and unassignment can read as punitive, so both default to off.
type NotifyConfig struct {
	Workers           int    `mapstructure:"workers"             validate:"required,gte=1,lte=8"`
	EmailTimeoutSecs  int    `mapstructure:"email_timeout_secs"  validate:"required,gte=1,lte=120"`
	BaseURL           string `mapstructure:"base_url"`
	OnWorkLog         bool   `mapstructure:"on_work_log"`
	OnAssigneeRemoval bool   `mapstructure:"on_assignee_removal"`
}
