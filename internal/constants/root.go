package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

// GoalPeriod names an XP target horizon
type GoalPeriod string

const (
	AppName             = "habithero"
	DefaultKeyringUser  = "database-connection"
	SessionKeyringUser  = "session"
	OpenAIKeyringUser   = "openai-api-key"
	DefaultConfigName   = "config.yaml"
	DefaultDatabaseName = "habithero.db"
	EnvPrefix           = "HABITHERO"
	Version             = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Habit defaults
	DefaultXPReward     = 5
	DefaultCalendarDays = 30
	MaxCalendarDays     = 366
	GuestUserPrefix     = "guest-"

	// Suggestion constants
	SuggestionCount       = 3
	SuggestionIcon        = "🌟"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultOpenAITemp     = 0.6
	SuggestionCallTimeout = 60 * time.Second

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habithero-"
	BackupFileSuffix = ".db"

	// Store DSN schemes
	PostgresScheme   = "postgres://"
	PostgresqlScheme = "postgresql://"
	BadgerScheme     = "badger://"

	// Goal periods
	GoalWeekly  GoalPeriod = "weekly"
	GoalMonthly GoalPeriod = "monthly"
	GoalYearly  GoalPeriod = "yearly"
)

// Session States
const (
	StateHabits SessionState = iota
	StateAddHabit
	StateConfirmDelete
)

// GoalPeriods lists the XP target horizons in display order
var GoalPeriods = []GoalPeriod{GoalWeekly, GoalMonthly, GoalYearly}
