package constants

import "time"

const (
	AppName        = "habithero"
	Version        = "v0.1.0"
	DefaultProfile = "default"

	DefaultDataDir    = "~/.config/habithero"
	DefaultConfigPath = "~/.config/habithero/config.toml"
	DefaultDBPath     = "~/.config/habithero/habithero.db"

	// DatabaseFromKeyring as the database setting reads the PostgreSQL
	// connection string from the OS keyring.
	DatabaseFromKeyring = "keyring"

	// KeyringUser is the keyring account holding the PostgreSQL connection string.
	KeyringUser = "database-connection"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Reward constants
	BaseCheckInXP         = 10
	StreakMilestoneBonus  = 5
	StreakMilestoneLength = 7
	XPPerLevel            = 100

	// Lock constants
	LockBackendLocal   = "local"
	LockBackendRedis   = "redis"
	DefaultLockTimeout = 5 * time.Second
	LockTTL            = 30 * time.Second
	LockRetryDelay     = 50 * time.Millisecond
	LockKeyPrefix      = "habithero:lock:profile:"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habithero-"
	BackupFileSuffix = ".db"
)
