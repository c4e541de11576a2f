package config

import "time"

// Store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Defaults
const (
	// empty log settings defer to the environment's logger defaults
	DefaultLogLevel       = ""
	DefaultLogFormat      = ""
	DefaultEnvironment    = "dev"
	DefaultStore          = StoreMemory
	DefaultDBMaxConns     = 10
	DefaultCacheTTL       = 2 * time.Second
	DefaultLockTTL        = 30 * time.Second
	DefaultDeadLetterPath = "deadletter.jsonl"
)

// Example values shipped in .env.example that must not reach production
const (
	exampleDBPassword = "change_this_secure_password"
)
