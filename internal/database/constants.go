package database

import "time"

// Connection pool defaults
const (
	DefaultMinConnections  int32 = 2
	DefaultMaxConnIdle           = 5 * time.Minute
	DefaultMaxConnLifetime       = time.Hour
)

// Error Messages - Database Operations
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
)

// Log Messages
const (
	LogMsgSuccessfullyConnectedToDatabase = "Successfully connected to the database"
)
