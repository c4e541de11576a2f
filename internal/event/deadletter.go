package event

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// DeadLetterSchemaVersion is the version of the dead-letter line format
const DeadLetterSchemaVersion = "1.0"

// DeadLetterEntry is one undeliverable event, written as a JSON line
type DeadLetterEntry struct {
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	Event         Event     `json:"event"`
	Attempts      int       `json:"attempts"`
	LastError     string    `json:"last_error,omitempty"`
}

// DeadLetterWriter appends failed events to a file
type DeadLetterWriter struct {
	file *os.File
	mu   sync.Mutex
}

// NewDeadLetterWriter opens (or creates) the dead-letter file at path
func NewDeadLetterWriter(path string) (*DeadLetterWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, DeadLetterFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to open dead letter file: %w", err)
	}
	return &DeadLetterWriter{file: f}, nil
}

// Write appends one entry
func (w *DeadLetterWriter) Write(event Event, attempts int, lastError error) error {
	entry := DeadLetterEntry{
		SchemaVersion: DeadLetterSchemaVersion,
		Timestamp:     time.Now().UTC(),
		Event:         event,
		Attempts:      attempts,
	}
	if lastError != nil {
		entry.LastError = lastError.Error()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode dead letter entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.file.Write(append(data, '\n'))
	return err
}

// Close closes the dead-letter file
func (w *DeadLetterWriter) Close() error {
	return w.file.Close()
}
