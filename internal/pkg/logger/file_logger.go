package logger

import (
	"log"
	"os"
	"path/filepath"
)

// NewFileLogger returns a plain stdlib logger appending to logPath.
// The engine trace is kept out of the structured application log on
// purpose; it records prompts, retrieval hits and timings verbatim.
// Falls back to stdout when the file cannot be opened.
func NewFileLogger(logPath string) *log.Logger {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[ENGINE] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
