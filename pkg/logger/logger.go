package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int32

const (
	// DEBUG level for detailed troubleshooting information
	DEBUG LogLevel = iota
	// INFO level for general operational information
	INFO
	// WARN level for potentially harmful situations
	WARN
	// ERROR level for error events that might still allow the application to continue
	ERROR
	// FATAL level for severe error events that will lead the application to abort
	FATAL
)

var (
	currentLevel int32 = int32(INFO)

	levelNames = map[LogLevel]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}
	levelMap = map[string]LogLevel{
		"DEBUG": DEBUG,
		"INFO":  INFO,
		"WARN":  WARN,
		"ERROR": ERROR,
		"FATAL": FATAL,
	}
)

// Init configures logging output. The adapter logs to stdout only so process
// supervisors (s6, docker) collect everything from a single stream.
func Init(debug bool) {
	log.SetFlags(0)
	log.SetOutput(os.Stdout)

	if debug {
		SetLevel(DEBUG)
		return
	}

	if levelName := os.Getenv("LOG_LEVEL"); levelName != "" {
		level, exists := levelMap[strings.ToUpper(levelName)]
		if !exists {
			log.Printf("Invalid LOG_LEVEL: %s, defaulting to INFO", levelName)
			SetLevel(INFO)
			return
		}
		SetLevel(level)
		return
	}

	SetLevel(INFO)
}

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	atomic.StoreInt32(&currentLevel, int32(level))
}

// GetCurrentLevel returns the current logging level
func GetCurrentLevel() LogLevel {
	return LogLevel(atomic.LoadInt32(&currentLevel))
}

// formatMessage formats a log message with timestamp and level
func formatMessage(level LogLevel, format string, args ...interface{}) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	return fmt.Sprintf("%s [%s] %s", timestamp, levelNames[level], message)
}

// Debug logs a message at DEBUG level
func Debug(format string, args ...interface{}) {
	if GetCurrentLevel() <= DEBUG {
		log.Println(formatMessage(DEBUG, format, args...))
	}
}

// Info logs a message at INFO level
func Info(format string, args ...interface{}) {
	if GetCurrentLevel() <= INFO {
		log.Println(formatMessage(INFO, format, args...))
	}
}

// Warn logs a message at WARN level
func Warn(format string, args ...interface{}) {
	if GetCurrentLevel() <= WARN {
		log.Println(formatMessage(WARN, format, args...))
	}
}

// Error logs a message at ERROR level
func Error(format string, args ...interface{}) {
	if GetCurrentLevel() <= ERROR {
		log.Println(formatMessage(ERROR, format, args...))
	}
}

// Fatal logs a message at FATAL level and then exits the application
func Fatal(format string, args ...interface{}) {
	log.Fatalln(formatMessage(FATAL, format, args...))
}
