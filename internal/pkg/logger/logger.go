package logger

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Logger is the structured logging interface the rest of the application
// depends on. Handlers, services and repositories receive it by injection.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

type logEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// jsonLogger writes one JSON object per line using the stdlib log package.
type jsonLogger struct {
	level int
}

var levels = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
	"fatal": 4,
}

// NewLogger creates a Logger filtering below the given level
// ("debug", "info", "warn", "error").
func NewLogger(level string) Logger {
	log.SetFlags(0)
	lv, ok := levels[level]
	if !ok {
		lv = levels["info"]
	}
	return &jsonLogger{level: lv}
}

func (l *jsonLogger) logf(level, msg string, fields map[string]interface{}, err error) {
	if levels[level] < l.level {
		return
	}

	entry := logEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     level,
		Message:   msg,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	jsonBytes, _ := json.Marshal(entry)
	log.Println(string(jsonBytes))

	if level == "fatal" {
		os.Exit(1)
	}
}

func (l *jsonLogger) Debug(msg string, fields map[string]interface{}) { l.logf("debug", msg, fields, nil) }
func (l *jsonLogger) Info(msg string, fields map[string]interface{})  { l.logf("info", msg, fields, nil) }
func (l *jsonLogger) Warn(msg string, fields map[string]interface{})  { l.logf("warn", msg, fields, nil) }
func (l *jsonLogger) Error(msg string, err error)                     { l.logf("error", msg, nil, err) }
func (l *jsonLogger) Fatal(msg string, err error)                     { l.logf("fatal", msg, nil, err) }
