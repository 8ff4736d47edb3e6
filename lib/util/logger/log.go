package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log  *Logger
	once sync.Once
)

// Fields is re-exported so callers do not need a direct logrus import.
type Fields = logrus.Fields

type Logger struct {
	*logrus.Logger
}

type Entry struct {
	Logger
	entry *logrus.Entry
}

func (l *Logger) Warn(args ...interface{}) {
	warnFatal(args...)
	l.Logger.Warn(args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	warnFatalf(format, args...)
	l.Logger.Warnf(format, args...)
}

func (l *Logger) Error(args ...interface{}) {
	warnFatal(args...)
	l.Logger.Error(args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	warnFatalf(format, args...)
	l.Logger.Errorf(format, args...)
}

func (l *Logger) WithField(key string, value interface{}) *Entry {
	entry := l.Logger.WithField(key, value)
	return &Entry{*l, entry}
}

func (l *Logger) WithFields(fields Fields) *Entry {
	entry := l.Logger.WithFields(fields)
	return &Entry{*l, entry}
}

func (l *Logger) WithError(err error) *Entry {
	entry := l.Logger.WithError(err)
	return &Entry{*l, entry}
}

func warnFatal(args ...interface{}) {
	if failFast != "" {
		log.Fatal(args...)
	}
}

func warnFatalf(format string, args ...interface{}) {
	if failFast != "" {
		log.Fatalf(format, args...)
	}
}

var failFast string

func InitializeLSRPCLogger() {
	once.Do(func() {
		log = &Logger{}
		log.Logger = logrus.New()
		// We do not want to log by default
		log.SetOutput(io.Discard)
		log.SetLevel(logrus.PanicLevel)
		// Check if DEBUG_LSRPC is set
		if logLevel := os.Getenv("DEBUG_LSRPC"); logLevel != "" {
			failFast = os.Getenv("WARNFAIL_LSRPC")
			if failFast != "" {
				logLevel = "debug"
			}
			log.SetOutput(os.Stdout)
			switch strings.ToLower(logLevel) {
			case "debug":
				log.SetLevel(logrus.DebugLevel)
			case "warn":
				log.SetLevel(logrus.WarnLevel)
			case "error":
				log.SetLevel(logrus.ErrorLevel)
			default:
				log.SetLevel(logrus.DebugLevel)
			}
			log.WithField("level", log.GetLevel()).Debug("Logging enabled.")
		}
	})
}

// SetLevelString adjusts the log level at runtime. The log_level values
// "dev" and "prod" are accepted as aliases of "debug" and "warn".
func SetLevelString(level string) {
	l := GetLSRPCLogger()
	switch strings.ToLower(level) {
	case "debug", "dev":
		l.SetOutput(os.Stdout)
		l.SetLevel(logrus.DebugLevel)
	case "warn", "prod":
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.ErrorLevel)
	}
}

// GetLSRPCLogger returns the initialized Logger
func GetLSRPCLogger() *Logger {
	if log == nil {
		InitializeLSRPCLogger()
	}
	return log
}

func init() {
	InitializeLSRPCLogger()
}
