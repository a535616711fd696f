// Package logger provides a logging facade with interchangeable logrus and
// zap backends. Console output and a size-rotated log file can be enabled
// independently.
package logger

import (
	"github.com/pkg/errors"
)

// Fields is the type of structured log fields.
type Fields map[string]interface{}

// Log levels accepted by Configuration.
const (
	Debug = "debug"
	Info  = "info"
	Warn  = "warn"
	Error = "error"
	Fatal = "fatal"
)

// Backend implementations.
const (
	InstanceZapLogger int = iota
	InstanceLogrusLogger
)

var errInvalidLoggerInstance = errors.New("invalid logger instance")

// Logger is the logging contract shared by all backends.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
	WithFields(keyValues Fields) Logger
}

// Configuration stores the logger settings.
type Configuration struct {
	EnableConsole     bool   `mapstructure:"console"`
	ConsoleJSONFormat bool   `mapstructure:"console_json"`
	ConsoleLevel      string `mapstructure:"console_level"`
	EnableFile        bool   `mapstructure:"file"`
	FileJSONFormat    bool   `mapstructure:"file_json"`
	FileLevel         string `mapstructure:"file_level"`
	FileLocation      string `mapstructure:"file_location"`
	// FileMaxSizeMB is the size at which the log file is rotated.
	FileMaxSizeMB int `mapstructure:"file_max_size"`
	// FileMaxBackups is the number of rotated files kept.
	FileMaxBackups int `mapstructure:"file_max_backups"`
}

var log Logger

func init() {
	// console logger at info level until NewLogger is called
	log, _ = newLogrusLogger(Configuration{
		EnableConsole: true,
		ConsoleLevel:  Info,
	})
}

// NewLogger replaces the package logger with one built from `config`
// using the backend `loggerInstance`.
func NewLogger(config Configuration, loggerInstance int) error {
	var (
		l   Logger
		err error
	)

	switch loggerInstance {
	case InstanceZapLogger:
		l, err = newZapLogger(config)
	case InstanceLogrusLogger:
		l, err = newLogrusLogger(config)
	default:
		return errInvalidLoggerInstance
	}

	if err != nil {
		return err
	}
	log = l
	return nil
}

// Get returns the current package logger.
func Get() Logger {
	return log
}

func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}

func Panicf(format string, args ...interface{}) {
	log.Panicf(format, args...)
}

// WithFields returns a logger carrying `keyValues`.
func WithFields(keyValues Fields) Logger {
	return log.WithFields(keyValues)
}

func fileMaxSize(config Configuration) int {
	if config.FileMaxSizeMB > 0 {
		return config.FileMaxSizeMB
	}
	return 100
}
