// Package log writes diagnostics to a dated file under the logs directory.
//
// Nothing is written unless logs.write is enabled, so library code can log freely.
// Components that own an identity, such as a player, log through an Entry that stamps
// every line with their fields.
package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/where"
)

var enabled bool

// Setup opens today's log file and applies the configured format and level.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	if exists := lo.Must(filesystem.API().Exists(path)); !exists {
		lo.Must(filesystem.API().Create(path))
	}

	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)

	// One entry per line so the file can be tailed next to a running player.
	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	return nil
}

// Entry is a logger that adds its fields to every line.
type Entry struct {
	fields logrus.Fields
}

// With returns an entry carrying one field.
func With(key string, value any) *Entry {
	return &Entry{fields: logrus.Fields{key: value}}
}

// With returns a copy of e with one more field.
func (e *Entry) With(key string, value any) *Entry {
	fields := make(logrus.Fields, len(e.fields)+1)
	for k, v := range e.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Entry{fields: fields}
}

func (e *Entry) entry() *logrus.Entry {
	return logrus.WithFields(e.fields)
}

func (e *Entry) Tracef(format string, args ...any) {
	if enabled {
		e.entry().Tracef(format, args...)
	}
}

func (e *Entry) Debugf(format string, args ...any) {
	if enabled {
		e.entry().Debugf(format, args...)
	}
}

func (e *Entry) Infof(format string, args ...any) {
	if enabled {
		e.entry().Infof(format, args...)
	}
}

func (e *Entry) Warnf(format string, args ...any) {
	if enabled {
		e.entry().Warnf(format, args...)
	}
}

func (e *Entry) Errorf(format string, args ...any) {
	if enabled {
		e.entry().Errorf(format, args...)
	}
}

func Error(args ...any) {
	if enabled {
		logrus.Error(args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled {
		logrus.Errorf(format, args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}

func Info(args ...any) {
	if enabled {
		logrus.Info(args...)
	}
}

func Infof(format string, args ...any) {
	if enabled {
		logrus.Infof(format, args...)
	}
}

func Debugf(format string, args ...any) {
	if enabled {
		logrus.Debugf(format, args...)
	}
}

func Tracef(format string, args ...any) {
	if enabled {
		logrus.Tracef(format, args...)
	}
}
