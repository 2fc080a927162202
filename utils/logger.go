/*
 * Copyright 2025 geekmidas.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the concrete logger type handed out by NewLogger.
type Logger = logrus.Logger

var (
	defaultConsoleLevel = logrus.InfoLevel
	loggerRegistryMu    sync.RWMutex
	loggerRegistry      = map[string]*logrus.Logger{}
	consoleLogFormat    = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
)

// EnvDefaultString returns the value of the environment variable or the
// fallback when unset or empty.
func EnvDefaultString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvDefaultBool returns the boolean value of the environment variable or
// the fallback when unset or unparsable.
func EnvDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

type prefixedFormatter struct {
	name      string
	formatter logrus.Formatter
}

func (f *prefixedFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Message = fmt.Sprintf("[%s] %s", f.name, e.Message)
	return f.formatter.Format(e)
}

func newFormatter(name string) logrus.Formatter {
	if consoleLogFormat == "json" {
		return &prefixedFormatter{name: name, formatter: &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
		}}
	}
	return &prefixedFormatter{name: name, formatter: &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	}}
}

func parseLevel(level string) (logrus.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel, true
	case "debug":
		return logrus.DebugLevel, true
	case "info":
		return logrus.InfoLevel, true
	case "warn", "warning":
		return logrus.WarnLevel, true
	case "error":
		return logrus.ErrorLevel, true
	default:
		return defaultConsoleLevel, false
	}
}

// NewLogger returns the named logger, creating and registering it on first
// use. The level can be preset through the LOG_LEVEL or LOG_LEVEL_<NAME>
// environment variables.
func NewLogger(name string) *Logger {
	loggerRegistryMu.RLock()
	if l, ok := loggerRegistry[name]; ok {
		loggerRegistryMu.RUnlock()
		return l
	}
	loggerRegistryMu.RUnlock()

	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if l, ok := loggerRegistry[name]; ok {
		return l
	}

	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(newFormatter(name))

	level := EnvDefaultString("LOG_LEVEL_"+strings.ToUpper(name), EnvDefaultString("LOG_LEVEL", ""))
	if lv, ok := parseLevel(level); ok {
		l.SetLevel(lv)
	} else {
		l.SetLevel(defaultConsoleLevel)
	}

	loggerRegistry[name] = l
	return l
}

// SetLoggerLevel updates the level of a registered logger. Unknown names
// are ignored.
func SetLoggerLevel(name, level string) {
	loggerRegistryMu.RLock()
	l, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return
	}
	if lv, ok := parseLevel(level); ok {
		l.SetLevel(lv)
	}
}
