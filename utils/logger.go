/*
 * Copyright 2025 tomoncle.
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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const timestampFormat = "2006-01-02 15:04:05.000"

var consoleOut io.Writer = os.Stdout

var (
	registryMu    sync.RWMutex
	registry      = map[string]*logrus.Logger{}
	baseLevel     = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "debug"))
	consoleFormat = normalizeFormat(EnvDefaultString("CONSOLE_LOG_FORMAT", "text"))
)

var (
	levelColors = map[logrus.Level]*color.Color{
		logrus.TraceLevel: color.New(color.FgWhite),
		logrus.DebugLevel: color.New(color.FgBlue),
		logrus.InfoLevel:  color.New(color.FgGreen),
		logrus.WarnLevel:  color.New(color.FgYellow),
		logrus.ErrorLevel: color.New(color.FgRed),
		logrus.FatalLevel: color.New(color.FgRed, color.Bold),
		logrus.PanicLevel: color.New(color.FgRed, color.Bold),
	}
	nameColor  = color.New(color.FgCyan)
	faintColor = color.New(color.Faint)
)

func normalizeFormat(format string) string {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return "json"
	}
	return "text"
}

// ConfigureConsoleLogFormat selects "json" or "text" for loggers created
// afterwards.
func ConfigureConsoleLogFormat(format string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	consoleFormat = normalizeFormat(format)
}

// ConfigureOutput redirects every registered logger, and those created
// afterwards, to w.
func ConfigureOutput(w io.Writer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	consoleOut = w
	for _, lg := range registry {
		lg.SetOutput(w)
	}
}

func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

func RegisterLogger(name string, l *logrus.Logger) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = l
}

func lookup(name string) (*logrus.Logger, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	lg, ok := registry[name]
	return lg, ok
}

// SetLoggerLevel changes one named logger; it reports false when no logger
// is registered under name.
func SetLoggerLevel(name string, lvlStr string) bool {
	lg, ok := lookup(name)
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// ConfigureLogLevel sets the level of every registered logger and the default
// for new ones.
func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	registryMu.Lock()
	defer registryMu.Unlock()
	baseLevel = lvl
	for _, lg := range registry {
		lg.SetLevel(lvl)
	}
	logrus.SetLevel(lvl)
}

// NewLogger returns the logger registered under name, creating it with the
// current console format and level on first use.
func NewLogger(name string) *logrus.Logger {
	if lg, ok := lookup(name); ok {
		return lg
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if lg, ok := registry[name]; ok {
		return lg
	}
	l := logrus.New()
	l.SetOutput(consoleOut)
	l.SetLevel(baseLevel)
	l.SetReportCaller(true)
	if consoleFormat == "json" {
		l.SetFormatter(&JSONLogFormatter{LoggerName: name})
	} else {
		l.SetFormatter(&Log4jColorFormatter{LoggerName: name, NameWidth: 10, CallerWidth: 25})
	}
	registry[name] = l
	return l
}

// Log4jColorFormatter renders
//
//	2025-01-02 15:04:05.000   INFO 4242   - [main]   DATABASE   db/manager.go:88 : msg k=v
type Log4jColorFormatter struct {
	LoggerName      string
	TimestampFormat string
	NameWidth       int
	CallerWidth     int
}

func (f *Log4jColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	tsf := f.TimestampFormat
	if tsf == "" {
		tsf = timestampFormat
	}
	lvl := fmt.Sprintf("%7s", strings.ToUpper(entry.Level.String()))
	if c, ok := levelColors[entry.Level]; ok {
		lvl = c.Sprint(lvl)
	}
	name := f.LoggerName
	if f.NameWidth > 0 {
		name = fmt.Sprintf("%*s", f.NameWidth, limitRunes(name, f.NameWidth))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %-6d - [main] %s", entry.Time.Format(tsf), lvl, os.Getpid(), nameColor.Sprint(name))
	if entry.Caller != nil {
		caller := fmt.Sprintf("%s:%d", shortPath(entry.Caller.File), entry.Caller.Line)
		if f.CallerWidth > 0 {
			caller = fmt.Sprintf("%*s", f.CallerWidth, tail(caller, f.CallerWidth))
		}
		b.WriteString(" " + faintColor.Sprint(caller))
	}
	b.WriteString(" " + faintColor.Sprint(":") + " " + entry.Message)
	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// JSONLogFormatter writes one JSON object per entry; fields are merged at
// the top level unless they collide with the fixed keys.
type JSONLogFormatter struct {
	LoggerName      string
	TimestampFormat string
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	tsf := f.TimestampFormat
	if tsf == "" {
		tsf = timestampFormat
	}
	out := make(map[string]interface{}, len(entry.Data)+5)
	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		out[k] = v
	}
	out["time"] = entry.Time.Format(tsf)
	out["level"] = entry.Level.String()
	out["logger"] = f.LoggerName
	out["msg"] = entry.Message
	if entry.Caller != nil {
		out["caller"] = fmt.Sprintf("%s:%d", shortPath(entry.Caller.File), entry.Caller.Line)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func sortedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// shortPath keeps the last two path elements of a source file.
func shortPath(p string) string {
	p = filepath.ToSlash(p)
	parts := strings.Split(p, "/")
	if len(parts) <= 2 {
		return p
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

func limitRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

// tail shortens s to its last n runes, marking the cut with "..".
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n <= 2 {
		return s
	}
	return ".." + string(r[len(r)-n+2:])
}

// SetNoColor disables ANSI colors in the text formatter.
func SetNoColor(disabled bool) {
	color.NoColor = disabled
}

// Elapsed formats a duration in milliseconds with microsecond precision.
func Elapsed(d time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
}
