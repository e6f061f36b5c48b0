// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	appWidth      = 30 // width for application name
	strategyWidth = 12 // width for strategy name
	modeWidth     = 24 // width for replacement mode
)

// 🎯 ReplaceOperation represents one committed (or failed) replacement for logging
type ReplaceOperation struct {
	App      string // Host application name
	Mode     string // Replacement mode
	Strategy string // Strategy that committed, empty on failure
	Chars    int    // Length of the committed text
	Failed   bool   // Whether every strategy was exhausted
	Undone   bool   // Whether this entry records an undo
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatReplaceOperation formats a replacement for display
func (l *Logger) formatReplaceOperation(op ReplaceOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.Failed:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.Undone:
		symbol = '↩'
		symbolColor = color.FgYellow
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	strategy := op.Strategy
	if strategy == "" {
		strategy = "-"
	}

	return fmt.Sprintf("  %s %s %s %s %s",
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", appWidth, op.App),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", modeWidth, op.Mode)),
		color.New(color.FgBlue).Sprint(fmt.Sprintf("%-*s", strategyWidth, strategy)),
		color.New(color.Faint).Sprint(fmt.Sprintf("%d chars", op.Chars)))
}

// 📝 LogReplaceOperation logs a replacement operation
func (l *Logger) LogReplaceOperation(ctx context.Context, op ReplaceOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatReplaceOperation(op))

	l.zlog.Info().
		Str("app", op.App).
		Str("mode", op.Mode).
		Str("strategy", op.Strategy).
		Int("chars", op.Chars).
		Bool("failed", op.Failed).
		Bool("undone", op.Undone).
		Msg("replace operation")
}

// 📝 LogSelection logs a detected selection
func (l *Logger) LogSelection(ctx context.Context, app string, chars int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(app),
		color.New(color.Faint).Sprintf("• %d chars selected", chars))

	l.zlog.Info().Str("app", app).Int("chars", chars).Msg("selection detected")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	retextText := color.New(color.Bold, color.FgCyan).Sprint("retext")
	fmt.Fprintf(l.console, "\n%s %s\n\n", retextText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
