package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger provides leveled, timestamped logging for every pipeline stage.
type Logger struct {
	out   *log.Logger
	err   *log.Logger
	debug bool
	now   func() time.Time
}

// NewLogger creates a Logger writing info/warn/debug to stdout and errors to stderr.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr)
}

// NewLoggerTo creates a Logger on the given writers. Debug output is off
// until SetDebug(true) is called.
func NewLoggerTo(out, errOut io.Writer) *Logger {
	return &Logger{
		out: log.New(out, "", 0),
		err: log.New(errOut, "", 0),
		now: time.Now,
	}
}

// Discard returns a Logger that drops everything. Used by tests.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, io.Discard)
}

// SetDebug toggles Debug output.
func (l *Logger) SetDebug(on bool) { l.debug = on }

func (l *Logger) line(level, format string, args []any) string {
	return fmt.Sprintf("[%s] %s %s", l.now().Format("2006-01-02 15:04:05"), level, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any) {
	l.out.Println(l.line("\033[32mINFO\033[0m ", format, args))
}

func (l *Logger) Warn(format string, args ...any) {
	l.out.Println(l.line("\033[33mWARN\033[0m ", format, args))
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Println(l.line("\033[31mERROR\033[0m", format, args))
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.debug {
		return
	}
	l.out.Println(l.line("\033[36mDEBUG\033[0m", format, args))
}
