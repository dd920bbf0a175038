package logging

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/morler/oxidize/constants/lipgloss"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the explicit diagnostics context passed into every component.
// Messages go styled to the terminal and plain to a rotating log file, so a
// failed conversion can be reconstructed after the fact.
type Logger struct {
	out     io.Writer
	fileLog *log.Logger
	verbose bool
}

// NewLogger creates a logger. An empty logFile disables the file sink.
func NewLogger(verbose bool, logFile string) *Logger {
	logger := &Logger{
		out:     os.Stdout,
		verbose: verbose,
	}

	if logFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		}
		logger.fileLog = log.New(rotating, "", log.LstdFlags)
	}

	return logger
}

// Nop returns a logger that discards everything, for tests.
func Nop() *Logger {
	return &Logger{out: io.Discard}
}

func (l *Logger) logToFile(level string, message string) {
	if l.fileLog != nil {
		l.fileLog.Printf("%s %s", level, message)
	}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.out, message)
	l.logToFile("INFO", message)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if l.verbose {
		fmt.Fprintln(l.out, lipgloss.Gray.Render(message))
	}
	l.logToFile("DEBUG", message)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.out, lipgloss.Yellow.Render(message))
	l.logToFile("WARN", message)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.out, lipgloss.Red.Render(message))
	l.logToFile("ERROR", message)
}
