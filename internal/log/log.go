// Package log writes debug output to a file under the XDG state directory.
// The terminal belongs to the TUI, so nothing is ever printed to it.
package log

import (
	stdlog "log"
	"os"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	debugEnabled bool
	logFile      *os.File
)

// Setup enables debug logging to <state dir>/<app>/debug.log.
// It is a no-op when debug is false.
func Setup(app string, debug bool) error {
	debugEnabled = debug
	if !debug || logFile != nil {
		return nil
	}
	logPath, err := xdg.StateFile(app + "/debug.log")
	if err != nil {
		return err
	}
	logFile, err = tea.LogToFile(logPath, app)
	return err
}

func Close() error {
	if logFile == nil {
		return nil
	}
	defer func() { logFile = nil }()
	return logFile.Close()
}

func DebugEnabled() bool {
	return debugEnabled
}

func Printf(format string, args ...any) {
	if debugEnabled {
		stdlog.Printf("DEBUG: "+format, args...)
	}
}
