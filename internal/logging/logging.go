// Package logging owns the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxLogFiles is how many per-run log files are kept.
const DefaultMaxLogFiles = 100

// Logger is shared by every package. It discards until Initialize says
// otherwise.
var Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Initialize sets up Logger. Without debug or a debug file, logs are
// discarded; otherwise each run writes JSON lines to its own file.
func Initialize(debug bool, debugFile string, maxLogFiles int) (string, error) {
	if os.Getenv("PRDECK_DEBUG") == "1" {
		debug = true
	}
	if env := os.Getenv("PRDECK_DEBUG_FILE"); env != "" && debugFile == "" {
		debugFile = env
	}
	if env := os.Getenv("PRDECK_MAX_LOG_FILES"); env != "" && maxLogFiles == DefaultMaxLogFiles {
		if n, err := strconv.Atoi(env); err == nil {
			maxLogFiles = n
		}
	}

	if !debug && debugFile == "" {
		Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		return "", nil
	}

	path := debugFile
	if path == "" {
		dir, err := logDir()
		if err != nil {
			return "", fmt.Errorf("failed to get log directory: %w", err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create log directory: %w", err)
		}
		if maxLogFiles > 0 {
			if err := rotate(dir, maxLogFiles); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
			}
		}
		path = filepath.Join(dir, uuid.NewString()+".log")
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}

	Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Logger.Info("Debug logging initialized", "log_file", path)
	return path, nil
}

// rotate deletes the oldest .log files in dir so that, with the file about
// to be created, at most limit remain.
func rotate(dir string, limit int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	var files []logFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}
	if len(files) < limit {
		return nil
	}

	slices.SortFunc(files, func(a, b logFile) int { return a.modTime.Compare(b.modTime) })
	for _, f := range files[:len(files)-limit+1] {
		if err := os.Remove(f.path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to delete old log file %s: %v\n", f.path, err)
		}
	}
	return nil
}

func logDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "prdeck"), nil
	case "linux":
		state := os.Getenv("XDG_STATE_HOME")
		if state == "" {
			state = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(state, "prdeck"), nil
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(local, "prdeck", "logs"), nil
	}
	return filepath.Join(home, ".prdeck", "logs"), nil
}
