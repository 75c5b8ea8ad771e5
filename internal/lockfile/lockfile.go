// Package lockfile guards the engine state directory against concurrent
// instances using an advisory flock that the kernel releases on process exit.
package lockfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// FileName is the lock file created inside the state directory.
const FileName = "botengine.lock"

// Lock holds an exclusive flock on the state directory until released.
type Lock struct {
	file *os.File
	path string
	held bool
}

// Acquire takes an exclusive non-blocking lock on stateDir, creating the
// directory if needed. When another process already holds the lock the
// returned error is a *HeldError describing the owner.
func Acquire(stateDir string) (*Lock, error) {
	path := filepath.Join(stateDir, FileName)
	slog.Debug("Acquiring state directory lock", "path", path)

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", stateDir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		owner := describeOwner(path)
		slog.Error("State directory already locked", "error", err, "path", path, "owner", owner)
		return nil, &HeldError{Path: path, Owner: owner, Cause: err}
	}

	if _, err := fmt.Fprintf(f, "pid=%d\n", os.Getpid()); err != nil {
		syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
		return nil, fmt.Errorf("failed to write lock file %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		slog.Warn("Failed to sync lock file", "error", err, "path", path)
	}

	slog.Info("Acquired state directory lock", "path", path, "pid", os.Getpid())
	return &Lock{file: f, path: path, held: true}, nil
}

// Release drops the flock and removes the lock file. Safe to call twice.
func (l *Lock) Release() error {
	if !l.held || l.file == nil {
		return nil
	}
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		slog.Error("Failed to release flock", "error", err, "path", l.path)
	}
	if err := l.file.Close(); err != nil {
		slog.Error("Failed to close lock file", "error", err, "path", l.path)
	}
	if err := os.Remove(l.path); err != nil {
		slog.Error("Failed to remove lock file", "error", err, "path", l.path)
	}
	l.held = false
	l.file = nil
	slog.Info("Released state directory lock", "path", l.path)
	return nil
}

// HeldError reports a lock owned by another process.
type HeldError struct {
	Path  string
	Owner string
	Cause error
}

func (e *HeldError) Error() string {
	msg := fmt.Sprintf("another bot engine instance is using this state directory (lock file: %s)", e.Path)
	if e.Owner != "" {
		msg += fmt.Sprintf("; held by %s", e.Owner)
	}
	msg += fmt.Sprintf(". If no other instance is running, remove the stale lock with: rm %s", e.Path)
	return msg
}

func (e *HeldError) Unwrap() error { return e.Cause }

// describeOwner reads the existing lock file and reports whether the
// recorded PID is still alive.
func describeOwner(path string) string {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return ""
	}
	pid := parsePID(string(data))
	if pid <= 0 {
		return strings.TrimSpace(string(data))
	}
	if processAlive(pid) {
		return fmt.Sprintf("PID %d (running)", pid)
	}
	return fmt.Sprintf("PID %d (not running, stale lock)", pid)
}

func parsePID(content string) int {
	const prefix = "pid="
	idx := strings.Index(content, prefix)
	if idx < 0 {
		return 0
	}
	rest := content[idx+len(prefix):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	pid, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return pid
}

func processAlive(pid int) bool {
	// Signal 0 probes for existence without delivering anything.
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}
