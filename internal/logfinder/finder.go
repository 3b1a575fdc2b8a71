// Package logfinder locates the Entropia Universe chat log file.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvChatLog is the environment variable overriding the chat log path.
const EnvChatLog = "PEDLOG_CHATLOG"

// ErrChatLogNotFound is returned when no chat.log can be located.
var ErrChatLogNotFound = errors.New("chat log not found")

// DefaultChatLogs returns candidate chat.log paths in priority order.
// The game writes the log under the user's documents folder.
func DefaultChatLogs() []string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil
	}
	return []string{
		filepath.Join(home, "Documents", "Entropia Universe", "chat.log"),
		filepath.Join(home, "My Documents", "Entropia Universe", "chat.log"),
	}
}

// FindChatLog returns the chat log path to monitor.
//
// Priority:
//  1. explicit (if non-empty), returned as-is even if the file does
//     not exist yet, since the tailer tolerates a missing file
//  2. PEDLOG_CHATLOG environment variable (same tolerance)
//  3. Auto-detect from DefaultChatLogs(), which requires the file to
//     exist
//
// Returns ErrChatLogNotFound when nothing is configured and no default
// location has a log file.
func FindChatLog(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvChatLog); env != "" {
		return env, nil
	}
	for _, candidate := range DefaultChatLogs() {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: set %s or pass an explicit path", ErrChatLogNotFound, EnvChatLog)
}
