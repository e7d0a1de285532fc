// Package audit records workspace lifecycle events as JSON Lines, one file
// per workspace. Logs outlive the workspace so a deleted workspace's history
// can still be inspected.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// EventType classifies a lifecycle event.
type EventType string

const (
	EventCreate   EventType = "create"
	EventActivate EventType = "activate"
	EventArchive  EventType = "archive"
	EventDelete   EventType = "delete"
	EventCleanup  EventType = "cleanup"
	EventError    EventType = "error"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Workspace string    `json:"workspace"`
	Details   string    `json:"details,omitempty"`
}

// Logger writes and reads audit events.
// Events are stored in {dir}/{workspace-id}.events.jsonl.
type Logger struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewLogger creates a new audit logger rooted at dir.
func NewLogger(dir string) *Logger {
	return &Logger{dir: dir, now: time.Now}
}

// Dir returns the directory holding the event logs.
func (l *Logger) Dir() string {
	return l.dir
}

func (l *Logger) eventPath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("workspace id is required")
	}
	return securejoin.SecureJoin(l.dir, id+".events.jsonl")
}

// Log appends an event to the workspace's audit log.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	event.Timestamp = event.Timestamp.UTC()

	path, err := l.eventPath(event.Workspace)
	if err != nil {
		return fmt.Errorf("invalid audit log path: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// LogEvent is a convenience method that creates and logs an event.
func (l *Logger) LogEvent(eventType EventType, id, details string) error {
	return l.Log(Event{
		Type:      eventType,
		Workspace: id,
		Details:   details,
	})
}

// Events reads all events for a workspace in chronological order.
// A workspace without a log has no events.
func (l *Logger) Events(id string) ([]Event, error) {
	path, err := l.eventPath(id)
	if err != nil {
		return nil, fmt.Errorf("invalid audit log path: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}
	return events, nil
}
