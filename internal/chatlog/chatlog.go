package chatlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/john/chatter/internal/config"
	"github.com/john/chatter/internal/message"
	"github.com/john/chatter/internal/timekeeper"
)

// separatorFence is the number of '=' on each side of a day separator.
const separatorFence = 30

// ChatLog appends eligible chat messages to one rotating log file. It is
// either closed (no file) or open (file handle plus the start time its name
// was derived from). An instance is owned by the manager and never shared.
type ChatLog struct {
	name  string
	cfg   *config.LogConfig
	clock timekeeper.Clock

	file      *os.File
	path      string
	startTime time.Time // zero means the next write must open a fresh file
	lastDate  string    // date of the last line written, "" in a fresh file
}

// New creates a closed chat log for one configured group.
func New(name string, cfg *config.LogConfig, clock timekeeper.Clock) *ChatLog {
	return &ChatLog{
		name:  name,
		cfg:   cfg,
		clock: clock,
	}
}

// Name returns the group name the log was configured under.
func (l *ChatLog) Name() string { return l.name }

// ShouldLog reports whether the message belongs in this log. It never
// touches the file: eligibility is evaluated for every message, including
// ones that will not be written.
func (l *ChatLog) ShouldLog(msg *message.ChatMessage) bool {
	if l.cfg.DebugAll {
		return true
	}
	if msg.Label == "" {
		return false
	}
	return l.cfg.Enabled[msg.Type]
}

// WriteLog appends the message to the log file, opening or rotating it
// first when needed. sender and body are the caller's include-server-policy
// renderings. On any I/O error the handle is released and the log reverts
// to closed; the next eligible write retries from scratch.
func (l *ChatLog) WriteLog(msg *message.ChatMessage, sender, body string) error {
	if err := l.rotate(msg.When); err != nil {
		return err
	}

	day := msg.When.Format("20060102")
	var lines []string
	if day != l.lastDate {
		lines = append(lines, daySeparator(msg.When))
	}
	lines = append(lines, formatMessage(msg, sender, body,
		l.cfg.TimeFormat, l.cfg.Template, l.cfg.WrapWidth, l.cfg.WrapIndent)...)

	// Straight to the descriptor, one line at a time. No userspace
	// buffering: a crash must not lose lines already handed to WriteLog.
	for _, line := range lines {
		if _, err := l.file.WriteString(line + "\n"); err != nil {
			path := l.path
			l.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	l.lastDate = day
	return nil
}

// rotate ensures an open file whose start time shares the message's
// calendar day. A cleared start time (fresh instance or explicit Close)
// always forces a new file.
func (l *ChatLog) rotate(when time.Time) error {
	if l.file != nil && !l.startTime.IsZero() && sameDay(l.startTime, when) {
		return nil
	}
	l.Close()

	if err := os.MkdirAll(l.cfg.Directory, 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	now := l.clock.Now()
	path := filepath.Join(l.cfg.Directory, LogFileName(l.cfg.FileBaseName, now))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	log.Printf("Opened chat log file: %s", path)

	l.file = file
	l.path = path
	l.startTime = now
	l.lastDate = ""
	return nil
}

// Close releases the file handle and clears the start time marker so the
// next write opens a fresh file even within the same calendar day. Closing
// a closed log is a no-op.
func (l *ChatLog) Close() {
	if l.file == nil {
		return
	}
	if err := l.file.Close(); err != nil {
		log.Printf("Error closing chat log file %s: %v", l.path, err)
	}
	l.file = nil
	l.path = ""
	l.startTime = time.Time{}
	l.lastDate = ""
}

// Dump writes one diagnostic line describing the log's current state.
func (l *ChatLog) Dump(w io.Writer) {
	fmt.Fprintf(w, "[L]: %-20s %-5t '%s'\n", l.name, l.file != nil, l.path)
}

// reconfigure swaps in a reloaded config. A changed directory or base name
// closes the log so the next write reopens under the new naming policy.
func (l *ChatLog) reconfigure(cfg *config.LogConfig) {
	if cfg.Directory != l.cfg.Directory || cfg.FileBaseName != l.cfg.FileBaseName {
		l.Close()
	}
	l.cfg = cfg
}

// LogFileName computes the file name for a log started at t. Second
// resolution keeps sequential opens within one run from colliding.
func LogFileName(base string, t time.Time) string {
	return fmt.Sprintf("chatter-%s-%s.log", base, t.Format("20060102-150405"))
}

// daySeparator renders the banner marking a calendar-date change.
func daySeparator(t time.Time) string {
	fence := strings.Repeat("=", separatorFence)
	return fence + " " + t.Format("Monday, January 2, 2006") + " " + fence
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
