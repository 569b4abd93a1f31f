package chatlog

import (
	"io"
	"log"
	"sort"
	"sync"

	"github.com/john/chatter/internal/config"
	"github.com/john/chatter/internal/message"
	"github.com/john/chatter/internal/timekeeper"
)

// Manager owns one ChatLog per configured group and fans each incoming
// message out to every log that wants it. The mutex serializes bridge
// connections against config reloads; each ChatLog itself only ever runs
// under the manager's lock.
type Manager struct {
	clock timekeeper.Clock

	mu   sync.Mutex
	logs map[string]*ChatLog
}

// NewManager builds a manager with one chat log per configured group.
func NewManager(cfg *config.Config, clock timekeeper.Clock) *Manager {
	m := &Manager{
		clock: clock,
		logs:  make(map[string]*ChatLog),
	}
	m.Reconcile(cfg)
	return m
}

// HandleMessage offers the message to every log. Rendering happens per log
// because each group carries its own include-server policy and user
// directory. Write failures are reported and the message is dropped for
// that log only.
func (m *Manager) HandleMessage(msg *message.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.logs {
		if !l.ShouldLog(msg) {
			continue
		}
		sender := renderSender(msg, l.cfg)
		body := msg.Body.Render(l.cfg.IncludeServer)
		if err := l.WriteLog(msg, sender, body); err != nil {
			log.Printf("Error writing chat log %s: %v", l.name, err)
		}
	}
}

// Reconcile aligns the owned logs with a (re)loaded configuration: new
// groups get fresh closed logs, dropped groups are closed and removed, and
// surviving groups swap to their new config.
func (m *Manager) Reconcile(cfg *config.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, l := range m.logs {
		lc, ok := cfg.Logs[name]
		if !ok {
			l.Close()
			delete(m.logs, name)
			log.Printf("Removed chat log group: %s", name)
			continue
		}
		l.reconfigure(lc)
	}
	for name, lc := range cfg.Logs {
		if _, ok := m.logs[name]; ok {
			continue
		}
		m.logs[name] = New(name, lc, m.clock)
		log.Printf("Added chat log group: %s", name)
	}
}

// Close closes every log. The instances stay registered; a later write
// reopens them.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.logs {
		l.Close()
	}
	log.Println("All chat logs closed")
}

// Dump writes one diagnostic line per log, ordered by group name.
func (m *Manager) Dump(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.logs))
	for name := range m.logs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.logs[name].Dump(w)
	}
}

// renderSender renders the sender under the log's include-server policy,
// after applying the group's user directory. Directory keys are always the
// fully qualified Name@World form.
func renderSender(msg *message.ChatMessage, cfg *config.LogConfig) string {
	if alias, ok := cfg.Users[msg.Sender.Render(true)]; ok && alias != "" {
		return alias
	}
	return msg.Sender.Render(cfg.IncludeServer)
}
