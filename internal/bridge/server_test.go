package bridge

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/john/chatter/internal/chatlog"
	"github.com/john/chatter/internal/config"
	"github.com/john/chatter/internal/message"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

var may5 = time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Bridge:     config.BridgeConfig{Listen: "127.0.0.1:0"},
		ChatLabels: message.DefaultLabels(),
		Logs: map[string]*config.LogConfig{
			"all": {
				TimeFormat:   "15:04:05",
				Template:     "{0} {1}: {4}",
				Directory:    dir,
				FileBaseName: "all",
				WrapIndent:   4,
				Enabled:      map[message.ChatType]bool{message.ChatSay: true},
			},
		},
	}
}

func newTestServer(t *testing.T, dir string) (*Server, *fakeClock) {
	t.Helper()
	cfg := testConfig(dir)
	clock := &fakeClock{now: may5}
	manager := chatlog.NewManager(cfg, clock)
	t.Cleanup(manager.Close)
	return New(cfg, clock, manager), clock
}

func TestNormalize(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())

	t.Run("player_sender", func(t *testing.T) {
		msg, err := s.normalize([]byte(`{
			"type": "say",
			"senderId": 42,
			"sender": [{"player": {"name": "Ann", "world": "Adamantoise"}}],
			"message": [{"text": "hello"}]
		}`))
		require.NoError(t, err)
		assert.Equal(t, message.ChatSay, msg.Type)
		assert.Equal(t, "say", msg.Label)
		assert.Equal(t, uint64(42), msg.SenderID)
		assert.Equal(t, message.PlayerID{Name: "Ann", World: "Adamantoise"}, msg.Sender)
		assert.Equal(t, "hello", msg.Body.Render(true))
		assert.Equal(t, may5, msg.When)
	})

	t.Run("text_sender_falls_back", func(t *testing.T) {
		msg, err := s.normalize([]byte(`{
			"type": "echo",
			"sender": [{"text": "Notice"}],
			"message": [{"text": "maintenance soon"}]
		}`))
		require.NoError(t, err)
		assert.Equal(t, message.PlayerID{Name: "Notice"}, msg.Sender)
	})

	t.Run("unknown_type_rejected", func(t *testing.T) {
		_, err := s.normalize([]byte(`{"type": "smoke_signal", "sender": [], "message": []}`))
		assert.Error(t, err)
	})

	t.Run("malformed_json_rejected", func(t *testing.T) {
		_, err := s.normalize([]byte(`{"type": "say"`))
		assert.Error(t, err)
	})
}

func TestUpdateLabels(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())

	relabeled := &config.Config{ChatLabels: map[message.ChatType]string{message.ChatSay: "SAY"}}
	s.UpdateLabels(relabeled)

	msg, err := s.normalize([]byte(`{"type": "say", "sender": [{"text": "x"}], "message": [{"text": "y"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "SAY", msg.Label)
}

func TestChatRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, _ := newTestServer(t, dir)

	ts := httptest.NewServer(s.server.Handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	err = conn.WriteJSON(map[string]any{
		"type":     "say",
		"senderId": 7,
		"sender":   []map[string]any{{"player": map[string]any{"name": "Ann", "world": "Adamantoise"}}},
		"message":  []map[string]any{{"text": "over the wire"}},
	})
	require.NoError(t, err)

	var resp reply
	require.NoError(t, conn.ReadJSON(&resp))
	assert.False(t, resp.Handled, "recording must never consume the message")

	logPath := filepath.Join(dir, chatlog.LogFileName("all", may5))
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "10:00:00 Ann: over the wire")

	// An undecodable event still gets a reply and leaves the log untouched.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "smoke_signal"}`)))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.False(t, resp.Handled)
}
