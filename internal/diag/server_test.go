package diag

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/john/chatter/internal/chatlog"
	"github.com/john/chatter/internal/config"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestEndpoints(t *testing.T) {
	manager := chatlog.NewManager(&config.Config{
		Logs: map[string]*config.LogConfig{
			"all": {Directory: t.TempDir(), FileBaseName: "all"},
		},
	}, fixedClock{now: time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)})
	defer manager.Close()

	s := New("127.0.0.1:0", manager)
	ts := httptest.NewServer(s.server.Handler)
	defer ts.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("logs_dump", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/logs")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "[L]: all                  false ''\n", string(body))
	})
}
