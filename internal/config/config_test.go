package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/john/chatter/internal/message"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
logs:
  all:
    channels: [say, party]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9550", cfg.Bridge.Listen)
	assert.Empty(t, cfg.Diag.Listen)

	lc := cfg.Logs["all"]
	require.NotNil(t, lc)
	assert.Equal(t, "2006-01-02 15:04:05", lc.TimeFormat)
	assert.Equal(t, "{0} {1}: {4}", lc.Template)
	assert.Equal(t, "./logs", lc.Directory)
	assert.Equal(t, "all", lc.FileBaseName)
	assert.Zero(t, lc.WrapIndent, "wrap_indent must not grow an implicit default")
	assert.True(t, lc.Enabled[message.ChatSay])
	assert.True(t, lc.Enabled[message.ChatParty])
	assert.False(t, lc.Enabled[message.ChatYell])

	assert.Equal(t, "say", cfg.ChatLabels[message.ChatSay])
}

func TestLoadTimezone(t *testing.T) {
	path := writeConfig(t, `
timezone: "America/Chicago"
logs:
  all: {channels: [say]}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", cfg.Location.String())

	bad := writeConfig(t, `
timezone: "Mars/Olympus_Mons"
logs:
  all: {channels: [say]}
`)
	_, err = Load(bad)
	assert.ErrorContains(t, err, "timezone")
}

func TestLoadLabelOverrides(t *testing.T) {
	path := writeConfig(t, `
labels:
  say: "SAY"
  tell_in: ""
logs:
  all: {channels: [say]}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SAY", cfg.ChatLabels[message.ChatSay])
	assert.Empty(t, cfg.ChatLabels[message.ChatTellIncoming])
	// untouched types keep their built-in label
	assert.Equal(t, "party", cfg.ChatLabels[message.ChatParty])
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHATTER_BRIDGE_LISTEN", "127.0.0.1:7777")
	t.Setenv("CHATTER_LOG_DIR", "/tmp/chatter-logs")

	path := writeConfig(t, `
bridge: {listen: "127.0.0.1:9550"}
logs:
  all:
    channels: [say]
    directory: "./elsewhere"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7777", cfg.Bridge.Listen)
	assert.Equal(t, "/tmp/chatter-logs", cfg.Logs["all"].Directory)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no_groups",
			yaml:    `bridge: {listen: "127.0.0.1:9550"}`,
			wantErr: "at least one log group",
		},
		{
			name: "unknown_channel",
			yaml: `
logs:
  all: {channels: [say, smoke_signal]}
`,
			wantErr: "logs.all.channels",
		},
		{
			name: "template_index_out_of_range",
			yaml: `
logs:
  all:
    channels: [say]
    template: "{0} {7}"
`,
			wantErr: "placeholder {7}",
		},
		{
			name: "indent_not_smaller_than_width",
			yaml: `
logs:
  all:
    channels: [say]
    wrap_width: 4
    wrap_indent: 4
`,
			wantErr: "wrap_indent",
		},
		{
			name: "negative_width",
			yaml: `
logs:
  all:
    channels: [say]
    wrap_width: -1
`,
			wantErr: "wrap_width",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoadZeroWrapIndent(t *testing.T) {
	path := writeConfig(t, `
logs:
  all:
    channels: [say]
    wrap_width: 40
    wrap_indent: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	lc := cfg.Logs["all"]
	assert.Equal(t, 40, lc.WrapWidth)
	assert.Zero(t, lc.WrapIndent, "explicit zero indent must survive loading")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestValidateTemplateTolerance(t *testing.T) {
	// Unterminated braces and non-numeric tokens are formatter territory,
	// not load errors.
	assert.NoError(t, validateTemplate("{0} {unclosed"))
	assert.NoError(t, validateTemplate("{abc} {1}"))
	assert.Error(t, validateTemplate("{1} {6}"))
}
