package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnv returns a getenv func backed by a map, so resolution tests never
// touch the real environment.
func fakeEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func noEnv(string) string { return "" }

func TestParseArgsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := parseArgs(nil, noEnv)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 25575, cfg.Port)
	assert.Equal(t, "test", cfg.Password)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Args)
}

func TestParseArgsEnvFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := parseArgs(nil, fakeEnv(map[string]string{
		"RCON_HOST":     "game.example.com",
		"RCON_PORT":     "27015",
		"RCON_PASSWORD": "sekrit",
	}))
	require.NoError(t, err)

	assert.Equal(t, "game.example.com", cfg.Host)
	assert.Equal(t, 27015, cfg.Port)
	assert.Equal(t, "sekrit", cfg.Password)
}

func TestParseArgsFlagsBeatEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := parseArgs(
		[]string{"-H", "10.0.0.5", "--port", "27016", "-p", "flagpass", "-t", "2.5"},
		fakeEnv(map[string]string{
			"RCON_HOST":     "game.example.com",
			"RCON_PORT":     "27015",
			"RCON_PASSWORD": "sekrit",
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", cfg.Host)
	assert.Equal(t, 27016, cfg.Port)
	assert.Equal(t, "flagpass", cfg.Password)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
}

func TestParseArgsConfigFileLayer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "rconctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: filehost\nport: 1234\npassword: filepass\ntimeout: 3.0\n"), 0o600))

	// File beats defaults.
	cfg, err := parseArgs([]string{"-c", path}, noEnv)
	require.NoError(t, err)
	assert.Equal(t, "filehost", cfg.Host)
	assert.Equal(t, 1234, cfg.Port)
	assert.Equal(t, "filepass", cfg.Password)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	// Env beats file.
	cfg, err = parseArgs([]string{"-c", path}, fakeEnv(map[string]string{"RCON_HOST": "envhost"}))
	require.NoError(t, err)
	assert.Equal(t, "envhost", cfg.Host)
	assert.Equal(t, 1234, cfg.Port)

	// Flag beats both.
	cfg, err = parseArgs([]string{"-c", path, "-H", "flaghost"}, fakeEnv(map[string]string{"RCON_HOST": "envhost"}))
	require.NoError(t, err)
	assert.Equal(t, "flaghost", cfg.Host)
}

func TestParseArgsMissingExplicitConfig(t *testing.T) {
	_, err := parseArgs([]string{"-c", filepath.Join(t.TempDir(), "nope.yaml")}, noEnv)
	assert.Error(t, err)
}

func TestParseArgsBadPortEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := parseArgs(nil, fakeEnv(map[string]string{"RCON_PORT": "not-a-port"}))
	assert.Error(t, err)
}

func TestParseArgsPositionalWords(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := parseArgs([]string{"-P", "27015", "say", "hello", "world"}, noEnv)
	require.NoError(t, err)
	assert.Equal(t, []string{"say", "hello", "world"}, cfg.Args)
}
