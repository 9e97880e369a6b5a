package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv(env(map[string]string{"DURAK_NICKNAME": "ann"}))
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:8007/ws", c.ServerURL)
	assert.Equal(t, "file", c.Locator)
	assert.Equal(t, 3*time.Second, c.ErrorTTL)
	assert.Equal(t, 10*time.Second, c.InfoTTL)
	assert.False(t, c.AutoStart)
	assert.True(t, c.Local())
	assert.NoError(t, c.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	c, err := FromEnv(env(map[string]string{
		"DURAK_NICKNAME":   " bob ",
		"DURAK_SERVER_URL": "wss://durak.example/ws",
		"DURAK_ENV":        "production",
		"DURAK_LOCATOR":    "redis",
		"DURAK_REDIS_URL":  "redis://localhost:6379/0",
		"DURAK_AUTO_START": "true",
		"DURAK_ERROR_TTL":  "1500ms",
		"DURAK_HTTP_ADDR":  "",
	}))
	require.NoError(t, err)
	assert.Equal(t, "bob", c.Nickname)
	assert.True(t, c.AutoStart)
	assert.Equal(t, 1500*time.Millisecond, c.ErrorTTL)
	assert.Empty(t, c.HTTPAddr)
	assert.False(t, c.Local())
	assert.NoError(t, c.Validate())
}

func TestFromEnv_ParseErrorsAreCombined(t *testing.T) {
	_, err := FromEnv(env(map[string]string{
		"DURAK_ERROR_TTL":  "soon",
		"DURAK_INFO_TTL":   "later",
		"DURAK_AUTO_START": "maybe",
	}))
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "DURAK_ERROR_TTL")
	assert.Contains(t, err.Error(), "DURAK_INFO_TTL")
	assert.Contains(t, err.Error(), "DURAK_AUTO_START")
}

func TestValidate_ReportsEverything(t *testing.T) {
	c := Defaults()
	c.ServerURL = "http://nope"
	c.Env = "staging"
	c.LogLevel = "loud"
	c.Locator = "redis"
	c.InfoTTL = 0

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	// nickname, url, env, level, redis url, info ttl
	assert.Len(t, multierr.Errors(errorsOnly(err)), 6)
}

// errorsOnly unwraps the ErrInvalid prefix to reach the combined error.
func errorsOnly(err error) error {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range u.Unwrap() {
			if e != ErrInvalid {
				return e
			}
		}
	}
	return err
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DURAK_NICKNAME=carol\nDURAK_LOCATOR=memory\n"), 0o644))
	t.Setenv("DURAK_NICKNAME", "")
	os.Unsetenv("DURAK_NICKNAME")
	t.Setenv("DURAK_LOCATOR", "")
	os.Unsetenv("DURAK_LOCATOR")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "carol", c.Nickname)
	assert.Equal(t, "memory", c.Locator)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
