package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everforgeworks/reel-empire/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", s.Addr)
	assert.Equal(t, int64(0), s.Seed)
	assert.Equal(t, "", s.Content)
	assert.Equal(t, "", s.DB)
	assert.Equal(t, hclog.Info, s.LogLevel)
	assert.Equal(t, game.ExpiryRetire, s.ExpiryPolicy)
	assert.Equal(t, time.Duration(0), s.TickInterval)
	assert.Equal(t, game.Options{StudioName: "Reel Empire Pictures", ExpiryPolicy: game.ExpiryRetire}, s.GameOptions())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("REELEMPIRE_ADDR", ":9000")
	t.Setenv("REELEMPIRE_SEED", "42")
	t.Setenv("REELEMPIRE_EXPIRY_POLICY", "return_to_market")
	t.Setenv("REELEMPIRE_TICK_INTERVAL", "30s")
	t.Setenv("REELEMPIRE_LOG_LEVEL", "debug")

	s, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, ":9000", s.Addr)
	assert.Equal(t, int64(42), s.Seed)
	assert.Equal(t, game.ExpiryReturnToMarket, s.ExpiryPolicy)
	assert.Equal(t, 30*time.Second, s.TickInterval)
	assert.Equal(t, hclog.Debug, s.LogLevel)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("REELEMPIRE_STUDIO_NAME", "From Env")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(KeyStudioName, "", "")
	fs.Int64(KeySeed, 0, "")
	require.NoError(t, fs.Parse([]string{"--studio-name", "Night Owl Films", "--seed", "7"}))

	v := New()
	require.NoError(t, BindFlags(v, fs))
	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "Night Owl Films", s.StudioName)
	assert.Equal(t, int64(7), s.Seed)
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelempire.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7070\"\ndb: journal.db\ntick-interval: 1m\n"), 0o644))

	v := New()
	v.Set(KeyConfig, path)
	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":7070", s.Addr)
	assert.Equal(t, "journal.db", s.DB)
	assert.Equal(t, time.Minute, s.TickInterval)

	v = New()
	v.Set(KeyConfig, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load(v)
	assert.Error(t, err)
}

func TestSettingsFileUsesFlagKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelempire.yaml")
	body := "log-level: debug\nstudio-name: Night Owl Films\nexpiry-policy: return_to_market\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	v := New()
	v.Set(KeyConfig, path)
	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, hclog.Debug, s.LogLevel)
	assert.Equal(t, "Night Owl Films", s.StudioName)
	assert.Equal(t, game.ExpiryReturnToMarket, s.ExpiryPolicy)

	// Underscore spellings are not settings keys.
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nstudio_name: Ignored\n"), 0o644))
	v = New()
	v.Set(KeyConfig, path)
	s, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, hclog.Info, s.LogLevel)
	assert.Equal(t, "Reel Empire Pictures", s.StudioName)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		KeyExpiryPolicy: "sabbatical",
		KeyLogLevel:     "loud",
		KeyTickInterval: "-5s",
		KeyStudioName:   "   ",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			v := New()
			v.Set(key, value)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
