package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	expected := Default()
	expected.WorkDir = dir
	require.Equal(t, expected, cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{
		container: { name: "other-miner" },
		discovery: { fallback_streamer_cap: 3 },
	}`), 0600))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, EnvFileName),
		[]byte("GIBDROP_CLIENT_ID=abc\nGIBDROP_COOKIE_PATH=/tmp/c.json\n"),
		0600,
	))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "other-miner", cfg.Container.Name)
	require.Equal(t, "latest", cfg.Container.Tag)
	require.Equal(t, 3, cfg.Discovery.FallbackStreamerCap)
	require.Equal(t, 20, cfg.Discovery.PageSize)
	require.Equal(t, "abc", cfg.Vendor.ClientId)
	require.Equal(t, "/tmp/c.json", cfg.Cookies.Paths[0])
}

func TestPath(t *testing.T) {
	cfg := Default()
	cfg.WorkDir = "/srv/miner"
	require.Equal(t, "/srv/miner/run.py", cfg.Path("run.py"))
	require.Equal(t, "/etc/x", cfg.Path("/etc/x"))
	require.Equal(t, "/srv/miner", cfg.ListDir())
	require.Equal(t, "gibdrop-miner-patched:latest", cfg.Container.FullImage())
}

func TestLoadRejectsBadDiscoveryLimits(t *testing.T) {
	testCases := []struct {
		name   string
		config string
	}{
		{name: "negative fallback cap", config: `{ discovery: { fallback_streamer_cap: -1 } }`},
		{name: "negative page size", config: `{ discovery: { page_size: -20 } }`},
		{name: "negative max streamers", config: `{ discovery: { max_streamers: -1 } }`},
	}

	for _, test := range testCases {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(test.config), 0600), test.name)
		_, err := Load(dir)
		require.Error(t, err, test.name)
	}
}

func TestListsMounted(t *testing.T) {
	lists := Default().Lists
	require.True(t, lists.Mounted(lists.Default))
	require.True(t, lists.Mounted(lists.RustDrops))
	require.True(t, lists.Mounted(lists.Selected))
	require.False(t, lists.Mounted(lists.Active))
	require.False(t, lists.Mounted("/home/me/friends.txt"))
	require.False(t, lists.Mounted("other.txt"))
}
