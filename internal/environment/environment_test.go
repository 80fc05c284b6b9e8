package environment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gibdrop/internal/config"
	"gibdrop/internal/patcher"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, goos string, cli bool, daemon bool) (Checker, config.Config) {
	cfg := config.Default()
	cfg.WorkDir = t.TempDir()

	c := NewChecker(cfg)
	c.hostInfo = func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{OS: goos, Platform: "debian"}, nil
	}
	c.lookPath = func(string) (string, error) {
		if !cli {
			return "", errors.New("not found")
		}
		return "/usr/bin/docker", nil
	}
	c.processes = func(context.Context) ([]string, error) {
		if daemon {
			return []string{"systemd", "dockerd"}, nil
		}
		return []string{"systemd"}, nil
	}
	return c, cfg
}

func TestCheckReady(t *testing.T) {
	c, cfg := newTestChecker(t, "linux", true, true)

	script := patcher.ImportAnchor + "\ntwitch_miner.mine([])\n"
	require.NoError(t, os.WriteFile(cfg.Path(cfg.Patch.EntryScript), []byte(patcher.Apply(script).Text), 0644))
	require.NoError(t, os.WriteFile(cfg.Path(cfg.Lists.Active), []byte("default_streamers.txt\n"), 0644))
	require.NoError(t, os.WriteFile(cfg.Path("cookies.json"), []byte(`[]`), 0644))

	r := c.Check(context.Background())
	require.Empty(t, r.Problems)
	require.True(t, r.Ready())
	require.Equal(t, "linux", r.OS)
	require.Equal(t, "/usr/bin/docker", r.DockerCli)
	require.True(t, r.DockerDaemon)
	require.True(t, r.EntryScript)
	require.True(t, r.ScriptPatched)
	require.Equal(t, "default_streamers.txt", r.ActiveList)
	require.Equal(t, filepath.Join(cfg.WorkDir, "cookies.json"), r.CookieFile)
}

func TestCheckProblems(t *testing.T) {
	c, cfg := newTestChecker(t, "windows", false, false)
	require.NoError(t, os.WriteFile(cfg.Path(cfg.Patch.EntryScript), []byte("print('unpatched')\n"), 0644))

	r := c.Check(context.Background())
	require.False(t, r.Ready())
	require.Len(t, r.Problems, 5)
	require.True(t, r.EntryScript)
	require.False(t, r.ScriptPatched)
	require.Empty(t, r.CookieFile)
	require.Empty(t, r.DockerCli)
}
