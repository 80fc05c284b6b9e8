package patcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gibdrop/internal/components/telemetry"
	"gibdrop/internal/config"

	"github.com/stretchr/testify/require"
)

func TestPatchFileBackupOnce(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "run.py")
	backup := filepath.Join(dir, "run.py.orig")

	require.NoError(t, os.WriteFile(script, []byte(exampleScript), 0644))

	result, err := PatchFile(script, backup)
	require.NoError(t, err)
	require.NoError(t, result.Err())

	patched, err := os.ReadFile(script)
	require.NoError(t, err)
	require.Equal(t, result.Text, string(patched))

	saved, err := os.ReadFile(backup)
	require.NoError(t, err)
	require.Equal(t, exampleScript, string(saved))

	// a script edited by hand after patching is patched again, the backup stays
	edited := string(patched) + "twitch_miner.mine([Streamer(\"x\")])\n"
	require.NoError(t, os.WriteFile(script, []byte(edited), 0644))
	result, err = PatchFile(script, backup)
	require.NoError(t, err)
	require.True(t, result.CallSiteReplaced)

	saved, err = os.ReadFile(backup)
	require.NoError(t, err)
	require.Equal(t, exampleScript, string(saved))
}

func TestPatchFileUnchanged(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "run.py")
	backup := filepath.Join(dir, "run.py.orig")

	require.NoError(t, os.WriteFile(script, []byte(Apply(exampleScript).Text), 0644))

	result, err := PatchFile(script, backup)
	require.NoError(t, err)
	require.False(t, result.CallSiteReplaced)
	require.False(t, result.LoaderInserted)
	require.NoFileExists(t, backup)
}

func TestPatchFileMissing(t *testing.T) {
	_, err := PatchFile(filepath.Join(t.TempDir(), "run.py"), "backup")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func newTestBootstrap(t *testing.T, handler http.HandlerFunc) (*Bootstrap, config.Config, *telemetry.Recorder) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.WorkDir = t.TempDir()
	cfg.Patch.ExampleUrl = server.URL + "/example.py"

	rec := telemetry.NewRecorder()
	return NewBootstrap(cfg, rec, nil), cfg, rec
}

func TestEnsureEntryScript(t *testing.T) {
	downloads := 0
	b, cfg, rec := newTestBootstrap(t, func(w http.ResponseWriter, r *http.Request) {
		downloads++
		require.Equal(t, "/example.py", r.URL.Path)
		w.Write([]byte(exampleScript))
	})
	entry := cfg.Path(cfg.Patch.EntryScript)

	origin, err := b.EnsureEntryScript(context.Background())
	require.NoError(t, err)
	require.Equal(t, OriginDownloadedExample, origin)
	require.Equal(t, 1, downloads)
	require.True(t, rec.Has(telemetry.LevelWarning, report_ensure_script), rec.String())
	require.FileExists(t, cfg.Path(cfg.Patch.ExampleScript))

	contents, err := os.ReadFile(entry)
	require.NoError(t, err)
	require.Equal(t, exampleScript, string(contents))

	origin, err = b.EnsureEntryScript(context.Background())
	require.NoError(t, err)
	require.Equal(t, OriginExisting, origin)

	require.NoError(t, os.Remove(entry))
	origin, err = b.EnsureEntryScript(context.Background())
	require.NoError(t, err)
	require.Equal(t, OriginCopiedExample, origin)
	require.Equal(t, 1, downloads)
}

func TestEnsureEntryScriptDownloadFails(t *testing.T) {
	b, cfg, rec := newTestBootstrap(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := b.EnsureEntryScript(context.Background())
	require.Error(t, err)
	require.NoFileExists(t, cfg.Path(cfg.Patch.EntryScript))
	require.True(t, rec.Has(telemetry.LevelBroken, report_fetch_example), rec.String())
}

func TestBootstrapPatch(t *testing.T) {
	b, cfg, rec := newTestBootstrap(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("print('no miner here')\n"))
	})

	result, err := b.Patch(context.Background())
	require.NoError(t, err)
	require.True(t, result.Has(ErrNoCallSite))
	require.True(t, result.Has(ErrNoInsertionAnchor))
	require.True(t, rec.Has(telemetry.LevelWarning, report_patch_file), rec.String())
	require.NoFileExists(t, cfg.Path(cfg.Patch.BackupPath))
}
