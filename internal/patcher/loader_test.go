package patcher

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"gibdrop/internal/liststore"

	"github.com/stretchr/testify/require"
)

// stands in for the miner's Streamer class
const streamerStub = `class Streamer:
    def __init__(self, username):
        self.username = username


`

// runLoader executes the loader block next to `files` from an unrelated working
// directory and returns the streamer names it produced.
func runLoader(t *testing.T, python string, dir string) []string {
	script := streamerStub + loaderTemplate + "\nprint(\"\\n\".join(s.username for s in streamer_objects))\n"
	path := filepath.Join(dir, "run.py")
	require.NoError(t, os.WriteFile(path, []byte(script), 0644))

	cmd := exec.Command(python, path)
	cmd.Dir = t.TempDir()
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return strings.Fields(string(out))
}

func TestLoaderBlock(t *testing.T) {
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 is not installed")
	}

	testCases := []struct {
		name     string
		files    map[string]string
		expected []string
	}{
		{
			name:  "missing pointer",
			files: map[string]string{},
		},
		{
			name:  "empty pointer",
			files: map[string]string{"active_streamers.txt": ""},
		},
		{
			name:  "pointer to missing list",
			files: map[string]string{"active_streamers.txt": "selected_campaigns.txt\n"},
		},
		{
			name: "plain list",
			files: map[string]string{
				"active_streamers.txt":  "default_streamers.txt\n",
				"default_streamers.txt": "alpha\n\n  beta \n",
			},
			expected: []string{"alpha", "beta"},
		},
		{
			name: "legacy list",
			files: map[string]string{
				"active_streamers.txt":  "default_streamers.txt\n",
				"default_streamers.txt": "Streamer(\"alpha\"),\nStreamer(\"beta\")\ngamma\n",
			},
			expected: []string{"alpha", "beta", "gamma"},
		},
	}

	for _, test := range testCases {
		dir := t.TempDir()
		for name, contents := range test.files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644), test.name)
		}

		names := runLoader(t, python, dir)

		_, stored, err := liststore.New(dir, "active_streamers.txt").LoadActive()
		require.NoError(t, err, test.name)

		if len(test.expected) == 0 {
			require.Empty(t, names, test.name)
			require.Empty(t, stored, test.name)
			continue
		}
		require.Equal(t, test.expected, names, test.name)
		require.Equal(t, test.expected, stored, test.name)
	}
}
