package cookies

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// pickle.dumps([{"name": "auth-token", "value": "tok123"}, {"name": "persistent", "value": "42"}], protocol=2)
const pickledCookies = "80025d7100287d71012858040000006e616d657102580a000000617574682d746f6b656e7103580500000076616c756571045806000000746f6b3132337105757d7106286802580a00000070657273697374656e747107680458020000003432710875652e"

func TestJarHeader(t *testing.T) {
	jar := Jar{"persistent": "42", "auth-token": "tok123", "api_token": "x"}
	require.Equal(t, "api_token=x; auth-token=tok123; persistent=42", jar.Header())

	token, ok := jar.Token("auth-token")
	require.True(t, ok)
	require.Equal(t, "tok123", token)

	_, ok = Jar{}.Token("auth-token")
	require.False(t, ok)
}

func TestLoadFirstCandidateWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	require.NoError(t, os.WriteFile(first, []byte(`[{"name": "auth-token", "value": "one"}]`), 0600))
	require.NoError(t, os.WriteFile(second, []byte(`[{"name": "auth-token", "value": "two"}]`), 0600))

	jar, path, err := Load([]string{filepath.Join(dir, "missing.json"), first, second})
	require.NoError(t, err)
	require.Equal(t, first, path)
	require.Equal(t, Jar{"auth-token": "one"}, jar)
}

func TestLoadNothingFound(t *testing.T) {
	jar, path, err := Load([]string{filepath.Join(t.TempDir(), "*.pkl")})
	require.NoError(t, err)
	require.Equal(t, "", path)
	require.True(t, jar.Empty())
}

func TestLoadJsonObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"auth-token": "abc"}`), 0600))

	jar, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, Jar{"auth-token": "abc"}, jar)
}

func TestLoadJsonInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0600))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadPickle(t *testing.T) {
	raw, err := hex.DecodeString(pickledCookies)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "cookies")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "someone.pkl"), raw, 0600))

	jar, path, err := Load([]string{filepath.Join(dir, "*.pkl")})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "someone.pkl"), path)
	require.Equal(t, Jar{"auth-token": "tok123", "persistent": "42"}, jar)
}
