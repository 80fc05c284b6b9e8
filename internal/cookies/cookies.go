package cookies

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nlpodyssey/gopickle/pickle"
	"github.com/nlpodyssey/gopickle/types"
)

// Jar is a cookie-name to value mapping lifted from the miner's saved session.
type Jar map[string]string

func (j Jar) Empty() bool {
	return len(j) == 0
}

// Header assembles the value of a Cookie header, sorted by name so requests are reproducible.
func (j Jar) Header() string {
	names := make([]string, 0, len(j))
	for name := range j {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = fmt.Sprintf("%s=%s", name, j[name])
	}
	return strings.Join(pairs, "; ")
}

// Token returns the value of the cookie carrying the oauth token.
func (j Jar) Token(authCookie string) (string, bool) {
	token, ok := j[authCookie]
	return token, ok && token != ""
}

type record struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Find returns the first existing file among the candidates, glob patterns are
// expanded in lexical order. "" is returned when nothing matches.
func Find(candidates []string) string {
	for _, candidate := range candidates {
		matches, err := filepath.Glob(expandHome(candidate))
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, match := range matches {
			info, err := os.Stat(match)
			if err == nil && !info.IsDir() {
				return match
			}
		}
	}
	return ""
}

// Load reads the first candidate that exists. no candidate existing is not an
// error, it results in an empty jar and an empty path.
func Load(candidates []string) (Jar, string, error) {
	path := Find(candidates)
	if path == "" {
		return Jar{}, "", nil
	}
	jar, err := LoadFile(path)
	return jar, path, err
}

func LoadFile(path string) (Jar, error) {
	if strings.HasSuffix(path, ".pkl") {
		return loadPickle(path)
	}
	return loadJson(path)
}

func loadJson(path string) (Jar, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []record
	err = json.Unmarshal(contents, &records)
	if err == nil {
		jar := Jar{}
		for _, r := range records {
			if r.Name == "" {
				continue
			}
			jar[r.Name] = r.Value
		}
		return jar, nil
	}

	jar := Jar{}
	mapErr := json.Unmarshal(contents, &jar)
	if mapErr != nil {
		return nil, fmt.Errorf("parse cookies %s: %w", path, err)
	}
	return jar, nil
}

func loadPickle(path string) (Jar, error) {
	loaded, err := pickle.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unpickle cookies %s: %w", path, err)
	}

	list, ok := loaded.(*types.List)
	if !ok {
		return nil, fmt.Errorf("unpickle cookies %s: expected a list, got %T", path, loaded)
	}

	jar := Jar{}
	for i := 0; i < list.Len(); i++ {
		entry, ok := list.Get(i).(*types.Dict)
		if !ok {
			continue
		}
		name, ok := pickleString(entry, "name")
		if !ok || name == "" {
			continue
		}
		value, _ := pickleString(entry, "value")
		jar[name] = value
	}
	return jar, nil
}

func pickleString(dict *types.Dict, key string) (string, bool) {
	value, ok := dict.Get(key)
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case int:
		return fmt.Sprint(v), true
	}
	return "", false
}
