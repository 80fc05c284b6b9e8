// Package liststore persists broadcaster lists as plain text, one name per line.
//
// Files are fully overwritten on every save. There is no locking, the last
// writer wins.
package liststore

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type Store struct {
	dir    string
	active string
}

// New creates a store rooted at `dir`, `activeFile` is the name of the pointer
// file naming the list currently in effect.
func New(dir, activeFile string) Store {
	return Store{dir: dir, active: activeFile}
}

func (s Store) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// Save writes `names` one per line with a trailing newline, order and
// duplicates are kept exactly as given.
func (s Store) Save(name string, names []string) error {
	var buff bytes.Buffer
	for _, n := range names {
		buff.WriteString(strings.TrimSpace(n))
		buff.WriteByte('\n')
	}
	err := os.WriteFile(s.Path(name), buff.Bytes(), 0644)
	if err != nil {
		return fmt.Errorf("save list %s: %w", name, err)
	}
	return nil
}

// lines written by older versions of the tool look like `Streamer("name"),`
var legacyLine = regexp.MustCompile(`^Streamer\("([^"]+)"\),?$`)

// Load reads a list, a missing file is an empty list.
func (s Store) Load(name string) ([]string, error) {
	f, err := os.Open(s.Path(name))
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load list %s: %w", name, err)
	}
	defer f.Close()

	names := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if groups := legacyLine.FindStringSubmatch(line); len(groups) == 2 {
			line = groups[1]
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("load list %s: %w", name, err)
	}
	return names, nil
}

// SetActive points the active pointer file at `name`.
func (s Store) SetActive(name string) error {
	err := os.WriteFile(s.Path(s.active), []byte(name+"\n"), 0644)
	if err != nil {
		return fmt.Errorf("set active list: %w", err)
	}
	return nil
}

// Active returns the name of the list in effect, or "" if no pointer is set.
func (s Store) Active() (string, error) {
	contents, err := os.ReadFile(s.Path(s.active))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read active list: %w", err)
	}
	return strings.TrimSpace(string(contents)), nil
}

// LoadActive loads the list the active pointer names.
func (s Store) LoadActive() (string, []string, error) {
	name, err := s.Active()
	if err != nil || name == "" {
		return name, []string{}, err
	}
	names, err := s.Load(name)
	return name, names, err
}

// EnsureFiles creates every missing file in `names` empty, bind mounts of a
// missing path would otherwise create a directory in its place.
func (s Store) EnsureFiles(names ...string) ([]string, error) {
	created := []string{}
	for _, name := range names {
		path := s.Path(name)
		_, err := os.Stat(path)
		if err == nil {
			continue
		}
		if !os.IsNotExist(err) {
			return created, err
		}
		err = os.WriteFile(path, nil, 0644)
		if err != nil {
			return created, err
		}
		created = append(created, name)
	}
	return created, nil
}
