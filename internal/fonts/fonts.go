// Package fonts finds UI font files under the editor's asset directories.
package fonts

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when no font file matches a search.
var ErrNotFound = errors.New("font not found")

// Exts are the file extensions treated as fonts.
var Exts = []string{".ttf", ".otf"}

// DefaultDirs are searched when a Library is built with no directories, relative to the
// process working directory.
var DefaultDirs = []string{"assets/fonts", "../../assets/fonts"}

// Library searches a list of font directories.
type Library struct {
	dirs []string
}

// NewLibrary returns a library over dirs, or DefaultDirs when none are given.
func NewLibrary(dirs ...string) *Library {
	if len(dirs) == 0 {
		dirs = DefaultDirs
	}
	return &Library{dirs: dirs}
}

// Scan returns the font files under dir as slash-separated paths relative to dir. A
// missing dir gives an empty list.
func Scan(dir string) ([]string, error) {
	var out []string
	dir = filepath.Clean(dir)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !isFont(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(out)
	return out, err
}

func isFont(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Exts {
		if ext == e {
			return true
		}
	}
	return false
}

// normalize lowercases and drops spaces, dashes and underscores so "Fira Code" matches
// "FiraCode-Regular.ttf".
func normalize(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
}

// List returns every font in the library, relative to its directory.
func (l *Library) List() []string {
	var all []string
	for _, dir := range l.dirs {
		names, err := Scan(dir)
		if err != nil {
			continue
		}
		all = append(all, names...)
	}
	return all
}

// Find returns the full path of the first font whose relative path contains search
// (compared loosely). When several match, a "Regular" face wins. A leading
// "assets/fonts/" on search is ignored.
func (l *Library) Find(search string) (string, error) {
	search = strings.TrimSpace(search)
	search = strings.TrimPrefix(filepath.ToSlash(search), "assets/fonts/")
	norm := normalize(strings.TrimSuffix(search, filepath.Ext(search)))
	if norm == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}
	var matches []string
	for _, dir := range l.dirs {
		names, err := Scan(dir)
		if err != nil {
			continue
		}
		for _, rel := range names {
			if strings.Contains(normalize(rel), norm) {
				matches = append(matches, filepath.Join(dir, filepath.FromSlash(rel)))
			}
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNotFound, search)
	}
	for _, m := range matches {
		if strings.Contains(strings.ToLower(filepath.Base(m)), "regular") {
			return m, nil
		}
	}
	return matches[0], nil
}
