// SPDX-License-Identifier: MPL-2.0

package rfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxManifestSize caps the manifest file size read by Load.
const MaxManifestSize = 4 << 20

var (
	// DefaultFileNames are the manifest names looked up by Discover, in order.
	DefaultFileNames = []string{"rfile", "rfile.yml", "rfile.yaml"}

	// ErrManifestNotFound is the sentinel wrapped by ManifestNotFoundError.
	ErrManifestNotFound = errors.New("no rfile found")
	// ErrInvalidManifest is the sentinel wrapped by ManifestError.
	ErrInvalidManifest = errors.New("invalid rfile")
)

type (
	// ManifestNotFoundError reports that no manifest exists in Dir or its parents.
	ManifestNotFoundError struct {
		Dir   string
		Names []string
	}

	// ManifestError reports a manifest document that is not a mapping of command
	// names to script text.
	ManifestError struct {
		Path string
		// Line is 1-based, 0 when the problem is not tied to a line.
		Line   int
		Reason string
	}
)

// Error implements the error interface.
func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("no rfile found in %s or any parent directory (looked for %s)", e.Dir, strings.Join(e.Names, ", "))
}

// Unwrap returns ErrManifestNotFound for errors.Is.
func (e *ManifestNotFoundError) Unwrap() error { return ErrManifestNotFound }

// Error implements the error interface.
func (e *ManifestError) Error() string {
	where := e.Path
	if where == "" {
		where = "rfile"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", where, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", where, e.Reason)
}

// Unwrap returns ErrInvalidManifest for errors.Is.
func (e *ManifestError) Unwrap() error { return ErrInvalidManifest }

// Discover walks from dir up to the filesystem root and returns the first manifest
// found. A directory holding more than one candidate name is an error. When names is
// empty DefaultFileNames is used.
func Discover(dir string, names []string) (string, error) {
	if len(names) == 0 {
		names = DefaultFileNames
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	for current := abs; ; {
		var found []string
		for _, name := range names {
			candidate := filepath.Join(current, name)
			if info, statErr := os.Stat(candidate); statErr == nil && info.Mode().IsRegular() {
				found = append(found, candidate)
			}
		}
		switch len(found) {
		case 0:
		case 1:
			return found[0], nil
		default:
			return "", &ManifestError{
				Path:   current,
				Reason: fmt.Sprintf("found more than one rfile: %s", strings.Join(found, ", ")),
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", &ManifestNotFoundError{Dir: abs, Names: names}
		}
		current = parent
	}
}

// Load reads, decodes and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read rfile: %w", err)
	}
	if info.Size() > MaxManifestSize {
		return nil, &ManifestError{Path: path, Reason: fmt.Sprintf("file is %d bytes, larger than the %d byte limit", info.Size(), MaxManifestSize)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rfile: %w", err)
	}

	entries, err := DecodeEntries(data)
	if err != nil {
		var me *ManifestError
		if errors.As(err, &me) {
			me.Path = path
		}
		return nil, err
	}

	m, err := NewManifest(entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Dir returns the directory holding the manifest file, which is the working
// directory for every command it runs. It is "" for in-memory manifests.
func (m *Manifest) Dir() string {
	if m.Path == "" {
		return ""
	}
	return filepath.Dir(m.Path)
}

// DecodeEntries decodes a YAML manifest document into entries in document order.
// The top level must be a mapping of names to scalar script text; a null value is an
// empty script.
func DecodeEntries(data []byte) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ManifestError{Reason: err.Error()}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, ErrEmptyManifest
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, ErrEmptyManifest
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ManifestError{Line: root.Line, Reason: "top level must be a mapping of command names to scripts"}
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Tag == "!!merge" {
			return nil, &ManifestError{Line: key.Line, Reason: "command names must be plain strings"}
		}
		if strings.TrimSpace(key.Value) == "" {
			return nil, &ManifestError{Line: key.Line, Reason: "command name must not be empty"}
		}
		if value.Kind == yaml.AliasNode && value.Alias != nil {
			value = value.Alias
		}
		if value.Kind != yaml.ScalarNode {
			return nil, &ManifestError{Line: value.Line, Reason: fmt.Sprintf("command %q must be a script string", key.Value)}
		}
		script := value.Value
		if value.Tag == "!!null" {
			script = ""
		}
		entries = append(entries, Entry{Name: key.Value, Script: script, Line: key.Line})
	}
	if len(entries) == 0 {
		return nil, ErrEmptyManifest
	}
	return entries, nil
}
