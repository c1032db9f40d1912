// Package uipath normalizes UI definition file paths and resolves ui:// URIs.
//
// Registries and watch filters key controls by definition file path, so every
// path crossing a package boundary is reduced to one canonical form: absolute,
// cleaned, and case-folded on hosts whose filesystems ignore case.
package uipath

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// Scheme is the URI scheme for UI definition source locations.
// A source URI has the form ui://<host>/<project-relative-path>, where the
// host names the owning application and the path locates the definition file
// relative to the watch root.
const Scheme = "ui"

// caseInsensitive reports whether the host filesystem ignores case.
// Windows and the macOS default volume do. This is a platform-level
// approximation; individual volumes can be configured differently.
var caseInsensitive = runtime.GOOS == "windows" || runtime.GOOS == "darwin"

// Normalize converts path to its absolute, cleaned form.
// Relative paths are resolved against the working directory.
func Normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("uipath: normalizing %q: %w", path, err)
	}
	return abs, nil
}

// Key returns the canonical map key for an absolute definition file path.
// The same file always yields the same key regardless of how its path was
// spelled. Relative input is not resolved; keep Normalize at the boundary.
func Key(path string) string {
	return fold(filepath.Clean(path))
}

// Equal reports whether two paths identify the same file on this host.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// ParseURI splits a source URI into its host and project-relative slash
// path. The host names the owning application and is not used for path
// resolution.
func ParseURI(uri string) (host, rel string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("uipath: parsing URI %q: %w", uri, err)
	}
	if u.Scheme != Scheme {
		return "", "", fmt.Errorf("uipath: URI %q has scheme %q, want %q", uri, u.Scheme, Scheme)
	}
	rel = strings.TrimPrefix(u.Path, "/")
	if rel == "" {
		return "", "", fmt.Errorf("uipath: URI %q has no file path", uri)
	}
	if cleaned := path.Clean(rel); cleaned != rel || strings.HasPrefix(cleaned, "..") {
		return "", "", fmt.Errorf("uipath: URI %q has a non-canonical file path", uri)
	}
	return u.Host, rel, nil
}

// FromURI maps a source URI to an absolute definition file path under root.
func FromURI(root, uri string) (string, error) {
	_, rel, err := ParseURI(uri)
	if err != nil {
		return "", err
	}
	absRoot, err := Normalize(root)
	if err != nil {
		return "", err
	}
	return filepath.Join(absRoot, filepath.FromSlash(rel)), nil
}

// RootFromURI derives the watch root containing a definition file, given the
// file's source URI and its concrete path on disk. The concrete path must end
// with the URI's relative path; the remainder is the root.
func RootFromURI(uri, concretePath string) (string, error) {
	_, rel, err := ParseURI(uri)
	if err != nil {
		return "", err
	}
	abs, err := Normalize(concretePath)
	if err != nil {
		return "", err
	}
	suffix := filepath.FromSlash(rel)
	if !hasPathSuffix(abs, suffix) {
		return "", fmt.Errorf("uipath: path %q does not end with URI path %q", abs, suffix)
	}
	return filepath.Clean(abs[:len(abs)-len(suffix)-1]), nil
}

// hasPathSuffix reports whether abs ends with suffix on a path component
// boundary, honoring host case semantics.
func hasPathSuffix(abs, suffix string) bool {
	if len(abs) <= len(suffix) {
		return false
	}
	if fold(abs[len(abs)-len(suffix):]) != fold(suffix) {
		return false
	}
	return abs[len(abs)-len(suffix)-1] == filepath.Separator
}

func fold(path string) string {
	if caseInsensitive {
		return strings.ToLower(path)
	}
	return path
}
