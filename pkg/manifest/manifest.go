// Package manifest loads the control manifest that names an application's
// reloadable controls and their definition files.
//
// A project declares its controls in ui-manifest.yaml at the project root:
//
//	module: github.com/acme/shop
//	controls:
//	  - type: views.SettingsScreen
//	    uri: ui://shop/views/settings.ui
//	  - type: views.CartScreen
//	    uri: ui://shop/views/cart.ui
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/hotreload/pkg/hotreload"
	"github.com/go-drift/hotreload/pkg/uipath"
)

// Filename is the manifest file name expected at a project root.
const Filename = "ui-manifest.yaml"

// Manifest describes a project's reloadable controls.
type Manifest struct {
	// Module is the project's Go module path. Optional; validated when set.
	Module string `yaml:"module,omitempty"`
	// Controls lists the reloadable controls.
	Controls []Control `yaml:"controls"`
}

// Control is one manifest entry.
type Control struct {
	// Type is the control's type identity (e.g. "views.SettingsScreen").
	Type string `yaml:"type"`
	// URI locates the control's definition file, in ui://<host>/<path> form.
	URI string `yaml:"uri"`
}

// Load reads and validates the manifest in dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: reading %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parsing %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Module != "" {
		if err := module.CheckPath(m.Module); err != nil {
			return fmt.Errorf("manifest: invalid module path %q: %w", m.Module, err)
		}
	}
	if len(m.Controls) == 0 {
		return fmt.Errorf("manifest: no controls declared")
	}
	seen := make(map[string]struct{}, len(m.Controls))
	for i, ctrl := range m.Controls {
		if strings.TrimSpace(ctrl.Type) == "" {
			return fmt.Errorf("manifest: control %d has no type", i)
		}
		if _, _, err := uipath.ParseURI(ctrl.URI); err != nil {
			return fmt.Errorf("manifest: control %s: %w", ctrl.Type, err)
		}
		if _, dup := seen[ctrl.URI]; dup {
			return fmt.Errorf("manifest: duplicate uri %s", ctrl.URI)
		}
		seen[ctrl.URI] = struct{}{}
	}
	return nil
}

// Descriptors returns the manifest entries as control descriptors.
func (m *Manifest) Descriptors() []hotreload.Descriptor {
	out := make([]hotreload.Descriptor, 0, len(m.Controls))
	for _, ctrl := range m.Controls {
		out = append(out, hotreload.Descriptor{TypeName: ctrl.Type, SourceURI: ctrl.URI})
	}
	return out
}

// Bind produces a discovery source that pairs every manifest control with a
// runtime reload handle. bind runs once per control each time the source is
// enumerated.
func (m *Manifest) Bind(bind func(hotreload.Descriptor) (hotreload.Reloader, error)) hotreload.Source {
	return hotreload.SourceFunc(func() ([]hotreload.LiveControl, error) {
		out := make([]hotreload.LiveControl, 0, len(m.Controls))
		for _, desc := range m.Descriptors() {
			rt, err := bind(desc)
			if err != nil {
				return nil, fmt.Errorf("manifest: binding %s: %w", desc.TypeName, err)
			}
			out = append(out, hotreload.LiveControl{Descriptor: desc, Runtime: rt})
		}
		return out, nil
	})
}

// ProjectRoot walks up from dir to the nearest directory containing go.mod.
func ProjectRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(abs, "go.mod")); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("manifest: not in a Go module (no go.mod above %s)", dir)
		}
		abs = parent
	}
}

// ModulePath reads the module path from dir's go.mod.
func ModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("manifest: reading go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("manifest: could not determine module path from go.mod")
	}
	return path, nil
}
