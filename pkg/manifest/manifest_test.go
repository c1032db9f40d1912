package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-drift/hotreload/pkg/hotreload"
)

const sampleManifest = `module: github.com/acme/shop
controls:
  - type: views.SettingsScreen
    uri: ui://shop/views/settings.ui
  - type: views.CartScreen
    uri: ui://shop/views/cart.ui
`

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, Filename), []byte(content), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, sampleManifest)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m.Module != "github.com/acme/shop" {
		t.Errorf("Module = %q, want %q", m.Module, "github.com/acme/shop")
	}
	if len(m.Controls) != 2 {
		t.Fatalf("len(Controls) = %d, want 2", len(m.Controls))
	}
	if m.Controls[0].Type != "views.SettingsScreen" {
		t.Errorf("Controls[0].Type = %q, want %q", m.Controls[0].Type, "views.SettingsScreen")
	}
	if m.Controls[1].URI != "ui://shop/views/cart.ui" {
		t.Errorf("Controls[1].URI = %q, want %q", m.Controls[1].URI, "ui://shop/views/cart.ui")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load() without a manifest succeeded")
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "controls: ["},
		{"invalid module", "module: nodot/x\ncontrols:\n  - type: views.A\n    uri: ui://app/a.ui\n"},
		{"no controls", "module: github.com/acme/shop\n"},
		{"empty type", "controls:\n  - type: \"\"\n    uri: ui://app/a.ui\n"},
		{"bad uri scheme", "controls:\n  - type: views.A\n    uri: file:///a.ui\n"},
		{"duplicate uri", "controls:\n  - type: views.A\n    uri: ui://app/a.ui\n  - type: views.B\n    uri: ui://app/a.ui\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tt.content)
			if _, err := Load(dir); err == nil {
				t.Errorf("Load() accepted %s", tt.name)
			}
		})
	}
}

func TestDescriptors(t *testing.T) {
	m := &Manifest{Controls: []Control{
		{Type: "views.A", URI: "ui://app/a.ui"},
		{Type: "views.B", URI: "ui://app/b.ui"},
	}}
	descs := m.Descriptors()
	if len(descs) != 2 {
		t.Fatalf("len(Descriptors()) = %d, want 2", len(descs))
	}
	if descs[0].TypeName != "views.A" || descs[0].SourceURI != "ui://app/a.ui" {
		t.Errorf("Descriptors()[0] = %+v", descs[0])
	}
}

func TestBind(t *testing.T) {
	m := &Manifest{Controls: []Control{{Type: "views.A", URI: "ui://app/a.ui"}}}
	src := m.Bind(func(d hotreload.Descriptor) (hotreload.Reloader, error) {
		return hotreload.ReloaderFunc(func(context.Context) error { return nil }), nil
	})

	controls, err := src.Controls()
	if err != nil {
		t.Fatalf("Controls() error: %v", err)
	}
	if len(controls) != 1 {
		t.Fatalf("len(controls) = %d, want 1", len(controls))
	}
	if controls[0].Descriptor.TypeName != "views.A" {
		t.Errorf("TypeName = %q, want %q", controls[0].Descriptor.TypeName, "views.A")
	}
	if controls[0].Runtime == nil {
		t.Error("Runtime = nil, want bound reloader")
	}
}

func TestBindFailurePropagates(t *testing.T) {
	m := &Manifest{Controls: []Control{{Type: "views.A", URI: "ui://app/a.ui"}}}
	src := m.Bind(func(hotreload.Descriptor) (hotreload.Reloader, error) {
		return nil, fmt.Errorf("no live instance")
	})
	if _, err := src.Controls(); err == nil {
		t.Error("Controls() succeeded with a failing binder")
	}
}

func TestProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/acme/shop\n"), 0o644); err != nil {
		t.Fatalf("writing go.mod: %v", err)
	}
	nested := filepath.Join(root, "internal", "views")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := ProjectRoot(nested)
	if err != nil {
		t.Fatalf("ProjectRoot() error: %v", err)
	}
	if got != root {
		t.Errorf("ProjectRoot() = %q, want %q", got, root)
	}
}

func TestModulePath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module github.com/acme/shop\n\ngo 1.24.0\n"), 0o644); err != nil {
		t.Fatalf("writing go.mod: %v", err)
	}

	got, err := ModulePath(dir)
	if err != nil {
		t.Fatalf("ModulePath() error: %v", err)
	}
	if got != "github.com/acme/shop" {
		t.Errorf("ModulePath() = %q, want %q", got, "github.com/acme/shop")
	}
}

func TestModulePathMissingGoMod(t *testing.T) {
	if _, err := ModulePath(t.TempDir()); err == nil {
		t.Error("ModulePath() without go.mod succeeded")
	}
}
