package hotreload

import (
	"context"
	"path/filepath"
	"testing"
)

func testEntry(typeName, path string) *managedControl {
	return &managedControl{
		descriptor: Descriptor{TypeName: typeName, SourceURI: "ui://app/" + filepath.ToSlash(filepath.Base(path))},
		path:       path,
		runtime:    ReloaderFunc(func(context.Context) error { return nil }),
	}
}

func TestRegistryInsertAndLookup(t *testing.T) {
	r := newRegistry()
	path := filepath.FromSlash("/srv/app/views/a.ui")
	r.insert(path, testEntry("views.A", path))

	got, ok := r.lookup(path)
	if !ok {
		t.Fatal("lookup() missed a registered path")
	}
	if got.descriptor.TypeName != "views.A" {
		t.Errorf("TypeName = %q, want %q", got.descriptor.TypeName, "views.A")
	}
}

func TestRegistryLookupNormalizesSpelling(t *testing.T) {
	r := newRegistry()
	path := filepath.FromSlash("/srv/app/views/a.ui")
	r.insert(path, testEntry("views.A", path))

	messy := filepath.FromSlash("/srv/app/./views/a.ui")
	if _, ok := r.lookup(messy); !ok {
		t.Errorf("lookup(%q) missed; spelling variants must share a key", messy)
	}
}

func TestRegistryLookupMiss(t *testing.T) {
	r := newRegistry()
	if _, ok := r.lookup(filepath.FromSlash("/srv/app/unknown.ui")); ok {
		t.Error("lookup() hit for an unregistered path")
	}
}

func TestRegistryLastInsertWins(t *testing.T) {
	r := newRegistry()
	path := filepath.FromSlash("/srv/app/views/a.ui")
	r.insert(path, testEntry("views.First", path))
	r.insert(path, testEntry("views.Second", path))

	got, ok := r.lookup(path)
	if !ok {
		t.Fatal("lookup() missed")
	}
	if got.descriptor.TypeName != "views.Second" {
		t.Errorf("TypeName = %q, want the later entry %q", got.descriptor.TypeName, "views.Second")
	}
	if r.size() != 1 {
		t.Errorf("size() = %d, want 1", r.size())
	}
}

func TestRegistryRekey(t *testing.T) {
	r := newRegistry()
	oldPath := filepath.FromSlash("/srv/app/x.ui")
	newPath := filepath.FromSlash("/srv/app/z.ui")
	r.insert(oldPath, testEntry("views.X", oldPath))

	if !r.rekey(oldPath, newPath) {
		t.Fatal("rekey() = false, want true")
	}
	if _, ok := r.lookup(oldPath); ok {
		t.Error("old path still registered after rekey")
	}
	got, ok := r.lookup(newPath)
	if !ok {
		t.Fatal("new path not registered after rekey")
	}
	if got.path != newPath {
		t.Errorf("entry path = %q, want %q", got.path, newPath)
	}
	if got.descriptor.TypeName != "views.X" {
		t.Errorf("TypeName = %q, want %q", got.descriptor.TypeName, "views.X")
	}
}

func TestRegistryRekeyMissingOldIsNoOp(t *testing.T) {
	r := newRegistry()
	path := filepath.FromSlash("/srv/app/a.ui")
	r.insert(path, testEntry("views.A", path))

	if r.rekey(filepath.FromSlash("/srv/app/ghost.ui"), filepath.FromSlash("/srv/app/b.ui")) {
		t.Error("rekey() = true for unknown old path, want false")
	}
	if r.size() != 1 {
		t.Errorf("size() = %d after no-op rekey, want 1", r.size())
	}
	if _, ok := r.lookup(path); !ok {
		t.Error("existing entry disturbed by no-op rekey")
	}
}

func TestRegistryPathsSorted(t *testing.T) {
	r := newRegistry()
	b := filepath.FromSlash("/srv/app/b.ui")
	a := filepath.FromSlash("/srv/app/a.ui")
	r.insert(b, testEntry("views.B", b))
	r.insert(a, testEntry("views.A", a))

	got := r.paths()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("paths() = %v, want sorted [%q %q]", got, a, b)
	}
}
